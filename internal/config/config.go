package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "America/Sao_Paulo"

	configPathEnv     = "FEED_DIGEST_CONFIG"
	databaseDSNEnv    = "DATABASE_DSN"
	twilioSIDEnv      = "TWILIO_ACCOUNT_SID"
	twilioTokenEnv    = "TWILIO_AUTH_TOKEN"
	twilioFromEnv     = "TWILIO_FROM_NUMBER"
	twilioToEnv       = "TWILIO_TO_NUMBER"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging    LoggingConfig       `yaml:"logging"`
	Scheduler  SchedulerConfig     `yaml:"scheduler"`
	News       NewsConfig          `yaml:"news"`
	Menu       MenuConfig          `yaml:"menu"`
	Categories map[string][]string `yaml:"categories"`
	Dispatch   DispatchConfig      `yaml:"dispatch"`
	Database   DatabaseConfig      `yaml:"database"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SchedulerConfig defines the timezone every job and date comparison uses.
type SchedulerConfig struct {
	Timezone string         `yaml:"timezone"`
	location *time.Location `yaml:"-"`
}

// Location resolves the configured timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// NewsConfig describes the daily news digest job. MaxEntries caps feed
// results, MaxArticles caps scraped headlines.
type NewsConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	MaxItems       int            `yaml:"maxItems"`
	MaxChars       int            `yaml:"maxChars"`
	MaxEntries     int            `yaml:"maxEntries"`
	MaxArticles    int            `yaml:"maxArticles"`
	HeadlineOnly   bool           `yaml:"headlineOnly"`
	Sources        []SourceConfig `yaml:"sources"`
}

// SourceConfig describes a single content source and the extractor
// strategy that understands it.
type SourceConfig struct {
	Name      string            `yaml:"name"`
	URL       string            `yaml:"url"`
	Extractor string            `yaml:"extractor"`
	Options   map[string]string `yaml:"options"`
}

// MenuConfig describes the weekly menu job.
type MenuConfig struct {
	CronExpression string `yaml:"cronExpression"`
	IndexURL       string `yaml:"indexUrl"`
	RecipePrefix   string `yaml:"recipePrefix"`
	Days           int    `yaml:"days"`
	MaxChars       int    `yaml:"maxChars"`
	HeadingKeyword string `yaml:"headingKeyword"`
}

// DispatchConfig selects and configures the outbound messaging channel.
// Channel is one of "whatsapp", "telegram" or "log".
type DispatchConfig struct {
	Channel  string         `yaml:"channel"`
	WhatsApp WhatsAppConfig `yaml:"whatsapp"`
	Telegram TelegramConfig `yaml:"telegram"`
}

// WhatsAppConfig wires the Twilio credentials and numbers.
type WhatsAppConfig struct {
	AccountSID string `yaml:"accountSid"`
	AuthToken  string `yaml:"authToken"`
	From       string `yaml:"from"`
	To         string `yaml:"to"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// DatabaseConfig describes the optional delivery-audit Postgres connection.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.News.Sources) == 0 {
		cfg.News.Sources = defaultConfig().News.Sources
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(twilioSIDEnv); v != "" {
		c.Dispatch.WhatsApp.AccountSID = v
	}
	if v := os.Getenv(twilioTokenEnv); v != "" {
		c.Dispatch.WhatsApp.AuthToken = v
	}
	if v := os.Getenv(twilioFromEnv); v != "" {
		c.Dispatch.WhatsApp.From = v
	}
	if v := os.Getenv(twilioToEnv); v != "" {
		c.Dispatch.WhatsApp.To = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Dispatch.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Dispatch.Telegram.ChatID = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.News.CronExpression != "" {
		base.News.CronExpression = override.News.CronExpression
	}
	if override.News.MaxItems > 0 {
		base.News.MaxItems = override.News.MaxItems
	}
	if override.News.MaxChars > 0 {
		base.News.MaxChars = override.News.MaxChars
	}
	if override.News.MaxEntries > 0 {
		base.News.MaxEntries = override.News.MaxEntries
	}
	if override.News.MaxArticles > 0 {
		base.News.MaxArticles = override.News.MaxArticles
	}
	if override.News.HeadlineOnly {
		base.News.HeadlineOnly = true
	}
	if len(override.News.Sources) > 0 {
		base.News.Sources = override.News.Sources
	}

	if override.Menu.CronExpression != "" {
		base.Menu.CronExpression = override.Menu.CronExpression
	}
	if override.Menu.IndexURL != "" {
		base.Menu.IndexURL = override.Menu.IndexURL
	}
	if override.Menu.RecipePrefix != "" {
		base.Menu.RecipePrefix = override.Menu.RecipePrefix
	}
	if override.Menu.Days > 0 {
		base.Menu.Days = override.Menu.Days
	}
	if override.Menu.MaxChars > 0 {
		base.Menu.MaxChars = override.Menu.MaxChars
	}
	if override.Menu.HeadingKeyword != "" {
		base.Menu.HeadingKeyword = override.Menu.HeadingKeyword
	}

	if len(override.Categories) > 0 {
		base.Categories = override.Categories
	}

	if override.Dispatch.Channel != "" {
		base.Dispatch.Channel = override.Dispatch.Channel
	}
	if override.Dispatch.WhatsApp.AccountSID != "" {
		base.Dispatch.WhatsApp = override.Dispatch.WhatsApp
	}
	if override.Dispatch.Telegram.BotToken != "" {
		base.Dispatch.Telegram = override.Dispatch.Telegram
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging:   LoggingConfig{Level: "info"},
		Scheduler: SchedulerConfig{Timezone: defaultTimezone, location: tz},
		News: NewsConfig{
			CronExpression: "0 6 * * *",
			MaxItems:       10,
			MaxChars:       1500,
			MaxEntries:     5,
			MaxArticles:    5,
			Sources: []SourceConfig{
				{Name: "Estadao_Economia", URL: "https://www.estadao.com.br/arc/outboundfeeds/feeds/rss/sections/economia/", Extractor: "feed"},
				{Name: "Estadao_Politica", URL: "https://www.estadao.com.br/arc/outboundfeeds/feeds/rss/sections/politica/", Extractor: "feed"},
				{Name: "Folha_Economia", URL: "http://feeds.folha.uol.com.br/mercado/rss091.xml", Extractor: "feed"},
				{Name: "Folha_Politica", URL: "http://feeds.folha.uol.com.br/poder/rss091.xml", Extractor: "feed"},
				{Name: "Globo_Economia", URL: "https://g1.globo.com/rss/g1/economia", Extractor: "feed"},
				{Name: "Globo_Politica", URL: "https://g1.globo.com/rss/g1/politica", Extractor: "feed"},
				{Name: "NYT_Economia", URL: "https://rss.nytimes.com/services/xml/rss/nyt/Business.xml", Extractor: "feed"},
				{Name: "NYT_Politica", URL: "https://rss.nytimes.com/services/xml/rss/nyt/Politics.xml", Extractor: "feed"},
				{Name: "WSJ_Economia", URL: "https://feeds.a.dj.com/rss/RSSBusinessNews.xml", Extractor: "feed"},
				{Name: "WSJ_Politica", URL: "https://feeds.a.dj.com/rss/RSSPoliticsAndPolicy.xml", Extractor: "feed"},
				{Name: "Valor", URL: "https://valorinternational.globo.com", Extractor: "headline"},
			},
		},
		Menu: MenuConfig{
			CronExpression: "0 8 * * 0",
			IndexURL:       "https://panelinha.com.br/blog/ritalobo/post/top-13-cardapios-para-resolver-o-jantar-da-semana",
			RecipePrefix:   "https://www.panelinha.com.br/receita/",
			Days:           7,
			MaxChars:       1500,
		},
		Dispatch: DispatchConfig{Channel: "log"},
	}
}
