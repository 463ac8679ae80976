package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(twilioSIDEnv, "")
	t.Setenv(databaseDSNEnv, "")

	cfg := Load()

	if cfg.Scheduler.Timezone != "America/Sao_Paulo" {
		t.Fatalf("unexpected default timezone: %s", cfg.Scheduler.Timezone)
	}
	if cfg.News.MaxChars != 1500 || cfg.News.MaxItems != 10 {
		t.Fatalf("unexpected digest defaults: %+v", cfg.News)
	}
	if cfg.News.MaxEntries != 5 || cfg.News.MaxArticles != 5 {
		t.Fatalf("unexpected extraction caps: %+v", cfg.News)
	}
	if cfg.Menu.Days != 7 {
		t.Fatalf("unexpected menu days: %d", cfg.Menu.Days)
	}
	if cfg.Dispatch.Channel != "log" {
		t.Fatalf("expected log-only channel by default, got %s", cfg.Dispatch.Channel)
	}
	if len(cfg.News.Sources) == 0 {
		t.Fatal("expected default sources")
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	raw := `
logging:
  level: debug
scheduler:
  timezone: UTC
news:
  cronExpression: "30 7 * * *"
  maxChars: 900
  maxArticles: 8
  sources:
    - name: Example_Economia
      url: https://example.org/rss
      extractor: feed
dispatch:
  channel: whatsapp
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(configPathEnv, path)
	t.Setenv(twilioSIDEnv, "AC123")
	t.Setenv(twilioTokenEnv, "secret")
	t.Setenv(twilioFromEnv, "whatsapp:+100")
	t.Setenv(twilioToEnv, "whatsapp:+200")
	t.Setenv(databaseDSNEnv, "postgres://audit")

	cfg := Load()

	if cfg.Logging.Level != "debug" {
		t.Fatalf("file override lost: %s", cfg.Logging.Level)
	}
	if cfg.Scheduler.Location().String() != "UTC" {
		t.Fatalf("timezone not bound: %s", cfg.Scheduler.Location())
	}
	if cfg.News.CronExpression != "30 7 * * *" || cfg.News.MaxChars != 900 {
		t.Fatalf("news overrides lost: %+v", cfg.News)
	}
	if cfg.News.MaxItems != 10 {
		t.Fatalf("unset field should keep default: %d", cfg.News.MaxItems)
	}
	if cfg.News.MaxArticles != 8 || cfg.News.MaxEntries != 5 {
		t.Fatalf("headline cap must override independently of the feed cap: %+v", cfg.News)
	}
	if len(cfg.News.Sources) != 1 || cfg.News.Sources[0].Name != "Example_Economia" {
		t.Fatalf("source list not replaced: %+v", cfg.News.Sources)
	}
	if cfg.Dispatch.WhatsApp.AccountSID != "AC123" || cfg.Dispatch.WhatsApp.To != "whatsapp:+200" {
		t.Fatalf("env overrides lost: %+v", cfg.Dispatch.WhatsApp)
	}
	if cfg.Database.DSN != "postgres://audit" {
		t.Fatalf("database env override lost: %s", cfg.Database.DSN)
	}
}

func TestBindTimezoneFallsBack(t *testing.T) {
	cfg := defaultConfig()
	cfg.Scheduler.Timezone = "Not/AZone"
	cfg.bindTimezone()

	if cfg.Scheduler.Location().String() != "America/Sao_Paulo" {
		t.Fatalf("expected fallback timezone, got %s", cfg.Scheduler.Location())
	}
}
