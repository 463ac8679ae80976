package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"FeedDigest/internal/config"
	"FeedDigest/internal/digest"
	"FeedDigest/internal/extract"
	"FeedDigest/internal/infrastructure/dispatch"
	"FeedDigest/internal/infrastructure/fetch"
	"FeedDigest/internal/infrastructure/scheduler"
	"FeedDigest/internal/infrastructure/storage"
	"FeedDigest/internal/infrastructure/telegram"
	"FeedDigest/internal/infrastructure/whatsapp"
	"FeedDigest/internal/logging"
	"FeedDigest/internal/ports"
	"FeedDigest/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
	news   *usecase.NewsPipeline
	menu   *usecase.MenuPlanner
}

// New builds a runnable application instance from configuration.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	loc := cfg.Scheduler.Location()

	registry := extract.NewRegistry()
	registry.Register(extract.NewFeedExtractor(cfg.News.MaxEntries, baseLogger.With("component", "extract.feed")))
	registry.Register(extract.NewHeadlineExtractor(cfg.News.MaxArticles))
	recipeExtractor := extract.NewRecipeExtractor(baseLogger.With("component", "extract.recipe"))
	registry.Register(recipeExtractor)
	indexExtractor := extract.NewRecipeIndexExtractor()
	registry.Register(indexExtractor)

	fetcher := fetch.NewClient(nil)
	dispatcher, destination := buildDispatcher(cfg.Dispatch, baseLogger)
	deliveries := buildDeliveryLog(cfg.Database, baseLogger)

	news := usecase.NewNewsPipeline(usecase.NewsDeps{
		Fetcher:     fetcher,
		Registry:    registry,
		Sources:     toExtractSources(cfg.News.Sources),
		Categorizer: digest.NewCategorizer(cfg.Categories),
		Composer: digest.Composer{
			MaxItems:     cfg.News.MaxItems,
			MaxChars:     cfg.News.MaxChars,
			HeadlineOnly: cfg.News.HeadlineOnly,
			Location:     loc,
		},
		Dispatcher:  dispatcher,
		Destination: destination,
		Deliveries:  deliveries,
		Location:    loc,
		Logger:      baseLogger.With("component", "pipeline.news"),
	})

	menu := usecase.NewMenuPlanner(usecase.MenuDeps{
		Fetcher: fetcher,
		Index:   indexExtractor,
		Recipes: recipeExtractor,
		Source: extract.Source{
			Name:      "menu",
			URL:       cfg.Menu.IndexURL,
			Extractor: indexExtractor.Name(),
			Options:   menuOptions(cfg.Menu),
		},
		Days:        cfg.Menu.Days,
		Composer:    digest.Composer{MaxChars: cfg.Menu.MaxChars, Location: loc},
		Dispatcher:  dispatcher,
		Destination: destination,
		Deliveries:  deliveries,
		Logger:      baseLogger.With("component", "pipeline.menu"),
	})

	return &Application{cfg: cfg, logger: baseLogger, news: news, menu: menu}
}

// RunOnce executes the named job ("news", "menu" or "all") immediately.
func (a *Application) RunOnce(ctx context.Context, job string, send bool) error {
	now := time.Now().In(a.cfg.Scheduler.Location())

	switch job {
	case "news":
		return a.news.Run(ctx, now, send)
	case "menu":
		return a.menu.Run(ctx, now, send)
	case "all":
		newsErr := a.news.Run(ctx, now, send)
		menuErr := a.menu.Run(ctx, now, send)
		if newsErr != nil {
			return newsErr
		}
		return menuErr
	default:
		return fmt.Errorf("unknown job %q", job)
	}
}

// Run installs the cron jobs and blocks until the context is cancelled.
func (a *Application) Run(ctx context.Context, send bool) error {
	sched := scheduler.New(a.cfg.Scheduler.Location())

	if spec := a.cfg.News.CronExpression; spec != "" {
		err := sched.AddJob(spec, func(trigger time.Time) {
			if err := a.news.Run(ctx, trigger, send); err != nil {
				a.logger.Error("news job failed", "error", err)
			}
		})
		if err != nil {
			return fmt.Errorf("schedule news job: %w", err)
		}
	}

	if spec := a.cfg.Menu.CronExpression; spec != "" && a.cfg.Menu.IndexURL != "" {
		err := sched.AddJob(spec, func(trigger time.Time) {
			if err := a.menu.Run(ctx, trigger, send); err != nil {
				a.logger.Error("menu job failed", "error", err)
			}
		})
		if err != nil {
			return fmt.Errorf("schedule menu job: %w", err)
		}
	}

	sched.Start()
	a.logger.Info("scheduler started",
		"news_cron", a.cfg.News.CronExpression,
		"menu_cron", a.cfg.Menu.CronExpression,
		"timezone", a.cfg.Scheduler.Timezone)

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return sched.Stop(stopCtx)
}

// buildDispatcher returns the configured channel plus the destination name
// recorded in the delivery audit log.
func buildDispatcher(cfg config.DispatchConfig, logger *slog.Logger) (ports.Dispatcher, string) {
	switch cfg.Channel {
	case "whatsapp":
		return whatsapp.NewDispatcher(cfg.WhatsApp.AccountSID, cfg.WhatsApp.AuthToken, cfg.WhatsApp.From, cfg.WhatsApp.To), cfg.WhatsApp.To
	case "telegram":
		return telegram.NewDispatcher(cfg.Telegram.BotToken, cfg.Telegram.ChatID), "telegram:" + cfg.Telegram.ChatID
	default:
		return dispatch.NewLogDispatcher(logger.With("component", "dispatch.log")), "log"
	}
}

func buildDeliveryLog(cfg config.DatabaseConfig, logger *slog.Logger) ports.DeliveryLog {
	if cfg.DSN == "" {
		return nil
	}
	deliveries, err := storage.Open(cfg.DSN)
	if err != nil {
		logger.Error("delivery log disabled", "error", err)
		return nil
	}
	return deliveries
}

func toExtractSources(cfg []config.SourceConfig) []extract.Source {
	sources := make([]extract.Source, 0, len(cfg))
	for _, src := range cfg {
		sources = append(sources, extract.Source{
			Name:      src.Name,
			URL:       src.URL,
			Extractor: src.Extractor,
			Options:   src.Options,
		})
	}
	return sources
}

func menuOptions(cfg config.MenuConfig) map[string]string {
	options := map[string]string{"recipePrefix": cfg.RecipePrefix}
	if cfg.HeadingKeyword != "" {
		options["headingKeyword"] = cfg.HeadingKeyword
	}
	return options
}
