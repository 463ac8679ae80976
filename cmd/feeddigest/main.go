package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"FeedDigest/internal/app"
	"FeedDigest/internal/config"
	"FeedDigest/internal/logging"
)

func main() {
	once := flag.Bool("once", false, "run the job immediately and exit instead of scheduling")
	send := flag.Bool("send", false, "actually dispatch digests instead of logging a preview")
	job := flag.String("job", "news", "job to run with -once: news, menu or all")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application := app.New(cfg, logger)

	var err error
	if *once {
		err = application.RunOnce(ctx, *job, *send)
	} else {
		err = application.Run(ctx, *send)
	}
	if err != nil {
		logger.Error("application stopped", "error", err)
		os.Exit(1)
	}
}
