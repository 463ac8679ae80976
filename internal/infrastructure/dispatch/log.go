package dispatch

import (
	"context"
	"log/slog"

	"FeedDigest/internal/ports"
)

// LogDispatcher writes digests to the log instead of a messaging channel.
// It stands in when no channel is configured, so previews and dry runs work
// without credentials.
type LogDispatcher struct {
	logger *slog.Logger
}

var _ ports.Dispatcher = (*LogDispatcher)(nil)

// NewLogDispatcher wires the component logger.
func NewLogDispatcher(logger *slog.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

// Send logs the digest text and always succeeds.
func (d *LogDispatcher) Send(_ context.Context, text string) error {
	if d.logger != nil {
		d.logger.Info("digest (log-only channel)", "text", text)
	}
	return nil
}
