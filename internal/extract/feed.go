package extract

import (
	"log/slog"
	"strconv"

	"github.com/mmcdole/gofeed"

	"FeedDigest/internal/domain"
)

const defaultMaxEntries = 5

// FeedExtractor parses RSS/Atom documents. Feeds are already structured, so
// no scraping fallback applies: an unparsable document simply yields zero
// items and the run continues with the remaining sources.
type FeedExtractor struct {
	maxEntries int
	logger     *slog.Logger
}

// NewFeedExtractor caps results at maxEntries per feed; zero means the
// default of 5.
func NewFeedExtractor(maxEntries int, logger *slog.Logger) *FeedExtractor {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	return &FeedExtractor{maxEntries: maxEntries, logger: logger}
}

// Name identifies the strategy inside the registry.
func (e *FeedExtractor) Name() string {
	return "feed"
}

// Extract returns the most recent entries in feed order, tagged with the
// source name so the categorizer can bucket them later.
func (e *FeedExtractor) Extract(raw []byte, src Source) ([]domain.Item, error) {
	feed, err := gofeed.NewParser().ParseString(string(raw))
	if err != nil {
		if e.logger != nil {
			e.logger.Debug("feed unparsable, treating as empty", "source", src.Name, "error", err)
		}
		return nil, nil
	}

	limit := e.maxEntries
	if v, ok := src.Options["maxEntries"]; ok {
		if n, convErr := strconv.Atoi(v); convErr == nil && n > 0 {
			limit = n
		}
	}

	items := make([]domain.Item, 0, limit)
	for _, entry := range feed.Items {
		if len(items) >= limit {
			break
		}

		published := entry.PublishedParsed
		if published == nil {
			published = entry.UpdatedParsed
		}

		summary := entry.Description
		if summary == "" {
			summary = entry.Content
		}

		items = append(items, domain.NewItem(entry.Title, entry.Link, summary, src.Name, published))
	}

	return items, nil
}
