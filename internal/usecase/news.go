package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"
	"unicode/utf8"

	"FeedDigest/internal/digest"
	"FeedDigest/internal/domain"
	"FeedDigest/internal/extract"
	"FeedDigest/internal/ports"
)

// NewsDeps wires all driven adapters into the news pipeline. Destination
// names where the dispatcher delivers to, for the audit trail.
type NewsDeps struct {
	Fetcher     ports.Fetcher
	Registry    *extract.Registry
	Sources     []extract.Source
	Categorizer *digest.Categorizer
	Composer    digest.Composer
	Dispatcher  ports.Dispatcher
	Destination string
	Deliveries  ports.DeliveryLog
	Location    *time.Location
	Logger      *slog.Logger
}

// NewsPipeline implements the daily digest workflow: fan-out fetch and
// extraction, dedup, recency filter, categorization, one composed digest
// per category, dispatch.
type NewsPipeline struct {
	fetcher     ports.Fetcher
	registry    *extract.Registry
	sources     []extract.Source
	categorizer *digest.Categorizer
	composer    digest.Composer
	dispatcher  ports.Dispatcher
	destination string
	deliveries  ports.DeliveryLog
	location    *time.Location
	logger      *slog.Logger
}

// NewNewsPipeline constructs the orchestration component.
func NewNewsPipeline(deps NewsDeps) *NewsPipeline {
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &NewsPipeline{
		fetcher:     deps.Fetcher,
		registry:    deps.Registry,
		sources:     deps.Sources,
		categorizer: deps.Categorizer,
		composer:    deps.Composer,
		dispatcher:  deps.Dispatcher,
		destination: deps.Destination,
		deliveries:  deps.Deliveries,
		location:    loc,
		logger:      logger,
	}
}

// Run collects today's items and dispatches one digest per category. When
// send is false the digests are only logged. A failed dispatch does not
// block the remaining categories; the joined errors are returned.
func (p *NewsPipeline) Run(ctx context.Context, now time.Time, send bool) error {
	items := p.collect(ctx)

	items = digest.Dedupe(items)
	items = digest.FilterToday(items, now, p.location)
	if len(items) == 0 {
		p.logger.Warn("no items for today, nothing to compose")
		return nil
	}
	items = digest.SortBySource(items)

	buckets := p.categorizer.Categorize(items)

	categories := make([]string, 0, len(buckets))
	for name := range buckets {
		categories = append(categories, name)
	}
	sort.Strings(categories)

	var errs []error
	for _, category := range categories {
		d := p.composer.Compose(category, buckets[category], now)
		if err := p.deliver(ctx, d, send); err != nil {
			p.logger.Error("dispatch failed", "category", category, "error", err)
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// collect fetches and extracts every configured source concurrently. Each
// fetch is independent; a failed source is logged and omitted, never
// retried within the run.
func (p *NewsPipeline) collect(ctx context.Context) []domain.Item {
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		items []domain.Item
	)

	for _, src := range p.sources {
		extractor, err := p.registry.Resolve(src.Extractor)
		if err != nil {
			p.logger.Error("skip source", "source", src.Name, "error", err)
			continue
		}

		wg.Add(1)
		go func(src extract.Source, extractor extract.Extractor) {
			defer wg.Done()

			raw, err := p.fetcher.Fetch(ctx, src.Name, src.URL)
			if err != nil {
				p.logger.Error("skip source", "source", src.Name, "url", src.URL, "error", err)
				return
			}

			extracted, err := extractor.Extract(raw, src)
			if err != nil {
				p.logger.Error("skip source", "source", src.Name, "url", src.URL, "error", err)
				return
			}

			p.logger.Debug("source produced items", "source", src.Name, "count", len(extracted))

			mu.Lock()
			items = append(items, extracted...)
			mu.Unlock()
		}(src, extractor)
	}

	wg.Wait()
	return items
}

func (p *NewsPipeline) deliver(ctx context.Context, d domain.Digest, send bool) error {
	if !send {
		p.logger.Info("digest preview", "category", d.Category, "chars", utf8.RuneCountInString(d.Text), "text", d.Text)
		p.record(ctx, d, domain.DeliveryPreview)
		return nil
	}

	if err := p.dispatcher.Send(ctx, d.Text); err != nil {
		p.record(ctx, d, domain.DeliveryFailed)
		return err
	}

	p.logger.Info("digest sent", "category", d.Category, "chars", utf8.RuneCountInString(d.Text))
	p.record(ctx, d, domain.DeliverySent)
	return nil
}

func (p *NewsPipeline) record(ctx context.Context, d domain.Digest, status string) {
	if p.deliveries == nil {
		return
	}
	rec := domain.DeliveryRecord{
		Category:    d.Category,
		Destination: p.destination,
		Chars:       utf8.RuneCountInString(d.Text),
		Status:      status,
		SentAt:      time.Now(),
	}
	if err := p.deliveries.Record(ctx, rec); err != nil {
		p.logger.Error("record delivery", "category", d.Category, "error", err)
	}
}
