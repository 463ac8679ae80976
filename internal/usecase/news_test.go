package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"FeedDigest/internal/digest"
	"FeedDigest/internal/domain"
	"FeedDigest/internal/extract"
)

type stubFetcher struct {
	pages map[string][]byte
	fail  map[string]bool
}

func (f *stubFetcher) Fetch(_ context.Context, source, url string) ([]byte, error) {
	if f.fail[url] {
		return nil, &domain.FetchError{Source: source, URL: url, Err: errors.New("boom")}
	}
	body, ok := f.pages[url]
	if !ok {
		return nil, &domain.FetchError{Source: source, URL: url, Err: errors.New("not found")}
	}
	return body, nil
}

type stubDispatcher struct {
	sent     []string
	failUpTo int
	calls    int
}

func (d *stubDispatcher) Send(_ context.Context, text string) error {
	d.calls++
	if d.calls <= d.failUpTo {
		return &domain.DispatchError{Destination: "test", Err: errors.New("rejected")}
	}
	d.sent = append(d.sent, text)
	return nil
}

type stubDeliveryLog struct {
	records []domain.DeliveryRecord
}

func (l *stubDeliveryLog) Record(_ context.Context, rec domain.DeliveryRecord) error {
	l.records = append(l.records, rec)
	return nil
}

func rssWithItem(title, link, day string) []byte {
	return []byte(fmt.Sprintf(`<?xml version="1.0"?>
<rss version="2.0"><channel><title>f</title>
<item><title>%s</title><link>%s</link><description>Resumo curto.</description><pubDate>%s 09:00:00 GMT</pubDate></item>
</channel></rss>`, title, link, day))
}

func newsRegistry() *extract.Registry {
	registry := extract.NewRegistry()
	registry.Register(extract.NewFeedExtractor(5, nil))
	registry.Register(extract.NewHeadlineExtractor(5))
	return registry
}

func TestNewsPipelineEndToEnd(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.August, 15, 6, 0, 0, 0, time.UTC)
	day := "Fri, 15 Aug 2025"

	fetcher := &stubFetcher{
		pages: map[string][]byte{
			"https://f.test/econ":     rssWithItem("Inflação em alta neste mês", "https://f.test/econ/1", day),
			"https://f.test/politics": rssWithItem("Votação da reforma adiada", "https://f.test/pol/1", day),
			"https://f.test/home": []byte(`<html><body>
				<a href="/world/trade">Trade deal signed after talks</a>
			</body></html>`),
		},
		fail: map[string]bool{"https://f.test/broken": true},
	}

	dispatcher := &stubDispatcher{}
	pipeline := NewNewsPipeline(NewsDeps{
		Fetcher:  fetcher,
		Registry: newsRegistry(),
		Sources: []extract.Source{
			{Name: "Estadao_Economia", URL: "https://f.test/econ", Extractor: "feed"},
			{Name: "Globo_Politica", URL: "https://f.test/politics", Extractor: "feed"},
			{Name: "Valor", URL: "https://f.test/home", Extractor: "headline"},
			{Name: "Folha_Economia", URL: "https://f.test/broken", Extractor: "feed"},
		},
		Categorizer: digest.NewCategorizer(nil),
		Composer:    digest.Composer{MaxItems: 10, MaxChars: 1500},
		Dispatcher:  dispatcher,
		Location:    time.UTC,
	})

	if err := pipeline.Run(context.Background(), now, true); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if len(dispatcher.sent) != 3 {
		t.Fatalf("expected 3 digests (economy, politics, uncategorized), got %d", len(dispatcher.sent))
	}

	// Categories dispatch in deterministic alphabetical order.
	if !strings.HasPrefix(dispatcher.sent[0], "economy — ") {
		t.Fatalf("unexpected first digest: %s", dispatcher.sent[0])
	}
	if !strings.HasPrefix(dispatcher.sent[1], "politics — ") {
		t.Fatalf("unexpected second digest: %s", dispatcher.sent[1])
	}
	if !strings.HasPrefix(dispatcher.sent[2], "uncategorized — ") {
		t.Fatalf("unexpected third digest: %s", dispatcher.sent[2])
	}

	if !strings.Contains(dispatcher.sent[2], "Trade deal signed after talks") {
		t.Fatalf("undated scraped headline missing: %s", dispatcher.sent[2])
	}
}

func TestNewsPipelineDedupesAcrossSources(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.August, 15, 6, 0, 0, 0, time.UTC)
	day := "Fri, 15 Aug 2025"

	fetcher := &stubFetcher{pages: map[string][]byte{
		"https://f.test/a": rssWithItem("Mesma manchete repetida hoje", "https://f.test/a/1", day),
		"https://f.test/b": rssWithItem("Mesma manchete repetida hoje", "https://f.test/b/1", day),
	}}

	dispatcher := &stubDispatcher{}
	pipeline := NewNewsPipeline(NewsDeps{
		Fetcher:  fetcher,
		Registry: newsRegistry(),
		Sources: []extract.Source{
			{Name: "Globo_Economia", URL: "https://f.test/a", Extractor: "feed"},
			{Name: "Folha_Economia", URL: "https://f.test/b", Extractor: "feed"},
		},
		Categorizer: digest.NewCategorizer(nil),
		Composer:    digest.Composer{MaxItems: 10, MaxChars: 1500},
		Dispatcher:  dispatcher,
		Location:    time.UTC,
	})

	if err := pipeline.Run(context.Background(), now, true); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if len(dispatcher.sent) != 1 {
		t.Fatalf("expected 1 digest, got %d", len(dispatcher.sent))
	}
	if got := strings.Count(dispatcher.sent[0], "Mesma manchete repetida hoje"); got != 1 {
		t.Fatalf("expected headline once after dedupe, got %d occurrences", got)
	}
}

func TestNewsPipelineDispatchFailureDoesNotBlockOthers(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.August, 15, 6, 0, 0, 0, time.UTC)
	day := "Fri, 15 Aug 2025"

	fetcher := &stubFetcher{pages: map[string][]byte{
		"https://f.test/econ":     rssWithItem("Inflação em alta neste mês", "https://f.test/econ/1", day),
		"https://f.test/politics": rssWithItem("Votação da reforma adiada", "https://f.test/pol/1", day),
	}}

	dispatcher := &stubDispatcher{failUpTo: 1}
	pipeline := NewNewsPipeline(NewsDeps{
		Fetcher:  fetcher,
		Registry: newsRegistry(),
		Sources: []extract.Source{
			{Name: "Estadao_Economia", URL: "https://f.test/econ", Extractor: "feed"},
			{Name: "Globo_Politica", URL: "https://f.test/politics", Extractor: "feed"},
		},
		Categorizer: digest.NewCategorizer(nil),
		Composer:    digest.Composer{MaxItems: 10, MaxChars: 1500},
		Dispatcher:  dispatcher,
		Location:    time.UTC,
	})

	err := pipeline.Run(context.Background(), now, true)
	if err == nil {
		t.Fatal("expected dispatch error surfaced")
	}

	var dispatchErr *domain.DispatchError
	if !errors.As(err, &dispatchErr) {
		t.Fatalf("expected DispatchError, got %v", err)
	}
	if dispatcher.calls != 2 {
		t.Fatalf("expected both digests attempted, got %d calls", dispatcher.calls)
	}
	if len(dispatcher.sent) != 1 {
		t.Fatalf("expected second digest delivered, got %d", len(dispatcher.sent))
	}
}

func TestNewsPipelineRecordsDeliveryDestination(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.August, 15, 6, 0, 0, 0, time.UTC)

	fetcher := &stubFetcher{pages: map[string][]byte{
		"https://f.test/econ": rssWithItem("Inflação em alta neste mês", "https://f.test/econ/1", "Fri, 15 Aug 2025"),
	}}

	dispatcher := &stubDispatcher{}
	deliveries := &stubDeliveryLog{}
	pipeline := NewNewsPipeline(NewsDeps{
		Fetcher:  fetcher,
		Registry: newsRegistry(),
		Sources: []extract.Source{
			{Name: "Estadao_Economia", URL: "https://f.test/econ", Extractor: "feed"},
		},
		Categorizer: digest.NewCategorizer(nil),
		Composer:    digest.Composer{MaxItems: 10, MaxChars: 1500},
		Dispatcher:  dispatcher,
		Destination: "whatsapp:+5511999999999",
		Deliveries:  deliveries,
		Location:    time.UTC,
	})

	if err := pipeline.Run(context.Background(), now, true); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if len(deliveries.records) != 1 {
		t.Fatalf("expected 1 delivery record, got %d", len(deliveries.records))
	}
	rec := deliveries.records[0]
	if rec.Destination != "whatsapp:+5511999999999" {
		t.Fatalf("destination not recorded: %+v", rec)
	}
	if rec.Category != "economy" || rec.Status != domain.DeliverySent {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.Chars == 0 {
		t.Fatalf("expected digest length recorded: %+v", rec)
	}
}

func TestNewsPipelinePreviewDoesNotDispatch(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.August, 15, 6, 0, 0, 0, time.UTC)

	fetcher := &stubFetcher{pages: map[string][]byte{
		"https://f.test/econ": rssWithItem("Inflação em alta neste mês", "https://f.test/econ/1", "Fri, 15 Aug 2025"),
	}}

	dispatcher := &stubDispatcher{}
	pipeline := NewNewsPipeline(NewsDeps{
		Fetcher:  fetcher,
		Registry: newsRegistry(),
		Sources: []extract.Source{
			{Name: "Estadao_Economia", URL: "https://f.test/econ", Extractor: "feed"},
		},
		Categorizer: digest.NewCategorizer(nil),
		Composer:    digest.Composer{MaxItems: 10, MaxChars: 1500},
		Dispatcher:  dispatcher,
		Location:    time.UTC,
	})

	if err := pipeline.Run(context.Background(), now, false); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if dispatcher.calls != 0 {
		t.Fatalf("preview run must not dispatch, got %d calls", dispatcher.calls)
	}
}
