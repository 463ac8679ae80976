package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"
	"unicode/utf8"

	"FeedDigest/internal/digest"
	"FeedDigest/internal/domain"
	"FeedDigest/internal/extract"
	"FeedDigest/internal/ports"
)

// MenuDeps wires all driven adapters into the weekly menu workflow.
// Destination names where the dispatcher delivers to, for the audit trail.
type MenuDeps struct {
	Fetcher     ports.Fetcher
	Index       *extract.RecipeIndexExtractor
	Recipes     *extract.RecipeExtractor
	Source      extract.Source
	Days        int
	Composer    digest.Composer
	Dispatcher  ports.Dispatcher
	Destination string
	Deliveries  ports.DeliveryLog
	Logger      *slog.Logger
	Rand        *rand.Rand
}

// MenuPlanner assembles a weekly menu: it samples recipes from an index
// page, extracts each one's ingredients and dispatches the menu plus a
// consolidated shopping list.
type MenuPlanner struct {
	fetcher     ports.Fetcher
	index       *extract.RecipeIndexExtractor
	recipes     *extract.RecipeExtractor
	source      extract.Source
	days        int
	composer    digest.Composer
	dispatcher  ports.Dispatcher
	destination string
	deliveries  ports.DeliveryLog
	logger      *slog.Logger
	rand        *rand.Rand
}

// NewMenuPlanner constructs the workflow; Days defaults to 7 and Rand to a
// time-seeded source.
func NewMenuPlanner(deps MenuDeps) *MenuPlanner {
	days := deps.Days
	if days <= 0 {
		days = 7
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rnd := deps.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &MenuPlanner{
		fetcher:     deps.Fetcher,
		index:       deps.Index,
		recipes:     deps.Recipes,
		source:      deps.Source,
		days:        days,
		composer:    deps.Composer,
		dispatcher:  deps.Dispatcher,
		destination: deps.Destination,
		deliveries:  deps.Deliveries,
		logger:      logger,
		rand:        rnd,
	}
}

// Run builds and dispatches the weekly menu. Fewer index entries than menu
// days is fatal for the run: nothing partial is sent. A recipe page that
// fails to fetch or extract is skipped.
func (m *MenuPlanner) Run(ctx context.Context, now time.Time, send bool) error {
	raw, err := m.fetcher.Fetch(ctx, m.source.Name, m.source.URL)
	if err != nil {
		return fmt.Errorf("fetch recipe index: %w", err)
	}

	entries, err := m.index.Extract(raw, m.source)
	if err != nil {
		return fmt.Errorf("extract recipe index: %w", err)
	}
	if len(entries) < m.days {
		return &domain.InsufficientContentError{Need: m.days, Got: len(entries)}
	}

	selected := m.sample(entries)

	var (
		recipes     []domain.Recipe
		ingredients []domain.Item
	)
	for _, entry := range selected {
		page, fErr := m.fetcher.Fetch(ctx, m.source.Name, entry.URL)
		if fErr != nil {
			m.logger.Error("skip recipe", "url", entry.URL, "error", fErr)
			continue
		}

		recipe, rErr := m.recipes.ExtractRecipe(page, extract.Source{
			Name:    m.source.Name,
			URL:     entry.URL,
			Options: m.source.Options,
		})
		if rErr != nil {
			m.logger.Error("skip recipe", "url", entry.URL, "error", rErr)
			continue
		}

		recipes = append(recipes, recipe)
		ingredients = append(ingredients, recipe.Ingredients...)
	}

	if len(recipes) == 0 {
		return &domain.InsufficientContentError{Need: m.days, Got: 0}
	}

	shopping := digest.SortAlphabetical(digest.Dedupe(ingredients))
	digests := m.composer.ComposeMenu(recipes, shopping, now)

	var errs []error
	for _, d := range digests {
		if err := m.deliver(ctx, d, send); err != nil {
			m.logger.Error("dispatch failed", "category", d.Category, "error", err)
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// sample picks days distinct entries without replacement, preserving none
// of the original order on purpose: variety is the point of the menu.
func (m *MenuPlanner) sample(entries []domain.Item) []domain.Item {
	shuffled := make([]domain.Item, len(entries))
	copy(shuffled, entries)
	m.rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:m.days]
}

func (m *MenuPlanner) deliver(ctx context.Context, d domain.Digest, send bool) error {
	if !send {
		m.logger.Info("digest preview", "category", d.Category, "chars", utf8.RuneCountInString(d.Text), "text", d.Text)
		m.record(ctx, d, domain.DeliveryPreview)
		return nil
	}

	if err := m.dispatcher.Send(ctx, d.Text); err != nil {
		m.record(ctx, d, domain.DeliveryFailed)
		return err
	}

	m.logger.Info("digest sent", "category", d.Category, "chars", utf8.RuneCountInString(d.Text))
	m.record(ctx, d, domain.DeliverySent)
	return nil
}

func (m *MenuPlanner) record(ctx context.Context, d domain.Digest, status string) {
	if m.deliveries == nil {
		return
	}
	rec := domain.DeliveryRecord{
		Category:    d.Category,
		Destination: m.destination,
		Chars:       utf8.RuneCountInString(d.Text),
		Status:      status,
		SentAt:      time.Now(),
	}
	if err := m.deliveries.Record(ctx, rec); err != nil {
		m.logger.Error("record delivery", "category", d.Category, "error", err)
	}
}
