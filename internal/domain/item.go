package domain

import (
	"strings"
	"time"
)

// Item is one normalized unit of extracted content: a news article,
// a scraped headline or a recipe ingredient line.
type Item struct {
	ID          string
	Title       string
	URL         string
	Summary     string
	SourceTag   string
	PublishedAt *time.Time
	Category    string
}

// Key returns the dedup key for a piece of text: trimmed and case-folded,
// diacritics preserved.
func Key(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// NewItem builds an item whose ID is derived from the title, falling back
// to the URL when the title is empty.
func NewItem(title, url, summary, sourceTag string, publishedAt *time.Time) Item {
	id := Key(title)
	if id == "" {
		id = Key(url)
	}
	return Item{
		ID:          id,
		Title:       strings.TrimSpace(title),
		URL:         url,
		Summary:     summary,
		SourceTag:   sourceTag,
		PublishedAt: publishedAt,
	}
}

// Digest is one bounded-length composed text block covering a category.
type Digest struct {
	Category string
	Text     string
}

// Recipe groups a recipe name, its page URL and the extracted ingredients.
type Recipe struct {
	Name        string
	URL         string
	Ingredients []Item
}

// DeliveryRecord is the audit snapshot persisted after each dispatch attempt.
type DeliveryRecord struct {
	Category    string
	Destination string
	Chars       int
	Status      string
	SentAt      time.Time
}

// Delivery statuses recorded in the audit log.
const (
	DeliverySent    = "sent"
	DeliveryFailed  = "failed"
	DeliveryPreview = "preview"
)
