package digest

import (
	"strings"

	"FeedDigest/internal/domain"
)

// Uncategorized is the bucket for items whose source tag has no separator
// or matches no synonym.
const Uncategorized = "uncategorized"

const sourceTagSeparator = "_"

// DefaultCategories maps bucket names to the source-tag suffixes that feed
// them. New buckets slot in through configuration, not code.
func DefaultCategories() map[string][]string {
	return map[string][]string{
		"economy":  {"economia", "economy", "business"},
		"politics": {"politica", "politics", "policy"},
	}
}

// Categorizer assigns items to topic buckets by the trailing component of
// their source tag. The mapping is table-driven and case-insensitive.
type Categorizer struct {
	buckets map[string]string
}

// NewCategorizer builds a categorizer from a bucket -> synonyms table; an
// empty table falls back to DefaultCategories.
func NewCategorizer(table map[string][]string) *Categorizer {
	if len(table) == 0 {
		table = DefaultCategories()
	}

	buckets := make(map[string]string)
	for bucket, synonyms := range table {
		for _, synonym := range synonyms {
			buckets[strings.ToLower(synonym)] = bucket
		}
	}

	return &Categorizer{buckets: buckets}
}

// Categorize is total: every item lands in exactly one bucket. Input items
// are never mutated; the returned items are copies with Category set.
func (c *Categorizer) Categorize(items []domain.Item) map[string][]domain.Item {
	out := make(map[string][]domain.Item)
	for _, item := range items {
		bucket := c.bucketFor(item.SourceTag)
		item.Category = bucket
		out[bucket] = append(out[bucket], item)
	}
	return out
}

func (c *Categorizer) bucketFor(sourceTag string) string {
	idx := strings.LastIndex(sourceTag, sourceTagSeparator)
	if idx < 0 {
		return Uncategorized
	}

	suffix := strings.ToLower(sourceTag[idx+len(sourceTagSeparator):])
	if bucket, ok := c.buckets[suffix]; ok {
		return bucket
	}
	return Uncategorized
}
