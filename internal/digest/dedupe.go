// Package digest normalizes extracted items and renders them into
// bounded-length outbound messages.
package digest

import (
	"sort"
	"strings"
	"time"

	"FeedDigest/internal/domain"
)

// Dedupe drops items whose normalized key was already seen. The first
// occurrence wins and keeps its original casing; insertion order is
// preserved for callers that sort later.
func Dedupe(items []domain.Item) []domain.Item {
	out := make([]domain.Item, 0, len(items))
	seen := make(map[string]struct{}, len(items))

	for _, item := range items {
		key := item.ID
		if key == "" {
			key = domain.Key(item.Title)
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}

	return out
}

// FilterToday keeps items published on now's calendar date in loc. Undated
// items are always retained. The comparison converts both instants to loc
// before taking the date, so a 23:30 UTC publish still lands on the right
// local day.
func FilterToday(items []domain.Item, now time.Time, loc *time.Location) []domain.Item {
	if loc == nil {
		loc = time.UTC
	}
	todayY, todayM, todayD := now.In(loc).Date()

	out := make([]domain.Item, 0, len(items))
	for _, item := range items {
		if item.PublishedAt == nil {
			out = append(out, item)
			continue
		}
		y, m, d := item.PublishedAt.In(loc).Date()
		if y == todayY && m == todayM && d == todayD {
			out = append(out, item)
		}
	}

	return out
}

// SortAlphabetical returns a copy ordered by case-insensitive title, the
// display order for shopping lists.
func SortAlphabetical(items []domain.Item) []domain.Item {
	out := make([]domain.Item, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Title) < strings.ToLower(out[j].Title)
	})
	return out
}

// SortBySource returns a copy ordered by source tag, the display order for
// news digests.
func SortBySource(items []domain.Item) []domain.Item {
	out := make([]domain.Item, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SourceTag < out[j].SourceTag
	})
	return out
}
