package digest

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"FeedDigest/internal/domain"
)

const (
	defaultMaxItems    = 10
	defaultMaxChars    = 1500
	maxSummaryChars    = 150
	blockSeparator     = "\n\n"
	headerDateLayout   = "02/01/2006"
	menuCategory       = "menu"
	shoppingCategory   = "shopping-list"
	shoppingListHeader = "Lista de compras:"
)

// Weekday labels for menu lines, Monday first.
var weekdayLabels = []string{
	"Segunda-feira",
	"Terça-feira",
	"Quarta-feira",
	"Quinta-feira",
	"Sexta-feira",
	"Sábado",
	"Domingo",
}

// Composer renders item sets into text blocks that never exceed MaxChars.
// A line that would blow the budget is dropped whole, never cut mid-line,
// and composition stops there.
type Composer struct {
	MaxItems     int
	MaxChars     int
	HeadlineOnly bool
	Location     *time.Location
}

func (c Composer) maxItems() int {
	if c.MaxItems > 0 {
		return c.MaxItems
	}
	return defaultMaxItems
}

func (c Composer) maxChars() int {
	if c.MaxChars > 0 {
		return c.MaxChars
	}
	return defaultMaxChars
}

func (c Composer) location() *time.Location {
	if c.Location != nil {
		return c.Location
	}
	return time.UTC
}

// Compose renders one category digest: a dated header plus one formatted
// line per item, stopping before the character budget is exceeded.
func (c Composer) Compose(label string, items []domain.Item, now time.Time) domain.Digest {
	header := fmt.Sprintf("%s — %s", label, now.In(c.location()).Format(headerDateLayout))

	lines := []string{header}
	total := runeLen(header) + runeLen(blockSeparator)

	count := 0
	for i, item := range items {
		if count >= c.maxItems() {
			break
		}

		line := c.itemLine(i+1, item)
		tentative := total + runeLen(line) + runeLen(blockSeparator)
		if tentative > c.maxChars() {
			break
		}

		lines = append(lines, line)
		total = tentative
		count++
	}

	return domain.Digest{Category: label, Text: strings.Join(lines, blockSeparator)}
}

func (c Composer) itemLine(idx int, item domain.Item) string {
	if c.HeadlineOnly {
		line := "• " + item.Title
		if item.SourceTag != "" {
			line += fmt.Sprintf(" (%s)", item.SourceTag)
		}
		if item.URL != "" {
			line += "\nLink: " + item.URL
		}
		return line
	}

	line := fmt.Sprintf("%d. %s", idx, item.Title)
	if summary := TruncateSummary(item.Summary); summary != "" {
		line += " – " + summary
	}
	if item.SourceTag != "" {
		line += fmt.Sprintf(" (Fonte: %s)", item.SourceTag)
	}
	if item.URL != "" {
		line += "\nLink: " + item.URL
	}
	return line
}

// ComposeMenu renders the weekly menu plus its shopping list. The menu is
// one digest under the character budget; the shopping list overflows into
// follow-up digests instead of dropping ingredients, since a partial
// shopping list is useless.
func (c Composer) ComposeMenu(recipes []domain.Recipe, shopping []domain.Item, now time.Time) []domain.Digest {
	header := "Cardápio da semana — " + now.In(c.location()).Format(headerDateLayout)

	lines := []string{header}
	total := runeLen(header) + 1

	for i, recipe := range recipes {
		day := weekdayLabels[i%len(weekdayLabels)]
		line := fmt.Sprintf("%s: %s — %s", day, recipe.Name, recipe.URL)
		tentative := total + runeLen(line) + 1
		if tentative > c.maxChars() {
			break
		}
		lines = append(lines, line)
		total = tentative
	}

	digests := []domain.Digest{{Category: menuCategory, Text: strings.Join(lines, "\n")}}
	digests = append(digests, c.composeShopping(shopping)...)
	return digests
}

func (c Composer) composeShopping(shopping []domain.Item) []domain.Digest {
	if len(shopping) == 0 {
		return nil
	}

	contHeader := shoppingListHeader + " (cont.)"
	// Room for one line next to either header; an ingredient line that
	// cannot fit even alone is cut, so every digest stays under budget.
	room := c.maxChars() - runeLen(contHeader) - 1

	var digests []domain.Digest

	header := shoppingListHeader
	lines := []string{header}
	total := runeLen(header) + 1

	flush := func() {
		if len(lines) > 1 {
			digests = append(digests, domain.Digest{Category: shoppingCategory, Text: strings.Join(lines, "\n")})
			header = contHeader
		}
		lines = []string{header}
		total = runeLen(header) + 1
	}

	for _, item := range shopping {
		line := "- " + item.Title
		if room > 1 && runeLen(line) > room {
			line = string([]rune(line)[:room-1]) + "…"
		}
		if total+runeLen(line)+1 > c.maxChars() {
			flush()
		}
		lines = append(lines, line)
		total += runeLen(line) + 1
	}
	flush()

	return digests
}

// TruncateSummary strips markup, collapses whitespace and bounds the text:
// the first sentence when it fits in 150 characters, otherwise a hard cut
// at the last whole word before 150 with an ellipsis.
func TruncateSummary(summary string) string {
	text := strings.Join(strings.Fields(StripHTML(summary)), " ")
	if text == "" {
		return ""
	}

	if i := strings.Index(text, "."); i >= 0 {
		text = strings.TrimSpace(text[:i])
	}
	if utf8.RuneCountInString(text) <= maxSummaryChars {
		return text
	}

	cut := string([]rune(text)[:maxSummaryChars])
	if j := strings.LastIndex(cut, " "); j > 0 {
		cut = cut[:j]
	}
	return cut + "…"
}

// StripHTML returns the visible text of an HTML fragment; on parse failure
// the input is returned as-is.
func StripHTML(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return fragment
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	return doc.Text()
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
