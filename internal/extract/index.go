package extract

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"FeedDigest/internal/domain"
)

// RecipeIndexExtractor collects recipe page URLs from a blog or index page.
// Anchors are matched against a configured URL prefix; root-relative links
// sharing the prefix path are absolutized. Order of first appearance is
// preserved.
type RecipeIndexExtractor struct{}

// NewRecipeIndexExtractor builds the index strategy.
func NewRecipeIndexExtractor() *RecipeIndexExtractor {
	return &RecipeIndexExtractor{}
}

// Name identifies the strategy inside the registry.
func (e *RecipeIndexExtractor) Name() string {
	return "recipe-index"
}

// Extract returns one item per unique recipe URL found on the page. The
// prefix comes from the source option "recipePrefix".
func (e *RecipeIndexExtractor) Extract(raw []byte, src Source) ([]domain.Item, error) {
	prefix := src.Options["recipePrefix"]
	if prefix == "" {
		return nil, fmt.Errorf("source %s: recipePrefix option is required", src.Name)
	}

	prefixURL, err := url.Parse(prefix)
	if err != nil {
		return nil, fmt.Errorf("invalid recipePrefix %s: %w", prefix, err)
	}
	origin := prefixURL.Scheme + "://" + prefixURL.Host

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse index page: %w", err)
	}

	var items []domain.Item
	seen := map[string]struct{}{}

	doc.Find("a[href]").Each(func(_ int, anchor *goquery.Selection) {
		href, _ := anchor.Attr("href")

		var link string
		switch {
		case strings.HasPrefix(href, prefix):
			link = href
		case strings.HasPrefix(href, prefixURL.Path):
			link = origin + href
		default:
			return
		}

		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}
		items = append(items, domain.NewItem(strings.TrimSpace(anchor.Text()), link, "", src.Name, nil))
	})

	return items, nil
}
