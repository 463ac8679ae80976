package extract

import (
	"bytes"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"FeedDigest/internal/domain"
)

const (
	defaultMaxArticles = 5
	minHeadlineWords   = 3
)

// HeadlineExtractor scrapes front-page headlines from sites without a feed
// or structured data. Only anchor and heading elements whose visible text
// has at least three words count as headlines; relative links are resolved
// against the page URL.
type HeadlineExtractor struct {
	maxArticles int
}

// NewHeadlineExtractor caps results at maxArticles per page; zero means the
// default of 5.
func NewHeadlineExtractor(maxArticles int) *HeadlineExtractor {
	if maxArticles <= 0 {
		maxArticles = defaultMaxArticles
	}
	return &HeadlineExtractor{maxArticles: maxArticles}
}

// Name identifies the strategy inside the registry.
func (e *HeadlineExtractor) Name() string {
	return "headline"
}

// Extract collects unique headline titles until the cap is reached. Scraped
// headlines carry no timestamp, so the recency filter always keeps them.
func (e *HeadlineExtractor) Extract(raw []byte, src Source) ([]domain.Item, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	base, err := url.Parse(src.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid source url %s: %w", src.URL, err)
	}

	limit := e.maxArticles
	if v, ok := src.Options["maxArticles"]; ok {
		if n, convErr := strconv.Atoi(v); convErr == nil && n > 0 {
			limit = n
		}
	}

	var items []domain.Item
	seen := map[string]struct{}{}

	doc.Find("h2, h3, a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		href, ok := sel.Attr("href")
		if text == "" || !ok {
			return true
		}
		if len(strings.Fields(text)) < minHeadlineWords {
			return true
		}
		if _, dup := seen[text]; dup {
			return true
		}

		link, resolved := resolveLink(base, href)
		if !resolved {
			return true
		}

		seen[text] = struct{}{}
		items = append(items, domain.NewItem(text, link, "", src.Name, nil))
		return len(items) < limit
	})

	return items, nil
}

// resolveLink absolutizes root-relative hrefs and keeps absolute http(s)
// ones; anything else (fragments, javascript:, mailto:) is discarded.
func resolveLink(base *url.URL, href string) (string, bool) {
	switch {
	case strings.HasPrefix(href, "/"):
		ref, err := url.Parse(href)
		if err != nil {
			return "", false
		}
		return base.ResolveReference(ref).String(), true
	case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"):
		return href, true
	default:
		return "", false
	}
}
