package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"FeedDigest/internal/domain"
)

const (
	defaultSchemaID       = "js_recipe_schema"
	defaultHeadingKeyword = "Ingrediente"
)

// recipeSchema mirrors the JSON-LD block embedded in recipe pages.
type recipeSchema struct {
	Name             string   `json:"name"`
	RecipeIngredient []string `json:"recipeIngredient"`
}

// RecipeExtractor pulls an ingredient list out of a recipe page using a
// layered fallback chain: embedded JSON-LD first, then the list following
// an "Ingrediente" heading, then every list item on the page. The chain
// stops at the first strategy that yields a non-empty result.
type RecipeExtractor struct {
	logger *slog.Logger
}

// NewRecipeExtractor wires an optional component logger.
func NewRecipeExtractor(logger *slog.Logger) *RecipeExtractor {
	return &RecipeExtractor{logger: logger}
}

// Name identifies the strategy inside the registry.
func (e *RecipeExtractor) Name() string {
	return "recipe"
}

// Extract returns the deduplicatable ingredient items of a recipe page.
func (e *RecipeExtractor) Extract(raw []byte, src Source) ([]domain.Item, error) {
	recipe, err := e.ExtractRecipe(raw, src)
	if err != nil {
		return nil, err
	}
	return recipe.Ingredients, nil
}

// ExtractRecipe returns the recipe name alongside its ingredients. The name
// comes from the structured block when present, else the page title, else
// the source URL.
func (e *RecipeExtractor) ExtractRecipe(raw []byte, src Source) (domain.Recipe, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return domain.Recipe{}, fmt.Errorf("parse recipe page: %w", err)
	}

	name := strings.TrimSpace(doc.Find("title").First().Text())
	if name == "" {
		name = src.URL
	}

	var lines []string
	for _, strategy := range e.strategies(src) {
		found, schemaName, sErr := strategy.run(doc)
		if sErr != nil {
			e.debug("recipe strategy failed", "strategy", strategy.name, "source", src.Name, "error", sErr)
			continue
		}
		if len(found) == 0 {
			continue
		}
		if schemaName != "" {
			name = schemaName
		}
		lines = found
		e.debug("recipe strategy matched", "strategy", strategy.name, "source", src.Name, "ingredients", len(found))
		break
	}

	items := make([]domain.Item, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		items = append(items, domain.NewItem(line, "", "", src.Name, nil))
	}

	return domain.Recipe{Name: name, URL: src.URL, Ingredients: items}, nil
}

type recipeStrategy struct {
	name string
	run  func(doc *goquery.Document) ([]string, string, error)
}

func (e *RecipeExtractor) strategies(src Source) []recipeStrategy {
	schemaID := src.Options["schemaId"]
	if schemaID == "" {
		schemaID = defaultSchemaID
	}
	keyword := src.Options["headingKeyword"]
	if keyword == "" {
		keyword = defaultHeadingKeyword
	}

	return []recipeStrategy{
		{name: "structured", run: func(doc *goquery.Document) ([]string, string, error) {
			return structuredIngredients(doc, schemaID)
		}},
		{name: "heading-list", run: func(doc *goquery.Document) ([]string, string, error) {
			return headingIngredients(doc, keyword), "", nil
		}},
		{name: "all-list-items", run: func(doc *goquery.Document) ([]string, string, error) {
			return allListItems(doc), "", nil
		}},
	}
}

func structuredIngredients(doc *goquery.Document, schemaID string) ([]string, string, error) {
	script := doc.Find("script#" + schemaID).First()
	if script.Length() == 0 {
		return nil, "", nil
	}

	var schema recipeSchema
	if err := json.Unmarshal([]byte(script.Text()), &schema); err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrMalformedStructuredData, err)
	}

	return schema.RecipeIngredient, schema.Name, nil
}

func headingIngredients(doc *goquery.Document, keyword string) []string {
	var lines []string

	doc.Find("h2, h3, h4, h5").EachWithBreak(func(_ int, heading *goquery.Selection) bool {
		if !strings.Contains(heading.Text(), keyword) {
			return true
		}
		list := followingList(heading)
		if list == nil {
			return true
		}
		list.Find("li").Each(func(_ int, li *goquery.Selection) {
			if text := strings.TrimSpace(li.Text()); text != "" {
				lines = append(lines, text)
			}
		})
		return len(lines) == 0
	})

	return lines
}

// followingList locates the first ul/ol appearing after the heading in
// document order, climbing ancestors when the heading has no list sibling.
func followingList(heading *goquery.Selection) *goquery.Selection {
	for cur := heading; cur.Length() > 0; cur = cur.Parent() {
		var list *goquery.Selection
		cur.NextAll().EachWithBreak(func(_ int, sibling *goquery.Selection) bool {
			if sibling.Is("ul, ol") {
				list = sibling
				return false
			}
			if nested := sibling.Find("ul, ol").First(); nested.Length() > 0 {
				list = nested
				return false
			}
			return true
		})
		if list != nil {
			return list
		}
	}
	return nil
}

func allListItems(doc *goquery.Document) []string {
	var lines []string
	doc.Find("li").Each(func(_ int, li *goquery.Selection) {
		if text := strings.TrimSpace(li.Text()); text != "" {
			lines = append(lines, text)
		}
	})
	return lines
}

func (e *RecipeExtractor) debug(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}
