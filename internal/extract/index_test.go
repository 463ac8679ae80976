package extract

import (
	"testing"
)

func TestRecipeIndexExtract(t *testing.T) {
	t.Parallel()

	html := `
	<html><body>
	  <a href="https://recipes.example.org/receita/moqueca">Moqueca</a>
	  <a href="/receita/farofa">Farofa</a>
	  <a href="https://recipes.example.org/receita/moqueca">Moqueca repetida</a>
	  <a href="https://recipes.example.org/blog/outro-post">Outro post</a>
	  <a href="/sobre">Sobre</a>
	</body></html>`

	e := NewRecipeIndexExtractor()
	items, err := e.Extract([]byte(html), Source{
		Name:    "menu",
		URL:     "https://recipes.example.org/blog/top-13",
		Options: map[string]string{"recipePrefix": "https://recipes.example.org/receita/"},
	})
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("expected 2 unique recipe links, got %d", len(items))
	}
	if items[0].URL != "https://recipes.example.org/receita/moqueca" {
		t.Fatalf("unexpected first link: %s", items[0].URL)
	}
	if items[1].URL != "https://recipes.example.org/receita/farofa" {
		t.Fatalf("relative link not absolutized: %s", items[1].URL)
	}
}

func TestRecipeIndexRequiresPrefix(t *testing.T) {
	t.Parallel()

	e := NewRecipeIndexExtractor()
	if _, err := e.Extract([]byte("<html></html>"), Source{Name: "menu", URL: "https://recipes.example.org"}); err == nil {
		t.Fatal("expected error for missing recipePrefix option")
	}
}
