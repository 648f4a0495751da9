package clipper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"yourkitchen/internal/domain"
	"yourkitchen/internal/llm"
	"yourkitchen/internal/shared"
)

// --- Mocks ---
type MockTextGenerator struct {
	Response    string
	ShouldError bool
	Prompt      string
}

func (m *MockTextGenerator) GenerateContent(ctx context.Context, req llm.Request) (llm.ContentResponse, error) {
	m.Prompt = req.Prompt
	if m.ShouldError {
		return llm.ContentResponse{}, fmt.Errorf("mock ai error")
	}
	return llm.ContentResponse{Content: m.Response, Usage: shared.TokenUsage{PromptTokens: 5, CompletionTokens: 5}}, nil
}

func pageServer(t *testing.T, html string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(html))
	}))
	t.Cleanup(ts.Close)
	return ts
}

// --- Tests ---

func TestFetchAndCleanHTML(t *testing.T) {
	ts := pageServer(t, `
		<html>
			<head><script>alert('bad');</script></head>
			<body>
				<nav>Home | Recipes</nav>
				<h1>Tasty Recipe</h1>
				<div class="ads">Buy stuff!</div>
				<p>Mix   flour and
				water.</p>
				<script>more_bad_stuff()</script>
				<footer>Copyright 2024</footer>
			</body>
		</html>`)

	c := NewClipper(&MockTextGenerator{})
	cleanText, err := c.fetchAndCleanHTML(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	for _, noise := range []string{"alert('bad')", "more_bad_stuff", "Buy stuff!", "Copyright 2024", "Home | Recipes"} {
		if strings.Contains(cleanText, noise) {
			t.Errorf("Failed to remove %q", noise)
		}
	}
	if !strings.Contains(cleanText, "Tasty Recipe") {
		t.Error("Expected to find 'Tasty Recipe'")
	}
	if !strings.Contains(cleanText, "Mix flour and water.") {
		t.Errorf("Expected collapsed body content, got %q", cleanText)
	}
}

func TestFetchAndCleanHTMLStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer ts.Close()

	c := NewClipper(&MockTextGenerator{})
	if _, err := c.fetchAndCleanHTML(context.Background(), ts.URL); err == nil || !strings.Contains(err.Error(), "status 404") {
		t.Errorf("Expected a status error, got %v", err)
	}
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"crème brûlée", 3, "cr"},
		{"crème brûlée", 4, "crè"},
		{"short", 10, "short"},
		{"ñ", 1, ""},
	}
	for _, tt := range tests {
		got := truncate(tt.in, tt.n)
		if got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("truncate(%q, %d) produced invalid UTF-8", tt.in, tt.n)
		}
	}
}

func TestClipURL_Success(t *testing.T) {
	aiResponse := `{"title": "Mock Pie", "ingredients": ["Apple", " "], "steps": ["Bake"], "prep_time": "1h", "servings": "8", "tip": "Chill the dough"}`
	mockAI := &MockTextGenerator{Response: aiResponse}
	c := NewClipper(mockAI)
	ts := pageServer(t, "<html><body>Some Content</body></html>")

	recipe, meta, err := c.ClipURL(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("ClipURL failed: %v", err)
	}

	if recipe.Name != "Mock Pie" || recipe.Timing != "1h, serves 8" || recipe.ChefTip != "Chill the dough" {
		t.Errorf("Unexpected recipe %+v", recipe)
	}
	if recipe.Source != domain.SourceWeb || recipe.WebURL != ts.URL || recipe.ID == "" {
		t.Errorf("Expected a web recipe for %s, got %+v", ts.URL, recipe)
	}
	if len(recipe.Ingredients) != 1 || recipe.Ingredients[0].Name() != "Apple" {
		t.Errorf("Expected blank ingredients to be dropped, got %v", recipe.Ingredients)
	}
	if meta.AgentName != shared.AgentClipper || meta.Usage.PromptTokens != 5 {
		t.Errorf("Unexpected meta %+v", meta)
	}
	if !strings.Contains(mockAI.Prompt, "Some Content") {
		t.Error("Expected the page text in the prompt")
	}
}

func TestClipURL_Failures(t *testing.T) {
	ts := pageServer(t, "<html><body>Just a blog post</body></html>")

	tests := []struct {
		name    string
		url     string
		ai      *MockTextGenerator
		wantErr error
		wantMsg string
	}{
		{name: "relative url", url: "/recipes/pie", ai: &MockTextGenerator{}, wantErr: ErrInvalidURL},
		{name: "ftp url", url: "ftp://example.com/pie", ai: &MockTextGenerator{}, wantErr: ErrInvalidURL},
		{name: "no recipe", url: ts.URL, ai: &MockTextGenerator{Response: `{"title": "", "steps": []}`}, wantErr: ErrNoRecipe},
		{name: "ai error", url: ts.URL, ai: &MockTextGenerator{ShouldError: true}, wantMsg: "ai extraction failed"},
		{name: "bad json", url: ts.URL, ai: &MockTextGenerator{Response: "nope"}, wantMsg: "Response: nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := NewClipper(tt.ai).ClipURL(context.Background(), tt.url)
			if err == nil {
				t.Fatal("Expected an error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Expected %q in %v", tt.wantMsg, err)
			}
		})
	}
}
