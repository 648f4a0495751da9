// Package clipper imports recipes from web pages into the cookbook format.
package clipper

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"text/template"
	"time"
	"unicode/utf8"

	"yourkitchen/internal/domain"
	"yourkitchen/internal/llm"
	"yourkitchen/internal/shared"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
)

//go:embed clip_prompt.md
var clipPrompt string

var clipTemplate = template.Must(template.New("Clip").Parse(clipPrompt))

// maxContentChars caps the page text sent to the model.
const maxContentChars = 20000

var (
	// ErrInvalidURL is returned for anything but an absolute http(s) URL.
	ErrInvalidURL = errors.New("url must be an absolute http or https address")
	// ErrNoRecipe is returned when the page has no recognizable recipe.
	ErrNoRecipe = errors.New("no recipe found on page")
)

var extractedSchema = llm.Object(map[string]*llm.Schema{
	"title":       llm.String("Recipe title, empty when the page has no recipe"),
	"ingredients": llm.ArrayOf(llm.String("Ingredient with amount")),
	"steps":       llm.ArrayOf(llm.String("One instruction step")),
	"prep_time":   llm.String("Total time, e.g. 30 mins"),
	"servings":    llm.String("e.g. 4 people"),
	"tip":         llm.String("The most useful tip from the page, or empty"),
}, "title", "ingredients", "steps", "prep_time", "servings", "tip")

// Clipper handles fetching and extracting recipes from URLs.
type Clipper struct {
	textGen llm.TextGenerator
	client  *http.Client
}

// ExtractedRecipe represents the data structured by the AI.
type ExtractedRecipe struct {
	Title       string   `json:"title"`
	Ingredients []string `json:"ingredients"`
	Steps       []string `json:"steps"`
	PrepTime    string   `json:"prep_time"`
	Servings    string   `json:"servings"`
	Tip         string   `json:"tip"`
}

// NewClipper creates a new Clipper instance.
func NewClipper(textGen llm.TextGenerator) *Clipper {
	return &Clipper{
		textGen: textGen,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// ClipURL fetches the page and extracts one recipe from it. The recipe is
// returned unsaved with Source web and WebURL set to rawURL.
func (c *Clipper) ClipURL(ctx context.Context, rawURL string) (*domain.Recipe, shared.AgentMeta, error) {
	meta := shared.AgentMeta{AgentName: shared.AgentClipper}
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, meta, ErrInvalidURL
	}

	content, err := c.fetchAndCleanHTML(ctx, u.String())
	if err != nil {
		return nil, meta, fmt.Errorf("failed to fetch content: %w", err)
	}

	var prompt bytes.Buffer
	if err := clipTemplate.Execute(&prompt, struct{ URL, Content string }{u.String(), content}); err != nil {
		return nil, meta, fmt.Errorf("failed to execute clip template: %w", err)
	}

	start := time.Now()
	resp, err := c.textGen.GenerateContent(ctx, llm.Request{Prompt: prompt.String(), Schema: extractedSchema})
	meta = shared.NewAgentMeta(shared.AgentClipper, resp.Usage, start)
	if err != nil {
		return nil, meta, fmt.Errorf("ai extraction failed: %w", err)
	}

	var extracted ExtractedRecipe
	if err := json.Unmarshal([]byte(llm.ExtractJSON(resp.Content)), &extracted); err != nil {
		return nil, meta, fmt.Errorf("failed to parse AI response: %w. Response: %s", err, resp.Content)
	}
	if strings.TrimSpace(extracted.Title) == "" || len(extracted.Steps) == 0 {
		return nil, meta, ErrNoRecipe
	}
	return extracted.toRecipe(u.String()), meta, nil
}

func (e ExtractedRecipe) toRecipe(sourceURL string) *domain.Recipe {
	timing := e.PrepTime
	if e.Servings != "" {
		if timing != "" {
			timing += ", "
		}
		timing += "serves " + e.Servings
	}

	ingredients := make([]domain.Ingredient, 0, len(e.Ingredients))
	for _, ing := range e.Ingredients {
		if i := domain.TextIngredient(ing); !i.IsZero() {
			ingredients = append(ingredients, i)
		}
	}

	return &domain.Recipe{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(e.Title),
		Timing:       timing,
		Ingredients:  ingredients,
		Instructions: e.Steps,
		ChefTip:      e.Tip,
		Source:       domain.SourceWeb,
		WebURL:       sourceURL,
	}
}

func (c *Clipper) fetchAndCleanHTML(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; yourkitchen-clipper)")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	// Remove noise to save LLM tokens
	doc.Find("script, style, nav, header, footer, iframe, form, noscript, ads, .ads, #ads, .comments, #comments").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	text := strings.Join(strings.Fields(doc.Find("body").Text()), " ")
	return truncate(text, maxContentChars), nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
