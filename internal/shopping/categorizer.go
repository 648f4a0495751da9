// Package shopping sorts grocery lists into store sections and edits them.
package shopping

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"yourkitchen/internal/domain"
	"yourkitchen/internal/llm"
	"yourkitchen/internal/shared"
)

// Category is a store section.
type Category string

const (
	Produce   Category = "produce"
	Protein   Category = "protein"
	Dairy     Category = "dairy"
	Pantry    Category = "pantry"
	Frozen    Category = "frozen"
	Beverages Category = "beverages"
	Bakery    Category = "bakery"
	Snacks    Category = "snacks"
	Other     Category = "other"
)

// CategoryOrder is the closed vocabulary in display order.
var CategoryOrder = []Category{Produce, Protein, Dairy, Pantry, Frozen, Beverages, Bakery, Snacks, Other}

// ParseCategory maps a label to a known category, or Other.
func ParseCategory(label string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(label)))
	for _, known := range CategoryOrder {
		if c == known {
			return c
		}
	}
	return Other
}

// Entry is one grocery item placed in a category. Index points into the
// categorized list.
type Entry struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

// Categories maps each category to its entries in list order. Every index of
// the categorized list appears exactly once across all categories.
type Categories map[Category][]Entry

// Count returns the number of entries across all categories.
func (c Categories) Count() int {
	n := 0
	for _, entries := range c {
		n += len(entries)
	}
	return n
}

//go:embed categorize_prompt.md
var categorizePrompt string

var categorizeTemplate = template.Must(template.New("Categorize").Parse(categorizePrompt))

func categorizeSchema() *llm.Schema {
	return llm.Object(map[string]*llm.Schema{
		"categories": llm.ArrayOf(llm.Object(map[string]*llm.Schema{
			"index":    llm.Integer("Index of the item in the grocery list"),
			"category": {Type: llm.TypeString, Enum: categoryLabels()},
		}, "index", "category")),
	}, "categories")
}

type categorizeResponse struct {
	Categories []struct {
		Index    int    `json:"index"`
		Category string `json:"category"`
	} `json:"categories"`
}

// Categorizer asks the text model for a store section per item.
type Categorizer struct {
	textGen llm.TextGenerator
}

// NewCategorizer creates a new Categorizer.
func NewCategorizer(textGen llm.TextGenerator) *Categorizer {
	return &Categorizer{textGen: textGen}
}

// Categorize places every item into one category. The result always covers
// every index exactly once: on failure it is Fallback(items) and the error is
// returned alongside it. Empty input makes no call.
func (c *Categorizer) Categorize(ctx context.Context, items []domain.GroceryItem) (Categories, shared.AgentMeta, error) {
	meta := shared.AgentMeta{AgentName: shared.AgentCategorizer}
	if len(items) == 0 {
		return Categories{}, meta, nil
	}
	start := time.Now()

	var buf bytes.Buffer
	err := categorizeTemplate.Execute(&buf, struct {
		Categories string
		Items      []Entry
	}{
		Categories: strings.Join(categoryLabels(), ", "),
		Items:      entries(items),
	})
	if err != nil {
		return Fallback(items), meta, fmt.Errorf("failed to render categorize prompt: %w", err)
	}

	resp, err := c.textGen.GenerateContent(ctx, llm.Request{
		Prompt: buf.String(),
		Schema: categorizeSchema(),
	})
	meta = shared.NewAgentMeta(shared.AgentCategorizer, resp.Usage, start)
	if err != nil {
		return Fallback(items), meta, fmt.Errorf("failed to categorize groceries: %w", err)
	}

	var parsed categorizeResponse
	if err := json.Unmarshal([]byte(llm.ExtractJSON(resp.Content)), &parsed); err != nil {
		return Fallback(items), meta, fmt.Errorf("failed to parse categories: %w. Response: %s", err, resp.Content)
	}

	assigned := make(map[int]Category, len(parsed.Categories))
	for _, a := range parsed.Categories {
		if a.Index < 0 || a.Index >= len(items) {
			continue
		}
		if _, dup := assigned[a.Index]; dup {
			continue
		}
		assigned[a.Index] = ParseCategory(a.Category)
	}

	out := Categories{}
	for i, e := range entries(items) {
		cat, ok := assigned[i]
		if !ok {
			cat = Other
		}
		out[cat] = append(out[cat], e)
	}
	return out, meta, nil
}

// Fallback puts every item into Other, keeping indices.
func Fallback(items []domain.GroceryItem) Categories {
	if len(items) == 0 {
		return Categories{}
	}
	return Categories{Other: entries(items)}
}

func entries(items []domain.GroceryItem) []Entry {
	out := make([]Entry, len(items))
	for i, item := range items {
		out[i] = Entry{Index: i, Name: item.Item}
	}
	return out
}

func categoryLabels() []string {
	labels := make([]string, len(CategoryOrder))
	for i, c := range CategoryOrder {
		labels[i] = string(c)
	}
	return labels
}
