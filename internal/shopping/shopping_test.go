package shopping

import (
	"context"
	"errors"
	"strings"
	"testing"

	"yourkitchen/internal/domain"
	"yourkitchen/internal/llm"
	"yourkitchen/internal/shared"
)

type MockTextGenerator struct {
	Content string
	Err     error
	Calls   int
	Prompts []string
}

func (m *MockTextGenerator) GenerateContent(ctx context.Context, req llm.Request) (llm.ContentResponse, error) {
	m.Calls++
	m.Prompts = append(m.Prompts, req.Prompt)
	if m.Err != nil {
		return llm.ContentResponse{}, m.Err
	}
	return llm.ContentResponse{Content: m.Content, Usage: shared.TokenUsage{TotalTokens: 12}}, nil
}

func groceries(names ...string) []domain.GroceryItem {
	items := make([]domain.GroceryItem, len(names))
	for i, n := range names {
		items[i] = domain.GroceryItem{Item: n}
	}
	return items
}

func assertCoversAll(t *testing.T, c Categories, n int) {
	t.Helper()
	if c.Count() != n {
		t.Fatalf("Expected %d entries, got %d", n, c.Count())
	}
	seen := make(map[int]bool)
	for _, entries := range c {
		for _, e := range entries {
			if seen[e.Index] {
				t.Errorf("Index %d appears twice", e.Index)
			}
			seen[e.Index] = true
		}
	}
	for i := 0; i < n; i++ {
		if !seen[i] {
			t.Errorf("Index %d is missing", i)
		}
	}
}

func TestCategorize(t *testing.T) {
	gen := &MockTextGenerator{Content: `{"categories": [
		{"index": 0, "category": "produce"},
		{"index": 1, "category": "Protein"},
		{"index": 1, "category": "dairy"},
		{"index": 2, "category": "spices"},
		{"index": 9, "category": "produce"}
	]}`}
	items := groceries("Spinach", "Chicken", "Saffron", "Mystery jar")

	cats, meta, err := NewCategorizer(gen).Categorize(context.Background(), items)
	if err != nil {
		t.Fatalf("Categorize failed: %v", err)
	}
	assertCoversAll(t, cats, len(items))

	if len(cats[Produce]) != 1 || cats[Produce][0].Name != "Spinach" {
		t.Errorf("Unexpected produce %v", cats[Produce])
	}
	if len(cats[Protein]) != 1 || cats[Protein][0].Index != 1 {
		t.Errorf("Expected the first assignment to win, got %v", cats[Protein])
	}
	if len(cats[Dairy]) != 0 {
		t.Errorf("Expected the duplicate to be dropped, got %v", cats[Dairy])
	}
	if len(cats[Other]) != 2 {
		t.Errorf("Expected unknown and missing items in other, got %v", cats[Other])
	}
	if meta.AgentName != shared.AgentCategorizer || meta.Usage.TotalTokens != 12 {
		t.Errorf("Unexpected meta %+v", meta)
	}
	if !strings.Contains(gen.Prompts[0], "3: Mystery jar") {
		t.Errorf("Expected indexed items in the prompt, got %q", gen.Prompts[0])
	}
}

func TestCategorizeFallback(t *testing.T) {
	items := groceries("Rice", "Eggs", "Milk")

	for name, gen := range map[string]*MockTextGenerator{
		"transport": {Err: errors.New("timeout")},
		"parse":     {Content: "I think rice is pantry."},
	} {
		t.Run(name, func(t *testing.T) {
			cats, _, err := NewCategorizer(gen).Categorize(context.Background(), items)
			if err == nil {
				t.Error("Expected the failure to be reported")
			}
			assertCoversAll(t, cats, len(items))
			if len(cats) != 1 || len(cats[Other]) != 3 {
				t.Errorf("Expected everything in other, got %v", cats)
			}
			if cats[Other][2].Name != "Milk" || cats[Other][2].Index != 2 {
				t.Errorf("Expected indices to be kept, got %v", cats[Other])
			}
		})
	}
}

func TestCategorizeEmpty(t *testing.T) {
	gen := &MockTextGenerator{}
	cats, _, err := NewCategorizer(gen).Categorize(context.Background(), nil)
	if err != nil || len(cats) != 0 {
		t.Errorf("Expected empty categories, got %v, %v", cats, err)
	}
	if gen.Calls != 0 {
		t.Error("Expected no model call for an empty list")
	}
}

func TestCache(t *testing.T) {
	gen := &MockTextGenerator{Content: `{"categories": [{"index": 0, "category": "produce"}, {"index": 1, "category": "dairy"}]}`}
	cache := NewCache(NewCategorizer(gen))
	ctx := context.Background()
	items := groceries("Kale", "Yogurt")

	if _, meta := cache.Categorize(ctx, "p1", items); meta == nil {
		t.Error("Expected a meta for the first call")
	}
	if _, meta := cache.Categorize(ctx, "p1", groceries("Kale", "Yogurt")); meta != nil {
		t.Error("Expected a cache hit for the same list")
	}
	if gen.Calls != 1 {
		t.Fatalf("Expected 1 call, got %d", gen.Calls)
	}

	cache.Categorize(ctx, "p2", items)
	if gen.Calls != 2 {
		t.Errorf("Expected profiles to be cached separately, got %d calls", gen.Calls)
	}

	cache.Categorize(ctx, "p1", groceries("Kale"))
	if gen.Calls != 3 {
		t.Errorf("Expected a changed list to be categorized again, got %d calls", gen.Calls)
	}
}

func TestCacheKeepsFallback(t *testing.T) {
	gen := &MockTextGenerator{Err: errors.New("down")}
	cache := NewCache(NewCategorizer(gen))
	items := groceries("Oats")

	cats, _ := cache.Categorize(context.Background(), "p1", items)
	assertCoversAll(t, cats, 1)
	cache.Categorize(context.Background(), "p1", items)
	if gen.Calls != 1 {
		t.Errorf("Expected the fallback to be cached, got %d calls", gen.Calls)
	}
}

func TestCacheKey(t *testing.T) {
	if got := CacheKey(groceries("a", "b", "c")); got != "a|b|c" {
		t.Errorf("Expected 'a|b|c', got %q", got)
	}
}

func TestListEdits(t *testing.T) {
	list := groceries("Rice", "Beans")

	added := AddItem(list, "  Limes ")
	if len(added) != 3 || added[2].Item != "Limes" {
		t.Errorf("Unexpected list after AddItem: %v", added)
	}
	if len(list) != 2 {
		t.Error("AddItem must not modify its input")
	}
	if got := AddItem(list, "   "); len(got) != 2 {
		t.Errorf("Expected blank text to be ignored, got %v", got)
	}

	removed := RemoveIndexes(added, []int{0, 7})
	if len(removed) != 2 || removed[0].Item != "Beans" {
		t.Errorf("Unexpected list after RemoveIndexes: %v", removed)
	}

	cleared := ClearCompleted(added, []int{0, 1, 2})
	if len(cleared) != 0 {
		t.Errorf("Expected an empty list, got %v", cleared)
	}

	withIngredients := AddIngredients(list, []domain.Ingredient{
		domain.TextIngredient("rice"),
		domain.MeasuredIngredient("Garlic", "3 cloves"),
		domain.MeasuredIngredient("garlic", "1 clove"),
	})
	if len(withIngredients) != 3 {
		t.Fatalf("Expected only garlic to be added, got %v", withIngredients)
	}
	if withIngredients[2].Item != "Garlic" || withIngredients[2].Note != "3 cloves" {
		t.Errorf("Unexpected added item %+v", withIngredients[2])
	}

	without := RemoveIngredients(withIngredients, []domain.Ingredient{domain.TextIngredient("GARLIC")})
	if len(without) != 2 {
		t.Errorf("Expected garlic to be removed, got %v", without)
	}
}

func TestSortedCategories(t *testing.T) {
	cats := Categories{
		Other:   {{Index: 3, Name: "Foil"}},
		Produce: {{Index: 2, Name: "Basil"}, {Index: 0, Name: "Tomato"}},
		Dairy:   {},
	}
	groups := SortedCategories(cats)
	if len(groups) != 2 {
		t.Fatalf("Expected 2 non-empty groups, got %d", len(groups))
	}
	if groups[0].Category != Produce || groups[1].Category != Other {
		t.Errorf("Unexpected order %v", groups)
	}
	if groups[0].Items[0].Name != "Tomato" {
		t.Errorf("Expected entries sorted by index, got %v", groups[0].Items)
	}
}
