package shopping

import (
	"sort"
	"strings"

	"yourkitchen/internal/domain"
)

// AddItem appends a manually typed item. Blank text leaves the list as is.
func AddItem(list []domain.GroceryItem, text string) []domain.GroceryItem {
	text = strings.TrimSpace(text)
	out := append([]domain.GroceryItem(nil), list...)
	if text == "" {
		return out
	}
	return append(out, domain.GroceryItem{Item: text})
}

// RemoveIndexes returns the list without the given indices. Out of range
// indices are ignored.
func RemoveIndexes(list []domain.GroceryItem, indexes []int) []domain.GroceryItem {
	drop := make(map[int]bool, len(indexes))
	for _, i := range indexes {
		drop[i] = true
	}
	out := make([]domain.GroceryItem, 0, len(list))
	for i, item := range list {
		if !drop[i] {
			out = append(out, item)
		}
	}
	return out
}

// ClearCompleted drops the checked items.
func ClearCompleted(list []domain.GroceryItem, checked []int) []domain.GroceryItem {
	return RemoveIndexes(list, checked)
}

// AddIngredients appends one item per ingredient whose name is not already on
// the list, ignoring case.
func AddIngredients(list []domain.GroceryItem, ingredients []domain.Ingredient) []domain.GroceryItem {
	out := append([]domain.GroceryItem(nil), list...)
	present := make(map[string]bool, len(list))
	for _, item := range list {
		present[normalizeName(item.Item)] = true
	}

	for _, ing := range ingredients {
		key := normalizeName(ing.Name())
		if key == "" || present[key] {
			continue
		}
		present[key] = true
		out = append(out, domain.GroceryItem{Item: ing.Name(), Note: ing.Amount()})
	}
	return out
}

// RemoveIngredients drops every item named like one of the ingredients,
// ignoring case.
func RemoveIngredients(list []domain.GroceryItem, ingredients []domain.Ingredient) []domain.GroceryItem {
	names := make(map[string]bool, len(ingredients))
	for _, ing := range ingredients {
		names[normalizeName(ing.Name())] = true
	}
	out := make([]domain.GroceryItem, 0, len(list))
	for _, item := range list {
		if !names[normalizeName(item.Item)] {
			out = append(out, item)
		}
	}
	return out
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CategoryGroup is one non-empty section of a categorized list.
type CategoryGroup struct {
	Category Category `json:"category"`
	Items    []Entry  `json:"items"`
}

// SortedCategories returns the non-empty categories in display order, each
// with its entries sorted by index.
func SortedCategories(c Categories) []CategoryGroup {
	groups := make([]CategoryGroup, 0, len(c))
	for _, cat := range CategoryOrder {
		items := c[cat]
		if len(items) == 0 {
			continue
		}
		sorted := append([]Entry(nil), items...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })
		groups = append(groups, CategoryGroup{Category: cat, Items: sorted})
	}
	return groups
}
