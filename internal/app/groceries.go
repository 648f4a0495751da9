package app

import (
	"context"

	"yourkitchen/internal/domain"
	"yourkitchen/internal/shopping"
)

// Groceries returns the grocery list of the current plan.
func (a *App) Groceries(ctx context.Context, profileID string) ([]domain.GroceryItem, error) {
	p, err := a.profiles.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if !p.HasPlan() {
		return nil, domain.ErrNoPlan
	}
	return p.WeeklyPlan.GroceryList, nil
}

// UpdateGroceries replaces the whole grocery list.
func (a *App) UpdateGroceries(ctx context.Context, profileID string, items []domain.GroceryItem) (*domain.UserProfile, error) {
	return a.editGroceries(ctx, profileID, func([]domain.GroceryItem) []domain.GroceryItem {
		out := make([]domain.GroceryItem, 0, len(items))
		for _, it := range items {
			if it.Item != "" {
				out = append(out, it)
			}
		}
		return out
	})
}

// AddGroceryItem appends a manually typed item.
func (a *App) AddGroceryItem(ctx context.Context, profileID, text string) (*domain.UserProfile, error) {
	return a.editGroceries(ctx, profileID, func(list []domain.GroceryItem) []domain.GroceryItem {
		return shopping.AddItem(list, text)
	})
}

// RemoveGroceryItems drops the items at the given indices.
func (a *App) RemoveGroceryItems(ctx context.Context, profileID string, indexes []int) (*domain.UserProfile, error) {
	return a.editGroceries(ctx, profileID, func(list []domain.GroceryItem) []domain.GroceryItem {
		return shopping.RemoveIndexes(list, indexes)
	})
}

// ClearCompletedGroceries drops the checked items. Checked state is held by
// the client and sent as indices.
func (a *App) ClearCompletedGroceries(ctx context.Context, profileID string, checked []int) (*domain.UserProfile, error) {
	return a.editGroceries(ctx, profileID, func(list []domain.GroceryItem) []domain.GroceryItem {
		return shopping.ClearCompleted(list, checked)
	})
}

// AddIngredientsToGroceries adds the ingredients of a recipe that are not on
// the list yet.
func (a *App) AddIngredientsToGroceries(ctx context.Context, profileID string, ingredients []domain.Ingredient) (*domain.UserProfile, error) {
	return a.editGroceries(ctx, profileID, func(list []domain.GroceryItem) []domain.GroceryItem {
		return shopping.AddIngredients(list, ingredients)
	})
}

// RemoveIngredientsFromGroceries drops the list items named like the
// ingredients.
func (a *App) RemoveIngredientsFromGroceries(ctx context.Context, profileID string, ingredients []domain.Ingredient) (*domain.UserProfile, error) {
	return a.editGroceries(ctx, profileID, func(list []domain.GroceryItem) []domain.GroceryItem {
		return shopping.RemoveIngredients(list, ingredients)
	})
}

// CategorizeGroceries groups the current grocery list. Categorization never
// fails; items the model could not place end up in other.
func (a *App) CategorizeGroceries(ctx context.Context, profileID string) ([]shopping.CategoryGroup, error) {
	items, err := a.Groceries(ctx, profileID)
	if err != nil {
		return nil, err
	}
	categories, meta := a.groceries.Categorize(ctx, profileID, items)
	if meta != nil {
		a.record(ctx, *meta)
	}
	return shopping.SortedCategories(categories), nil
}

func (a *App) editGroceries(ctx context.Context, profileID string, edit func([]domain.GroceryItem) []domain.GroceryItem) (*domain.UserProfile, error) {
	p, err := a.profiles.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if !p.HasPlan() {
		return nil, domain.ErrNoPlan
	}
	plan := p.WeeklyPlan.Clone()
	plan.GroceryList = edit(plan.GroceryList)
	return a.save(ctx, profileID, "groceries", domain.ProfileUpdate{WeeklyPlan: plan})
}
