// Package profile is the single read/write path for user profiles.
package profile

import (
	"context"
	"fmt"

	"yourkitchen/internal/domain"
)

// Adapter wraps a ProfileStore with the recipe helpers and normalizes every
// profile that passes through it.
type Adapter struct {
	store domain.ProfileStore
}

// NewAdapter creates an Adapter over store.
func NewAdapter(store domain.ProfileStore) *Adapter {
	return &Adapter{store: store}
}

// GetProfile loads a profile. Missing profiles are domain.ErrProfileNotFound.
func (a *Adapter) GetProfile(ctx context.Context, id string) (*domain.UserProfile, error) {
	p, err := a.store.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Normalize()
	return p, nil
}

// CreateProfile stores a new profile.
func (a *Adapter) CreateProfile(ctx context.Context, p *domain.UserProfile) error {
	p.Normalize()
	if err := a.store.CreateProfile(ctx, p); err != nil {
		return fmt.Errorf("failed to create profile %s: %w", p.ID, err)
	}
	return nil
}

// UpdateProfile replaces the set fields of u as a whole.
func (a *Adapter) UpdateProfile(ctx context.Context, id string, u domain.ProfileUpdate) (*domain.UserProfile, error) {
	if u.WeeklyPlan != nil {
		u.WeeklyPlan.Normalize()
	}
	p, err := a.store.UpdateProfile(ctx, id, u)
	if err != nil {
		return nil, err
	}
	p.Normalize()
	return p, nil
}

// SaveRecipe prepends r to the saved recipes. A recipe whose name exactly
// matches a saved one is not added and the current profile is returned.
func (a *Adapter) SaveRecipe(ctx context.Context, id string, r domain.Recipe) (*domain.UserProfile, error) {
	p, err := a.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, saved := range p.SavedRecipes {
		if saved.Name == r.Name {
			return p, nil
		}
	}

	recipes := make([]domain.Recipe, 0, len(p.SavedRecipes)+1)
	recipes = append(recipes, r)
	recipes = append(recipes, p.SavedRecipes...)
	return a.UpdateProfile(ctx, id, domain.ProfileUpdate{SavedRecipes: &recipes})
}

// DeleteRecipe removes the recipe with recipeID. An unknown id still writes
// the unchanged list.
func (a *Adapter) DeleteRecipe(ctx context.Context, id, recipeID string) (*domain.UserProfile, error) {
	p, err := a.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	recipes := make([]domain.Recipe, 0, len(p.SavedRecipes))
	for _, saved := range p.SavedRecipes {
		if saved.ID != recipeID {
			recipes = append(recipes, saved)
		}
	}
	return a.UpdateProfile(ctx, id, domain.ProfileUpdate{SavedRecipes: &recipes})
}
