package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"yourkitchen/internal/domain"
)

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewLocalStore(dir)
	if err != nil {
		t.Fatalf("Failed to create LocalStore: %v", err)
	}

	profile := &domain.UserProfile{
		ID:        "user-1",
		Name:      "Ana",
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Answers:   []domain.Answer{{QuestionID: 1, Answer: "Comfortable with basics"}},
	}

	t.Run("GetMissing", func(t *testing.T) {
		if _, err := store.GetProfile(ctx, "user-1"); !errors.Is(err, domain.ErrProfileNotFound) {
			t.Errorf("Expected ErrProfileNotFound, got %v", err)
		}
	})

	t.Run("Create", func(t *testing.T) {
		if err := store.CreateProfile(ctx, profile); err != nil {
			t.Fatalf("Failed to create profile: %v", err)
		}
		if err := store.CreateProfile(ctx, profile); !errors.Is(err, domain.ErrProfileExists) {
			t.Errorf("Expected ErrProfileExists, got %v", err)
		}
		if err := store.CreateProfile(ctx, &domain.UserProfile{ID: "user-2", Name: "Ben"}); err != nil {
			t.Fatalf("Failed to create second profile: %v", err)
		}
	})

	t.Run("SingleBlob", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join(dir, "chefai_profiles.json"))
		if err != nil {
			t.Fatalf("Expected the profiles file: %v", err)
		}
		var raw []map[string]interface{}
		if err := json.Unmarshal(data, &raw); err != nil {
			t.Fatalf("Expected a JSON array: %v", err)
		}
		if len(raw) != 2 {
			t.Errorf("Expected 2 profiles in the array, got %d", len(raw))
		}
		leftovers, _ := filepath.Glob(filepath.Join(dir, "*.tmp"))
		if len(leftovers) != 0 {
			t.Errorf("Expected no temp files, got %v", leftovers)
		}
	})

	t.Run("Update", func(t *testing.T) {
		plan := &domain.WeeklyPlan{Title: "Week One"}
		updated, err := store.UpdateProfile(ctx, "user-1", domain.ProfileUpdate{WeeklyPlan: plan})
		if err != nil {
			t.Fatalf("Failed to update profile: %v", err)
		}
		if updated.WeeklyPlan == nil || updated.WeeklyPlan.Title != "Week One" {
			t.Errorf("Expected the plan to be set, got %+v", updated.WeeklyPlan)
		}
		if len(updated.Answers) != 1 || updated.Name != "Ana" {
			t.Errorf("Expected untouched fields to be kept, got %+v", updated)
		}

		loaded, err := store.GetProfile(ctx, "user-1")
		if err != nil {
			t.Fatalf("Failed to load profile: %v", err)
		}
		if !loaded.CreatedAt.Equal(profile.CreatedAt) || loaded.WeeklyPlan.Title != "Week One" {
			t.Errorf("Unexpected loaded profile %+v", loaded)
		}

		other, _ := store.GetProfile(ctx, "user-2")
		if other.WeeklyPlan != nil {
			t.Error("Expected other profiles to be untouched")
		}
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		name := "Nobody"
		if _, err := store.UpdateProfile(ctx, "ghost", domain.ProfileUpdate{Name: &name}); !errors.Is(err, domain.ErrProfileNotFound) {
			t.Errorf("Expected ErrProfileNotFound, got %v", err)
		}
	})

	t.Run("Reopen", func(t *testing.T) {
		reopened, err := NewLocalStore(dir)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := reopened.GetProfile(ctx, "user-2"); err != nil {
			t.Errorf("Expected the profile to persist, got %v", err)
		}
	})
}

func TestLocalStoreReadsLegacyShapes(t *testing.T) {
	dir := t.TempDir()
	legacy := `[{"id": "u1", "name": "Old", "answers": [], "savedRecipes": [],
		"weeklyPlan": {"weekTitle": "Legacy", "dailyPlans": [{"day": "Monday", "meals": [
			{"type": "Dinner", "name": "Soup", "timeEstimate": "30 min", "ingredients": ["1 onion", {"name": "stock", "amount": "1 l"}]}
		]}], "groceryList": ["Bread", {"item": "Milk", "category": "Dairy"}]}}]`
	if err := os.WriteFile(filepath.Join(dir, ProfilesKey+".json"), []byte(legacy), 0644); err != nil {
		t.Fatal(err)
	}

	store, _ := NewLocalStore(dir)
	p, err := store.GetProfile(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Failed to read legacy profile: %v", err)
	}
	meal := p.WeeklyPlan.DailyPlans[0].Meals[0]
	if len(meal.Ingredients) != 2 || meal.Ingredients[1].Kind() != domain.Measured {
		t.Errorf("Unexpected ingredients %+v", meal.Ingredients)
	}
	if p.WeeklyPlan.GroceryList[0].Item != "Bread" || p.WeeklyPlan.GroceryList[1].Category != "Dairy" {
		t.Errorf("Unexpected grocery list %+v", p.WeeklyPlan.GroceryList)
	}
}
