// Package domain contains the core entities of the kitchen planner and the
// ports used to persist them.
package domain

import (
	"context"
	"errors"
	"time"
)

// ErrProfileNotFound is returned when no profile exists for an id.
var ErrProfileNotFound = errors.New("profile not found")

// ErrProfileExists is returned when creating a profile whose id is taken.
var ErrProfileExists = errors.New("profile already exists")

// ErrNoPlan is returned by operations that need a weekly plan on a profile
// that has none yet.
var ErrNoPlan = errors.New("profile has no weekly plan")

// Answer is one onboarding answer.
type Answer struct {
	QuestionID int    `json:"questionId"`
	Answer     string `json:"answer"`
}

// UserProfile is everything the planner knows about one user.
type UserProfile struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	CreatedAt    time.Time   `json:"createdAt"`
	Answers      []Answer    `json:"answers"`
	WeeklyPlan   *WeeklyPlan `json:"weeklyPlan,omitempty"`
	SavedRecipes []Recipe    `json:"savedRecipes"`
}

// HasPlan reports whether a weekly plan has been generated.
func (p *UserProfile) HasPlan() bool {
	return p != nil && p.WeeklyPlan != nil
}

// Normalize brings every nested value into its canonical form.
func (p *UserProfile) Normalize() {
	if p.WeeklyPlan != nil {
		p.WeeklyPlan.Normalize()
	}
	if p.Answers == nil {
		p.Answers = []Answer{}
	}
	if p.SavedRecipes == nil {
		p.SavedRecipes = []Recipe{}
	}
}

// ProfileUpdate replaces whole top-level fields of a profile. A nil field is
// left as is; there is no merge inside a field.
type ProfileUpdate struct {
	Name         *string
	Answers      *[]Answer
	WeeklyPlan   *WeeklyPlan
	SavedRecipes *[]Recipe
}

// IsEmpty reports whether the update changes nothing.
func (u ProfileUpdate) IsEmpty() bool {
	return u.Name == nil && u.Answers == nil && u.WeeklyPlan == nil && u.SavedRecipes == nil
}

// Apply writes the update onto p.
func (u ProfileUpdate) Apply(p *UserProfile) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Answers != nil {
		p.Answers = *u.Answers
	}
	if u.WeeklyPlan != nil {
		p.WeeklyPlan = u.WeeklyPlan
	}
	if u.SavedRecipes != nil {
		p.SavedRecipes = *u.SavedRecipes
	}
}

// ProfileStore persists profiles. Implementations replace whole fields on
// update and apply no concurrency control: the last write wins.
type ProfileStore interface {
	GetProfile(ctx context.Context, id string) (*UserProfile, error)
	CreateProfile(ctx context.Context, p *UserProfile) error
	UpdateProfile(ctx context.Context, id string, u ProfileUpdate) (*UserProfile, error)
}
