// Package app is the application state container. It owns the services and
// is the only code that mutates a profile.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"yourkitchen/internal/chef"
	"yourkitchen/internal/clipper"
	"yourkitchen/internal/domain"
	"yourkitchen/internal/planner"
	"yourkitchen/internal/profile"
	"yourkitchen/internal/questionnaire"
	"yourkitchen/internal/shared"
	"yourkitchen/internal/shopping"
	"yourkitchen/internal/view"
)

// ErrUpstream marks a failed call to the hosted model that is not the
// caller's fault.
var ErrUpstream = errors.New("the kitchen assistant is unavailable right now")

// ErrRecipeName is returned when saving a recipe without a name.
var ErrRecipeName = errors.New("recipe name is required")

// PlanGenerator builds weekly plans and single meal swaps.
type PlanGenerator interface {
	GeneratePlan(ctx context.Context, answers []domain.Answer) (*domain.WeeklyPlan, shared.AgentMeta, error)
	SwapMeal(ctx context.Context, meal domain.PlannedMeal, answers []domain.Answer, reason string) (*domain.PlannedMeal, shared.AgentMeta, error)
}

// GroceryCategorizer groups grocery items per profile. It never fails; a nil
// meta means no model call was made.
type GroceryCategorizer interface {
	Categorize(ctx context.Context, profileID string, items []domain.GroceryItem) (shopping.Categories, *shared.AgentMeta)
	Invalidate(profileID string)
}

// Chef answers discovery chats, writes recipe cards and renders photos.
type Chef interface {
	Chat(ctx context.Context, in chef.ChatInput) (*domain.ChatMessage, shared.AgentMeta, error)
	FinalizeRecipe(ctx context.Context, transcript []domain.ChatMessage) (*domain.Recipe, shared.AgentMeta, error)
	GenerateMealImage(ctx context.Context, description, size string) (string, shared.AgentMeta, error)
}

// RecipeClipper imports a recipe from a web page.
type RecipeClipper interface {
	ClipURL(ctx context.Context, url string) (*domain.Recipe, shared.AgentMeta, error)
}

// MetricsRecorder stores the metadata of model calls.
type MetricsRecorder interface {
	RecordMeta(ctx context.Context, meta shared.AgentMeta) error
}

// Services are the dependencies of an App. Metrics and Clock are optional.
type Services struct {
	Profiles  *profile.Adapter
	Planner   PlanGenerator
	Groceries GroceryCategorizer
	Chef      Chef
	Clipper   RecipeClipper
	Metrics   MetricsRecorder
	Clock     func() time.Time
}

// App holds the application's dependencies.
type App struct {
	profiles  *profile.Adapter
	planner   PlanGenerator
	groceries GroceryCategorizer
	chef      Chef
	clipper   RecipeClipper
	metrics   MetricsRecorder
	now       func() time.Time
}

// New creates and initializes a new App instance.
func New(s Services) *App {
	now := s.Clock
	if now == nil {
		now = time.Now
	}
	return &App{
		profiles:  s.Profiles,
		planner:   s.Planner,
		groceries: s.Groceries,
		chef:      s.Chef,
		clipper:   s.Clipper,
		metrics:   s.Metrics,
		now:       now,
	}
}

// Now is the clock the App derives views with.
func (a *App) Now() time.Time {
	return a.now()
}

// Profile loads a profile.
func (a *App) Profile(ctx context.Context, profileID string) (*domain.UserProfile, error) {
	return a.profiles.GetProfile(ctx, profileID)
}

// CompleteOnboarding validates the raw answers, generates the first plan and
// stores the profile. Validation failures are *questionnaire.ValidationError
// and happen before any model call. Answering again replaces the answers
// and the plan of an existing profile.
func (a *App) CompleteOnboarding(ctx context.Context, profileID, name string, raw map[int][]string) (*domain.UserProfile, error) {
	answers, err := questionnaire.Collect(raw)
	if err != nil {
		return nil, err
	}

	plan, err := a.generatePlan(ctx, profileID, answers)
	if err != nil {
		return nil, err
	}

	existing, err := a.profiles.GetProfile(ctx, profileID)
	switch {
	case errors.Is(err, domain.ErrProfileNotFound):
		p := &domain.UserProfile{
			ID:         profileID,
			Name:       strings.TrimSpace(name),
			CreatedAt:  a.now().UTC(),
			Answers:    answers,
			WeeklyPlan: plan,
		}
		if err := a.profiles.CreateProfile(ctx, p); err != nil {
			log.Printf("Failed to save new profile %s: %v", profileID, err)
			return nil, err
		}
		return a.profiles.GetProfile(ctx, profileID)
	case err != nil:
		return nil, err
	}

	update := domain.ProfileUpdate{Answers: &answers, WeeklyPlan: plan}
	if name = strings.TrimSpace(name); name != "" && name != existing.Name {
		update.Name = &name
	}
	a.groceries.Invalidate(profileID)
	return a.save(ctx, profileID, "onboarding", update)
}

// RegeneratePlan replaces the plan of a profile with a fresh one built from
// its stored answers. A failed generation leaves the old plan in place.
func (a *App) RegeneratePlan(ctx context.Context, profileID string) (*domain.UserProfile, error) {
	p, err := a.profiles.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	plan, err := a.generatePlan(ctx, profileID, p.Answers)
	if err != nil {
		return nil, err
	}
	a.groceries.Invalidate(profileID)
	return a.save(ctx, profileID, "plan", domain.ProfileUpdate{WeeklyPlan: plan})
}

func (a *App) generatePlan(ctx context.Context, profileID string, answers []domain.Answer) (*domain.WeeklyPlan, error) {
	plan, meta, err := a.planner.GeneratePlan(ctx, answers)
	a.record(ctx, meta)
	if err != nil {
		log.Printf("Failed to generate plan for %s: %v", profileID, err)
		return nil, err
	}
	if extra := planner.CheckMealTypes(plan, questionnaire.RequestedMealTypes(answers)); len(extra) > 0 {
		log.Printf("Plan for %s contains unrequested meal types: %s", profileID, strings.Join(extra, ", "))
	}
	return plan, nil
}

// SwapMeal replaces one meal of the plan with a generated alternative of the
// same type. The plan is only written after the replacement is accepted; any
// failure leaves the stored meal unchanged.
func (a *App) SwapMeal(ctx context.Context, profileID string, dayIndex int, mealID, reason string) (*domain.UserProfile, *domain.PlannedMeal, error) {
	p, err := a.profiles.GetProfile(ctx, profileID)
	if err != nil {
		return nil, nil, err
	}
	if !p.HasPlan() {
		return nil, nil, domain.ErrNoPlan
	}
	original, err := p.WeeklyPlan.FindMeal(dayIndex, mealID)
	if err != nil {
		return nil, nil, err
	}

	replacement, meta, err := a.planner.SwapMeal(ctx, *original, p.Answers, strings.TrimSpace(reason))
	a.record(ctx, meta)
	if err != nil {
		log.Printf("Failed to swap meal %s for %s: %v", mealID, profileID, err)
		return nil, nil, err
	}

	plan, err := p.WeeklyPlan.WithMealReplaced(dayIndex, mealID, *replacement)
	if err != nil {
		return nil, nil, err
	}
	updated, err := a.save(ctx, profileID, "swap", domain.ProfileUpdate{WeeklyPlan: plan})
	if err != nil {
		return nil, nil, err
	}
	return updated, replacement, nil
}

// Meal returns one planned meal of the stored plan.
func (a *App) Meal(ctx context.Context, profileID string, dayIndex int, mealID string) (*domain.PlannedMeal, error) {
	p, err := a.profiles.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if !p.HasPlan() {
		return nil, domain.ErrNoPlan
	}
	return p.WeeklyPlan.FindMeal(dayIndex, mealID)
}

// SwapMealByName swaps the first meal of the day with the given name and
// type. It serves clients holding a plan read before meals had ids.
func (a *App) SwapMealByName(ctx context.Context, profileID string, dayIndex int, name, mealType, reason string) (*domain.UserProfile, *domain.PlannedMeal, error) {
	p, err := a.profiles.GetProfile(ctx, profileID)
	if err != nil {
		return nil, nil, err
	}
	if !p.HasPlan() {
		return nil, nil, domain.ErrNoPlan
	}
	meal, err := p.WeeklyPlan.FindMealByNameType(dayIndex, name, mealType)
	if err != nil {
		return nil, nil, err
	}
	return a.SwapMeal(ctx, profileID, dayIndex, meal.ID, reason)
}

// Dashboard derives the dashboard of one day. A negative dayIndex selects
// today's weekday.
func (a *App) Dashboard(ctx context.Context, profileID string, dayIndex int) (*view.Dashboard, error) {
	p, err := a.profiles.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	return view.DashboardView(p.WeeklyPlan, dayIndex, a.now())
}

// Planner derives the week strip shifted by weekOffset weeks.
func (a *App) Planner(ctx context.Context, profileID string, weekOffset int) (*view.Planner, error) {
	p, err := a.profiles.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	return view.PlannerView(p.WeeklyPlan, weekOffset, a.now())
}

// SaveRecipe adds a recipe to the cookbook, giving it an id when it has none.
// A recipe with the same name as a saved one is ignored.
func (a *App) SaveRecipe(ctx context.Context, profileID string, r domain.Recipe) (*domain.UserProfile, error) {
	if strings.TrimSpace(r.Name) == "" {
		return nil, ErrRecipeName
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Source == "" {
		r.Source = domain.SourceAI
	}
	return a.profiles.SaveRecipe(ctx, profileID, r)
}

// DeleteRecipe removes a recipe from the cookbook by id.
func (a *App) DeleteRecipe(ctx context.Context, profileID, recipeID string) (*domain.UserProfile, error) {
	return a.profiles.DeleteRecipe(ctx, profileID, recipeID)
}

// ClipRecipe imports the recipe at url and saves it to the cookbook.
func (a *App) ClipRecipe(ctx context.Context, profileID, url string) (*domain.UserProfile, *domain.Recipe, error) {
	if _, err := a.profiles.GetProfile(ctx, profileID); err != nil {
		return nil, nil, err
	}
	r, meta, err := a.clipper.ClipURL(ctx, url)
	a.record(ctx, meta)
	if err != nil {
		return nil, nil, upstream(err)
	}
	p, err := a.profiles.SaveRecipe(ctx, profileID, *r)
	if err != nil {
		return nil, nil, err
	}
	return p, r, nil
}

// Chat answers one discovery chat turn with the profile answers as context.
// A profile that does not exist yet chats without context.
func (a *App) Chat(ctx context.Context, profileID string, in chef.ChatInput) (*domain.ChatMessage, error) {
	p, err := a.profiles.GetProfile(ctx, profileID)
	switch {
	case err == nil:
		in.Answers = p.Answers
	case !errors.Is(err, domain.ErrProfileNotFound):
		return nil, err
	}

	msg, meta, err := a.chef.Chat(ctx, in)
	a.record(ctx, meta)
	if err != nil {
		return nil, upstream(err)
	}
	return msg, nil
}

// FinalizeRecipe turns a chat transcript into an unsaved recipe card.
func (a *App) FinalizeRecipe(ctx context.Context, transcript []domain.ChatMessage) (*domain.Recipe, error) {
	r, meta, err := a.chef.FinalizeRecipe(ctx, transcript)
	a.record(ctx, meta)
	if err != nil {
		return nil, upstream(err)
	}
	return r, nil
}

// GenerateImage renders a dish photo as a data URI.
func (a *App) GenerateImage(ctx context.Context, description, size string) (string, error) {
	uri, meta, err := a.chef.GenerateMealImage(ctx, description, size)
	a.record(ctx, meta)
	if err != nil {
		return "", upstream(err)
	}
	return uri, nil
}

// save writes u and logs persistence failures, which are still returned.
func (a *App) save(ctx context.Context, profileID, what string, u domain.ProfileUpdate) (*domain.UserProfile, error) {
	p, err := a.profiles.UpdateProfile(ctx, profileID, u)
	if err != nil {
		log.Printf("Failed to save %s for %s: %v", what, profileID, err)
		return nil, fmt.Errorf("failed to save %s: %w", what, err)
	}
	return p, nil
}

func (a *App) record(ctx context.Context, meta shared.AgentMeta) {
	if a.metrics == nil || meta.AgentName == "" {
		return
	}
	if err := a.metrics.RecordMeta(ctx, meta); err != nil {
		log.Printf("Warning: failed to record metrics for %s: %v", meta.AgentName, err)
	}
}

// callerErrors are failures caused by the request rather than the model.
var callerErrors = []error{
	chef.ErrInvalidMode,
	chef.ErrEmptyMessage,
	chef.ErrInvalidSize,
	chef.ErrNoRecipe,
	clipper.ErrInvalidURL,
	clipper.ErrNoRecipe,
}

func upstream(err error) error {
	for _, known := range callerErrors {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", ErrUpstream, err)
}
