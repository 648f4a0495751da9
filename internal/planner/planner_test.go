package planner

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
	GenerateContentFunc func(ctx context.Context, req llm.Request) (llm.ContentResponse, error)
	Requests            []llm.Request
}

func (m *MockTextGenerator) GenerateContent(ctx context.Context, req llm.Request) (llm.ContentResponse, error) {
	m.Requests = append(m.Requests, req)
	return m.GenerateContentFunc(ctx, req)
}

func respond(content string) *MockTextGenerator {
	return &MockTextGenerator{
		GenerateContentFunc: func(ctx context.Context, req llm.Request) (llm.ContentResponse, error) {
			return llm.ContentResponse{
				Content: content,
				Usage:   shared.TokenUsage{PromptTokens: 10, CompletionTokens: 20, TotalTokens: 30, Model: "test-model"},
			}, nil
		},
	}
}

var testAnswers = []domain.Answer{
	{QuestionID: 1, Answer: "Beginner finding my way"},
	{QuestionID: 4, Answer: "Dinner"},
	{QuestionID: 5, Answer: "No shellfish"},
}

const planJSON = `{
  "weekTitle": "Fresh Start Week",
  "theme": "Mediterranean basics",
  "dailyPlans": [
    {"day": "Monday", "meals": [
      {"type": "Dinner", "name": "Lemon Chicken", "timeEstimate": "35 mins", "description": "Bright and easy",
       "techniqueFocus": "Pan searing", "ingredients": ["2 chicken thighs", "1 lemon"], "instructions": ["Sear", "Squeeze"]}
    ]},
    {"day": "Tuesday", "meals": [
      {"type": "Dinner", "name": "Chickpea Stew", "timeEstimate": "about 20 minutes", "description": "Cozy",
       "techniqueFocus": "Blooming spices", "ingredients": ["1 can chickpeas"], "instructions": ["Simmer"]}
    ]}
  ],
  "groceryList": [{"item": "Chicken thighs", "category": "Protein"}, {"item": "Lemons", "category": "Produce"}],
  "sundayPrep": [{"task": "Marinate chicken", "time": "10 min", "why": "Flavor develops overnight"}],
  "sustainabilityTip": "Zest lemons before juicing."
}`

func TestGeneratePlan(t *testing.T) {
	gen := respond("```json\n" + planJSON + "\n```")
	p := NewPlanner(gen)

	plan, meta, err := p.GeneratePlan(context.Background(), testAnswers)
	if err != nil {
		t.Fatalf("GeneratePlan failed: %v", err)
	}

	if plan.Title != "Fresh Start Week" {
		t.Errorf("Expected title 'Fresh Start Week', got '%s'", plan.Title)
	}
	if len(plan.DailyPlans) != 2 {
		t.Fatalf("Expected 2 days, got %d", len(plan.DailyPlans))
	}
	first := plan.DailyPlans[0].Meals[0]
	if first.ID == "" {
		t.Error("Expected meals to get an id")
	}
	if first.PrepMinutes != 35 {
		t.Errorf("Expected 35 prep minutes, got %d", first.PrepMinutes)
	}
	if plan.DailyPlans[1].Meals[0].PrepMinutes != 20 {
		t.Errorf("Expected 20 prep minutes, got %d", plan.DailyPlans[1].Meals[0].PrepMinutes)
	}
	if first.Ingredients[0].String() != "2 chicken thighs" {
		t.Errorf("Unexpected ingredient %q", first.Ingredients[0].String())
	}

	if meta.AgentName != shared.AgentPlanner || meta.Usage.TotalTokens != 30 {
		t.Errorf("Unexpected meta %+v", meta)
	}

	if len(gen.Requests) != 1 {
		t.Fatalf("Expected exactly one call, got %d", len(gen.Requests))
	}
	req := gen.Requests[0]
	if req.Schema == nil {
		t.Error("Expected a response schema")
	}
	if req.System != shared.SystemInstruction {
		t.Error("Expected the chef system instruction")
	}
	for _, want := range []string{"Q1: Beginner finding my way", "Q4: Dinner", "Q5: No shellfish", "ONLY generate the requested meals (Dinner)", "cut 50% of weeknight cooking time"} {
		if !strings.Contains(req.Prompt, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}
}

func TestGeneratePlanFailures(t *testing.T) {
	tests := []struct {
		name  string
		gen   *MockTextGenerator
		stage string
	}{
		{
			name: "transport",
			gen: &MockTextGenerator{GenerateContentFunc: func(ctx context.Context, req llm.Request) (llm.ContentResponse, error) {
				return llm.ContentResponse{}, errors.New("connection reset")
			}},
			stage: StageRequest,
		},
		{name: "not json", gen: respond("Sorry, I can't help with that."), stage: StageParse},
		{name: "missing title", gen: respond(`{"dailyPlans": [{"day": "Monday", "meals": []}]}`), stage: StageValidate},
		{name: "no days", gen: respond(`{"weekTitle": "Empty", "dailyPlans": []}`), stage: StageValidate},
		{name: "meal without name", gen: respond(`{"weekTitle": "W", "dailyPlans": [{"day": "Monday", "meals": [{"type": "Dinner"}]}]}`), stage: StageValidate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, _, err := NewPlanner(tt.gen).GeneratePlan(context.Background(), testAnswers)
			if plan != nil {
				t.Error("Expected no partial plan")
			}
			if !errors.Is(err, ErrPlanGeneration) {
				t.Fatalf("Expected ErrPlanGeneration, got %v", err)
			}
			var genErr *GenerationError
			if !errors.As(err, &genErr) || genErr.Stage != tt.stage {
				t.Errorf("Expected stage %s, got %v", tt.stage, err)
			}
		})
	}
}

func TestParseErrorIncludesResponse(t *testing.T) {
	_, _, err := NewPlanner(respond("not json at all")).GeneratePlan(context.Background(), testAnswers)
	if err == nil || !strings.Contains(err.Error(), "Response: not json at all") {
		t.Errorf("Expected the raw response in the error, got %v", err)
	}
}

func TestSwapMeal(t *testing.T) {
	original := domain.PlannedMeal{ID: "meal-1", Type: "Dinner", Name: "Lemon Chicken", TimeEstimate: "35 mins"}
	gen := respond(`{"type": "dinner", "name": "Herb Salmon", "timeEstimate": "25 min", "description": "Quick",
		"techniqueFocus": "Roasting", "ingredients": [{"name": "salmon", "amount": "2 fillets"}], "instructions": ["Roast"]}`)

	meal, meta, err := NewPlanner(gen).SwapMeal(context.Background(), original, testAnswers, "too heavy")
	if err != nil {
		t.Fatalf("SwapMeal failed: %v", err)
	}
	if meal.Name != "Herb Salmon" || meal.Type != "Dinner" {
		t.Errorf("Unexpected replacement %+v", meal)
	}
	if meal.ID == "" || meal.ID == original.ID {
		t.Errorf("Expected a fresh id, got %q", meal.ID)
	}
	if meal.PrepMinutes != 25 {
		t.Errorf("Expected 25 prep minutes, got %d", meal.PrepMinutes)
	}
	if meal.Ingredients[0].Kind() != domain.Measured || meal.Ingredients[0].Amount() != "2 fillets" {
		t.Errorf("Expected a measured ingredient, got %+v", meal.Ingredients[0])
	}
	if meta.AgentName != shared.AgentSwapper {
		t.Errorf("Unexpected agent %s", meta.AgentName)
	}

	prompt := gen.Requests[0].Prompt
	for _, want := range []string{"MUST be a Dinner", `MUST NOT be "Lemon Chicken"`, "Reason for the swap: too heavy", "35 mins"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected swap prompt to contain %q", want)
		}
	}
}

func TestSwapMealRejectsBadReplacement(t *testing.T) {
	original := domain.PlannedMeal{ID: "meal-1", Type: "Dinner", Name: "Lemon Chicken"}
	replies := map[string]string{
		"same name":       `{"type": "Dinner", "name": "lemon chicken", "instructions": ["Cook"]}`,
		"other type":      `{"type": "Breakfast", "name": "Oats", "instructions": ["Soak"]}`,
		"no instructions": `{"type": "Dinner", "name": "Salmon", "instructions": []}`,
		"garbage":         `{"type": `,
	}

	for name, reply := range replies {
		t.Run(name, func(t *testing.T) {
			meal, _, err := NewPlanner(respond(reply)).SwapMeal(context.Background(), original, testAnswers, "")
			if meal != nil {
				t.Error("Expected no replacement")
			}
			if !errors.Is(err, ErrSwap) {
				t.Errorf("Expected ErrSwap, got %v", err)
			}
			if errors.Is(err, ErrPlanGeneration) {
				t.Error("A swap failure must not match ErrPlanGeneration")
			}
		})
	}
}

func TestCheckMealTypes(t *testing.T) {
	plan := &domain.WeeklyPlan{DailyPlans: []domain.DailyPlan{
		{Day: "Monday", Meals: []domain.PlannedMeal{{Type: "Dinner"}, {Type: "Lunch"}}},
		{Day: "Tuesday", Meals: []domain.PlannedMeal{{Type: "dinner"}}},
	}}

	if got := CheckMealTypes(plan, []string{"Dinner"}); len(got) != 1 || got[0] != "Lunch" {
		t.Errorf("Expected [Lunch], got %v", got)
	}
	if got := CheckMealTypes(plan, []string{"lunch", "DINNER"}); len(got) != 0 {
		t.Errorf("Expected no violations, got %v", got)
	}
	if got := CheckMealTypes(plan, nil); got != nil {
		t.Errorf("Expected nil without requested types, got %v", got)
	}
}
