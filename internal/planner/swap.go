package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"yourkitchen/internal/domain"
	"yourkitchen/internal/llm"
	"yourkitchen/internal/questionnaire"
	"yourkitchen/internal/shared"

	"github.com/google/uuid"
)

type swapPromptData struct {
	Answers string
	Meal    domain.PlannedMeal
	Reason  string
}

// SwapMeal asks for one replacement of meal. The replacement keeps the
// original type, gets a fresh id and never shares the original name. Any
// failure is a *SwapError; the caller keeps the original meal in that case.
func (p *Planner) SwapMeal(ctx context.Context, meal domain.PlannedMeal, answers []domain.Answer, reason string) (*domain.PlannedMeal, shared.AgentMeta, error) {
	start := time.Now()

	prompt, err := render(swapTemplate, swapPromptData{
		Answers: questionnaire.FormatAnswers(answers, ""),
		Meal:    meal,
		Reason:  reason,
	})
	if err != nil {
		return nil, shared.AgentMeta{AgentName: shared.AgentSwapper}, &SwapError{Stage: StageRequest, Err: err}
	}

	resp, err := p.textGen.GenerateContent(ctx, llm.Request{
		System:      shared.SystemInstruction,
		Prompt:      prompt,
		Schema:      swapMealSchema,
		Temperature: swapTemperature,
	})
	meta := shared.NewAgentMeta(shared.AgentSwapper, resp.Usage, start)
	if err != nil {
		return nil, meta, &SwapError{Stage: StageRequest, Err: err}
	}

	replacement := &domain.PlannedMeal{}
	if err := json.Unmarshal([]byte(llm.ExtractJSON(resp.Content)), replacement); err != nil {
		return nil, meta, &SwapError{
			Stage: StageParse,
			Err:   fmt.Errorf("failed to parse PlannedMeal: %w. Response: %s", err, resp.Content),
		}
	}

	if err := validateSwap(meal, replacement); err != nil {
		return nil, meta, &SwapError{Stage: StageValidate, Err: err}
	}

	replacement.Type = meal.Type
	replacement.ID = uuid.NewString()
	replacement.PrepMinutes = 0
	replacement.Normalize()
	return replacement, meta, nil
}
