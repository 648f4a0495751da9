// Package planner asks the text model for weekly plans and single meal swaps.
package planner

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
	"yourkitchen/internal/questionnaire"
	"yourkitchen/internal/shared"
)

//go:embed plan_prompt.md
var planPrompt string

//go:embed swap_prompt.md
var swapPrompt string

var (
	planTemplate = template.Must(template.New("Plan").Parse(planPrompt))
	swapTemplate = template.Must(template.New("Swap").Parse(swapPrompt))
)

const (
	planTemperature = 0.7
	swapTemperature = 0.8
)

// Planner handles the generation of weekly plans and meal swaps.
type Planner struct {
	textGen llm.TextGenerator
}

// NewPlanner creates a new Planner instance.
func NewPlanner(textGen llm.TextGenerator) *Planner {
	return &Planner{textGen: textGen}
}

type planPromptData struct {
	Answers   string
	MealTypes string
}

// GeneratePlan builds one plan from the onboarding answers. On success every
// meal has an id and normalized minutes. Any failure is a *GenerationError and
// no plan is returned. The meta is filled whenever the model answered.
func (p *Planner) GeneratePlan(ctx context.Context, answers []domain.Answer) (*domain.WeeklyPlan, shared.AgentMeta, error) {
	start := time.Now()

	prompt, err := render(planTemplate, planPromptData{
		Answers:   questionnaire.FormatAnswers(answers, ""),
		MealTypes: strings.Join(questionnaire.RequestedMealTypes(answers), ", "),
	})
	if err != nil {
		return nil, shared.AgentMeta{AgentName: shared.AgentPlanner}, &GenerationError{Stage: StageRequest, Err: err}
	}

	resp, err := p.textGen.GenerateContent(ctx, llm.Request{
		System:      shared.SystemInstruction,
		Prompt:      prompt,
		Schema:      weeklyPlanSchema,
		Temperature: planTemperature,
	})
	meta := shared.NewAgentMeta(shared.AgentPlanner, resp.Usage, start)
	if err != nil {
		return nil, meta, &GenerationError{Stage: StageRequest, Err: err}
	}

	plan := &domain.WeeklyPlan{}
	if err := json.Unmarshal([]byte(llm.ExtractJSON(resp.Content)), plan); err != nil {
		return nil, meta, &GenerationError{
			Stage: StageParse,
			Err:   fmt.Errorf("failed to parse WeeklyPlan: %w. Response: %s", err, resp.Content),
		}
	}

	if err := validatePlan(plan); err != nil {
		return nil, meta, &GenerationError{Stage: StageValidate, Err: err}
	}

	plan.AssignMealIDs()
	plan.Normalize()
	return plan, meta, nil
}

func render(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s prompt: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
