package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrMealNotFound is returned when a swap target is not part of the plan.
	ErrMealNotFound = errors.New("meal not found in plan")
	// ErrDayOutOfRange is returned for a day index outside the plan.
	ErrDayOutOfRange = errors.New("day index out of range")
)

// mealNamespace seeds deterministic ids for meals stored before meals had ids.
var mealNamespace = uuid.MustParse("6f1c1f0e-3c55-4f57-9d3e-2b7f0f2e9a41")

// WeeklyPlan is the full result of one plan generation call.
type WeeklyPlan struct {
	Title             string        `json:"weekTitle"`
	Theme             string        `json:"theme"`
	DailyPlans        []DailyPlan   `json:"dailyPlans"`
	GroceryList       []GroceryItem `json:"groceryList"`
	PrepTasks         []PrepTask    `json:"sundayPrep"`
	SustainabilityTip string        `json:"sustainabilityTip"`
}

// DailyPlan is a logical weekday slot. Day holds a weekday name and is never
// tied to a calendar date; dates are projected at view time.
type DailyPlan struct {
	Day   string        `json:"day"`
	Meals []PlannedMeal `json:"meals"`
}

// PlannedMeal is one meal inside a DailyPlan.
type PlannedMeal struct {
	ID             string       `json:"id"`
	Type           string       `json:"type"`
	Name           string       `json:"name"`
	TimeEstimate   string       `json:"timeEstimate"`
	PrepMinutes    int          `json:"prepMinutes"`
	Description    string       `json:"description"`
	TechniqueFocus string       `json:"techniqueFocus"`
	Ingredients    []Ingredient `json:"ingredients"`
	Instructions   []string     `json:"instructions"`
}

// GroceryItem is one entry of the flat grocery list.
type GroceryItem struct {
	Item     string `json:"item"`
	Category string `json:"category,omitempty"`
	Note     string `json:"note,omitempty"`
}

// UnmarshalJSON accepts the object form as well as a bare string, which is how
// manually added items were stored.
func (g *GroceryItem) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*g = GroceryItem{Item: strings.TrimSpace(s)}
		return nil
	}

	var obj struct {
		Item     string `json:"item"`
		Name     string `json:"name"`
		Category string `json:"category"`
		Note     string `json:"note"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("grocery item must be a string or an object: %w", err)
	}
	if obj.Item == "" {
		obj.Item = obj.Name
	}
	*g = GroceryItem{Item: obj.Item, Category: obj.Category, Note: obj.Note}
	return nil
}

// PrepTask is one prep-day task.
type PrepTask struct {
	Task string `json:"task"`
	Time string `json:"time"`
	Why  string `json:"why"`
}

var minutesPattern = regexp.MustCompile(`(\d+)`)

// ParseMinutes returns the first integer found in a free-text time estimate,
// or 0 when there is none.
func ParseMinutes(estimate string) int {
	m := minutesPattern.FindStringSubmatch(estimate)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// Normalize fills PrepMinutes from TimeEstimate when unset and drops empty
// ingredients. It does not assign an id.
func (m *PlannedMeal) Normalize() {
	if m.PrepMinutes <= 0 {
		m.PrepMinutes = ParseMinutes(m.TimeEstimate)
	}
	kept := make([]Ingredient, 0, len(m.Ingredients))
	for _, ing := range m.Ingredients {
		if !ing.IsZero() {
			kept = append(kept, ing)
		}
	}
	m.Ingredients = kept
}

// Normalize applies PlannedMeal.Normalize to every meal and gives meals
// without an id a deterministic one derived from their position, so plans
// stored before meals had ids read back with stable ids.
func (p *WeeklyPlan) Normalize() {
	for d := range p.DailyPlans {
		for i := range p.DailyPlans[d].Meals {
			meal := &p.DailyPlans[d].Meals[i]
			meal.Normalize()
			if meal.ID == "" {
				key := fmt.Sprintf("%d/%d/%s/%s", d, i, meal.Type, meal.Name)
				meal.ID = uuid.NewSHA1(mealNamespace, []byte(key)).String()
			}
		}
	}
}

// AssignMealIDs gives every meal a fresh random id. Used when a plan is
// accepted from the generator.
func (p *WeeklyPlan) AssignMealIDs() {
	for d := range p.DailyPlans {
		for i := range p.DailyPlans[d].Meals {
			p.DailyPlans[d].Meals[i].ID = uuid.NewString()
		}
	}
}

// FindMeal returns the meal with the given id in the given day.
func (p *WeeklyPlan) FindMeal(dayIndex int, mealID string) (*PlannedMeal, error) {
	if dayIndex < 0 || dayIndex >= len(p.DailyPlans) {
		return nil, ErrDayOutOfRange
	}
	for i := range p.DailyPlans[dayIndex].Meals {
		if p.DailyPlans[dayIndex].Meals[i].ID == mealID {
			return &p.DailyPlans[dayIndex].Meals[i], nil
		}
	}
	return nil, ErrMealNotFound
}

// FindMealByNameType returns the first meal of the day matching name and type.
// Only the first match is returned when several meals share both.
func (p *WeeklyPlan) FindMealByNameType(dayIndex int, name, mealType string) (*PlannedMeal, error) {
	if dayIndex < 0 || dayIndex >= len(p.DailyPlans) {
		return nil, ErrDayOutOfRange
	}
	for i := range p.DailyPlans[dayIndex].Meals {
		m := &p.DailyPlans[dayIndex].Meals[i]
		if m.Name == name && m.Type == mealType {
			return m, nil
		}
	}
	return nil, ErrMealNotFound
}

// WithMealReplaced returns a copy of the plan where the meal with mealID in
// dayIndex is replaced by meal. The receiver is left untouched.
func (p *WeeklyPlan) WithMealReplaced(dayIndex int, mealID string, meal PlannedMeal) (*WeeklyPlan, error) {
	if _, err := p.FindMeal(dayIndex, mealID); err != nil {
		return nil, err
	}

	out := p.Clone()
	meals := out.DailyPlans[dayIndex].Meals
	for i := range meals {
		if meals[i].ID == mealID {
			meals[i] = meal
			break
		}
	}
	return out, nil
}

// Clone returns a deep copy of the plan.
func (p *WeeklyPlan) Clone() *WeeklyPlan {
	if p == nil {
		return nil
	}
	out := *p
	out.DailyPlans = make([]DailyPlan, len(p.DailyPlans))
	for d, day := range p.DailyPlans {
		meals := make([]PlannedMeal, len(day.Meals))
		for i, m := range day.Meals {
			m.Ingredients = append([]Ingredient(nil), m.Ingredients...)
			m.Instructions = append([]string(nil), m.Instructions...)
			meals[i] = m
		}
		out.DailyPlans[d] = DailyPlan{Day: day.Day, Meals: meals}
	}
	out.GroceryList = append([]GroceryItem(nil), p.GroceryList...)
	out.PrepTasks = append([]PrepTask(nil), p.PrepTasks...)
	return &out
}

// MealTypes returns the distinct meal types present in the plan, in order of
// first appearance.
func (p *WeeklyPlan) MealTypes() []string {
	seen := make(map[string]bool)
	var types []string
	for _, day := range p.DailyPlans {
		for _, m := range day.Meals {
			key := strings.ToLower(strings.TrimSpace(m.Type))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			types = append(types, m.Type)
		}
	}
	return types
}
