package planner

import (
	"errors"
	"fmt"
	"strings"

	"yourkitchen/internal/domain"
)

func validatePlan(plan *domain.WeeklyPlan) error {
	var errs []error
	if strings.TrimSpace(plan.Title) == "" {
		errs = append(errs, errors.New("missing weekTitle"))
	}
	if len(plan.DailyPlans) == 0 {
		errs = append(errs, errors.New("no daily plans"))
	}
	for d, day := range plan.DailyPlans {
		for i, meal := range day.Meals {
			if strings.TrimSpace(meal.Type) == "" {
				errs = append(errs, fmt.Errorf("day %d meal %d: missing type", d, i))
			}
			if strings.TrimSpace(meal.Name) == "" {
				errs = append(errs, fmt.Errorf("day %d meal %d: missing name", d, i))
			}
		}
	}
	for i, item := range plan.GroceryList {
		if strings.TrimSpace(item.Item) == "" {
			errs = append(errs, fmt.Errorf("grocery item %d: missing item", i))
		}
	}
	return errors.Join(errs...)
}

func validateSwap(original domain.PlannedMeal, replacement *domain.PlannedMeal) error {
	switch {
	case strings.TrimSpace(replacement.Name) == "":
		return errors.New("replacement has no name")
	case strings.EqualFold(strings.TrimSpace(replacement.Name), strings.TrimSpace(original.Name)):
		return fmt.Errorf("replacement repeats the original meal %q", original.Name)
	case replacement.Type != "" && !strings.EqualFold(strings.TrimSpace(replacement.Type), strings.TrimSpace(original.Type)):
		return fmt.Errorf("replacement is a %s, expected %s", replacement.Type, original.Type)
	case len(replacement.Instructions) == 0:
		return errors.New("replacement has no instructions")
	}
	return nil
}

// CheckMealTypes returns the meal types in plan that were not requested. The
// comparison ignores case. With no requested types nothing is reported.
func CheckMealTypes(plan *domain.WeeklyPlan, requested []string) []string {
	if plan == nil || len(requested) == 0 {
		return nil
	}
	allowed := make(map[string]bool, len(requested))
	for _, t := range requested {
		allowed[strings.ToLower(strings.TrimSpace(t))] = true
	}

	var violations []string
	for _, t := range plan.MealTypes() {
		if !allowed[strings.ToLower(strings.TrimSpace(t))] {
			violations = append(violations, t)
		}
	}
	return violations
}
