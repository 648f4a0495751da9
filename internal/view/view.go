// Package view derives display state from a loaded plan and the wall clock.
// Plan days are weekday slots; every calendar date here is a display
// projection computed from now and never stored.
package view

import (
	"fmt"
	"math"
	"strings"
	"time"

	"yourkitchen/internal/domain"
)

// DefaultDayIndex returns the index of the plan day named like now's weekday,
// ignoring case, or 0 when no day matches.
func DefaultDayIndex(plan *domain.WeeklyPlan, now time.Time) int {
	if plan == nil {
		return 0
	}
	today := now.Weekday().String()
	for i, day := range plan.DailyPlans {
		if strings.EqualFold(strings.TrimSpace(day.Day), today) {
			return i
		}
	}
	return 0
}

func parseWeekday(name string) (time.Weekday, bool) {
	name = strings.TrimSpace(name)
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), name) {
			return d, true
		}
	}
	return 0, false
}

// DayNumber projects a weekday name onto a day of month: today shifted by the
// weekday difference plus weekOffset weeks. Unknown names return index+1.
func DayNumber(dayName string, index, weekOffset int, now time.Time) int {
	target, ok := parseWeekday(dayName)
	if !ok {
		return index + 1
	}
	diff := int(target) - int(now.Weekday()) + 7*weekOffset
	return now.AddDate(0, 0, diff).Day()
}

// WeekDates returns the seven dates of the Sunday-started week containing
// now, shifted by weekOffset weeks.
func WeekDates(weekOffset int, now time.Time) []time.Time {
	start := now.AddDate(0, 0, -int(now.Weekday())+7*weekOffset)
	dates := make([]time.Time, 7)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i)
	}
	return dates
}

// MealMinutes returns the normalized minutes of a meal, parsing the time
// estimate when the meal was never normalized.
func MealMinutes(m domain.PlannedMeal) int {
	if m.PrepMinutes > 0 {
		return m.PrepMinutes
	}
	return domain.ParseMinutes(m.TimeEstimate)
}

// PrepTotal sums the minutes of the given meals.
func PrepTotal(meals []domain.PlannedMeal) int {
	total := 0
	for _, m := range meals {
		total += MealMinutes(m)
	}
	return total
}

// FormatMinutes renders minutes as "45m", "1h 10m" or "2h".
func FormatMinutes(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	h, m := minutes/60, minutes%60
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}

// Percent returns round(done/total*100), or 0 when total is 0.
func Percent(done, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(done) / float64(total) * 100))
}

// Progress is a done/total counter.
type Progress struct {
	Done      int  `json:"done"`
	Total     int  `json:"total"`
	Remaining int  `json:"remaining"`
	Percent   int  `json:"percent"`
	Complete  bool `json:"complete"`
}

func newProgress(done, total int) Progress {
	if done > total {
		done = total
	}
	if done < 0 {
		done = 0
	}
	return Progress{
		Done:      done,
		Total:     total,
		Remaining: total - done,
		Percent:   Percent(done, total),
		Complete:  total > 0 && done == total,
	}
}

// GroceryProgress counts checked items of the grocery list.
func GroceryProgress(checked, total int) Progress {
	return newProgress(checked, total)
}

// CookingProgress counts completed steps of a recipe.
func CookingProgress(completedSteps, instructions int) Progress {
	return newProgress(completedSteps, instructions)
}

// MealCards are the meals of one day as shown on the dashboard.
type MealCards struct {
	Breakfast *domain.PlannedMeal  `json:"breakfast,omitempty"`
	Lunch     *domain.PlannedMeal  `json:"lunch,omitempty"`
	Dinner    *domain.PlannedMeal  `json:"dinner,omitempty"`
	Others    []domain.PlannedMeal `json:"others"`
}

// MealsByType picks the first breakfast, lunch and dinner of the day,
// ignoring case. Meals of any other type are kept in Others.
func MealsByType(day domain.DailyPlan) MealCards {
	cards := MealCards{Others: []domain.PlannedMeal{}}
	for i := range day.Meals {
		m := day.Meals[i]
		switch strings.ToLower(strings.TrimSpace(m.Type)) {
		case "breakfast":
			if cards.Breakfast == nil {
				cards.Breakfast = &m
			}
		case "lunch":
			if cards.Lunch == nil {
				cards.Lunch = &m
			}
		case "dinner":
			if cards.Dinner == nil {
				cards.Dinner = &m
			}
		default:
			cards.Others = append(cards.Others, m)
		}
	}
	return cards
}
