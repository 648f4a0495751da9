package view

import (
	"strings"
	"time"

	"yourkitchen/internal/domain"
)

// DayTab is one entry of the dashboard day strip.
type DayTab struct {
	Index     int    `json:"index"`
	Day       string `json:"day"`
	DayNumber int    `json:"dayNumber"`
	Selected  bool   `json:"selected"`
}

// Dashboard is everything the dashboard shows for one selected day.
type Dashboard struct {
	Title             string            `json:"weekTitle"`
	Theme             string            `json:"theme"`
	Days              []DayTab          `json:"days"`
	SelectedDay       int               `json:"selectedDay"`
	Meals             MealCards         `json:"meals"`
	PrepMinutes       int               `json:"prepMinutes"`
	PrepTotal         string            `json:"prepTotal"`
	GroceryCount      int               `json:"groceryCount"`
	PrepTasks         []domain.PrepTask `json:"sundayPrep"`
	SustainabilityTip string            `json:"sustainabilityTip"`
}

// DashboardView builds the dashboard for dayIndex, or for the default day
// when dayIndex is negative.
func DashboardView(plan *domain.WeeklyPlan, dayIndex int, now time.Time) (*Dashboard, error) {
	if plan == nil {
		return nil, domain.ErrNoPlan
	}
	if dayIndex < 0 {
		dayIndex = DefaultDayIndex(plan, now)
	}
	if len(plan.DailyPlans) > 0 && dayIndex >= len(plan.DailyPlans) {
		return nil, domain.ErrDayOutOfRange
	}

	d := &Dashboard{
		Title:             plan.Title,
		Theme:             plan.Theme,
		Days:              make([]DayTab, len(plan.DailyPlans)),
		SelectedDay:       dayIndex,
		Meals:             MealCards{Others: []domain.PlannedMeal{}},
		GroceryCount:      len(plan.GroceryList),
		PrepTasks:         plan.PrepTasks,
		SustainabilityTip: plan.SustainabilityTip,
	}
	for i, day := range plan.DailyPlans {
		d.Days[i] = DayTab{
			Index:     i,
			Day:       day.Day,
			DayNumber: DayNumber(day.Day, i, 0, now),
			Selected:  i == dayIndex,
		}
	}
	if len(plan.DailyPlans) > 0 {
		selected := plan.DailyPlans[dayIndex]
		d.Meals = MealsByType(selected)
		d.PrepMinutes = PrepTotal(selected.Meals)
	}
	d.PrepTotal = FormatMinutes(d.PrepMinutes)
	return d, nil
}

// PlannerDay is one column of the weekly planner.
type PlannerDay struct {
	Date      string `json:"date"`
	DayName   string `json:"dayName"`
	ShortName string `json:"shortName"`
	DayNumber int    `json:"dayNumber"`
	IsToday   bool   `json:"isToday"`
	// DayIndex points into the plan, -1 when the plan has no such weekday.
	DayIndex int                  `json:"dayIndex"`
	Meals    []domain.PlannedMeal `json:"meals"`
}

// Planner is the week strip of the meal planner page.
type Planner struct {
	Header     string       `json:"header"`
	WeekOffset int          `json:"weekOffset"`
	Days       []PlannerDay `json:"days"`
}

// PlannerView lays the plan's weekday slots over the calendar week shifted
// by weekOffset. The same plan repeats on every week.
func PlannerView(plan *domain.WeeklyPlan, weekOffset int, now time.Time) (*Planner, error) {
	if plan == nil {
		return nil, domain.ErrNoPlan
	}

	dates := WeekDates(weekOffset, now)
	p := &Planner{
		Header:     dates[3].Format("January 2006"),
		WeekOffset: weekOffset,
		Days:       make([]PlannerDay, len(dates)),
	}
	for i, date := range dates {
		name := date.Weekday().String()
		day := PlannerDay{
			Date:      date.Format("2006-01-02"),
			DayName:   name,
			ShortName: name[:3],
			DayNumber: date.Day(),
			IsToday:   sameDate(date, now),
			DayIndex:  -1,
			Meals:     []domain.PlannedMeal{},
		}
		for j, dp := range plan.DailyPlans {
			if strings.EqualFold(strings.TrimSpace(dp.Day), name) {
				day.DayIndex = j
				day.Meals = dp.Meals
				break
			}
		}
		p.Days[i] = day
	}
	return p, nil
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
