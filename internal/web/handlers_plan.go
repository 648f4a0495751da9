package web

import (
	"net/http"
	"strconv"

	"yourkitchen/internal/domain"
	"yourkitchen/internal/questionnaire"
	"yourkitchen/internal/view"
)

type cookingResponse struct {
	Meal     *domain.PlannedMeal `json:"meal"`
	Progress view.Progress       `json:"progress"`
}

type onboardingRequest struct {
	Name    string           `json:"name"`
	Answers map[int][]string `json:"answers"`
}

// swapRequest names the meal by id, or by name and type for plans read
// before meals had ids.
type swapRequest struct {
	DayIndex int    `json:"dayIndex"`
	MealID   string `json:"mealId"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Reason   string `json:"reason"`
}

type swapResponse struct {
	Profile *domain.UserProfile `json:"profile"`
	Meal    *domain.PlannedMeal `json:"meal"`
}

func (s *Server) handleQuestions(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, questionnaire.Questions())
}

type stepRequest struct {
	Values []string `json:"values"`
}

// handleQuestionStep validates the answer of one onboarding step.
func (s *Server) handleQuestionStep(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid question id")
		return
	}
	q, ok := questionnaire.Lookup(id)
	if !ok {
		writeError(w, http.StatusNotFound, "question not found")
		return
	}
	var req stepRequest
	if err := parseJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := questionnaire.Validate(q, req.Values); msg != "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg, Fields: map[int]string{q.ID: msg}})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleOnboarding(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req onboardingRequest
	if err := parseJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user := userFrom(r.Context())
	name := req.Name
	if name == "" {
		name = user.Name
	}
	p, err := s.app.CompleteOnboarding(r.Context(), user.ID, name, req.Answers)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	p, err := s.app.Profile(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	p, err := s.app.RegeneratePlan(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleSwap(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req swapRequest
	if err := parseJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	userID := userFrom(r.Context()).ID

	var p *domain.UserProfile
	var meal *domain.PlannedMeal
	var err error
	switch {
	case req.MealID != "":
		p, meal, err = s.app.SwapMeal(r.Context(), userID, req.DayIndex, req.MealID, req.Reason)
	case req.Name != "" && req.Type != "":
		p, meal, err = s.app.SwapMealByName(r.Context(), userID, req.DayIndex, req.Name, req.Type, req.Reason)
	default:
		writeError(w, http.StatusBadRequest, "mealId or name and type are required")
		return
	}
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, swapResponse{Profile: p, Meal: meal})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	d, err := s.app.Dashboard(r.Context(), userFrom(r.Context()).ID, intQuery(r, "day", -1))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handlePlanner(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	p, err := s.app.Planner(r.Context(), userFrom(r.Context()).ID, intQuery(r, "week", 0))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleCooking reports cooking mode progress of one planned meal, with the
// completed step indexes given as ?completed=0,1.
func (s *Server) handleCooking(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	mealID := r.URL.Query().Get("mealId")
	if mealID == "" {
		writeError(w, http.StatusBadRequest, "mealId is required")
		return
	}
	meal, err := s.app.Meal(r.Context(), userFrom(r.Context()).ID, intQuery(r, "day", 0), mealID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	steps := len(meal.Instructions)
	writeJSON(w, http.StatusOK, cookingResponse{
		Meal:     meal,
		Progress: view.CookingProgress(countIndexes(intListQuery(r, "completed"), steps), steps),
	})
}
