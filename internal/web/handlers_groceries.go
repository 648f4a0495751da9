package web

import (
	"net/http"

	"yourkitchen/internal/domain"
	"yourkitchen/internal/view"
)

type groceriesResponse struct {
	Items    []domain.GroceryItem `json:"items"`
	Progress view.Progress        `json:"progress"`
}

type groceryItemsRequest struct {
	Item    string `json:"item,omitempty"`
	Indexes []int  `json:"indexes,omitempty"`
}

type checkedRequest struct {
	Checked []int `json:"checked"`
}

type ingredientsRequest struct {
	Ingredients []domain.Ingredient `json:"ingredients"`
}

func (s *Server) handleGroceries(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet, http.MethodPut) {
		return
	}
	id := userFrom(r.Context()).ID

	if r.Method == http.MethodPut {
		var items []domain.GroceryItem
		if err := parseJSON(w, r, &items); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		p, err := s.app.UpdateGroceries(r.Context(), id, items)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newGroceriesResponse(p.WeeklyPlan.GroceryList, nil))
		return
	}

	items, err := s.app.Groceries(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newGroceriesResponse(items, intListQuery(r, "checked")))
}

func (s *Server) handleGroceryItems(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost, http.MethodDelete) {
		return
	}
	var req groceryItemsRequest
	if err := parseJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	id := userFrom(r.Context()).ID

	var (
		p   *domain.UserProfile
		err error
	)
	if r.Method == http.MethodPost {
		if req.Item == "" {
			writeError(w, http.StatusBadRequest, "item is required")
			return
		}
		p, err = s.app.AddGroceryItem(r.Context(), id, req.Item)
	} else {
		p, err = s.app.RemoveGroceryItems(r.Context(), id, req.Indexes)
	}
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newGroceriesResponse(p.WeeklyPlan.GroceryList, nil))
}

func (s *Server) handleGroceriesClear(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req checkedRequest
	if err := parseJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p, err := s.app.ClearCompletedGroceries(r.Context(), userFrom(r.Context()).ID, req.Checked)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newGroceriesResponse(p.WeeklyPlan.GroceryList, nil))
}

// handleGroceriesFromRecipe adds (POST) or removes (DELETE) the ingredients
// of a recipe.
func (s *Server) handleGroceriesFromRecipe(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost, http.MethodDelete) {
		return
	}
	var req ingredientsRequest
	if err := parseJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	id := userFrom(r.Context()).ID

	var (
		p   *domain.UserProfile
		err error
	)
	if r.Method == http.MethodPost {
		p, err = s.app.AddIngredientsToGroceries(r.Context(), id, req.Ingredients)
	} else {
		p, err = s.app.RemoveIngredientsFromGroceries(r.Context(), id, req.Ingredients)
	}
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newGroceriesResponse(p.WeeklyPlan.GroceryList, nil))
}

func (s *Server) handleGroceryCategories(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	groups, err := s.app.CategorizeGroceries(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func newGroceriesResponse(items []domain.GroceryItem, checked []int) groceriesResponse {
	if items == nil {
		items = []domain.GroceryItem{}
	}
	return groceriesResponse{Items: items, Progress: view.GroceryProgress(countIndexes(checked, len(items)), len(items))}
}

// countIndexes counts the distinct indexes in [0, n).
func countIndexes(indexes []int, n int) int {
	done := 0
	seen := make(map[int]bool, len(indexes))
	for _, i := range indexes {
		if i >= 0 && i < n && !seen[i] {
			seen[i] = true
			done++
		}
	}
	return done
}
