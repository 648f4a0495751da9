package web

import (
	"errors"
	"net/http"

	"yourkitchen/internal/chef"
	"yourkitchen/internal/domain"
)

type clipRequest struct {
	URL string `json:"url"`
}

type clipResponse struct {
	Recipe  *domain.Recipe  `json:"recipe"`
	Recipes []domain.Recipe `json:"recipes"`
}

type chatRequest struct {
	History []domain.ChatMessage `json:"history"`
	Message string               `json:"message"`
	Image   string               `json:"image,omitempty"`
	Mode    domain.ChatMode      `json:"mode"`
}

type recipeCardRequest struct {
	Messages []domain.ChatMessage `json:"messages"`
}

type imageRequest struct {
	Description string `json:"description"`
	Size        string `json:"size,omitempty"`
}

type imageResponse struct {
	Image string `json:"image"`
}

// handleRecipes lists (GET) or saves (POST) cookbook recipes.
func (s *Server) handleRecipes(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	id := userFrom(r.Context()).ID

	if r.Method == http.MethodGet {
		p, err := s.app.Profile(r.Context(), id)
		if errors.Is(err, domain.ErrProfileNotFound) {
			writeJSON(w, http.StatusOK, []domain.Recipe{})
			return
		}
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p.SavedRecipes)
		return
	}

	var recipe domain.Recipe
	if err := parseJSON(w, r, &recipe); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p, err := s.app.SaveRecipe(r.Context(), id, recipe)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p.SavedRecipes)
}

func (s *Server) handleRecipe(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodDelete) {
		return
	}
	p, err := s.app.DeleteRecipe(r.Context(), userFrom(r.Context()).ID, r.PathValue("id"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p.SavedRecipes)
}

func (s *Server) handleClip(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req clipRequest
	if err := parseJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p, recipe, err := s.app.ClipRecipe(r.Context(), userFrom(r.Context()).ID, req.URL)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, clipResponse{Recipe: recipe, Recipes: p.SavedRecipes})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req chatRequest
	if err := parseJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Mode == "" {
		req.Mode = domain.ModeChefBrain
	}
	msg, err := s.app.Chat(r.Context(), userFrom(r.Context()).ID, chef.ChatInput{
		History: req.History,
		Message: req.Message,
		Image:   req.Image,
		Mode:    req.Mode,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func (s *Server) handleRecipeCard(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req recipeCardRequest
	if err := parseJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	recipe, err := s.app.FinalizeRecipe(r.Context(), req.Messages)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req imageRequest
	if err := parseJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Description == "" {
		writeError(w, http.StatusBadRequest, "description is required")
		return
	}
	if req.Size == "" {
		req.Size = chef.DefaultImageSize
	}
	uri, err := s.app.GenerateImage(r.Context(), req.Description, req.Size)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, imageResponse{Image: uri})
}
