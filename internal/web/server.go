// Package web is the HTTP adapter: a JSON API under /api/ plus the single
// page app with server-side route guards.
package web

import (
	"context"
	"net/http"

	"yourkitchen/internal/app"
	"yourkitchen/internal/auth"
	"yourkitchen/internal/metrics"
)

// UsageReporter reads the recorded model usage.
type UsageReporter interface {
	GetDailyUsage(ctx context.Context, days int) ([]metrics.DailyUsage, error)
}

// Options configure a Server.
type Options struct {
	// WebDir holds the built single page app.
	WebDir string
	// DataDir is reported in the admin health figures.
	DataDir string
	// IsAdmin decides who may read the admin metrics. Nil means nobody.
	IsAdmin func(email string) bool
	// CORSOrigin is allowed to call the API from another origin, e.g. the
	// dev server of the SPA. Empty disables CORS headers.
	CORSOrigin    string
	SecureCookies bool
}

// Server is the driving HTTP adapter that routes requests to the App.
type Server struct {
	app    *app.App
	auth   *auth.Service
	usage  UsageReporter
	opts   Options
	extras map[string]http.Handler
}

// New creates a Server wired to the application and the auth service.
func New(a *app.App, authSvc *auth.Service, usage UsageReporter, opts Options) *Server {
	return &Server{
		app:    a,
		auth:   authSvc,
		usage:  usage,
		opts:   opts,
		extras: make(map[string]http.Handler),
	}
}

// Handle mounts an extra handler on the root mux, e.g. a bot webhook. It
// must be called before Handler.
func (s *Server) Handle(pattern string, h http.Handler) {
	s.extras[pattern] = h
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	api.HandleFunc("/route", s.handleRoute)
	api.HandleFunc("/questions", s.handleQuestions)
	api.HandleFunc("/questions/{id}", s.handleQuestionStep)

	api.HandleFunc("/auth/signup", s.handleSignUp)
	api.HandleFunc("/auth/signin", s.handleSignIn)
	api.HandleFunc("/auth/signout", s.handleSignOut)
	api.Handle("/auth/me", s.requireAuth(http.HandlerFunc(s.handleMe)))

	protected := http.NewServeMux()
	protected.HandleFunc("/onboarding", s.handleOnboarding)
	protected.HandleFunc("/profile", s.handleProfile)
	protected.HandleFunc("/plan/regenerate", s.handleRegenerate)
	protected.HandleFunc("/plan/swap", s.handleSwap)
	protected.HandleFunc("/dashboard", s.handleDashboard)
	protected.HandleFunc("/planner", s.handlePlanner)
	protected.HandleFunc("/cooking", s.handleCooking)

	protected.HandleFunc("/groceries", s.handleGroceries)
	protected.HandleFunc("/groceries/items", s.handleGroceryItems)
	protected.HandleFunc("/groceries/clear", s.handleGroceriesClear)
	protected.HandleFunc("/groceries/from-recipe", s.handleGroceriesFromRecipe)
	protected.HandleFunc("/groceries/categories", s.handleGroceryCategories)

	protected.HandleFunc("/recipes", s.handleRecipes)
	protected.HandleFunc("/recipes/clip", s.handleClip)
	protected.HandleFunc("/recipes/{id}", s.handleRecipe)

	protected.HandleFunc("/chat", s.handleChat)
	protected.HandleFunc("/chat/recipe-card", s.handleRecipeCard)
	protected.HandleFunc("/images", s.handleImage)

	protected.HandleFunc("/admin/metrics", s.handleAdminMetrics)

	api.Handle("/", s.requireAuth(protected))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", s.withCORS(api)))
	for pattern, h := range s.extras {
		root.Handle(pattern, h)
	}
	root.Handle("/", s.spa())

	return loggingMiddleware(withNoCache(root))
}
