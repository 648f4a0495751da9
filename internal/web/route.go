package web

import (
	"net/http"
	"path/filepath"
	"strings"
)

// Views of the single page app.
const (
	ViewLanding    = "/"
	ViewLogin      = "/login"
	ViewOnboarding = "/onboarding"
	ViewDashboard  = "/dashboard"
	ViewPlanner    = "/planner"
	ViewGroceries  = "/groceries"
	ViewDiscover   = "/discover"
	ViewCookbook   = "/cookbook"
	ViewRecipe     = "/recipe"
)

var protectedViews = map[string]bool{
	ViewOnboarding: true,
	ViewDashboard:  true,
	ViewPlanner:    true,
	ViewGroceries:  true,
	ViewDiscover:   true,
	ViewCookbook:   true,
	ViewRecipe:     true,
}

// Decide returns where a visitor asking for view must go instead, or ""
// when the view may be shown.
func Decide(view string, signedIn, hasPlan bool) string {
	view = normalizeView(view)
	switch {
	case view == ViewLanding:
		return ""
	case view == ViewLogin:
		if signedIn {
			return ViewDashboard
		}
		return ""
	case !protectedViews[view]:
		return ViewLanding
	case !signedIn:
		return ViewLogin
	case (view == ViewDashboard || view == ViewPlanner) && !hasPlan:
		return ViewOnboarding
	}
	return ""
}

// normalizeView maps a path onto its top-level view, so /recipe/abc is the
// recipe view.
func normalizeView(p string) string {
	p = "/" + strings.Trim(p, "/")
	if i := strings.Index(p[1:], "/"); i >= 0 {
		p = p[:i+1]
	}
	return p
}

type routeResponse struct {
	View     string `json:"view"`
	Redirect string `json:"redirect,omitempty"`
}

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	view := r.URL.Query().Get("view")
	writeJSON(w, http.StatusOK, routeResponse{View: normalizeView(view), Redirect: s.decide(r, view)})
}

func (s *Server) decide(r *http.Request, view string) string {
	user := s.currentUser(r)
	hasPlan := false
	if user != nil {
		if p, err := s.app.Profile(r.Context(), user.ID); err == nil {
			hasPlan = p.HasPlan()
		}
	}
	return Decide(view, user != nil, hasPlan)
}

// spa serves built assets as files and every view through index.html after
// applying the route guards.
func (s *Server) spa() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if file := staticFile(s.opts.WebDir, r.URL.Path); file != "" {
			http.ServeFile(w, r, file)
			return
		}
		if to := s.decide(r, r.URL.Path); to != "" {
			http.Redirect(w, r, to, http.StatusFound)
			return
		}
		index := filepath.Join(s.opts.WebDir, "index.html")
		if s.opts.WebDir == "" || staticFile(s.opts.WebDir, "/index.html") == "" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeFile(w, r, index)
	})
}
