package web

import (
	"net/http"
	"time"

	"yourkitchen/internal/auth"
	"yourkitchen/internal/domain"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Password string `json:"password"`
}

type userResponse struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	HasPlan bool   `json:"hasPlan"`
	IsAdmin bool   `json:"isAdmin"`
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req credentialsRequest
	if err := parseJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sess, err := s.auth.SignUp(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		writeAppError(w, err)
		return
	}
	s.setSession(w, sess)
	writeJSON(w, http.StatusCreated, s.userResponse(r, sess.User))
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req credentialsRequest
	if err := parseJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sess, err := s.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeAppError(w, err)
		return
	}
	s.setSession(w, sess)
	writeJSON(w, http.StatusOK, s.userResponse(r, sess.User))
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	if token := sessionToken(r); token != "" {
		if err := s.auth.SignOut(r.Context(), token); err != nil {
			writeAppError(w, err)
			return
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, s.userResponse(r, userFrom(r.Context())))
}

func (s *Server) setSession(w http.ResponseWriter, sess *auth.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		MaxAge:   int(time.Until(sess.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *Server) userResponse(r *http.Request, u *domain.User) userResponse {
	resp := userResponse{ID: u.ID, Email: u.Email, Name: u.Name, IsAdmin: s.isAdmin(u)}
	// A failing profile store still lets the user in; the guarded views
	// report the failure.
	if p, err := s.app.Profile(r.Context(), u.ID); err == nil {
		resp.HasPlan = p.HasPlan()
		if p.Name != "" {
			resp.Name = p.Name
		}
	}
	return resp
}

func (s *Server) isAdmin(u *domain.User) bool {
	return u != nil && s.opts.IsAdmin != nil && s.opts.IsAdmin(u.Email)
}
