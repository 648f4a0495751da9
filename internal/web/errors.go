package web

import (
	"errors"
	"log"
	"net/http"

	"yourkitchen/internal/app"
	"yourkitchen/internal/auth"
	"yourkitchen/internal/chef"
	"yourkitchen/internal/clipper"
	"yourkitchen/internal/domain"
	"yourkitchen/internal/planner"
	"yourkitchen/internal/questionnaire"
)

const (
	msgPlanFailed = "We couldn't create your meal plan right now. Please try again."
	msgSwapFailed = "We couldn't find a replacement meal right now. Please try again."
)

var badRequestErrors = []error{
	auth.ErrInvalidEmail,
	auth.ErrWeakPassword,
	chef.ErrInvalidMode,
	chef.ErrEmptyMessage,
	chef.ErrInvalidSize,
	clipper.ErrInvalidURL,
	app.ErrRecipeName,
	domain.ErrDayOutOfRange,
}

// writeAppError maps an application error onto a status and a message the
// user can read. Unknown errors are logged and hidden.
func writeAppError(w http.ResponseWriter, err error) {
	var verr *questionnaire.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Please answer every question.", Fields: verr.Fields})
		return
	}
	for _, known := range badRequestErrors {
		if errors.Is(err, known) {
			writeError(w, http.StatusBadRequest, known.Error())
			return
		}
	}

	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
	case errors.Is(err, auth.ErrInvalidSession):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, auth.ErrEmailTaken):
		writeError(w, http.StatusConflict, auth.ErrEmailTaken.Error())
	case errors.Is(err, domain.ErrProfileNotFound):
		writeError(w, http.StatusNotFound, domain.ErrProfileNotFound.Error())
	case errors.Is(err, domain.ErrMealNotFound):
		writeError(w, http.StatusNotFound, domain.ErrMealNotFound.Error())
	case errors.Is(err, domain.ErrNoPlan):
		writeError(w, http.StatusConflict, domain.ErrNoPlan.Error())
	case errors.Is(err, chef.ErrNoRecipe), errors.Is(err, clipper.ErrNoRecipe):
		writeError(w, http.StatusUnprocessableEntity, "No recipe could be found.")
	case errors.Is(err, planner.ErrPlanGeneration):
		writeError(w, http.StatusBadGateway, msgPlanFailed)
	case errors.Is(err, planner.ErrSwap):
		writeError(w, http.StatusBadGateway, msgSwapFailed)
	case errors.Is(err, app.ErrUpstream):
		writeError(w, http.StatusBadGateway, app.ErrUpstream.Error())
	default:
		log.Printf("Error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
