package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/framefight/arena/services"
)

type ProfileHandler struct {
	profileService *services.ProfileService
}

func NewProfileHandler(ps *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: ps}
}

// GetHandler handles GET /users/{userID}/profile.
func (h *ProfileHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := getIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	profile, err := h.profileService.GetProfile(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"profile": profile}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListTransactionsHandler handles GET /users/{userID}/transactions.
func (h *ProfileHandler) ListTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := getIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	query := r.URL.Query()
	limit := 20
	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		} else {
			badRequestResponse(w, r, errors.New("invalid limit query parameter"))
			return
		}
	}
	offset := 0
	if offsetStr := query.Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		} else {
			badRequestResponse(w, r, errors.New("invalid offset query parameter"))
			return
		}
	}

	transactions, err := h.profileService.ListTransactions(r.Context(), userID, limit, offset)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"transactions": transactions}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
