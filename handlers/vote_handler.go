package handlers

import (
	"net/http"

	"github.com/framefight/arena/middleware"
	"github.com/framefight/arena/models"
	"github.com/framefight/arena/services"
)

type VoteHandler struct {
	voteService *services.VoteService
}

func NewVoteHandler(vs *services.VoteService) *VoteHandler {
	return &VoteHandler{voteService: vs}
}

type castVoteInput struct {
	Side models.BattleSide `json:"side"`
}

// CastHandler handles POST /battles/{battleID}/votes.
func (h *VoteHandler) CastHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to vote")
		return
	}

	battleID, err := getIDFromURL(r, "battleID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input castVoteInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	vote, err := h.voteService.CastVote(r.Context(), currentUserID, battleID, input.Side)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"vote": vote}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// TallyHandler handles GET /battles/{battleID}/tally.
func (h *VoteHandler) TallyHandler(w http.ResponseWriter, r *http.Request) {
	battleID, err := getIDFromURL(r, "battleID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	counts, err := h.voteService.TallyBattle(r.Context(), battleID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tally": counts}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
