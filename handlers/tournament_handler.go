package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/framefight/arena/middleware"
	"github.com/framefight/arena/models"
	"github.com/framefight/arena/services"
)

type TournamentHandler struct {
	tournamentService *services.TournamentService
}

func NewTournamentHandler(ts *services.TournamentService) *TournamentHandler {
	return &TournamentHandler{tournamentService: ts}
}

type createRoundInput struct {
	Number    int         `json:"number"`
	Theme     *string     `json:"theme"`
	StartDate time.Time   `json:"start_date"`
	EndDate   time.Time   `json:"end_date"`
	Reward    roundReward `json:"reward"`
}

type roundReward struct {
	Points         int      `json:"points"`
	Badges         []string `json:"badges"`
	SpecialRewards []string `json:"special_rewards"`
}

type createTournamentInput struct {
	Title                string             `json:"title"`
	Category             *string            `json:"category"`
	RegistrationDeadline time.Time          `json:"registration_deadline"`
	Rounds               []createRoundInput `json:"rounds"`
}

// CreateHandler handles POST /tournaments.
func (h *TournamentHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to create a tournament")
		return
	}

	var input createTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament := &models.Tournament{
		Title:                input.Title,
		Category:             input.Category,
		CreatorID:            currentUserID,
		RegistrationDeadline: input.RegistrationDeadline,
	}
	for _, rd := range input.Rounds {
		tournament.Rounds = append(tournament.Rounds, models.Round{
			Number:    rd.Number,
			Theme:     rd.Theme,
			StartDate: rd.StartDate,
			EndDate:   rd.EndDate,
			Reward: models.RoundReward{
				Points:         rd.Reward.Points,
				Badges:         rd.Reward.Badges,
				SpecialRewards: rd.Reward.SpecialRewards,
			},
		})
	}
	if len(tournament.Rounds) > 0 {
		tournament.StartDate = tournament.Rounds[0].StartDate
		tournament.EndDate = tournament.Rounds[len(tournament.Rounds)-1].EndDate
	}

	if err := h.tournamentService.CreateTournament(r.Context(), tournament); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler handles GET /tournaments/{tournamentID}.
func (h *TournamentHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.GetTournamentByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler handles GET /tournaments?status=active.
func (h *TournamentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	statusStr := r.URL.Query().Get("status")
	if statusStr == "" {
		statusStr = string(models.TournamentStatusActive)
	}
	status := models.TournamentStatus(statusStr)
	switch status {
	case models.TournamentStatusPending, models.TournamentStatusActive,
		models.TournamentStatusConcluded, models.TournamentStatusCancelled:
	default:
		badRequestResponse(w, r, errors.New("invalid status query parameter"))
		return
	}

	tournaments, err := h.tournamentService.ListTournaments(r.Context(), status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetBracketHandler handles GET /tournaments/{tournamentID}/bracket.
func (h *TournamentHandler) GetBracketHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.GetBracket(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
