package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/framefight/arena/middleware"
	"github.com/framefight/arena/services"
)

type ThumbnailHandler struct {
	thumbnailService *services.ThumbnailService
}

func NewThumbnailHandler(ts *services.ThumbnailService) *ThumbnailHandler {
	return &ThumbnailHandler{thumbnailService: ts}
}

// RegisterHandler handles POST /tournaments/{tournamentID}/thumbnails.
// The entry metadata and image arrive together as a multipart form with a
// "title" field and an "image" file.
func (h *ThumbnailHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to register a thumbnail")
		return
	}

	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		badRequestResponse(w, r, fmt.Errorf("failed to parse multipart form: %w", err))
		return
	}

	title := r.FormValue("title")
	if title == "" {
		badRequestResponse(w, r, errors.New("title form field is required"))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		badRequestResponse(w, r, fmt.Errorf("failed to get image file from form: %w", err))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		badRequestResponse(w, r, errors.New("content-type header is required for image"))
		return
	}

	thumbnail, err := h.thumbnailService.RegisterThumbnail(r.Context(), currentUserID, tournamentID, title, header.Filename, contentType, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"thumbnail": thumbnail}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListByTournamentHandler handles GET /tournaments/{tournamentID}/thumbnails.
func (h *ThumbnailHandler) ListByTournamentHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	thumbnails, err := h.thumbnailService.ListByTournament(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"thumbnails": thumbnails}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler handles GET /thumbnails/{thumbnailID}.
func (h *ThumbnailHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "thumbnailID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	thumbnail, err := h.thumbnailService.GetThumbnailByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"thumbnail": thumbnail}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
