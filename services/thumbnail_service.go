package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/framefight/arena/models"
	"github.com/framefight/arena/repositories"
	"github.com/framefight/arena/storage"
	"github.com/google/uuid"
)

// ThumbnailService handles entry registration: the database row plus the
// image object in storage.
type ThumbnailService struct {
	tournaments repositories.TournamentRepository
	thumbnails  repositories.ThumbnailRepository
	uploader    storage.FileUploader
}

func NewThumbnailService(
	tournaments repositories.TournamentRepository,
	thumbnails repositories.ThumbnailRepository,
	uploader storage.FileUploader,
) *ThumbnailService {
	return &ThumbnailService{
		tournaments: tournaments,
		thumbnails:  thumbnails,
		uploader:    uploader,
	}
}

// RegisterThumbnail submits an entry to a tournament whose registration is
// still open. The image upload happens after the row exists so a storage
// failure leaves a registered entry without an image rather than an orphaned
// object.
func (s *ThumbnailService) RegisterThumbnail(ctx context.Context, creatorID, tournamentID int, title, fileName, contentType string, image io.Reader) (*models.Thumbnail, error) {
	tournament, err := s.tournaments.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if !RegistrationOpen(tournament, time.Now()) {
		return nil, ErrRegistrationClosed
	}

	thumbnail := &models.Thumbnail{
		TournamentID: tournamentID,
		CreatorID:    creatorID,
		Title:        title,
		EloRating:    models.DefaultEloRating,
	}
	if err := s.thumbnails.Create(ctx, thumbnail); err != nil {
		return nil, err
	}

	if image != nil {
		key := fmt.Sprintf("thumbnails/%d/%s%s", tournamentID, uuid.NewString(), path.Ext(fileName))
		result, err := s.uploader.Upload(ctx, key, contentType, image)
		if err != nil {
			return nil, fmt.Errorf("thumbnail %d registered but image upload failed: %w", thumbnail.ID, err)
		}
		if err := s.thumbnails.UpdateImageKey(ctx, thumbnail.ID, &result.Key); err != nil {
			return nil, err
		}
		thumbnail.ImageKey = &result.Key
		thumbnail.ImageURL = &result.Location
	}

	return thumbnail, nil
}

func (s *ThumbnailService) GetThumbnailByID(ctx context.Context, id int) (*models.Thumbnail, error) {
	thumbnail, err := s.thumbnails.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.fillImageURL(thumbnail)
	return thumbnail, nil
}

func (s *ThumbnailService) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Thumbnail, error) {
	thumbnails, err := s.thumbnails.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	for _, t := range thumbnails {
		s.fillImageURL(t)
	}
	return thumbnails, nil
}

func (s *ThumbnailService) fillImageURL(t *models.Thumbnail) {
	if t.ImageKey != nil {
		url := s.uploader.GetPublicURL(*t.ImageKey)
		t.ImageURL = &url
	}
}
