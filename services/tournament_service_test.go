package services

import (
	"context"
	"testing"
	"time"

	"github.com/framefight/arena/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTournamentInput() *models.Tournament {
	return &models.Tournament{
		Title:                "weekly clash",
		CreatorID:            1,
		RegistrationDeadline: baseTime.Add(-time.Hour),
		Rounds: []models.Round{
			{Number: 1, StartDate: baseTime, EndDate: baseTime.Add(24 * time.Hour)},
			{Number: 2, StartDate: baseTime.Add(24 * time.Hour), EndDate: baseTime.Add(48 * time.Hour)},
		},
	}
}

func newTournamentService(f *engineFixture) *TournamentService {
	return NewTournamentService(f.tournaments, f.thumbnails, f.battles)
}

func TestCreateTournamentForcesPendingStatus(t *testing.T) {
	f := newEngineFixture()
	svc := newTournamentService(f)

	input := validTournamentInput()
	input.Status = models.TournamentStatusActive // must be ignored
	winner := 7
	input.WinnerThumbnailID = &winner

	require.NoError(t, svc.CreateTournament(context.Background(), input))
	assert.Equal(t, models.TournamentStatusPending, input.Status)
	assert.Nil(t, input.WinnerThumbnailID)
	assert.NotZero(t, input.ID)
}

func TestCreateTournamentValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.Tournament)
		wantErr error
	}{
		{
			name:    "missing title",
			mutate:  func(in *models.Tournament) { in.Title = "" },
			wantErr: ErrTournamentTitleRequired,
		},
		{
			name:    "no rounds",
			mutate:  func(in *models.Tournament) { in.Rounds = nil },
			wantErr: ErrTournamentNoRounds,
		},
		{
			name:    "round numbers out of order",
			mutate:  func(in *models.Tournament) { in.Rounds[1].Number = 3 },
			wantErr: ErrTournamentRoundOrder,
		},
		{
			name:    "round end before start",
			mutate:  func(in *models.Tournament) { in.Rounds[0].EndDate = in.Rounds[0].StartDate.Add(-time.Hour) },
			wantErr: ErrTournamentInvalidDateRange,
		},
		{
			name:    "round missing dates",
			mutate:  func(in *models.Tournament) { in.Rounds[1].StartDate = time.Time{} },
			wantErr: ErrTournamentInvalidDateRange,
		},
		{
			name:    "deadline after first round start",
			mutate:  func(in *models.Tournament) { in.RegistrationDeadline = in.Rounds[0].StartDate.Add(time.Hour) },
			wantErr: ErrTournamentDeadlineTooLate,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newEngineFixture()
			svc := newTournamentService(f)

			input := validTournamentInput()
			tc.mutate(input)

			err := svc.CreateTournament(context.Background(), input)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestGetBracketLoadsEntriesAndBattles(t *testing.T) {
	f := newEngineFixture()
	svc := newTournamentService(f)

	tournament := f.addTournament(models.TournamentStatusActive, baseTime.Add(-time.Hour), validTournamentInput().Rounds)
	thumbA := f.addThumbnail(tournament.ID, 10, 1200)
	thumbB := f.addThumbnail(tournament.ID, 11, 1200)
	thumbC := f.addThumbnail(tournament.ID, 12, 1200)
	f.addBattle(tournament.ID, 1, thumbA.ID, &thumbB.ID)
	f.addBattle(tournament.ID, 1, thumbC.ID, nil)
	f.addBattle(tournament.ID, 2, thumbA.ID, &thumbC.ID)

	bracket, err := svc.GetBracket(context.Background(), tournament.ID)
	require.NoError(t, err)
	assert.Len(t, bracket.Thumbnails, 3)
	assert.Len(t, bracket.Battles, 3)
}

func TestRegistrationOpen(t *testing.T) {
	tournament := &models.Tournament{
		Status:               models.TournamentStatusPending,
		RegistrationDeadline: baseTime,
	}

	assert.True(t, RegistrationOpen(tournament, baseTime.Add(-time.Minute)))
	assert.False(t, RegistrationOpen(tournament, baseTime))
	assert.False(t, RegistrationOpen(tournament, baseTime.Add(time.Minute)))

	tournament.Status = models.TournamentStatusActive
	assert.False(t, RegistrationOpen(tournament, baseTime.Add(-time.Minute)))
}
