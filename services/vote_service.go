package services

import (
	"context"

	"github.com/framefight/arena/models"
	"github.com/framefight/arena/repositories"
)

// VoteService appends votes for running battles. Votes are append-only;
// tallying happens at resolution time.
type VoteService struct {
	battles repositories.BattleRepository
	votes   repositories.VoteRepository
}

func NewVoteService(battles repositories.BattleRepository, votes repositories.VoteRepository) *VoteService {
	return &VoteService{battles: battles, votes: votes}
}

// CastVote records the voter's pick. The (voter, battle) uniqueness is
// enforced by the store; a terminal battle refuses further votes (anything
// arriving after resolution would be irrelevant anyway).
func (s *VoteService) CastVote(ctx context.Context, voterID, battleID int, side models.BattleSide) (*models.Vote, error) {
	if side != models.BattleSideA && side != models.BattleSideB {
		return nil, ErrInvalidSide
	}

	battle, err := s.battles.GetByID(ctx, battleID)
	if err != nil {
		return nil, err
	}
	if battle.IsTerminal() {
		return nil, ErrVotingClosed
	}

	vote := &models.Vote{
		BattleID: battleID,
		VoterID:  voterID,
		Side:     side,
	}
	if err := s.votes.Create(ctx, vote); err != nil {
		return nil, err
	}
	return vote, nil
}

// TallyBattle returns the current two-way count for a battle.
func (s *VoteService) TallyBattle(ctx context.Context, battleID int) (VoteCounts, error) {
	if _, err := s.battles.GetByID(ctx, battleID); err != nil {
		return VoteCounts{}, err
	}
	votes, err := s.votes.ListByBattle(ctx, battleID)
	if err != nil {
		return VoteCounts{}, err
	}
	return TallyVotes(votes), nil
}
