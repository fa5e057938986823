package services

import (
	"context"

	"github.com/framefight/arena/models"
	"github.com/framefight/arena/repositories"
)

// Profile is a creator's arena standing: the cached score, the ledger-derived
// balance and the rewards earned so far.
type Profile struct {
	User        *models.User         `json:"user"`
	PointsTotal int                  `json:"points_total"`
	Rewards     []*models.UserReward `json:"rewards"`
}

type ProfileService struct {
	users   repositories.UserRepository
	points  repositories.PointsRepository
	rewards repositories.RewardRepository
}

func NewProfileService(
	users repositories.UserRepository,
	points repositories.PointsRepository,
	rewards repositories.RewardRepository,
) *ProfileService {
	return &ProfileService{users: users, points: points, rewards: rewards}
}

func (s *ProfileService) GetProfile(ctx context.Context, userID int) (*Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	total, err := s.points.SumByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	rewards, err := s.rewards.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Profile{User: user, PointsTotal: total, Rewards: rewards}, nil
}

func (s *ProfileService) ListTransactions(ctx context.Context, userID, limit, offset int) ([]*models.PointsTransaction, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.points.ListByUser(ctx, userID, limit, offset)
}
