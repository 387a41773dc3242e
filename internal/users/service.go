package users

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, email, passwordHash string) (*Profile, error) {
	now := time.Now()
	profile := &Profile{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*Profile, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.repo.ExistsByEmail(ctx, email)
}

func (s *Service) SetPro(ctx context.Context, id uuid.UUID, isPro bool) error {
	return s.repo.SetPro(ctx, id, isPro)
}

func (s *Service) CompleteProfile(ctx context.Context, id uuid.UUID) error {
	return s.repo.SetProfileCompleted(ctx, id)
}

func (s *Service) SetStripeCustomerID(ctx context.Context, id uuid.UUID, customerID string) error {
	return s.repo.SetStripeCustomerID(ctx, id, customerID)
}

func (s *Service) SetProByStripeCustomerID(ctx context.Context, customerID string, isPro bool) (bool, error) {
	return s.repo.SetProByStripeCustomerID(ctx, customerID, isPro)
}

func (s *Service) DeleteAll(ctx context.Context) error {
	return s.repo.DeleteAll(ctx)
}
