package admins

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/DreadX3/copy-snap-magic-words/internal/auth"
	"github.com/DreadX3/copy-snap-magic-words/internal/config"
	"github.com/DreadX3/copy-snap-magic-words/internal/events"
	"github.com/DreadX3/copy-snap-magic-words/internal/users"
)

var (
	// ErrLastSuperAdmin rejects removing the only remaining super admin.
	ErrLastSuperAdmin = errors.New("cannot remove the last super admin")
	// ErrUserNotFound means no profile matches the given email.
	ErrUserNotFound = errors.New("no user with that email")
	// ErrNotAdmin means the target user holds no admin record.
	ErrNotAdmin = errors.New("user is not an admin")
)

type Service struct {
	repo      Repository
	users     *users.Service
	publisher *events.Publisher
	bootstrap config.AdminConfig
}

func NewService(repo Repository, userSvc *users.Service, publisher *events.Publisher, bootstrap config.AdminConfig) *Service {
	return &Service{
		repo:      repo,
		users:     userSvc,
		publisher: publisher,
		bootstrap: bootstrap,
	}
}

// AddByEmail grants admin rights to the profile with the given email.
func (s *Service) AddByEmail(ctx context.Context, actorID uuid.UUID, email string, isSuperAdmin bool) (*Admin, error) {
	profile, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrUserNotFound
	}

	if err := s.repo.Add(ctx, profile.ID, isSuperAdmin); err != nil {
		return nil, err
	}

	s.publisher.Audit(ctx, actorID, events.EventAdminAdded, "info",
		fmt.Sprintf(`{"target":%q,"is_super_admin":%t}`, profile.ID, isSuperAdmin))

	return s.repo.Get(ctx, profile.ID)
}

// Remove revokes admin rights. Removing the last remaining super admin
// is rejected before any delete is issued, so the panel can never lock
// itself out.
func (s *Service) Remove(ctx context.Context, actorID, targetID uuid.UUID) error {
	target, err := s.repo.Get(ctx, targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrNotAdmin
	}

	if target.IsSuperAdmin {
		count, err := s.repo.CountSuperAdmins(ctx)
		if err != nil {
			return err
		}
		if count <= 1 {
			return ErrLastSuperAdmin
		}
	}

	if _, err := s.repo.Remove(ctx, targetID); err != nil {
		return err
	}

	s.publisher.Audit(ctx, actorID, events.EventAdminRemoved, "warn",
		fmt.Sprintf(`{"target":%q}`, targetID))
	return nil
}

func (s *Service) List(ctx context.Context) ([]Admin, error) {
	return s.repo.List(ctx)
}

// Get returns the admin record for a user, or nil when none exists.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*Admin, error) {
	return s.repo.Get(ctx, userID)
}

// IsAdmin satisfies the profile handler's admin check.
func (s *Service) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	return s.repo.IsAdmin(ctx, userID)
}

// Reset wipes every profile (usage rows, history, favorites and admin
// records cascade) and provisions a fresh super admin from the
// configured bootstrap credentials.
func (s *Service) Reset(ctx context.Context, actorID uuid.UUID) error {
	if s.bootstrap.BootstrapEmail == "" || s.bootstrap.BootstrapPassword == "" {
		return errors.New("bootstrap admin credentials not configured")
	}

	if err := s.users.DeleteAll(ctx); err != nil {
		return fmt.Errorf("wiping profiles: %w", err)
	}

	hash, err := auth.HashPassword(s.bootstrap.BootstrapPassword)
	if err != nil {
		return fmt.Errorf("hashing bootstrap password: %w", err)
	}

	profile, err := s.users.Create(ctx, s.bootstrap.BootstrapEmail, hash)
	if err != nil {
		return fmt.Errorf("creating bootstrap admin profile: %w", err)
	}

	if err := s.repo.Add(ctx, profile.ID, true); err != nil {
		return fmt.Errorf("granting bootstrap super admin: %w", err)
	}

	slog.Warn("all user data reset", "actor", actorID, "bootstrap_admin", s.bootstrap.BootstrapEmail)
	s.publisher.Audit(ctx, actorID, events.EventUsersReset, "error",
		fmt.Sprintf(`{"bootstrap_admin":%q}`, s.bootstrap.BootstrapEmail))
	return nil
}
