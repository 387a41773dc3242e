package history

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	cacheKeyPrefix = "history:"
	cacheTTL       = 5 * time.Minute
)

// Service keeps PostgreSQL as the system of record and uses Redis as a
// read-through cache for the history list. Cache failures degrade to
// plain database reads.
type Service struct {
	repo Repository
	rdb  redis.Cmdable
}

func NewService(repo Repository, rdb redis.Cmdable) *Service {
	return &Service{repo: repo, rdb: rdb}
}

// Append records a finished generation, assigning each variation a
// stable id, and invalidates the cached list.
func (s *Service) Append(ctx context.Context, userID uuid.UUID, imageURL string, texts []string, isPro bool) error {
	copies := make([]Copy, 0, len(texts))
	for _, t := range texts {
		copies = append(copies, Copy{ID: uuid.NewString(), Text: t})
	}

	item := &Item{
		ID:        uuid.New(),
		UserID:    userID,
		ImageURL:  imageURL,
		Copies:    copies,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.InsertItem(ctx, item, CapForTier(isPro)); err != nil {
		return err
	}

	s.invalidate(ctx, userID)
	return nil
}

// List returns the user's history, newest first, capped by tier.
func (s *Service) List(ctx context.Context, userID uuid.UUID, isPro bool) ([]Item, error) {
	key := cacheKeyPrefix + userID.String()

	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, key).Bytes()
		if err == nil {
			var items []Item
			if err := json.Unmarshal(cached, &items); err == nil {
				return items, nil
			}
			// Corrupt entry, drop it and fall through
			s.invalidate(ctx, userID)
		} else if err != redis.Nil {
			slog.Warn("history cache read failed", "error", err)
		}
	}

	items, err := s.repo.ListItems(ctx, userID, CapForTier(isPro))
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if payload, err := json.Marshal(items); err == nil {
			if err := s.rdb.Set(ctx, key, payload, cacheTTL).Err(); err != nil {
				slog.Warn("history cache write failed", "error", err)
			}
		}
	}
	return items, nil
}

// ToggleFavorite flips the favorite state of a copy and reports the
// state after the call.
func (s *Service) ToggleFavorite(ctx context.Context, userID uuid.UUID, copyID, text string) (bool, error) {
	return s.repo.ToggleFavorite(ctx, &Favorite{
		UserID:    userID,
		CopyID:    copyID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	})
}

// Favorites lists the user's pinned copies, newest first.
func (s *Service) Favorites(ctx context.Context, userID uuid.UUID) ([]Favorite, error) {
	return s.repo.ListFavorites(ctx, userID)
}

func (s *Service) invalidate(ctx context.Context, userID uuid.UUID) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, cacheKeyPrefix+userID.String()).Err(); err != nil {
		slog.Warn("history cache invalidation failed", "error", err)
	}
}
