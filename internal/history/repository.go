package history

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	InsertItem(ctx context.Context, item *Item, keep int) error
	ListItems(ctx context.Context, userID uuid.UUID, limit int) ([]Item, error)
	ToggleFavorite(ctx context.Context, fav *Favorite) (bool, error)
	ListFavorites(ctx context.Context, userID uuid.UUID) ([]Favorite, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

// InsertItem records a generation and trims the user's history down to
// the cap in the same transaction, newest entries win.
func (r *postgresRepository) InsertItem(ctx context.Context, item *Item, keep int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning history insert: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO history_items (id, user_id, image_url, copies, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		item.ID, item.UserID, item.ImageURL, item.Copies, item.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting history item: %w", err)
	}

	_, err = tx.Exec(ctx,
		`DELETE FROM history_items
		 WHERE user_id = $1 AND id NOT IN (
		     SELECT id FROM history_items
		     WHERE user_id = $1
		     ORDER BY created_at DESC, id DESC
		     LIMIT $2
		 )`,
		item.UserID, keep)
	if err != nil {
		return fmt.Errorf("trimming history: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing history insert: %w", err)
	}
	return nil
}

func (r *postgresRepository) ListItems(ctx context.Context, userID uuid.UUID, limit int) ([]Item, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, image_url, copies, created_at
		 FROM history_items
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	defer rows.Close()

	items := make([]Item, 0, limit)
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.UserID, &it.ImageURL, &it.Copies, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning history item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ToggleFavorite removes the favorite if present, inserts it otherwise.
// Returns whether the copy is a favorite after the call.
func (r *postgresRepository) ToggleFavorite(ctx context.Context, fav *Favorite) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND copy_id = $2`,
		fav.UserID, fav.CopyID)
	if err != nil {
		return false, fmt.Errorf("removing favorite: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO favorites (user_id, copy_id, copy_text, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, copy_id) DO NOTHING`,
		fav.UserID, fav.CopyID, fav.Text, fav.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("adding favorite: %w", err)
	}
	return true, nil
}

func (r *postgresRepository) ListFavorites(ctx context.Context, userID uuid.UUID) ([]Favorite, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, copy_id, copy_text, created_at
		 FROM favorites
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("listing favorites: %w", err)
	}
	defer rows.Close()

	var favs []Favorite
	for rows.Next() {
		var f Favorite
		if err := rows.Scan(&f.UserID, &f.CopyID, &f.Text, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning favorite: %w", err)
		}
		favs = append(favs, f)
	}
	return favs, rows.Err()
}
