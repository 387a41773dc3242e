package admins

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Add(ctx context.Context, userID uuid.UUID, isSuperAdmin bool) error
	Remove(ctx context.Context, userID uuid.UUID) (bool, error)
	Get(ctx context.Context, userID uuid.UUID) (*Admin, error)
	List(ctx context.Context) ([]Admin, error)
	IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
	CountSuperAdmins(ctx context.Context) (int, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Add(ctx context.Context, userID uuid.UUID, isSuperAdmin bool) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO admin_users (user_id, is_super_admin, created_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE SET is_super_admin = EXCLUDED.is_super_admin`,
		userID, isSuperAdmin, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("adding admin: %w", err)
	}
	return nil
}

func (r *postgresRepository) Remove(ctx context.Context, userID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM admin_users WHERE user_id = $1`, userID)
	if err != nil {
		return false, fmt.Errorf("removing admin: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *postgresRepository) Get(ctx context.Context, userID uuid.UUID) (*Admin, error) {
	var a Admin
	err := r.pool.QueryRow(ctx,
		`SELECT a.user_id, p.email, a.is_super_admin, a.created_at
		 FROM admin_users a
		 JOIN profiles p ON p.id = a.user_id
		 WHERE a.user_id = $1`, userID,
	).Scan(&a.UserID, &a.Email, &a.IsSuperAdmin, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying admin: %w", err)
	}
	return &a, nil
}

func (r *postgresRepository) List(ctx context.Context) ([]Admin, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.user_id, p.email, a.is_super_admin, a.created_at
		 FROM admin_users a
		 JOIN profiles p ON p.id = a.user_id
		 ORDER BY a.created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing admins: %w", err)
	}
	defer rows.Close()

	var out []Admin
	for rows.Next() {
		var a Admin
		if err := rows.Scan(&a.UserID, &a.Email, &a.IsSuperAdmin, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning admin: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *postgresRepository) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM admin_users WHERE user_id = $1)`, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking admin: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) CountSuperAdmins(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM admin_users WHERE is_super_admin`,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting super admins: %w", err)
	}
	return count, nil
}
