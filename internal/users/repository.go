package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, profile *Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	GetByEmail(ctx context.Context, email string) (*Profile, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	SetPro(ctx context.Context, id uuid.UUID, isPro bool) error
	SetProfileCompleted(ctx context.Context, id uuid.UUID) error
	SetStripeCustomerID(ctx context.Context, id uuid.UUID, customerID string) error
	SetProByStripeCustomerID(ctx context.Context, customerID string, isPro bool) (bool, error)
	DeleteAll(ctx context.Context) error
}

const profileColumns = `id, email, password_hash, is_pro, profile_completed, stripe_customer_id, created_at, updated_at`

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Create(ctx context.Context, profile *Profile) error {
	query := `
		INSERT INTO profiles (id, email, password_hash, is_pro, profile_completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		profile.ID, profile.Email, profile.PasswordHash,
		profile.IsPro, profile.ProfileCompleted,
		profile.CreatedAt, profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting profile: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id), "querying profile by id")
}

func (r *postgresRepository) GetByEmail(ctx context.Context, email string) (*Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE email = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, email), "querying profile by email")
}

func (r *postgresRepository) scanOne(row pgx.Row, op string) (*Profile, error) {
	p := &Profile{}
	err := row.Scan(&p.ID, &p.Email, &p.PasswordHash, &p.IsPro, &p.ProfileCompleted,
		&p.StripeCustomerID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func (r *postgresRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM profiles WHERE email = $1)`

	var exists bool
	err := r.pool.QueryRow(ctx, query, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking email existence: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) SetPro(ctx context.Context, id uuid.UUID, isPro bool) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE profiles SET is_pro = $2, updated_at = NOW() WHERE id = $1`, id, isPro)
	if err != nil {
		return fmt.Errorf("updating pro status: %w", err)
	}
	return nil
}

func (r *postgresRepository) SetProfileCompleted(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE profiles SET profile_completed = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("marking profile completed: %w", err)
	}
	return nil
}

func (r *postgresRepository) SetStripeCustomerID(ctx context.Context, id uuid.UUID, customerID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE profiles SET stripe_customer_id = $2, updated_at = NOW() WHERE id = $1`, id, customerID)
	if err != nil {
		return fmt.Errorf("storing stripe customer id: %w", err)
	}
	return nil
}

// SetProByStripeCustomerID flips the tier of the profile linked to the
// given Stripe customer. Returns false when no profile carries that id.
func (r *postgresRepository) SetProByStripeCustomerID(ctx context.Context, customerID string, isPro bool) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE profiles SET is_pro = $2, updated_at = NOW() WHERE stripe_customer_id = $1`,
		customerID, isPro)
	if err != nil {
		return false, fmt.Errorf("updating pro status by stripe customer: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteAll removes every profile. Usage rows, history, favorites and
// admin records are removed via ON DELETE CASCADE. Only the admin reset
// operation calls this.
func (r *postgresRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM profiles`)
	if err != nil {
		return fmt.Errorf("deleting all profiles: %w", err)
	}
	return nil
}
