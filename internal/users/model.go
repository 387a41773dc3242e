package users

import (
	"time"

	"github.com/google/uuid"
)

// Profile matches the profiles table schema. StripeCustomerID is set
// lazily the first time the user touches a billing endpoint.
type Profile struct {
	ID               uuid.UUID `json:"id"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"`
	IsPro            bool      `json:"is_pro"`
	ProfileCompleted bool      `json:"profile_completed"`
	StripeCustomerID *string   `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
