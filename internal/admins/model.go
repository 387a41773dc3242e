package admins

import (
	"time"

	"github.com/google/uuid"
)

// Admin is one admin record, joined with the profile email for display.
type Admin struct {
	UserID       uuid.UUID `json:"user_id"`
	Email        string    `json:"email"`
	IsSuperAdmin bool      `json:"is_super_admin"`
	CreatedAt    time.Time `json:"created_at"`
}
