// Package authctx holds the request-context claims helpers shared by
// auth and the packages auth itself depends on (users), keeping it a
// leaf so no import cycle forms.
package authctx

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

// UserClaimsKey is the context key under which the auth middleware
// stashes the verified access claims.
const UserClaimsKey contextKey = "user_claims"

type AccessClaims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// GetUserClaims returns the authenticated claims, or nil outside the
// protected route group.
func GetUserClaims(ctx context.Context) *AccessClaims {
	claims, _ := ctx.Value(UserClaimsKey).(*AccessClaims)
	return claims
}
