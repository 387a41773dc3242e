package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/DreadX3/copy-snap-magic-words/internal/api"
	"github.com/DreadX3/copy-snap-magic-words/internal/authctx"
)

const UserClaimsKey = authctx.UserClaimsKey

// Middleware rejects requests without a valid bearer access token and
// stashes the verified claims in the request context.
func Middleware(svc *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				api.HandleError(w, api.ErrUnauthorized)
				return
			}

			claims, err := svc.jwt.ValidateAccessToken(token)
			if err != nil {
				api.HandleError(w, api.ErrInvalidToken)
				return
			}

			ctx := context.WithValue(r.Context(), UserClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", false
	}
	return token, true
}

// GetUserClaims returns the authenticated claims, or nil outside the
// protected route group.
func GetUserClaims(ctx context.Context) *AccessClaims {
	return authctx.GetUserClaims(ctx)
}
