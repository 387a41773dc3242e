package admins

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/DreadX3/copy-snap-magic-words/internal/api"
	"github.com/DreadX3/copy-snap-magic-words/internal/auth"
)

// RequireAdmin rejects requests whose user holds no admin record. Any
// lookup failure reads as "not admin".
func (s *Service) RequireAdmin(next http.Handler) http.Handler {
	return s.require(next, false)
}

// RequireSuperAdmin additionally demands the super admin flag.
func (s *Service) RequireSuperAdmin(next http.Handler) http.Handler {
	return s.require(next, true)
}

func (s *Service) require(next http.Handler, super bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := auth.GetUserClaims(r.Context())
		if claims == nil {
			api.HandleError(w, api.ErrUnauthorized)
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			api.HandleError(w, api.ErrUnauthorized)
			return
		}

		admin, err := s.repo.Get(r.Context(), userID)
		if err != nil {
			slog.Warn("admin lookup failed, denying access", "error", err, "user_id", userID)
			api.HandleError(w, api.ErrForbidden)
			return
		}
		if admin == nil || (super && !admin.IsSuperAdmin) {
			api.HandleError(w, api.ErrForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}
