package usage

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/DreadX3/copy-snap-magic-words/internal/api"
	"github.com/DreadX3/copy-snap-magic-words/internal/auth"
	"github.com/DreadX3/copy-snap-magic-words/internal/config"
	"github.com/DreadX3/copy-snap-magic-words/internal/users"
)

type Handler struct {
	svc   *Service
	users *users.Service
	quota config.QuotaConfig
}

func NewHandler(svc *Service, userSvc *users.Service, quota config.QuotaConfig) *Handler {
	return &Handler{svc: svc, users: userSvc, quota: quota}
}

// Status returns the user's current counters against their tier's
// ceilings.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
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

	profile, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		slog.Error("fetching profile for usage", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}
	if profile == nil {
		api.HandleError(w, api.ErrNotFound)
		return
	}

	status, err := h.svc.Status(r.Context(), userID, LimitsForTier(h.quota, profile.IsPro))
	if err != nil {
		slog.Error("reading usage status", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusOK, status)
}
