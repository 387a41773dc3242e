package users

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/DreadX3/copy-snap-magic-words/internal/api"
	"github.com/DreadX3/copy-snap-magic-words/internal/authctx"
)

// AdminChecker reports whether a user holds an admin record.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
}

type Handler struct {
	svc    *Service
	admins AdminChecker
}

func NewHandler(svc *Service, admins AdminChecker) *Handler {
	return &Handler{svc: svc, admins: admins}
}

type meResponse struct {
	*Profile
	IsAdmin bool `json:"is_admin"`
}

// Me returns the authenticated user's profile and admin flag. The admin
// lookup fails closed: any error reads as "not admin".
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims := authctx.GetUserClaims(r.Context())
	if claims == nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	profile, err := h.svc.GetByID(r.Context(), userID)
	if err != nil {
		slog.Error("fetching profile", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}
	if profile == nil {
		api.HandleError(w, api.ErrNotFound)
		return
	}

	isAdmin, err := h.admins.IsAdmin(r.Context(), userID)
	if err != nil {
		slog.Warn("admin check failed, treating as non-admin", "error", err, "user_id", userID)
		isAdmin = false
	}

	api.JSON(w, http.StatusOK, meResponse{Profile: profile, IsAdmin: isAdmin})
}

// CompleteProfile marks the profile as completed.
func (h *Handler) CompleteProfile(w http.ResponseWriter, r *http.Request) {
	claims := authctx.GetUserClaims(r.Context())
	if claims == nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	if err := h.svc.CompleteProfile(r.Context(), userID); err != nil {
		slog.Error("completing profile", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSONMessage(w, http.StatusOK, "profile completed")
}
