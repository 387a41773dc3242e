package admins

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/DreadX3/copy-snap-magic-words/internal/api"
	"github.com/DreadX3/copy-snap-magic-words/internal/audit"
	"github.com/DreadX3/copy-snap-magic-words/internal/auth"
)

// AuditLister queries the persisted audit trail.
type AuditLister interface {
	List(ctx context.Context, params audit.ListParams) ([]audit.Log, int64, error)
}

type Handler struct {
	svc      *Service
	auditLog AuditLister
	validate *validator.Validate
}

func NewHandler(svc *Service, auditLog AuditLister) *Handler {
	return &Handler{svc: svc, auditLog: auditLog, validate: validator.New()}
}

type adminsResponse struct {
	Admins []Admin `json:"admins"`
}

// List returns all admins with their profile emails.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	admins, err := h.svc.List(r.Context())
	if err != nil {
		slog.Error("listing admins", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}
	if admins == nil {
		admins = []Admin{}
	}
	api.JSON(w, http.StatusOK, adminsResponse{Admins: admins})
}

type addAdminRequest struct {
	Email        string `json:"email" validate:"required,email"`
	IsSuperAdmin bool   `json:"is_super_admin"`
}

// Add grants admin rights to an existing user, looked up by email.
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req addAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	admin, err := h.svc.AddByEmail(r.Context(), actorID, req.Email, req.IsSuperAdmin)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			api.HandleError(w, api.NewNotFoundError("no user with that email"))
			return
		}
		slog.Error("adding admin", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusCreated, admin)
}

// Remove revokes admin rights from a user.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.actor(w, r)
	if !ok {
		return
	}

	targetID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		api.HandleError(w, api.NewBadRequestError("invalid user id"))
		return
	}

	if err := h.svc.Remove(r.Context(), actorID, targetID); err != nil {
		switch {
		case errors.Is(err, ErrLastSuperAdmin):
			api.HandleError(w, api.ErrLastSuperAdmin)
		case errors.Is(err, ErrNotAdmin):
			api.HandleError(w, api.NewNotFoundError("user is not an admin"))
		default:
			slog.Error("removing admin", "error", err)
			api.HandleError(w, api.ErrInternalServer)
		}
		return
	}

	api.JSONMessage(w, http.StatusOK, "admin removed")
}

// Audit returns a page of the persisted audit trail.
func (h *Handler) Audit(w http.ResponseWriter, r *http.Request) {
	params := audit.DefaultListParams()
	params.EventType = r.URL.Query().Get("event_type")
	params.Severity = r.URL.Query().Get("severity")
	if page, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && page > 0 {
		params.Page = page
	}
	if size, err := strconv.Atoi(r.URL.Query().Get("page_size")); err == nil && size > 0 && size <= 100 {
		params.PageSize = size
	}

	logs, total, err := h.auditLog.List(r.Context(), params)
	if err != nil {
		slog.Error("listing audit logs", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSONPaginated(w, http.StatusOK, logs, total, params.Page, params.PageSize)
}

// Reset wipes all user data and recreates the bootstrap super admin.
// Super-admin only, enforced by the route middleware.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.actor(w, r)
	if !ok {
		return
	}

	if err := h.svc.Reset(r.Context(), actorID); err != nil {
		slog.Error("resetting users", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSONMessage(w, http.StatusOK, "all user data reset")
}

func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	claims := auth.GetUserClaims(r.Context())
	if claims == nil {
		api.HandleError(w, api.ErrUnauthorized)
		return uuid.Nil, false
	}
	actorID, err := uuid.Parse(claims.UserID)
	if err != nil {
		api.HandleError(w, api.ErrUnauthorized)
		return uuid.Nil, false
	}
	return actorID, true
}
