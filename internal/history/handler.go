package history

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/DreadX3/copy-snap-magic-words/internal/api"
	"github.com/DreadX3/copy-snap-magic-words/internal/auth"
	"github.com/DreadX3/copy-snap-magic-words/internal/users"
)

type Handler struct {
	svc      *Service
	users    *users.Service
	validate *validator.Validate
}

func NewHandler(svc *Service, userSvc *users.Service) *Handler {
	return &Handler{svc: svc, users: userSvc, validate: validator.New()}
}

type historyResponse struct {
	Items []Item `json:"items"`
}

// List returns the user's generation history, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, profile, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	items, err := h.svc.List(r.Context(), userID, profile.IsPro)
	if err != nil {
		slog.Error("listing history", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusOK, historyResponse{Items: items})
}

type favoritesResponse struct {
	Favorites []Favorite `json:"favorites"`
}

// Favorites returns the user's pinned copies.
func (h *Handler) Favorites(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	favs, err := h.svc.Favorites(r.Context(), userID)
	if err != nil {
		slog.Error("listing favorites", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}
	if favs == nil {
		favs = []Favorite{}
	}

	api.JSON(w, http.StatusOK, favoritesResponse{Favorites: favs})
}

type toggleRequest struct {
	CopyID string `json:"copy_id" validate:"required,uuid"`
	Text   string `json:"text" validate:"required,max=2000"`
}

type toggleResponse struct {
	CopyID    string `json:"copy_id"`
	Favorited bool   `json:"favorited"`
}

// ToggleFavorite pins or unpins a copy. Toggling twice restores the
// previous state.
func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	favorited, err := h.svc.ToggleFavorite(r.Context(), userID, req.CopyID, req.Text)
	if err != nil {
		slog.Error("toggling favorite", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusOK, toggleResponse{CopyID: req.CopyID, Favorited: favorited})
}

func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, *users.Profile, bool) {
	claims := auth.GetUserClaims(r.Context())
	if claims == nil {
		api.HandleError(w, api.ErrUnauthorized)
		return uuid.Nil, nil, false
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		api.HandleError(w, api.ErrUnauthorized)
		return uuid.Nil, nil, false
	}

	profile, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		slog.Error("fetching profile for history", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return uuid.Nil, nil, false
	}
	if profile == nil {
		api.HandleError(w, api.ErrNotFound)
		return uuid.Nil, nil, false
	}
	return userID, profile, true
}
