package copygen

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/DreadX3/copy-snap-magic-words/internal/api"
	"github.com/DreadX3/copy-snap-magic-words/internal/auth"
	"github.com/DreadX3/copy-snap-magic-words/internal/usage"
)

type Handler struct {
	svc      *Service
	validate *validator.Validate
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, validate: validator.New()}
}

type GenerateRequest struct {
	ImageURL         string `json:"image_url" validate:"required,url"`
	ImageDescription string `json:"image_description" validate:"max=500"`
	Theme            string `json:"theme" validate:"max=100"`
	TargetAudience   string `json:"target_audience" validate:"max=100"`
	IncludeEmojis    bool   `json:"include_emojis"`
	CustomHashtags   string `json:"custom_hashtags" validate:"max=200"`
	TextLength       string `json:"text_length" validate:"omitempty,oneof=short long"`
}

type generateResponse struct {
	Copies []string `json:"copies"`
}

// Generate runs the copy generation pipeline for the authenticated user.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
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

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	copies, err := h.svc.Generate(r.Context(), userID, req.ImageURL, Options{
		ImageDescription: req.ImageDescription,
		Theme:            req.Theme,
		TargetAudience:   req.TargetAudience,
		IncludeEmojis:    req.IncludeEmojis,
		CustomHashtags:   req.CustomHashtags,
		TextLength:       req.TextLength,
	})
	if err != nil {
		h.generationError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, generateResponse{Copies: copies})
}

func (h *Handler) generationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usage.ErrDailyLimit):
		api.HandleError(w, api.ErrDailyLimitReached)
	case errors.Is(err, usage.ErrMonthlyLimit):
		api.HandleError(w, api.ErrMonthlyLimitReached)
	case errors.Is(err, usage.ErrRateLimited):
		api.HandleError(w, api.ErrTooManyRequests)
	case errors.Is(err, ErrProviderFailed):
		slog.Error("copy generation failed", "error", err)
		api.HandleError(w, api.ErrGenerationFailed)
	default:
		slog.Error("copy generation failed", "error", err)
		api.HandleError(w, api.ErrInternalServer)
	}
}
