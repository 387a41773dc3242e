package billing

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/DreadX3/copy-snap-magic-words/internal/api"
	"github.com/DreadX3/copy-snap-magic-words/internal/auth"
	"github.com/DreadX3/copy-snap-magic-words/internal/config"
	"github.com/DreadX3/copy-snap-magic-words/internal/users"
)

const maxWebhookBody = int64(64 << 10)

type Handler struct {
	svc    *Service
	users  *users.Service
	stripe config.StripeConfig
}

func NewHandler(svc *Service, userSvc *users.Service, stripeCfg config.StripeConfig) *Handler {
	return &Handler{svc: svc, users: userSvc, stripe: stripeCfg}
}

// CheckSubscription verifies the subscription with the provider and
// returns the reconciled tier snapshot.
func (h *Handler) CheckSubscription(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.currentProfile(w, r)
	if !ok {
		return
	}

	status, err := h.svc.CheckSubscription(r.Context(), profile)
	if err != nil {
		h.billingError(w, "subscription check", err)
		return
	}

	api.JSON(w, http.StatusOK, status)
}

type redirectResponse struct {
	URL string `json:"url"`
}

// Checkout returns a provider checkout URL for upgrading to PRO.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.currentProfile(w, r)
	if !ok {
		return
	}

	url, err := h.svc.Checkout(r.Context(), profile)
	if err != nil {
		h.billingError(w, "checkout", err)
		return
	}

	api.JSON(w, http.StatusOK, redirectResponse{URL: url})
}

// Portal returns a provider portal URL for managing the subscription.
func (h *Handler) Portal(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.currentProfile(w, r)
	if !ok {
		return
	}

	url, err := h.svc.Portal(r.Context(), profile)
	if err != nil {
		h.billingError(w, "portal", err)
		return
	}

	api.JSON(w, http.StatusOK, redirectResponse{URL: url})
}

// Webhook receives signed provider events. Signature verification
// happens before anything else touches the payload.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		body,
		r.Header.Get("Stripe-Signature"),
		h.stripe.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		slog.Warn("stripe webhook signature verification failed", "error", err)
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	customerID, err := webhookCustomerID(event)
	if err != nil {
		slog.Warn("stripe webhook payload rejected", "error", err, "event_type", event.Type)
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if customerID == "" {
		// Event type we don't act on
		api.JSONMessage(w, http.StatusOK, "ignored")
		return
	}

	if err := h.svc.ApplyWebhookEvent(r.Context(), string(event.Type), customerID); err != nil {
		slog.Error("applying stripe webhook", "error", err, "event_type", event.Type)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSONMessage(w, http.StatusOK, "ok")
}

// webhookCustomerID extracts the customer id from the events we handle.
// Returns "" for event types we ignore.
func webhookCustomerID(event stripe.Event) (string, error) {
	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return "", err
		}
		if sess.Customer == nil || sess.Customer.ID == "" {
			return "", errors.New("checkout session missing customer")
		}
		return sess.Customer.ID, nil
	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return "", err
		}
		if sub.Customer == nil || sub.Customer.ID == "" {
			return "", errors.New("subscription missing customer")
		}
		return sub.Customer.ID, nil
	default:
		return "", nil
	}
}

func (h *Handler) currentProfile(w http.ResponseWriter, r *http.Request) (*users.Profile, bool) {
	claims := auth.GetUserClaims(r.Context())
	if claims == nil {
		api.HandleError(w, api.ErrUnauthorized)
		return nil, false
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		api.HandleError(w, api.ErrUnauthorized)
		return nil, false
	}

	profile, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		slog.Error("fetching profile for billing", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return nil, false
	}
	if profile == nil {
		api.HandleError(w, api.ErrNotFound)
		return nil, false
	}
	return profile, true
}

func (h *Handler) billingError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, ErrNotConfigured) {
		api.HandleError(w, api.ErrBillingUnavailable)
		return
	}
	slog.Error("billing "+op+" failed", "error", err)
	api.HandleError(w, api.ErrBillingUnavailable)
}
