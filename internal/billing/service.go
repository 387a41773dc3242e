package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/DreadX3/copy-snap-magic-words/internal/config"
	"github.com/DreadX3/copy-snap-magic-words/internal/events"
	"github.com/DreadX3/copy-snap-magic-words/internal/metrics"
	"github.com/DreadX3/copy-snap-magic-words/internal/usage"
	"github.com/DreadX3/copy-snap-magic-words/internal/users"
)

// ErrNotConfigured means no billing provider is wired (missing API key).
var ErrNotConfigured = errors.New("billing provider not configured")

// Status is the API response for a subscription check.
type Status struct {
	Subscribed      bool       `json:"subscribed"`
	SubscriptionEnd *time.Time `json:"subscription_end,omitempty"`
	DailyQuota      int        `json:"daily_quota"`
	MonthlyQuota    int        `json:"monthly_quota"`
}

// Service reconciles the local is_pro flag against the billing provider.
// The local database stays the system of record for request-time checks;
// the provider is only consulted on explicit verification and webhooks.
type Service struct {
	provider  Provider
	users     *users.Service
	usageRepo usage.Repository
	publisher *events.Publisher
	quota     config.QuotaConfig
}

func NewService(provider Provider, userSvc *users.Service, usageRepo usage.Repository, publisher *events.Publisher, quota config.QuotaConfig) *Service {
	return &Service{
		provider:  provider,
		users:     userSvc,
		usageRepo: usageRepo,
		publisher: publisher,
		quota:     quota,
	}
}

// CheckSubscription queries the provider for an active subscription and
// mirrors the result onto the profile. A user with no provider customer
// gets a free-tier snapshot and a usage row so later quota checks have
// something to increment.
func (s *Service) CheckSubscription(ctx context.Context, profile *users.Profile) (*Status, error) {
	if s.provider == nil {
		return nil, ErrNotConfigured
	}

	cust, err := s.findCustomer(ctx, profile)
	if err != nil {
		metrics.SubscriptionChecksTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	if cust == nil {
		metrics.SubscriptionChecksTotal.WithLabelValues("free").Inc()
		if err := s.mirrorTier(ctx, profile, false); err != nil {
			return nil, err
		}
		if _, err := s.usageRepo.GetOrCreate(ctx, profile.ID); err != nil {
			slog.Warn("billing: failed to ensure usage row", "error", err, "user_id", profile.ID)
		}
		return s.freeStatus(), nil
	}

	if profile.StripeCustomerID == nil || *profile.StripeCustomerID != cust.ID {
		if err := s.users.SetStripeCustomerID(ctx, profile.ID, cust.ID); err != nil {
			return nil, fmt.Errorf("linking stripe customer: %w", err)
		}
	}

	sub, err := s.provider.ActiveSubscription(ctx, cust.ID)
	if err != nil {
		metrics.SubscriptionChecksTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	if sub == nil {
		metrics.SubscriptionChecksTotal.WithLabelValues("free").Inc()
		if err := s.mirrorTier(ctx, profile, false); err != nil {
			return nil, err
		}
		return s.freeStatus(), nil
	}

	metrics.SubscriptionChecksTotal.WithLabelValues("pro").Inc()
	if err := s.mirrorTier(ctx, profile, true); err != nil {
		return nil, err
	}

	end := sub.PeriodEnd
	return &Status{
		Subscribed:      true,
		SubscriptionEnd: &end,
		DailyQuota:      s.quota.ProDaily,
		MonthlyQuota:    s.quota.ProMonthly,
	}, nil
}

// Checkout starts a subscription checkout and returns the redirect URL.
func (s *Service) Checkout(ctx context.Context, profile *users.Profile) (string, error) {
	if s.provider == nil {
		return "", ErrNotConfigured
	}

	cust, err := s.ensureCustomer(ctx, profile)
	if err != nil {
		return "", err
	}
	return s.provider.NewCheckoutSession(ctx, cust.ID)
}

// Portal returns a billing portal URL where the user manages their
// subscription.
func (s *Service) Portal(ctx context.Context, profile *users.Profile) (string, error) {
	if s.provider == nil {
		return "", ErrNotConfigured
	}

	cust, err := s.ensureCustomer(ctx, profile)
	if err != nil {
		return "", err
	}
	return s.provider.NewPortalSession(ctx, cust.ID)
}

// ApplyWebhookEvent maps a verified provider event onto the local tier.
// Unrecognized event types are ignored.
func (s *Service) ApplyWebhookEvent(ctx context.Context, eventType, customerID string) error {
	var isPro bool
	switch eventType {
	case "checkout.session.completed":
		isPro = true
	case "customer.subscription.deleted":
		isPro = false
	default:
		return nil
	}

	if customerID == "" {
		return errors.New("webhook event missing customer id")
	}

	updated, err := s.users.SetProByStripeCustomerID(ctx, customerID, isPro)
	if err != nil {
		return err
	}
	if !updated {
		slog.Warn("billing: webhook for unknown customer", "customer_id", customerID, "event_type", eventType)
		return nil
	}

	slog.Info("billing: tier updated from webhook", "customer_id", customerID, "is_pro", isPro)
	return nil
}

// findCustomer prefers the stored customer link and falls back to an
// email lookup on the provider.
func (s *Service) findCustomer(ctx context.Context, profile *users.Profile) (*Customer, error) {
	if profile.StripeCustomerID != nil && *profile.StripeCustomerID != "" {
		return &Customer{ID: *profile.StripeCustomerID, Email: profile.Email}, nil
	}
	return s.provider.FindCustomerByEmail(ctx, profile.Email)
}

// ensureCustomer resolves or creates the provider customer and persists
// the link on the profile.
func (s *Service) ensureCustomer(ctx context.Context, profile *users.Profile) (*Customer, error) {
	cust, err := s.findCustomer(ctx, profile)
	if err != nil {
		return nil, err
	}
	if cust == nil {
		cust, err = s.provider.CreateCustomer(ctx, profile.Email, profile.ID.String())
		if err != nil {
			return nil, err
		}
	}

	if profile.StripeCustomerID == nil || *profile.StripeCustomerID != cust.ID {
		if err := s.users.SetStripeCustomerID(ctx, profile.ID, cust.ID); err != nil {
			return nil, fmt.Errorf("linking stripe customer: %w", err)
		}
	}
	return cust, nil
}

// mirrorTier writes the verified tier onto the profile when it changed
// and records the flip in the audit trail.
func (s *Service) mirrorTier(ctx context.Context, profile *users.Profile, isPro bool) error {
	if profile.IsPro == isPro {
		return nil
	}
	if err := s.users.SetPro(ctx, profile.ID, isPro); err != nil {
		return fmt.Errorf("mirroring tier: %w", err)
	}
	profile.IsPro = isPro

	severity := "info"
	details := fmt.Sprintf(`{"is_pro":%t,"source":"subscription_check"}`, isPro)
	s.publisher.Audit(ctx, profile.ID, events.EventSubscriptionFlip, severity, details)
	return nil
}

func (s *Service) freeStatus() *Status {
	return &Status{
		Subscribed:   false,
		DailyQuota:   s.quota.FreeDaily,
		MonthlyQuota: s.quota.FreeMonthly,
	}
}
