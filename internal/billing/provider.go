package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"

	"github.com/DreadX3/copy-snap-magic-words/internal/config"
)

// Customer is the provider-side billing identity for a user.
type Customer struct {
	ID    string
	Email string
}

// Subscription is an active recurring subscription on the provider.
type Subscription struct {
	ID        string
	Status    string
	PeriodEnd time.Time
}

// Provider abstracts the Stripe API surface the service needs, so tests
// can substitute a fake.
type Provider interface {
	FindCustomerByEmail(ctx context.Context, email string) (*Customer, error)
	CreateCustomer(ctx context.Context, email string, userID string) (*Customer, error)
	ActiveSubscription(ctx context.Context, customerID string) (*Subscription, error)
	NewCheckoutSession(ctx context.Context, customerID string) (string, error)
	NewPortalSession(ctx context.Context, customerID string) (string, error)
}

type stripeProvider struct {
	api *client.API
	cfg config.StripeConfig
}

// NewStripeProvider builds a Provider backed by the Stripe API.
func NewStripeProvider(cfg config.StripeConfig) Provider {
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)
	return &stripeProvider{api: api, cfg: cfg}
}

// FindCustomerByEmail returns the first customer matching the email, or
// nil when none exists.
func (p *stripeProvider) FindCustomerByEmail(ctx context.Context, email string) (*Customer, error) {
	params := &stripe.CustomerListParams{Email: stripe.String(email)}
	params.Context = ctx
	params.Limit = stripe.Int64(1)

	iter := p.api.Customers.List(params)
	for iter.Next() {
		c := iter.Customer()
		return &Customer{ID: c.ID, Email: c.Email}, nil
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	return nil, nil
}

func (p *stripeProvider) CreateCustomer(ctx context.Context, email string, userID string) (*Customer, error) {
	params := &stripe.CustomerParams{
		Email:    stripe.String(email),
		Metadata: map[string]string{"user_id": userID},
	}
	params.Context = ctx

	c, err := p.api.Customers.New(params)
	if err != nil {
		return nil, fmt.Errorf("creating customer: %w", err)
	}
	return &Customer{ID: c.ID, Email: c.Email}, nil
}

// ActiveSubscription returns the customer's active subscription, or nil
// when the customer has none.
func (p *stripeProvider) ActiveSubscription(ctx context.Context, customerID string) (*Subscription, error) {
	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String(string(stripe.SubscriptionStatusActive)),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(1)

	iter := p.api.Subscriptions.List(params)
	for iter.Next() {
		sub := iter.Subscription()
		return &Subscription{
			ID:        sub.ID,
			Status:    string(sub.Status),
			PeriodEnd: time.Unix(sub.CurrentPeriodEnd, 0).UTC(),
		}, nil
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("listing subscriptions: %w", err)
	}
	return nil, nil
}

func (p *stripeProvider) NewCheckoutSession(ctx context.Context, customerID string) (string, error) {
	frontendURL := strings.TrimRight(p.cfg.FrontendURL, "/")

	params := &stripe.CheckoutSessionParams{
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer: stripe.String(customerID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(p.cfg.PriceIDProMonthly),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(frontendURL + "/billing/success"),
		CancelURL:  stripe.String(frontendURL + "/billing/cancel"),
	}
	params.Context = ctx

	sess, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("creating checkout session: %w", err)
	}
	return sess.URL, nil
}

func (p *stripeProvider) NewPortalSession(ctx context.Context, customerID string) (string, error) {
	frontendURL := strings.TrimRight(p.cfg.FrontendURL, "/")

	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(frontendURL + "/settings/billing"),
	}
	params.Context = ctx

	sess, err := p.api.BillingPortalSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("creating portal session: %w", err)
	}
	return sess.URL, nil
}
