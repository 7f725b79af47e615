// Package payments wraps the Stripe hosted-checkout API: creating
// checkout sessions for pending orders and verifying webhook events.
package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/rahim-jr/stripe-payment-tester-repo/internal/models"
)

const eventCheckoutCompleted = "checkout.session.completed"

// CheckoutSession is the redirect handle returned to the frontend.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Event is a verified webhook event reduced to what the receiver needs.
type Event struct {
	ID string
	// Type is the raw Stripe event type string.
	Type string
	// Completed is true for checkout.session.completed events.
	Completed bool
	// OrderID is the order correlation carried in session metadata,
	// empty for event types this service does not act on.
	OrderID string
}

// Stripe talks to the hosted Stripe API.
type Stripe struct {
	api           *client.API
	webhookSecret string
	successURL    string
	cancelURL     string
}

// NewStripe builds the adapter. Redirect targets are derived from the
// frontend base URL.
func NewStripe(secretKey, webhookSecret, frontendURL string) *Stripe {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Stripe{
		api:           api,
		webhookSecret: webhookSecret,
		successURL:    frontendURL + "/checkout/success",
		cancelURL:     frontendURL + "/checkout/cancel",
	}
}

// MinorUnits converts a decimal amount into integer minor units the way
// Stripe expects (9.99 -> 999).
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// CreateCheckoutSession creates a single-line-item checkout session for
// the order. The order id travels in session metadata so the webhook
// can correlate the payment back.
func (s *Stripe) CreateCheckoutSession(ctx context.Context, order models.Order, product models.Product) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyUSD)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(product.Name),
					},
					UnitAmount: stripe.Int64(MinorUnits(order.Amount)),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.successURL),
		CancelURL:  stripe.String(s.cancelURL),
	}
	params.Context = ctx
	params.AddMetadata("order_id", order.ID)

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// VerifyEvent checks the webhook signature against the shared secret
// and decodes the event. The raw body must be passed unmodified or the
// signature check fails.
func (s *Stripe) VerifyEvent(payload []byte, sigHeader string) (*Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("failed to verify webhook event: %w", err)
	}

	out := &Event{ID: event.ID, Type: string(event.Type)}
	if string(event.Type) != eventCheckoutCompleted {
		return out, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode checkout session: %w", err)
	}
	out.Completed = true
	out.OrderID = sess.Metadata["order_id"]
	return out, nil
}
