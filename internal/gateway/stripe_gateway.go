package gateway

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
)

// StripeGateway collects payments through Stripe Checkout. PIX and card
// both ride the hosted checkout page; the outcome arrives on the webhook.
type StripeGateway struct {
	cfg Config
}

// NewStripeGateway creates a new StripeGateway and sets the API key
func NewStripeGateway(cfg Config) *StripeGateway {
	stripe.Key = cfg.APIKey
	return &StripeGateway{cfg: cfg}
}

func (g *StripeGateway) CreateCheckout(ctx context.Context, req *CheckoutRequest) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(g.cfg.SuccessURL),
		CancelURL:  stripe.String(g.cfg.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(req.Currency),
					UnitAmount: stripe.Int64(req.Amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	switch req.Method {
	case "pix":
		params.PaymentMethodTypes = stripe.StringSlice([]string{"pix"})
	case "card":
		params.PaymentMethodTypes = stripe.StringSlice([]string{"card"})
	}
	params.AddMetadata("payment_id", req.PaymentID)
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("create stripe checkout session: %w", err)
	}
	return &CheckoutSession{
		ProviderRef: sess.ID,
		RedirectURL: sess.URL,
	}, nil
}

func (g *StripeGateway) VerifySignature(payload []byte, signature string) bool {
	_, err := webhook.ConstructEvent(payload, signature, g.cfg.WebhookSecret)
	return err == nil
}

func (g *StripeGateway) Name() string {
	return "stripe"
}

// New selects the gateway implementation from configuration
func New(cfg Config) (PaymentGateway, error) {
	switch cfg.Provider {
	case "stripe":
		return NewStripeGateway(cfg), nil
	case "mock", "":
		return NewMockGateway(cfg), nil
	default:
		return nil, fmt.Errorf("unknown payment provider %q", cfg.Provider)
	}
}
