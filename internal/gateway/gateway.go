package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// PaymentGateway is the outbound payment collaborator. The engine hands a
// priced checkout to it and later receives the outcome through a webhook;
// the gateway never touches slot or pledge state itself.
type PaymentGateway interface {
	// CreateCheckout opens a hosted checkout session for the payment and
	// returns where to send the buyer.
	CreateCheckout(ctx context.Context, req *CheckoutRequest) (*CheckoutSession, error)
	// VerifySignature checks a webhook payload against the provider
	// signature before the outcome is trusted.
	VerifySignature(payload []byte, signature string) bool
	// Name returns the gateway name
	Name() string
}

// CheckoutRequest describes the payment to collect
type CheckoutRequest struct {
	PaymentID   string
	Amount      int64 // minor currency units (centavos)
	Currency    string
	Method      string // pix, card
	Description string
	BuyerName   string
	BuyerTaxID  string
	Metadata    map[string]string
}

// CheckoutSession is the provider's open session for a checkout
type CheckoutSession struct {
	ProviderRef string
	RedirectURL string
	// QRCode carries the copy-and-paste PIX payload when Method is pix
	QRCode string
}

// Config holds common gateway configuration
type Config struct {
	Provider      string
	APIKey        string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
}

// VerifyHMAC is the shared signature check: hex HMAC-SHA256 of the raw
// payload under the webhook secret, compared in constant time.
func VerifyHMAC(secret string, payload []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
