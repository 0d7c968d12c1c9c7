package gateway

import (
	"context"
	"fmt"
)

// MockGateway is an in-process gateway for development and tests. It
// fabricates provider references and accepts any correctly signed webhook.
type MockGateway struct {
	cfg Config
}

// NewMockGateway creates a new MockGateway
func NewMockGateway(cfg Config) *MockGateway {
	return &MockGateway{cfg: cfg}
}

func (g *MockGateway) CreateCheckout(ctx context.Context, req *CheckoutRequest) (*CheckoutSession, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("invalid checkout amount %d", req.Amount)
	}
	session := &CheckoutSession{
		ProviderRef: "mock_" + req.PaymentID,
		RedirectURL: fmt.Sprintf("%s?payment_id=%s", g.cfg.SuccessURL, req.PaymentID),
	}
	if req.Method == "pix" {
		session.QRCode = fmt.Sprintf("00020126mock%s5204000053039865802BR", req.PaymentID)
	}
	return session, nil
}

func (g *MockGateway) VerifySignature(payload []byte, signature string) bool {
	return VerifyHMAC(g.cfg.WebhookSecret, payload, signature)
}

func (g *MockGateway) Name() string {
	return "mock"
}
