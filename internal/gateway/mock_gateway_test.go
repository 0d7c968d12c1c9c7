package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestMockGateway_CreateCheckout(t *testing.T) {
	g := NewMockGateway(Config{SuccessURL: "http://localhost/ok", WebhookSecret: "s3cret"})

	session, err := g.CreateCheckout(context.Background(), &CheckoutRequest{
		PaymentID: "pay-1",
		Amount:    1500,
		Currency:  "brl",
		Method:    "pix",
	})
	require.NoError(t, err)
	assert.Equal(t, "mock_pay-1", session.ProviderRef)
	assert.Contains(t, session.RedirectURL, "pay-1")
	assert.NotEmpty(t, session.QRCode, "pix checkouts carry a copy-paste code")
}

func TestMockGateway_CardHasNoQRCode(t *testing.T) {
	g := NewMockGateway(Config{SuccessURL: "http://localhost/ok"})

	session, err := g.CreateCheckout(context.Background(), &CheckoutRequest{
		PaymentID: "pay-2",
		Amount:    1500,
		Method:    "card",
	})
	require.NoError(t, err)
	assert.Empty(t, session.QRCode)
}

func TestMockGateway_RejectsNonPositiveAmount(t *testing.T) {
	g := NewMockGateway(Config{})

	_, err := g.CreateCheckout(context.Background(), &CheckoutRequest{PaymentID: "pay-3", Amount: 0})
	assert.Error(t, err)
}

func TestMockGateway_VerifySignature(t *testing.T) {
	g := NewMockGateway(Config{WebhookSecret: "s3cret"})
	payload := []byte(`{"event_id":"evt-1"}`)

	assert.True(t, g.VerifySignature(payload, sign("s3cret", payload)))
	assert.False(t, g.VerifySignature(payload, sign("wrong", payload)))
	assert.False(t, g.VerifySignature(payload, "not-hex"))
}

func TestNew_SelectsProvider(t *testing.T) {
	g, err := New(Config{Provider: "mock"})
	require.NoError(t, err)
	assert.Equal(t, "mock", g.Name())

	g, err = New(Config{Provider: "stripe"})
	require.NoError(t, err)
	assert.Equal(t, "stripe", g.Name())

	g, err = New(Config{})
	require.NoError(t, err)
	assert.Equal(t, "mock", g.Name(), "empty provider defaults to mock")

	_, err = New(Config{Provider: "bogus"})
	assert.Error(t, err)
}
