package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rifahub/backend/internal/domain"
	"github.com/rifahub/backend/internal/dto"
	"github.com/rifahub/backend/internal/service"
	"github.com/rifahub/backend/pkg/middleware"
	"github.com/rifahub/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubRaffleService returns canned values for handler tests
type stubRaffleService struct {
	raffle *domain.Raffle
	slots  []*domain.Slot
	err    error
}

func (s *stubRaffleService) CreateRaffle(ctx context.Context, organizerID string, req *dto.CreateRaffleRequest) (*domain.Raffle, error) {
	return s.raffle, s.err
}

func (s *stubRaffleService) GetRaffle(ctx context.Context, id string) (*domain.Raffle, error) {
	return s.raffle, s.err
}

func (s *stubRaffleService) GetRaffleSlots(ctx context.Context, id string) ([]*domain.Slot, error) {
	return s.slots, s.err
}

func (s *stubRaffleService) ListByOrganizer(ctx context.Context, organizerID string) ([]*domain.Raffle, error) {
	if s.raffle == nil {
		return nil, s.err
	}
	return []*domain.Raffle{s.raffle}, s.err
}

func (s *stubRaffleService) ListActive(ctx context.Context, limit, offset int) ([]*domain.Raffle, int, error) {
	if s.raffle == nil {
		return nil, 0, s.err
	}
	return []*domain.Raffle{s.raffle}, 1, s.err
}

func (s *stubRaffleService) CloseRaffle(ctx context.Context, organizerID, raffleID string, method service.WinnerMethod) (*domain.Raffle, error) {
	return s.raffle, s.err
}

func (s *stubRaffleService) DeleteRaffle(ctx context.Context, organizerID, raffleID string) error {
	return s.err
}

// stubCheckoutService returns a canned checkout result or error
type stubCheckoutService struct {
	result  *dto.CheckoutResponse
	pending []*domain.Payment
	err     error
}

func (s *stubCheckoutService) StartRaffleCheckout(ctx context.Context, req *dto.RaffleCheckoutRequest) (*dto.CheckoutResponse, error) {
	return s.result, s.err
}

func (s *stubCheckoutService) StartCampaignCheckout(ctx context.Context, req *dto.CampaignCheckoutRequest) (*dto.CheckoutResponse, error) {
	return s.result, s.err
}

func (s *stubCheckoutService) ApplyPaymentOutcome(ctx context.Context, paymentID string, approved bool) error {
	return s.err
}

func (s *stubCheckoutService) ListPendingPayments(ctx context.Context, organizerID string) ([]*domain.Payment, error) {
	return s.pending, s.err
}

func (s *stubCheckoutService) SettlePayment(ctx context.Context, organizerID, paymentID string, approved bool) error {
	return s.err
}

func perform(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) *response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return &resp
}

func TestRaffleHandler_Get(t *testing.T) {
	h := NewRaffleHandler(&stubRaffleService{raffle: &domain.Raffle{
		ID:          "r1",
		OrganizerID: "org-1",
		Title:       "Rifa",
		TicketPrice: 500,
		TotalSlots:  10,
		Status:      domain.RaffleStatusActive,
	}}, nil)

	router := gin.New()
	router.GET("/raffles/:id", h.Get)

	w := perform(router, http.MethodGet, "/raffles/r1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
}

func TestRaffleHandler_GetNotFound(t *testing.T) {
	h := NewRaffleHandler(&stubRaffleService{err: domain.ErrRaffleNotFound}, nil)

	router := gin.New()
	router.GET("/raffles/:id", h.Get)

	w := perform(router, http.MethodGet, "/raffles/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, response.ErrCodeNotFound, resp.Error.Code)
}

func TestRaffleHandler_CreateWithoutAuth(t *testing.T) {
	h := NewRaffleHandler(&stubRaffleService{}, nil)

	router := gin.New()
	router.POST("/raffles", h.Create)

	w := perform(router, http.MethodPost, "/raffles",
		`{"title":"Rifa","ticket_price":500,"total_slots":10}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRaffleHandler_CloseRequiresMethod(t *testing.T) {
	h := NewRaffleHandler(&stubRaffleService{}, nil)

	router := gin.New()
	router.POST("/raffles/:id/close", h.Close)

	w := perform(router, http.MethodPost, "/raffles/r1/close", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutHandler_SlotsUnavailable(t *testing.T) {
	h := NewCheckoutHandler(&stubCheckoutService{
		err: &domain.SlotsUnavailableError{Numbers: []int{2, 7}},
	})

	router := gin.New()
	router.POST("/checkout/raffle", h.StartRaffle)

	body := `{
		"raffle_id": "6f1f43f0-8a5c-4f3e-9b43-0d0c4a6f1111",
		"numbers": [2, 7],
		"method": "pix",
		"buyer": {"name": "Ana", "tax_id": "11111111111", "phone": "11999990001"}
	}`
	w := perform(router, http.MethodPost, "/checkout/raffle", body)
	assert.Equal(t, http.StatusConflict, w.Code)

	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, response.ErrCodeSlotsUnavailable, resp.Error.Code)
	assert.Equal(t, "2,7", resp.Error.Details["numbers"])
}

func TestCheckoutHandler_RequiresNumbersOrQuantity(t *testing.T) {
	h := NewCheckoutHandler(&stubCheckoutService{})

	router := gin.New()
	router.POST("/checkout/raffle", h.StartRaffle)

	body := `{
		"raffle_id": "6f1f43f0-8a5c-4f3e-9b43-0d0c4a6f1111",
		"method": "pix",
		"buyer": {"name": "Ana", "tax_id": "11111111111", "phone": "11999990001"}
	}`
	w := perform(router, http.MethodPost, "/checkout/raffle", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutHandler_Success(t *testing.T) {
	h := NewCheckoutHandler(&stubCheckoutService{
		result: &dto.CheckoutResponse{
			PaymentID:   "pay-1",
			Numbers:     []int{2, 7},
			Amount:      1000,
			RedirectURL: "http://pay.example/session",
		},
	})

	router := gin.New()
	router.POST("/checkout/raffle", h.StartRaffle)

	body := `{
		"raffle_id": "6f1f43f0-8a5c-4f3e-9b43-0d0c4a6f1111",
		"numbers": [2, 7],
		"method": "pix",
		"buyer": {"name": "Ana", "tax_id": "11111111111", "phone": "11999990001"}
	}`
	w := perform(router, http.MethodPost, "/checkout/raffle", body)
	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
}

func authedAs(organizerID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextKeyOrganizerID, organizerID)
		c.Next()
	}
}

func TestCheckoutHandler_ListPendingPayments(t *testing.T) {
	h := NewCheckoutHandler(&stubCheckoutService{
		pending: []*domain.Payment{{
			ID:          "pay-1",
			Kind:        domain.PaymentKindRaffle,
			ReferenceID: "r1",
			Numbers:     []int{4},
			Amount:      500,
			Status:      domain.PaymentStatusPending,
		}},
	})

	router := gin.New()
	router.GET("/organizer/payments/pending", authedAs("org-1"), h.ListPendingPayments)

	w := perform(router, http.MethodGet, "/organizer/payments/pending", "")
	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	assert.Contains(t, w.Body.String(), "pay-1")
}

func TestCheckoutHandler_SettleWithoutAuth(t *testing.T) {
	h := NewCheckoutHandler(&stubCheckoutService{})

	router := gin.New()
	router.POST("/organizer/payments/:id/confirm", h.ConfirmPayment)

	w := perform(router, http.MethodPost, "/organizer/payments/pay-1/confirm", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCheckoutHandler_SettleNotOwner(t *testing.T) {
	h := NewCheckoutHandler(&stubCheckoutService{err: domain.ErrNotOwner})

	router := gin.New()
	router.POST("/organizer/payments/:id/reject", authedAs("org-2"), h.RejectPayment)

	w := perform(router, http.MethodPost, "/organizer/payments/pay-1/reject", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCheckoutHandler_SettleConfirm(t *testing.T) {
	h := NewCheckoutHandler(&stubCheckoutService{})

	router := gin.New()
	router.POST("/organizer/payments/:id/confirm", authedAs("org-1"), h.ConfirmPayment)

	w := perform(router, http.MethodPost, "/organizer/payments/pay-1/confirm", "")
	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
}

func TestWriteDomainError_QuotaMapsTo402(t *testing.T) {
	router := gin.New()
	router.GET("/boom", func(c *gin.Context) {
		writeDomainError(c, domain.ErrQuotaExceeded)
	})

	w := perform(router, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
}

func TestWriteDomainError_UnknownErrorIsOpaque500(t *testing.T) {
	router := gin.New()
	router.GET("/boom", func(c *gin.Context) {
		writeDomainError(c, assert.AnError)
	})

	w := perform(router, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}
