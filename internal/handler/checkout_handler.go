package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rifahub/backend/internal/dto"
	"github.com/rifahub/backend/internal/service"
	"github.com/rifahub/backend/pkg/middleware"
	"github.com/rifahub/backend/pkg/response"
)

// CheckoutHandler handles public checkout requests
type CheckoutHandler struct {
	checkoutService service.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkoutService service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// StartRaffle handles POST /checkout/raffle - reserves slots and opens a
// payment session for them.
func (h *CheckoutHandler) StartRaffle(c *gin.Context) {
	var req dto.RaffleCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}
	if len(req.Numbers) == 0 && req.Quantity <= 0 {
		c.JSON(http.StatusBadRequest, response.BadRequest("Either numbers or quantity is required"))
		return
	}

	result, err := h.checkoutService.StartRaffleCheckout(c.Request.Context(), &req)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(result))
}

// ListPendingPayments handles GET /organizer/payments/pending - the manual
// settlement screen for organizers collecting PIX outside the gateway.
func (h *CheckoutHandler) ListPendingPayments(c *gin.Context) {
	organizerID, ok := middleware.OrganizerIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Unauthorized("Organizer ID not found in token"))
		return
	}

	payments, err := h.checkoutService.ListPendingPayments(c.Request.Context(), organizerID)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(payments))
}

// ConfirmPayment handles POST /organizer/payments/:id/confirm
func (h *CheckoutHandler) ConfirmPayment(c *gin.Context) {
	h.settle(c, true)
}

// RejectPayment handles POST /organizer/payments/:id/reject
func (h *CheckoutHandler) RejectPayment(c *gin.Context) {
	h.settle(c, false)
}

func (h *CheckoutHandler) settle(c *gin.Context, approved bool) {
	organizerID, ok := middleware.OrganizerIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Unauthorized("Organizer ID not found in token"))
		return
	}

	if err := h.checkoutService.SettlePayment(c.Request.Context(), organizerID, c.Param("id"), approved); err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(gin.H{"settled": true, "approved": approved}))
}

// StartCampaign handles POST /checkout/campaign
func (h *CheckoutHandler) StartCampaign(c *gin.Context) {
	var req dto.CampaignCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}

	result, err := h.checkoutService.StartCampaignCheckout(c.Request.Context(), &req)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(result))
}
