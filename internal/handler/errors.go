package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rifahub/backend/internal/domain"
	"github.com/rifahub/backend/pkg/response"
)

// writeDomainError translates engine errors into the response envelope.
// Unknown errors become opaque 500s so internals never leak to buyers.
func writeDomainError(c *gin.Context, err error) {
	var unavail *domain.SlotsUnavailableError
	if errors.As(err, &unavail) {
		c.JSON(response.GetHTTPStatus(response.ErrCodeSlotsUnavailable), response.SlotsUnavailable(unavail.NumbersCSV()))
		return
	}

	var code, msg string
	switch {
	case errors.Is(err, domain.ErrRaffleNotFound),
		errors.Is(err, domain.ErrCampaignNotFound),
		errors.Is(err, domain.ErrPledgeNotFound),
		errors.Is(err, domain.ErrOrganizerNotFound),
		errors.Is(err, domain.ErrSlotNotFound),
		errors.Is(err, domain.ErrPaymentNotFound):
		code, msg = response.ErrCodeNotFound, err.Error()
	case errors.Is(err, domain.ErrInsufficientInventory):
		code, msg = response.ErrCodeInsufficientInventory, err.Error()
	case errors.Is(err, domain.ErrHolderMismatch):
		code, msg = response.ErrCodeHolderMismatch, err.Error()
	case errors.Is(err, domain.ErrQuotaExceeded):
		code, msg = response.ErrCodeQuotaExceeded, err.Error()
	case errors.Is(err, domain.ErrAlreadyInitialized):
		code, msg = response.ErrCodeAlreadyInitialized, err.Error()
	case errors.Is(err, domain.ErrAlreadyClosed):
		code, msg = response.ErrCodeAlreadyClosed, err.Error()
	case errors.Is(err, domain.ErrInvalidWinner):
		code, msg = response.ErrCodeInvalidWinner, err.Error()
	case errors.Is(err, domain.ErrNoEligibleSlots):
		code, msg = response.ErrCodeNoEligibleSlots, err.Error()
	case errors.Is(err, domain.ErrNotOwner):
		code, msg = response.ErrCodeForbidden, err.Error()
	default:
		c.JSON(http.StatusInternalServerError, response.InternalError("Internal server error"))
		return
	}
	c.JSON(response.GetHTTPStatus(code), response.Error(code, msg))
}
