package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rifahub/backend/internal/dto"
	"github.com/rifahub/backend/internal/service"
	"github.com/rifahub/backend/pkg/response"
)

// LookupHandler handles the public "my tickets" lookup
type LookupHandler struct {
	lookupService service.LookupService
}

// NewLookupHandler creates a new LookupHandler
func NewLookupHandler(lookupService service.LookupService) *LookupHandler {
	return &LookupHandler{lookupService: lookupService}
}

// Find handles POST /lookup. POST rather than GET keeps the buyer's tax ID
// out of URLs and access logs.
func (h *LookupHandler) Find(c *gin.Context) {
	var req dto.LookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}

	result, err := h.lookupService.FindByBuyer(c.Request.Context(), req.TaxID, req.Phone)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(result))
}
