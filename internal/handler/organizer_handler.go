package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rifahub/backend/internal/dto"
	"github.com/rifahub/backend/internal/service"
	"github.com/rifahub/backend/pkg/middleware"
	"github.com/rifahub/backend/pkg/response"
)

// OrganizerHandler handles organizer profile requests
type OrganizerHandler struct {
	organizerService service.OrganizerService
}

// NewOrganizerHandler creates a new OrganizerHandler
func NewOrganizerHandler(organizerService service.OrganizerService) *OrganizerHandler {
	return &OrganizerHandler{organizerService: organizerService}
}

// GetProfile handles GET /organizer/profile
func (h *OrganizerHandler) GetProfile(c *gin.Context) {
	organizerID, ok := middleware.OrganizerIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Unauthorized("Organizer ID not found in token"))
		return
	}

	org, err := h.organizerService.GetProfile(c.Request.Context(), organizerID)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(dto.NewProfileResponse(org)))
}

// UpdateProfile handles PATCH /organizer/profile
func (h *OrganizerHandler) UpdateProfile(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}

	organizerID, ok := middleware.OrganizerIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Unauthorized("Organizer ID not found in token"))
		return
	}

	org, err := h.organizerService.UpdateProfile(c.Request.Context(), organizerID, &req)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(dto.NewProfileResponse(org)))
}
