package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rifahub/backend/internal/dto"
	"github.com/rifahub/backend/internal/service"
	"github.com/rifahub/backend/pkg/middleware"
	"github.com/rifahub/backend/pkg/response"
)

// CampaignHandler handles campaign-related HTTP requests
type CampaignHandler struct {
	campaignService service.CampaignService
}

// NewCampaignHandler creates a new CampaignHandler
func NewCampaignHandler(campaignService service.CampaignService) *CampaignHandler {
	return &CampaignHandler{campaignService: campaignService}
}

// List handles GET /campaigns - the public listing, featured first
func (h *CampaignHandler) List(c *gin.Context) {
	limit, offset := parsePagination(c)

	campaigns, total, err := h.campaignService.ListPublic(c.Request.Context(), limit, offset)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	items := make([]*dto.CampaignResponse, len(campaigns))
	for i, campaign := range campaigns {
		items[i] = dto.NewCampaignResponse(campaign)
	}
	c.JSON(http.StatusOK, response.Paginated(items, offset/limit+1, limit, int64(total)))
}

// Get handles GET /campaigns/:id
func (h *CampaignHandler) Get(c *gin.Context) {
	campaign, err := h.campaignService.GetCampaign(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(dto.NewCampaignResponse(campaign)))
}

// TopBuyers handles GET /campaigns/:id/top-buyers - the paid-quantity ranking
func (h *CampaignHandler) TopBuyers(c *gin.Context) {
	limit := 10
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	ranking, err := h.campaignService.TopBuyers(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(ranking))
}

// Create handles POST /campaigns (organizer only)
func (h *CampaignHandler) Create(c *gin.Context) {
	var req dto.CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}

	organizerID, ok := middleware.OrganizerIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Unauthorized("Organizer ID not found in token"))
		return
	}

	campaign, err := h.campaignService.CreateCampaign(c.Request.Context(), organizerID, &req)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(dto.NewCampaignResponse(campaign)))
}

// ListMine handles GET /organizer/campaigns (organizer only)
func (h *CampaignHandler) ListMine(c *gin.Context) {
	organizerID, ok := middleware.OrganizerIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Unauthorized("Organizer ID not found in token"))
		return
	}

	campaigns, err := h.campaignService.ListByOrganizer(c.Request.Context(), organizerID)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	items := make([]*dto.CampaignResponse, len(campaigns))
	for i, campaign := range campaigns {
		items[i] = dto.NewCampaignResponse(campaign)
	}
	c.JSON(http.StatusOK, response.Success(items))
}

// Delete handles DELETE /campaigns/:id (organizer only)
func (h *CampaignHandler) Delete(c *gin.Context) {
	organizerID, ok := middleware.OrganizerIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Unauthorized("Organizer ID not found in token"))
		return
	}

	if err := h.campaignService.DeleteCampaign(c.Request.Context(), organizerID, c.Param("id")); err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(gin.H{"deleted": true}))
}
