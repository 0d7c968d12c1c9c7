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

// RaffleHandler handles raffle-related HTTP requests
type RaffleHandler struct {
	raffleService service.RaffleService
	quotaService  service.QuotaService
}

// NewRaffleHandler creates a new RaffleHandler
func NewRaffleHandler(raffleService service.RaffleService, quotaService service.QuotaService) *RaffleHandler {
	return &RaffleHandler{
		raffleService: raffleService,
		quotaService:  quotaService,
	}
}

func parsePagination(c *gin.Context) (limit, offset int) {
	limit = 20
	offset = 0
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	if o := c.Query("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}

// List handles GET /raffles - lists active raffles for the public
func (h *RaffleHandler) List(c *gin.Context) {
	limit, offset := parsePagination(c)

	raffles, total, err := h.raffleService.ListActive(c.Request.Context(), limit, offset)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	items := make([]*dto.RaffleResponse, len(raffles))
	for i, r := range raffles {
		items[i] = dto.NewRaffleResponse(r)
	}
	c.JSON(http.StatusOK, response.Paginated(items, offset/limit+1, limit, int64(total)))
}

// Get handles GET /raffles/:id
func (h *RaffleHandler) Get(c *gin.Context) {
	raffle, err := h.raffleService.GetRaffle(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(dto.NewRaffleResponse(raffle)))
}

// GetSlots handles GET /raffles/:id/slots - the public slot grid
func (h *RaffleHandler) GetSlots(c *gin.Context) {
	slots, err := h.raffleService.GetRaffleSlots(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}

	items := make([]*dto.SlotResponse, len(slots))
	for i, s := range slots {
		items[i] = dto.NewSlotResponse(s)
	}
	c.JSON(http.StatusOK, response.Success(items))
}

// Create handles POST /raffles (organizer only)
func (h *RaffleHandler) Create(c *gin.Context) {
	var req dto.CreateRaffleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}

	organizerID, ok := middleware.OrganizerIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Unauthorized("Organizer ID not found in token"))
		return
	}

	raffle, err := h.raffleService.CreateRaffle(c.Request.Context(), organizerID, &req)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(dto.NewRaffleResponse(raffle)))
}

// ListMine handles GET /organizer/raffles (organizer only)
func (h *RaffleHandler) ListMine(c *gin.Context) {
	organizerID, ok := middleware.OrganizerIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Unauthorized("Organizer ID not found in token"))
		return
	}

	raffles, err := h.raffleService.ListByOrganizer(c.Request.Context(), organizerID)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	items := make([]*dto.RaffleResponse, len(raffles))
	for i, r := range raffles {
		items[i] = dto.NewRaffleResponse(r)
	}
	c.JSON(http.StatusOK, response.Success(items))
}

// Close handles POST /raffles/:id/close (organizer only)
func (h *RaffleHandler) Close(c *gin.Context) {
	var req dto.CloseRaffleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}
	if req.WinningNumber == nil && req.Seed == nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Either winning_number or seed is required"))
		return
	}

	organizerID, ok := middleware.OrganizerIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Unauthorized("Organizer ID not found in token"))
		return
	}

	method := service.WinnerMethod{Explicit: req.WinningNumber, RandomSeed: req.Seed}
	raffle, err := h.raffleService.CloseRaffle(c.Request.Context(), organizerID, c.Param("id"), method)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(dto.NewRaffleResponse(raffle)))
}

// Delete handles DELETE /raffles/:id (organizer only)
func (h *RaffleHandler) Delete(c *gin.Context) {
	organizerID, ok := middleware.OrganizerIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Unauthorized("Organizer ID not found in token"))
		return
	}

	if err := h.raffleService.DeleteRaffle(c.Request.Context(), organizerID, c.Param("id")); err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(gin.H{"deleted": true}))
}

// Usage handles GET /organizer/usage (organizer only)
func (h *RaffleHandler) Usage(c *gin.Context) {
	organizerID, ok := middleware.OrganizerIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Unauthorized("Organizer ID not found in token"))
		return
	}

	usage, err := h.quotaService.Usage(c.Request.Context(), organizerID)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(usage))
}
