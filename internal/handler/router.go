package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rifahub/backend/pkg/middleware"
	"github.com/rifahub/backend/pkg/response"
)

// RouterConfig wires the handlers into the HTTP surface
type RouterConfig struct {
	JWTSecret string
	RateLimit middleware.RateLimitConfig
	Audit     *middleware.AuditLogger

	Raffles   *RaffleHandler
	Campaigns *CampaignHandler
	Checkout  *CheckoutHandler
	Webhooks  *WebhookHandler
	Lookup    *LookupHandler
	Organizer *OrganizerHandler
}

// SetupRoutes registers all routes. Buyer-facing routes are public; the
// organizer surface sits behind JWT auth issued by the identity service.
func SetupRoutes(router *gin.Engine, cfg *RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, response.Success(gin.H{"status": "ok"}))
	})

	v1 := router.Group("/api/v1")
	v1.Use(middleware.RateLimiter(cfg.RateLimit))
	if cfg.Audit != nil {
		v1.Use(middleware.AuditMiddleware(cfg.Audit))
	}

	// Public buyer surface
	v1.GET("/raffles", cfg.Raffles.List)
	v1.GET("/raffles/:id", cfg.Raffles.Get)
	v1.GET("/raffles/:id/slots", cfg.Raffles.GetSlots)
	v1.GET("/campaigns", cfg.Campaigns.List)
	v1.GET("/campaigns/:id", cfg.Campaigns.Get)
	v1.GET("/campaigns/:id/top-buyers", cfg.Campaigns.TopBuyers)
	v1.POST("/checkout/raffle", cfg.Checkout.StartRaffle)
	v1.POST("/checkout/campaign", cfg.Checkout.StartCampaign)
	v1.POST("/lookup", cfg.Lookup.Find)

	// Provider callbacks, authenticated by signature instead of JWT
	v1.POST("/webhooks/payment", cfg.Webhooks.HandlePayment)

	// Organizer surface
	jwtConfig := &middleware.JWTConfig{Secret: cfg.JWTSecret}
	organizer := v1.Group("/organizer")
	organizer.Use(middleware.JWTMiddleware(jwtConfig))
	{
		organizer.GET("/profile", cfg.Organizer.GetProfile)
		organizer.PATCH("/profile", cfg.Organizer.UpdateProfile)
		organizer.GET("/usage", cfg.Raffles.Usage)

		organizer.GET("/raffles", cfg.Raffles.ListMine)
		organizer.POST("/raffles", cfg.Raffles.Create)
		organizer.POST("/raffles/:id/close", cfg.Raffles.Close)
		organizer.DELETE("/raffles/:id", cfg.Raffles.Delete)

		organizer.GET("/campaigns", cfg.Campaigns.ListMine)
		organizer.POST("/campaigns", cfg.Campaigns.Create)
		organizer.DELETE("/campaigns/:id", cfg.Campaigns.Delete)

		// Manual settlement of out-of-band PIX payments
		organizer.GET("/payments/pending", cfg.Checkout.ListPendingPayments)
		organizer.POST("/payments/:id/confirm", cfg.Checkout.ConfirmPayment)
		organizer.POST("/payments/:id/reject", cfg.Checkout.RejectPayment)
	}
}
