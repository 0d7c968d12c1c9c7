package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rifahub/backend/internal/dto"
	"github.com/rifahub/backend/internal/gateway"
	"github.com/rifahub/backend/internal/service"
	"github.com/rifahub/backend/pkg/logger"
	"github.com/rifahub/backend/pkg/response"
)

// webhookDedupeTTL bounds how long an event ID is remembered. Providers
// redeliver within hours, not days.
const webhookDedupeTTL = 24 * time.Hour

// WebhookHandler receives payment provider callbacks. Delivery is
// at-least-once, so outcomes are deduplicated by event ID in Redis and
// every downstream transition tolerates a replay anyway.
type WebhookHandler struct {
	checkoutService service.CheckoutService
	gw              gateway.PaymentGateway
	redisClient     *redis.Client
	log             *logger.Logger
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(
	checkoutService service.CheckoutService,
	gw gateway.PaymentGateway,
	redisClient *redis.Client,
	log *logger.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		checkoutService: checkoutService,
		gw:              gw,
		redisClient:     redisClient,
		log:             log,
	}
}

// HandlePayment handles POST /webhooks/payment
func (h *WebhookHandler) HandlePayment(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Unreadable payload"))
		return
	}

	signature := c.GetHeader("X-Webhook-Signature")
	if !h.gw.VerifySignature(payload, signature) {
		c.JSON(http.StatusUnauthorized, response.Unauthorized("Invalid webhook signature"))
		return
	}

	var req dto.WebhookRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid webhook payload"))
		return
	}
	if req.EventID == "" || req.PaymentID == "" {
		c.JSON(http.StatusBadRequest, response.BadRequest("event_id and payment_id are required"))
		return
	}
	if req.Outcome != "approved" && req.Outcome != "rejected" {
		c.JSON(http.StatusBadRequest, response.BadRequest("outcome must be approved or rejected"))
		return
	}

	ctx := c.Request.Context()

	// First-writer-wins dedupe. A Redis failure falls through to
	// processing: the engine transitions are idempotent, so a duplicate
	// apply is safer than a dropped outcome.
	dedupeKey := "webhook:event:" + req.EventID
	fresh, err := h.redisClient.SetNX(ctx, dedupeKey, 1, webhookDedupeTTL).Result()
	if err != nil {
		h.log.WithContext(ctx).Warn("webhook dedupe unavailable, processing anyway",
			zap.String("event_id", req.EventID),
			zap.Error(err),
		)
	} else if !fresh {
		c.JSON(http.StatusOK, response.Success(gin.H{"duplicate": true}))
		return
	}

	if err := h.checkoutService.ApplyPaymentOutcome(ctx, req.PaymentID, req.Outcome == "approved"); err != nil {
		// Forget the event so the provider's retry is not swallowed by
		// the dedupe key.
		if delErr := h.redisClient.Del(ctx, dedupeKey).Err(); delErr != nil {
			h.log.WithContext(ctx).Warn("failed to clear webhook dedupe key",
				zap.String("event_id", req.EventID),
				zap.Error(delErr),
			)
		}
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(gin.H{"processed": true}))
}
