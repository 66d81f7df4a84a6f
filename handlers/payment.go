package handlers

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"stayhub/config"
	"stayhub/services/payment"
	"stayhub/utils"
)

// PaymentHandler receives asynchronous confirmations from the payment
// provider.
type PaymentHandler struct {
	Sessions payment.SessionManager
	Cache    *redis.Client
	Logger   *zap.Logger
}

type webhookPayload struct {
	Reference string  `json:"reference" binding:"required"`
	Amount    float64 `json:"amount" binding:"required"`
	EventID   string  `json:"eventId"`
}

// Webhook settles a payment session from a provider callback. Deliveries are
// at-least-once; a short-lived Redis marker suppresses exact duplicates so a
// replay cannot mint a second reconciliation record.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	secret := config.AppConfig.PaymentWebhookSecret
	if secret != "" {
		given := c.GetHeader("X-Webhook-Secret")
		if subtle.ConstantTimeCompare([]byte(given), []byte(secret)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook secret"})
			return
		}
	}

	var payload webhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.FailValidation(c, err.Error())
		return
	}

	seenKey := utils.WebhookSeenPrefix + payload.Reference
	if payload.EventID != "" {
		seenKey = utils.WebhookSeenPrefix + payload.EventID
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	fresh, err := h.Cache.SetNX(ctx, seenKey, 1, utils.WebhookSeenTTL).Result()
	if err != nil {
		// Redis being down must not drop a confirmation; Confirm is
		// idempotent for already-paid sessions anyway.
		h.Logger.Warn("webhook dedup check failed", zap.Error(err))
	} else if !fresh {
		utils.Respond(c, "Already processed", nil)
		return
	}

	if err := h.Sessions.Confirm(payload.Reference, payload.Amount); err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Respond(c, "Payment confirmed", nil)
}
