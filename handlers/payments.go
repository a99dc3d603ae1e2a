package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lifeshield/lifeshield-api/internal/config"
	"github.com/lifeshield/lifeshield-api/internal/payments"
	"github.com/lifeshield/lifeshield-api/pkg/logger"
)

// PaymentIntentRequest is the checkout amount in major currency units.
type PaymentIntentRequest struct {
	Amount float64 `json:"amount"`
}

// PaymentsHandler creates provider-side payment intents for the checkout flow.
type PaymentsHandler struct {
	cfg     *config.Config
	creator payments.IntentCreator
}

func NewPaymentsHandler(cfg *config.Config, creator payments.IntentCreator) *PaymentsHandler {
	return &PaymentsHandler{cfg: cfg, creator: creator}
}

// Register mounts the payment routes. limit is applied to intent creation;
// pass nil to skip rate limiting (tests).
func (h *PaymentsHandler) Register(rg *gin.RouterGroup, limit gin.HandlerFunc) {
	create := []gin.HandlerFunc{h.CreateIntent}
	if limit != nil {
		create = append([]gin.HandlerFunc{limit}, create...)
	}
	rg.POST("/create-payment-intent", create...)
}

// CreateIntent converts the amount to minor units and asks the provider for
// an intent, returning the client-side confirmation secret.
func (h *PaymentsHandler) CreateIntent(c *gin.Context) {
	var req PaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Amount must be a positive number"})
		return
	}

	secret, err := h.creator.CreateIntent(c.Request.Context(), payments.MinorUnits(req.Amount), h.cfg.Stripe.Currency)
	if err != nil {
		logger.Errorf("payment intent creation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create payment intent"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"clientSecret": secret})
}
