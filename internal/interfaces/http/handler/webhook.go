package handler

import (
	"errors"
	"net/http"

	appsales "github.com/biashara/backend/internal/application/sales"
	"github.com/biashara/backend/internal/domain/sales"
	"github.com/biashara/backend/internal/interfaces/http/dto"
	"github.com/biashara/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Signature header names used by the payment providers
const (
	flutterwaveSignatureHeader = "verif-hash"
	paystackSignatureHeader    = "x-paystack-signature"
)

// WebhookHandler receives payment provider webhook deliveries. These
// endpoints are called by Flutterwave and Paystack, carry their own
// authenticity proof, and bypass session authentication entirely.
type WebhookHandler struct {
	BaseHandler
	webhookService *appsales.WebhookService
	logger         *zap.Logger
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(webhookService *appsales.WebhookService, log *zap.Logger) *WebhookHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &WebhookHandler{
		webhookService: webhookService,
		logger:         log,
	}
}

// HandleFlutterwave processes a Flutterwave webhook delivery
func (h *WebhookHandler) HandleFlutterwave(c *gin.Context) {
	h.handleDelivery(c, sales.ProviderTypeFlutterwave, c.GetHeader(flutterwaveSignatureHeader))
}

// HandlePaystack processes a Paystack webhook delivery
func (h *WebhookHandler) HandlePaystack(c *gin.Context) {
	h.handleDelivery(c, sales.ProviderTypePaystack, c.GetHeader(paystackSignatureHeader))
}

// handleDelivery reads the raw body and hands the delivery to the reconciler.
// Status codes drive provider retry behavior: 200 stops retries, anything
// else invites another delivery, so only transient failures return non-200.
func (h *WebhookHandler) handleDelivery(c *gin.Context, provider sales.ProviderType, signature string) {
	payload, err := c.GetRawData()
	if err != nil {
		h.BadRequest(c, "Failed to read request body")
		return
	}

	result, err := h.webhookService.ProcessEvent(c.Request.Context(), provider, payload, signature)
	if err != nil {
		switch {
		case errors.Is(err, sales.ErrWebhookSignature):
			h.Error(c, http.StatusUnauthorized, dto.ErrCodeSignatureInvalid, "Signature verification failed")
		case errors.Is(err, sales.ErrWebhookInvalidPayload):
			h.BadRequest(c, "Invalid webhook payload")
		case errors.Is(err, appsales.ErrProviderNotRegistered):
			h.NotFound(c, "Unknown payment provider")
		default:
			h.logger.Error("webhook processing failed",
				zap.String("request_id", middleware.GetRequestID(c)),
				zap.String("provider", provider.String()),
				zap.Error(err),
			)
			h.InternalError(c, "Webhook processing failed")
		}
		return
	}

	h.Success(c, dto.WebhookAckResponse{Status: result.Reason})
}
