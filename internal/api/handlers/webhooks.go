package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/mailsense/mailsense/internal/api/dto"
	"github.com/mailsense/mailsense/internal/billing"
	"github.com/mailsense/mailsense/pkg/config"
)

const maxWebhookBody = 1 << 16

type WebhookHandler struct {
	billingService *billing.Service
	paddle         *config.PaddleConfig
	logger         *slog.Logger
}

func NewWebhookHandler(billingService *billing.Service, paddle *config.PaddleConfig, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		billingService: billingService,
		paddle:         paddle,
		logger:         logger,
	}
}

// Paddle receives subscription lifecycle callbacks. The signature is checked
// over the raw body bytes before any JSON decoding. Once a request is
// authenticated it is always acknowledged with 200, even when processing
// fails, so the provider does not retry forever; internal failures are only
// logged.
func (h *WebhookHandler) Paddle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid payload"})
		return
	}

	if !h.authenticate(r, body) {
		h.logger.Warn("rejected webhook with bad signature", "ip", r.RemoteAddr)
		writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Signature verification failed"})
		return
	}

	event, err := billing.ParseEvent(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Unparseable payload"})
		return
	}

	if err := h.billingService.ProcessEvent(r.Context(), event); err != nil {
		h.logger.Error("webhook processing failed",
			"event", event.RawName,
			"subscription_id", event.SubscriptionID,
			"error", err,
		)
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "received"})
}

// authenticate accepts either the signed-header scheme or, when a legacy key
// is configured, the API-key-trust scheme.
func (h *WebhookHandler) authenticate(r *http.Request, body []byte) bool {
	if sig := r.Header.Get("Paddle-Signature"); sig != "" {
		return billing.VerifySignature(h.paddle.WebhookSecret, sig, body)
	}
	return billing.VerifyLegacyKey(h.paddle.LegacyKey, r.Header.Get("X-Webhook-Key"))
}
