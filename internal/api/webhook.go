package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ashureev/assessment-relay/internal/delivery"
	"github.com/ashureev/assessment-relay/internal/domain"
	"github.com/ashureev/assessment-relay/internal/webhook"
	"github.com/go-chi/chi/v5"
)

// Deliverer sends the stored report for an email.
type Deliverer interface {
	Deliver(ctx context.Context, email string) (*delivery.Receipt, error)
}

// WebhookHandler handles payment-platform notifications.
type WebhookHandler struct {
	deliverer Deliverer
	timeout   time.Duration
}

// NewWebhookHandler creates a webhook handler. A zero timeout means 30s.
func NewWebhookHandler(deliverer Deliverer, timeout time.Duration) *WebhookHandler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &WebhookHandler{deliverer: deliverer, timeout: timeout}
}

// RegisterRoutes registers webhook routes.
func (h *WebhookHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/confirmado", h.Confirmado)
}

// Confirmado sends the buyer's report on purchase events and ignores the rest.
func (h *WebhookHandler) Confirmado(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	event, err := webhook.Parse(r.Body)
	if err != nil {
		slog.Warn("Invalid webhook payload", "error", err)
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	slog.Info("Webhook received", "event", event.Event, "id", event.ID)
	if !event.IsPurchase() {
		JSON(w, http.StatusOK, map[string]string{"message": "event ignored"})
		return
	}

	email, err := event.BuyerEmail()
	if err != nil {
		Error(w, http.StatusBadRequest, "buyer email not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	receipt, err := h.deliverer.Deliver(ctx, email)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			Error(w, http.StatusNotFound, "result not found")
		case domain.IsValidation(err):
			Error(w, http.StatusBadRequest, err.Error())
		default:
			slog.Error("Failed to deliver report", "email", email, "error", err)
			JSON(w, http.StatusInternalServerError, map[string]string{
				"error":   "failed to process webhook",
				"details": err.Error(),
			})
		}
		return
	}

	JSON(w, http.StatusOK, map[string]string{
		"message":     "E-mail com PDF enviado com sucesso",
		"email":       receipt.Email,
		"recipient":   receipt.Recipient,
		"delivery_id": receipt.DeliveryID,
	})
}
