package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"clubbook_echo/internal/models"
	"clubbook_echo/internal/services"
)

type PaymentHandler struct {
	reconcile *services.ReconcileService
}

func NewPaymentHandler(reconcile *services.ReconcileService) *PaymentHandler {
	return &PaymentHandler{reconcile: reconcile}
}

// HandleRazorpayWebhook processes a signed gateway delivery. Once the
// signature checks out the delivery is always acknowledged with 200, whatever
// the internal outcome, so the gateway does not retry-storm us.
func (h *PaymentHandler) HandleRazorpayWebhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to read request body")
	}
	signature := c.Request().Header.Get("X-Razorpay-Signature")

	result, err := h.reconcile.HandleWebhook(c.Request().Context(), body, signature)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMalformedPayload):
			return echo.NewHTTPError(http.StatusBadRequest, "Malformed webhook payload")
		case errors.Is(err, services.ErrInvalidSignature):
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid webhook signature")
		case errors.Is(err, services.ErrPaymentNotFound):
			log.Printf("Webhook for unknown payment order: %v", err)
			return echo.NewHTTPError(http.StatusNotFound, "No matching payment found")
		case errors.Is(err, services.ErrWebhookSecretMissing):
			log.Printf("Webhook secret missing: %v", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Webhook secret not configured")
		default:
			log.Printf("Webhook processing failed: %v", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Webhook processing failed")
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"event":   result.Event,
		"applied": result.Applied,
	})
}

// VerifyPayment is the client-initiated counterpart of the success webhook.
// "Already verified" is a success variant.
func (h *PaymentHandler) VerifyPayment(c echo.Context) error {
	var req VerifyPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.reconcile.VerifyPayment(c.Request().Context(), req.OrderID, req.PaymentID, req.Signature)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPaymentNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "No matching payment found")
		case errors.Is(err, services.ErrInvalidSignature):
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid payment signature")
		case errors.Is(err, services.ErrKeySecretMissing):
			log.Printf("Gateway key secret missing: %v", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Gateway credentials not configured")
		default:
			log.Printf("Payment verification failed for order %s: %v", req.OrderID, err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Payment verification failed")
		}
	}

	state := "completed"
	switch {
	case result.AlreadyCompleted:
		state = "already_completed"
	case !result.Applied && result.Payment.Status == models.PaymentStatusFailed:
		state = "failed"
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"state": state})
}
