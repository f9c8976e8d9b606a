package services

import (
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"
)

// GatewayCredentials identify one organizer's payment gateway account.
// Credentials are per-organizer, so they are passed per call instead of being
// baked into the client.
type GatewayCredentials struct {
	KeyID     string
	KeySecret string
}

// OrderRequest describes the gateway order to open for a pending payment.
type OrderRequest struct {
	Amount   int64 // minor currency units
	Currency string
	Receipt  string
	Notes    map[string]interface{}
}

// PaymentGateway fronts the external payment provider so the booking and
// reconciliation services can be exercised with fakes in tests.
type PaymentGateway interface {
	CreateOrder(creds GatewayCredentials, req OrderRequest) (string, error)
	VerifyWebhookSignature(body []byte, signature, secret string) bool
	VerifyPaymentSignature(orderID, paymentID, signature, keySecret string) bool
}

// RazorpayGateway implements PaymentGateway against the Razorpay API.
type RazorpayGateway struct{}

func NewRazorpayGateway() *RazorpayGateway {
	return &RazorpayGateway{}
}

// CreateOrder opens an order at the gateway and returns its id, which becomes
// the reconciliation key for webhooks and verify calls.
func (g *RazorpayGateway) CreateOrder(creds GatewayCredentials, req OrderRequest) (string, error) {
	client := razorpay.NewClient(creds.KeyID, creds.KeySecret)

	data := map[string]interface{}{
		"amount":   req.Amount,
		"currency": req.Currency,
		"receipt":  req.Receipt,
	}
	if len(req.Notes) > 0 {
		data["notes"] = req.Notes
	}

	order, err := client.Order.Create(data, nil)
	if err != nil {
		return "", fmt.Errorf("razorpay create order: %w", err)
	}

	orderID, ok := order["id"].(string)
	if !ok || orderID == "" {
		return "", fmt.Errorf("razorpay create order: response carries no order id")
	}
	return orderID, nil
}

// VerifyWebhookSignature checks the HMAC-SHA256 of the raw webhook body
// against the signature header using the organizer's webhook secret.
func (g *RazorpayGateway) VerifyWebhookSignature(body []byte, signature, secret string) bool {
	return utils.VerifyWebhookSignature(string(body), signature, secret)
}

// VerifyPaymentSignature checks the HMAC-SHA256 over "orderID|paymentID"
// using the organizer's key secret. Note this is a different secret than the
// webhook one.
func (g *RazorpayGateway) VerifyPaymentSignature(orderID, paymentID, signature, keySecret string) bool {
	params := map[string]interface{}{
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": paymentID,
	}
	return utils.VerifyPaymentSignature(params, signature, keySecret)
}
