package services

import "errors"

var (
	ErrActivityNotFound = errors.New("activity not found")
	ErrPaymentNotFound  = errors.New("payment not found")

	// ErrRegistrationClosed covers inactive activities, closed registration
	// windows, and one-time activities whose derived status is no longer open.
	ErrRegistrationClosed = errors.New("registration is closed")

	// ErrCapacityExceeded means the requested tickets do not fit in the
	// activity's remaining slots. No state is changed when this is returned.
	ErrCapacityExceeded = errors.New("not enough slots available")

	ErrInvalidSignature = errors.New("signature verification failed")
	ErrMalformedPayload = errors.New("malformed webhook payload")

	// Configuration failures: the organizer is missing a secret the flow
	// requires. Surfaced as 5xx since the caller cannot fix them.
	ErrWebhookSecretMissing = errors.New("organizer webhook secret not configured")
	ErrKeySecretMissing     = errors.New("organizer gateway key secret not configured")
)

// GatewayError wraps a failure from the external payment gateway. It aborts
// the paid registration flow before any slot or payment state is committed.
type GatewayError struct {
	Err error
}

func (e *GatewayError) Error() string {
	return "payment gateway error: " + e.Err.Error()
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
