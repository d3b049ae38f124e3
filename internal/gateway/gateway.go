// Package gateway wraps the supported payment providers behind one
// contract: initialize a checkout, verify its outcome, and authenticate
// webhook deliveries. Adapters never touch local state.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"globalcrusade/pkg/types"
)

// ErrUnavailable wraps network failures and non-2xx provider responses.
var ErrUnavailable = errors.New("payment gateway unavailable")

// RejectedError carries a provider's own reason for refusing to
// initialize a payment.
type RejectedError struct {
	Gateway types.PaymentGateway
	Message string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s rejected payment: %s", e.Gateway, e.Message)
}

// Outcome is the normalized tri-state a provider's status vocabulary
// collapses into.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomePending Outcome = "pending"
	OutcomeFailed  Outcome = "failed"
)

type InitRequest struct {
	Email       string
	Name        string
	Phone       string
	AmountCents int64
	Currency    types.Currency
	CallbackURL string
	// Reference is the caller-assigned transaction reference. Providers
	// that mint their own (Paystack, Stripe) return it in InitResult.
	Reference string
	Metadata  map[string]string
}

type InitResult struct {
	RedirectURL string
	Reference   string
}

type VerifyResult struct {
	Outcome         Outcome
	PaidAmountCents int64
	PaidCurrency    types.Currency
	// Reference is the provider-reported transaction reference, used to
	// cross-check against the local donation record.
	Reference string
	RawStatus string
}

type Gateway interface {
	Name() types.PaymentGateway
	Initialize(ctx context.Context, req InitRequest) (*InitResult, error)
	Verify(ctx context.Context, reference string) (*VerifyResult, error)
	// VerifyWebhookSignature must be checked before any webhook payload
	// is trusted.
	VerifyWebhookSignature(body []byte, signature string) bool
}
