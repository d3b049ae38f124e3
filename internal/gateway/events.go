package gateway

import (
	"encoding/json"
	"fmt"
	"math"

	"globalcrusade/pkg/types"
)

// WebhookEvent is the normalized view of a provider webhook delivery.
// Completed is true only for the event types that confirm a charge.
type WebhookEvent struct {
	Gateway     types.PaymentGateway
	Type        string
	Completed   bool
	Reference   string
	AmountCents int64
	Currency    types.Currency
}

type paystackWebhookPayload struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Amount    int64  `json:"amount"`
		Currency  string `json:"currency"`
		Status    string `json:"status"`
	} `json:"data"`
}

// ParsePaystackEvent decodes a Paystack webhook body. Signature
// verification is the caller's job and must happen first.
func ParsePaystackEvent(body []byte) (*WebhookEvent, error) {
	var payload paystackWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode paystack webhook: %w", err)
	}

	return &WebhookEvent{
		Gateway:     types.GatewayPaystack,
		Type:        payload.Event,
		Completed:   payload.Event == "charge.success",
		Reference:   payload.Data.Reference,
		AmountCents: payload.Data.Amount,
		Currency:    types.Currency(payload.Data.Currency),
	}, nil
}

type flutterwaveWebhookPayload struct {
	Event string `json:"event"`
	Data  struct {
		TxRef    string  `json:"tx_ref"`
		Amount   float64 `json:"amount"`
		Currency string  `json:"currency"`
		Status   string  `json:"status"`
	} `json:"data"`
}

// ParseFlutterwaveEvent decodes a Flutterwave webhook body. The
// charge.completed event fires for failures too, so the payload status
// must also read successful.
func ParseFlutterwaveEvent(body []byte) (*WebhookEvent, error) {
	var payload flutterwaveWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode flutterwave webhook: %w", err)
	}

	return &WebhookEvent{
		Gateway:     types.GatewayFlutterwave,
		Type:        payload.Event,
		Completed:   payload.Event == "charge.completed" && payload.Data.Status == "successful",
		Reference:   payload.Data.TxRef,
		AmountCents: int64(math.Round(payload.Data.Amount * 100)),
		Currency:    types.Currency(payload.Data.Currency),
	}, nil
}
