package gateway

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"globalcrusade/internal/currency"
	"globalcrusade/pkg/types"
)

const flutterwaveBaseURL = "https://api.flutterwave.com/v3"

// Flutterwave talks to the Flutterwave v3 REST API.
// https://developer.flutterwave.com/docs
type Flutterwave struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
}

func NewFlutterwave(secretKey string) *Flutterwave {
	return &Flutterwave{
		secretKey:  secretKey,
		baseURL:    flutterwaveBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (g *Flutterwave) Name() types.PaymentGateway {
	return types.GatewayFlutterwave
}

type flutterwaveInitPayload struct {
	TxRef          string                `json:"tx_ref"`
	Amount         string                `json:"amount"`
	Currency       string                `json:"currency"`
	RedirectURL    string                `json:"redirect_url"`
	PaymentOptions string                `json:"payment_options"`
	Customer       flutterwaveCustomer   `json:"customer"`
	Customizations flutterwaveCustomizer `json:"customizations"`
	Meta           map[string]string     `json:"meta,omitempty"`
}

type flutterwaveCustomer struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phonenumber"`
}

type flutterwaveCustomizer struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type flutterwaveEnvelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type flutterwaveInitData struct {
	Link string `json:"link"`
}

type flutterwaveVerifyData struct {
	Status   string  `json:"status"`
	TxRef    string  `json:"tx_ref"`
	Amount   float64 `json:"amount"` // nominal units
	Currency string  `json:"currency"`
}

func (g *Flutterwave) Initialize(ctx context.Context, req InitRequest) (*InitResult, error) {
	payload := flutterwaveInitPayload{
		TxRef:          req.Reference,
		Amount:         currency.CentsToDecimal(req.AmountCents),
		Currency:       string(req.Currency),
		RedirectURL:    req.CallbackURL,
		PaymentOptions: "card,banktransfer,ussd,mobilemoneyghana,mobilemoneyuganda",
		Customer: flutterwaveCustomer{
			Email:       req.Email,
			Name:        req.Name,
			PhoneNumber: req.Phone,
		},
		Customizations: flutterwaveCustomizer{
			Title:       "Global Crusade Ministry",
			Description: "Donation for crusade ministry",
		},
		Meta: req.Metadata,
	}

	env, err := g.request(ctx, http.MethodPost, "/payments", payload)
	if err != nil {
		return nil, err
	}

	if env.Status != "success" {
		return nil, &RejectedError{Gateway: g.Name(), Message: env.Message}
	}

	var data flutterwaveInitData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("decode flutterwave init data: %w", err)
	}

	// Flutterwave keeps the caller's tx_ref as the transaction key.
	return &InitResult{RedirectURL: data.Link, Reference: req.Reference}, nil
}

// Verify looks up a transaction by the provider-assigned transaction
// id (not the tx_ref). The returned Reference is the tx_ref so callers
// can cross-check it against the local record.
func (g *Flutterwave) Verify(ctx context.Context, transactionID string) (*VerifyResult, error) {
	env, err := g.request(ctx, http.MethodGet, "/transactions/"+transactionID+"/verify", nil)
	if err != nil {
		return nil, err
	}

	if env.Status != "success" {
		return &VerifyResult{Outcome: OutcomeFailed, RawStatus: env.Message}, nil
	}

	var data flutterwaveVerifyData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("decode flutterwave verify data: %w", err)
	}

	return &VerifyResult{
		Outcome:         flutterwaveOutcome(data.Status),
		PaidAmountCents: int64(math.Round(data.Amount * 100)),
		PaidCurrency:    types.Currency(data.Currency),
		Reference:       data.TxRef,
		RawStatus:       data.Status,
	}, nil
}

// flutterwaveOutcome normalizes Flutterwave's status vocabulary. A
// cancelled checkout leaves the donation pending so the donor can
// retry.
func flutterwaveOutcome(status string) Outcome {
	switch status {
	case "successful":
		return OutcomeSuccess
	case "cancelled", "pending":
		return OutcomePending
	default:
		return OutcomeFailed
	}
}

// VerifyWebhookSignature checks the verif-hash header, which
// Flutterwave sets to the merchant's shared secret. The comparison is
// constant time.
func (g *Flutterwave) VerifyWebhookSignature(_ []byte, signature string) bool {
	return subtle.ConstantTimeCompare([]byte(signature), []byte(g.secretKey)) == 1
}

func (g *Flutterwave) request(ctx context.Context, method, path string, payload any) (*flutterwaveEnvelope, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal flutterwave payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build flutterwave request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.secretKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: flutterwave returned %d: %s", ErrUnavailable, resp.StatusCode, snippet)
	}

	var env flutterwaveEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode flutterwave response: %w", err)
	}

	return &env, nil
}
