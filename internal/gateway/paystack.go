package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"globalcrusade/pkg/types"
)

const paystackBaseURL = "https://api.paystack.co"

// Paystack talks to the Paystack REST API.
// https://paystack.com/docs/api/
type Paystack struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
}

func NewPaystack(secretKey string) *Paystack {
	return &Paystack{
		secretKey:  secretKey,
		baseURL:    paystackBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (g *Paystack) Name() types.PaymentGateway {
	return types.GatewayPaystack
}

type paystackInitPayload struct {
	Email       string            `json:"email"`
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	CallbackURL string            `json:"callback_url"`
	Reference   string            `json:"reference,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Channels    []string          `json:"channels"`
}

type paystackEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type paystackInitData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type paystackVerifyData struct {
	Status    string `json:"status"`
	Reference string `json:"reference"`
	Amount    int64  `json:"amount"` // minor units (kobo)
	Currency  string `json:"currency"`
}

func (g *Paystack) Initialize(ctx context.Context, req InitRequest) (*InitResult, error) {
	payload := paystackInitPayload{
		Email:       req.Email,
		Amount:      req.AmountCents,
		Currency:    string(req.Currency),
		CallbackURL: req.CallbackURL,
		Reference:   req.Reference,
		Metadata:    req.Metadata,
		Channels:    []string{"card", "bank", "ussd", "qr", "mobile_money", "bank_transfer"},
	}

	env, err := g.post(ctx, "/transaction/initialize", payload)
	if err != nil {
		return nil, err
	}

	if !env.Status {
		return nil, &RejectedError{Gateway: g.Name(), Message: env.Message}
	}

	var data paystackInitData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("decode paystack init data: %w", err)
	}

	return &InitResult{RedirectURL: data.AuthorizationURL, Reference: data.Reference}, nil
}

func (g *Paystack) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	env, err := g.get(ctx, "/transaction/verify/"+reference)
	if err != nil {
		return nil, err
	}

	if !env.Status {
		return &VerifyResult{Outcome: OutcomeFailed, RawStatus: env.Message}, nil
	}

	var data paystackVerifyData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("decode paystack verify data: %w", err)
	}

	return &VerifyResult{
		Outcome:         paystackOutcome(data.Status),
		PaidAmountCents: data.Amount,
		PaidCurrency:    types.Currency(data.Currency),
		Reference:       data.Reference,
		RawStatus:       data.Status,
	}, nil
}

// paystackOutcome normalizes Paystack's status vocabulary. "abandoned"
// means the donor never finished checkout, so the donation stays
// pending rather than failing.
func paystackOutcome(status string) Outcome {
	switch status {
	case "success":
		return OutcomeSuccess
	case "abandoned", "ongoing", "pending", "queued":
		return OutcomePending
	default:
		return OutcomeFailed
	}
}

// VerifyWebhookSignature checks the X-Paystack-Signature header, an
// HMAC-SHA512 of the raw body keyed with the secret key.
func (g *Paystack) VerifyWebhookSignature(body []byte, signature string) bool {
	mac := hmac.New(sha512.New, []byte(g.secretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (g *Paystack) post(ctx context.Context, path string, payload any) (*paystackEnvelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal paystack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build paystack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return g.do(req)
}

func (g *Paystack) get(ctx context.Context, path string) (*paystackEnvelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build paystack request: %w", err)
	}

	return g.do(req)
}

func (g *Paystack) do(req *http.Request) (*paystackEnvelope, error) {
	req.Header.Set("Authorization", "Bearer "+g.secretKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: paystack returned %d: %s", ErrUnavailable, resp.StatusCode, snippet)
	}

	var env paystackEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode paystack response: %w", err)
	}

	return &env, nil
}
