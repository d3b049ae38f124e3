package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"globalcrusade/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPaystack(t *testing.T, handler http.HandlerFunc) *Paystack {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	g := NewPaystack("sk_test_secret")
	g.baseURL = srv.URL
	return g
}

func TestPaystackInitialize(t *testing.T) {
	g := newTestPaystack(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transaction/initialize", r.URL.Path)
		require.Equal(t, "Bearer sk_test_secret", r.Header.Get("Authorization"))

		var payload paystackInitPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, int64(500000), payload.Amount)
		assert.Equal(t, "NGN", payload.Currency)
		assert.Equal(t, "donor@church.org.ng", payload.Email)

		json.NewEncoder(w).Encode(map[string]any{
			"status":  true,
			"message": "Authorization URL created",
			"data": map[string]any{
				"authorization_url": "https://checkout.paystack.com/abc123",
				"access_code":       "abc123",
				"reference":         "ps_ref_1",
			},
		})
	})

	res, err := g.Initialize(context.Background(), InitRequest{
		Email:       "donor@church.org.ng",
		AmountCents: 500000,
		Currency:    types.CurrencyNGN,
		CallbackURL: "https://example.org/payment/verify/d1",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.paystack.com/abc123", res.RedirectURL)
	assert.Equal(t, "ps_ref_1", res.Reference)
}

func TestPaystackInitializeRejected(t *testing.T) {
	g := newTestPaystack(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"status":  false,
			"message": "Invalid key",
		})
	})

	_, err := g.Initialize(context.Background(), InitRequest{Email: "a@x.com", AmountCents: 100})

	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, types.GatewayPaystack, rejected.Gateway)
	assert.Contains(t, rejected.Error(), "Invalid key")
}

func TestPaystackInitializeUnavailable(t *testing.T) {
	g := newTestPaystack(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := g.Initialize(context.Background(), InitRequest{Email: "a@x.com", AmountCents: 100})
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestPaystackVerifyOutcomes(t *testing.T) {
	tests := []struct {
		raw  string
		want Outcome
	}{
		{"success", OutcomeSuccess},
		{"abandoned", OutcomePending},
		{"ongoing", OutcomePending},
		{"failed", OutcomeFailed},
		{"reversed", OutcomeFailed},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			g := newTestPaystack(t, func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/transaction/verify/ps_ref_1", r.URL.Path)
				json.NewEncoder(w).Encode(map[string]any{
					"status":  true,
					"message": "Verification successful",
					"data": map[string]any{
						"status":    tt.raw,
						"reference": "ps_ref_1",
						"amount":    500000,
						"currency":  "NGN",
					},
				})
			})

			res, err := g.Verify(context.Background(), "ps_ref_1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Outcome)
			assert.Equal(t, tt.raw, res.RawStatus)
			assert.Equal(t, int64(500000), res.PaidAmountCents)
			assert.Equal(t, types.CurrencyNGN, res.PaidCurrency)
		})
	}
}

func TestPaystackWebhookSignature(t *testing.T) {
	g := NewPaystack("sk_test_secret")
	body := []byte(`{"event":"charge.success","data":{"reference":"ps_ref_1"}}`)

	mac := hmac.New(sha512.New, []byte("sk_test_secret"))
	mac.Write(body)
	valid := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, g.VerifyWebhookSignature(body, valid))
	assert.False(t, g.VerifyWebhookSignature(body, "deadbeef"))
	assert.False(t, g.VerifyWebhookSignature([]byte(`tampered`), valid))
}
