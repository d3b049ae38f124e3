package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"globalcrusade/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFlutterwave(t *testing.T, handler http.HandlerFunc) *Flutterwave {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	g := NewFlutterwave("flw_test_secret")
	g.baseURL = srv.URL
	return g
}

func TestFlutterwaveInitialize(t *testing.T) {
	g := newTestFlutterwave(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payments", r.URL.Path)

		var payload flutterwaveInitPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "DON-abc-1700000000", payload.TxRef)
		assert.Equal(t, "5000.00", payload.Amount)
		assert.Equal(t, "NGN", payload.Currency)
		assert.Equal(t, "Grace Adeyemi", payload.Customer.Name)

		json.NewEncoder(w).Encode(map[string]any{
			"status":  "success",
			"message": "Hosted Link",
			"data":    map[string]any{"link": "https://checkout.flutterwave.com/pay/xyz"},
		})
	})

	res, err := g.Initialize(context.Background(), InitRequest{
		Email:       "grace@example.ng",
		Name:        "Grace Adeyemi",
		AmountCents: 500000,
		Currency:    types.CurrencyNGN,
		CallbackURL: "https://example.org/payment/verify/d1",
		Reference:   "DON-abc-1700000000",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.flutterwave.com/pay/xyz", res.RedirectURL)
	assert.Equal(t, "DON-abc-1700000000", res.Reference)
}

func TestFlutterwaveVerify(t *testing.T) {
	g := newTestFlutterwave(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transactions/85412/verify", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"status":  "success",
			"message": "Transaction fetched successfully",
			"data": map[string]any{
				"status":   "successful",
				"tx_ref":   "DON-abc-1700000000",
				"amount":   5000,
				"currency": "NGN",
			},
		})
	})

	res, err := g.Verify(context.Background(), "85412")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, res.Outcome)
	assert.Equal(t, int64(500000), res.PaidAmountCents)
	assert.Equal(t, "DON-abc-1700000000", res.Reference)
}

func TestFlutterwaveOutcomes(t *testing.T) {
	assert.Equal(t, OutcomeSuccess, flutterwaveOutcome("successful"))
	assert.Equal(t, OutcomePending, flutterwaveOutcome("cancelled"))
	assert.Equal(t, OutcomePending, flutterwaveOutcome("pending"))
	assert.Equal(t, OutcomeFailed, flutterwaveOutcome("failed"))
	assert.Equal(t, OutcomeFailed, flutterwaveOutcome(""))
}

func TestFlutterwaveWebhookSignature(t *testing.T) {
	g := NewFlutterwave("flw_test_secret")

	assert.True(t, g.VerifyWebhookSignature(nil, "flw_test_secret"))
	assert.False(t, g.VerifyWebhookSignature(nil, "wrong"))
	assert.False(t, g.VerifyWebhookSignature(nil, ""))
}
