package gateway

import (
	"testing"

	"globalcrusade/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePaystackEvent(t *testing.T) {
	body := []byte(`{
		"event": "charge.success",
		"data": {"reference": "ps_ref_1", "amount": 500000, "currency": "NGN", "status": "success"}
	}`)

	event, err := ParsePaystackEvent(body)
	require.NoError(t, err)
	assert.True(t, event.Completed)
	assert.Equal(t, "ps_ref_1", event.Reference)
	assert.Equal(t, int64(500000), event.AmountCents)
	assert.Equal(t, types.CurrencyNGN, event.Currency)
}

func TestParsePaystackEventIgnoresOtherTypes(t *testing.T) {
	event, err := ParsePaystackEvent([]byte(`{"event":"transfer.success","data":{"reference":"x"}}`))
	require.NoError(t, err)
	assert.False(t, event.Completed)
	assert.Equal(t, "transfer.success", event.Type)
}

func TestParseFlutterwaveEvent(t *testing.T) {
	body := []byte(`{
		"event": "charge.completed",
		"data": {"tx_ref": "DON-abc-1700000000", "amount": 5000, "currency": "NGN", "status": "successful"}
	}`)

	event, err := ParseFlutterwaveEvent(body)
	require.NoError(t, err)
	assert.True(t, event.Completed)
	assert.Equal(t, "DON-abc-1700000000", event.Reference)
	assert.Equal(t, int64(500000), event.AmountCents)
}

func TestParseFlutterwaveEventFailedCharge(t *testing.T) {
	body := []byte(`{
		"event": "charge.completed",
		"data": {"tx_ref": "DON-abc-1700000000", "amount": 5000, "currency": "NGN", "status": "failed"}
	}`)

	event, err := ParseFlutterwaveEvent(body)
	require.NoError(t, err)
	assert.False(t, event.Completed)
}

func TestParseEventMalformed(t *testing.T) {
	_, err := ParsePaystackEvent([]byte(`{`))
	assert.Error(t, err)

	_, err = ParseFlutterwaveEvent([]byte(`not json`))
	assert.Error(t, err)
}
