package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"globalcrusade/internal/storage"
	"globalcrusade/pkg/types"
)

// newTestService builds a Service with no stripe adapter configured,
// the shape a deployment without STRIPE_SECRET_KEY runs in.
func newTestService(t *testing.T) *Service {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	svc, err := New(
		&types.Config{SiteURL: "https://example.org"},
		logger,
		Repositories{},
		nil,
		nil,
		nil,
		nil,
		storage.NewImageStore(nil, "media", "us-east-1"),
	)
	require.NoError(t, err)

	return svc
}

func TestStripeRoutesWithoutAdapter(t *testing.T) {
	svc := newTestService(t)

	form := url.Values{}
	form.Set("full_name", "Grace Eze")
	form.Set("email", "grace@example.com")
	form.Set("amount", "100")

	req := httptest.NewRequest(http.MethodPost, "/stripe/create-session", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	svc.server.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "/donate?error=")

	rec = httptest.NewRecorder()
	svc.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stripe/success?session_id=cs_test_1", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/donate", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	svc.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook/stripe", strings.NewReader("{}")))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
