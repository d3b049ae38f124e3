package server

import (
	"io"
	"net/http"

	"globalcrusade/internal/gateway"
	"globalcrusade/pkg/types"
)

// Providers send small JSON payloads; anything bigger is not a webhook.
const maxWebhookBody = 1 << 20

// handlePaystackWebhook authenticates the HMAC signature before any of
// the payload is trusted. Bad signatures are rejected with 4xx and
// never processed.
func (s *Service) handlePaystackWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	gw, ok := s.gateways[types.GatewayPaystack]
	if !ok || !gw.VerifyWebhookSignature(body, r.Header.Get("X-Paystack-Signature")) {
		s.logger.Warn("rejected paystack webhook with invalid signature")
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	event, err := gateway.ParsePaystackEvent(body)
	if err != nil {
		s.logger.WithError(err).Warn("malformed paystack webhook payload")
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	if err := s.reconciler.HandleWebhook(r.Context(), event); err != nil {
		s.logger.WithError(err).Error("failed to process paystack webhook")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (s *Service) handleFlutterwaveWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	gw, ok := s.gateways[types.GatewayFlutterwave]
	if !ok || !gw.VerifyWebhookSignature(body, r.Header.Get("verif-hash")) {
		s.logger.Warn("rejected flutterwave webhook with invalid signature")
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	event, err := gateway.ParseFlutterwaveEvent(body)
	if err != nil {
		s.logger.WithError(err).Warn("malformed flutterwave webhook payload")
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	if err := s.reconciler.HandleWebhook(r.Context(), event); err != nil {
		s.logger.WithError(err).Error("failed to process flutterwave webhook")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (s *Service) handleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	if s.stripeGW == nil {
		http.Error(w, "not configured", http.StatusNotFound)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	event, sess, err := s.stripeGW.ParseWebhookEvent(body, r.Header.Get("Stripe-Signature"))
	if err != nil {
		s.logger.WithError(err).Warn("rejected stripe webhook")
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	// Stripe donations are created from the session itself, since the
	// webhook may land before the donor's success redirect.
	if event.Completed && sess != nil {
		if _, err := s.reconciler.RecordStripeCheckout(r.Context(), stripeCheckoutFromSession(sess)); err != nil {
			s.logger.WithError(err).WithField("session_id", sess.ID).
				Error("failed to process stripe webhook")
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
}
