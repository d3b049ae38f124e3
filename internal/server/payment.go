package server

import (
	"errors"
	"net/http"

	"globalcrusade/internal/gateway"
	"globalcrusade/internal/reconcile"
	"globalcrusade/pkg/types"
)

func (s *Service) handleProcessPayment(w http.ResponseWriter, r *http.Request) {
	s.startGatewayCheckout(w, r, r.PathValue("donationID"))
}

// handleVerifyPayment is the return URL the donor lands on after
// checkout. The reconciler asks the gateway for the authoritative
// outcome before anything changes.
func (s *Service) handleVerifyPayment(w http.ResponseWriter, r *http.Request) {
	donationID := r.PathValue("donationID")
	query := r.URL.Query()

	params := reconcile.CallbackParams{
		Reference:     query.Get("reference"),
		TransactionID: query.Get("transaction_id"),
		TxRef:         query.Get("tx_ref"),
		SessionID:     query.Get("session_id"),
	}

	donation, err := s.reconciler.VerifyCallback(r.Context(), donationID, params)
	if err != nil {
		if errors.Is(err, types.ErrDonationNotFound) {
			http.NotFound(w, r)
			return
		}
		if errors.Is(err, gateway.ErrUnavailable) {
			s.redirectDonateWithError(w, r, "could not confirm your payment, please contact us")
			return
		}
		s.logger.WithError(err).WithField("donation_id", donationID).
			Error("failed to verify payment")
		s.redirectDonateWithError(w, r, "could not confirm your payment, please contact us")
		return
	}

	switch donation.Status {
	case types.DonationStatusCompleted:
		http.Redirect(w, r, "/donate/success/"+donation.ID, http.StatusSeeOther)
	case types.DonationStatusFailed:
		s.redirectDonateWithError(w, r, "your payment was not successful, please try again")
	default:
		// Still pending at the provider; the webhook settles it.
		s.redirectDonateWithError(w, r, "your payment is still processing, we will email your receipt once confirmed")
	}
}
