package server

import (
	"net/http"
	"strings"

	stripe "github.com/stripe/stripe-go/v84"

	"globalcrusade/internal/currency"
	"globalcrusade/internal/gateway"
	"globalcrusade/internal/reconcile"
	"globalcrusade/pkg/types"
)

// handleStripeCreateSession starts a Stripe Checkout. No donation row
// exists yet; the donor details travel in the session metadata and the
// record is created once Stripe reports the session paid.
func (s *Service) handleStripeCreateSession(w http.ResponseWriter, r *http.Request) {
	if s.stripeGW == nil {
		s.redirectDonateWithError(w, r, "card payments are temporarily unavailable")
		return
	}

	if err := r.ParseForm(); err != nil {
		s.redirectDonateWithError(w, r, "invalid form payload")
		return
	}

	var donationForm types.DonationForm
	if err := decoder.Decode(&donationForm, r.PostForm); err != nil {
		s.logger.WithError(err).Error("failed to decode stripe donation form")
		s.redirectDonateWithError(w, r, "invalid form payload")
		return
	}

	name := strings.TrimSpace(donationForm.DonorName())
	email := strings.TrimSpace(donationForm.DonorEmail())
	if name == "" || email == "" || !strings.Contains(email, "@") {
		s.redirectDonateWithError(w, r, "name and a valid email are required")
		return
	}

	amountCents, err := currency.ParseAmount(donationForm.Amount)
	if err != nil || amountCents <= 0 {
		s.redirectDonateWithError(w, r, "a positive donation amount is required")
		return
	}

	code := types.Currency(strings.ToUpper(donationForm.Currency))
	if !code.Valid() {
		code = currency.Resolve(amountCents, types.PaymentMethodCard, donationForm.Country, email)
	}

	donationType := types.DonationType(donationForm.DonationType)
	if donationType != types.DonationTypeMonthly {
		donationType = types.DonationTypeOneTime
	}

	result, err := s.stripeGW.Initialize(r.Context(), gateway.InitRequest{
		Email:       email,
		Name:        name,
		AmountCents: amountCents,
		Currency:    code,
		CallbackURL: strings.TrimSuffix(s.config.SiteURL, "/") + "/stripe/success",
		Metadata: map[string]string{
			"donor_name":    name,
			"donor_phone":   strings.TrimSpace(donationForm.Phone),
			"donor_country": strings.TrimSpace(donationForm.Country),
			"donation_type": string(donationType),
			"message":       strings.TrimSpace(donationForm.Message),
		},
	})
	if err != nil {
		s.logger.WithError(err).Error("failed to create stripe checkout session")
		s.redirectDonateWithError(w, r, "could not reach the payment provider, please try again")
		return
	}

	http.Redirect(w, r, result.RedirectURL, http.StatusSeeOther)
}

func (s *Service) handleStripeSuccess(w http.ResponseWriter, r *http.Request) {
	if s.stripeGW == nil {
		http.Redirect(w, r, "/donate", http.StatusSeeOther)
		return
	}

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		http.Redirect(w, r, "/donate", http.StatusSeeOther)
		return
	}

	sess, err := s.stripeGW.RetrieveCheckout(r.Context(), sessionID)
	if err != nil {
		s.logger.WithError(err).Error("failed to retrieve stripe session")
		s.redirectDonateWithError(w, r, "could not confirm your payment, please contact us")
		return
	}

	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		s.redirectDonateWithError(w, r, "your payment is still processing, we will email your receipt once confirmed")
		return
	}

	donation, err := s.reconciler.RecordStripeCheckout(r.Context(), stripeCheckoutFromSession(sess))
	if err != nil {
		s.logger.WithError(err).WithField("session_id", sessionID).
			Error("failed to record stripe donation")
		s.redirectDonateWithError(w, r, "could not record your donation, please contact us")
		return
	}

	http.Redirect(w, r, "/donate/success/"+donation.ID, http.StatusSeeOther)
}

func (s *Service) handleStripeCancel(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, "page.stripe-cancel", struct{ Title string }{Title: "Payment Cancelled"})
}

func stripeCheckoutFromSession(sess *stripe.CheckoutSession) *reconcile.StripeCheckout {
	email := ""
	if sess.CustomerEmail != "" {
		email = sess.CustomerEmail
	} else if sess.CustomerDetails != nil {
		email = sess.CustomerDetails.Email
	}

	return &reconcile.StripeCheckout{
		SessionID:    sess.ID,
		Email:        email,
		Name:         sess.Metadata["donor_name"],
		Phone:        sess.Metadata["donor_phone"],
		Country:      sess.Metadata["donor_country"],
		AmountCents:  sess.AmountTotal,
		Currency:     types.Currency(strings.ToUpper(string(sess.Currency))),
		DonationType: types.DonationType(sess.Metadata["donation_type"]),
		Message:      sess.Metadata["message"],
	}
}
