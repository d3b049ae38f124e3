package server

import (
	"errors"
	"net/http"
	"net/url"

	"globalcrusade/internal/currency"
	"globalcrusade/pkg/types"
)

type DonatePageData struct {
	Title       string
	Error       string
	Notice      string
	Stats       *types.CrusadeStats
	Testimonies []*types.Testimony
	Flyers      []*types.CrusadeFlyer

	PaystackPublicKey    string
	FlutterwavePublicKey string
	StripePublicKey      string
	PaypalMeUsername     string
}

func (s *Service) handleGetDonate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := s.statsRepo.Stats(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to load crusade stats")
		s.internalServerError(w)
		return
	}

	testimonies, err := s.testimonyRepo.ActiveTestimonies(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to load testimonies")
		testimonies = nil
	}

	flyers, err := s.flyerRepo.ActiveCrusadeFlyers(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to load crusade flyers")
		flyers = nil
	}

	s.renderPage(w, "page.donate", DonatePageData{
		Title:       "Give",
		Error:       r.URL.Query().Get("error"),
		Notice:      r.URL.Query().Get("notice"),
		Stats:       stats,
		Testimonies: testimonies,
		Flyers:      flyers,

		PaystackPublicKey:    s.config.PaystackPublicKey,
		FlutterwavePublicKey: s.config.FlutterwavePublicKey,
		StripePublicKey:      s.config.StripePublicKey,
		PaypalMeUsername:     s.config.PaypalMeUsername,
	})
}

func (s *Service) handlePostDonate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		s.redirectDonateWithError(w, r, "invalid form payload")
		return
	}

	var donationForm types.DonationForm
	if err := decoder.Decode(&donationForm, r.PostForm); err != nil {
		s.logger.WithError(err).Error("failed to decode donation form")
		s.redirectDonateWithError(w, r, "invalid form payload")
		return
	}

	donation, _, err := s.reconciler.CreateDonation(ctx, &donationForm)
	if err != nil {
		if types.IsValidation(err) {
			s.redirectDonateWithError(w, r, err.Error())
			return
		}
		s.logger.WithError(err).Error("failed to create donation")
		s.redirectDonateWithError(w, r, "something went wrong, please try again")
		return
	}

	switch donation.PaymentMethod {
	case types.PaymentMethodBank:
		http.Redirect(w, r, "/donate/bank/"+donation.ID, http.StatusSeeOther)
	case types.PaymentMethodPaypal:
		http.Redirect(w, r, "/donate/paypal/"+donation.ID, http.StatusSeeOther)
	default:
		s.startGatewayCheckout(w, r, donation.ID)
	}
}

// startGatewayCheckout initializes the card checkout and sends the
// donor to the provider's payment page.
func (s *Service) startGatewayCheckout(w http.ResponseWriter, r *http.Request, donationID string) {
	result, err := s.reconciler.InitializePayment(r.Context(), donationID)
	if err != nil {
		s.logger.WithError(err).WithField("donation_id", donationID).
			Error("failed to initialize payment")
		s.redirectDonateWithError(w, r, "could not reach the payment provider, please try again")
		return
	}

	http.Redirect(w, r, result.RedirectURL, http.StatusSeeOther)
}

func (s *Service) handleDonationSuccess(w http.ResponseWriter, r *http.Request) {
	donationID := r.PathValue("donationID")

	donation, err := s.donationRepo.Donation(r.Context(), donationID)
	if err != nil {
		if errors.Is(err, types.ErrDonationNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.WithError(err).Error("failed to load donation for success page")
		s.internalServerError(w)
		return
	}

	donor, err := s.donorRepo.Donor(r.Context(), donation.DonorID)
	if err != nil {
		s.logger.WithError(err).Error("failed to load donor for success page")
		s.internalServerError(w)
		return
	}

	s.renderPage(w, "page.donation-success", DonationResultPageData{
		Title:    "Thank You",
		Donation: donation,
		Donor:    donor,
	})
}

type DonationResultPageData struct {
	Title    string
	Donation *types.Donation
	Donor    *types.Donor
	Error    string
}

type BankConfirmationPageData struct {
	Title    string
	Donation *types.Donation
	Donor    *types.Donor

	BankName          string
	BankAccountNumber string
	BankAccountName   string
}

func (s *Service) handleBankConfirmation(w http.ResponseWriter, r *http.Request) {
	donationID := r.PathValue("donationID")

	donation, err := s.donationRepo.Donation(r.Context(), donationID)
	if err != nil {
		if errors.Is(err, types.ErrDonationNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.WithError(err).Error("failed to load donation for bank page")
		s.internalServerError(w)
		return
	}

	donor, err := s.donorRepo.Donor(r.Context(), donation.DonorID)
	if err != nil {
		s.logger.WithError(err).Error("failed to load donor for bank page")
		s.internalServerError(w)
		return
	}

	s.renderPage(w, "page.bank-confirmation", BankConfirmationPageData{
		Title:    "Bank Transfer Instructions",
		Donation: donation,
		Donor:    donor,

		BankName:          s.config.BankName,
		BankAccountNumber: s.config.BankAccountNumber,
		BankAccountName:   s.config.BankAccountName,
	})
}

// handlePaypalRedirect sends the donor to the ministry's PayPal.me
// page with the amount prefilled. The donation is already recorded as
// completed; PayPal.me offers no verification callback.
func (s *Service) handlePaypalRedirect(w http.ResponseWriter, r *http.Request) {
	donationID := r.PathValue("donationID")

	donation, err := s.donationRepo.Donation(r.Context(), donationID)
	if err != nil {
		if errors.Is(err, types.ErrDonationNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.WithError(err).Error("failed to load donation for paypal redirect")
		s.internalServerError(w)
		return
	}

	paypalURL := "https://paypal.me/" + url.PathEscape(s.config.PaypalMeUsername)
	if donation.Currency == types.CurrencyUSD {
		paypalURL += "/" + donationAmountPath(donation)
	}

	http.Redirect(w, r, paypalURL, http.StatusSeeOther)
}

func donationAmountPath(donation *types.Donation) string {
	return currency.CentsToDecimal(donation.AmountCents)
}

func (s *Service) redirectDonateWithError(w http.ResponseWriter, r *http.Request, msg string) {
	v := url.Values{}
	v.Set("error", msg)
	http.Redirect(w, r, "/donate?"+v.Encode(), http.StatusSeeOther)
}
