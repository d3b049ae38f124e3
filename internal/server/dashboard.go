package server

import (
	"errors"
	"net/http"
	"net/url"

	"globalcrusade/pkg/types"
)

type DashboardPageData struct {
	Title  string
	Notice string
	Error  string

	Stats             *types.CrusadeStats
	CurrencyTotals    []*types.CurrencyTotal
	PendingCount      int
	CompletedCount    int
	DonorCount        int
	UnansweredPrayers int
	NewsletterCount   int64
	RecentDonations   []*types.DonationWithDonor
	TopDonors         []*types.DonorTotals
	RecentPrayers     []*types.PrayerRequestWithDonor
}

func (s *Service) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := s.statsRepo.Stats(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to load crusade stats")
		s.internalServerError(w)
		return
	}

	currencyTotals, err := s.donationRepo.CurrencyTotals(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to load currency totals")
		s.internalServerError(w)
		return
	}

	pendingCount, err := s.donationRepo.CountByStatus(ctx, types.DonationStatusPending)
	if err != nil {
		s.logger.WithError(err).Error("failed to count pending donations")
		s.internalServerError(w)
		return
	}

	completedCount, err := s.donationRepo.CountByStatus(ctx, types.DonationStatusCompleted)
	if err != nil {
		s.logger.WithError(err).Error("failed to count completed donations")
		s.internalServerError(w)
		return
	}

	donorCount, err := s.donorRepo.Count(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to count donors")
		s.internalServerError(w)
		return
	}

	unanswered, err := s.prayerRepo.CountUnanswered(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to count unanswered prayers")
		s.internalServerError(w)
		return
	}

	newsletterCount, err := s.newsletterRepo.CountActive(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to count newsletter signups")
		s.internalServerError(w)
		return
	}

	recent, err := s.donationRepo.RecentDonations(ctx, 10)
	if err != nil {
		s.logger.WithError(err).Error("failed to load recent donations")
		s.internalServerError(w)
		return
	}

	topDonors, err := s.donorRepo.DonorTotals(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to load donor totals")
		s.internalServerError(w)
		return
	}
	if len(topDonors) > 5 {
		topDonors = topDonors[:5]
	}

	recentPrayers, err := s.prayerRepo.RecentPrayerRequests(ctx, 5)
	if err != nil {
		s.logger.WithError(err).Error("failed to load recent prayer requests")
		s.internalServerError(w)
		return
	}

	s.renderPage(w, "page.dashboard", DashboardPageData{
		Title:  "Dashboard",
		Notice: r.URL.Query().Get("notice"),
		Error:  r.URL.Query().Get("error"),

		Stats:             stats,
		CurrencyTotals:    currencyTotals,
		PendingCount:      pendingCount,
		CompletedCount:    completedCount,
		DonorCount:        donorCount,
		UnansweredPrayers: unanswered,
		NewsletterCount:   newsletterCount,
		RecentDonations:   recent,
		TopDonors:         topDonors,
		RecentPrayers:     recentPrayers,
	})
}

type AdminDonorsPageData struct {
	Title  string
	Donors []*types.DonorTotals
}

func (s *Service) handleAdminDonors(w http.ResponseWriter, r *http.Request) {
	donors, err := s.donorRepo.DonorTotals(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to load donors")
		s.internalServerError(w)
		return
	}

	s.renderPage(w, "page.admin-donors", AdminDonorsPageData{
		Title:  "Donors",
		Donors: donors,
	})
}

type AdminDonationsPageData struct {
	Title     string
	Notice    string
	Error     string
	Status    types.DonationStatus
	Donations []*types.DonationWithDonor
}

func (s *Service) handleAdminDonations(w http.ResponseWriter, r *http.Request) {
	status := types.DonationStatus(r.URL.Query().Get("status"))

	donations, err := s.donationRepo.Donations(r.Context(), status)
	if err != nil {
		s.logger.WithError(err).Error("failed to load donations")
		s.internalServerError(w)
		return
	}

	s.renderPage(w, "page.admin-donations", AdminDonationsPageData{
		Title:     "Donations",
		Notice:    r.URL.Query().Get("notice"),
		Error:     r.URL.Query().Get("error"),
		Status:    status,
		Donations: donations,
	})
}

func (s *Service) handleAdminDonationVerify(w http.ResponseWriter, r *http.Request) {
	donationID := r.PathValue("donationID")

	if err := s.reconciler.ManualVerify(r.Context(), donationID); err != nil {
		if errors.Is(err, types.ErrDonationNotFound) {
			s.redirectDonations(w, r, "error", "Donation not found.")
			return
		}
		s.logger.WithError(err).WithField("donation_id", donationID).
			Error("failed to manually verify donation")
		s.redirectDonations(w, r, "error", "Could not verify donation.")
		return
	}

	s.redirectDonations(w, r, "notice", "Donation marked completed.")
}

func (s *Service) handleAdminDonationRefund(w http.ResponseWriter, r *http.Request) {
	donationID := r.PathValue("donationID")

	if err := s.reconciler.MarkRefunded(r.Context(), donationID); err != nil {
		if types.IsValidation(err) {
			s.redirectDonations(w, r, "error", "Only completed donations can be refunded.")
			return
		}
		s.logger.WithError(err).WithField("donation_id", donationID).
			Error("failed to refund donation")
		s.redirectDonations(w, r, "error", "Could not mark donation refunded.")
		return
	}

	s.redirectDonations(w, r, "notice", "Donation marked refunded.")
}

func (s *Service) handleAdminDonationDelete(w http.ResponseWriter, r *http.Request) {
	donationID := r.PathValue("donationID")

	if err := s.reconciler.DeleteDonation(r.Context(), donationID); err != nil {
		if errors.Is(err, types.ErrDonationNotFound) {
			s.redirectDonations(w, r, "error", "Donation not found.")
			return
		}
		s.logger.WithError(err).WithField("donation_id", donationID).
			Error("failed to delete donation")
		s.redirectDonations(w, r, "error", "Could not delete donation.")
		return
	}

	s.redirectDonations(w, r, "notice", "Donation deleted.")
}

type AdminPrayersPageData struct {
	Title   string
	Notice  string
	Error   string
	Prayers []*types.PrayerRequestWithDonor
}

func (s *Service) handleAdminPrayers(w http.ResponseWriter, r *http.Request) {
	prayers, err := s.prayerRepo.PrayerRequests(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to load prayer requests")
		s.internalServerError(w)
		return
	}

	s.renderPage(w, "page.admin-prayers", AdminPrayersPageData{
		Title:   "Prayer Requests",
		Notice:  r.URL.Query().Get("notice"),
		Error:   r.URL.Query().Get("error"),
		Prayers: prayers,
	})
}

func (s *Service) handleAdminPrayerToggle(w http.ResponseWriter, r *http.Request) {
	prayerID := r.PathValue("prayerID")

	if err := s.prayerRepo.ToggleAnswered(r.Context(), prayerID); err != nil {
		if errors.Is(err, types.ErrPrayerNotFound) {
			http.Redirect(w, r, "/dashboard/prayers?error=Prayer+request+not+found.", http.StatusSeeOther)
			return
		}
		s.logger.WithError(err).WithField("prayer_id", prayerID).
			Error("failed to toggle prayer request")
		s.internalServerError(w)
		return
	}

	http.Redirect(w, r, "/dashboard/prayers", http.StatusSeeOther)
}

func (s *Service) redirectDonations(w http.ResponseWriter, r *http.Request, key, msg string) {
	v := url.Values{}
	v.Set(key, msg)
	http.Redirect(w, r, "/dashboard/donations?"+v.Encode(), http.StatusSeeOther)
}
