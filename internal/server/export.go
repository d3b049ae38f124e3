package server

import (
	"fmt"
	"net/http"
	"time"

	"globalcrusade/internal/export"
)

func (s *Service) handleExportDonors(w http.ResponseWriter, r *http.Request) {
	donors, err := s.donorRepo.DonorTotals(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to load donors for export")
		s.internalServerError(w)
		return
	}

	setCSVHeaders(w, "donors")
	if err := export.Donors(w, donors); err != nil {
		s.logger.WithError(err).Error("failed to write donors csv")
	}
}

func (s *Service) handleExportDonations(w http.ResponseWriter, r *http.Request) {
	donations, err := s.donationRepo.Donations(r.Context(), "")
	if err != nil {
		s.logger.WithError(err).Error("failed to load donations for export")
		s.internalServerError(w)
		return
	}

	setCSVHeaders(w, "donations")
	if err := export.Donations(w, donations); err != nil {
		s.logger.WithError(err).Error("failed to write donations csv")
	}
}

func setCSVHeaders(w http.ResponseWriter, name string) {
	filename := fmt.Sprintf("%s-%s.csv", name, time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}
