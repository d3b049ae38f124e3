// Package export writes dashboard data as CSV for download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"globalcrusade/internal/currency"
	"globalcrusade/pkg/types"
)

var donorHeader = []string{
	"Full Name", "Email", "Phone", "Country",
	"Total Donated", "Donations Count", "Joined Date",
}

var donationHeader = []string{
	"Date", "Donor Name", "Email", "Amount", "Currency",
	"Gateway", "Type", "Payment Method", "Status", "Reference",
}

// Donors writes one row per donor with their completed-donation totals.
func Donors(w io.Writer, donors []*types.DonorTotals) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(donorHeader); err != nil {
		return fmt.Errorf("write donors csv header: %w", err)
	}

	for _, d := range donors {
		phone := ""
		if d.Phone != nil {
			phone = *d.Phone
		}

		row := []string{
			d.FullName,
			d.Email,
			phone,
			d.Country,
			currency.CentsToDecimal(d.TotalDonatedCents),
			fmt.Sprintf("%d", d.DonationsCount),
			d.CreatedAt.Format("2006-01-02"),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write donors csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Donations writes one row per donation with the joined donor identity.
func Donations(w io.Writer, donations []*types.DonationWithDonor) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(donationHeader); err != nil {
		return fmt.Errorf("write donations csv header: %w", err)
	}

	for _, d := range donations {
		row := []string{
			d.CreatedAt.Format("2006-01-02 15:04"),
			d.DonorName,
			d.DonorEmail,
			currency.CentsToDecimal(d.AmountCents),
			string(d.Currency),
			d.PaymentGateway.Display(),
			d.DonationType.Display(),
			d.PaymentMethod.Display(),
			d.Status.Display(),
			d.Reference(),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write donations csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
