package types

import "time"

// Donor is a unique supporter keyed by email address.
type Donor struct {
	ID        string    `db:"id"`
	FullName  string    `db:"full_name"`
	Email     string    `db:"email"`
	Phone     *string   `db:"phone"`
	Country   string    `db:"country"`
	CreatedAt time.Time `db:"created_at"`
}

// DonorTotals is a donor row joined with completed-donation aggregates.
type DonorTotals struct {
	Donor

	TotalDonatedCents int64 `db:"total_donated_cents"`
	DonationsCount    int   `db:"donations_count"`
}
