package types

import "time"

type PrayerRequest struct {
	ID          string     `db:"id"`
	DonorID     string     `db:"donor_id"`
	DonationID  *string    `db:"donation_id"`
	RequestText string     `db:"request_text"`
	IsAnswered  bool       `db:"is_answered"`
	CreatedAt   time.Time  `db:"created_at"`
	AnsweredAt  *time.Time `db:"answered_at"`
}

// PrayerRequestWithDonor carries joined donor and donation detail for
// the admin list view.
type PrayerRequestWithDonor struct {
	PrayerRequest

	DonorName           string    `db:"donor_name"`
	DonorEmail          string    `db:"donor_email"`
	DonationAmountCents *int64    `db:"donation_amount_cents"`
	DonationCurrency    *Currency `db:"donation_currency"`
}
