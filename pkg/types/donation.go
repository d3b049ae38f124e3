package types

import "time"

type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyNGN Currency = "NGN"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
)

func (c Currency) Valid() bool {
	switch c {
	case CurrencyUSD, CurrencyNGN, CurrencyEUR, CurrencyGBP:
		return true
	}
	return false
}

type DonationType string

const (
	DonationTypeOneTime DonationType = "one-time"
	DonationTypeMonthly DonationType = "monthly"
)

func (t DonationType) Display() string {
	if t == DonationTypeMonthly {
		return "Monthly"
	}
	return "One-Time"
}

type PaymentMethod string

const (
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodPaypal PaymentMethod = "paypal"
	PaymentMethodBank   PaymentMethod = "bank"
)

func (m PaymentMethod) Display() string {
	switch m {
	case PaymentMethodPaypal:
		return "PayPal"
	case PaymentMethodBank:
		return "Bank Transfer"
	}
	return "Card"
}

// RequiresGateway reports whether completion of a donation depends on a
// payment gateway confirming the charge. Bank transfers and PayPal.me
// redirects are recorded as completed at submission time.
func (m PaymentMethod) RequiresGateway() bool {
	return m == PaymentMethodCard
}

type PaymentGateway string

const (
	GatewayPaystack    PaymentGateway = "paystack"
	GatewayFlutterwave PaymentGateway = "flutterwave"
	GatewayStripe      PaymentGateway = "stripe"
)

func (g PaymentGateway) Display() string {
	switch g {
	case GatewayFlutterwave:
		return "Flutterwave"
	case GatewayStripe:
		return "Stripe"
	case GatewayPaystack:
		return "Paystack"
	}
	return string(g)
}

type DonationStatus string

const (
	DonationStatusPending   DonationStatus = "pending"
	DonationStatusCompleted DonationStatus = "completed"
	DonationStatusFailed    DonationStatus = "failed"
	DonationStatusRefunded  DonationStatus = "refunded"
)

func (s DonationStatus) Display() string {
	switch s {
	case DonationStatusPending:
		return "Pending"
	case DonationStatusCompleted:
		return "Completed"
	case DonationStatusFailed:
		return "Failed"
	case DonationStatusRefunded:
		return "Refunded"
	}
	return string(s)
}

// Donation is a single contribution event. Amounts are stored in the
// currency's minor unit (kobo, cents, pence).
type Donation struct {
	ID               string         `db:"id"`
	DonorID          string         `db:"donor_id"`
	AmountCents      int64          `db:"amount_cents"`
	Currency         Currency       `db:"currency"`
	DonationType     DonationType   `db:"donation_type"`
	PaymentMethod    PaymentMethod  `db:"payment_method"`
	PaymentGateway   PaymentGateway `db:"payment_gateway"`
	PaymentReference *string        `db:"payment_reference"`
	Message          *string        `db:"message"`
	Status           DonationStatus `db:"status"`
	NeedsReview      bool           `db:"needs_review"`
	CreatedAt        time.Time      `db:"created_at"`
	CompletedAt      *time.Time     `db:"completed_at"`
}

func (d *Donation) Reference() string {
	if d.PaymentReference == nil {
		return ""
	}
	return *d.PaymentReference
}

// DonationWithDonor carries the joined donor identity for list views
// and exports.
type DonationWithDonor struct {
	Donation

	DonorName  string `db:"donor_name"`
	DonorEmail string `db:"donor_email"`
}

// CurrencyTotal is a per-currency aggregate over completed donations.
type CurrencyTotal struct {
	Currency   Currency `db:"currency"`
	TotalCents int64    `db:"total_cents"`
	Count      int      `db:"count"`
}
