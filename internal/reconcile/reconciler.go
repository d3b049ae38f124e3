// Package reconcile owns the donation lifecycle: creating records from
// submitted forms, driving gateway checkouts, and settling the final
// status from callbacks and webhooks. All status transitions funnel
// through here so completion stays exactly-once no matter how many
// delivery paths race.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"globalcrusade/internal/currency"
	"globalcrusade/internal/gateway"
	"globalcrusade/internal/utils"
	"globalcrusade/pkg/types"
)

// amountToleranceCents absorbs rounding drift between what we charged
// and what the provider reports. Anything larger completes anyway but
// is flagged for admin review.
const amountToleranceCents = 100

type DonationStore interface {
	CreateDonation(ctx context.Context, donation *types.Donation) error
	Donation(ctx context.Context, donationID string) (*types.Donation, error)
	DonationByReference(ctx context.Context, reference string) (*types.Donation, error)
	SetPaymentReference(ctx context.Context, donationID, reference string, gateway types.PaymentGateway) error
	MarkCompleted(ctx context.Context, donationID string, completedAt time.Time) (bool, error)
	MarkFailed(ctx context.Context, donationID string) error
	MarkRefunded(ctx context.Context, donationID string) (bool, error)
	FlagNeedsReview(ctx context.Context, donationID string) error
	CountForDonor(ctx context.Context, donorID string) (int, error)
	CompletedCountForDonor(ctx context.Context, donorID string) (int, error)
	DeleteDonation(ctx context.Context, donationID string) error
}

type DonorStore interface {
	UpsertDonor(ctx context.Context, donor *types.Donor) (*types.Donor, error)
	Donor(ctx context.Context, donorID string) (*types.Donor, error)
	DeleteDonor(ctx context.Context, donorID string) error
}

type StatsStore interface {
	Recompute(ctx context.Context) error
}

type PrayerStore interface {
	CreatePrayerRequest(ctx context.Context, prayer *types.PrayerRequest) error
	ForDonation(ctx context.Context, donationID string) (*types.PrayerRequest, error)
}

// Notifier receives donation lifecycle emails. Implementations must
// swallow their own failures; a completed donation never rolls back
// because mail did not go out.
type Notifier interface {
	DonationEmails(ctx context.Context, donation *types.Donation, donor *types.Donor, prayer *types.PrayerRequest, firstTime bool)
}

type Reconciler struct {
	donations DonationStore
	donors    DonorStore
	stats     StatsStore
	prayers   PrayerStore
	notifier  Notifier
	gateways  map[types.PaymentGateway]gateway.Gateway
	siteURL   string
	logger    *logrus.Logger

	completions *keyedMutex
}

func New(
	donations DonationStore,
	donors DonorStore,
	stats StatsStore,
	prayers PrayerStore,
	notifier Notifier,
	gateways map[types.PaymentGateway]gateway.Gateway,
	siteURL string,
	logger *logrus.Logger,
) *Reconciler {
	return &Reconciler{
		donations:   donations,
		donors:      donors,
		stats:       stats,
		prayers:     prayers,
		notifier:    notifier,
		gateways:    gateways,
		siteURL:     strings.TrimSuffix(siteURL, "/"),
		logger:      logger,
		completions: newKeyedMutex(),
	}
}

// CreateDonation validates a submitted donation form, upserts the donor
// and records the donation. Bank transfers and PayPal donations are
// trust-based and complete immediately; card donations stay pending
// until a gateway confirms them.
func (r *Reconciler) CreateDonation(ctx context.Context, form *types.DonationForm) (*types.Donation, *types.Donor, error) {
	name := strings.TrimSpace(form.DonorName())
	email := strings.TrimSpace(form.DonorEmail())

	if name == "" || email == "" {
		return nil, nil, types.Invalid("name and email are required")
	}
	if !strings.Contains(email, "@") {
		return nil, nil, types.Invalid("a valid email address is required")
	}

	amountCents, err := currency.ParseAmount(form.Amount)
	if err != nil || amountCents <= 0 {
		return nil, nil, types.Invalid("a positive donation amount is required")
	}

	method := types.PaymentMethod(form.PaymentMethod)
	switch method {
	case types.PaymentMethodCard, types.PaymentMethodPaypal, types.PaymentMethodBank:
	default:
		return nil, nil, types.Invalid("unknown payment method")
	}

	donationType := types.DonationType(form.DonationType)
	if donationType != types.DonationTypeMonthly {
		donationType = types.DonationTypeOneTime
	}

	var paymentGateway types.PaymentGateway
	if method.RequiresGateway() {
		paymentGateway = types.PaymentGateway(form.PaymentGateway)
		switch paymentGateway {
		case types.GatewayPaystack, types.GatewayFlutterwave, types.GatewayStripe:
		default:
			return nil, nil, types.Invalid("unknown payment gateway")
		}
	}

	code := types.Currency(strings.ToUpper(form.Currency))
	if !code.Valid() {
		code = currency.Resolve(amountCents, method, form.Country, email)
	}

	donor, err := r.donors.UpsertDonor(ctx, &types.Donor{
		FullName: name,
		Email:    email,
		Phone:    utils.StringPtrOrNil(strings.TrimSpace(form.Phone)),
		Country:  strings.TrimSpace(form.Country),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to upsert donor: %w", err)
	}

	donation := &types.Donation{
		DonorID:        donor.ID,
		AmountCents:    amountCents,
		Currency:       code,
		DonationType:   donationType,
		PaymentMethod:  method,
		PaymentGateway: paymentGateway,
		Message:        utils.StringPtrOrNil(strings.TrimSpace(form.Message)),
		Status:         types.DonationStatusPending,
	}

	if method == types.PaymentMethodBank && form.TransactionReference != "" {
		donation.PaymentReference = utils.StringPtrOrNil(strings.TrimSpace(form.TransactionReference))
	}

	if !method.RequiresGateway() {
		now := time.Now()
		donation.Status = types.DonationStatusCompleted
		donation.CompletedAt = &now
	}

	if err := r.donations.CreateDonation(ctx, donation); err != nil {
		return nil, nil, fmt.Errorf("failed to create donation: %w", err)
	}

	var prayer *types.PrayerRequest
	if donation.Message != nil {
		prayer = &types.PrayerRequest{
			DonorID:     donor.ID,
			DonationID:  &donation.ID,
			RequestText: *donation.Message,
		}
		if err := r.prayers.CreatePrayerRequest(ctx, prayer); err != nil {
			r.logger.WithError(err).WithField("donation_id", donation.ID).
				Error("failed to record prayer request")
			prayer = nil
		}
	}

	if donation.Status == types.DonationStatusCompleted {
		if err := r.stats.Recompute(ctx); err != nil {
			r.logger.WithError(err).Error("failed to recompute stats")
		}
		r.notify(ctx, donation, donor, prayer)
	}

	return donation, donor, nil
}

// InitializePayment starts a gateway checkout for a pending card
// donation and returns the redirect the donor should follow.
func (r *Reconciler) InitializePayment(ctx context.Context, donationID string) (*gateway.InitResult, error) {
	donation, err := r.donations.Donation(ctx, donationID)
	if err != nil {
		return nil, err
	}

	if donation.Status != types.DonationStatusPending {
		return nil, types.Invalid("donation is not awaiting payment")
	}

	gw, ok := r.gateways[donation.PaymentGateway]
	if !ok {
		return nil, fmt.Errorf("no gateway configured for %q", donation.PaymentGateway)
	}

	donor, err := r.donors.Donor(ctx, donation.DonorID)
	if err != nil {
		return nil, err
	}

	result, err := gw.Initialize(ctx, gateway.InitRequest{
		Email:       donor.Email,
		Name:        donor.FullName,
		Phone:       utils.PtrString(donor.Phone),
		AmountCents: donation.AmountCents,
		Currency:    donation.Currency,
		CallbackURL: r.siteURL + "/payment/verify/" + donation.ID,
		Reference:   fmt.Sprintf("DON-%s-%d", donation.ID, time.Now().Unix()),
		Metadata:    map[string]string{"donation_id": donation.ID},
	})
	if err != nil {
		return nil, err
	}

	if err := r.donations.SetPaymentReference(ctx, donation.ID, result.Reference, donation.PaymentGateway); err != nil {
		return nil, err
	}

	return result, nil
}

// CallbackParams carries the provider-specific query parameters a donor
// returns with after checkout.
type CallbackParams struct {
	Reference     string // paystack: ?reference=
	TransactionID string // flutterwave: ?transaction_id=
	TxRef         string // flutterwave: ?tx_ref=
	SessionID     string // stripe: ?session_id=
}

// VerifyCallback settles a donation from the donor's return redirect by
// asking the gateway for the authoritative outcome. Safe to call any
// number of times; an already-completed donation is returned as is.
func (r *Reconciler) VerifyCallback(ctx context.Context, donationID string, params CallbackParams) (*types.Donation, error) {
	donation, err := r.donations.Donation(ctx, donationID)
	if err != nil {
		return nil, err
	}

	if donation.Status == types.DonationStatusCompleted ||
		donation.Status == types.DonationStatusRefunded {
		return donation, nil
	}

	gw, ok := r.gateways[donation.PaymentGateway]
	if !ok {
		return nil, fmt.Errorf("no gateway configured for %q", donation.PaymentGateway)
	}

	verifyKey := ""
	switch donation.PaymentGateway {
	case types.GatewayPaystack:
		verifyKey = params.Reference
		if verifyKey == "" {
			verifyKey = donation.Reference()
		}
	case types.GatewayFlutterwave:
		verifyKey = params.TransactionID
	case types.GatewayStripe:
		verifyKey = params.SessionID
	}
	if verifyKey == "" {
		return nil, types.Invalid("missing payment reference")
	}

	result, err := gw.Verify(ctx, verifyKey)
	if err != nil {
		return nil, err
	}

	// Flutterwave verification is keyed by its own transaction id, so
	// the tx_ref it reports must match the donation before we trust it.
	if donation.PaymentGateway == types.GatewayFlutterwave &&
		result.Reference != "" && result.Reference != donation.Reference() {
		return nil, fmt.Errorf("transaction reference mismatch for donation %s", donation.ID)
	}

	switch result.Outcome {
	case gateway.OutcomeSuccess:
		if err := r.complete(ctx, donation, result.PaidAmountCents, true); err != nil {
			return nil, err
		}
	case gateway.OutcomeFailed:
		if err := r.donations.MarkFailed(ctx, donation.ID); err != nil {
			return nil, err
		}
		r.logger.WithFields(logrus.Fields{
			"donation_id": donation.ID,
			"raw_status":  result.RawStatus,
		}).Info("donation failed at gateway")
	case gateway.OutcomePending:
		// Leave it; a webhook or a later visit settles it.
	}

	return r.donations.Donation(ctx, donation.ID)
}

// HandleWebhook settles a donation from a provider webhook delivery.
// The caller has already authenticated the payload. Unknown references
// are logged and dropped so providers stop retrying.
func (r *Reconciler) HandleWebhook(ctx context.Context, event *gateway.WebhookEvent) error {
	if !event.Completed {
		r.logger.WithFields(logrus.Fields{
			"gateway": event.Gateway,
			"type":    event.Type,
		}).Debug("ignoring non-completion webhook event")
		return nil
	}

	donation, err := r.donations.DonationByReference(ctx, event.Reference)
	if err != nil {
		if errors.Is(err, types.ErrDonationNotFound) {
			r.logger.WithFields(logrus.Fields{
				"gateway":   event.Gateway,
				"reference": event.Reference,
			}).Warn("webhook for unknown payment reference")
			return nil
		}
		return err
	}

	return r.complete(ctx, donation, event.AmountCents, true)
}

// StripeCheckout is the distilled view of a paid Stripe Checkout
// Session. The session id doubles as the payment reference.
type StripeCheckout struct {
	SessionID    string
	Email        string
	Name         string
	Phone        string
	Country      string
	AmountCents  int64
	Currency     types.Currency
	DonationType types.DonationType
	Message      string
}

// RecordStripeCheckout materializes a donation from a paid Stripe
// session. Stripe donations have no local record before checkout, and
// both the success redirect and the webhook deliver the same session,
// so creation is deduplicated by session id.
func (r *Reconciler) RecordStripeCheckout(ctx context.Context, checkout *StripeCheckout) (*types.Donation, error) {
	if checkout.SessionID == "" {
		return nil, types.Invalid("missing stripe session id")
	}

	unlock := r.completions.lock(checkout.SessionID)
	defer unlock()

	donation, err := r.donations.DonationByReference(ctx, checkout.SessionID)
	if err == nil {
		if err := r.completeLocked(ctx, donation, checkout.AmountCents, true); err != nil {
			return nil, err
		}
		return r.donations.Donation(ctx, donation.ID)
	}
	if !errors.Is(err, types.ErrDonationNotFound) {
		return nil, err
	}

	name := strings.TrimSpace(checkout.Name)
	if name == "" {
		name = "Anonymous Donor"
	}

	donor, err := r.donors.UpsertDonor(ctx, &types.Donor{
		FullName: name,
		Email:    strings.TrimSpace(checkout.Email),
		Phone:    utils.StringPtrOrNil(strings.TrimSpace(checkout.Phone)),
		Country:  strings.TrimSpace(checkout.Country),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert donor: %w", err)
	}

	donationType := checkout.DonationType
	if donationType != types.DonationTypeMonthly {
		donationType = types.DonationTypeOneTime
	}

	donation = &types.Donation{
		DonorID:          donor.ID,
		AmountCents:      checkout.AmountCents,
		Currency:         checkout.Currency,
		DonationType:     donationType,
		PaymentMethod:    types.PaymentMethodCard,
		PaymentGateway:   types.GatewayStripe,
		PaymentReference: &checkout.SessionID,
		Message:          utils.StringPtrOrNil(strings.TrimSpace(checkout.Message)),
		Status:           types.DonationStatusPending,
	}

	if err := r.donations.CreateDonation(ctx, donation); err != nil {
		return nil, fmt.Errorf("failed to create donation: %w", err)
	}

	if donation.Message != nil {
		prayer := &types.PrayerRequest{
			DonorID:     donor.ID,
			DonationID:  &donation.ID,
			RequestText: *donation.Message,
		}
		if err := r.prayers.CreatePrayerRequest(ctx, prayer); err != nil {
			r.logger.WithError(err).WithField("donation_id", donation.ID).
				Error("failed to record prayer request")
		}
	}

	if err := r.completeLocked(ctx, donation, checkout.AmountCents, true); err != nil {
		return nil, err
	}

	return r.donations.Donation(ctx, donation.ID)
}

// ManualVerify is the admin override that marks a donation completed
// without consulting a gateway. No emails go out for manual
// completions.
func (r *Reconciler) ManualVerify(ctx context.Context, donationID string) error {
	donation, err := r.donations.Donation(ctx, donationID)
	if err != nil {
		return err
	}

	return r.complete(ctx, donation, 0, false)
}

// MarkRefunded moves a completed donation to refunded and pulls it back
// out of the headline totals.
func (r *Reconciler) MarkRefunded(ctx context.Context, donationID string) error {
	ok, err := r.donations.MarkRefunded(ctx, donationID)
	if err != nil {
		return err
	}
	if !ok {
		return types.Invalid("only completed donations can be refunded")
	}

	return r.stats.Recompute(ctx)
}

// DeleteDonation removes a donation, cascading to the donor when this
// was their only donation.
func (r *Reconciler) DeleteDonation(ctx context.Context, donationID string) error {
	donation, err := r.donations.Donation(ctx, donationID)
	if err != nil {
		return err
	}

	if err := r.donations.DeleteDonation(ctx, donationID); err != nil {
		return err
	}

	remaining, err := r.donations.CountForDonor(ctx, donation.DonorID)
	if err != nil {
		return err
	}
	if remaining == 0 {
		if err := r.donors.DeleteDonor(ctx, donation.DonorID); err != nil {
			return err
		}
	}

	return r.stats.Recompute(ctx)
}

// complete transitions a donation to completed exactly once. The store
// guard is the source of truth; the keyed lock only narrows the race
// window so concurrent deliveries do not both reach the notify step.
func (r *Reconciler) complete(ctx context.Context, donation *types.Donation, paidAmountCents int64, sendEmails bool) error {
	key := donation.Reference()
	if key == "" {
		key = donation.ID
	}

	unlock := r.completions.lock(key)
	defer unlock()

	return r.completeLocked(ctx, donation, paidAmountCents, sendEmails)
}

// completeLocked is the body of complete. The keyed mutex is not
// reentrant, so callers already holding the reference key
// (RecordStripeCheckout) come in here directly.
func (r *Reconciler) completeLocked(ctx context.Context, donation *types.Donation, paidAmountCents int64, sendEmails bool) error {
	completed, err := r.donations.MarkCompleted(ctx, donation.ID, time.Now())
	if err != nil {
		return err
	}
	if !completed {
		return nil
	}

	if paidAmountCents > 0 {
		diff := paidAmountCents - donation.AmountCents
		if diff < 0 {
			diff = -diff
		}
		if diff > amountToleranceCents {
			r.logger.WithFields(logrus.Fields{
				"donation_id":    donation.ID,
				"expected_cents": donation.AmountCents,
				"paid_cents":     paidAmountCents,
			}).Warn("paid amount differs from donation amount")
			if err := r.donations.FlagNeedsReview(ctx, donation.ID); err != nil {
				r.logger.WithError(err).WithField("donation_id", donation.ID).
					Error("failed to flag donation for review")
			}
		}
	}

	if err := r.stats.Recompute(ctx); err != nil {
		r.logger.WithError(err).Error("failed to recompute stats")
	}

	if sendEmails {
		donor, err := r.donors.Donor(ctx, donation.DonorID)
		if err != nil {
			r.logger.WithError(err).WithField("donation_id", donation.ID).
				Error("failed to load donor for notifications")
			return nil
		}

		prayer, err := r.prayers.ForDonation(ctx, donation.ID)
		if err != nil && !errors.Is(err, types.ErrPrayerNotFound) {
			r.logger.WithError(err).WithField("donation_id", donation.ID).
				Error("failed to load prayer request for notifications")
		}

		r.notify(ctx, donation, donor, prayer)
	}

	return nil
}

func (r *Reconciler) notify(ctx context.Context, donation *types.Donation, donor *types.Donor, prayer *types.PrayerRequest) {
	count, err := r.donations.CompletedCountForDonor(ctx, donor.ID)
	if err != nil {
		r.logger.WithError(err).WithField("donor_id", donor.ID).
			Error("failed to count donor donations")
		count = 0
	}

	r.notifier.DonationEmails(ctx, donation, donor, prayer, count <= 1)
}
