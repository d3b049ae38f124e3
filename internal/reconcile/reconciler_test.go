package reconcile

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"globalcrusade/internal/gateway"
	"globalcrusade/pkg/types"
)

// fakeDB is an in-memory stand-in for the store repositories.
type fakeDB struct {
	mu         sync.Mutex
	donations  map[string]*types.Donation
	donors     map[string]*types.Donor
	prayers    []*types.PrayerRequest
	recomputes int
	nextID     int
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		donations: make(map[string]*types.Donation),
		donors:    make(map[string]*types.Donor),
	}
}

func (f *fakeDB) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s_%d", prefix, f.nextID)
}

func (f *fakeDB) CreateDonation(_ context.Context, donation *types.Donation) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	donation.ID = f.id("don")
	donation.CreatedAt = time.Now()
	cp := *donation
	f.donations[donation.ID] = &cp
	return nil
}

func (f *fakeDB) Donation(_ context.Context, donationID string) (*types.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	d, ok := f.donations[donationID]
	if !ok {
		return nil, types.ErrDonationNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDB) DonationByReference(_ context.Context, reference string) (*types.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, d := range f.donations {
		if d.PaymentReference != nil && *d.PaymentReference == reference {
			cp := *d
			return &cp, nil
		}
	}
	return nil, types.ErrDonationNotFound
}

func (f *fakeDB) SetPaymentReference(_ context.Context, donationID, reference string, gw types.PaymentGateway) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	d := f.donations[donationID]
	d.PaymentReference = &reference
	d.PaymentGateway = gw
	return nil
}

func (f *fakeDB) MarkCompleted(_ context.Context, donationID string, completedAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	d, ok := f.donations[donationID]
	if !ok {
		return false, types.ErrDonationNotFound
	}
	if d.Status == types.DonationStatusCompleted || d.Status == types.DonationStatusRefunded {
		return false, nil
	}
	d.Status = types.DonationStatusCompleted
	d.CompletedAt = &completedAt
	return true, nil
}

func (f *fakeDB) MarkFailed(_ context.Context, donationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if d := f.donations[donationID]; d.Status == types.DonationStatusPending {
		d.Status = types.DonationStatusFailed
	}
	return nil
}

func (f *fakeDB) MarkRefunded(_ context.Context, donationID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	d, ok := f.donations[donationID]
	if !ok || d.Status != types.DonationStatusCompleted {
		return false, nil
	}
	d.Status = types.DonationStatusRefunded
	return true, nil
}

func (f *fakeDB) FlagNeedsReview(_ context.Context, donationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.donations[donationID].NeedsReview = true
	return nil
}

func (f *fakeDB) CountForDonor(_ context.Context, donorID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for _, d := range f.donations {
		if d.DonorID == donorID {
			count++
		}
	}
	return count, nil
}

func (f *fakeDB) CompletedCountForDonor(_ context.Context, donorID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for _, d := range f.donations {
		if d.DonorID == donorID && d.Status == types.DonationStatusCompleted {
			count++
		}
	}
	return count, nil
}

func (f *fakeDB) DeleteDonation(_ context.Context, donationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.donations, donationID)
	return nil
}

func (f *fakeDB) UpsertDonor(_ context.Context, donor *types.Donor) (*types.Donor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.donors {
		if existing.Email == donor.Email {
			existing.FullName = donor.FullName
			cp := *existing
			return &cp, nil
		}
	}

	donor.ID = f.id("dnr")
	donor.CreatedAt = time.Now()
	cp := *donor
	f.donors[donor.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeDB) Donor(_ context.Context, donorID string) (*types.Donor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	d, ok := f.donors[donorID]
	if !ok {
		return nil, types.ErrDonorNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDB) DeleteDonor(_ context.Context, donorID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.donors, donorID)
	return nil
}

func (f *fakeDB) Recompute(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.recomputes++
	return nil
}

func (f *fakeDB) CreatePrayerRequest(_ context.Context, prayer *types.PrayerRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prayer.ID = f.id("pr")
	prayer.CreatedAt = time.Now()
	cp := *prayer
	f.prayers = append(f.prayers, &cp)
	return nil
}

func (f *fakeDB) ForDonation(_ context.Context, donationID string) (*types.PrayerRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, p := range f.prayers {
		if p.DonationID != nil && *p.DonationID == donationID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, types.ErrPrayerNotFound
}

type notification struct {
	donation  *types.Donation
	prayer    *types.PrayerRequest
	firstTime bool
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []notification
}

func (f *fakeNotifier) DonationEmails(_ context.Context, donation *types.Donation, _ *types.Donor, prayer *types.PrayerRequest, firstTime bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, notification{donation: donation, prayer: prayer, firstTime: firstTime})
}

type fakeGateway struct {
	name         types.PaymentGateway
	initResult   *gateway.InitResult
	verifyResult *gateway.VerifyResult
	verifyErr    error
	verifiedWith []string
}

func (f *fakeGateway) Name() types.PaymentGateway { return f.name }

func (f *fakeGateway) Initialize(_ context.Context, req gateway.InitRequest) (*gateway.InitResult, error) {
	if f.initResult != nil {
		return f.initResult, nil
	}
	return &gateway.InitResult{
		RedirectURL: "https://checkout.example/" + req.Reference,
		Reference:   req.Reference,
	}, nil
}

func (f *fakeGateway) Verify(_ context.Context, reference string) (*gateway.VerifyResult, error) {
	f.verifiedWith = append(f.verifiedWith, reference)
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return f.verifyResult, nil
}

func (f *fakeGateway) VerifyWebhookSignature([]byte, string) bool { return true }

func testReconciler(db *fakeDB, notifier *fakeNotifier, gateways map[types.PaymentGateway]gateway.Gateway) *Reconciler {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return New(db, db, db, db, notifier, gateways, "https://giving.example.org", logger)
}

func bankForm(amount string) *types.DonationForm {
	return &types.DonationForm{
		QuickName:     "Adaeze Obi",
		QuickEmail:    "adaeze@example.com",
		Country:       "Nigeria",
		Amount:        amount,
		PaymentMethod: "bank",
	}
}

func TestCreateDonationBankAutoCompletes(t *testing.T) {
	db := newFakeDB()
	notifier := &fakeNotifier{}
	r := testReconciler(db, notifier, nil)

	donation, donor, err := r.CreateDonation(context.Background(), bankForm("5000"))
	require.NoError(t, err)

	assert.Equal(t, types.DonationStatusCompleted, donation.Status)
	assert.NotNil(t, donation.CompletedAt)
	assert.Equal(t, types.CurrencyNGN, donation.Currency)
	assert.Equal(t, int64(500000), donation.AmountCents)
	assert.Equal(t, "adaeze@example.com", donor.Email)
	assert.Equal(t, 1, db.recomputes)

	require.Len(t, notifier.calls, 1)
	assert.True(t, notifier.calls[0].firstTime)
}

func TestCreateDonationCardStaysPending(t *testing.T) {
	db := newFakeDB()
	notifier := &fakeNotifier{}
	r := testReconciler(db, notifier, nil)

	form := &types.DonationForm{
		FullName:       "John Mark",
		Email:          "john@example.com",
		Country:        "United States",
		Amount:         "250.50",
		PaymentMethod:  "card",
		PaymentGateway: "paystack",
	}

	donation, _, err := r.CreateDonation(context.Background(), form)
	require.NoError(t, err)

	assert.Equal(t, types.DonationStatusPending, donation.Status)
	assert.Nil(t, donation.CompletedAt)
	assert.Equal(t, types.CurrencyUSD, donation.Currency)
	assert.Equal(t, int64(25050), donation.AmountCents)
	assert.Empty(t, notifier.calls)
	assert.Zero(t, db.recomputes)
}

func TestCreateDonationRecordsPrayerRequest(t *testing.T) {
	db := newFakeDB()
	notifier := &fakeNotifier{}
	r := testReconciler(db, notifier, nil)

	form := bankForm("5000")
	form.Message = "Please pray for my family"

	donation, _, err := r.CreateDonation(context.Background(), form)
	require.NoError(t, err)

	require.Len(t, db.prayers, 1)
	assert.Equal(t, "Please pray for my family", db.prayers[0].RequestText)
	require.NotNil(t, db.prayers[0].DonationID)
	assert.Equal(t, donation.ID, *db.prayers[0].DonationID)

	require.Len(t, notifier.calls, 1)
	require.NotNil(t, notifier.calls[0].prayer)
}

func TestCreateDonationValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*types.DonationForm)
	}{
		{"missing name", func(f *types.DonationForm) { f.QuickName = "" }},
		{"bad email", func(f *types.DonationForm) { f.QuickEmail = "not-an-email" }},
		{"zero amount", func(f *types.DonationForm) { f.Amount = "0" }},
		{"negative amount", func(f *types.DonationForm) { f.Amount = "-5" }},
		{"unparseable amount", func(f *types.DonationForm) { f.Amount = "lots" }},
		{"unknown method", func(f *types.DonationForm) { f.PaymentMethod = "cheque" }},
		{"card without gateway", func(f *types.DonationForm) {
			f.PaymentMethod = "card"
			f.PaymentGateway = ""
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := newFakeDB()
			r := testReconciler(db, &fakeNotifier{}, nil)

			form := bankForm("100")
			tc.mutate(form)

			_, _, err := r.CreateDonation(context.Background(), form)
			require.Error(t, err)
			assert.True(t, types.IsValidation(err))
			assert.Empty(t, db.donations)
		})
	}
}

func TestInitializePaymentSetsReference(t *testing.T) {
	db := newFakeDB()
	gw := &fakeGateway{name: types.GatewayPaystack}
	r := testReconciler(db, &fakeNotifier{}, map[types.PaymentGateway]gateway.Gateway{
		types.GatewayPaystack: gw,
	})

	form := &types.DonationForm{
		FullName:       "John Mark",
		Email:          "john@example.com",
		Amount:         "100",
		PaymentMethod:  "card",
		PaymentGateway: "paystack",
	}
	donation, _, err := r.CreateDonation(context.Background(), form)
	require.NoError(t, err)

	result, err := r.InitializePayment(context.Background(), donation.ID)
	require.NoError(t, err)

	assert.Contains(t, result.Reference, "DON-"+donation.ID)
	assert.NotEmpty(t, result.RedirectURL)

	stored, err := db.Donation(context.Background(), donation.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Reference, stored.Reference())
}

func verifiedDonation(t *testing.T, db *fakeDB, notifier *fakeNotifier, gw *fakeGateway) *types.Donation {
	t.Helper()

	r := testReconciler(db, notifier, map[types.PaymentGateway]gateway.Gateway{gw.name: gw})

	form := &types.DonationForm{
		FullName:       "John Mark",
		Email:          "john@example.com",
		Amount:         "100",
		PaymentMethod:  "card",
		PaymentGateway: string(gw.name),
	}
	donation, _, err := r.CreateDonation(context.Background(), form)
	require.NoError(t, err)

	_, err = r.InitializePayment(context.Background(), donation.ID)
	require.NoError(t, err)

	stored, err := db.Donation(context.Background(), donation.ID)
	require.NoError(t, err)
	return stored
}

func TestVerifyCallbackCompletesOnce(t *testing.T) {
	db := newFakeDB()
	notifier := &fakeNotifier{}
	gw := &fakeGateway{name: types.GatewayPaystack}
	r := testReconciler(db, notifier, map[types.PaymentGateway]gateway.Gateway{
		types.GatewayPaystack: gw,
	})

	donation := verifiedDonation(t, db, notifier, gw)
	gw.verifyResult = &gateway.VerifyResult{
		Outcome:         gateway.OutcomeSuccess,
		PaidAmountCents: donation.AmountCents,
		Reference:       donation.Reference(),
	}

	params := CallbackParams{Reference: donation.Reference()}

	first, err := r.VerifyCallback(context.Background(), donation.ID, params)
	require.NoError(t, err)
	assert.Equal(t, types.DonationStatusCompleted, first.Status)
	require.NotNil(t, first.CompletedAt)

	// The second delivery of the same callback is a no-op.
	second, err := r.VerifyCallback(context.Background(), donation.ID, params)
	require.NoError(t, err)
	assert.Equal(t, types.DonationStatusCompleted, second.Status)
	assert.Equal(t, first.CompletedAt.Unix(), second.CompletedAt.Unix())

	assert.Len(t, notifier.calls, 1)
	assert.True(t, notifier.calls[0].firstTime)
	// Once verified, later callbacks never reach the gateway again.
	assert.Len(t, gw.verifiedWith, 1)
}

func TestVerifyCallbackWebhookRace(t *testing.T) {
	db := newFakeDB()
	notifier := &fakeNotifier{}
	gw := &fakeGateway{name: types.GatewayPaystack}
	r := testReconciler(db, notifier, map[types.PaymentGateway]gateway.Gateway{
		types.GatewayPaystack: gw,
	})

	donation := verifiedDonation(t, db, notifier, gw)
	gw.verifyResult = &gateway.VerifyResult{
		Outcome:         gateway.OutcomeSuccess,
		PaidAmountCents: donation.AmountCents,
		Reference:       donation.Reference(),
	}

	_, err := r.VerifyCallback(context.Background(), donation.ID, CallbackParams{Reference: donation.Reference()})
	require.NoError(t, err)

	// The webhook for the same charge arrives after the callback.
	err = r.HandleWebhook(context.Background(), &gateway.WebhookEvent{
		Gateway:     types.GatewayPaystack,
		Type:        "charge.success",
		Completed:   true,
		Reference:   donation.Reference(),
		AmountCents: donation.AmountCents,
	})
	require.NoError(t, err)

	assert.Len(t, notifier.calls, 1)
}

func TestVerifyCallbackAmountMismatchFlagsReview(t *testing.T) {
	db := newFakeDB()
	notifier := &fakeNotifier{}
	gw := &fakeGateway{name: types.GatewayPaystack}
	r := testReconciler(db, notifier, map[types.PaymentGateway]gateway.Gateway{
		types.GatewayPaystack: gw,
	})

	donation := verifiedDonation(t, db, notifier, gw)
	gw.verifyResult = &gateway.VerifyResult{
		Outcome:         gateway.OutcomeSuccess,
		PaidAmountCents: donation.AmountCents - 5000,
		Reference:       donation.Reference(),
	}

	out, err := r.VerifyCallback(context.Background(), donation.ID, CallbackParams{Reference: donation.Reference()})
	require.NoError(t, err)

	assert.Equal(t, types.DonationStatusCompleted, out.Status)
	assert.True(t, out.NeedsReview)
	assert.Len(t, notifier.calls, 1)
}

func TestVerifyCallbackSmallDriftTolerated(t *testing.T) {
	db := newFakeDB()
	notifier := &fakeNotifier{}
	gw := &fakeGateway{name: types.GatewayPaystack}
	r := testReconciler(db, notifier, map[types.PaymentGateway]gateway.Gateway{
		types.GatewayPaystack: gw,
	})

	donation := verifiedDonation(t, db, notifier, gw)
	gw.verifyResult = &gateway.VerifyResult{
		Outcome:         gateway.OutcomeSuccess,
		PaidAmountCents: donation.AmountCents + amountToleranceCents,
		Reference:       donation.Reference(),
	}

	out, err := r.VerifyCallback(context.Background(), donation.ID, CallbackParams{Reference: donation.Reference()})
	require.NoError(t, err)

	assert.Equal(t, types.DonationStatusCompleted, out.Status)
	assert.False(t, out.NeedsReview)
}

func TestVerifyCallbackFailureMarksFailed(t *testing.T) {
	db := newFakeDB()
	notifier := &fakeNotifier{}
	gw := &fakeGateway{name: types.GatewayPaystack}
	r := testReconciler(db, notifier, map[types.PaymentGateway]gateway.Gateway{
		types.GatewayPaystack: gw,
	})

	donation := verifiedDonation(t, db, notifier, gw)
	gw.verifyResult = &gateway.VerifyResult{
		Outcome:   gateway.OutcomeFailed,
		RawStatus: "failed",
	}

	out, err := r.VerifyCallback(context.Background(), donation.ID, CallbackParams{Reference: donation.Reference()})
	require.NoError(t, err)

	assert.Equal(t, types.DonationStatusFailed, out.Status)
	assert.Empty(t, notifier.calls)
}

func TestVerifyCallbackFlutterwaveReferenceMismatch(t *testing.T) {
	db := newFakeDB()
	notifier := &fakeNotifier{}
	gw := &fakeGateway{name: types.GatewayFlutterwave}
	r := testReconciler(db, notifier, map[types.PaymentGateway]gateway.Gateway{
		types.GatewayFlutterwave: gw,
	})

	donation := verifiedDonation(t, db, notifier, gw)
	gw.verifyResult = &gateway.VerifyResult{
		Outcome:         gateway.OutcomeSuccess,
		PaidAmountCents: donation.AmountCents,
		Reference:       "DON-someone-elses-payment",
	}

	_, err := r.VerifyCallback(context.Background(), donation.ID, CallbackParams{TransactionID: "12345"})
	require.Error(t, err)

	stored, err := db.Donation(context.Background(), donation.ID)
	require.NoError(t, err)
	assert.Equal(t, types.DonationStatusPending, stored.Status)
}

func TestHandleWebhookUnknownReference(t *testing.T) {
	db := newFakeDB()
	notifier := &fakeNotifier{}
	r := testReconciler(db, notifier, nil)

	err := r.HandleWebhook(context.Background(), &gateway.WebhookEvent{
		Gateway:   types.GatewayPaystack,
		Type:      "charge.success",
		Completed: true,
		Reference: "DON-nope-123",
	})
	require.NoError(t, err)
	assert.Empty(t, notifier.calls)
}

func TestHandleWebhookIgnoresNonCompletionEvents(t *testing.T) {
	db := newFakeDB()
	notifier := &fakeNotifier{}
	gw := &fakeGateway{name: types.GatewayPaystack}
	r := testReconciler(db, notifier, map[types.PaymentGateway]gateway.Gateway{
		types.GatewayPaystack: gw,
	})

	donation := verifiedDonation(t, db, notifier, gw)

	err := r.HandleWebhook(context.Background(), &gateway.WebhookEvent{
		Gateway:   types.GatewayPaystack,
		Type:      "charge.dispute.create",
		Completed: false,
		Reference: donation.Reference(),
	})
	require.NoError(t, err)

	stored, err := db.Donation(context.Background(), donation.ID)
	require.NoError(t, err)
	assert.Equal(t, types.DonationStatusPending, stored.Status)
}

func TestRecordStripeCheckoutDeduplicates(t *testing.T) {
	db := newFakeDB()
	notifier := &fakeNotifier{}
	r := testReconciler(db, notifier, nil)

	checkout := &StripeCheckout{
		SessionID:   "cs_test_abc123",
		Email:       "grace@example.com",
		Name:        "Grace Eze",
		Country:     "United Kingdom",
		AmountCents: 10000,
		Currency:    types.CurrencyGBP,
		Message:     "Pray for my exams",
	}

	first, err := r.RecordStripeCheckout(context.Background(), checkout)
	require.NoError(t, err)
	assert.Equal(t, types.DonationStatusCompleted, first.Status)
	assert.Equal(t, types.GatewayStripe, first.PaymentGateway)
	assert.Equal(t, "cs_test_abc123", first.Reference())

	// The webhook delivers the same session again.
	second, err := r.RecordStripeCheckout(context.Background(), checkout)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	assert.Len(t, db.donations, 1)
	assert.Len(t, db.prayers, 1)
	assert.Len(t, notifier.calls, 1)
}

func TestRecordStripeCheckoutRedirectWebhookRace(t *testing.T) {
	db := newFakeDB()
	notifier := &fakeNotifier{}
	r := testReconciler(db, notifier, nil)

	checkout := &StripeCheckout{
		SessionID:   "cs_test_race456",
		Email:       "sam@example.com",
		Name:        "Sam Adeyemi",
		Country:     "Nigeria",
		AmountCents: 250000,
		Currency:    types.CurrencyNGN,
	}

	// Success redirect and webhook deliver the same session at once.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = r.RecordStripeCheckout(context.Background(), checkout)
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	assert.Len(t, db.donations, 1)
	assert.Len(t, notifier.calls, 1)
	assert.Equal(t, 1, db.recomputes)
}

func TestManualVerifySendsNoEmails(t *testing.T) {
	db := newFakeDB()
	notifier := &fakeNotifier{}
	gw := &fakeGateway{name: types.GatewayPaystack}
	r := testReconciler(db, notifier, map[types.PaymentGateway]gateway.Gateway{
		types.GatewayPaystack: gw,
	})

	donation := verifiedDonation(t, db, notifier, gw)

	require.NoError(t, r.ManualVerify(context.Background(), donation.ID))

	stored, err := db.Donation(context.Background(), donation.ID)
	require.NoError(t, err)
	assert.Equal(t, types.DonationStatusCompleted, stored.Status)
	assert.Empty(t, notifier.calls)
	assert.Equal(t, 1, db.recomputes)
}

func TestMarkRefunded(t *testing.T) {
	db := newFakeDB()
	notifier := &fakeNotifier{}
	r := testReconciler(db, notifier, nil)

	donation, _, err := r.CreateDonation(context.Background(), bankForm("5000"))
	require.NoError(t, err)

	require.NoError(t, r.MarkRefunded(context.Background(), donation.ID))

	stored, err := db.Donation(context.Background(), donation.ID)
	require.NoError(t, err)
	assert.Equal(t, types.DonationStatusRefunded, stored.Status)

	// Refunding twice is rejected; only completed donations move.
	err = r.MarkRefunded(context.Background(), donation.ID)
	require.Error(t, err)
	assert.True(t, types.IsValidation(err))
}

func TestDeleteDonationCascadesDonor(t *testing.T) {
	db := newFakeDB()
	notifier := &fakeNotifier{}
	r := testReconciler(db, notifier, nil)

	donation, donor, err := r.CreateDonation(context.Background(), bankForm("5000"))
	require.NoError(t, err)

	require.NoError(t, r.DeleteDonation(context.Background(), donation.ID))

	assert.Empty(t, db.donations)
	_, err = db.Donor(context.Background(), donor.ID)
	assert.ErrorIs(t, err, types.ErrDonorNotFound)
}

func TestDeleteDonationKeepsDonorWithOthers(t *testing.T) {
	db := newFakeDB()
	notifier := &fakeNotifier{}
	r := testReconciler(db, notifier, nil)

	first, donor, err := r.CreateDonation(context.Background(), bankForm("5000"))
	require.NoError(t, err)
	_, _, err = r.CreateDonation(context.Background(), bankForm("2000"))
	require.NoError(t, err)

	require.NoError(t, r.DeleteDonation(context.Background(), first.ID))

	assert.Len(t, db.donations, 1)
	_, err = db.Donor(context.Background(), donor.ID)
	require.NoError(t, err)
}
