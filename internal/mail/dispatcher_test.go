package mail

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"globalcrusade/internal/utils"
	"globalcrusade/pkg/types"
)

type sentMail struct {
	to      string
	subject string
	body    string
}

type recordingMailer struct {
	sent    []sentMail
	failFor string // substring of subject that should fail
}

func (m *recordingMailer) Send(_ context.Context, to []string, subject, htmlBody string) error {
	if m.failFor != "" && strings.Contains(subject, m.failFor) {
		return errors.New("smtp: connection refused")
	}
	m.sent = append(m.sent, sentMail{to: to[0], subject: subject, body: htmlBody})
	return nil
}

func testDispatcher(mailer Mailer) *Dispatcher {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return NewDispatcher(mailer, logger, "admin@ministry.example", "https://giving.example.org/", BankDetails{
		Name:          "United Bank Africa PLC",
		AccountNumber: "1023888802",
		AccountName:   "Eternity Voice International Ministry",
	})
}

func testDonation(method types.PaymentMethod, donationType types.DonationType) (*types.Donation, *types.Donor) {
	donation := &types.Donation{
		ID:               "don_1",
		DonorID:          "dnr_1",
		AmountCents:      500000,
		Currency:         types.CurrencyNGN,
		DonationType:     donationType,
		PaymentMethod:    method,
		PaymentReference: utils.StringPtr("DON-don_1-1700000000"),
		Status:           types.DonationStatusCompleted,
		CreatedAt:        time.Date(2026, time.March, 14, 10, 30, 0, 0, time.UTC),
	}
	donor := &types.Donor{
		ID:       "dnr_1",
		FullName: "Adaeze Obi",
		Email:    "adaeze@example.com",
		Country:  "Nigeria",
	}
	return donation, donor
}

func subjects(sent []sentMail) []string {
	out := make([]string, 0, len(sent))
	for _, s := range sent {
		out = append(out, s.subject)
	}
	return out
}

func TestDonationEmailsBaseline(t *testing.T) {
	mailer := &recordingMailer{}
	d := testDispatcher(mailer)

	donation, donor := testDonation(types.PaymentMethodCard, types.DonationTypeOneTime)
	d.DonationEmails(context.Background(), donation, donor, nil, false)

	require.Len(t, mailer.sent, 2)
	assert.Equal(t, "adaeze@example.com", mailer.sent[0].to)
	assert.Contains(t, mailer.sent[0].subject, "Thank You for Your ₦5,000.00 Donation")
	assert.Equal(t, "admin@ministry.example", mailer.sent[1].to)
	assert.Contains(t, mailer.sent[1].subject, "New Donation: ₦5,000.00 from Adaeze Obi")
}

func TestDonationEmailsFirstTimeBankMonthly(t *testing.T) {
	mailer := &recordingMailer{}
	d := testDispatcher(mailer)

	donation, donor := testDonation(types.PaymentMethodBank, types.DonationTypeMonthly)
	prayer := &types.PrayerRequest{RequestText: "Pray for my family"}

	d.DonationEmails(context.Background(), donation, donor, prayer, true)

	// receipt, admin, welcome, bank instructions, monthly partner,
	// prayer confirmation
	require.Len(t, mailer.sent, 6)

	subs := subjects(mailer.sent)
	assert.Contains(t, subs, "Welcome to Our Ministry Family!")
	assert.Contains(t, subs, "Bank Transfer Details for Your ₦5,000.00 Donation")
	assert.Contains(t, subs, "Thank You for Your Monthly Partnership! (₦5,000.00)")
	assert.Contains(t, subs, "We Are Praying With You")

	for _, s := range mailer.sent {
		if strings.Contains(s.subject, "Bank Transfer") {
			assert.Contains(t, s.body, "United Bank Africa PLC")
			assert.Contains(t, s.body, "1023888802")
			assert.Contains(t, s.body, "DON-don_1")
		}
		if strings.Contains(s.subject, "Praying") {
			assert.Contains(t, s.body, "Pray for my family")
		}
	}
}

func TestDonationEmailsFailureIsolation(t *testing.T) {
	// The receipt send fails; everything else still goes out.
	mailer := &recordingMailer{failFor: "Thank You for Your"}
	d := testDispatcher(mailer)

	donation, donor := testDonation(types.PaymentMethodBank, types.DonationTypeOneTime)
	d.DonationEmails(context.Background(), donation, donor, nil, true)

	// admin, welcome, bank instructions survive
	require.Len(t, mailer.sent, 3)
	for _, s := range mailer.sent {
		assert.NotContains(t, s.subject, "Thank You for Your")
	}
}

func TestDonationEmailsNoAdminConfigured(t *testing.T) {
	mailer := &recordingMailer{}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	d := NewDispatcher(mailer, logger, "", "https://giving.example.org", BankDetails{})

	donation, donor := testDonation(types.PaymentMethodCard, types.DonationTypeOneTime)
	d.DonationEmails(context.Background(), donation, donor, nil, false)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "adaeze@example.com", mailer.sent[0].to)
}

func TestContactEmail(t *testing.T) {
	mailer := &recordingMailer{}
	d := testDispatcher(mailer)

	err := d.ContactEmail(context.Background(), &types.ContactForm{
		FirstName: "Grace",
		LastName:  "Eze",
		Email:     "grace@example.com",
		Subject:   "Crusade dates",
		Message:   "When is the next crusade in Lagos?",
	})
	require.NoError(t, err)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "admin@ministry.example", mailer.sent[0].to)
	assert.Equal(t, "Contact Form: Crusade dates", mailer.sent[0].subject)
	assert.Contains(t, mailer.sent[0].body, "grace@example.com")
	assert.Contains(t, mailer.sent[0].body, "When is the next crusade in Lagos?")
}

func TestContactEmailPropagatesFailure(t *testing.T) {
	mailer := &recordingMailer{failFor: "Contact Form"}
	d := testDispatcher(mailer)

	err := d.ContactEmail(context.Background(), &types.ContactForm{
		FirstName: "Grace",
		Email:     "grace@example.com",
		Subject:   "Hello",
		Message:   "Hi",
	})
	require.Error(t, err)
}
