package mail

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"globalcrusade/internal/currency"
	"globalcrusade/internal/utils"
	"globalcrusade/pkg/types"
)

// BankDetails are the transfer instructions included in bank-method
// emails.
type BankDetails struct {
	Name          string
	AccountNumber string
	AccountName   string
}

// Dispatcher decides which emails a donation produces and sends each
// one independently. A failed send is logged and never interrupts the
// rest, and never fails the donation.
type Dispatcher struct {
	mailer     Mailer
	logger     *logrus.Logger
	adminEmail string
	siteURL    string
	bank       BankDetails
}

func NewDispatcher(mailer Mailer, logger *logrus.Logger, adminEmail, siteURL string, bank BankDetails) *Dispatcher {
	return &Dispatcher{
		mailer:     mailer,
		logger:     logger,
		adminEmail: adminEmail,
		siteURL:    strings.TrimSuffix(siteURL, "/"),
		bank:       bank,
	}
}

type donationEmailData struct {
	DonorName       string
	DonorEmail      string
	DonorPhone      string
	DonorCountry    string
	FormattedAmount string
	CurrencyCode    types.Currency
	DonationID      string
	DonationDate    string
	DonationType    string
	PaymentMethod   string
	PaymentGateway  string
	TransactionID   string
	PrayerRequest   string
	FirstTime       bool
	WebsiteURL      string
	DashboardURL    string
	Bank            BankDetails
}

// DonationEmails sends every email a completed donation calls for:
// receipt and admin notification always, a welcome for first-time
// donors, transfer instructions for bank donations, a partner thank-you
// for monthly commitments, and a prayer confirmation when a request
// accompanied the gift.
func (d *Dispatcher) DonationEmails(ctx context.Context, donation *types.Donation, donor *types.Donor, prayer *types.PrayerRequest, firstTime bool) {
	data := donationEmailData{
		DonorName:       donor.FullName,
		DonorEmail:      donor.Email,
		DonorPhone:      utils.PtrString(donor.Phone),
		DonorCountry:    donor.Country,
		FormattedAmount: currency.FormatAmount(donation.AmountCents, donation.Currency),
		CurrencyCode:    donation.Currency,
		DonationID:      donation.ID,
		DonationDate:    donation.CreatedAt.Format("January 2, 2006 at 3:04 PM"),
		DonationType:    donation.DonationType.Display(),
		PaymentMethod:   donation.PaymentMethod.Display(),
		PaymentGateway:  donation.PaymentGateway.Display(),
		TransactionID:   donation.Reference(),
		FirstTime:       firstTime,
		WebsiteURL:      d.siteURL,
		DashboardURL:    d.siteURL + "/dashboard/donations",
		Bank:            d.bank,
	}
	if data.DonorPhone == "" {
		data.DonorPhone = "Not provided"
	}
	if data.TransactionID == "" {
		data.TransactionID = "Processing"
	}
	if prayer != nil {
		data.PrayerRequest = prayer.RequestText
	}

	d.send(ctx, donor.Email, "donation_receipt",
		fmt.Sprintf("Thank You for Your %s Donation!", data.FormattedAmount), data)

	if d.adminEmail != "" {
		d.send(ctx, d.adminEmail, "admin_notification",
			fmt.Sprintf("New Donation: %s from %s", data.FormattedAmount, donor.FullName), data)
	}

	if firstTime {
		d.send(ctx, donor.Email, "welcome", "Welcome to Our Ministry Family!", data)
	}

	if donation.PaymentMethod == types.PaymentMethodBank {
		d.send(ctx, donor.Email, "bank_transfer",
			fmt.Sprintf("Bank Transfer Details for Your %s Donation", data.FormattedAmount), data)
	}

	if donation.DonationType == types.DonationTypeMonthly {
		d.send(ctx, donor.Email, "monthly_partner",
			fmt.Sprintf("Thank You for Your Monthly Partnership! (%s)", data.FormattedAmount), data)
	}

	if prayer != nil {
		d.send(ctx, donor.Email, "prayer_confirmation", "We Are Praying With You", data)
	}
}

type contactEmailData struct {
	Name    string
	Email   string
	Phone   string
	Subject string
	Message string
}

// ContactEmail forwards a contact-form submission to the ministry
// inbox. Unlike donation emails the error propagates so the page can
// tell the visitor their message did not go through.
func (d *Dispatcher) ContactEmail(ctx context.Context, form *types.ContactForm) error {
	if d.adminEmail == "" {
		return fmt.Errorf("no admin email configured")
	}

	data := contactEmailData{
		Name:    strings.TrimSpace(form.FirstName + " " + form.LastName),
		Email:   form.Email,
		Phone:   form.Phone,
		Subject: form.Subject,
		Message: form.Message,
	}

	body, err := render("contact_message", data)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Contact Form: %s", form.Subject)
	if form.Subject == "" {
		subject = fmt.Sprintf("Contact Form Message from %s", data.Name)
	}

	return d.mailer.Send(ctx, []string{d.adminEmail}, subject, body)
}

func (d *Dispatcher) send(ctx context.Context, to, templateName, subject string, data donationEmailData) {
	body, err := render(templateName, data)
	if err != nil {
		d.logger.WithError(err).WithField("template", templateName).Error("failed to render email")
		return
	}

	if err := d.mailer.Send(ctx, []string{to}, subject, body); err != nil {
		d.logger.WithError(err).WithFields(logrus.Fields{
			"template": templateName,
			"to":       to,
		}).Error("failed to send email")
	}
}
