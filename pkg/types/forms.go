package types

// DonationForm mirrors the donation page form fields. The quick_* pair
// comes from the condensed bank/PayPal widget, the plain pair from the
// full card form; whichever is present wins.
type DonationForm struct {
	FullName             string `form:"full_name"`
	QuickName            string `form:"quick_name"`
	Email                string `form:"email"`
	QuickEmail           string `form:"quick_email"`
	Phone                string `form:"phone"`
	Country              string `form:"country"`
	Amount               string `form:"amount"`
	Currency             string `form:"currency"`
	DonationType         string `form:"donation_type"`
	PaymentMethod        string `form:"payment_method"`
	PaymentGateway       string `form:"payment_gateway"`
	Message              string `form:"message"`
	TransactionReference string `form:"transaction_reference"`
}

func (f *DonationForm) DonorName() string {
	if f.QuickName != "" {
		return f.QuickName
	}
	return f.FullName
}

func (f *DonationForm) DonorEmail() string {
	if f.QuickEmail != "" {
		return f.QuickEmail
	}
	return f.Email
}

type ContactForm struct {
	FirstName string `form:"firstName"`
	LastName  string `form:"lastName"`
	Email     string `form:"email"`
	Phone     string `form:"phone"`
	Subject   string `form:"subject"`
	Message   string `form:"message"`
}
