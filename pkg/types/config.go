package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`

	SiteURL    string `envconfig:"SITE_URL" default:"https://globalcrusadeoutreach.org"`
	AdminEmail string `envconfig:"ADMIN_EMAIL"`

	// Admin dashboard login
	AdminUsername     string `envconfig:"ADMIN_USERNAME" default:"admin"`
	AdminPasswordHash string `envconfig:"ADMIN_PASSWORD_HASH"` // bcrypt

	CookieName       string `envconfig:"SESSION_COOKIE_NAME" default:"gc_admin_session"`
	SessionMaxAgeSec int    `envconfig:"SESSION_MAX_AGE_SEC" default:"28800"` // 8 hours

	// Cookie encryption keys (base64 encoded)
	// openssl rand -base64 32
	// to generate values
	CookieHashKey  string `envconfig:"COOKIE_HASH_KEY"`  // 32 or 64 bytes
	CookieBlockKey string `envconfig:"COOKIE_BLOCK_KEY"` // 16, 24, or 32 bytes

	// Payment gateways
	PaystackPublicKey    string `envconfig:"PAYSTACK_PUBLIC_KEY"`
	PaystackSecretKey    string `envconfig:"PAYSTACK_SECRET_KEY"`
	FlutterwavePublicKey string `envconfig:"FLUTTERWAVE_PUBLIC_KEY"`
	FlutterwaveSecretKey string `envconfig:"FLUTTERWAVE_SECRET_KEY"`
	StripePublicKey      string `envconfig:"STRIPE_PUBLIC_KEY"`
	StripeSecretKey      string `envconfig:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret  string `envconfig:"STRIPE_WEBHOOK_SECRET"`
	PaypalMeUsername     string `envconfig:"PAYPAL_ME_USERNAME" default:"eternityvoice"`

	// Outbound email
	SMTPHost     string `envconfig:"SMTP_HOST" default:"smtp.gmail.com"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername string `envconfig:"SMTP_USERNAME"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	FromEmail    string `envconfig:"FROM_EMAIL" default:"Global Crusade Ministry <giving@globalcrusadeoutreach.org>"`

	// Bank transfer instructions
	BankName          string `envconfig:"BANK_NAME" default:"United Bank Africa PLC"`
	BankAccountNumber string `envconfig:"BANK_ACCOUNT_NUMBER"`
	BankAccountName   string `envconfig:"BANK_ACCOUNT_NAME" default:"Eternity Voice International Ministry"`

	// Image storage
	StorageBucket string `envconfig:"STORAGE_BUCKET" default:"globalcrusade-media"`
	StorageRegion string `envconfig:"STORAGE_REGION" default:"us-east-1"`
}
