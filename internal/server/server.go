package server

import (
	"context"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"globalcrusade/internal/currency"
	"globalcrusade/internal/gateway"
	"globalcrusade/internal/mail"
	"globalcrusade/internal/reconcile"
	"globalcrusade/internal/storage"
	"globalcrusade/internal/store"
	"globalcrusade/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/sirupsen/logrus"
)

//go:embed templates static
var uiFS embed.FS
var decoder = form.NewDecoder()

type Service struct {
	logger *logrus.Logger
	config *types.Config

	donorRepo      *store.DonorRepository
	donationRepo   *store.DonationRepository
	statsRepo      *store.StatsRepository
	prayerRepo     *store.PrayerRequestRepository
	testimonyRepo  *store.TestimonyRepository
	imageRepo      *store.MinistryImageRepository
	flyerRepo      *store.CrusadeFlyerRepository
	newsletterRepo *store.NewsletterRepository

	reconciler *reconcile.Reconciler
	dispatcher *mail.Dispatcher
	gateways   map[types.PaymentGateway]gateway.Gateway
	stripeGW   *gateway.Stripe
	images     *storage.ImageStore

	templates *template.Template
	cookie    *securecookie.SecureCookie

	server *http.Server
}

type Repositories struct {
	Donors      *store.DonorRepository
	Donations   *store.DonationRepository
	Stats       *store.StatsRepository
	Prayers     *store.PrayerRequestRepository
	Testimonies *store.TestimonyRepository
	Images      *store.MinistryImageRepository
	Flyers      *store.CrusadeFlyerRepository
	Newsletter  *store.NewsletterRepository
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	repos Repositories,
	reconciler *reconcile.Reconciler,
	dispatcher *mail.Dispatcher,
	gateways map[types.PaymentGateway]gateway.Gateway,
	stripeGW *gateway.Stripe,
	images *storage.ImageStore,
) (*Service, error) {
	mux := flow.New()

	hashKey, _ := base64.StdEncoding.DecodeString(config.CookieHashKey)
	blockKey, _ := base64.StdEncoding.DecodeString(config.CookieBlockKey)

	s := &Service{
		logger: logger,
		config: config,
		cookie: securecookie.New(hashKey, blockKey),

		donorRepo:      repos.Donors,
		donationRepo:   repos.Donations,
		statsRepo:      repos.Stats,
		prayerRepo:     repos.Prayers,
		testimonyRepo:  repos.Testimonies,
		imageRepo:      repos.Images,
		flyerRepo:      repos.Flyers,
		newsletterRepo: repos.Newsletter,

		reconciler: reconciler,
		dispatcher: dispatcher,
		gateways:   gateways,
		stripeGW:   stripeGW,
		images:     images,

		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	templates, err := s.loadTemplates()
	if err != nil {
		return nil, err
	}
	s.templates = templates

	s.buildRouter(mux)

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)

	// Ministry pages
	r.HandleFunc("/", s.handleHome, http.MethodGet)
	r.HandleFunc("/about", s.handleAbout, http.MethodGet)
	r.HandleFunc("/crusades", s.handleCrusades, http.MethodGet)
	r.HandleFunc("/testimonies", s.handleTestimonies, http.MethodGet)
	r.HandleFunc("/contact", s.handleGetContact, http.MethodGet)
	r.HandleFunc("/contact", s.handlePostContact, http.MethodPost)
	r.HandleFunc("/newsletter/subscribe", s.handleNewsletterSubscribe, http.MethodPost)
	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)

	// Donation flow
	r.HandleFunc("/donate", s.handleGetDonate, http.MethodGet)
	r.HandleFunc("/donate", s.handlePostDonate, http.MethodPost)
	r.HandleFunc("/donate/success/:donationID", s.handleDonationSuccess, http.MethodGet)
	r.HandleFunc("/donate/bank/:donationID", s.handleBankConfirmation, http.MethodGet)
	r.HandleFunc("/donate/paypal/:donationID", s.handlePaypalRedirect, http.MethodGet)
	r.HandleFunc("/payment/process/:donationID", s.handleProcessPayment, http.MethodPost)
	r.HandleFunc("/payment/verify/:donationID", s.handleVerifyPayment, http.MethodGet)

	// Stripe checkout
	r.HandleFunc("/stripe/create-session", s.handleStripeCreateSession, http.MethodPost)
	r.HandleFunc("/stripe/success", s.handleStripeSuccess, http.MethodGet)
	r.HandleFunc("/stripe/cancel", s.handleStripeCancel, http.MethodGet)

	// Provider webhooks
	r.HandleFunc("/webhook/paystack", s.handlePaystackWebhook, http.MethodPost)
	r.HandleFunc("/webhook/flutterwave", s.handleFlutterwaveWebhook, http.MethodPost)
	r.HandleFunc("/webhook/stripe", s.handleStripeWebhook, http.MethodPost)

	// Admin
	r.HandleFunc("/dashboard/login", s.handleGetAdminLogin, http.MethodGet)
	r.HandleFunc("/dashboard/login", s.handlePostAdminLogin, http.MethodPost)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAdmin)

		r.HandleFunc("/dashboard", s.handleDashboard, http.MethodGet)
		r.HandleFunc("/dashboard/logout", s.handleAdminLogout, http.MethodPost)

		r.HandleFunc("/dashboard/donors", s.handleAdminDonors, http.MethodGet)
		r.HandleFunc("/dashboard/donations", s.handleAdminDonations, http.MethodGet)
		r.HandleFunc("/dashboard/donations/:donationID/verify", s.handleAdminDonationVerify, http.MethodPost)
		r.HandleFunc("/dashboard/donations/:donationID/refund", s.handleAdminDonationRefund, http.MethodPost)
		r.HandleFunc("/dashboard/donations/:donationID/delete", s.handleAdminDonationDelete, http.MethodPost)

		r.HandleFunc("/dashboard/prayers", s.handleAdminPrayers, http.MethodGet)
		r.HandleFunc("/dashboard/prayers/:prayerID/toggle", s.handleAdminPrayerToggle, http.MethodPost)

		r.HandleFunc("/dashboard/settings", s.handleGetAdminSettings, http.MethodGet)
		r.HandleFunc("/dashboard/settings", s.handlePostAdminSettings, http.MethodPost)

		r.HandleFunc("/dashboard/flyers", s.handleAdminFlyerCreate, http.MethodPost)
		r.HandleFunc("/dashboard/flyers/:flyerID/toggle", s.handleAdminFlyerToggle, http.MethodPost)
		r.HandleFunc("/dashboard/flyers/:flyerID/delete", s.handleAdminFlyerDelete, http.MethodPost)

		r.HandleFunc("/dashboard/images", s.handleAdminImageCreate, http.MethodPost)
		r.HandleFunc("/dashboard/images/:imageID/toggle", s.handleAdminImageToggle, http.MethodPost)
		r.HandleFunc("/dashboard/images/:imageID/delete", s.handleAdminImageDelete, http.MethodPost)

		r.HandleFunc("/dashboard/testimonies", s.handleAdminTestimonyCreate, http.MethodPost)
		r.HandleFunc("/dashboard/testimonies/:testimonyID/update", s.handleAdminTestimonyUpdate, http.MethodPost)
		r.HandleFunc("/dashboard/testimonies/:testimonyID/toggle", s.handleAdminTestimonyToggle, http.MethodPost)
		r.HandleFunc("/dashboard/testimonies/:testimonyID/delete", s.handleAdminTestimonyDelete, http.MethodPost)

		r.HandleFunc("/dashboard/export/donors.csv", s.handleExportDonors, http.MethodGet)
		r.HandleFunc("/dashboard/export/donations.csv", s.handleExportDonations, http.MethodGet)
	})

	staticRoot, err := fs.Sub(uiFS, "static")
	if err != nil {
		s.logger.WithError(err).Fatal("failed to mount static assets")
	}
	r.Handle("/static/...", http.StripPrefix("/static/", http.FileServer(http.FS(staticRoot))), http.MethodGet)
}

func (s *Service) loadTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"formatAmount": currency.FormatAmount,
		"symbol":       currency.Symbol,
		"decimal":      currency.CentsToDecimal,
		"imageURL":     s.images.PublicURL,
		"naira": func(amountCents int64) string {
			return currency.FormatAmount(amountCents, types.CurrencyNGN)
		},
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"deref64": func(n *int64) int64 {
			if n == nil {
				return 0
			}
			return *n
		},
		"derefCurrency": func(c *types.Currency) types.Currency {
			if c == nil {
				return types.CurrencyNGN
			}
			return *c
		},
		"percent": func(part, whole int64) int64 {
			if whole == 0 {
				return 0
			}
			p := part * 100 / whole
			if p > 100 {
				p = 100
			}
			return p
		},
	}

	t := template.New("").Funcs(funcMap)
	err := fs.WalkDir(uiFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}

		data, err := fs.ReadFile(uiFS, path)
		if err != nil {
			return fmt.Errorf("read template %s: %w", path, err)
		}

		if _, err := t.Parse(string(data)); err != nil {
			return fmt.Errorf("parse template %s: %w", path, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return t, nil
}
