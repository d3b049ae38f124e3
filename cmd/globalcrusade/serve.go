package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"globalcrusade/internal/db"
	"globalcrusade/internal/gateway"
	"globalcrusade/internal/mail"
	"globalcrusade/internal/reconcile"
	"globalcrusade/internal/server"
	"globalcrusade/internal/storage"
	"globalcrusade/internal/store"
	"globalcrusade/pkg/types"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	config, err := loadConfig()
	if err != nil {
		return err
	}

	awsConfig, err := loadAWSConfig(ctx)
	if err != nil {
		return err
	}

	s3Client := s3.NewFromConfig(awsConfig)
	images := storage.NewImageStore(s3Client, config.StorageBucket, config.StorageRegion)

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	repos := server.Repositories{
		Donors:      store.NewDonorRepository(pool),
		Donations:   store.NewDonationRepository(pool),
		Stats:       store.NewStatsRepository(pool),
		Prayers:     store.NewPrayerRequestRepository(pool),
		Testimonies: store.NewTestimonyRepository(pool),
		Images:      store.NewMinistryImageRepository(pool),
		Flyers:      store.NewCrusadeFlyerRepository(pool),
		Newsletter:  store.NewNewsletterRepository(pool),
	}

	gateways := map[types.PaymentGateway]gateway.Gateway{
		types.GatewayPaystack:    gateway.NewPaystack(config.PaystackSecretKey),
		types.GatewayFlutterwave: gateway.NewFlutterwave(config.FlutterwaveSecretKey),
	}

	var stripeGW *gateway.Stripe
	if config.StripeSecretKey != "" {
		stripeGW = gateway.NewStripe(config.StripeSecretKey, config.StripeWebhookSecret)
		gateways[types.GatewayStripe] = stripeGW
	} else {
		logger.Warn("STRIPE_SECRET_KEY not set, stripe checkout disabled")
	}

	mailer := mail.NewSMTPMailer(mail.SMTPConfig{
		Host:     config.SMTPHost,
		Port:     config.SMTPPort,
		Username: config.SMTPUsername,
		Password: config.SMTPPassword,
		From:     config.FromEmail,
	})
	dispatcher := mail.NewDispatcher(mailer, logger, config.AdminEmail, config.SiteURL, mail.BankDetails{
		Name:          config.BankName,
		AccountNumber: config.BankAccountNumber,
		AccountName:   config.BankAccountName,
	})

	reconciler := reconcile.New(
		repos.Donations,
		repos.Donors,
		repos.Stats,
		repos.Prayers,
		dispatcher,
		gateways,
		config.SiteURL,
		logger,
	)

	srv, err := server.New(
		config,
		logger,
		repos,
		reconciler,
		dispatcher,
		gateways,
		stripeGW,
		images,
	)
	if err != nil {
		return err
	}

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}
