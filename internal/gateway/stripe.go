package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	stripe "github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/webhook"

	"globalcrusade/pkg/types"
)

// Stripe wraps Stripe Checkout Sessions. Unlike the African gateways a
// donation record is only created after Stripe reports the session
// paid; the session id doubles as the payment reference.
type Stripe struct {
	client        *stripe.Client
	webhookSecret string
}

func NewStripe(secretKey, webhookSecret string) *Stripe {
	return &Stripe{
		client:        stripe.NewClient(secretKey),
		webhookSecret: webhookSecret,
	}
}

func (g *Stripe) Name() types.PaymentGateway {
	return types.GatewayStripe
}

func (g *Stripe) Initialize(ctx context.Context, req InitRequest) (*InitResult, error) {
	params := &stripe.CheckoutSessionCreateParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(req.CallbackURL + "?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:          stripe.String(strings.TrimSuffix(req.CallbackURL, "/success") + "/cancel"),
		CustomerEmail:      stripe.String(req.Email),
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(string(req.Currency))),
					UnitAmount: stripe.Int64(req.AmountCents),
					ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
						Name:        stripe.String("Global Crusade Ministry Donation"),
						Description: stripe.String("Your generous donation helps us bring hope worldwide"),
					},
				},
			},
		},
		Metadata: req.Metadata,
	}

	sess, err := g.client.V1CheckoutSessions.Create(ctx, params)
	if err != nil {
		if stripeErr, ok := err.(*stripe.Error); ok {
			return nil, &RejectedError{Gateway: g.Name(), Message: stripeErr.Msg}
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return &InitResult{RedirectURL: sess.URL, Reference: sess.ID}, nil
}

func (g *Stripe) Verify(ctx context.Context, sessionID string) (*VerifyResult, error) {
	sess, err := g.client.V1CheckoutSessions.Retrieve(ctx, sessionID, nil)
	if err != nil {
		if stripeErr, ok := err.(*stripe.Error); ok && stripeErr.HTTPStatusCode == 404 {
			return &VerifyResult{Outcome: OutcomeFailed, RawStatus: "not_found"}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return verifyResultFromSession(sess), nil
}

// RetrieveCheckout returns the full session so callers can read the
// donor metadata Stripe carried through checkout.
func (g *Stripe) RetrieveCheckout(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error) {
	sess, err := g.client.V1CheckoutSessions.Retrieve(ctx, sessionID, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return sess, nil
}

func (g *Stripe) VerifyWebhookSignature(body []byte, signature string) bool {
	_, err := webhook.ConstructEvent(body, signature, g.webhookSecret)
	return err == nil
}

// ParseWebhookEvent authenticates and decodes a Stripe webhook
// delivery. Only checkout.session.completed maps to a completed event.
func (g *Stripe) ParseWebhookEvent(body []byte, signature string) (*WebhookEvent, *stripe.CheckoutSession, error) {
	event, err := webhook.ConstructEvent(body, signature, g.webhookSecret)
	if err != nil {
		return nil, nil, fmt.Errorf("construct stripe event: %w", err)
	}

	out := &WebhookEvent{Gateway: types.GatewayStripe, Type: string(event.Type)}
	if event.Type != "checkout.session.completed" {
		return out, nil, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, nil, fmt.Errorf("decode checkout session: %w", err)
	}

	out.Completed = sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid
	out.Reference = sess.ID
	out.AmountCents = sess.AmountTotal
	out.Currency = types.Currency(strings.ToUpper(string(sess.Currency)))

	return out, &sess, nil
}

func verifyResultFromSession(sess *stripe.CheckoutSession) *VerifyResult {
	outcome := OutcomePending
	if sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid {
		outcome = OutcomeSuccess
	} else if sess.Status == stripe.CheckoutSessionStatusExpired {
		outcome = OutcomeFailed
	}

	return &VerifyResult{
		Outcome:         outcome,
		PaidAmountCents: sess.AmountTotal,
		PaidCurrency:    types.Currency(strings.ToUpper(string(sess.Currency))),
		Reference:       sess.ID,
		RawStatus:       string(sess.PaymentStatus),
	}
}
