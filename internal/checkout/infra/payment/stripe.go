package payment

import (
	"context"
	"fmt"
	"strings"

	stripe "github.com/stripe/stripe-go/v80"
	stripeclient "github.com/stripe/stripe-go/v80/client"

	"github.com/evermall/storefront/internal/checkout/app"
	"github.com/evermall/storefront/internal/checkout/domain"
)

// StripeIntents creates payment intents for the card flow. The client secret
// travels back to the browser; the intent id stays on the order as the
// payment reference.
type StripeIntents struct {
	api *stripeclient.API
}

func NewStripeIntents(secretKey string) *StripeIntents {
	api := &stripeclient.API{}
	api.Init(secretKey, nil)
	return &StripeIntents{api: api}
}

func (s *StripeIntents) CreateIntent(ctx context.Context, amount domain.Money) (app.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(amount.Amount),
		Currency: stripe.String(strings.ToLower(amount.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return app.PaymentIntent{}, fmt.Errorf("stripe: create intent: %w", err)
	}
	return app.PaymentIntent{ClientSecret: pi.ClientSecret, Ref: pi.ID}, nil
}
