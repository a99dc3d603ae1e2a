package payments

import (
	"context"

	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

// StripeIntentCreator implements IntentCreator with the Stripe API,
// restricted to card payment methods.
type StripeIntentCreator struct {
	api *client.API
}

func NewStripeIntentCreator(secretKey string) *StripeIntentCreator {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeIntentCreator{api: api}
}

func (s *StripeIntentCreator) CreateIntent(ctx context.Context, amountMinor int64, currency string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amountMinor),
		Currency:           stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx
	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return "", err
	}
	return pi.ClientSecret, nil
}
