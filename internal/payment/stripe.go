package payment

import (
	"context"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
)

// StripeProvider talks to Stripe. When the seller has a connected account the
// intent carries an application fee and a transfer destination, so the payout
// split happens on the processor side.
type StripeProvider struct {
	api *client.API
}

func NewStripeProvider(secretKey string) *StripeProvider {
	api := &client.API{}
	api.Init(secretKey, nil)

	return &StripeProvider{api: api}
}

func (p *StripeProvider) CreateIntent(ctx context.Context, input *CreateIntentInput) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(input.AmountCents),
		Currency: stripe.String(input.Currency),
	}
	for k, v := range input.Metadata {
		params.AddMetadata(k, v)
	}

	if input.DestinationAccount != "" {
		params.ApplicationFeeAmount = stripe.Int64(input.PlatformFeeCents)
		params.TransferData = &stripe.PaymentIntentTransferDataParams{
			Destination: stripe.String(input.DestinationAccount),
		}
	}

	intent, err := p.api.PaymentIntents.New(params)
	if err != nil {
		return nil, err
	}

	return &Intent{
		Id:           intent.ID,
		ClientSecret: intent.ClientSecret,
		Status:       string(intent.Status),
	}, nil
}

func (p *StripeProvider) RetrieveIntent(ctx context.Context, id string) (*Intent, error) {
	intent, err := p.api.PaymentIntents.Get(id, &stripe.PaymentIntentParams{
		Params: stripe.Params{Context: ctx},
	})
	if err != nil {
		return nil, err
	}

	return &Intent{
		Id:           intent.ID,
		ClientSecret: intent.ClientSecret,
		Status:       string(intent.Status),
	}, nil
}

func (p *StripeProvider) Enabled() bool {
	return true
}
