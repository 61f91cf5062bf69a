// Package payment is the contract boundary with the external payment
// processor. The core only ever creates intents and reads their status.
package payment

import (
	"context"
	"strings"
)

// Intent statuses the core cares about. Anything other than succeeded is
// treated as not yet payable.
const StatusSucceeded = "succeeded"

const demoIntentPrefix = "demo_pi_"

type Intent struct {
	Id           string
	ClientSecret string
	Status       string
}

type CreateIntentInput struct {
	AmountCents int64
	Currency    string
	// DestinationAccount is the seller's connected sub-account. Empty means
	// no split: the platform holds the full amount pending manual payout.
	DestinationAccount string
	PlatformFeeCents   int64
	Metadata           map[string]string
}

type Provider interface {
	CreateIntent(ctx context.Context, input *CreateIntentInput) (*Intent, error)
	RetrieveIntent(ctx context.Context, id string) (*Intent, error)
	Enabled() bool
}

// IsDemoReference reports whether an intent id was synthesized locally by the
// disabled provider rather than issued by the processor.
func IsDemoReference(intentId string) bool {
	return strings.HasPrefix(intentId, demoIntentPrefix)
}
