package payment

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// DisabledProvider is the operating mode without processor credentials. It
// synthesizes local payment references and reports every intent as succeeded,
// so the settlement flow works end to end with no real money moving.
type DisabledProvider struct {
	seq atomic.Int64
}

func NewDisabledProvider() *DisabledProvider {
	return &DisabledProvider{}
}

func (p *DisabledProvider) CreateIntent(ctx context.Context, input *CreateIntentInput) (*Intent, error) {
	n := time.Now().UnixMilli() + p.seq.Add(1)

	return &Intent{
		Id:           fmt.Sprintf("%s%d", demoIntentPrefix, n),
		ClientSecret: fmt.Sprintf("demo_secret_%d", n),
		Status:       StatusSucceeded,
	}, nil
}

func (p *DisabledProvider) RetrieveIntent(ctx context.Context, id string) (*Intent, error) {
	return &Intent{Id: id, Status: StatusSucceeded}, nil
}

func (p *DisabledProvider) Enabled() bool {
	return false
}
