package payment

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"org-subscription-saas/internal/domain"
	"org-subscription-saas/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*NoopPaymentGateway)(nil)

// NoopPaymentGateway is an in-memory gateway for development and tests.
// Created payments start pending; MarkSucceeded flips them so return-flow
// and webhook paths can be exercised without a real provider.
type NoopPaymentGateway struct {
	mu       sync.Mutex
	payments map[string]*adapter.GatewayPayment
}

func NewNoopPaymentGateway() *NoopPaymentGateway {
	return &NoopPaymentGateway{payments: make(map[string]*adapter.GatewayPayment)}
}

func (g *NoopPaymentGateway) Name() string { return "noop" }

func (g *NoopPaymentGateway) CreatePayment(_ context.Context, _ int64, _, returnURL, _ string, _ map[string]interface{}) (*adapter.GatewayPayment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p := &adapter.GatewayPayment{
		ID:              uuid.NewString(),
		Status:          adapter.GatewayStatusPending,
		ConfirmationURL: returnURL,
	}
	g.payments[p.ID] = p
	return p, nil
}

func (g *NoopPaymentGateway) FindPayment(_ context.Context, providerPaymentID string) (*adapter.GatewayPayment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.payments[providerPaymentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// MarkSucceeded flips a stored payment to succeeded. Missing ids are ignored.
func (g *NoopPaymentGateway) MarkSucceeded(providerPaymentID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p, ok := g.payments[providerPaymentID]; ok {
		p.Status = adapter.GatewayStatusSucceeded
		p.Paid = true
	}
}

// MarkCanceled flips a stored payment to canceled.
func (g *NoopPaymentGateway) MarkCanceled(providerPaymentID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p, ok := g.payments[providerPaymentID]; ok {
		p.Status = adapter.GatewayStatusCanceled
	}
}
