package repository

import "context"

// PendingPaymentRepository holds the per-session pointer to the most recently
// created pending payment, used by the return flow to disambiguate which
// record to check. Kept while pending, cleared on a terminal state.
type PendingPaymentRepository interface {
	Set(ctx context.Context, sessionID, providerPaymentID string) error
	// Get returns domain.ErrNoPendingPayment when no pointer is stored.
	Get(ctx context.Context, sessionID string) (string, error)
	Clear(ctx context.Context, sessionID string) error
}
