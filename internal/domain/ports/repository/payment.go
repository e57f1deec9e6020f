package repository

import (
	"context"
	"time"

	"org-subscription-saas/internal/domain/model"
)

type PaymentRepository interface {
	Save(ctx context.Context, tx Tx, p *model.PaymentHistory) error
	// FindByProviderID resolves the record by the opaque gateway payment id.
	// Inside a transaction the row is locked FOR UPDATE.
	FindByProviderID(ctx context.Context, tx Tx, providerPaymentID string) (*model.PaymentHistory, error)
	// FindLastByUser returns the most recently created record owned by the
	// user. Last-resort heuristic for the return flow when the session pointer
	// is gone; ambiguous if the user has several concurrent payments.
	FindLastByUser(ctx context.Context, tx Tx, userID string) (*model.PaymentHistory, error)
	UpdateStatus(ctx context.Context, tx Tx, id string, status model.PaymentStatus, paidAt *time.Time) error
	// UpdateStatusIfPending is the compare-and-set transition pending -> status.
	// Returns false when the row was no longer pending, which callers treat as
	// "another path already consumed this record".
	UpdateStatusIfPending(ctx context.Context, tx Tx, id string, status model.PaymentStatus, paidAt *time.Time) (bool, error)
	ListPendingOlderThan(ctx context.Context, tx Tx, olderThan time.Time, limit int) ([]*model.PaymentHistory, error)
	SumSucceededByPeriod(ctx context.Context, tx Tx, period string) (int64, error)
}
