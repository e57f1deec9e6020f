package sched

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"org-subscription-saas/internal/domain"
	"org-subscription-saas/internal/domain/ports/repository"
	"org-subscription-saas/internal/usecase"
)

// PaymentReconciler periodically scans for stale pending payments and runs
// them through the reconciliation engine. This covers the case where the
// webhook never arrived and the user never came back through the return page.
type PaymentReconciler struct {
	reconcile  usecase.ReconcileUseCase
	payments   repository.PaymentRepository
	interval   time.Duration // how often to scan
	staleAfter time.Duration // how old a pending payment must be to retry
	log        *zerolog.Logger
}

func NewPaymentReconciler(reconcile usecase.ReconcileUseCase, payments repository.PaymentRepository, interval, staleAfter time.Duration, logger *zerolog.Logger) *PaymentReconciler {
	if interval <= 0 {
		interval = time.Minute
	}
	if staleAfter <= 0 {
		staleAfter = 10 * time.Minute
	}
	return &PaymentReconciler{
		reconcile:  reconcile,
		payments:   payments,
		interval:   interval,
		staleAfter: staleAfter,
		log:        logger,
	}
}

func (w *PaymentReconciler) Start(ctx context.Context) {
	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			w.tick(ctx)
		}
	}
}

func (w *PaymentReconciler) tick(ctx context.Context) {
	cutoff := time.Now().Add(-w.staleAfter)
	pending, err := w.payments.ListPendingOlderThan(ctx, repository.NoTX, cutoff, 200)
	if err != nil {
		w.log.Error().Err(err).Msg("payment reconciler: list pending failed")
		return
	}
	for _, p := range pending {
		result, err := w.reconcile.Reconcile(ctx, p, "sched")
		if errors.Is(err, domain.ErrGatewayUnavailable) {
			// No point hammering the rest of the batch while the gateway is down.
			w.log.Warn().Err(err).Str("payment_id", p.ID).Msg("payment reconciler: gateway unreachable, stopping batch")
			return
		}
		if err != nil {
			w.log.Error().Err(err).Str("payment_id", p.ID).Msg("payment reconciler: reconcile failed")
			continue
		}
		w.log.Debug().
			Str("payment_id", p.ID).
			Str("result", string(result)).
			Msg("payment reconciler: pass complete")
	}
}
