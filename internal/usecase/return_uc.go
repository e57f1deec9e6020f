package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"org-subscription-saas/internal/domain"
	"org-subscription-saas/internal/domain/model"
	"org-subscription-saas/internal/domain/ports/repository"
	"org-subscription-saas/internal/infra/logging"
)

// Compile-time check
var _ ReturnFlowUseCase = (*returnFlowUC)(nil)

// ReturnOutcome is what the return page renders from.
type ReturnOutcome struct {
	Found  bool
	Result Result
	Record *model.PaymentHistory
}

// ReturnFlowUseCase resolves which payment a user coming back from the
// gateway was in the middle of, reconciles it, and manages the session
// pointer's lifecycle around the result.
type ReturnFlowUseCase interface {
	// CheckReturn returns Found=false when no candidate record exists. A
	// gateway outage is returned as an error wrapping
	// domain.ErrGatewayUnavailable with the pointer left in place.
	CheckReturn(ctx context.Context, userID, sessionID string) (*ReturnOutcome, error)
}

type returnFlowUC struct {
	payments   repository.PaymentRepository
	pending    repository.PendingPaymentRepository
	reconciler ReconcileUseCase
	log        *zerolog.Logger
}

func NewReturnFlowUseCase(
	payments repository.PaymentRepository,
	pending repository.PendingPaymentRepository,
	reconciler ReconcileUseCase,
	logger *zerolog.Logger,
) *returnFlowUC {
	return &returnFlowUC{
		payments:   payments,
		pending:    pending,
		reconciler: reconciler,
		log:        logger,
	}
}

func (u *returnFlowUC) CheckReturn(ctx context.Context, userID, sessionID string) (*ReturnOutcome, error) {
	defer logging.TraceDuration(u.log, "ReturnFlowUC.CheckReturn")()
	if userID == "" || sessionID == "" {
		return nil, domain.ErrInvalidArgument
	}

	rec, err := u.resolve(ctx, userID, sessionID)
	if errors.Is(err, domain.ErrNotFound) {
		return &ReturnOutcome{Found: false}, nil
	}
	if err != nil {
		return nil, err
	}

	result, err := u.reconciler.Reconcile(ctx, rec, "return")
	if err != nil {
		// Pointer kept: the user can refresh once the gateway is back.
		return nil, err
	}

	// Terminal results consume the pointer; a pending payment keeps it so the
	// auto-refreshing page can keep resolving the same record.
	if result != ResultPending {
		if err := u.pending.Clear(ctx, sessionID); err != nil {
			u.log.Warn().Err(err).Str("session_id", sessionID).Msg("pending payment pointer not cleared")
		}
	}
	return &ReturnOutcome{Found: true, Result: result, Record: rec}, nil
}

// resolve picks the record the return flow is about: the session pointer when
// present, otherwise the user's most recent record. The fallback is ambiguous
// when a user runs several payments at once, so it is logged at warn.
func (u *returnFlowUC) resolve(ctx context.Context, userID, sessionID string) (*model.PaymentHistory, error) {
	providerID, err := u.pending.Get(ctx, sessionID)
	switch {
	case err == nil:
		rec, err := u.payments.FindByProviderID(ctx, repository.NoTX, providerID)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		u.log.Warn().
			Str("provider_payment_id", providerID).
			Str("session_id", sessionID).
			Msg("session pointer references missing payment record")
	case errors.Is(err, domain.ErrNoPendingPayment):
		// fall through to the last-record heuristic
	default:
		return nil, err
	}

	u.log.Warn().Str("user_id", userID).Msg("no session pointer, falling back to last payment record")
	return u.payments.FindLastByUser(ctx, repository.NoTX, userID)
}
