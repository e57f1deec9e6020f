package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"org-subscription-saas/internal/domain"
	"org-subscription-saas/internal/domain/model"
	"org-subscription-saas/internal/domain/ports/adapter"
	"org-subscription-saas/internal/domain/ports/repository"
	"org-subscription-saas/internal/infra/logging"
	"org-subscription-saas/internal/infra/metrics"
)

// Result summarizes a reconciliation pass for callers that render pages or
// acknowledge webhooks. It reflects the record's state after the pass, not
// just what changed in it.
type Result string

const (
	ResultSucceeded Result = "succeeded"
	ResultPending   Result = "pending"
	ResultFailed    Result = "failed"
)

// ActivationHook runs after an organization's payment flag flips true. It is
// invoked exactly once per flip, after the surrounding transaction commits.
type ActivationHook interface {
	OnOrganizationActivated(ctx context.Context, userID string)
}

// Compile-time check
var _ ReconcileUseCase = (*reconcileUC)(nil)

// ReconcileUseCase converges a local payment record with the gateway's
// authoritative state. Safe to call any number of times, from any of the
// webhook, return-flow and scheduler paths, concurrently.
type ReconcileUseCase interface {
	// Reconcile drives rec toward the gateway state. source labels the caller
	// for metrics ("webhook", "return", "sched"). A returned error wrapping
	// domain.ErrGatewayUnavailable means the gateway could not be reached and
	// nothing was concluded about the payment.
	Reconcile(ctx context.Context, rec *model.PaymentHistory, source string) (Result, error)
}

type reconcileUC struct {
	payments repository.PaymentRepository
	orgs     repository.OrganizationRepository
	gateway  adapter.PaymentGateway
	tm       repository.TransactionManager
	hook     ActivationHook // optional
	log      *zerolog.Logger
}

func NewReconcileUseCase(
	payments repository.PaymentRepository,
	orgs repository.OrganizationRepository,
	gateway adapter.PaymentGateway,
	tm repository.TransactionManager,
	hook ActivationHook,
	logger *zerolog.Logger,
) *reconcileUC {
	return &reconcileUC{
		payments: payments,
		orgs:     orgs,
		gateway:  gateway,
		tm:       tm,
		hook:     hook,
		log:      logger,
	}
}

func (u *reconcileUC) Reconcile(ctx context.Context, rec *model.PaymentHistory, source string) (Result, error) {
	defer logging.TraceDuration(u.log, "ReconcileUC.Reconcile")()
	if rec.IsZero() {
		return ResultFailed, domain.ErrInvalidArgument
	}
	start := time.Now()

	// Fast path: the record is already terminal locally, no gateway call
	// needed. A succeeded record still gets its organization flag verified in
	// case an earlier pass crashed between the status write and activation.
	if rec.Status == model.PaymentStatusSucceeded {
		u.ensureActivated(ctx, rec.UserID)
		metrics.IncReconcile(source, "already_succeeded")
		return ResultSucceeded, nil
	}
	if rec.Status.IsTerminal() {
		metrics.IncReconcile(source, "already_terminal")
		return ResultFailed, nil
	}

	var (
		result        Result
		activatedUser string
	)
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		// Re-read under the row lock; a concurrent pass may have already
		// consumed this record.
		cur, err := u.payments.FindByProviderID(ctx, tx, rec.ProviderPaymentID)
		if err != nil {
			return err
		}
		if cur.Status == model.PaymentStatusSucceeded {
			result = ResultSucceeded
			return nil
		}
		if cur.Status.IsTerminal() {
			result = ResultFailed
			return nil
		}

		gp, err := u.gateway.FindPayment(ctx, cur.ProviderPaymentID)
		if err != nil {
			return err
		}

		switch gp.Status {
		case adapter.GatewayStatusSucceeded:
			now := time.Now()
			changed, err := u.payments.UpdateStatusIfPending(ctx, tx, cur.ID, model.PaymentStatusSucceeded, &now)
			if err != nil {
				return err
			}
			if changed {
				metrics.IncPayment(string(model.PaymentStatusSucceeded))
				metrics.AddPaymentRevenue(cur.Currency, cur.AmountKopecks)
				flippedFor, err := u.activateOrg(ctx, tx, cur.UserID)
				if err != nil {
					return err
				}
				activatedUser = flippedFor
			}
			result = ResultSucceeded

		case adapter.GatewayStatusCanceled:
			changed, err := u.payments.UpdateStatusIfPending(ctx, tx, cur.ID, model.PaymentStatusCanceled, nil)
			if err != nil {
				return err
			}
			if changed {
				metrics.IncPayment(string(model.PaymentStatusCanceled))
			}
			result = ResultFailed

		case adapter.GatewayStatusPending, adapter.GatewayStatusWaitingForCapture:
			result = ResultPending

		default:
			// Unknown provider status: report failure to the caller but leave
			// the record pending so a later pass can settle it.
			u.log.Warn().
				Str("payment_id", cur.ID).
				Str("provider_payment_id", cur.ProviderPaymentID).
				Str("gateway_status", string(gp.Status)).
				Msg("unrecognized gateway status")
			result = ResultFailed
		}
		return nil
	})
	if err != nil {
		metrics.IncReconcile(source, "error")
		metrics.ObserveReconcile("error", time.Since(start).Seconds())
		return ResultFailed, err
	}

	// Run the hook after commit so notification side effects never observe an
	// uncommitted activation and never roll back the payment itself.
	if activatedUser != "" && u.hook != nil {
		u.hook.OnOrganizationActivated(ctx, activatedUser)
	}

	metrics.IncReconcile(source, string(result))
	metrics.ObserveReconcile(string(result), time.Since(start).Seconds())
	return result, nil
}

// activateOrg flips the owner's organization payment flag. Returns the user id
// when this call performed the flip, "" otherwise. A user without an
// organization is logged and tolerated: the payment record stays succeeded and
// auditable either way.
func (u *reconcileUC) activateOrg(ctx context.Context, tx repository.Tx, userID string) (string, error) {
	org, err := u.orgs.FindByUserID(ctx, tx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		u.log.Warn().Str("user_id", userID).Msg("succeeded payment for user without organization")
		return "", nil
	}
	if err != nil {
		return "", err
	}
	flipped, err := u.orgs.Activate(ctx, tx, org.ID)
	if err != nil {
		return "", err
	}
	if !flipped {
		return "", nil
	}
	metrics.IncOrgActivation()
	u.log.Info().Str("org_id", org.ID).Str("user_id", userID).Msg("organization activated")
	return userID, nil
}

// ensureActivated repairs a missed activation for an already-succeeded record.
// The organization CAS keeps this safe without a surrounding transaction.
func (u *reconcileUC) ensureActivated(ctx context.Context, userID string) {
	flippedFor, err := u.activateOrg(ctx, repository.NoTX, userID)
	if err != nil {
		u.log.Error().Err(err).Str("user_id", userID).Msg("activation repair failed")
		return
	}
	if flippedFor != "" && u.hook != nil {
		u.hook.OnOrganizationActivated(ctx, flippedFor)
	}
}
