package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"org-subscription-saas/internal/domain"
	"org-subscription-saas/internal/domain/model"
	"org-subscription-saas/internal/domain/ports/adapter"
	"org-subscription-saas/internal/domain/ports/repository"
	"org-subscription-saas/internal/infra/logging"
	"org-subscription-saas/internal/infra/metrics"
)

// Compile-time check
var _ CheckoutUseCase = (*checkoutUC)(nil)

// CheckoutResult carries what the frontend needs to send the user to the
// gateway's confirmation page.
type CheckoutResult struct {
	PaymentID         string `json:"payment_id"`
	ProviderPaymentID string `json:"provider_payment_id"`
	ConfirmationURL   string `json:"confirmation_url"`
	AmountKopecks     int64  `json:"amount_kopecks"`
}

type CheckoutUseCase interface {
	// Checkout prices the selected plan, creates the gateway payment and
	// records it locally as pending. The session id keys the redis pointer the
	// return flow uses to find the record again.
	Checkout(ctx context.Context, userID, sessionID string, duration model.TariffDuration, userCount int) (*CheckoutResult, error)
	ListTariffs(ctx context.Context) ([]*model.Tariff, error)
}

type checkoutUC struct {
	orgs     repository.OrganizationRepository
	tariffs  repository.TariffRepository
	payments repository.PaymentRepository
	pending  repository.PendingPaymentRepository
	gateway  adapter.PaymentGateway
	log      *zerolog.Logger
}

func NewCheckoutUseCase(
	orgs repository.OrganizationRepository,
	tariffs repository.TariffRepository,
	payments repository.PaymentRepository,
	pending repository.PendingPaymentRepository,
	gateway adapter.PaymentGateway,
	logger *zerolog.Logger,
) *checkoutUC {
	return &checkoutUC{
		orgs:     orgs,
		tariffs:  tariffs,
		payments: payments,
		pending:  pending,
		gateway:  gateway,
		log:      logger,
	}
}

func (u *checkoutUC) Checkout(ctx context.Context, userID, sessionID string, duration model.TariffDuration, userCount int) (*CheckoutResult, error) {
	defer logging.TraceDuration(u.log, "CheckoutUC.Checkout")()
	if userID == "" || sessionID == "" {
		return nil, domain.ErrInvalidArgument
	}

	org, err := u.orgs.FindByUserID(ctx, repository.NoTX, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNoOrganization
	}
	if err != nil {
		return nil, err
	}
	if org.Payment {
		return nil, domain.ErrOrganizationPaid
	}

	tariff, err := u.tariffs.FindByPlan(ctx, repository.NoTX, duration, userCount)
	if err != nil {
		return nil, err
	}
	total := tariff.TotalPrice()
	description := fmt.Sprintf("Subscription %s, %d users, %s", org.Name, userCount, duration)
	meta := map[string]interface{}{
		"user_id":    userID,
		"org_id":     org.ID,
		"duration":   string(duration),
		"user_count": userCount,
	}

	gp, err := u.gateway.CreatePayment(ctx, total, "RUB", "", description, meta)
	if err != nil {
		return nil, err
	}

	rec, err := model.NewPaymentHistory(userID, u.gateway.Name(), gp.ID, total, "RUB", description, meta)
	if err != nil {
		return nil, err
	}
	if err := u.payments.Save(ctx, repository.NoTX, rec); err != nil {
		return nil, err
	}
	metrics.IncPayment(string(model.PaymentStatusPending))

	// A lost pointer only degrades the return flow to its last-record
	// fallback, so this failure is not fatal to checkout.
	if err := u.pending.Set(ctx, sessionID, gp.ID); err != nil {
		u.log.Warn().Err(err).Str("payment_id", rec.ID).Msg("pending payment pointer not stored")
	}

	u.log.Info().
		Str("payment_id", rec.ID).
		Str("provider_payment_id", gp.ID).
		Int64("amount_kopecks", total).
		Str("user_id", userID).
		Msg("checkout created")

	return &CheckoutResult{
		PaymentID:         rec.ID,
		ProviderPaymentID: gp.ID,
		ConfirmationURL:   gp.ConfirmationURL,
		AmountKopecks:     total,
	}, nil
}

func (u *checkoutUC) ListTariffs(ctx context.Context) ([]*model.Tariff, error) {
	return u.tariffs.ListAll(ctx, repository.NoTX)
}
