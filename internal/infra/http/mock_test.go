//go:build !integration

package http_test

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"org-subscription-saas/internal/domain"
	"org-subscription-saas/internal/domain/model"
	"org-subscription-saas/internal/domain/ports/repository"
	"org-subscription-saas/internal/usecase"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// ---- payment repo stub ----

// stubPaymentRepo serves FindByProviderID from a fixed map; the webhook
// handler needs nothing else from the repository.
type stubPaymentRepo struct {
	records map[string]*model.PaymentHistory
}

var _ repository.PaymentRepository = (*stubPaymentRepo)(nil)

func (s *stubPaymentRepo) Save(context.Context, repository.Tx, *model.PaymentHistory) error {
	return nil
}

func (s *stubPaymentRepo) FindByProviderID(_ context.Context, _ repository.Tx, id string) (*model.PaymentHistory, error) {
	if p, ok := s.records[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (s *stubPaymentRepo) FindLastByUser(context.Context, repository.Tx, string) (*model.PaymentHistory, error) {
	return nil, domain.ErrNotFound
}

func (s *stubPaymentRepo) UpdateStatus(context.Context, repository.Tx, string, model.PaymentStatus, *time.Time) error {
	return nil
}

func (s *stubPaymentRepo) UpdateStatusIfPending(context.Context, repository.Tx, string, model.PaymentStatus, *time.Time) (bool, error) {
	return true, nil
}

func (s *stubPaymentRepo) ListPendingOlderThan(context.Context, repository.Tx, time.Time, int) ([]*model.PaymentHistory, error) {
	return nil, nil
}

func (s *stubPaymentRepo) SumSucceededByPeriod(context.Context, repository.Tx, string) (int64, error) {
	return 0, nil
}

// ---- usecase stubs ----

type stubReconciler struct {
	Result usecase.Result
	Err    error
	Calls  []string // provider payment ids, in call order
}

var _ usecase.ReconcileUseCase = (*stubReconciler)(nil)

func (s *stubReconciler) Reconcile(_ context.Context, rec *model.PaymentHistory, _ string) (usecase.Result, error) {
	s.Calls = append(s.Calls, rec.ProviderPaymentID)
	return s.Result, s.Err
}

type stubCheckout struct {
	Res     *usecase.CheckoutResult
	Err     error
	Tariffs []*model.Tariff
}

var _ usecase.CheckoutUseCase = (*stubCheckout)(nil)

func (s *stubCheckout) Checkout(context.Context, string, string, model.TariffDuration, int) (*usecase.CheckoutResult, error) {
	return s.Res, s.Err
}

func (s *stubCheckout) ListTariffs(context.Context) ([]*model.Tariff, error) {
	return s.Tariffs, nil
}

type stubReturnFlow struct {
	Out *usecase.ReturnOutcome
	Err error
}

var _ usecase.ReturnFlowUseCase = (*stubReturnFlow)(nil)

func (s *stubReturnFlow) CheckReturn(context.Context, string, string) (*usecase.ReturnOutcome, error) {
	return s.Out, s.Err
}

type stubAssist struct {
	Reply string
	Err   error
}

var _ usecase.AssistUseCase = (*stubAssist)(nil)

func (s *stubAssist) Ask(context.Context, string, string) (string, error) {
	return s.Reply, s.Err
}

type stubNotifications struct {
	Items []*model.WebNotification
}

var _ usecase.NotificationUseCase = (*stubNotifications)(nil)

func (s *stubNotifications) OnOrganizationActivated(context.Context, string) {}

func (s *stubNotifications) ListNew(context.Context, string) ([]*model.WebNotification, error) {
	return s.Items, nil
}

func (s *stubNotifications) MarkRead(context.Context, string) error { return nil }

type stubStats struct {
	Sum *usecase.StatsSummary
	Err error
}

var _ usecase.StatsUseCase = (*stubStats)(nil)

func (s *stubStats) Summary(context.Context) (*usecase.StatsSummary, error) {
	return s.Sum, s.Err
}
