//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"org-subscription-saas/internal/domain"
	"org-subscription-saas/internal/domain/model"
	"org-subscription-saas/internal/domain/ports/adapter"
	"org-subscription-saas/internal/usecase"
)

type returnDeps struct {
	reconcileDeps
	pending *MockPendingRepo
}

func newReturnUC(t *testing.T) (usecase.ReturnFlowUseCase, *returnDeps) {
	t.Helper()
	d := &returnDeps{
		reconcileDeps: reconcileDeps{
			payments: NewMockPaymentRepo(),
			orgs:     NewMockOrgRepo(),
			gateway:  NewMockGateway(),
			tm:       &MockTxManager{},
			hook:     &hookRecorder{},
		},
		pending: NewMockPendingRepo(),
	}
	reconciler := usecase.NewReconcileUseCase(d.payments, d.orgs, d.gateway, d.tm, d.hook, testLogger())
	uc := usecase.NewReturnFlowUseCase(d.payments, d.pending, reconciler, testLogger())
	return uc, d
}

func TestCheckReturn_PointerResolvesAndSucceeds(t *testing.T) {
	uc, d := newReturnUC(t)
	seedPending(t, &d.reconcileDeps, adapter.GatewayStatusSucceeded)
	if err := d.pending.Set(context.Background(), "sess-1", "gw-100"); err != nil {
		t.Fatalf("set pointer: %v", err)
	}

	out, err := uc.CheckReturn(context.Background(), "user-1", "sess-1")
	if err != nil {
		t.Fatalf("CheckReturn error: %v", err)
	}
	if !out.Found {
		t.Fatal("Found = false, want true")
	}
	if out.Result != usecase.ResultSucceeded {
		t.Fatalf("result = %q, want succeeded", out.Result)
	}
	if d.pending.Has("sess-1") {
		t.Error("pointer must be cleared after a terminal result")
	}
}

func TestCheckReturn_PendingKeepsPointer(t *testing.T) {
	uc, d := newReturnUC(t)
	seedPending(t, &d.reconcileDeps, adapter.GatewayStatusPending)
	if err := d.pending.Set(context.Background(), "sess-1", "gw-100"); err != nil {
		t.Fatalf("set pointer: %v", err)
	}

	out, err := uc.CheckReturn(context.Background(), "user-1", "sess-1")
	if err != nil {
		t.Fatalf("CheckReturn error: %v", err)
	}
	if out.Result != usecase.ResultPending {
		t.Fatalf("result = %q, want pending", out.Result)
	}
	if !d.pending.Has("sess-1") {
		t.Error("pointer must survive a pending result for the auto-refreshing page")
	}
}

func TestCheckReturn_FailureClearsPointer(t *testing.T) {
	uc, d := newReturnUC(t)
	seedPending(t, &d.reconcileDeps, adapter.GatewayStatusCanceled)
	if err := d.pending.Set(context.Background(), "sess-1", "gw-100"); err != nil {
		t.Fatalf("set pointer: %v", err)
	}

	out, err := uc.CheckReturn(context.Background(), "user-1", "sess-1")
	if err != nil {
		t.Fatalf("CheckReturn error: %v", err)
	}
	if out.Result != usecase.ResultFailed {
		t.Fatalf("result = %q, want failed", out.Result)
	}
	if d.pending.Has("sess-1") {
		t.Error("pointer must be cleared after a failed result")
	}
}

func TestCheckReturn_NoPointer_FallsBackToLastRecord(t *testing.T) {
	uc, d := newReturnUC(t)
	seedPending(t, &d.reconcileDeps, adapter.GatewayStatusSucceeded)
	// no pointer stored for the session

	out, err := uc.CheckReturn(context.Background(), "user-1", "sess-1")
	if err != nil {
		t.Fatalf("CheckReturn error: %v", err)
	}
	if !out.Found {
		t.Fatal("Found = false, last-record fallback should have resolved the payment")
	}
	if out.Result != usecase.ResultSucceeded {
		t.Fatalf("result = %q, want succeeded", out.Result)
	}
	if out.Record.ProviderPaymentID != "gw-100" {
		t.Errorf("record = %q, want gw-100", out.Record.ProviderPaymentID)
	}
}

func TestCheckReturn_FallbackPicksNewestRecord(t *testing.T) {
	uc, d := newReturnUC(t)
	seedPending(t, &d.reconcileDeps, adapter.GatewayStatusPending)

	older, err := model.NewPaymentHistory("user-1", "mock", "gw-old", 50000, "RUB", "old", nil)
	if err != nil {
		t.Fatalf("NewPaymentHistory: %v", err)
	}
	older.CreatedAt = older.CreatedAt.Add(-time.Hour)
	if err := d.payments.Save(context.Background(), nil, older); err != nil {
		t.Fatalf("save: %v", err)
	}
	d.gateway.SetStatus("gw-old", adapter.GatewayStatusCanceled, false)

	out, err := uc.CheckReturn(context.Background(), "user-1", "sess-1")
	if err != nil {
		t.Fatalf("CheckReturn error: %v", err)
	}
	if out.Record.ProviderPaymentID != "gw-100" {
		t.Errorf("record = %q, fallback must pick the most recent record", out.Record.ProviderPaymentID)
	}
}

func TestCheckReturn_NothingToResolve(t *testing.T) {
	uc, _ := newReturnUC(t)

	out, err := uc.CheckReturn(context.Background(), "user-ghost", "sess-1")
	if err != nil {
		t.Fatalf("CheckReturn error: %v", err)
	}
	if out.Found {
		t.Fatal("Found = true for a user with no payment records")
	}
}

func TestCheckReturn_StalePointer_FallsBack(t *testing.T) {
	uc, d := newReturnUC(t)
	seedPending(t, &d.reconcileDeps, adapter.GatewayStatusSucceeded)
	if err := d.pending.Set(context.Background(), "sess-1", "gw-gone"); err != nil {
		t.Fatalf("set pointer: %v", err)
	}

	out, err := uc.CheckReturn(context.Background(), "user-1", "sess-1")
	if err != nil {
		t.Fatalf("CheckReturn error: %v", err)
	}
	if !out.Found || out.Record.ProviderPaymentID != "gw-100" {
		t.Error("a pointer to a missing record must fall back to the last record")
	}
}

func TestCheckReturn_GatewayDown_KeepsPointer(t *testing.T) {
	uc, d := newReturnUC(t)
	seedPending(t, &d.reconcileDeps, adapter.GatewayStatusSucceeded)
	if err := d.pending.Set(context.Background(), "sess-1", "gw-100"); err != nil {
		t.Fatalf("set pointer: %v", err)
	}
	d.gateway.FindPaymentFunc = func(_ context.Context, _ string) (*adapter.GatewayPayment, error) {
		return nil, fmt.Errorf("%w: 503", domain.ErrGatewayUnavailable)
	}

	_, err := uc.CheckReturn(context.Background(), "user-1", "sess-1")
	if !errors.Is(err, domain.ErrGatewayUnavailable) {
		t.Fatalf("err = %v, want ErrGatewayUnavailable", err)
	}
	if !d.pending.Has("sess-1") {
		t.Error("pointer must be kept while the gateway is unreachable")
	}
}
