//go:build !integration

package usecase_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"org-subscription-saas/internal/domain"
	"org-subscription-saas/internal/domain/model"
	"org-subscription-saas/internal/domain/ports/adapter"
	"org-subscription-saas/internal/domain/ports/repository"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// =============================
// Repositories
// =============================

// ---- Mock PaymentRepository ----

// MockPaymentRepo keeps records in memory keyed by provider payment id.
// Default behavior is a faithful in-memory store; assign Func fields to
// override individual methods per test.
type MockPaymentRepo struct {
	mu      sync.Mutex
	records map[string]*model.PaymentHistory // provider payment id -> record

	FindByProviderIDFunc      func(ctx context.Context, tx repository.Tx, providerPaymentID string) (*model.PaymentHistory, error)
	UpdateStatusIfPendingFunc func(ctx context.Context, tx repository.Tx, id string, status model.PaymentStatus, paidAt *time.Time) (bool, error)
	FindLastByUserFunc        func(ctx context.Context, tx repository.Tx, userID string) (*model.PaymentHistory, error)
	SumSucceededByPeriodFunc  func(ctx context.Context, tx repository.Tx, period string) (int64, error)
}

var _ repository.PaymentRepository = (*MockPaymentRepo)(nil)

func NewMockPaymentRepo() *MockPaymentRepo {
	return &MockPaymentRepo{records: make(map[string]*model.PaymentHistory)}
}

func (m *MockPaymentRepo) Save(_ context.Context, _ repository.Tx, p *model.PaymentHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.records[p.ProviderPaymentID] = &cp
	return nil
}

func (m *MockPaymentRepo) FindByProviderID(ctx context.Context, tx repository.Tx, providerPaymentID string) (*model.PaymentHistory, error) {
	if m.FindByProviderIDFunc != nil {
		return m.FindByProviderIDFunc(ctx, tx, providerPaymentID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.records[providerPaymentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockPaymentRepo) FindLastByUser(ctx context.Context, tx repository.Tx, userID string) (*model.PaymentHistory, error) {
	if m.FindLastByUserFunc != nil {
		return m.FindLastByUserFunc(ctx, tx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.PaymentHistory
	for _, p := range m.records {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil, domain.ErrNotFound
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	cp := *out[0]
	return &cp, nil
}

func (m *MockPaymentRepo) UpdateStatus(_ context.Context, _ repository.Tx, id string, status model.PaymentStatus, paidAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.records {
		if p.ID == id {
			p.Status = status
			p.PaidAt = paidAt
			p.UpdatedAt = time.Now()
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *MockPaymentRepo) UpdateStatusIfPending(ctx context.Context, tx repository.Tx, id string, status model.PaymentStatus, paidAt *time.Time) (bool, error) {
	if m.UpdateStatusIfPendingFunc != nil {
		return m.UpdateStatusIfPendingFunc(ctx, tx, id, status, paidAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.records {
		if p.ID == id {
			if p.Status != model.PaymentStatusPending {
				return false, nil
			}
			p.Status = status
			p.PaidAt = paidAt
			p.UpdatedAt = time.Now()
			return true, nil
		}
	}
	return false, nil
}

func (m *MockPaymentRepo) ListPendingOlderThan(_ context.Context, _ repository.Tx, olderThan time.Time, limit int) ([]*model.PaymentHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.PaymentHistory
	for _, p := range m.records {
		if p.Status == model.PaymentStatusPending && p.CreatedAt.Before(olderThan) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockPaymentRepo) SumSucceededByPeriod(ctx context.Context, tx repository.Tx, period string) (int64, error) {
	if m.SumSucceededByPeriodFunc != nil {
		return m.SumSucceededByPeriodFunc(ctx, tx, period)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum int64
	for _, p := range m.records {
		if p.Status == model.PaymentStatusSucceeded {
			sum += p.AmountKopecks
		}
	}
	return sum, nil
}

// Get returns the stored record for assertions.
func (m *MockPaymentRepo) Get(providerPaymentID string) *model.PaymentHistory {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.records[providerPaymentID]; ok {
		cp := *p
		return &cp
	}
	return nil
}

// ---- Mock OrganizationRepository ----

type MockOrgRepo struct {
	mu   sync.Mutex
	orgs map[string]*model.Organization // org id -> org

	FindByUserIDFunc func(ctx context.Context, tx repository.Tx, userID string) (*model.Organization, error)
	ActivateFunc     func(ctx context.Context, tx repository.Tx, orgID string) (bool, error)
}

var _ repository.OrganizationRepository = (*MockOrgRepo)(nil)

func NewMockOrgRepo() *MockOrgRepo {
	return &MockOrgRepo{orgs: make(map[string]*model.Organization)}
}

func (m *MockOrgRepo) Save(_ context.Context, _ repository.Tx, org *model.Organization) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *org
	m.orgs[org.ID] = &cp
	return nil
}

func (m *MockOrgRepo) FindByUserID(ctx context.Context, tx repository.Tx, userID string) (*model.Organization, error) {
	if m.FindByUserIDFunc != nil {
		return m.FindByUserIDFunc(ctx, tx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orgs {
		if o.UserID == userID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockOrgRepo) Activate(ctx context.Context, tx repository.Tx, orgID string) (bool, error) {
	if m.ActivateFunc != nil {
		return m.ActivateFunc(ctx, tx, orgID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orgs[orgID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if o.Payment {
		return false, nil
	}
	o.Payment = true
	return true, nil
}

func (m *MockOrgRepo) CountActivated(_ context.Context, _ repository.Tx) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, o := range m.orgs {
		if o.Payment {
			n++
		}
	}
	return n, nil
}

// Get returns the stored organization for assertions.
func (m *MockOrgRepo) Get(orgID string) *model.Organization {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.orgs[orgID]; ok {
		cp := *o
		return &cp
	}
	return nil
}

// ---- Mock TariffRepository ----

type MockTariffRepo struct {
	mu      sync.Mutex
	tariffs []*model.Tariff
}

var _ repository.TariffRepository = (*MockTariffRepo)(nil)

func NewMockTariffRepo() *MockTariffRepo { return &MockTariffRepo{} }

func (m *MockTariffRepo) Save(_ context.Context, _ repository.Tx, t *model.Tariff) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.tariffs = append(m.tariffs, &cp)
	return nil
}

func (m *MockTariffRepo) FindByPlan(_ context.Context, _ repository.Tx, duration model.TariffDuration, userCount int) (*model.Tariff, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tariffs {
		if t.Duration == duration && t.UserCount == userCount {
			cp := *t
			return &cp, nil
		}
	}
	return nil, domain.ErrTariffNotFound
}

func (m *MockTariffRepo) ListAll(_ context.Context, _ repository.Tx) ([]*model.Tariff, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Tariff, 0, len(m.tariffs))
	for _, t := range m.tariffs {
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

// ---- Mock NotificationRepository ----

type MockNotificationRepo struct {
	mu    sync.Mutex
	Saved []*model.WebNotification

	SaveFunc func(ctx context.Context, tx repository.Tx, n *model.WebNotification) error
}

var _ repository.NotificationRepository = (*MockNotificationRepo)(nil)

func (m *MockNotificationRepo) Save(ctx context.Context, tx repository.Tx, n *model.WebNotification) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, n)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *n
	m.Saved = append(m.Saved, &cp)
	return nil
}

func (m *MockNotificationRepo) ListNewByUser(_ context.Context, _ repository.Tx, userID string) ([]*model.WebNotification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.WebNotification
	for _, n := range m.Saved {
		if n.UserID == userID && n.IsNew {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockNotificationRepo) MarkRead(_ context.Context, _ repository.Tx, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.Saved {
		if n.UserID == userID {
			n.IsNew = false
		}
	}
	return nil
}

// ---- Mock PendingPaymentRepository ----

type MockPendingRepo struct {
	mu       sync.Mutex
	pointers map[string]string

	SetFunc func(ctx context.Context, sessionID, providerPaymentID string) error
}

var _ repository.PendingPaymentRepository = (*MockPendingRepo)(nil)

func NewMockPendingRepo() *MockPendingRepo {
	return &MockPendingRepo{pointers: make(map[string]string)}
}

func (m *MockPendingRepo) Set(ctx context.Context, sessionID, providerPaymentID string) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, sessionID, providerPaymentID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pointers[sessionID] = providerPaymentID
	return nil
}

func (m *MockPendingRepo) Get(_ context.Context, sessionID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.pointers[sessionID]
	if !ok {
		return "", domain.ErrNoPendingPayment
	}
	return id, nil
}

func (m *MockPendingRepo) Clear(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pointers, sessionID)
	return nil
}

// Has reports whether a pointer is stored for the session.
func (m *MockPendingRepo) Has(sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.pointers[sessionID]
	return ok
}

// =============================
// Adapters
// =============================

// ---- Mock PaymentGateway ----

type MockGateway struct {
	mu       sync.Mutex
	payments map[string]*adapter.GatewayPayment
	nextID   int

	CreatePaymentFunc func(ctx context.Context, amountKopecks int64, currency, returnURL, description string, meta map[string]interface{}) (*adapter.GatewayPayment, error)
	FindPaymentFunc   func(ctx context.Context, providerPaymentID string) (*adapter.GatewayPayment, error)
}

var _ adapter.PaymentGateway = (*MockGateway)(nil)

func NewMockGateway() *MockGateway {
	return &MockGateway{payments: make(map[string]*adapter.GatewayPayment)}
}

func (m *MockGateway) Name() string { return "mock" }

func (m *MockGateway) CreatePayment(ctx context.Context, amountKopecks int64, currency, returnURL, description string, meta map[string]interface{}) (*adapter.GatewayPayment, error) {
	if m.CreatePaymentFunc != nil {
		return m.CreatePaymentFunc(ctx, amountKopecks, currency, returnURL, description, meta)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := fmt.Sprintf("gw-%d", m.nextID)
	p := &adapter.GatewayPayment{
		ID:              id,
		Status:          adapter.GatewayStatusPending,
		ConfirmationURL: "https://gateway.example/confirm/" + id,
	}
	m.payments[p.ID] = p
	return p, nil
}

func (m *MockGateway) FindPayment(ctx context.Context, providerPaymentID string) (*adapter.GatewayPayment, error) {
	if m.FindPaymentFunc != nil {
		return m.FindPaymentFunc(ctx, providerPaymentID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[providerPaymentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// SetStatus installs a gateway-side payment with the given state.
func (m *MockGateway) SetStatus(providerPaymentID string, status adapter.GatewayStatus, paid bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[providerPaymentID] = &adapter.GatewayPayment{ID: providerPaymentID, Status: status, Paid: paid}
}

// ---- Mock ChatModel ----

type MockChatModel struct {
	Model        string
	CompleteFunc func(ctx context.Context, prompt string) (string, error)
}

var _ adapter.ChatModel = (*MockChatModel)(nil)

func (m *MockChatModel) ModelName() string {
	if m.Model == "" {
		return "gpt-4o-mini"
	}
	return m.Model
}

func (m *MockChatModel) Complete(ctx context.Context, prompt string) (string, error) {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt)
	}
	return "reply: " + prompt, nil
}

// ---- Mock Mailer ----

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type MockMailer struct {
	mu   sync.Mutex
	Sent []sentMail

	SendFunc func(ctx context.Context, to, subject, body string) error
}

var _ adapter.Mailer = (*MockMailer)(nil)

func (m *MockMailer) Send(ctx context.Context, to, subject, body string) error {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, to, subject, body)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

// =============================
// Infrastructure
// =============================

// ---- Mock TransactionManager ----

// MockTxManager runs the callback directly with a nil tx by default.
// For specific transactional tests, assign a custom function to WithTxFunc.
type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
	Calls      int
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.Calls++
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// ---- Mock RateLimiter ----

type MockRateLimiter struct {
	AllowFunc func(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

func (m *MockRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if m.AllowFunc != nil {
		return m.AllowFunc(ctx, key, limit, window)
	}
	return true, nil
}

// ---- Activation hook recorder ----

type hookRecorder struct {
	mu    sync.Mutex
	Users []string
}

func (h *hookRecorder) OnOrganizationActivated(_ context.Context, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Users = append(h.Users, userID)
}

func (h *hookRecorder) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.Users)
}
