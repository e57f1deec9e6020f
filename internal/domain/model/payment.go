package model

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"org-subscription-saas/internal/domain"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"   // created at provider; awaiting confirmation
	PaymentStatusSucceeded PaymentStatus = "succeeded" // provider reported paid; org activated
	PaymentStatusCanceled  PaymentStatus = "canceled"  // provider reported canceled
	PaymentStatusFailed    PaymentStatus = "failed"    // verification failed
)

// IsTerminal reports whether no further reconciliation can change the status.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusSucceeded || s == PaymentStatusCanceled || s == PaymentStatusFailed
}

// PaymentHistory records one payment transaction created at the provider.
// Rows are an audit trail: they are mutated only by reconciliation and never deleted.
type PaymentHistory struct {
	ID                string // ULID
	UserID            string // owning user (UUID)
	Provider          string // e.g. "yookassa"
	ProviderPaymentID string // opaque gateway payment id, unique per transaction
	AmountKopecks     int64  // minor units to avoid float errors
	Currency          string // "RUB"
	Description       string
	Status            PaymentStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
	PaidAt            *time.Time             // set when succeeded
	Meta              map[string]interface{} // serialized as JSONB
}

// NewPaymentHistory validates and constructs a pending payment record.
func NewPaymentHistory(userID, provider, providerPaymentID string, amountKopecks int64, currency, description string, meta map[string]interface{}) (*PaymentHistory, error) {
	if userID == "" || provider == "" || providerPaymentID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if amountKopecks <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	if currency == "" {
		currency = "RUB"
	}
	now := time.Now()
	return &PaymentHistory{
		ID:                ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		UserID:            userID,
		Provider:          provider,
		ProviderPaymentID: providerPaymentID,
		AmountKopecks:     amountKopecks,
		Currency:          currency,
		Description:       description,
		Status:            PaymentStatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
		Meta:              meta,
	}, nil
}

func (p *PaymentHistory) IsZero() bool { return p == nil || p.ID == "" }
