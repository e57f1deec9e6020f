package model

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"org-subscription-saas/internal/domain"
)

type NotificationKind string

const (
	NotificationPaymentReceived NotificationKind = "payment_received"
	NotificationOrgActivated    NotificationKind = "org_activated"
)

// WebNotification is an in-app notification row shown until marked read.
type WebNotification struct {
	ID        string // ULID
	UserID    string
	Kind      NotificationKind
	Message   string
	IsNew     bool
	CreatedAt time.Time
}

func NewWebNotification(userID string, kind NotificationKind, message string) (*WebNotification, error) {
	if userID == "" || kind == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &WebNotification{
		ID:        ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		UserID:    userID,
		Kind:      kind,
		Message:   message,
		IsNew:     true,
		CreatedAt: now,
	}, nil
}
