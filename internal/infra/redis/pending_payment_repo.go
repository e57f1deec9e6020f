package redis

import (
	"context"
	"fmt"
	"time"

	"org-subscription-saas/internal/domain"
	"org-subscription-saas/internal/domain/ports/repository"
)

var _ repository.PendingPaymentRepository = (*PendingPaymentRepo)(nil)

// PendingPaymentRepo stores the per-session pointer to the most recently
// created pending payment. The pointer survives page refreshes while the
// payment is pending and is cleared once reconciliation reaches a terminal
// state; the TTL only guards against abandoned sessions.
type PendingPaymentRepo struct {
	client RedisClient
	ttl    time.Duration
}

func NewPendingPaymentRepo(client RedisClient, ttl time.Duration) *PendingPaymentRepo {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &PendingPaymentRepo{client: client, ttl: ttl}
}

func (s *PendingPaymentRepo) key(sessionID string) string {
	return fmt.Sprintf("pending_payment:%s", sessionID)
}

func (s *PendingPaymentRepo) Set(ctx context.Context, sessionID, providerPaymentID string) error {
	return s.client.Set(ctx, s.key(sessionID), providerPaymentID, s.ttl)
}

func (s *PendingPaymentRepo) Get(ctx context.Context, sessionID string) (string, error) {
	v, err := s.client.Get(ctx, s.key(sessionID))
	if err != nil {
		if IsNil(err) {
			return "", domain.ErrNoPendingPayment
		}
		return "", err
	}
	return v, nil
}

func (s *PendingPaymentRepo) Clear(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.key(sessionID))
}
