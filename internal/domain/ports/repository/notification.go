package repository

import (
	"context"

	"org-subscription-saas/internal/domain/model"
)

type NotificationRepository interface {
	Save(ctx context.Context, tx Tx, n *model.WebNotification) error
	ListNewByUser(ctx context.Context, tx Tx, userID string) ([]*model.WebNotification, error)
	MarkRead(ctx context.Context, tx Tx, userID string) error
}
