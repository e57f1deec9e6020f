package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"org-subscription-saas/internal/domain"
	"org-subscription-saas/internal/domain/model"
	"org-subscription-saas/internal/domain/ports/repository"
)

var _ repository.NotificationRepository = (*notificationRepo)(nil)

type notificationRepo struct{ pool *pgxpool.Pool }

func NewNotificationRepo(pool *pgxpool.Pool) *notificationRepo {
	return &notificationRepo{pool: pool}
}

func (r *notificationRepo) Save(ctx context.Context, tx repository.Tx, n *model.WebNotification) error {
	const q = `
INSERT INTO web_notifications (id, user_id, kind, message, is_new, created_at)
VALUES ($1,$2,$3,$4,$5,$6);`

	_, err := execSQL(ctx, r.pool, tx, q, n.ID, n.UserID, n.Kind, n.Message, n.IsNew, n.CreatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *notificationRepo) ListNewByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.WebNotification, error) {
	const q = `SELECT id, user_id, kind, message, is_new, created_at FROM web_notifications WHERE user_id=$1 AND is_new ORDER BY created_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return nil, err
		}
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.WebNotification
	for rows.Next() {
		n := new(model.WebNotification)
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Message, &n.IsNew, &n.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *notificationRepo) MarkRead(ctx context.Context, tx repository.Tx, userID string) error {
	const q = `UPDATE web_notifications SET is_new=FALSE WHERE user_id=$1;`
	_, err := execSQL(ctx, r.pool, tx, q, userID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}
