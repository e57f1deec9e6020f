package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"org-subscription-saas/internal/domain"
	"org-subscription-saas/internal/domain/model"
	"org-subscription-saas/internal/domain/ports/repository"
)

var _ repository.PaymentRepository = (*paymentRepo)(nil)

type paymentRepo struct{ pool *pgxpool.Pool }

func NewPaymentRepo(pool *pgxpool.Pool) *paymentRepo {
	return &paymentRepo{pool: pool}
}

const paymentColumns = `id, user_id, provider, provider_payment_id, amount_kopecks, currency, description, status, created_at, updated_at, paid_at, meta`

func scanPayment(row pgx.Row) (*model.PaymentHistory, error) {
	p := &model.PaymentHistory{}
	if err := row.Scan(&p.ID, &p.UserID, &p.Provider, &p.ProviderPaymentID, &p.AmountKopecks, &p.Currency, &p.Description, &p.Status, &p.CreatedAt, &p.UpdatedAt, &p.PaidAt, &p.Meta); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return p, nil
}

func (r *paymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.PaymentHistory) error {
	const q = `
INSERT INTO payment_history (
  id, user_id, provider, provider_payment_id, amount_kopecks, currency, description, status, created_at, updated_at, paid_at, meta
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12
) ON CONFLICT (id) DO UPDATE SET
  status=$8, updated_at=$10, paid_at=$11, meta=$12;`

	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.UserID, p.Provider, p.ProviderPaymentID, p.AmountKopecks, p.Currency, p.Description, p.Status, p.CreatedAt, p.UpdatedAt, p.PaidAt, p.Meta)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *paymentRepo) FindByProviderID(ctx context.Context, tx repository.Tx, providerPaymentID string) (*model.PaymentHistory, error) {
	q := `SELECT ` + paymentColumns + ` FROM payment_history WHERE provider_payment_id=$1`
	if inTx(tx) {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, providerPaymentID)
	if err != nil {
		return nil, err
	}
	return scanPayment(row)
}

func (r *paymentRepo) FindLastByUser(ctx context.Context, tx repository.Tx, userID string) (*model.PaymentHistory, error) {
	q := `SELECT ` + paymentColumns + ` FROM payment_history WHERE user_id=$1 ORDER BY created_at DESC LIMIT 1`
	if inTx(tx) {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, err
	}
	return scanPayment(row)
}

func (r *paymentRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.PaymentStatus, paidAt *time.Time) error {
	const q = `UPDATE payment_history SET status=$2, paid_at=COALESCE($3, paid_at), updated_at=NOW() WHERE id=$1;`
	_, err := execSQL(ctx, r.pool, tx, q, id, status, paidAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

// UpdateStatusIfPending atomically transitions the record out of 'pending'.
// The row count tells the caller whether it was the one that consumed the
// transition.
func (r *paymentRepo) UpdateStatusIfPending(ctx context.Context, tx repository.Tx, id string, status model.PaymentStatus, paidAt *time.Time) (bool, error) {
	const q = `
UPDATE payment_history
   SET status = $2,
       paid_at = COALESCE($3, paid_at),
       updated_at = NOW()
 WHERE id = $1
   AND status = 'pending';`

	cmd, err := execSQL(ctx, r.pool, tx, q, id, string(status), paidAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return cmd.RowsAffected() >= 1, nil
}

func (r *paymentRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.PaymentHistory, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `SELECT ` + paymentColumns + ` FROM payment_history WHERE status='pending' AND created_at < $1 ORDER BY created_at ASC LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, olderThan, limit)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return nil, err
		}
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.PaymentHistory
	for rows.Next() {
		p := new(model.PaymentHistory)
		if err := rows.Scan(&p.ID, &p.UserID, &p.Provider, &p.ProviderPaymentID, &p.AmountKopecks, &p.Currency, &p.Description, &p.Status, &p.CreatedAt, &p.UpdatedAt, &p.PaidAt, &p.Meta); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *paymentRepo) SumSucceededByPeriod(ctx context.Context, tx repository.Tx, period string) (int64, error) {
	const q = `SELECT COALESCE(SUM(amount_kopecks),0) FROM payment_history WHERE status='succeeded' AND paid_at >= DATE_TRUNC($1, NOW());`
	row, err := pickRow(ctx, r.pool, tx, q, period)
	if err != nil {
		return 0, err
	}
	var sum int64
	if err := row.Scan(&sum); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return sum, nil
}
