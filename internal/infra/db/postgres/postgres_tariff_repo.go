package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"org-subscription-saas/internal/domain"
	"org-subscription-saas/internal/domain/model"
	"org-subscription-saas/internal/domain/ports/repository"
)

var _ repository.TariffRepository = (*tariffRepo)(nil)

type tariffRepo struct{ pool *pgxpool.Pool }

func NewTariffRepo(pool *pgxpool.Pool) *tariffRepo {
	return &tariffRepo{pool: pool}
}

func (r *tariffRepo) Save(ctx context.Context, tx repository.Tx, t *model.Tariff) error {
	const q = `
INSERT INTO tariffs (id, duration, user_count, price_per_user_kopecks, created_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (duration, user_count) DO UPDATE SET price_per_user_kopecks=$4;`

	_, err := execSQL(ctx, r.pool, tx, q, t.ID, t.Duration, t.UserCount, t.PricePerUserKopecks, t.CreatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *tariffRepo) FindByPlan(ctx context.Context, tx repository.Tx, duration model.TariffDuration, userCount int) (*model.Tariff, error) {
	const q = `SELECT id, duration, user_count, price_per_user_kopecks, created_at FROM tariffs WHERE duration=$1 AND user_count=$2;`
	row, err := pickRow(ctx, r.pool, tx, q, duration, userCount)
	if err != nil {
		return nil, err
	}

	t := &model.Tariff{}
	if err := row.Scan(&t.ID, &t.Duration, &t.UserCount, &t.PricePerUserKopecks, &t.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTariffNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return t, nil
}

func (r *tariffRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Tariff, error) {
	const q = `SELECT id, duration, user_count, price_per_user_kopecks, created_at FROM tariffs ORDER BY user_count, duration;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return nil, err
		}
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.Tariff
	for rows.Next() {
		t := new(model.Tariff)
		if err := rows.Scan(&t.ID, &t.Duration, &t.UserCount, &t.PricePerUserKopecks, &t.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, t)
	}
	return out, nil
}
