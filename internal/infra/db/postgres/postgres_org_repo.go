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

var _ repository.OrganizationRepository = (*orgRepo)(nil)

type orgRepo struct{ pool *pgxpool.Pool }

func NewOrganizationRepo(pool *pgxpool.Pool) *orgRepo {
	return &orgRepo{pool: pool}
}

func (r *orgRepo) Save(ctx context.Context, tx repository.Tx, org *model.Organization) error {
	const q = `
INSERT INTO organizations (id, name, corporate_email, user_id, payment, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO UPDATE SET name=$2, corporate_email=$3, payment=$5;`

	_, err := execSQL(ctx, r.pool, tx, q, org.ID, org.Name, org.CorporateEmail, org.UserID, org.Payment, org.CreatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *orgRepo) FindByUserID(ctx context.Context, tx repository.Tx, userID string) (*model.Organization, error) {
	q := `SELECT id, name, corporate_email, user_id, payment, created_at FROM organizations WHERE user_id=$1`
	if inTx(tx) {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, err
	}

	org := &model.Organization{}
	if err := row.Scan(&org.ID, &org.Name, &org.CorporateEmail, &org.UserID, &org.Payment, &org.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return org, nil
}

// Activate flips payment=false -> true. RowsAffected()==0 means the flag was
// already set and the caller must not repeat activation side effects.
func (r *orgRepo) Activate(ctx context.Context, tx repository.Tx, orgID string) (bool, error) {
	const q = `UPDATE organizations SET payment=TRUE WHERE id=$1 AND payment=FALSE;`
	cmd, err := execSQL(ctx, r.pool, tx, q, orgID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return cmd.RowsAffected() >= 1, nil
}

func (r *orgRepo) CountActivated(ctx context.Context, tx repository.Tx) (int, error) {
	const q = `SELECT COUNT(*) FROM organizations WHERE payment=TRUE;`
	row, err := pickRow(ctx, r.pool, tx, q)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}
