package repository

import (
	"context"

	"org-subscription-saas/internal/domain/model"
)

type TariffRepository interface {
	Save(ctx context.Context, tx Tx, t *model.Tariff) error
	FindByPlan(ctx context.Context, tx Tx, duration model.TariffDuration, userCount int) (*model.Tariff, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.Tariff, error)
}
