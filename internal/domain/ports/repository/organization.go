package repository

import (
	"context"

	"org-subscription-saas/internal/domain/model"
)

type OrganizationRepository interface {
	Save(ctx context.Context, tx Tx, org *model.Organization) error
	FindByUserID(ctx context.Context, tx Tx, userID string) (*model.Organization, error)
	// Activate flips the payment flag with a compare-and-set
	// (payment=false -> true). Returns true only for the call that performed
	// the flip, so the activation side effect stays at-most-once.
	Activate(ctx context.Context, tx Tx, orgID string) (bool, error)
	CountActivated(ctx context.Context, tx Tx) (int, error)
}
