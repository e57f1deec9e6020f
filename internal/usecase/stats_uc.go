package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"org-subscription-saas/internal/domain/ports/repository"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

// StatsSummary is the admin dashboard snapshot: revenue from succeeded
// payments per period plus how many organizations have ever activated.
type StatsSummary struct {
	RevenueWeekKopecks     int64 `json:"revenue_week_kopecks"`
	RevenueMonthKopecks    int64 `json:"revenue_month_kopecks"`
	RevenueYearKopecks     int64 `json:"revenue_year_kopecks"`
	ActivatedOrganizations int   `json:"activated_organizations"`
}

type StatsUseCase interface {
	Summary(ctx context.Context) (*StatsSummary, error)
}

type statsUC struct {
	payments repository.PaymentRepository
	orgs     repository.OrganizationRepository
	log      *zerolog.Logger
}

func NewStatsUseCase(payments repository.PaymentRepository, orgs repository.OrganizationRepository, logger *zerolog.Logger) *statsUC {
	return &statsUC{payments: payments, orgs: orgs, log: logger}
}

func (u *statsUC) Summary(ctx context.Context) (*StatsSummary, error) {
	out := &StatsSummary{}
	var err error
	if out.RevenueWeekKopecks, err = u.payments.SumSucceededByPeriod(ctx, repository.NoTX, "week"); err != nil {
		return nil, err
	}
	if out.RevenueMonthKopecks, err = u.payments.SumSucceededByPeriod(ctx, repository.NoTX, "month"); err != nil {
		return nil, err
	}
	if out.RevenueYearKopecks, err = u.payments.SumSucceededByPeriod(ctx, repository.NoTX, "year"); err != nil {
		return nil, err
	}
	if out.ActivatedOrganizations, err = u.orgs.CountActivated(ctx, repository.NoTX); err != nil {
		return nil, err
	}
	return out, nil
}
