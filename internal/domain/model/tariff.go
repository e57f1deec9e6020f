package model

import (
	"time"

	"github.com/google/uuid"

	"org-subscription-saas/internal/domain"
)

type TariffDuration string

const (
	DurationMonthly  TariffDuration = "monthly"
	DurationAnnually TariffDuration = "annually"
	DurationTwoYears TariffDuration = "two_years"
)

// Months returns the number of billed months for the duration, or 0 for an
// unknown value.
func (d TariffDuration) Months() int64 {
	switch d {
	case DurationMonthly:
		return 1
	case DurationAnnually:
		return 12
	case DurationTwoYears:
		return 24
	default:
		return 0
	}
}

// UserCounts are the seat-count tiers a tariff can be purchased for.
var UserCounts = []int{50, 100, 250, 500, 1000}

// Tariff is one cell of the price matrix: a duration x seat-count combination
// with a per-seat monthly price.
type Tariff struct {
	ID                  string // UUID
	Duration            TariffDuration
	UserCount           int
	PricePerUserKopecks int64
	CreatedAt           time.Time
}

func NewTariff(id string, duration TariffDuration, userCount int, pricePerUserKopecks int64) (*Tariff, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if duration.Months() == 0 || userCount <= 0 || pricePerUserKopecks <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Tariff{
		ID:                  id,
		Duration:            duration,
		UserCount:           userCount,
		PricePerUserKopecks: pricePerUserKopecks,
		CreatedAt:           time.Now(),
	}, nil
}

// TotalPrice is price_per_user x seats x billed months.
func (t *Tariff) TotalPrice() int64 {
	return t.PricePerUserKopecks * int64(t.UserCount) * t.Duration.Months()
}

func (t *Tariff) IsZero() bool { return t == nil || t.ID == "" }
