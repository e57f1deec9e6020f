package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"org-subscription-saas/internal/domain"
)

// Organization is the tenant entity. Payment is the subscription-active flag;
// it flips to true exactly once, as the side effect of the first successful
// payment reconciliation for the owning user.
type Organization struct {
	ID             string // UUID
	Name           string
	CorporateEmail string // mail domain shared by the org's members
	UserID         string // owning user (one-to-one for billing purposes)
	Payment        bool
	CreatedAt      time.Time
}

func NewOrganization(id, name, corporateEmail, userID string) (*Organization, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if name == "" || userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	corporateEmail = strings.ToLower(strings.TrimSpace(corporateEmail))
	if corporateEmail == "" || strings.Contains(corporateEmail, "@") {
		// stored as a bare mail domain, not a full address
		return nil, domain.ErrInvalidArgument
	}
	return &Organization{
		ID:             id,
		Name:           name,
		CorporateEmail: corporateEmail,
		UserID:         userID,
		Payment:        false,
		CreatedAt:      time.Now(),
	}, nil
}

func (o *Organization) IsZero() bool { return o == nil || o.ID == "" }
