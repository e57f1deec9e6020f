package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"org-subscription-saas/internal/domain/model"
	"org-subscription-saas/internal/domain/ports/adapter"
	"org-subscription-saas/internal/domain/ports/repository"
)

// Compile-time checks
var (
	_ NotificationUseCase = (*notificationUC)(nil)
	_ ActivationHook      = (*notificationUC)(nil)
)

// NotificationUseCase fans out activation events (admin mail + web
// notification) and serves the owner's notification feed. Fan-out failures are
// logged and swallowed: notifications must never fail the payment path.
type NotificationUseCase interface {
	OnOrganizationActivated(ctx context.Context, userID string)
	ListNew(ctx context.Context, userID string) ([]*model.WebNotification, error)
	MarkRead(ctx context.Context, userID string) error
}

type notificationUC struct {
	notifications repository.NotificationRepository
	orgs          repository.OrganizationRepository
	mailer        adapter.Mailer
	adminEmail    string
	log           *zerolog.Logger
}

func NewNotificationUseCase(
	notifications repository.NotificationRepository,
	orgs repository.OrganizationRepository,
	mailer adapter.Mailer,
	adminEmail string,
	logger *zerolog.Logger,
) *notificationUC {
	return &notificationUC{
		notifications: notifications,
		orgs:          orgs,
		mailer:        mailer,
		adminEmail:    adminEmail,
		log:           logger,
	}
}

func (u *notificationUC) OnOrganizationActivated(ctx context.Context, userID string) {
	orgName := "unknown"
	if org, err := u.orgs.FindByUserID(ctx, repository.NoTX, userID); err == nil {
		orgName = org.Name
	}

	n, err := model.NewWebNotification(userID, model.NotificationOrgActivated,
		"Payment received, your subscription is now active.")
	if err == nil {
		err = u.notifications.Save(ctx, repository.NoTX, n)
	}
	if err != nil {
		u.log.Error().Err(err).Str("user_id", userID).Msg("activation web notification not saved")
	}

	if u.mailer != nil && u.adminEmail != "" {
		body := fmt.Sprintf("Organization %q (owner %s) paid for a subscription.", orgName, userID)
		if err := u.mailer.Send(ctx, u.adminEmail, "New subscription payment", body); err != nil {
			u.log.Error().Err(err).Str("user_id", userID).Msg("activation admin mail not sent")
		}
	}
}

func (u *notificationUC) ListNew(ctx context.Context, userID string) ([]*model.WebNotification, error) {
	return u.notifications.ListNewByUser(ctx, repository.NoTX, userID)
}

func (u *notificationUC) MarkRead(ctx context.Context, userID string) error {
	return u.notifications.MarkRead(ctx, repository.NoTX, userID)
}
