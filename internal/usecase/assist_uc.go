package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog"

	"org-subscription-saas/internal/domain"
	"org-subscription-saas/internal/domain/ports/adapter"
	"org-subscription-saas/internal/domain/ports/repository"
	"org-subscription-saas/internal/infra/logging"
	"org-subscription-saas/internal/infra/metrics"
)

const (
	assistRateLimit  = 20
	assistRateWindow = time.Minute
)

// RateLimiter gates per-user request rates. Backed by redis in production.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// Compile-time check
var _ AssistUseCase = (*assistUC)(nil)

// AssistUseCase proxies a single prompt to the chat model for users whose
// organization has an active subscription. No history, no streaming.
type AssistUseCase interface {
	Ask(ctx context.Context, userID, prompt string) (string, error)
}

type assistUC struct {
	orgs    repository.OrganizationRepository
	chat    adapter.ChatModel
	limiter RateLimiter
	encoder *tiktoken.Tiktoken // nil when no encoding could be loaded
	log     *zerolog.Logger
}

func NewAssistUseCase(orgs repository.OrganizationRepository, chat adapter.ChatModel, limiter RateLimiter, logger *zerolog.Logger) *assistUC {
	enc, err := tiktoken.EncodingForModel(chat.ModelName())
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
	}
	if err != nil {
		logger.Warn().Err(err).Msg("token encoding unavailable, prompt token metrics disabled")
		enc = nil
	}
	return &assistUC{
		orgs:    orgs,
		chat:    chat,
		limiter: limiter,
		encoder: enc,
		log:     logger,
	}
}

func (u *assistUC) Ask(ctx context.Context, userID, prompt string) (string, error) {
	defer logging.TraceDuration(u.log, "AssistUC.Ask")()
	prompt = strings.TrimSpace(prompt)
	if userID == "" || prompt == "" {
		metrics.IncAssist("rejected")
		return "", domain.ErrInvalidArgument
	}

	org, err := u.orgs.FindByUserID(ctx, repository.NoTX, userID)
	if errors.Is(err, domain.ErrNotFound) {
		metrics.IncAssist("rejected")
		return "", domain.ErrNoOrganization
	}
	if err != nil {
		metrics.IncAssist("error")
		return "", err
	}
	if !org.Payment {
		metrics.IncAssist("rejected")
		return "", domain.ErrSubscriptionInactive
	}

	if u.limiter != nil {
		ok, err := u.limiter.Allow(ctx, "rate_limit:"+userID+":assist", assistRateLimit, assistRateWindow)
		if err != nil {
			// A broken limiter should not take the feature down.
			u.log.Warn().Err(err).Str("user_id", userID).Msg("rate limiter unavailable")
		} else if !ok {
			metrics.IncAssist("rate_limited")
			return "", domain.ErrRateLimited
		}
	}

	if u.encoder != nil {
		metrics.AddAssistPromptTokens(u.chat.ModelName(), len(u.encoder.Encode(prompt, nil, nil)))
	}

	reply, err := u.chat.Complete(ctx, prompt)
	if err != nil {
		metrics.IncAssist("error")
		return "", err
	}
	metrics.IncAssist("ok")
	return reply, nil
}
