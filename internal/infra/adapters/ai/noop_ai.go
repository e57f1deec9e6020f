package ai

import (
	"context"
	"time"

	"org-subscription-saas/internal/domain/ports/adapter"
)

var _ adapter.ChatModel = (*NoopAIAdapter)(nil)

// NoopAIAdapter implements adapter.ChatModel for local/dev testing.
// It echoes a canned response instead of calling a real model.
type NoopAIAdapter struct{}

func NewNoopAIAdapter() *NoopAIAdapter {
	return &NoopAIAdapter{}
}

func (a *NoopAIAdapter) ModelName() string { return "noop-ai-model" }

func (a *NoopAIAdapter) Complete(ctx context.Context, prompt string) (string, error) {
	// Simulate slight processing time and respect ctx
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	if prompt == "" {
		return "", nil
	}
	return "This is a noop AI response.", nil
}
