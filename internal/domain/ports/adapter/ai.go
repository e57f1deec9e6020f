package adapter

import "context"

// ChatModel is the hex port for the chat-completion provider behind the
// assist endpoint. One model, one prompt, one reply; no history.
type ChatModel interface {
	ModelName() string
	Complete(ctx context.Context, prompt string) (string, error)
}
