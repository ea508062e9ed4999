package session

import (
	"context"

	"google.golang.org/genai"
)

// Channel is a remote multi-turn conversation. The cfg passed to Send
// replaces the channel defaults for that call; nothing is merged. Callers
// that need a capability on every turn must include it in every cfg.
type Channel interface {
	Send(ctx context.Context, message string, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	Close() error
}

// ChannelFactory opens channels for new sessions.
type ChannelFactory interface {
	NewChannel(ctx context.Context, model string, defaults *genai.GenerateContentConfig) (Channel, error)
}
