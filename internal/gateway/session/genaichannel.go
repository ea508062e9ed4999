package session

import (
	"context"
	"slices"
	"sync"

	"google.golang.org/genai"

	"github.com/tansive/nanobanana/internal/gateway/genclient"
)

// GenaiChannelFactory opens chat channels over the Gemini generate call.
type GenaiChannelFactory struct {
	gen genclient.Generator
}

var _ ChannelFactory = (*GenaiChannelFactory)(nil)

// NewGenaiChannelFactory returns a factory whose channels call gen.
func NewGenaiChannelFactory(gen genclient.Generator) *GenaiChannelFactory {
	return &GenaiChannelFactory{gen: gen}
}

func (f *GenaiChannelFactory) NewChannel(_ context.Context, model string, defaults *genai.GenerateContentConfig) (Channel, error) {
	if f == nil || f.gen == nil {
		return nil, ErrChannelFailed.Msg("no generator configured for chat channels")
	}
	return &genaiChannel{gen: f.gen, model: model, defaults: defaults}, nil
}

// genaiChannel keeps the conversation history client side and resends it on
// every call, as the Gemini chat API does.
type genaiChannel struct {
	gen      genclient.Generator
	model    string
	defaults *genai.GenerateContentConfig

	mu      sync.Mutex
	history []*genai.Content
	closed  bool
}

// Send uses cfg in place of the channel defaults when cfg is non-nil. History
// only grows when the call succeeds, so a failed call can be repeated.
func (c *genaiChannel) Send(ctx context.Context, message string, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if cfg == nil {
		cfg = c.defaults
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrChannelClosed
	}

	user := &genai.Content{Role: "user", Parts: []*genai.Part{{Text: message}}}
	contents := append(slices.Clone(c.history), user)
	resp, err := c.gen.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return nil, err
	}

	reply := &genai.Content{Role: "model"}
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		reply = resp.Candidates[0].Content
	}
	c.history = append(c.history, user, reply)
	return resp, nil
}

func (c *genaiChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.history = nil
	return nil
}
