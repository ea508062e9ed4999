// Package session manages multi-turn image chats. A Manager owns the registry
// of live sessions; each Session owns an ordered transcript and the remote
// channel its turns are sent through.
package session

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/tansive/nanobanana/internal/gateway/genclient"
	"github.com/tansive/nanobanana/internal/gateway/params"
	"github.com/tansive/nanobanana/internal/gateway/resilience"
)

// Role identifies the author of a transcript turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one transcript entry. Content is nil for image-only replies.
type Turn struct {
	Role     Role    `json:"role"`
	Content  *string `json:"content"`
	HasImage bool    `json:"has_image,omitempty"`
}

// Session is one open image chat.
type Session struct {
	id      string
	model   params.Model
	policy  resilience.Policy
	channel Channel
	logger  zerolog.Logger
	closed  atomic.Bool

	sendMu     sync.Mutex   // one Send in flight at a time
	mu         sync.RWMutex // guards transcript
	transcript []Turn
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Model returns the model id the session was created with.
func (s *Session) Model() string {
	return s.model.ID
}

// Transcript returns a copy of the turns exchanged so far.
func (s *Session) Transcript() []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.transcript)
}

// TurnCount returns the number of completed user/assistant exchanges.
func (s *Session) TurnCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.transcript) / 2
}

// Send delivers prompt as the next turn and returns the normalized reply.
// aspectRatio and resolution override the defaults for this turn only.
//
// The channel does not inherit its defaults on a per-call config, so every
// turn restates the response modalities and the search tool along with the
// image settings. A failed turn leaves the transcript as it was.
func (s *Session) Send(ctx context.Context, prompt string, aspectRatio, resolution *string) (*genclient.Result, error) {
	ar, err := params.ValidateAspectRatio(aspectRatio)
	if err != nil {
		return nil, err
	}
	res, err := params.ValidateResolution(resolution)
	if err != nil {
		return nil, err
	}

	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if s.closed.Load() {
		return nil, ErrSessionNotFound
	}

	mark := s.appendTurns(Turn{Role: RoleUser, Content: &prompt})

	cfg := turnConfig(s.model, ar, res)
	resp, err := resilience.WithRetry(ctx, s.policy, func(ctx context.Context) (*genai.GenerateContentResponse, error) {
		// the session may be deleted while the previous attempt backs off
		if s.closed.Load() {
			return nil, ErrSessionNotFound
		}
		return s.channel.Send(ctx, prompt, cfg)
	})
	if errors.Is(err, ErrChannelClosed) {
		err = ErrSessionNotFound
	}
	if err != nil {
		s.truncate(mark)
		s.logger.Error().Err(err).Msg("turn failed")
		return nil, err
	}

	result := genclient.FromResponse(resp)
	s.appendTurns(Turn{Role: RoleAssistant, Content: result.Text, HasImage: result.HasImage()})
	s.logger.Info().
		Int("turn", s.TurnCount()).
		Bool("has_image", result.HasImage()).
		Msg("turn completed")
	return result, nil
}

// appendTurns appends to the transcript and returns its previous length.
func (s *Session) appendTurns(turns ...Turn) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.transcript)
	s.transcript = append(s.transcript, turns...)
	return n
}

func (s *Session) truncate(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = s.transcript[:n]
}

func (s *Session) close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.channel.Close()
}

// channelDefaults is the session-level configuration of a new channel.
func channelDefaults(model params.Model) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		ResponseModalities: genclient.ResponseModalities,
		Tools:              genclient.SearchTools(model),
	}
}

// turnConfig is the complete per-call configuration for one turn: the
// channel defaults restated plus the image settings.
func turnConfig(model params.Model, aspectRatio, resolution string) *genai.GenerateContentConfig {
	cfg := channelDefaults(model)
	cfg.ImageConfig = params.ImageConfig(model, aspectRatio, resolution)
	return cfg
}
