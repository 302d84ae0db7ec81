// Package participant adapts one scripted role over the shared model backend.
package participant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"triad/pkg/agent/llm"
	"triad/pkg/logx"
	"triad/pkg/transcript"
)

// ErrBackendUnavailable reports that a participant could not produce a reply.
var ErrBackendUnavailable = errors.New("backend unavailable")

// Participant is one role with its fixed persona. Created once at startup.
type Participant struct {
	Persona string
	Role    transcript.Role
}

// Adapter sends the transcript plus a persona to the backend and returns one reply.
type Adapter struct {
	backend     llm.LLMClient
	logger      *logx.Logger
	participant Participant
	maxTokens   int
	temperature float32
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithMaxTokens caps the reply length in tokens.
func WithMaxTokens(n int) Option {
	return func(a *Adapter) {
		if n > 0 {
			a.maxTokens = n
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float32) Option {
	return func(a *Adapter) { a.temperature = t }
}

// NewAdapter creates an adapter for p over backend.
func NewAdapter(p Participant, backend llm.LLMClient, opts ...Option) (*Adapter, error) {
	if !p.Role.IsParticipant() {
		return nil, fmt.Errorf("role %s cannot be a participant", p.Role)
	}
	if backend == nil {
		return nil, fmt.Errorf("participant %s: nil backend", p.Role)
	}
	a := &Adapter{
		backend:     backend,
		logger:      logx.NewLogger(p.Role.String()),
		participant: p,
		maxTokens:   llm.DefaultMaxTokens,
		temperature: llm.TemperatureDefault,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Role returns the adapter's role.
func (a *Adapter) Role() transcript.Role {
	return a.participant.Role
}

// Respond makes exactly one backend call with the full transcript and returns
// the reply attributed to this adapter's role. It never mutates t.
func (a *Adapter) Respond(ctx context.Context, t *transcript.Transcript) (transcript.Message, error) {
	role := a.participant.Role
	ctx = logx.WithAgentID(ctx, role.String())

	req := llm.NewCompletionRequest(BuildPrompt(role, a.participant.Persona, t.All()))
	req.MaxTokens = a.maxTokens
	req.Temperature = a.temperature

	logx.Debug(ctx, "participant", "Sending %d messages to %s", len(req.Messages), a.backend.GetModelName())

	resp, err := a.backend.Complete(ctx, req)
	if err != nil {
		return transcript.Message{}, fmt.Errorf("%w: %w", ErrBackendUnavailable, logx.Wrap(err, role.DisplayName()))
	}
	if strings.TrimSpace(resp.Content) == "" {
		return transcript.Message{}, logx.Errorf("%w: %s: empty reply", ErrBackendUnavailable, role.DisplayName())
	}

	a.logger.Debug("Reply of %d chars", len(resp.Content))
	return transcript.Message{Role: role, Content: resp.Content}, nil
}

// BuildPrompt renders the transcript for one role: the persona as the system
// message, the user's request as a user message, the role's own earlier
// replies as assistant messages and everyone else's replies as user messages
// tagged with the author's display name.
func BuildPrompt(self transcript.Role, persona string, msgs []transcript.Message) []llm.CompletionMessage {
	out := make([]llm.CompletionMessage, 0, len(msgs)+1)
	out = append(out, llm.NewSystemMessage(persona))
	for i := range msgs {
		m := &msgs[i]
		switch {
		case m.Role == self:
			out = append(out, llm.NewAssistantMessage(m.Content))
		case m.Role.IsParticipant():
			out = append(out, llm.NewUserMessage(fmt.Sprintf("[%s] %s", m.Role.DisplayName(), m.Content)))
		default:
			out = append(out, llm.NewUserMessage(m.Content))
		}
	}
	return out
}
