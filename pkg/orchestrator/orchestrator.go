// Package orchestrator drives the analyst, engineer and reviewer through a
// bounded round-robin conversation until an approved artifact appears.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"triad/pkg/artifact"
	"triad/pkg/logx"
	"triad/pkg/transcript"
)

// MaxRounds is the number of full analyst → engineer → reviewer cycles before giving up.
const MaxRounds = 3

// Order returns the fixed participant order used in every round.
func Order() []transcript.Role {
	return []transcript.Role{transcript.RoleAnalyst, transcript.RoleEngineer, transcript.RoleReviewer}
}

// Responder produces the next message for one participant role.
type Responder interface {
	Role() transcript.Role
	Respond(ctx context.Context, t *transcript.Transcript) (transcript.Message, error)
}

// ArtifactSink persists an extracted artifact and publishes it.
type ArtifactSink interface {
	PersistAndPublish(ctx context.Context, art artifact.Artifact) error
	Path() string
	HasPublisher() bool
}

// Orchestrator runs one conversation per call to Run. It holds no per-run state,
// so it can be reused for sequential runs.
type Orchestrator struct {
	sink         ArtifactSink
	logger       *logx.Logger
	newRunID     func() string
	now          func() time.Time
	participants []Responder
	observers    []Observer
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithObserver registers observers notified of run progress.
func WithObserver(observers ...Observer) Option {
	return func(o *Orchestrator) {
		for _, obs := range observers {
			if obs != nil {
				o.observers = append(o.observers, obs)
			}
		}
	}
}

// WithRunIDFunc overrides run ID generation.
func WithRunIDFunc(fn func() string) Option {
	return func(o *Orchestrator) {
		if fn != nil {
			o.newRunID = fn
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// New creates an orchestrator. Exactly one responder per participant role is
// required; they are arranged in Order regardless of the order given.
func New(responders []Responder, sink ArtifactSink, opts ...Option) (*Orchestrator, error) {
	if sink == nil {
		return nil, fmt.Errorf("%w: artifact sink is required", ErrConfiguration)
	}

	byRole := make(map[transcript.Role]Responder, len(responders))
	for _, r := range responders {
		if r == nil {
			return nil, fmt.Errorf("%w: nil responder", ErrConfiguration)
		}
		role := r.Role()
		if !role.IsParticipant() {
			return nil, fmt.Errorf("%w: %s cannot take a turn", ErrConfiguration, role)
		}
		if _, dup := byRole[role]; dup {
			return nil, fmt.Errorf("%w: duplicate responder for %s", ErrConfiguration, role)
		}
		byRole[role] = r
	}

	ordered := make([]Responder, 0, len(byRole))
	for _, role := range Order() {
		r, ok := byRole[role]
		if !ok {
			return nil, fmt.Errorf("%w: missing responder for %s", ErrConfiguration, role)
		}
		ordered = append(ordered, r)
	}

	o := &Orchestrator{
		participants: ordered,
		sink:         sink,
		logger:       logx.NewLogger("orchestrator"),
		newRunID:     uuid.NewString,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Run executes one orchestration for request. The returned Result is never nil.
//
// A fatal error (backend, persistence or cancellation) is returned alongside a
// FAILED result. Non-convergence is not an error: the result is EXHAUSTED and the
// error is nil. A publish failure leaves the run SUCCEEDED with Result.PublishErr set.
func (o *Orchestrator) Run(ctx context.Context, request string) (*Result, error) {
	res := &Result{
		RunID:        o.newRunID(),
		Request:      request,
		Status:       StateRunning,
		ArtifactPath: o.sink.Path(),
		StartedAt:    o.now(),
	}
	ctx = logx.WithAgentID(ctx, "orchestrator")

	t := transcript.New(request)
	o.logger.Info("🚀 Run %s started", res.RunID)
	o.notify(func(obs Observer) error { return obs.RunStarted(ctx, res) })

	for round := 0; round < MaxRounds; round++ {
		res.Rounds = round + 1
		for idx, p := range o.participants {
			logx.DebugState(ctx, "orchestrator", "enter", string(StateRunning), fmt.Sprintf("round=%d participant=%d", round, idx))

			if err := ctx.Err(); err != nil {
				return o.fail(ctx, res, fmt.Errorf("round %d: %w", round+1, err))
			}

			started := o.now()
			msg, err := p.Respond(ctx, t)
			if err != nil {
				// A backend error caused by our own cancellation is a cancellation.
				if ctxErr := ctx.Err(); ctxErr != nil {
					err = ctxErr
				}
				return o.fail(ctx, res, fmt.Errorf("round %d, %s: %w", round+1, p.Role().DisplayName(), err))
			}

			t.Append(msg)
			res.Turns++
			turn := Turn{
				RunID:    res.RunID,
				Round:    round + 1,
				Index:    idx,
				Message:  msg,
				Duration: o.now().Sub(started),
			}
			o.notify(func(obs Observer) error { return obs.TurnCompleted(ctx, turn) })

			art, ok := artifact.CheckAndExtract(t)
			if !ok {
				continue
			}
			return o.succeed(ctx, res, art)
		}
	}

	if err := res.transition(StateExhausted); err != nil {
		return o.fail(ctx, res, err)
	}
	o.logger.Warn("⚠️ Run %s exhausted %d rounds without approval", res.RunID, MaxRounds)
	o.finish(ctx, res)
	return res, nil
}

func (o *Orchestrator) succeed(ctx context.Context, res *Result, art *artifact.Artifact) (*Result, error) {
	err := o.sink.PersistAndPublish(ctx, *art)
	if err != nil && !errors.Is(err, ErrPublish) {
		return o.fail(ctx, res, err)
	}

	if tErr := res.transition(StateSucceeded); tErr != nil {
		return o.fail(ctx, res, tErr)
	}
	res.Artifact = art
	if err != nil {
		res.PublishErr = err
		o.logger.Warn("⚠️ Artifact kept at %s but publish failed: %v", res.ArtifactPath, err)
	} else {
		res.Published = o.sink.HasPublisher()
	}

	o.logger.Info("✅ Run %s succeeded after %d turns", res.RunID, res.Turns)
	o.finish(ctx, res)
	return res, nil
}

func (o *Orchestrator) fail(ctx context.Context, res *Result, err error) (*Result, error) {
	if !IsValidTransition(res.Status, StateFailed) {
		err = errors.Join(err, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, res.Status, StateFailed))
	}
	res.Status = StateFailed
	res.Err = err
	o.logger.Error("❌ Run %s failed: %v", res.RunID, err)
	o.finish(ctx, res)
	return res, err
}

func (o *Orchestrator) finish(ctx context.Context, res *Result) {
	res.FinishedAt = o.now()
	// Observers still get the final result when the run was cancelled.
	ctx = context.WithoutCancel(ctx)
	o.notify(func(obs Observer) error { return obs.RunFinished(ctx, res) })
}

func (o *Orchestrator) notify(fn func(Observer) error) {
	for _, obs := range o.observers {
		if err := fn(obs); err != nil {
			o.logger.Warn("observer %T: %v", obs, err)
		}
	}
}
