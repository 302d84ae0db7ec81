package orchestrator

import (
	"fmt"
	"time"

	"triad/pkg/artifact"
	"triad/pkg/transcript"
)

// Turn describes one completed participant call.
type Turn struct {
	Message  transcript.Message
	RunID    string
	Round    int // 1-based
	Index    int // position in Order
	Duration time.Duration
}

// Result is the outcome of one run.
//
//nolint:govet // fieldalignment: grouped by meaning
type Result struct {
	RunID   string
	Request string
	Status  State

	// Rounds is the number of rounds entered, Turns the number of replies appended.
	Rounds int
	Turns  int

	Artifact     *artifact.Artifact
	ArtifactPath string
	Published    bool

	// Err is the fatal error of a FAILED run.
	Err error
	// PublishErr is set when the artifact was written but publishing failed.
	PublishErr error

	StartedAt  time.Time
	FinishedAt time.Time
}

func (r *Result) transition(to State) error {
	if !IsValidTransition(r.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, to)
	}
	r.Status = to
	return nil
}

// Duration is the wall time of the run.
func (r *Result) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Summary is the terminal status line shown to the user.
func (r *Result) Summary() string {
	switch r.Status {
	case StateSucceeded:
		switch {
		case r.PublishErr != nil:
			return fmt.Sprintf("⚠️ HTML code saved to %s, but publishing failed: %v", r.ArtifactPath, r.PublishErr)
		case r.Published:
			return fmt.Sprintf("✅ HTML code saved to %s and published.", r.ArtifactPath)
		default:
			return fmt.Sprintf("✅ HTML code saved to %s.", r.ArtifactPath)
		}
	case StateExhausted:
		return fmt.Sprintf("⚠️ Run ended: no approval after %d rounds.", MaxRounds)
	case StateFailed:
		return fmt.Sprintf("❌ Run failed at %s stage: %v", Stage(r.Err), r.Err)
	case StateRunning:
		return "run still in progress"
	default:
		return fmt.Sprintf("unknown run state %q", r.Status)
	}
}
