package orchestrator

import (
	"context"
	"errors"

	"triad/pkg/artifact"
	"triad/pkg/config"
	"triad/pkg/participant"
)

// Re-exported public errors from domain packages.
var (
	// ErrConfiguration indicates required configuration is missing. Fatal before any round.
	ErrConfiguration = config.ErrConfiguration

	// ErrBackendUnavailable indicates a participant call failed. Aborts the run.
	ErrBackendUnavailable = participant.ErrBackendUnavailable

	// ErrPersistence indicates the artifact could not be written. Publishing is skipped.
	ErrPersistence = artifact.ErrPersistence

	// ErrPublish indicates publishing failed after the artifact was written.
	ErrPublish = artifact.ErrPublish
)

// ErrInvalidTransition indicates the run attempted an illegal state change.
var ErrInvalidTransition = errors.New("invalid state transition")

// Stage names the part of the run a fatal error came from.
func Stage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrBackendUnavailable):
		return "backend"
	case errors.Is(err, ErrPersistence):
		return "persistence"
	case errors.Is(err, ErrPublish):
		return "publish"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "orchestrator"
	}
}
