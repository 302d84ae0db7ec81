package artifact

import (
	"context"
	"errors"
	"fmt"
	"os"

	"triad/pkg/logx"
)

// DefaultPath is the file the artifact is written to, relative to the working directory.
const DefaultPath = "index.html"

var (
	// ErrPersistence indicates the artifact could not be written. Publishing is skipped.
	ErrPersistence = errors.New("artifact persistence failed")
	// ErrPublish indicates the publish action failed after the artifact was written.
	ErrPublish = errors.New("artifact publish failed")
)

// Publisher pushes a persisted artifact somewhere else.
type Publisher interface {
	Publish(ctx context.Context, path string) error
}

// Sink persists artifacts to a fixed path and hands them to a Publisher.
type Sink struct {
	publisher Publisher
	logger    *logx.Logger
	path      string
}

// NewSink creates a sink writing to path. An empty path means DefaultPath.
// A nil publisher skips the publish step.
func NewSink(path string, publisher Publisher) *Sink {
	if path == "" {
		path = DefaultPath
	}
	return &Sink{
		path:      path,
		publisher: publisher,
		logger:    logx.NewLogger("sink"),
	}
}

// Path returns the destination file.
func (s *Sink) Path() string {
	return s.path
}

// HasPublisher reports whether a publish step follows the write.
func (s *Sink) HasPublisher() bool {
	return s.publisher != nil
}

// PersistAndPublish writes the artifact, overwriting any previous content, then
// runs the publisher and waits for it. A write failure wraps ErrPersistence and
// the publisher is never called. A publish failure wraps ErrPublish; the file stays.
func (s *Sink) PersistAndPublish(ctx context.Context, art Artifact) error {
	if err := os.WriteFile(s.path, []byte(art.Content), 0o644); err != nil { //nolint:gosec // artifact is meant to be readable
		return fmt.Errorf("%w: write %s: %w", ErrPersistence, s.path, err)
	}
	s.logger.Info("💾 Artifact written to %s (%d bytes)", s.path, len(art.Content))

	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.Publish(ctx, s.path); err != nil {
		return fmt.Errorf("%w: %w", ErrPublish, err)
	}
	s.logger.Info("📤 Artifact published")
	return nil
}
