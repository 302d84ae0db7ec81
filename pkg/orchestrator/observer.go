package orchestrator

import (
	"context"
	"fmt"
	"io"
)

// Observer is notified as a run progresses. Errors are logged and never stop the run.
type Observer interface {
	RunStarted(ctx context.Context, res *Result) error
	TurnCompleted(ctx context.Context, turn Turn) error
	RunFinished(ctx context.Context, res *Result) error
}

// BaseObserver implements Observer with no-ops. Embed it to handle only some events.
type BaseObserver struct{}

func (BaseObserver) RunStarted(context.Context, *Result) error  { return nil }
func (BaseObserver) TurnCompleted(context.Context, Turn) error  { return nil }
func (BaseObserver) RunFinished(context.Context, *Result) error { return nil }

// StreamPrinter writes every participant message to w as it is produced.
type StreamPrinter struct {
	BaseObserver
	w io.Writer
}

// NewStreamPrinter creates a printer writing to w.
func NewStreamPrinter(w io.Writer) *StreamPrinter {
	return &StreamPrinter{w: w}
}

// TurnCompleted prints "[Name] says:" followed by the message.
func (p *StreamPrinter) TurnCompleted(_ context.Context, turn Turn) error {
	_, err := fmt.Fprintf(p.w, "\n[%s] says:\n%s\n", turn.Message.Role.DisplayName(), turn.Message.Content)
	if err != nil {
		return fmt.Errorf("print turn: %w", err)
	}
	return nil
}
