package orchestrator

import (
	"context"
	"fmt"

	"triad/pkg/eventlog"
	"triad/pkg/persistence"
)

// EventWriter is the part of eventlog.Writer used by EventLogObserver.
type EventWriter interface {
	WriteEvent(ev *eventlog.Event) error
}

// EventLogObserver mirrors run progress into the JSONL event log.
type EventLogObserver struct {
	w EventWriter
}

// NewEventLogObserver creates an observer writing to w.
func NewEventLogObserver(w EventWriter) *EventLogObserver {
	return &EventLogObserver{w: w}
}

func (o *EventLogObserver) RunStarted(_ context.Context, res *Result) error {
	return o.write(&eventlog.Event{
		Timestamp: res.StartedAt.UTC(),
		Kind:      eventlog.KindRunStarted,
		RunID:     res.RunID,
		Status:    string(res.Status),
	})
}

func (o *EventLogObserver) TurnCompleted(_ context.Context, turn Turn) error {
	return o.write(&eventlog.Event{
		Kind:          eventlog.KindTurn,
		RunID:         turn.RunID,
		Round:         turn.Round,
		Role:          turn.Message.Role.String(),
		ContentLength: len(turn.Message.Content),
		DurationMS:    turn.Duration.Milliseconds(),
	})
}

func (o *EventLogObserver) RunFinished(_ context.Context, res *Result) error {
	ev := &eventlog.Event{
		Timestamp:  res.FinishedAt.UTC(),
		Kind:       eventlog.KindRunFinished,
		RunID:      res.RunID,
		Status:     string(res.Status),
		Round:      res.Rounds,
		DurationMS: res.Duration().Milliseconds(),
	}
	if res.Err != nil {
		ev.Error = res.Err.Error()
	} else if res.PublishErr != nil {
		ev.Error = res.PublishErr.Error()
	}
	return o.write(ev)
}

func (o *EventLogObserver) write(ev *eventlog.Event) error {
	if err := o.w.WriteEvent(ev); err != nil {
		return fmt.Errorf("event log: %w", err)
	}
	return nil
}

// RunStore is the part of persistence.Ledger used by LedgerObserver.
type RunStore interface {
	SaveRun(ctx context.Context, run *persistence.Run) error
}

// LedgerObserver writes one ledger row when a run starts and updates it when it ends.
type LedgerObserver struct {
	BaseObserver
	store RunStore
}

// NewLedgerObserver creates an observer saving into store.
func NewLedgerObserver(store RunStore) *LedgerObserver {
	return &LedgerObserver{store: store}
}

func (o *LedgerObserver) RunStarted(ctx context.Context, res *Result) error {
	return o.save(ctx, res)
}

func (o *LedgerObserver) RunFinished(ctx context.Context, res *Result) error {
	return o.save(ctx, res)
}

func (o *LedgerObserver) save(ctx context.Context, res *Result) error {
	run := &persistence.Run{
		ID:         res.RunID,
		Request:    res.Request,
		Status:     string(res.Status),
		Rounds:     res.Rounds,
		Turns:      res.Turns,
		Published:  res.Published,
		StartedAt:  res.StartedAt,
		FinishedAt: res.FinishedAt,
	}
	if res.Artifact != nil {
		run.ArtifactPath = res.ArtifactPath
		run.ArtifactSHA256 = persistence.ContentHash(res.Artifact.Content)
	}
	switch {
	case res.Err != nil:
		run.Error = res.Err.Error()
		run.ErrorStage = Stage(res.Err)
	case res.PublishErr != nil:
		run.Error = res.PublishErr.Error()
		run.ErrorStage = Stage(res.PublishErr)
	}

	if err := o.store.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("run ledger: %w", err)
	}
	return nil
}
