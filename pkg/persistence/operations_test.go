package persistence

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	ledger, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ledger.Close() })
	return ledger
}

func TestSaveAndGetRun(t *testing.T) {
	ledger := openTestLedger(t)
	ctx := context.Background()
	started := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

	run := &Run{
		ID:             "run-1",
		Request:        "build a todo page",
		Status:         "SUCCEEDED",
		Rounds:         1,
		Turns:          3,
		ArtifactPath:   "index.html",
		ArtifactSHA256: ContentHash("<p>hi</p>"),
		Published:      true,
		StartedAt:      started,
		FinishedAt:     started.Add(42 * time.Second),
	}
	require.NoError(t, ledger.SaveRun(ctx, run))

	got, err := ledger.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, run, got)
}

func TestSaveRunUpdatesExisting(t *testing.T) {
	ledger := openTestLedger(t)
	ctx := context.Background()
	started := time.Now().UTC()

	require.NoError(t, ledger.SaveRun(ctx, &Run{ID: "r", Request: "req", Status: "RUNNING", StartedAt: started}))
	require.NoError(t, ledger.SaveRun(ctx, &Run{
		ID: "r", Request: "ignored", Status: "FAILED", Rounds: 2, Turns: 3,
		Error: "backend unavailable", ErrorStage: "backend", StartedAt: started, FinishedAt: started.Add(time.Second),
	}))

	got, err := ledger.GetRun(ctx, "r")
	require.NoError(t, err)
	assert.Equal(t, "req", got.Request, "request is fixed at insert")
	assert.Equal(t, "FAILED", got.Status)
	assert.Equal(t, "backend", got.ErrorStage)
	assert.Equal(t, 3, got.Turns)
	assert.False(t, got.Published)
}

func TestGetRunNotFound(t *testing.T) {
	ledger := openTestLedger(t)

	_, err := ledger.GetRun(context.Background(), "missing")
	require.ErrorIs(t, err, ErrRunNotFound)
}

func TestSaveRunRequiresID(t *testing.T) {
	ledger := openTestLedger(t)

	assert.Error(t, ledger.SaveRun(context.Background(), &Run{Status: "RUNNING"}))
	assert.Error(t, ledger.SaveRun(context.Background(), nil))
}

func TestSaveRunRejectsUnknownStatus(t *testing.T) {
	ledger := openTestLedger(t)

	err := ledger.SaveRun(context.Background(), &Run{ID: "x", Request: "r", Status: "PAUSED", StartedAt: time.Now()})
	assert.Error(t, err)
}

func TestCountByStatus(t *testing.T) {
	ledger := openTestLedger(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	statuses := []string{"SUCCEEDED", "EXHAUSTED", "SUCCEEDED", "FAILED"}
	for i, status := range statuses {
		require.NoError(t, ledger.SaveRun(ctx, &Run{
			ID:        string(rune('a' + i)),
			Request:   "req",
			Status:    status,
			StartedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	counts, err := ledger.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"SUCCEEDED": 2, "EXHAUSTED": 1, "FAILED": 1}, counts)
}

func TestSchemaIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.SaveRun(context.Background(), &Run{ID: "keep", Request: "r", Status: "EXHAUSTED", StartedAt: time.Now()}))
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = second.Close() }()

	_, err = second.GetRun(context.Background(), "keep")
	require.NoError(t, err)
}

func TestNewerSchemaRejected(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "future.db"))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = GetSchemaVersion(db)
	require.NoError(t, err)
	require.NoError(t, setSchemaVersion(db, CurrentSchemaVersion+1))

	_, err = NewLedger(db)
	assert.Error(t, err)
}

func TestContentHash(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", ContentHash(""))
	assert.Len(t, ContentHash("<p>hi</p>"), 64)
}
