package mocks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"triad/pkg/agent/llm"
)

func TestMockLLMClientSequence(t *testing.T) {
	m := NewMockLLMClient()
	boom := errors.New("boom")
	m.RespondWithReplies(Reply{Content: "a"}, Reply{Err: boom}, Reply{Content: "c"})

	ctx := context.Background()
	req := llm.NewCompletionRequest(nil)

	r, err := m.Complete(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "a", r.Content)

	_, err = m.Complete(ctx, req)
	assert.ErrorIs(t, err, boom)

	for range 2 {
		r, err = m.Complete(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "c", r.Content, "last reply repeats")
	}
	assert.Equal(t, 4, m.CallCount())
	assert.Len(t, m.Calls(), 4)
}

func TestMockPublisherSnapshots(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.html")
	require.NoError(t, os.WriteFile(path, []byte("<p>v1</p>"), 0o644))

	p := NewMockPublisher()
	require.NoError(t, p.Publish(context.Background(), path))

	p.FailWith(errors.New("push rejected"))
	require.Error(t, p.Publish(context.Background(), path))

	assert.Equal(t, 2, p.CallCount())
	assert.Equal(t, []string{"<p>v1</p>", "<p>v1</p>"}, p.Snapshots)
}
