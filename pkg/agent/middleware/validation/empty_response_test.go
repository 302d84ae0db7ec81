package validation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"triad/pkg/agent/llm"
	"triad/pkg/agent/llmerrors"
)

func stub(content string, err error, calls *int) llm.LLMClient {
	return llm.WrapClient(
		func(context.Context, llm.CompletionRequest) (llm.CompletionResponse, error) {
			*calls++
			return llm.CompletionResponse{Content: content}, err
		},
		func() string { return "stub-model" },
	)
}

func TestEmptyResponseValidator(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		err       error
		wantErr   bool
		wantEmpty bool
	}{
		{name: "content passes", content: "Requirements: ..."},
		{name: "empty rejected", content: "", wantErr: true, wantEmpty: true},
		{name: "whitespace rejected", content: " \n\t ", wantErr: true, wantEmpty: true},
		{name: "backend error passes through", err: errors.New("boom"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			client := llm.Chain(stub(tt.content, tt.err, &calls), NewEmptyResponseValidator(nil).Middleware())

			resp, err := client.Complete(context.Background(), llm.CompletionRequest{})
			assert.Equal(t, 1, calls, "never retries")
			assert.Equal(t, "stub-model", client.GetModelName())

			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, tt.content, resp.Content)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantEmpty, llmerrors.Is(err, llmerrors.ErrorTypeEmptyResponse))
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			}
		})
	}
}
