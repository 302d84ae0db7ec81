// Package validation provides response validation middleware for LLM clients.
package validation

import (
	"context"
	"fmt"
	"strings"

	"triad/pkg/agent/llm"
	"triad/pkg/agent/llmerrors"
	"triad/pkg/logx"
)

// EmptyResponseValidator turns replies with no usable content into
// ErrorTypeEmptyResponse errors. It never retries.
type EmptyResponseValidator struct {
	logger *logx.Logger
}

// NewEmptyResponseValidator creates a new validator. A nil logger gets a default one.
func NewEmptyResponseValidator(logger *logx.Logger) *EmptyResponseValidator {
	if logger == nil {
		logger = logx.NewLogger("empty-response-validator")
	}
	return &EmptyResponseValidator{logger: logger}
}

// Middleware returns a middleware function that rejects empty or
// whitespace-only completions. Backend errors pass through unchanged.
func (v *EmptyResponseValidator) Middleware() llm.Middleware {
	return func(next llm.LLMClient) llm.LLMClient {
		return llm.WrapClient(
			func(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
				resp, err := next.Complete(ctx, req)
				if err != nil {
					return resp, err //nolint:wrapcheck // Middleware intentionally passes through errors unchanged
				}

				if IsEmptyResponse(resp) {
					v.logger.Warn("Empty response from %s for %s (stop_reason=%q, %d chars)",
						next.GetModelName(), logx.AgentIDFromContext(ctx), resp.StopReason, len(resp.Content))
					return llm.CompletionResponse{}, llmerrors.NewError(
						llmerrors.ErrorTypeEmptyResponse,
						fmt.Sprintf("model %s returned no usable content", next.GetModelName()),
					)
				}
				return resp, nil
			},
			next.GetModelName,
		)
	}
}

// IsEmptyResponse reports whether a completion has no non-whitespace content.
func IsEmptyResponse(resp llm.CompletionResponse) bool {
	return strings.TrimSpace(resp.Content) == ""
}
