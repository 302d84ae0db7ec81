// Package agent provides LLM client factory with middleware chain construction.
package agent

import (
	"fmt"

	"triad/pkg/agent/internal/llmimpl/anthropic"
	"triad/pkg/agent/internal/llmimpl/google"
	"triad/pkg/agent/internal/llmimpl/ollama"
	"triad/pkg/agent/internal/llmimpl/openaiofficial"
	"triad/pkg/agent/llm"
	"triad/pkg/agent/middleware/metrics"
	"triad/pkg/agent/middleware/validation"
	"triad/pkg/config"
	"triad/pkg/logx"
)

// LLMClientFactory creates LLM clients with properly configured middleware chains.
type LLMClientFactory struct {
	backend         config.Backend
	metricsRecorder metrics.Recorder
	logger          *logx.Logger
}

// NewLLMClientFactory creates a new LLM client factory for one backend.
// A nil recorder disables metrics.
func NewLLMClientFactory(backend config.Backend, recorder metrics.Recorder) *LLMClientFactory {
	if recorder == nil {
		recorder = metrics.Nop()
	}
	return &LLMClientFactory{
		backend:         backend,
		metricsRecorder: recorder,
		logger:          logx.NewLogger("llm"),
	}
}

// CreateClient creates the shared backend client with its middleware chain:
// Metrics -> EmptyResponseValidator -> RawClient.
func (f *LLMClientFactory) CreateClient() (llm.LLMClient, error) {
	rawClient, err := NewRawClient(f.backend)
	if err != nil {
		return nil, err
	}

	client := llm.Chain(rawClient,
		metrics.Middleware(f.metricsRecorder, nil, f.logger),
		validation.NewEmptyResponseValidator(f.logger).Middleware(),
	)
	return client, nil
}

// NewRawClient builds the provider client without middleware.
func NewRawClient(b config.Backend) (llm.LLMClient, error) {
	if b.Model == "" {
		return nil, fmt.Errorf("%w: no model configured for provider %s", config.ErrConfiguration, b.Provider)
	}

	switch b.Provider {
	case config.ProviderAzure:
		if b.Endpoint == "" || b.APIKey == "" || b.APIVersion == "" {
			return nil, fmt.Errorf("%w: azure backend needs endpoint, API key and API version", config.ErrConfiguration)
		}
		return openaiofficial.NewAzureClient(b.Endpoint, b.APIKey, b.APIVersion, b.Model, b.Timeout), nil
	case config.ProviderOpenAI:
		return openaiofficial.NewChatClient(b.APIKey, b.Model, b.Timeout), nil
	case config.ProviderAnthropic:
		return anthropic.NewClaudeClient(b.APIKey, b.Model, b.Timeout), nil
	case config.ProviderGoogle:
		return google.NewGeminiClientWithModel(b.APIKey, b.Model, b.Timeout), nil
	case config.ProviderOllama:
		return ollama.NewOllamaClientWithModel(b.Endpoint, b.Model, b.Timeout), nil
	default:
		return nil, fmt.Errorf("%w: unsupported provider: %s", config.ErrConfiguration, b.Provider)
	}
}
