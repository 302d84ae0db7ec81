package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"triad/pkg/config"
)

func TestNewRawClientProviders(t *testing.T) {
	tests := []struct {
		name    string
		backend config.Backend
		wantErr bool
	}{
		{
			name: "azure",
			backend: config.Backend{
				Provider: config.ProviderAzure, Model: "deploy", Endpoint: "https://x.openai.azure.com",
				APIKey: "k", APIVersion: "2024-06-01",
			},
		},
		{name: "openai", backend: config.Backend{Provider: config.ProviderOpenAI, Model: "gpt-4o", APIKey: "k"}},
		{name: "anthropic", backend: config.Backend{Provider: config.ProviderAnthropic, Model: "claude-sonnet-4-5", APIKey: "k"}},
		{name: "gemini", backend: config.Backend{Provider: config.ProviderGoogle, Model: "gemini-2.5-flash", APIKey: "k"}},
		{name: "ollama", backend: config.Backend{Provider: config.ProviderOllama, Model: "llama3.1", Endpoint: "http://localhost:11434"}},
		{name: "azure missing endpoint", backend: config.Backend{Provider: config.ProviderAzure, Model: "d", APIKey: "k"}, wantErr: true},
		{name: "no model", backend: config.Backend{Provider: config.ProviderOpenAI, APIKey: "k"}, wantErr: true},
		{name: "unknown provider", backend: config.Backend{Provider: "bard", Model: "x"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewRawClient(tt.backend)
			if tt.wantErr {
				require.ErrorIs(t, err, config.ErrConfiguration)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.backend.Model, client.GetModelName())
		})
	}
}

func TestCreateClientWrapsMiddleware(t *testing.T) {
	f := NewLLMClientFactory(config.Backend{Provider: config.ProviderOpenAI, Model: "gpt-4o", APIKey: "k"}, nil)
	client, err := f.CreateClient()
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", client.GetModelName())
}
