package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func azureEnv() map[string]string {
	return map[string]string{
		EnvAzureDeployment: "gpt-4o-deploy",
		EnvAzureEndpoint:   "https://example.openai.azure.com",
		EnvAzureAPIKey:     "secret",
		EnvAzureAPIVersion: "2024-06-01",
	}
}

func TestLoadFromAzureDefaults(t *testing.T) {
	cfg, err := LoadFrom(lookupFrom(azureEnv()))
	require.NoError(t, err)

	assert.Equal(t, ProviderAzure, cfg.Backend.Provider)
	assert.Equal(t, "gpt-4o-deploy", cfg.Backend.Model)
	assert.Equal(t, "https://example.openai.azure.com", cfg.Backend.Endpoint)
	assert.Equal(t, "2024-06-01", cfg.Backend.APIVersion)
	assert.Equal(t, DefaultMaxTokens, cfg.Backend.MaxTokens)
	assert.InDelta(t, DefaultTemperature, cfg.Backend.Temperature, 1e-6)
	assert.Equal(t, DefaultBackendTimeout, cfg.Backend.Timeout)
	assert.Equal(t, DefaultArtifactPath, cfg.ArtifactPath)
	assert.Equal(t, PublisherScript, cfg.Publisher)
	assert.Equal(t, DefaultPublishScript, cfg.PublishScript)
}

func TestLoadFromMissingAzureNamesEveryVariable(t *testing.T) {
	_, err := LoadFrom(lookupFrom(map[string]string{EnvAzureAPIKey: "secret"}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfiguration))

	for _, key := range []string{EnvAzureDeployment, EnvAzureEndpoint, EnvAzureAPIVersion} {
		assert.Contains(t, err.Error(), key)
	}
	assert.NotContains(t, err.Error(), EnvAzureAPIKey)
}

func TestLoadFromBlankValueCountsAsMissing(t *testing.T) {
	env := azureEnv()
	env[EnvAzureEndpoint] = "   "
	_, err := LoadFrom(lookupFrom(env))
	require.ErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), EnvAzureEndpoint)
}

func TestLoadFromProviders(t *testing.T) {
	tests := []struct {
		name      string
		env       map[string]string
		wantModel string
		wantErr   bool
	}{
		{
			name:      "openai",
			env:       map[string]string{EnvProvider: "openai", EnvOpenAIAPIKey: "k"},
			wantModel: DefaultOpenAIModel,
		},
		{
			name:      "anthropic with model override",
			env:       map[string]string{EnvProvider: "Anthropic", EnvAnthropicAPIKey: "k", EnvModel: "claude-opus-4-1"},
			wantModel: "claude-opus-4-1",
		},
		{
			name:      "gemini",
			env:       map[string]string{EnvProvider: "gemini", EnvGoogleAPIKey: "k"},
			wantModel: DefaultGoogleModel,
		},
		{
			name:      "ollama needs no key",
			env:       map[string]string{EnvProvider: "ollama"},
			wantModel: DefaultOllamaModel,
		},
		{
			name:    "openai without key",
			env:     map[string]string{EnvProvider: "openai"},
			wantErr: true,
		},
		{
			name:    "unknown provider",
			env:     map[string]string{EnvProvider: "bard"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFrom(lookupFrom(tt.env))
			if tt.wantErr {
				require.ErrorIs(t, err, ErrConfiguration)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantModel, cfg.Backend.Model)
		})
	}
}

func TestLoadFromOllamaHost(t *testing.T) {
	cfg, err := LoadFrom(lookupFrom(map[string]string{EnvProvider: "ollama"}))
	require.NoError(t, err)
	assert.Equal(t, DefaultOllamaHost, cfg.Backend.Endpoint)

	cfg, err = LoadFrom(lookupFrom(map[string]string{EnvProvider: "ollama", EnvOllamaHost: "http://gpu:11434"}))
	require.NoError(t, err)
	assert.Equal(t, "http://gpu:11434", cfg.Backend.Endpoint)
}

func TestLoadFromTuning(t *testing.T) {
	env := azureEnv()
	env[EnvMaxTokens] = "1024"
	env[EnvTemperature] = "0.9"
	env[EnvBackendTimeout] = "45s"
	env[EnvArtifactPath] = "out/page.html"
	env[EnvRunDB] = "runs.db"
	env[EnvEventLogDir] = "logs"
	env[EnvMetricsFile] = "triad.prom"

	cfg, err := LoadFrom(lookupFrom(env))
	require.NoError(t, err)
	assert.Equal(t, 1024, cfg.Backend.MaxTokens)
	assert.InDelta(t, 0.9, cfg.Backend.Temperature, 1e-6)
	assert.Equal(t, 45*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "out/page.html", cfg.ArtifactPath)
	assert.Equal(t, "runs.db", cfg.RunDB)
	assert.Equal(t, "logs", cfg.EventLogDir)
	assert.Equal(t, "triad.prom", cfg.MetricsFile)
}

func TestLoadFromInvalidTuning(t *testing.T) {
	tests := map[string]string{
		EnvMaxTokens:      "-5",
		EnvTemperature:    "hot",
		EnvBackendTimeout: "soon",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			env := azureEnv()
			env[key] = value
			_, err := LoadFrom(lookupFrom(env))
			require.ErrorIs(t, err, ErrConfiguration)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoadFromGitHubPublisher(t *testing.T) {
	env := azureEnv()
	env[EnvPublisher] = "github"
	_, err := LoadFrom(lookupFrom(env))
	require.ErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), EnvGitHubToken)
	assert.Contains(t, err.Error(), EnvGitHubRepo)

	env[EnvGitHubToken] = "ghp_x"
	env[EnvGitHubRepo] = "acme/site"
	env[EnvGitHubBranch] = "gh-pages"
	cfg, err := LoadFrom(lookupFrom(env))
	require.NoError(t, err)
	assert.Equal(t, GitHub{Token: "ghp_x", Repo: "acme/site", Branch: "gh-pages"}, cfg.GitHub)
}

func TestLoadFromUnknownPublisher(t *testing.T) {
	env := azureEnv()
	env[EnvPublisher] = "ftp"
	_, err := LoadFrom(lookupFrom(env))
	require.ErrorIs(t, err, ErrConfiguration)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("TRIAD_DOTENV_PROBE=from-file\n"), 0o600))

	t.Setenv("TRIAD_DOTENV_PROBE", "")
	require.NoError(t, os.Unsetenv("TRIAD_DOTENV_PROBE"))
	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("TRIAD_DOTENV_PROBE"))

	// Existing values win.
	t.Setenv("TRIAD_DOTENV_PROBE", "from-env")
	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-env", os.Getenv("TRIAD_DOTENV_PROBE"))
}

func TestLoadDotEnvMissingFileIsIgnored(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")))
}
