// Package config loads process configuration from the environment.
// It runs once at startup; a missing required value fails before any round begins.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"triad/pkg/logx"
)

// ErrConfiguration indicates missing or invalid configuration.
var ErrConfiguration = errors.New("configuration error")

// Provider constants.
const (
	ProviderAzure     = "azure"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGoogle    = "gemini"
	ProviderOllama    = "ollama"
)

// Publisher constants.
const (
	PublisherScript = "script"
	PublisherGitHub = "github"
	PublisherNone   = "none"
)

// Environment variable names.
const (
	EnvAzureDeployment = "AZURE_OPENAI_CHAT_DEPLOYMENT_NAME"
	EnvAzureEndpoint   = "AZURE_OPENAI_ENDPOINT"
	EnvAzureAPIKey     = "AZURE_OPENAI_API_KEY"
	EnvAzureAPIVersion = "AZURE_OPENAI_API_VERSION"

	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	EnvGoogleAPIKey    = "GEMINI_API_KEY"
	EnvOllamaHost      = "OLLAMA_HOST"

	EnvProvider       = "TRIAD_PROVIDER"
	EnvModel          = "TRIAD_MODEL"
	EnvMaxTokens      = "TRIAD_MAX_TOKENS"
	EnvTemperature    = "TRIAD_TEMPERATURE"
	EnvBackendTimeout = "TRIAD_BACKEND_TIMEOUT"
	EnvArtifactPath   = "TRIAD_ARTIFACT_PATH"
	EnvPublisher      = "TRIAD_PUBLISHER"
	EnvPublishScript  = "TRIAD_PUBLISH_SCRIPT"
	EnvPersonasFile   = "TRIAD_PERSONAS_FILE"
	EnvRunDB          = "TRIAD_RUN_DB"
	EnvEventLogDir    = "TRIAD_EVENT_LOG_DIR"
	EnvMetricsFile    = "TRIAD_METRICS_FILE"
	EnvGitHubToken    = "GITHUB_TOKEN"
	EnvGitHubRepo     = "TRIAD_GITHUB_REPO"
	EnvGitHubBranch   = "TRIAD_GITHUB_BRANCH"
)

// Defaults.
const (
	DefaultOpenAIModel    = "gpt-4o"
	DefaultAnthropicModel = "claude-sonnet-4-5"
	DefaultGoogleModel    = "gemini-2.5-flash"
	DefaultOllamaModel    = "llama3.1"
	DefaultOllamaHost     = "http://localhost:11434"
	DefaultMaxTokens      = 4096
	DefaultTemperature    = 0.3
	DefaultBackendTimeout = 120 * time.Second
	DefaultArtifactPath   = "index.html"
	DefaultPublishScript  = "push_to_github.sh"
)

// Backend holds everything needed to build the shared model client.
type Backend struct {
	Provider   string
	Model      string // deployment name for Azure
	Endpoint   string // Azure endpoint or Ollama host
	APIKey     string
	APIVersion string
	MaxTokens  int
	Timeout    time.Duration

	Temperature float32
}

// GitHub holds settings for the GitHub publisher.
type GitHub struct {
	Token  string
	Repo   string
	Branch string
}

// Config represents the full process configuration.
type Config struct {
	Backend       Backend
	GitHub        GitHub
	ArtifactPath  string
	Publisher     string
	PublishScript string
	PersonasFile  string
	RunDB         string
	EventLogDir   string
	MetricsFile   string
}

// LookupFunc reads one variable; it matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// LoadDotEnv loads variables from .env files that exist, without overriding
// values already present in the environment.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
		logx.Infof("Loaded environment from %s", p)
	}
	return nil
}

// Load reads .env (when present) and then the process environment.
func Load() (*Config, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return LoadFrom(os.LookupEnv)
}

// LoadFrom builds a Config from lookup. All missing required variables are
// reported together.
func LoadFrom(lookup LookupFunc) (*Config, error) {
	env := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	var missing []string
	require := func(key string) string {
		v := env(key)
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}

	cfg := &Config{
		ArtifactPath:  orDefault(env(EnvArtifactPath), DefaultArtifactPath),
		Publisher:     strings.ToLower(orDefault(env(EnvPublisher), PublisherScript)),
		PublishScript: orDefault(env(EnvPublishScript), DefaultPublishScript),
		PersonasFile:  env(EnvPersonasFile),
		RunDB:         env(EnvRunDB),
		EventLogDir:   env(EnvEventLogDir),
		MetricsFile:   env(EnvMetricsFile),
	}

	b := &cfg.Backend
	b.Provider = strings.ToLower(orDefault(env(EnvProvider), ProviderAzure))

	switch b.Provider {
	case ProviderAzure:
		b.Model = require(EnvAzureDeployment)
		b.Endpoint = require(EnvAzureEndpoint)
		b.APIKey = require(EnvAzureAPIKey)
		b.APIVersion = require(EnvAzureAPIVersion)
	case ProviderOpenAI:
		b.APIKey = require(EnvOpenAIAPIKey)
		b.Model = orDefault(env(EnvModel), DefaultOpenAIModel)
	case ProviderAnthropic:
		b.APIKey = require(EnvAnthropicAPIKey)
		b.Model = orDefault(env(EnvModel), DefaultAnthropicModel)
	case ProviderGoogle:
		b.APIKey = require(EnvGoogleAPIKey)
		b.Model = orDefault(env(EnvModel), DefaultGoogleModel)
	case ProviderOllama:
		b.Endpoint = orDefault(env(EnvOllamaHost), DefaultOllamaHost)
		b.Model = orDefault(env(EnvModel), DefaultOllamaModel)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q (want azure, openai, anthropic, gemini or ollama)", ErrConfiguration, b.Provider)
	}

	switch cfg.Publisher {
	case PublisherScript, PublisherNone:
	case PublisherGitHub:
		cfg.GitHub = GitHub{
			Token:  require(EnvGitHubToken),
			Repo:   require(EnvGitHubRepo),
			Branch: env(EnvGitHubBranch),
		}
	default:
		return nil, fmt.Errorf("%w: unknown publisher %q (want script, github or none)", ErrConfiguration, cfg.Publisher)
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: missing required environment variables: %s", ErrConfiguration, strings.Join(missing, ", "))
	}

	var err error
	if b.MaxTokens, err = parseInt(env(EnvMaxTokens), DefaultMaxTokens); err != nil || b.MaxTokens <= 0 {
		return nil, fmt.Errorf("%w: %s must be a positive integer", ErrConfiguration, EnvMaxTokens)
	}
	temp, err := parseFloat(env(EnvTemperature), DefaultTemperature)
	if err != nil || temp < 0 || temp > 2 {
		return nil, fmt.Errorf("%w: %s must be between 0 and 2", ErrConfiguration, EnvTemperature)
	}
	b.Temperature = float32(temp)
	if b.Timeout, err = parseDuration(env(EnvBackendTimeout), DefaultBackendTimeout); err != nil || b.Timeout <= 0 {
		return nil, fmt.Errorf("%w: %s must be a positive duration", ErrConfiguration, EnvBackendTimeout)
	}

	return cfg, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func parseInt(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse int: %w", err)
	}
	return n, nil
}

func parseFloat(v string, def float64) (float64, error) {
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		return 0, fmt.Errorf("parse float: %w", err)
	}
	return f, nil
}

func parseDuration(v string, def time.Duration) (time.Duration, error) {
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse duration: %w", err)
	}
	return d, nil
}
