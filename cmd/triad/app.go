package main

import (
	"errors"
	"fmt"
	"io"

	"triad/pkg/agent"
	"triad/pkg/agent/llm"
	"triad/pkg/agent/middleware/metrics"
	"triad/pkg/artifact"
	"triad/pkg/config"
	"triad/pkg/eventlog"
	"triad/pkg/logx"
	"triad/pkg/orchestrator"
	"triad/pkg/participant"
	"triad/pkg/persistence"
	"triad/pkg/publish"
)

// app holds everything one invocation needs.
type app struct {
	orch        *orchestrator.Orchestrator
	recorder    *metrics.PrometheusRecorder
	ledger      *persistence.Ledger
	stdout      io.Writer
	metricsFile string
	closers     []func() error
}

func newApp(cfg *config.Config, stdout io.Writer) (*app, error) {
	a := &app{
		recorder:    metrics.NewPrometheusRecorder(),
		stdout:      stdout,
		metricsFile: cfg.MetricsFile,
	}

	backend, err := agent.NewLLMClientFactory(cfg.Backend, a.recorder).CreateClient()
	if err != nil {
		return nil, err
	}

	responders, err := newResponders(cfg, backend)
	if err != nil {
		return nil, err
	}

	publisher, err := newPublisher(cfg)
	if err != nil {
		return nil, err
	}
	sink := artifact.NewSink(cfg.ArtifactPath, publisher)

	observers := []orchestrator.Observer{orchestrator.NewStreamPrinter(stdout)}
	if cfg.RunDB != "" {
		ledger, err := persistence.Open(cfg.RunDB)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("%w: run ledger: %w", config.ErrConfiguration, err)
		}
		a.ledger = ledger
		a.closers = append(a.closers, ledger.Close)
		observers = append(observers, orchestrator.NewLedgerObserver(ledger))
	}
	if cfg.EventLogDir != "" {
		events, err := eventlog.NewWriter(cfg.EventLogDir)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("%w: event log: %w", config.ErrConfiguration, err)
		}
		a.closers = append(a.closers, events.Close)
		observers = append(observers, orchestrator.NewEventLogObserver(events))
	}

	a.orch, err = orchestrator.New(responders, sink, orchestrator.WithObserver(observers...))
	if err != nil {
		a.Close()
		return nil, err
	}

	logx.Infof("Backend %s/%s, artifact %s, publisher %s", cfg.Backend.Provider, backend.GetModelName(), sink.Path(), cfg.Publisher)
	return a, nil
}

func newResponders(cfg *config.Config, backend llm.LLMClient) ([]orchestrator.Responder, error) {
	personas, err := participant.LoadPersonas(cfg.PersonasFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrConfiguration, err)
	}

	responders := make([]orchestrator.Responder, 0, len(orchestrator.Order()))
	for _, role := range orchestrator.Order() {
		adapter, err := participant.NewAdapter(
			participant.Participant{Role: role, Persona: personas[role]},
			backend,
			participant.WithMaxTokens(cfg.Backend.MaxTokens),
			participant.WithTemperature(cfg.Backend.Temperature),
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", config.ErrConfiguration, err)
		}
		responders = append(responders, adapter)
	}
	return responders, nil
}

// newPublisher returns nil when publishing is disabled.
func newPublisher(cfg *config.Config) (artifact.Publisher, error) {
	switch cfg.Publisher {
	case config.PublisherScript:
		return publish.NewScriptPublisher(cfg.PublishScript, ""), nil
	case config.PublisherGitHub:
		p, err := publish.NewGitHubPublisher(publish.GitHubConfig{
			Token:  cfg.GitHub.Token,
			Repo:   cfg.GitHub.Repo,
			Branch: cfg.GitHub.Branch,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", config.ErrConfiguration, err)
		}
		return p, nil
	case config.PublisherNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: unknown publisher %q", config.ErrConfiguration, cfg.Publisher)
	}
}

// Close releases the ledger and event log. Safe to call more than once.
func (a *app) Close() {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if err := errors.Join(errs...); err != nil {
		logx.Warnf("Shutdown: %v", err)
	}
}
