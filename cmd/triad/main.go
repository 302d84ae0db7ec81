// Command triad runs one analyst → engineer → reviewer conversation for a
// request and writes the approved HTML to disk.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"triad/pkg/agent/middleware/metrics"
	"triad/pkg/config"
	"triad/pkg/logx"
	"triad/pkg/orchestrator"
)

// Version information - set by goreleaser via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type options struct {
	request       string
	artifactPath  string
	publishScript string
	args          []string
	noPublish     bool
}

func main() {
	var (
		request       = flag.String("request", "", "Request to work on (prompted for when omitted)")
		artifactPath  = flag.String("artifact", "", "Where to write the approved HTML (default index.html)")
		publishScript = flag.String("publish-script", "", "Script run after the artifact is written (default push_to_github.sh)")
		noPublish     = flag.Bool("no-publish", false, "Write the artifact but skip publishing")
		showVersion   = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("triad %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
		os.Exit(0)
	}

	opts := options{
		request:       *request,
		artifactPath:  *artifactPath,
		publishScript: *publishScript,
		noPublish:     *noPublish,
		args:          flag.Args(),
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx, opts, os.Stdin, os.Stdout, term.IsTerminal(int(os.Stdin.Fd())))
	cancel()

	os.Exit(exitCode)
}

// run contains the main application logic and returns an exit code.
// This allows defers to execute before os.Exit is called.
func run(ctx context.Context, opts options, stdin io.Reader, stdout io.Writer, interactive bool) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Configuration failed: %v\n", err)
		return 1
	}
	applyOverrides(cfg, opts)

	request, err := readRequest(ctx, opts, stdin, stdout, interactive)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		return 1
	}

	a, err := newApp(cfg, stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Setup failed at %s stage: %v\n", orchestrator.Stage(err), err)
		return 1
	}
	defer a.Close()

	return a.execute(ctx, request)
}

func applyOverrides(cfg *config.Config, opts options) {
	if opts.artifactPath != "" {
		cfg.ArtifactPath = opts.artifactPath
	}
	if opts.publishScript != "" {
		cfg.Publisher = config.PublisherScript
		cfg.PublishScript = opts.publishScript
	}
	if opts.noPublish {
		cfg.Publisher = config.PublisherNone
	}
}

func (a *app) execute(ctx context.Context, request string) int {
	res, runErr := a.orch.Run(ctx, request)

	if a.metricsFile != "" {
		if err := metrics.WriteTextfile(a.recorder.Gatherer(), a.metricsFile); err != nil {
			logx.Warnf("Failed to write metrics file: %v", err)
		}
	}

	fmt.Fprintf(a.stdout, "\n%s\n", res.Summary())
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		logx.Infof("Run %s ended with error: %v", res.RunID, runErr)
	}
	a.logLedgerTotals(context.WithoutCancel(ctx))
	return res.Status.ExitCode()
}

// logLedgerTotals logs how many recorded runs ended in each state.
func (a *app) logLedgerTotals(ctx context.Context) {
	if a.ledger == nil {
		return
	}
	counts, err := a.ledger.CountByStatus(ctx)
	if err != nil {
		logx.Warnf("Failed to read run ledger totals: %v", err)
		return
	}
	logx.Infof("Run ledger: %d succeeded, %d exhausted, %d failed",
		counts[string(orchestrator.StateSucceeded)], counts[string(orchestrator.StateExhausted)], counts[string(orchestrator.StateFailed)])
}
