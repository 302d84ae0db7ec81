// Package publish provides the actions that push a persisted artifact to a remote.
package publish

import (
	"context"
	"errors"
	"os/exec"
	"strings"

	"triad/pkg/logx"
)

// DefaultScript is the publish script run when none is configured.
const DefaultScript = "push_to_github.sh"

// ScriptPublisher runs an external script with bash and waits for it.
// Only the exit status matters; output goes to the log.
type ScriptPublisher struct {
	logger  *logx.Logger
	shell   string
	script  string
	workDir string
}

// NewScriptPublisher creates a publisher for script. An empty script means DefaultScript.
func NewScriptPublisher(script, workDir string) *ScriptPublisher {
	if script == "" {
		script = DefaultScript
	}
	return &ScriptPublisher{
		shell:   "bash",
		script:  script,
		workDir: workDir,
		logger:  logx.NewLogger("publish"),
	}
}

// Script returns the script path.
func (p *ScriptPublisher) Script() string {
	return p.script
}

// Publish runs the script. The artifact path is not passed; the script knows where to look.
func (p *ScriptPublisher) Publish(ctx context.Context, _ string) error {
	cmd := exec.CommandContext(ctx, p.shell, p.script) //nolint:gosec // script path comes from operator config
	if p.workDir != "" {
		cmd.Dir = p.workDir
	}

	var stdoutBuf, stderrBuf strings.Builder
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err := cmd.Run()

	if out := strings.TrimSpace(stdoutBuf.String()); out != "" {
		p.logger.Info("%s stdout: %s", p.script, out)
	}
	if out := strings.TrimSpace(stderrBuf.String()); out != "" {
		p.logger.Warn("%s stderr: %s", p.script, out)
	}

	if err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return logx.Errorf("%s exited with status %d", p.script, exitError.ExitCode())
		}
		return logx.Wrap(err, "failed to run "+p.script)
	}
	return nil
}
