package devloop

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"plugmerge/internal/trace"
)

// ErrDeployFailed wraps a non-zero exit of the deployment script.
var ErrDeployFailed = errors.New("deploy script failed")

// Deploy runs script synchronously in dir with its output streamed to out.
func Deploy(ctx context.Context, script, dir string, out io.Writer) error {
	if script == "" {
		return errors.New("deploy: no script configured")
	}
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeStage, "deploy", 0)
	defer span.End("")

	cmd := exec.CommandContext(ctx, script)
	cmd.Dir = dir
	cmd.Stdout = out
	cmd.Stderr = out
	cmd.Env = os.Environ()

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			span.WithExtra("exit", fmt.Sprint(exitErr.ExitCode()))
			return fmt.Errorf("%w: %s exited with %d", ErrDeployFailed, script, exitErr.ExitCode())
		}
		return fmt.Errorf("deploy %s: %w", script, err)
	}
	return nil
}
