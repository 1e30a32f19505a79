package generator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/anneauger/coco/internal/logging"
)

// Exec runs a generator as a local child process.
type Exec struct {
	// Command is the program and its leading arguments, for example
	// ["python", "-m", "cocopp.rungeneric1"]. Invocation.Args are appended.
	Command []string

	// Dir is the working directory of the child. Empty inherits ours.
	Dir string
}

// Generate starts the command, waits for it and returns its exit status.
// The run configuration reaches the child as COCOPP_* environment
// variables on top of the inherited environment.
func (e *Exec) Generate(ctx context.Context, inv *Invocation) (int, error) {
	if len(e.Command) == 0 {
		return -1, fmt.Errorf("no command configured for %s generator", inv.Kind)
	}

	argv := make([]string, 0, len(e.Command)-1+len(inv.Args))
	argv = append(argv, e.Command[1:]...)
	argv = append(argv, inv.Args...)

	// #nosec G204 -- the command comes from the user's configuration file
	cmd := exec.CommandContext(ctx, e.Command[0], argv...)
	cmd.Dir = e.Dir
	cmd.Stdout = inv.stdout()
	cmd.Stderr = inv.stderr()
	cmd.Env = os.Environ()
	if inv.Run != nil {
		cmd.Env = append(cmd.Env, inv.Run.Environ()...)
	}

	logging.FromContext(ctx).Debug("starting generator",
		"kind", inv.Kind,
		"command", strings.Join(cmd.Args, " "))

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	// A non-zero exit is a status, not a failure to run.
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, fmt.Errorf("failed to run %s: %w", e.Command[0], err)
}
