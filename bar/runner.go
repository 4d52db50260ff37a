package bar

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/ikenchina/rootbar/config"
)

var (
	ErrShellSpawn = errors.New("cannot spawn shell")
)

const killWaitDelay = 500 * time.Millisecond

type Result struct {
	Succeeded bool
	ExitCode  int
	Stdout    string
	Duration  time.Duration
}

// CommandRunner executes one command to completion. A non-zero exit is
// reported through Result, the error is reserved for failures to start.
type CommandRunner interface {
	Run(ctx context.Context, text string) (Result, error)
}

// ShellRunner runs commands through `<shell> -c` so quoting and shell
// operators keep working. Only stdout is captured.
type ShellRunner struct {
	Shell string
}

func NewShellRunner(shell string) ShellRunner {
	if shell == "" {
		shell = config.DefaultShell
	}
	return ShellRunner{Shell: shell}
}

func (r ShellRunner) Run(ctx context.Context, text string) (Result, error) {
	cmd := exec.CommandContext(ctx, r.Shell, "-c", text)
	// children of the shell may hold stdout open, cancel takes the whole
	// process group down and stops waiting for the pipe after killWaitDelay
	killProcessGroup(cmd)
	cmd.WaitDelay = killWaitDelay
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	start := time.Now()
	err := cmd.Run()
	res := Result{
		Stdout:   stdout.String(),
		Duration: time.Since(start),
	}
	if ctx.Err() != nil {
		return res, ctx.Err()
	}
	// the shell exited 0 but a background child still holds stdout
	if err == nil || errors.Is(err, exec.ErrWaitDelay) {
		res.Succeeded = true
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	return res, errors.Join(ErrShellSpawn, fmt.Errorf("%s -c %q : %w", r.Shell, text, err))
}
