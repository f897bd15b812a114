package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Result carries the captured output of one invocation.
type Result struct {
	Stdout string
	Stderr string
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (Result, error)
}

// CommandExecutor runs the binary as a real subprocess.
type CommandExecutor struct{}

// Run executes the command, capturing stdout and stderr. The subprocess gets
// no stdin; ffmpeg callers pass -nostdin as well so a prompt can never block
// a worker.
func (CommandExecutor) Run(ctx context.Context, binary string, args []string) (Result, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, ctxErr
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return result, fmt.Errorf("%s exited with status %d: %s", binary, exitErr.ExitCode(), StderrTail(result.Stderr))
		}
		return result, fmt.Errorf("run %s: %w", binary, err)
	}
	return result, nil
}

// StderrTail trims diagnostic output to the last few lines, which is where
// ffmpeg reports the actual failure.
func StderrTail(stderr string) string {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return "(no diagnostic output)"
	}
	lines := strings.Split(stderr, "\n")
	const keep = 5
	if len(lines) > keep {
		lines = lines[len(lines)-keep:]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.Join(lines, " | ")
}
