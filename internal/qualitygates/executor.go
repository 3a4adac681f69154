package qualitygates

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// Executor runs one command and returns its combined output.
// A non-zero exit is reported through exitCode with a nil error; err is
// reserved for commands that could not run to completion.
type Executor interface {
	Execute(ctx context.Context, dir string, command []string) (output []byte, exitCode int, err error)
}

// CommandExecutor runs commands with os/exec.
type CommandExecutor struct{}

func (CommandExecutor) Execute(ctx context.Context, dir string, command []string) ([]byte, int, error) {
	if len(command) == 0 {
		return nil, -1, errors.New("empty command")
	}
	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Dir = dir
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	if ctx.Err() != nil {
		return out.Bytes(), -1, fmt.Errorf("%s: %w", command[0], ctx.Err())
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return out.Bytes(), exitErr.ExitCode(), nil
	}
	if err != nil {
		return out.Bytes(), -1, err
	}
	return out.Bytes(), 0, nil
}

const outputTail = 4 * 1024

// tail keeps the last outputTail bytes of out.
func tail(out []byte) string {
	if len(out) <= outputTail {
		return string(out)
	}
	return "..." + string(out[len(out)-outputTail:])
}
