package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Formatter rewrites a generated file in place.
type Formatter interface {
	Format(ctx context.Context, path string) error
}

// CommandFormatter runs an external command with the file path appended, e.g.
// "prettier --write <path>".
type CommandFormatter struct {
	Command []string
	Dir     string
}

// Format runs the command. A non-zero exit is an error carrying the command's
// stderr; stdout is discarded.
func (f CommandFormatter) Format(ctx context.Context, path string) error {
	if len(f.Command) == 0 {
		return nil
	}
	name := f.Command[0]
	args := append(append([]string(nil), f.Command[1:]...), path)
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = f.Dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return fmt.Errorf("running %s: %w", name, err)
	}
	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		return fmt.Errorf("%s exited %d: %s", name, exitErr.ExitCode(), msg)
	}
	return fmt.Errorf("%s exited %d: %w", name, exitErr.ExitCode(), err)
}

// FormatFailure records a formatter error for one written file. The file keeps
// its unformatted contents.
type FormatFailure struct {
	Path string
	Err  error
}

func (f FormatFailure) Error() string {
	return fmt.Sprintf("formatting %s: %v", f.Path, f.Err)
}
