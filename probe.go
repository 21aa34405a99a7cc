package featurecheck

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os/exec"
	"strings"
	"time"
)

// DefaultTool is the build tool invoked when none is configured.
const DefaultTool = "cargo"

// Invocation is the outcome of running the build tool once.
type Invocation struct {
	Args     []string
	ExitCode int
	// Err is non-nil if the process could not be started or exited non-zero.
	Err      error
	Duration time.Duration
}

// Success reports whether the process ran and exited with status 0.
func (i Invocation) Success() bool {
	return i.Err == nil
}

// Runner executes the build tool. Implementations must block until the
// process exits and must not retry.
type Runner interface {
	Run(ctx context.Context, tool string, args []string, stdout, stderr io.Writer) Invocation
}

// ExecRunner runs the build tool as a child process.
// Nil writers discard the corresponding stream.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, tool string, args []string, stdout, stderr io.Writer) Invocation {
	start := time.Now()
	cmd := exec.CommandContext(ctx, tool, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	inv := Invocation{Args: args, Duration: time.Since(start)}
	if err != nil {
		inv.Err = err
		inv.ExitCode = -1
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			inv.ExitCode = ee.ExitCode()
		}
	}
	return inv
}

// notFound reports whether err means the executable could not be located.
func notFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}

// ProbeTool checks that tool is invocable by running its version query.
// Output of the query is discarded.
func ProbeTool(ctx context.Context, r Runner, tool string) error {
	inv := r.Run(ctx, tool, []string{"--version"}, nil, nil)
	if inv.Success() {
		return nil
	}
	if notFound(inv.Err) {
		return fmt.Errorf("%w: %s", ErrToolNotFound, tool)
	}
	return fmt.Errorf("%w: %s --version: %w", ErrToolInvocation, tool, inv.Err)
}

// ToolVersion returns the first line printed by the tool's version query.
func ToolVersion(ctx context.Context, r Runner, tool string) (string, error) {
	var out bytes.Buffer
	inv := r.Run(ctx, tool, []string{"--version"}, &out, nil)
	if !inv.Success() {
		if notFound(inv.Err) {
			return "", fmt.Errorf("%w: %s", ErrToolNotFound, tool)
		}
		return "", fmt.Errorf("%w: %s --version: %w", ErrToolInvocation, tool, inv.Err)
	}
	line, _, _ := strings.Cut(out.String(), "\n")
	return strings.TrimSpace(line), nil
}

// stageArgs builds the isolated invocation for one feature: default
// features off, exactly this feature on, artifacts in the scratch directory.
func stageArgs(s Stage, feature, targetDir string) []string {
	return []string{
		s.Action(),
		"--no-default-features",
		"--features", feature,
		"--target-dir", targetDir,
	}
}
