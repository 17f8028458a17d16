// Package process runs the external media tools (ffmpeg, ffprobe) the
// audio normalizer shells out to for containers it cannot decode natively.
package process

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"
)

const defaultGracePeriod = 5 * time.Second

// Command is one subprocess invocation.
type Command struct {
	// Binary is an executable path or a name resolved through PATH.
	Binary string
	Args   []string
	Dir    string
	// Env is appended to the parent environment.
	Env   []string
	Stdin io.Reader
	// GracePeriod is the wait between SIGTERM and SIGKILL after ctx is done.
	GracePeriod time.Duration
}

// Result is the captured outcome of a finished subprocess.
type Result struct {
	Stdout []byte
	Stderr []byte
	// ExitCode is -1 when the process never started or was killed.
	ExitCode int
	Duration time.Duration
}

// Run starts cmd and waits for it. When ctx is done the whole process
// group receives SIGTERM and, after the grace period, SIGKILL.
func Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Binary == "" {
		return nil, fmt.Errorf("process: binary is required")
	}
	grace := cmd.GracePeriod
	if grace <= 0 {
		grace = defaultGracePeriod
	}

	c := exec.CommandContext(ctx, cmd.Binary, cmd.Args...) //nolint:gosec // callers pass fixed tool names
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	c.Stdin = cmd.Stdin

	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	c.Cancel = func() error {
		if c.Process == nil {
			return nil
		}
		return syscall.Kill(-c.Process.Pid, syscall.SIGTERM)
	}
	c.WaitDelay = grace

	start := time.Now()
	err := c.Run()
	result := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: c.ProcessState.ExitCode(),
		Duration: time.Since(start),
	}
	if err != nil {
		if ctx.Err() != nil {
			return result, fmt.Errorf("process: %s killed: %w", cmd.Binary, ctx.Err())
		}
		if tail := result.StderrTail(); tail != "" {
			return result, fmt.Errorf("process: %s exited with code %d: %s", cmd.Binary, result.ExitCode, tail)
		}
		return result, fmt.Errorf("process: %s: %w", cmd.Binary, err)
	}
	return result, nil
}

// StderrTail returns the last non-empty stderr line. ffmpeg prints its
// diagnosis there after the banner.
func (r *Result) StderrTail() string {
	lines := strings.Split(strings.TrimSpace(string(r.Stderr)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

// Available reports whether binary can be resolved.
func Available(binary string) bool {
	_, err := exec.LookPath(binary)
	return err == nil
}
