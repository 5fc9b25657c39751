// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Command timeouts applied when the caller's context has no deadline.
const (
	VersionTimeout = 5 * time.Second
	ListTimeout    = 10 * time.Second
)

// servePoll is the interval between readiness checks after StartServer.
const servePoll = 500 * time.Millisecond

// =============================================================================
// COMMAND RUNNER
// =============================================================================

// CommandRunner executes external commands. The default implementation
// uses os/exec; tests substitute canned output.
type CommandRunner interface {
	LookPath(file string) (string, error)
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
	Stream(ctx context.Context, stdout, stderr io.Writer, name string, args ...string) error
	// Start launches a detached background process.
	Start(name string, args ...string) error
}

type execRunner struct{}

func (execRunner) LookPath(file string) (string, error) {
	if path, err := exec.LookPath(file); err == nil {
		return path, nil
	}
	for _, p := range installCandidates() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", exec.ErrNotFound
}

func (execRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil && stderr.Len() > 0 {
		return out, &RunnerError{
			Type:    ErrTypeCommandFailed,
			Message: strings.TrimSpace(stderr.String()),
			Cause:   err,
		}
	}
	return out, err
}

func (execRunner) Stream(ctx context.Context, stdout, stderr io.Writer, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Env = os.Environ()
	return cmd.Run()
}

func (execRunner) Start(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Env = os.Environ()
	detach(cmd)
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}

// DefaultCommandRunner returns the os/exec backed CommandRunner.
func DefaultCommandRunner() CommandRunner {
	return execRunner{}
}

// =============================================================================
// RUNNER
// =============================================================================

// Runner drives the local ollama binary.
//
// The Runner is thread-safe for concurrent use.
type Runner struct {
	client *Client
	cmd    CommandRunner
	log    zerolog.Logger

	once sync.Once
	path string
	poll time.Duration
}

// NewRunner creates a Runner. client may be nil, in which case the pulled
// list has no HTTP fallback.
func NewRunner(client *Client, log zerolog.Logger) *Runner {
	return NewRunnerWithCommands(client, DefaultCommandRunner(), log)
}

// NewRunnerWithCommands creates a Runner that executes through cmd.
func NewRunnerWithCommands(client *Client, cmd CommandRunner, log zerolog.Logger) *Runner {
	return &Runner{client: client, cmd: cmd, log: log, poll: servePoll}
}

// Path returns the resolved binary path, or "" when ollama is not installed.
func (r *Runner) Path() string {
	r.once.Do(func() {
		path, err := r.cmd.LookPath("ollama")
		if err != nil {
			r.log.Debug().Err(err).Msg("ollama binary not found")
			return
		}
		r.path = path
	})
	return r.path
}

// Installed reports whether the ollama binary can be found.
func (r *Runner) Installed() bool {
	return r.Path() != ""
}

// Version returns the installed ollama version.
func (r *Runner) Version(ctx context.Context) (string, error) {
	out, err := r.output(ctx, VersionTimeout, "--version")
	if err != nil {
		return "", err
	}
	return ParseVersion(string(out)), nil
}

// ListPulled returns base names of locally pulled models.
func (r *Runner) ListPulled(ctx context.Context) []string {
	return BaseNames(r.ListPulledTags(ctx))
}

// ListPulledTags returns the "name:tag" references of locally pulled
// models. When the binary is missing it asks the HTTP API; if that fails
// too the list is empty. Errors never escape: an unknown pulled set is
// treated as empty.
func (r *Runner) ListPulledTags(ctx context.Context) []string {
	if !r.Installed() {
		if r.client == nil {
			return []string{}
		}
		tags, err := r.client.PulledTags(ctx)
		if err != nil {
			r.log.Debug().Err(err).Msg("pulled models unavailable")
			return []string{}
		}
		return tags
	}

	out, err := r.output(ctx, ListTimeout, "list")
	if err != nil {
		r.log.Warn().Err(err).Msg("ollama list failed")
		return []string{}
	}
	return ParseListTags(string(out))
}

// Pull runs `ollama pull model`, streaming progress to stdout and stderr.
func (r *Runner) Pull(ctx context.Context, model string, stdout, stderr io.Writer) error {
	path := r.Path()
	if path == "" {
		return ErrNotInstalled
	}
	r.log.Info().Str("model", model).Msg("pulling model")
	if err := r.cmd.Stream(ctx, stdout, stderr, path, "pull", model); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &RunnerError{Type: ErrTypeCommandFailed, Message: "ollama pull " + model + " failed", Cause: err}
	}
	return nil
}

// Run sends one prompt to model via `ollama run` and returns its output.
// The caller's context bounds the run; exceeding it yields ErrTimeout.
func (r *Runner) Run(ctx context.Context, model, prompt string) (string, error) {
	path := r.Path()
	if path == "" {
		return "", ErrNotInstalled
	}
	out, err := r.cmd.Output(ctx, path, "run", model, prompt)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", ErrTimeout
		}
		return "", &RunnerError{Type: ErrTypeCommandFailed, Message: "ollama run " + model + " failed", Cause: err}
	}
	return string(out), nil
}

// StartServer launches `ollama serve` in the background and waits until the
// HTTP API answers. It does nothing when the server already runs.
func (r *Runner) StartServer(ctx context.Context) error {
	if r.client == nil {
		return ErrNotRunning
	}
	if r.client.CheckRunning(ctx) == nil {
		return nil
	}
	path := r.Path()
	if path == "" {
		return ErrNotInstalled
	}

	r.log.Info().Str("path", path).Msg("starting ollama server")
	if err := r.cmd.Start(path, "serve"); err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to start Ollama (path: " + path + ")", Cause: err}
	}

	ctx, cancel := context.WithTimeout(ctx, serveReadyTimeout)
	defer cancel()
	ticker := time.NewTicker(r.poll)
	defer ticker.Stop()

	start := time.Now()
	for {
		err := r.client.CheckRunning(ctx)
		if err == nil {
			r.log.Info().Dur("elapsed", time.Since(start)).Msg("ollama server started")
			return nil
		}
		select {
		case <-ctx.Done():
			return &ClientError{Type: ErrTypeNotRunning, Message: "Ollama started but is not responding", Cause: err}
		case <-ticker.C:
		}
	}
}

func (r *Runner) output(ctx context.Context, timeout time.Duration, args ...string) ([]byte, error) {
	path := r.Path()
	if path == "" {
		return nil, ErrNotInstalled
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	out, err := r.cmd.Output(ctx, path, args...)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		var re *RunnerError
		if errors.As(err, &re) {
			return nil, re
		}
		return nil, &RunnerError{Type: ErrTypeCommandFailed, Message: "ollama " + strings.Join(args, " ") + " failed", Cause: err}
	}
	return out, nil
}
