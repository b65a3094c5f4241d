// Package runner owns the single build-in-progress invariant and the
// external builder process lifecycle.
package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/packsmith/packsmith/internal/store"
)

// ErrBuildInProgress is returned when a build is submitted while another
// one is still running. The in-flight build is left untouched.
var ErrBuildInProgress = errors.New("another build is already running")

// SpecSource supplies the current build spec document.
type SpecSource interface {
	Get() (*store.BuildSpec, error)
}

// SpecValidator approves a spec before a build may start.
type SpecValidator interface {
	Validate(ctx context.Context, spec *store.BuildSpec) error
}

// Notifier receives busy-state transitions.
type Notifier interface {
	NotifyBusy(busy bool)
}

// Options locates the builder binary and its working directories.
type Options struct {
	BuilderBinary string
	SpecDir       string
	GeneratedDir  string
	WorkDir       string
}

// Runner serializes build execution. The mutex guards only the busy flag
// and the last terminal message; it is never held across the child process.
type Runner struct {
	opts      Options
	source    SpecSource
	validator SpecValidator
	notifier  Notifier
	logger    hclog.Logger

	command func(specPath string) *exec.Cmd

	mu      sync.Mutex
	busy    bool
	message string
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithCommand overrides how the builder process is constructed.
func WithCommand(fn func(specPath string) *exec.Cmd) RunnerOption {
	return func(r *Runner) {
		r.command = fn
	}
}

func New(opts Options, source SpecSource, validator SpecValidator, notifier Notifier, logger hclog.Logger, ropts ...RunnerOption) *Runner {
	r := &Runner{
		opts:      opts,
		source:    source,
		validator: validator,
		notifier:  notifier,
		logger:    logger,
	}
	r.command = func(specPath string) *exec.Cmd {
		return exec.Command(opts.BuilderBinary, "-s", specPath, opts.GeneratedDir, opts.WorkDir)
	}
	for _, opt := range ropts {
		opt(r)
	}
	return r
}

// Submit validates the current spec and, if no build is running, starts one
// and returns immediately. Validation and resolution failures are returned
// to the caller and never change runner state.
func (r *Runner) Submit(ctx context.Context) error {
	spec, err := r.source.Get()
	if err != nil {
		return err
	}
	if err := r.validator.Validate(ctx, spec); err != nil {
		return err
	}

	specPath, err := r.writeSpec(spec)
	if err != nil {
		return err
	}

	r.mu.Lock()
	if r.busy {
		r.mu.Unlock()
		return ErrBuildInProgress
	}
	r.busy = true
	r.message = "running"
	r.mu.Unlock()

	r.logger.Info("build started", "spec", specPath)
	if r.notifier != nil {
		r.notifier.NotifyBusy(true)
	}

	go r.execute(specPath)
	return nil
}

// Status returns the busy flag and the last message without blocking on the
// child process.
func (r *Runner) Status() (bool, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.busy, r.message
}

// writeSpec snapshots the validated spec into a per-job directory so later
// edits to the stored document cannot leak into a running build.
func (r *Runner) writeSpec(spec *store.BuildSpec) (string, error) {
	jobDir := filepath.Join(r.opts.SpecDir, uuid.NewString())
	if err := os.MkdirAll(jobDir, 0o755); err != nil {
		return "", fmt.Errorf("create job dir: %w", err)
	}
	raw, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode spec: %w", err)
	}
	specPath := filepath.Join(jobDir, "spec.json")
	if err := os.WriteFile(specPath, raw, 0o644); err != nil {
		return "", fmt.Errorf("write spec: %w", err)
	}
	return specPath, nil
}

func (r *Runner) execute(specPath string) {
	defer func() {
		if v := recover(); v != nil {
			r.finish(fmt.Sprintf("internal error: %v", v))
		}
	}()

	err := r.command(specPath).Run()

	switch {
	case err == nil:
		r.finish("ok")
	case errors.Is(err, exec.ErrNotFound):
		r.finish(fmt.Sprintf("command not found: %s", r.opts.BuilderBinary))
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			r.finish(fmt.Sprintf("failed (code %d)", exitErr.ExitCode()))
		} else {
			r.finish(fmt.Sprintf("failed: %v", err))
		}
	}
}

// finish records the terminal message, releases the single-flight slot and
// broadcasts the idle transition.
func (r *Runner) finish(message string) {
	r.mu.Lock()
	r.busy = false
	r.message = message
	r.mu.Unlock()

	r.logger.Info("build finished", "message", message)
	if r.notifier != nil {
		r.notifier.NotifyBusy(false)
	}
}
