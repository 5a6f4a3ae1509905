// Package runner executes external conversion tools with bounded lifetimes
// and tracks the processes that are currently running.
package runner

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os/exec"
	"strings"
	"sync"

	"github.com/omniconv/omniconv/internal/metrics"
	"github.com/omniconv/omniconv/internal/models"
)

// Runner runs external commands under a context deadline, captures their
// stderr for error reporting, and keeps a registry of active processes.
// It is safe for concurrent use.
type Runner struct {
	mu     sync.RWMutex
	active map[string]*exec.Cmd
}

// New creates a Runner.
func New() *Runner {
	return &Runner{active: make(map[string]*exec.Cmd)}
}

// Result holds the captured output of a finished command.
type Result struct {
	Stdout string
	Stderr string
}

// Run executes tool with args, waiting at most until ctx expires. On deadline
// the process is killed and a TimeoutError is returned; on a non-zero exit a
// ConversionError carrying the tool's stderr is returned. id tags the process
// in the active registry and in log lines.
func (r *Runner) Run(ctx context.Context, id, tool string, args ...string) (*Result, error) {
	cmd := exec.CommandContext(ctx, tool, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Printf("INFO [job %s]: Executing %s %s", id, tool, strings.Join(args, " "))

	if err := cmd.Start(); err != nil {
		return nil, &models.DependencyUnavailableError{Tool: tool, Err: err}
	}

	r.register(id, cmd)
	defer r.unregister(id)

	err := cmd.Wait()
	result := &Result{Stdout: stdout.String(), Stderr: stderr.String()}

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			log.Printf("ERROR [job %s]: %s timed out and was killed", id, tool)
			return result, &models.TimeoutError{Tool: tool}
		}
		message := strings.TrimSpace(result.Stderr)
		if message == "" {
			message = err.Error()
		}
		log.Printf("ERROR [job %s]: %s failed: %s", id, tool, message)
		return result, &models.ConversionError{Tool: tool, Message: message, Err: err}
	}

	return result, nil
}

// Probe reports whether the tool responds to the given probe arguments,
// typically "--version". Used by the health endpoint and by services that
// must confirm a dependency before relying on it.
func (r *Runner) Probe(ctx context.Context, tool string, args ...string) bool {
	cmd := exec.CommandContext(ctx, tool, args...)
	if err := cmd.Run(); err != nil {
		log.Printf("INFO: probe of %s failed: %v", tool, err)
		return false
	}
	return true
}

// ActiveCount returns the number of external processes currently running.
func (r *Runner) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.active)
}

func (r *Runner) register(id string, cmd *exec.Cmd) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active[id] = cmd
	metrics.ActiveExternalCommands.Inc()
}

func (r *Runner) unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.active[id]; ok {
		delete(r.active, id)
		metrics.ActiveExternalCommands.Dec()
	}
}
