// Package cgi invokes the python3/php interpreters the HTTP handlers
// dispatch dynamic requests to. Concurrency is bounded by a Limiter, an
// acquire-before-work, release-after-work token semaphore that also
// exposes how many callers are currently waiting.
package cgi

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/coldforge/originhttpd/internal/metrics"
	"github.com/coldforge/originhttpd/pkg/logger"
)

// outputCap bounds how much combined stdout+stderr is read back from
// an interpreter, matching the reference server's fixed-size CGI
// response buffer. Output beyond this is truncated, not an error.
const outputCap = 3072

// Executor runs interpreter subprocesses under a bounded concurrency
// limit.
type Executor struct {
	limiter *Limiter
}

// NewExecutor creates an Executor allowing at most maxConcurrent CGI
// subprocesses to run at once. maxConcurrent <= 0 is normalized to 1.
func NewExecutor(maxConcurrent int) *Executor {
	return &Executor{limiter: NewLimiter(maxConcurrent)}
}

// Run executes interpreter against scriptPath with args, returning the
// combined stdout+stderr capped at outputCap bytes. It blocks until a
// concurrency token is available or ctx is done.
//
// A script that starts and runs to completion, even with a non-zero
// exit status, is not a failure here: its captured output is still
// returned with a nil error. Only a failure to start the interpreter
// at all (the equivalent of popen returning NULL) is reported as an
// error.
func (e *Executor) Run(ctx context.Context, interpreter, scriptPath string, args []string) ([]byte, error) {
	if err := e.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer e.limiter.Release()

	metrics.CgiActiveGauge.Inc()
	defer metrics.CgiActiveGauge.Dec()

	cmdArgs := append([]string{scriptPath}, args...)
	cmd := exec.CommandContext(ctx, interpreter, cmdArgs...)

	var combined bytes.Buffer
	cmd.Stdout = &combined
	cmd.Stderr = &combined

	runErr := cmd.Run()
	if runErr != nil {
		if _, exited := runErr.(*exec.ExitError); !exited {
			logger.Error("cgi: %s %s: failed to start: %v", interpreter, scriptPath, runErr)
			return nil, runErr
		}
		logger.Debug("cgi: %s %s: exited non-zero: %v", interpreter, scriptPath, runErr)
	}

	out := combined.Bytes()
	if len(out) > outputCap {
		out = out[:outputCap]
	}
	return out, nil
}
