// Package executor runs shell command lines under a deadline and maps every
// outcome — success, non-zero exit, timeout, spawn failure, termination
// failure — onto a closed result union.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Defaults for execution limits.
const (
	DefaultTimeout   = 300 * time.Second
	GracePeriod      = 5 * time.Second
	DefaultMaxOutput = 1 << 20 // 1 MB per stream
)

// Executor runs shell commands with a deadline and captured output.
// The zero value is usable; all fields have working defaults.
type Executor struct {
	Timeout   time.Duration   // fallback when Execute receives no timeout
	Grace     time.Duration   // wait after SIGTERM before SIGKILL
	MaxOutput int             // byte cap per captured stream
	Log       *zerolog.Logger // nil disables logging

	// kill overrides signal delivery in tests; nil means syscall.Kill.
	kill func(pid int, sig syscall.Signal) error
}

// Execute runs command through the shell and waits for completion or the
// deadline, whichever comes first. It always returns exactly one Result;
// failures of any kind are folded into the error variant rather than
// surfaced as a Go error. The spawned process group is never left running
// once Execute returns.
func (e *Executor) Execute(ctx context.Context, command string, timeout time.Duration) *Result {
	runID := uuid.New().String()

	if strings.TrimSpace(command) == "" {
		return errorResult(runID, CodeInternalError, "empty command")
	}

	if timeout <= 0 {
		timeout = e.Timeout
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	grace := e.Grace
	if grace <= 0 {
		grace = GracePeriod
	}
	maxOutput := e.MaxOutput
	if maxOutput <= 0 {
		maxOutput = DefaultMaxOutput
	}

	e.log().Info().
		Str("run_id", runID).
		Str("command", command).
		Dur("timeout", timeout).
		Msg("executing command")

	cmd := exec.Command("/bin/sh", "-c", command)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &limitWriter{buf: &stdout, limit: maxOutput}
	cmd.Stderr = &limitWriter{buf: &stderr, limit: maxOutput}

	// Own process group, so termination reaches children the shell spawned.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		e.log().Error().Str("run_id", runID).Err(err).Msg("spawn failed")
		return errorResult(runID, CodeInternalError, err.Error())
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case waitErr := <-done:
		return e.resolve(runID, waitErr, &stdout, &stderr)

	case <-ctx.Done():
		// No external cancellation API is promised, but an expired or
		// cancelled context goes through the same terminate path as a
		// timeout. The TIMEOUT code is reserved for the deadline proper.
		if err := e.terminate(cmd, done, grace); err != nil {
			e.log().Error().Str("run_id", runID).Err(err).Msg("termination failed")
			return errorResult(runID, CodeTerminationError, fmt.Sprintf("Failed to terminate process: %v", err))
		}
		return errorResult(runID, CodeInternalError, fmt.Sprintf("command cancelled: %v", ctx.Err()))

	case <-timer.C:
		e.log().Warn().Str("run_id", runID).Dur("timeout", timeout).Msg("command timed out")
		if err := e.terminate(cmd, done, grace); err != nil {
			e.log().Error().Str("run_id", runID).Err(err).Msg("termination failed")
			return errorResult(runID, CodeTerminationError, fmt.Sprintf("Failed to terminate process: %v", err))
		}
		return errorResult(runID, CodeTimeout, fmt.Sprintf("Command timed out after %d seconds", timeoutSeconds(timeout)))
	}
}

// terminate performs the graduated shutdown: SIGTERM the process group, wait
// up to grace for exit, then SIGKILL. When SIGTERM itself fails a SIGKILL is
// still attempted, so a signalling error never strands the process.
func (e *Executor) terminate(cmd *exec.Cmd, done <-chan error, grace time.Duration) error {
	pgid := -cmd.Process.Pid

	if err := e.signal(pgid, syscall.SIGTERM); err != nil && !errors.Is(err, syscall.ESRCH) {
		_ = e.signal(pgid, syscall.SIGKILL)
		return fmt.Errorf("sending SIGTERM: %w", err)
	}

	select {
	case <-done:
		// Exited within the grace period. Still a timeout for the caller.
		return nil
	case <-time.After(grace):
	}

	if err := e.signal(pgid, syscall.SIGKILL); err != nil && !errors.Is(err, syscall.ESRCH) {
		return fmt.Errorf("sending SIGKILL: %w", err)
	}
	// SIGKILL cannot be caught; wait for the process to be reaped.
	<-done
	return nil
}

func (e *Executor) signal(pid int, sig syscall.Signal) error {
	if e.kill != nil {
		return e.kill(pid, sig)
	}
	return syscall.Kill(pid, sig)
}

// timeoutSeconds reports the timeout in whole seconds for the fixed message
// text, rounding sub-second remainders up so a short deadline never reads
// as "0 seconds".
func timeoutSeconds(d time.Duration) int {
	secs := int(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	return secs
}

// resolve maps normal completion onto the result union.
func (e *Executor) resolve(runID string, waitErr error, stdout, stderr *bytes.Buffer) *Result {
	if waitErr == nil {
		return successResult(runID, strings.TrimSpace(stdout.String()))
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			// The tool wrote nothing to stderr; fall back to "exit status N".
			msg = waitErr.Error()
		}
		e.log().Debug().Str("run_id", runID).Int("exit_code", exitErr.ExitCode()).Msg("command failed")
		return errorResult(runID, CodeCommandError, msg)
	}

	e.log().Error().Str("run_id", runID).Err(waitErr).Msg("command execution failed")
	return errorResult(runID, CodeInternalError, waitErr.Error())
}

func (e *Executor) log() *zerolog.Logger {
	if e.Log != nil {
		return e.Log
	}
	return &nop
}

var nop = zerolog.Nop()

// limitWriter writes up to limit bytes to buf, then silently discards the rest.
type limitWriter struct {
	buf   *bytes.Buffer
	limit int
}

func (w *limitWriter) Write(p []byte) (int, error) {
	remaining := w.limit - w.buf.Len()
	if remaining <= 0 {
		return len(p), nil // discard
	}
	if len(p) > remaining {
		// Write only what fits, but report all bytes as consumed
		// to avoid short write errors from io.Copy.
		w.buf.Write(p[:remaining])
		return len(p), nil
	}
	return w.buf.Write(p)
}
