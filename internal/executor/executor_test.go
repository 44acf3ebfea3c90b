package executor

import (
	"context"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"
)

func TestExecute_Success(t *testing.T) {
	e := &Executor{}
	res := e.Execute(context.Background(), "echo hello", 10*time.Second)
	if !res.OK() {
		t.Fatalf("Status = %q, want success (result: %+v)", res.Status, res.Err)
	}
	if res.Output != "hello" {
		t.Errorf("Output = %q, want %q", res.Output, "hello")
	}
	if res.RunID == "" {
		t.Error("RunID is empty")
	}
}

func TestExecute_TrimsWhitespace(t *testing.T) {
	e := &Executor{}
	res := e.Execute(context.Background(), `printf '  padded  \n\n'`, 10*time.Second)
	if !res.OK() {
		t.Fatalf("Status = %q, want success", res.Status)
	}
	if res.Output != "padded" {
		t.Errorf("Output = %q, want %q", res.Output, "padded")
	}
}

func TestExecute_Pipe(t *testing.T) {
	e := &Executor{}
	res := e.Execute(context.Background(), "echo hello | tr a-z A-Z", 10*time.Second)
	if !res.OK() {
		t.Fatalf("Status = %q, want success", res.Status)
	}
	if res.Output != "HELLO" {
		t.Errorf("Output = %q, want %q", res.Output, "HELLO")
	}
}

func TestExecute_CommandError(t *testing.T) {
	e := &Executor{}
	res := e.Execute(context.Background(), "echo boom >&2; exit 3", 10*time.Second)
	if res.OK() {
		t.Fatal("expected error result for non-zero exit")
	}
	if res.Err.Code != CodeCommandError {
		t.Errorf("Code = %q, want %q", res.Err.Code, CodeCommandError)
	}
	if res.Err.Message != "boom" {
		t.Errorf("Message = %q, want %q", res.Err.Message, "boom")
	}
}

func TestExecute_CommandErrorEmptyStderr(t *testing.T) {
	e := &Executor{}
	res := e.Execute(context.Background(), "exit 7", 10*time.Second)
	if res.OK() {
		t.Fatal("expected error result for non-zero exit")
	}
	if res.Err.Code != CodeCommandError {
		t.Errorf("Code = %q, want %q", res.Err.Code, CodeCommandError)
	}
	if !strings.Contains(res.Err.Message, "exit status 7") {
		t.Errorf("Message = %q, want exit status fallback", res.Err.Message)
	}
}

func TestExecute_BinaryNotFound(t *testing.T) {
	e := &Executor{}
	res := e.Execute(context.Background(), "nonexistent-binary-xyz-123", 10*time.Second)
	if res.OK() {
		t.Fatal("expected error result for missing binary")
	}
	// The shell itself exits non-zero with a diagnostic on stderr.
	if res.Err.Code != CodeCommandError {
		t.Errorf("Code = %q, want %q", res.Err.Code, CodeCommandError)
	}
	if !strings.Contains(res.Err.Message, "nonexistent-binary-xyz-123") {
		t.Errorf("Message = %q, want to mention the binary name", res.Err.Message)
	}
}

func TestExecute_EmptyCommand(t *testing.T) {
	e := &Executor{}
	res := e.Execute(context.Background(), "   ", 10*time.Second)
	if res.OK() {
		t.Fatal("expected error result for empty command")
	}
	if res.Err.Code != CodeInternalError {
		t.Errorf("Code = %q, want %q", res.Err.Code, CodeInternalError)
	}
}

func TestExecute_Timeout(t *testing.T) {
	e := &Executor{Grace: 200 * time.Millisecond}
	start := time.Now()
	res := e.Execute(context.Background(), "sleep 10", 1*time.Second)
	elapsed := time.Since(start)

	if res.OK() {
		t.Fatal("expected error result for timeout")
	}
	if res.Err.Code != CodeTimeout {
		t.Errorf("Code = %q, want %q", res.Err.Code, CodeTimeout)
	}
	if res.Err.Message != "Command timed out after 1 seconds" {
		t.Errorf("Message = %q, want fixed timeout text", res.Err.Message)
	}
	// Returned promptly, i.e. the process did not run to completion and the
	// grace wait did not hang.
	if elapsed > 5*time.Second {
		t.Errorf("Execute took %v, want well under the command runtime", elapsed)
	}
}

func TestExecute_TimeoutGracefulExit(t *testing.T) {
	// The process exits cleanly on SIGTERM within the grace period.
	// A graceful exit must not convert the timeout into a success.
	e := &Executor{}
	res := e.Execute(context.Background(), `trap 'exit 0' TERM; sleep 10`, 1*time.Second)
	if res.OK() {
		t.Fatal("graceful exit after timeout must still be a timeout")
	}
	if res.Err.Code != CodeTimeout {
		t.Errorf("Code = %q, want %q", res.Err.Code, CodeTimeout)
	}
}

func TestExecute_TimeoutIgnoresSIGTERM(t *testing.T) {
	// The process ignores SIGTERM, forcing the SIGKILL path.
	e := &Executor{Grace: 200 * time.Millisecond}
	start := time.Now()
	res := e.Execute(context.Background(), `trap '' TERM; sleep 10`, 500*time.Millisecond)
	elapsed := time.Since(start)

	if res.OK() {
		t.Fatal("expected error result for timeout")
	}
	if res.Err.Code != CodeTimeout {
		t.Errorf("Code = %q, want %q", res.Err.Code, CodeTimeout)
	}
	if elapsed > 5*time.Second {
		t.Errorf("Execute took %v, want prompt return after SIGKILL", elapsed)
	}
}

func TestExecute_TerminationError(t *testing.T) {
	// SIGTERM delivery fails outright: the result must be TERMINATION_ERROR,
	// not TIMEOUT, and a best-effort SIGKILL must still be attempted.
	var sigterms, sigkills int
	e := &Executor{
		Grace: 200 * time.Millisecond,
		kill: func(pid int, sig syscall.Signal) error {
			switch sig {
			case syscall.SIGTERM:
				sigterms++
			case syscall.SIGKILL:
				sigkills++
			}
			return syscall.EPERM
		},
	}

	res := e.Execute(context.Background(), "sleep 1", 100*time.Millisecond)
	if res.OK() {
		t.Fatal("expected error result for failed termination")
	}
	if res.Err.Code != CodeTerminationError {
		t.Errorf("Code = %q, want %q", res.Err.Code, CodeTerminationError)
	}
	if !strings.Contains(res.Err.Message, "Failed to terminate process") {
		t.Errorf("Message = %q, want termination failure detail", res.Err.Message)
	}
	if sigterms != 1 {
		t.Errorf("SIGTERM sent %d times, want 1", sigterms)
	}
	if sigkills != 1 {
		t.Errorf("SIGKILL sent %d times, want best-effort kill after failed SIGTERM", sigkills)
	}
}

func TestExecute_TerminationErrorOnKill(t *testing.T) {
	// SIGTERM is swallowed and the forceful kill then fails: still
	// TERMINATION_ERROR, not TIMEOUT.
	e := &Executor{
		Grace: 100 * time.Millisecond,
		kill: func(pid int, sig syscall.Signal) error {
			if sig == syscall.SIGKILL {
				return syscall.EPERM
			}
			return nil // pretend SIGTERM was delivered; the process ignores it
		},
	}

	res := e.Execute(context.Background(), "sleep 1", 100*time.Millisecond)
	if res.OK() {
		t.Fatal("expected error result for failed kill")
	}
	if res.Err.Code != CodeTerminationError {
		t.Errorf("Code = %q, want %q", res.Err.Code, CodeTerminationError)
	}
}

func TestExecute_SubSecondTimeoutMessage(t *testing.T) {
	e := &Executor{Grace: 200 * time.Millisecond}
	res := e.Execute(context.Background(), "sleep 10", 500*time.Millisecond)
	if res.OK() {
		t.Fatal("expected error result for timeout")
	}
	if res.Err.Code != CodeTimeout {
		t.Errorf("Code = %q, want %q", res.Err.Code, CodeTimeout)
	}
	// Sub-second deadlines round up rather than reporting "0 seconds".
	if res.Err.Message != "Command timed out after 1 seconds" {
		t.Errorf("Message = %q, want rounded-up second count", res.Err.Message)
	}
}

func TestExecute_ExecutorTimeoutFallback(t *testing.T) {
	// No per-call timeout: the executor-level timeout applies.
	e := &Executor{Timeout: 1 * time.Second, Grace: 200 * time.Millisecond}
	res := e.Execute(context.Background(), "sleep 10", 0)
	if res.OK() {
		t.Fatal("expected error result for timeout")
	}
	if res.Err.Code != CodeTimeout {
		t.Errorf("Code = %q, want %q", res.Err.Code, CodeTimeout)
	}
	if res.Err.Message != "Command timed out after 1 seconds" {
		t.Errorf("Message = %q, want executor-level timeout applied", res.Err.Message)
	}
}

func TestExecute_ContextCancelled(t *testing.T) {
	e := &Executor{Grace: 200 * time.Millisecond}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(200 * time.Millisecond)
		cancel()
	}()

	res := e.Execute(ctx, "sleep 10", 30*time.Second)
	if res.OK() {
		t.Fatal("expected error result for cancelled context")
	}
	if res.Err.Code != CodeInternalError {
		t.Errorf("Code = %q, want %q", res.Err.Code, CodeInternalError)
	}
	if !strings.Contains(res.Err.Message, "cancelled") {
		t.Errorf("Message = %q, want cancellation detail", res.Err.Message)
	}
}

func TestExecute_MaxOutput(t *testing.T) {
	e := &Executor{MaxOutput: 16}
	res := e.Execute(context.Background(), "yes x | head -n 1000", 10*time.Second)
	if !res.OK() {
		t.Fatalf("Status = %q, want success (err: %+v)", res.Status, res.Err)
	}
	if len(res.Output) > 16 {
		t.Errorf("len(Output) = %d, want <= 16", len(res.Output))
	}
}

func TestExecute_Idempotent(t *testing.T) {
	e := &Executor{}
	first := e.Execute(context.Background(), "echo stable", 10*time.Second)
	second := e.Execute(context.Background(), "echo stable", 10*time.Second)
	if first.Status != second.Status {
		t.Errorf("Status differs: %q vs %q", first.Status, second.Status)
	}
	if first.Output != second.Output {
		t.Errorf("Output differs: %q vs %q", first.Output, second.Output)
	}
}

func TestExecute_ConcurrentInvocations(t *testing.T) {
	e := &Executor{}
	var wg sync.WaitGroup
	results := make([]*Result, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = e.Execute(context.Background(), "echo hello", 10*time.Second)
		}(i)
	}
	wg.Wait()

	for i, res := range results {
		if !res.OK() {
			t.Errorf("invocation %d: Status = %q, want success", i, res.Status)
		}
		if res.Output != "hello" {
			t.Errorf("invocation %d: Output = %q, want %q", i, res.Output, "hello")
		}
	}
}
