package executor

import "encoding/json"

// Code classifies a failed execution. The set is closed: every failure the
// executor can produce maps onto exactly one code.
type Code string

const (
	// CodeTimeout reports that the deadline elapsed and the process was
	// terminated, gracefully or forcefully.
	CodeTimeout Code = "TIMEOUT"
	// CodeTerminationError reports that the terminate/kill sequence itself
	// failed, which may leave an unreclaimed process.
	CodeTerminationError Code = "TERMINATION_ERROR"
	// CodeCommandError reports that the process completed with a non-zero
	// exit status.
	CodeCommandError Code = "COMMAND_ERROR"
	// CodeInternalError reports a spawn failure or any other unclassified
	// failure.
	CodeInternalError Code = "INTERNAL_ERROR"
)

// Result statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error is the structured failure carried by an error result.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

// Result is the outcome of one Execute call. Status selects the variant:
// a success carries Output (trimmed stdout), an error carries Err.
type Result struct {
	RunID  string // log correlation only, not serialized
	Status string
	Output string
	Err    *Error
}

// OK reports whether the result is the success variant.
func (r *Result) OK() bool {
	return r.Status == StatusSuccess
}

// MarshalJSON emits the fixed wire shape: a success object always carries
// "output", an error object carries only "error".
func (r *Result) MarshalJSON() ([]byte, error) {
	if r.OK() {
		return json.Marshal(struct {
			Status string `json:"status"`
			Output string `json:"output"`
		}{r.Status, r.Output})
	}
	return json.Marshal(struct {
		Status string `json:"status"`
		Err    *Error `json:"error"`
	}{r.Status, r.Err})
}

func successResult(runID, output string) *Result {
	return &Result{RunID: runID, Status: StatusSuccess, Output: output}
}

func errorResult(runID string, code Code, message string) *Result {
	return &Result{RunID: runID, Status: StatusError, Err: &Error{Code: code, Message: message}}
}
