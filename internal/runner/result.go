package runner

import "fmt"

// ExecutionRequest is one Execute call. Requests are never persisted.
type ExecutionRequest struct {
	Code     string   `json:"code"`
	Language Language `json:"language"`
	Input    string   `json:"input,omitempty"`
}

// ExecutionResult is the outcome of one sandboxed execution. Output holds the
// joined capture buffer even on failure: whatever was captured before a fault
// or timeout is preserved.
type ExecutionResult struct {
	Output          string   `json:"output"`
	Error           string   `json:"error,omitempty"`
	ExecutionTimeMs int64    `json:"execution_time_ms"`
	Language        Language `json:"language"`
	Success         bool     `json:"success"`
}

// Duration renders the elapsed time with its unit suffix.
func (r ExecutionResult) Duration() string {
	return fmt.Sprintf("%dms", r.ExecutionTimeMs)
}

// ValidationResult reports static checks. Errors non-empty implies IsValid is
// false; warnings alone never invalidate.
type ValidationResult struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// FormatResult is the outcome of a style normalization pass. Changes is a
// human-readable audit trail; empty means no transformation applied.
type FormatResult struct {
	Code    string   `json:"code"`
	Changes []string `json:"changes"`
}
