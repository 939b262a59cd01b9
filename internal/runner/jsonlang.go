package runner

import (
	"bytes"
	"context"
	"encoding/json"
)

// canonicalJSON re-indents a JSON document at the token level, which keeps
// object keys in their original order (a map round-trip would not).
func canonicalJSON(code string) (string, error) {
	var v any
	if err := json.Unmarshal([]byte(code), &v); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(code), "", "  "); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type jsonExecutor struct{}

func (jsonExecutor) execute(_ context.Context, code, _ string) (string, error) {
	return canonicalJSON(code)
}

type jsonValidator struct{}

func (jsonValidator) validate(code string) ValidationResult {
	var v any
	if err := json.Unmarshal([]byte(code), &v); err != nil {
		return ValidationResult{Errors: []string{err.Error()}}
	}
	return ValidationResult{IsValid: true}
}

type jsonFormatter struct{}

// format is the one strategy allowed to fail hard: malformed input has no
// meaningful best-effort output, so the parser error propagates verbatim.
func (jsonFormatter) format(code string) (FormatResult, error) {
	formatted, err := canonicalJSON(code)
	if err != nil {
		return FormatResult{}, err
	}
	if formatted == code {
		return FormatResult{Code: code}, nil
	}
	return FormatResult{
		Code:    formatted,
		Changes: []string{"Formatted JSON with proper indentation"},
	}, nil
}
