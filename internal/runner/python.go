package runner

import (
	"context"
	"strings"
)

// pythonNotice is the fixed first line of every python "execution". There is
// no safe in-process Python runtime here, so the executor is a deterministic
// echo stub that reports success. This is a documented capability gap, not a
// simulation of real execution.
const pythonNotice = "Python execution is not yet implemented in this environment."

type pythonExecutor struct{}

func (pythonExecutor) execute(_ context.Context, code, input string) (string, error) {
	var b strings.Builder
	b.WriteString(pythonNotice)
	b.WriteString("\n\nSubmitted code:\n")
	b.WriteString(code)
	if input != "" {
		b.WriteString("\n\nInput:\n")
		b.WriteString(input)
	}
	return b.String(), nil
}

type pythonValidator struct{}

func (pythonValidator) validate(string) ValidationResult {
	return ValidationResult{
		IsValid:  true,
		Warnings: []string{"python validation is not implemented; the code was not checked"},
	}
}
