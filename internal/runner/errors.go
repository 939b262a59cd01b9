package runner

import "errors"

var (
	// ErrUnsupportedLanguage is returned when a language is not in the registry.
	ErrUnsupportedLanguage = errors.New("unsupported language")
	// ErrCodeTooLong is returned when the source exceeds the configured length limit.
	ErrCodeTooLong = errors.New("code exceeds maximum length")
	// ErrExecutionTimeout is returned when a sandbox exceeds its wall-clock budget.
	ErrExecutionTimeout = errors.New("execution timed out")
	// ErrTemplateNotFound is returned when no starter template is registered.
	ErrTemplateNotFound = errors.New("template not found")
)
