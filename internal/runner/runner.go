// Package runner is the sandboxed multi-language code execution service. It
// accepts untrusted source text, dispatches it to a per-language strategy
// (executor, validator, formatter), enforces length and wall-clock limits,
// and returns captured output without letting the submitted code touch the
// host process, filesystem, or network.
//
// Every call is an independent, stateless unit of work: the strategy registry
// is read-only after New and exactly one sandbox context lives per in-flight
// Execute call. Limiting the number of concurrent sandboxes is the caller's
// concern, not this package's.
package runner

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"
)

const (
	// DefaultExecutionTimeout is the wall-clock budget per execution.
	DefaultExecutionTimeout = 10 * time.Second
	// DefaultMaxCodeLength is the source size limit in code points.
	DefaultMaxCodeLength = 10000
)

// Config holds the service limits.
type Config struct {
	ExecutionTimeout time.Duration
	MaxCodeLength    int
}

func (c Config) withDefaults() Config {
	if c.ExecutionTimeout <= 0 {
		c.ExecutionTimeout = DefaultExecutionTimeout
	}
	if c.MaxCodeLength <= 0 {
		c.MaxCodeLength = DefaultMaxCodeLength
	}
	return c
}

type executor interface {
	execute(ctx context.Context, code, input string) (output string, err error)
}

type validator interface {
	validate(code string) ValidationResult
}

type formatter interface {
	format(code string) (FormatResult, error)
}

// strategy is the capability triple registered for one language.
type strategy struct {
	exec     executor
	validate validator
	format   formatter
}

// Service dispatches Execute, Validate, and Format over the closed language
// registry. Safe for unsynchronized concurrent use.
type Service struct {
	cfg       Config
	registry  map[Language]strategy
	templates map[Language]string
}

// New builds the service and its registry. Zero-valued config fields take
// the package defaults.
func New(cfg Config) (*Service, error) {
	cfg = cfg.withDefaults()

	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}

	return &Service{
		cfg:       cfg,
		templates: templates,
		registry: map[Language]strategy{
			JavaScript: {
				exec:     jsExecutor{timeout: cfg.ExecutionTimeout},
				validate: jsValidator{},
				format:   jsFormatter{},
			},
			TypeScript: {
				exec:     tsExecutor{timeout: cfg.ExecutionTimeout},
				validate: tsValidator{},
				format:   identityFormatter{},
			},
			Python: {
				exec:     pythonExecutor{},
				validate: pythonValidator{},
				format:   identityFormatter{},
			},
			HTML: {
				exec:     previewExecutor{lang: HTML, note: "Open this document in a browser to render it."},
				validate: htmlValidator{},
				format:   htmlFormatter{},
			},
			CSS: {
				exec:     previewExecutor{lang: CSS, note: "Attach this stylesheet to a page to see it applied."},
				validate: cssValidator{},
				format:   cssFormatter{},
			},
			JSON: {
				exec:     jsonExecutor{},
				validate: jsonValidator{},
				format:   jsonFormatter{},
			},
			Markdown: {
				exec:     previewExecutor{lang: Markdown, note: "Render this markdown with any CommonMark viewer."},
				validate: passValidator{},
				format:   identityFormatter{},
			},
		},
	}, nil
}

// Execute runs code under the language's sandbox strategy. It never returns
// an error: every failure, including unsupported languages and oversized
// sources, is encoded in the result, and whatever output was captured before
// a fault or timeout is preserved.
func (s *Service) Execute(ctx context.Context, req ExecutionRequest) ExecutionResult {
	start := time.Now()

	res := s.run(ctx, req)
	res.Language = req.Language
	res.Success = res.Error == ""
	res.ExecutionTimeMs = time.Since(start).Milliseconds()
	return res
}

func (s *Service) run(ctx context.Context, req ExecutionRequest) ExecutionResult {
	if n := utf8.RuneCountInString(req.Code); n > s.cfg.MaxCodeLength {
		return ExecutionResult{
			Error: fmt.Sprintf("%s of %d code points (got %d)", ErrCodeTooLong, s.cfg.MaxCodeLength, n),
		}
	}

	strat, ok := s.registry[req.Language]
	if !ok {
		return ExecutionResult{Error: fmt.Sprintf("%s: %s", ErrUnsupportedLanguage, req.Language)}
	}

	output, err := strat.exec.execute(ctx, req.Code, req.Input)
	if err != nil {
		return ExecutionResult{Output: output, Error: err.Error()}
	}
	return ExecutionResult{Output: output}
}

// Validate performs the language's static checks without executing anything.
// It never returns an error; an unknown language becomes the sole entry in
// Errors.
func (s *Service) Validate(code string, lang Language) ValidationResult {
	var res ValidationResult
	if strat, ok := s.registry[lang]; ok {
		res = strat.validate.validate(code)
	} else {
		res.Errors = []string{fmt.Sprintf("%s: %s", ErrUnsupportedLanguage, lang)}
	}

	if res.Errors == nil {
		res.Errors = []string{}
	}
	if res.Warnings == nil {
		res.Warnings = []string{}
	}
	res.IsValid = len(res.Errors) == 0
	return res
}

// Format applies the language's deterministic style normalization. Unlike
// Execute and Validate it may fail: malformed JSON propagates the parser
// error instead of producing a result.
func (s *Service) Format(code string, lang Language) (FormatResult, error) {
	strat, ok := s.registry[lang]
	if !ok {
		return FormatResult{}, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}

	res, err := strat.format.format(code)
	if err != nil {
		return FormatResult{}, err
	}
	if res.Changes == nil {
		res.Changes = []string{}
	}
	return res, nil
}

// ListLanguages returns the fixed descriptor list in display order.
func (s *Service) ListLanguages() []LanguageInfo {
	out := make([]LanguageInfo, len(languageInfos))
	copy(out, languageInfos)
	return out
}

// Template returns the starter snippet for a language.
func (s *Service) Template(lang Language) (string, error) {
	snippet, ok := s.templates[lang]
	if !ok {
		return "", fmt.Errorf("%w for language: %s", ErrTemplateNotFound, lang)
	}
	return snippet, nil
}
