package runner

import (
	"context"
	"regexp"
	"strings"
)

// Markup and style languages have no execution semantics. Their executor
// returns a preview of the source in a fenced block with a usage note and
// always succeeds; their validators are permissive heuristics that only ever
// produce warnings.

type previewExecutor struct {
	lang Language
	note string
}

func (e previewExecutor) execute(_ context.Context, code, _ string) (string, error) {
	return "```" + string(e.lang) + "\n" + code + "\n```\n\n" + e.note, nil
}

var (
	htmlOpenTagRe  = regexp.MustCompile(`<[a-zA-Z][^>]*>`)
	htmlCloseTagRe = regexp.MustCompile(`</[a-zA-Z][^>]*>`)
)

type htmlValidator struct{}

func (htmlValidator) validate(code string) ValidationResult {
	res := ValidationResult{IsValid: true}

	lower := strings.ToLower(code)
	if !strings.Contains(lower, "<html") && !strings.Contains(lower, "<body") {
		res.Warnings = append(res.Warnings, "no <html> or <body> tag found")
	}

	// Tag counting is a heuristic, not a parser; self-closing and void tags
	// can skew it, so a mismatch stays a warning.
	opening := len(htmlOpenTagRe.FindAllString(code, -1))
	closing := len(htmlCloseTagRe.FindAllString(code, -1))
	if opening != closing {
		res.Warnings = append(res.Warnings, "number of opening tags does not match closing tags")
	}
	return res
}

type htmlFormatter struct{}

func (htmlFormatter) format(code string) (FormatResult, error) {
	formatted := strings.ReplaceAll(code, "><", ">\n<")
	if formatted == code {
		return FormatResult{Code: code}, nil
	}
	return FormatResult{
		Code:    formatted,
		Changes: []string{"Added line breaks between adjacent tags"},
	}, nil
}

type cssValidator struct{}

func (cssValidator) validate(code string) ValidationResult {
	res := ValidationResult{IsValid: true}
	if !strings.Contains(code, "{") || !strings.Contains(code, "}") {
		res.Warnings = append(res.Warnings, "no rule braces found")
	}
	return res
}

var (
	cssOpenBraceRe  = regexp.MustCompile(`\s*\{\s*`)
	cssCloseBraceRe = regexp.MustCompile(`;\s*\}`)
)

type cssFormatter struct{}

func (cssFormatter) format(code string) (FormatResult, error) {
	res := FormatResult{Code: code}

	formatted := cssOpenBraceRe.ReplaceAllString(res.Code, " {\n")
	if formatted != res.Code {
		res.Code = formatted
		res.Changes = append(res.Changes, "Normalized spacing around opening braces")
	}

	formatted = cssCloseBraceRe.ReplaceAllString(res.Code, ";\n}")
	if formatted != res.Code {
		res.Code = formatted
		res.Changes = append(res.Changes, "Moved closing braces to their own line")
	}
	return res, nil
}

type passValidator struct{}

func (passValidator) validate(string) ValidationResult {
	return ValidationResult{IsValid: true}
}

type identityFormatter struct{}

func (identityFormatter) format(code string) (FormatResult, error) {
	return FormatResult{Code: code}, nil
}
