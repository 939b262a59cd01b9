package runner

import (
	"context"
	"regexp"
	"strings"
	"time"
)

// TypeScript support is a best-effort textual strip of type syntax followed
// by the JavaScript strategy. It is not a type checker: annotations that look
// like object-literal values or comparison chains can be mangled, which is
// why the extra structural checks stay advisory warnings.

var (
	tsInterfaceRe = regexp.MustCompile(`(?s)interface\s+\w+(\s+extends\s+[\w,\s]+)?\s*\{[^{}]*\}`)
	tsTypeAliasRe = regexp.MustCompile(`type\s+\w+(<[^>\n]*>)?\s*=[^;\n]+;?`)
	tsAsCastRe    = regexp.MustCompile(`\s+as\s+[A-Za-z_$][\w$.]*(\[\])?`)
	tsGenericRe   = regexp.MustCompile(`([A-Za-z_$][\w$]*)\s*<[\w\s,.]+>\(`)
	tsAnnotateRe  = regexp.MustCompile(`:\s*[A-Za-z_$][\w$.]*(\[\])?(\s*[|&]\s*[A-Za-z_$][\w$.]*(\[\])?)*`)
)

// stripTypes removes interface declarations, type aliases, casts, generic
// argument lists, and type annotations. Order matters: whole declarations go
// before the annotation pass so their bodies cannot leave orphaned syntax.
func stripTypes(code string) string {
	out := tsInterfaceRe.ReplaceAllString(code, "")
	out = tsTypeAliasRe.ReplaceAllString(out, "")
	out = tsAsCastRe.ReplaceAllString(out, "")
	out = tsGenericRe.ReplaceAllString(out, "$1(")
	out = tsAnnotateRe.ReplaceAllString(out, "")
	return out
}

type tsExecutor struct {
	timeout time.Duration
}

func (e tsExecutor) execute(ctx context.Context, code, input string) (string, error) {
	return jsExecutor{timeout: e.timeout}.execute(ctx, stripTypes(code), input)
}

type tsValidator struct{}

func (tsValidator) validate(code string) ValidationResult {
	res := jsValidator{}.validate(stripTypes(code))

	if strings.Contains(code, "interface") {
		if strings.Count(code, "{") != strings.Count(code, "}") {
			res.Warnings = append(res.Warnings, "unbalanced braces around interface declaration")
		}
	}
	return res
}
