package runner

import (
	"encoding/json"
	"strings"

	"github.com/dop251/goja"
)

// captureBuffer collects the formatted log lines produced during one
// execution. One buffer exists per Execute call and is owned by that call
// exclusively; it is never shared or pooled.
type captureBuffer struct {
	lines []string
}

// append adds one line. Levels above plain "log" are tagged.
func (b *captureBuffer) append(level, line string) {
	if level != "" && level != "log" {
		line = "[" + level + "] " + line
	}
	b.lines = append(b.lines, line)
}

// String flattens the buffer to a single newline-joined string.
func (b *captureBuffer) String() string {
	return strings.Join(b.lines, "\n")
}

// formatValue converts a runtime value into a deterministic printable string.
// It is total: a serialization failure falls back to the value's default
// string conversion instead of propagating an error.
func formatValue(v goja.Value) string {
	if v == nil || goja.IsNull(v) {
		return "null"
	}
	if goja.IsUndefined(v) {
		return "undefined"
	}

	switch v.Export().(type) {
	case map[string]any, []any:
		if b, err := json.MarshalIndent(v.Export(), "", "  "); err == nil {
			return string(b)
		}
	}
	return v.String()
}

// formatArgs renders a console call's arguments, space-separated.
func formatArgs(args []goja.Value) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = formatValue(a)
	}
	return strings.Join(parts, " ")
}
