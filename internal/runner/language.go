package runner

import (
	"fmt"
	"strings"
)

// Language identifies a supported language. The set is closed: the registry
// built in New covers every constant and is never mutated afterwards.
type Language string

const (
	JavaScript Language = "javascript"
	TypeScript Language = "typescript"
	Python     Language = "python"
	HTML       Language = "html"
	CSS        Language = "css"
	JSON       Language = "json"
	Markdown   Language = "markdown"
)

// Languages lists the supported languages in display order.
var Languages = []Language{JavaScript, TypeScript, Python, HTML, CSS, JSON, Markdown}

// LanguageInfo is the public descriptor returned by ListLanguages.
type LanguageInfo struct {
	ID      Language `json:"id"`
	Name    string   `json:"name"`
	Version string   `json:"version"`
	Icon    string   `json:"icon"`
}

var languageInfos = []LanguageInfo{
	{ID: JavaScript, Name: "JavaScript", Version: "ES2017", Icon: "js"},
	{ID: TypeScript, Name: "TypeScript", Version: "5.x (type-stripped)", Icon: "ts"},
	{ID: Python, Name: "Python", Version: "3.x (not executable)", Icon: "py"},
	{ID: HTML, Name: "HTML", Version: "HTML5", Icon: "html"},
	{ID: CSS, Name: "CSS", Version: "CSS3", Icon: "css"},
	{ID: JSON, Name: "JSON", Version: "RFC 8259", Icon: "json"},
	{ID: Markdown, Name: "Markdown", Version: "CommonMark", Icon: "md"},
}

// ParseLanguage normalizes a language identifier.
func ParseLanguage(s string) (Language, error) {
	lang := Language(strings.ToLower(strings.TrimSpace(s)))
	for _, l := range Languages {
		if l == lang {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedLanguage, s)
}

var extensions = map[string]Language{
	".js":   JavaScript,
	".mjs":  JavaScript,
	".ts":   TypeScript,
	".py":   Python,
	".html": HTML,
	".htm":  HTML,
	".css":  CSS,
	".json": JSON,
	".md":   Markdown,
}

// LanguageForExtension maps a file extension (with leading dot) to a language.
func LanguageForExtension(ext string) (Language, bool) {
	lang, ok := extensions[strings.ToLower(ext)]
	return lang, ok
}
