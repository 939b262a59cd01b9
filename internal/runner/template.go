package runner

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var templatesYAML []byte

// loadTemplates parses the embedded starter snippets. Keys must be known
// language identifiers; an unknown key is a packaging mistake and fails New.
func loadTemplates() (map[Language]string, error) {
	var raw map[string]string
	if err := yaml.Unmarshal(templatesYAML, &raw); err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	templates := make(map[Language]string, len(raw))
	for key, snippet := range raw {
		lang, err := ParseLanguage(key)
		if err != nil {
			return nil, fmt.Errorf("template for unknown language %q", key)
		}
		templates[lang] = snippet
	}
	return templates, nil
}
