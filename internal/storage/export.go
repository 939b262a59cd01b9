package storage

import (
	"fmt"
	"strings"

	"github.com/michaelbrown/crucible/internal/llm"
)

// ExportMarkdown renders a conversation and its messages as a markdown document.
func ExportMarkdown(conv *Conversation, messages []llm.Message) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("# %s\n\n", conv.Title))
	b.WriteString(fmt.Sprintf("- **Conversation:** %s\n", conv.ID))
	if conv.Provider != "" {
		b.WriteString(fmt.Sprintf("- **Provider:** %s\n", conv.Provider))
	}
	if conv.Model != "" {
		b.WriteString(fmt.Sprintf("- **Model:** %s\n", conv.Model))
	}
	b.WriteString(fmt.Sprintf("- **Created:** %s\n", conv.CreatedAt.Format("2006-01-02 15:04:05")))
	b.WriteString("\n---\n\n")

	for _, m := range messages {
		switch m.Role {
		case llm.RoleSystem:
			continue
		case llm.RoleUser:
			b.WriteString(fmt.Sprintf("## You\n\n%s\n\n", m.Content))
		case llm.RoleAssistant:
			b.WriteString(fmt.Sprintf("## Crucible\n\n%s\n\n", m.Content))
		}
	}
	return b.String()
}
