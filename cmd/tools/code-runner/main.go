package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/michaelbrown/crucible/internal/runner"
)

// MCP stdio server exposing the sandboxed execution service as tools, so
// agent hosts can run, validate, and format code through the same strategies
// the web app uses.

var svc *runner.Service

func languageList() string {
	ids := make([]string, len(runner.Languages))
	for i, l := range runner.Languages {
		ids[i] = string(l)
	}
	return strings.Join(ids, ", ")
}

func main() {
	var err error
	svc, err = runner.New(runner.Config{})
	if err != nil {
		fmt.Printf("initializing runner: %v\n", err)
		return
	}

	s := server.NewMCPServer("crucible-code-runner", "0.1.0")

	languageProp := map[string]any{
		"type":        "string",
		"description": fmt.Sprintf("Language identifier (%s)", languageList()),
	}
	codeProp := map[string]any{
		"type":        "string",
		"description": "Source code",
	}

	s.AddTool(mcp.Tool{
		Name:        "code_run",
		Description: fmt.Sprintf("Execute code in an in-process sandbox. Supported languages: %s.", languageList()),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"language": languageProp,
				"code":     codeProp,
				"input": map[string]any{
					"type":        "string",
					"description": "Input string pre-bound inside the sandbox (optional)",
				},
			},
			Required: []string{"language", "code"},
		},
	}, handleCodeRun)

	s.AddTool(mcp.Tool{
		Name:        "code_validate",
		Description: "Statically check code for syntax problems without executing it.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"language": languageProp,
				"code":     codeProp,
			},
			Required: []string{"language", "code"},
		},
	}, handleCodeValidate)

	s.AddTool(mcp.Tool{
		Name:        "code_format",
		Description: "Apply deterministic style normalization to code.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"language": languageProp,
				"code":     codeProp,
			},
			Required: []string{"language", "code"},
		},
	}, handleCodeFormat)

	if err := server.ServeStdio(s); err != nil {
		fmt.Printf("server error: %v\n", err)
	}
}

func toolArgs(request mcp.CallToolRequest) (language, code, input string, ok bool) {
	args, _ := request.Params.Arguments.(map[string]any)
	if args == nil {
		return "", "", "", false
	}
	language, _ = args["language"].(string)
	code, _ = args["code"].(string)
	input, _ = args["input"].(string)
	return language, code, input, language != "" && code != ""
}

func handleCodeRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	language, code, input, ok := toolArgs(request)
	if !ok {
		return errResult("error: 'language' and 'code' are required"), nil
	}

	res := svc.Execute(ctx, runner.ExecutionRequest{
		Code:     code,
		Language: runner.Language(language),
		Input:    input,
	})

	var output strings.Builder
	if res.Output != "" {
		output.WriteString(res.Output)
	}
	if !res.Success {
		if output.Len() > 0 {
			output.WriteString("\n")
		}
		output.WriteString("ERROR: " + res.Error)
	}
	output.WriteString(fmt.Sprintf("\n(%s)", res.Duration()))

	text := output.String()
	if len(text) > 4000 {
		text = text[:4000] + "\n... (output truncated)"
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: text}},
		IsError: !res.Success,
	}, nil
}

func handleCodeValidate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	language, code, _, ok := toolArgs(request)
	if !ok {
		return errResult("error: 'language' and 'code' are required"), nil
	}

	res := svc.Validate(code, runner.Language(language))
	data, _ := json.MarshalIndent(res, "", "  ")

	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(data)}},
		IsError: !res.IsValid,
	}, nil
}

func handleCodeFormat(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	language, code, _, ok := toolArgs(request)
	if !ok {
		return errResult("error: 'language' and 'code' are required"), nil
	}

	res, err := svc.Format(code, runner.Language(language))
	if err != nil {
		return errResult(fmt.Sprintf("error: %v", err)), nil
	}

	text := res.Code
	if len(res.Changes) > 0 {
		text += "\n\nChanges:\n- " + strings.Join(res.Changes, "\n- ")
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: text}},
	}, nil
}

func errResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: text}},
		IsError: true,
	}
}
