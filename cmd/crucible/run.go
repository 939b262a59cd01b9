package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/michaelbrown/crucible/internal/config"
	"github.com/michaelbrown/crucible/internal/runner"
)

var (
	langFlag  string
	inputFlag string
)

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Execute a source file in the sandbox",
	Long: `Execute a local source file through the sandboxed execution service and
print the captured output. The language is inferred from the file extension
unless --lang is given.

Examples:
  crucible run script.js
  crucible run notes.json
  crucible run script.ts --input "payload"`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&langFlag, "lang", "", "Language to execute as (overrides extension)")
	runCmd.Flags().StringVar(&inputFlag, "input", "", "Input string pre-bound inside the sandbox")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	path := args[0]

	code, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var lang runner.Language
	if langFlag != "" {
		lang, err = runner.ParseLanguage(langFlag)
		if err != nil {
			return err
		}
	} else {
		var ok bool
		lang, ok = runner.LanguageForExtension(filepath.Ext(path))
		if !ok {
			return fmt.Errorf("cannot infer language from %q; use --lang", filepath.Ext(path))
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	svc, err := runner.New(runner.Config{
		ExecutionTimeout: cfg.Sandbox.Timeout(),
		MaxCodeLength:    cfg.Sandbox.MaxCodeLength,
	})
	if err != nil {
		return fmt.Errorf("initializing runner: %w", err)
	}

	res := svc.Execute(cmd.Context(), runner.ExecutionRequest{
		Code:     string(code),
		Language: lang,
		Input:    inputFlag,
	})

	if res.Output != "" {
		fmt.Println(res.Output)
	}
	if !res.Success {
		return fmt.Errorf("execution failed after %s: %s", res.Duration(), res.Error)
	}
	fmt.Fprintf(os.Stderr, "ok (%s)\n", res.Duration())
	return nil
}
