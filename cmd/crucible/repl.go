package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/michaelbrown/crucible/internal/config"
	"github.com/michaelbrown/crucible/internal/runner"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive sandbox session",
	Long: `Read-eval-print loop against the sandboxed execution service.

Each entry runs in a fresh sandbox, so state does not carry between lines.
Commands:
  :lang <id>   switch language (default javascript)
  :quit        exit`,
	RunE: runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runRepl(cmd *cobra.Command, args []string) error {
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

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[36mcrucible>\033[0m ",
		HistoryFile:     "/tmp/crucible_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer rl.Close()

	lang := runner.JavaScript
	fmt.Printf("sandbox repl (%s); :lang <id> to switch, :quit to exit\n", lang)

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case line == ":quit" || line == ":exit":
			return nil
		case strings.HasPrefix(line, ":lang"):
			next, err := runner.ParseLanguage(strings.TrimSpace(strings.TrimPrefix(line, ":lang")))
			if err != nil {
				fmt.Println(err)
				continue
			}
			lang = next
			fmt.Printf("language: %s\n", lang)
			continue
		}

		res := svc.Execute(cmd.Context(), runner.ExecutionRequest{Code: line, Language: lang})
		if res.Output != "" {
			fmt.Println(res.Output)
		}
		if !res.Success {
			fmt.Printf("error: %s\n", res.Error)
		}
	}
}
