package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/plu-programming-party/partybot/internal/agent"
	"github.com/plu-programming-party/partybot/internal/config"
	"github.com/plu-programming-party/partybot/internal/llm"
	"github.com/plu-programming-party/partybot/internal/site"
	"github.com/plu-programming-party/partybot/internal/telemetry"
)

func newAskCmd() *cobra.Command {
	var repoPath string

	cmd := &cobra.Command{
		Use:   "ask <request>",
		Short: "Run one change request against a local checkout",
		Long: `Ask runs a single agent session against a local website checkout
without Discord or git publishing. Clarifying questions are answered
interactively on stdin. Useful for trying prompts before deploying.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(repoPath, strings.Join(args, " "))
		},
	}
	cmd.Flags().StringVar(&repoPath, "repo", "", "Path to the website checkout (defaults to REPO_LOCAL_PATH)")
	return cmd
}

func runAsk(repoPath, prompt string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if repoPath == "" {
		repoPath = cfg.RepoLocalPath
	}

	logger := newLogger()
	siteContext, err := site.Context(repoPath)
	if err != nil {
		return err
	}

	service := agent.NewService(agent.ServiceConfig{
		Client:        llm.NewAnthropicClientWithKey(cfg.ClaudeAPIKey),
		Executor:      agent.NewExecutor(repoPath),
		Model:         cfg.Model,
		System:        agent.SystemPrompt(siteContext),
		MaxIterations: cfg.MaxIterations,
		Logger:        telemetry.ComponentLogger(logger, "agent"),
	})

	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)
	outcome := service.Prompt(ctx, "cli", prompt)

	for outcome.Status == agent.OutcomeQuestion {
		fmt.Printf("\n? %s\n> ", outcome.Text)
		answer, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read answer: %w", err)
		}
		outcome = service.Prompt(ctx, "cli", strings.TrimSpace(answer))
	}

	switch outcome.Status {
	case agent.OutcomeComplete:
		fmt.Printf("\n%s\n", outcome.Text)
		if len(outcome.Files) > 0 {
			fmt.Println("\nChanged files (not committed):")
			for _, f := range outcome.Files {
				fmt.Println("  " + f)
			}
		}
		return nil
	default:
		return fmt.Errorf("%s", outcome.Text)
	}
}
