package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/adnane/cvforge/internal/embedding"
	"github.com/adnane/cvforge/internal/llm"
	"github.com/adnane/cvforge/internal/match"
	"github.com/adnane/cvforge/internal/observability"
	"github.com/adnane/cvforge/internal/project"
)

var (
	matchDataDir string
	matchTopK    int
	matchVerbose bool
)

var matchCmd = &cobra.Command{
	Use:   "match <file>",
	Short: "Match scraped projects against a job description from a file",
	Long:  `Embed a job description and rank previously scraped projects by similarity. Requires a prior scrape run against the same data directory.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runMatch,
}

func init() {
	matchCmd.Flags().StringVar(&matchDataDir, "data-dir", "data", "Directory for project and embedding storage")
	matchCmd.Flags().IntVar(&matchTopK, "top-k", 5, "Maximum number of projects to return")
	matchCmd.Flags().BoolVarP(&matchVerbose, "verbose", "v", false, "Print a formatted report instead of JSON")
	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, args []string) error {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	description, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read job description: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), apiKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer client.Close()

	store, err := project.NewStore(matchDataDir)
	if err != nil {
		return fmt.Errorf("failed to open project store: %w", err)
	}

	index, err := embedding.NewIndex(matchDataDir, llm.DefaultEmbeddingModel)
	if err != nil {
		return fmt.Errorf("failed to open embedding index: %w", err)
	}

	matches, err := match.NewMatcher(client, index, store).Match(ctx, string(description), matchTopK)
	if err != nil {
		return fmt.Errorf("matching failed: %w", err)
	}

	if matchVerbose {
		observability.NewPrinter(os.Stdout).PrintMatches(matches)
		return nil
	}
	return printJSON(matches)
}
