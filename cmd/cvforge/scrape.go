package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/adnane/cvforge/internal/embedding"
	"github.com/adnane/cvforge/internal/github"
	"github.com/adnane/cvforge/internal/ingest"
	"github.com/adnane/cvforge/internal/jobs"
	"github.com/adnane/cvforge/internal/llm"
	"github.com/adnane/cvforge/internal/observability"
	"github.com/adnane/cvforge/internal/progress"
	"github.com/adnane/cvforge/internal/project"
	"github.com/adnane/cvforge/internal/summarize"
)

var (
	scrapeDataDir string
	scrapeVerbose bool
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape <github-username>",
	Short: "Scrape and summarize a GitHub profile from the command line",
	Long:  `Fetch every repository of a GitHub user, summarize the READMEs, and store the projects and their embeddings locally. The same pipeline the scrape-github endpoint runs, without the server.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runScrape,
}

var analyzeJobCmd = &cobra.Command{
	Use:   "analyze-job <file>",
	Short: "Analyze a job description from a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyzeJob,
}

func init() {
	scrapeCmd.Flags().StringVar(&scrapeDataDir, "data-dir", "data", "Directory for project and embedding storage")
	scrapeCmd.Flags().BoolVarP(&scrapeVerbose, "verbose", "v", false, "Print a formatted report instead of JSON")
	analyzeJobCmd.Flags().BoolVarP(&scrapeVerbose, "verbose", "v", false, "Print a formatted report instead of JSON")
	rootCmd.AddCommand(scrapeCmd)
	rootCmd.AddCommand(analyzeJobCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
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

	store, err := project.NewStore(scrapeDataDir)
	if err != nil {
		return fmt.Errorf("failed to open project store: %w", err)
	}

	index, err := embedding.NewIndex(scrapeDataDir, llm.DefaultEmbeddingModel)
	if err != nil {
		return fmt.Errorf("failed to open embedding index: %w", err)
	}

	fetcher := github.NewClient(os.Getenv("GITHUB_TOKEN"), github.DefaultRetryPolicy())
	svc := ingest.NewService(fetcher, summarize.NewSummarizer(client), store, client, index, progress.NewHub(), github.DefaultPolicy())

	report, err := svc.ScrapeUser(ctx, args[0], "")
	if err != nil {
		return fmt.Errorf("scrape failed: %w", err)
	}

	if scrapeVerbose {
		observability.NewPrinter(os.Stdout).PrintScrapeReport(report)
		return nil
	}
	return printJSON(report)
}

func runAnalyzeJob(cmd *cobra.Command, args []string) error {
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

	result, err := jobs.NewAnalyzer(client).Analyze(ctx, string(description))
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if scrapeVerbose {
		observability.NewPrinter(os.Stdout).PrintJobAnalysis(result)
		return nil
	}
	return printJSON(result)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
