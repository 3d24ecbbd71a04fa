package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adnane/cvforge/internal/config"
	"github.com/adnane/cvforge/internal/db"
	"github.com/adnane/cvforge/internal/embedding"
	"github.com/adnane/cvforge/internal/github"
	"github.com/adnane/cvforge/internal/ingest"
	"github.com/adnane/cvforge/internal/jobs"
	"github.com/adnane/cvforge/internal/letter"
	"github.com/adnane/cvforge/internal/llm"
	"github.com/adnane/cvforge/internal/match"
	"github.com/adnane/cvforge/internal/progress"
	"github.com/adnane/cvforge/internal/project"
	"github.com/adnane/cvforge/internal/server"
	"github.com/adnane/cvforge/internal/summarize"
)

var (
	serveConfigPath   string
	servePort         int
	serveDataDir      string
	serveOutputDir    string
	serveTemplatesDir string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for scraping, matching, and document generation.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to a JSON config file")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on")
	serveCmd.Flags().StringVar(&serveDataDir, "data-dir", "", "Directory for project and embedding storage")
	serveCmd.Flags().StringVar(&serveOutputDir, "output-dir", "", "Directory for generated PDFs")
	serveCmd.Flags().StringVar(&serveTemplatesDir, "templates-dir", "", "Directory holding the LaTeX templates")
	rootCmd.AddCommand(serveCmd)
}

// serveDefaults are the built-in fallbacks when neither flags, config file,
// nor environment provide a value.
var serveDefaults = config.Config{
	Port:         8000,
	DataDir:      "data",
	OutputDir:    "output",
	TemplatesDir: "templates",
}

// resolveConfig layers the configuration sources: flags beat the config
// file, the config file beats the environment, and built-in defaults fill
// the rest.
func resolveConfig() (config.Config, error) {
	cfg := config.Config{
		Port:         servePort,
		DataDir:      serveDataDir,
		OutputDir:    serveOutputDir,
		TemplatesDir: serveTemplatesDir,
	}

	if serveConfigPath != "" {
		fileCfg, err := config.LoadConfig(serveConfigPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = cfg.MergeWithDefaults(*fileCfg)
	}

	cfg = cfg.MergeWithDefaults(config.FromEnv())
	cfg = cfg.MergeWithDefaults(serveDefaults)

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}

	store, err := project.NewStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open project store: %w", err)
	}

	index, err := embedding.NewIndex(cfg.DataDir, llm.DefaultEmbeddingModel)
	if err != nil {
		return fmt.Errorf("failed to open embedding index: %w", err)
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("failed to ensure database schema: %w", err)
	}

	policy := github.Policy{
		SkipForks:    !cfg.IncludeForks,
		SkipArchived: !cfg.IncludeArchived,
	}

	hub := progress.NewHub()
	fetcher := github.NewClient(cfg.GitHubToken, github.DefaultRetryPolicy())
	svc := ingest.NewService(fetcher, summarize.NewSummarizer(client), store, client, index, hub, policy)

	srv := server.New(server.Config{
		Port:         cfg.Port,
		OutputDir:    cfg.OutputDir,
		TemplatesDir: cfg.TemplatesDir,
	}, server.Deps{
		DB:       database,
		Store:    store,
		Index:    index,
		Ingest:   svc,
		Analyzer: jobs.NewAnalyzer(client),
		Matcher:  match.NewMatcher(client, index, store),
		Letters:  letter.NewGenerator(client),
		Hub:      hub,
	})

	return srv.Start()
}
