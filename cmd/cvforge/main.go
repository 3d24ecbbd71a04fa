// Package main provides the entry point for the cvforge HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cvforge",
	Short: "cvforge HTTP API server",
	Long:  "cvforge scrapes a GitHub profile, summarizes each project with an LLM, matches projects against job postings by embedding similarity, and compiles tailored LaTeX CVs and cover letters via REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
