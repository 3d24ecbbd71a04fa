// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/adnane/cvforge/internal/ingest"
	"github.com/adnane/cvforge/internal/jobs"
	"github.com/adnane/cvforge/internal/match"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintScrapeReport outputs a human-readable summary of one scrape run.
func (p *Printer) PrintScrapeReport(report *ingest.Report) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("User:      %s\n", report.Username))
	sb.WriteString(fmt.Sprintf("Total:     %d\n", report.Total))
	sb.WriteString(fmt.Sprintf("Ingested:  %d\n", report.Ingested))
	sb.WriteString(fmt.Sprintf("Skipped:   %d\n", report.Skipped))
	sb.WriteString(fmt.Sprintf("Failed:    %d\n", report.Failed))

	if len(report.Alerts) > 0 {
		sb.WriteString("\nAlerts:\n")
		count := min(len(report.Alerts), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • [%s] %s\n", report.Alerts[i].Type, report.Alerts[i].Message))
		}
		if len(report.Alerts) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(report.Alerts)-maxItemsToShow))
		}
	}

	p.printBox("SCRAPE REPORT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintJobAnalysis outputs a human-readable summary of a parsed job posting.
func (p *Printer) PrintJobAnalysis(result *jobs.JobDescriptionResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Title:    %s\n", result.Title))
	if result.Company != "" {
		sb.WriteString(fmt.Sprintf("Company:  %s\n", result.Company))
	}
	if result.ExperienceLevel != "" {
		sb.WriteString(fmt.Sprintf("Level:    %s\n", result.ExperienceLevel))
	}

	if len(result.RequiredTechnologies) > 0 {
		sb.WriteString("\nRequired Technologies:\n")
		count := min(len(result.RequiredTechnologies), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", result.RequiredTechnologies[i]))
		}
		if len(result.RequiredTechnologies) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(result.RequiredTechnologies)-maxItemsToShow))
		}
	}

	if result.AnalysisSummary != "" {
		sb.WriteString("\n")
		sb.WriteString(result.AnalysisSummary)
	}

	p.printBox("JOB ANALYSIS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintMatches outputs the ranked projects with scores and reasons.
func (p *Printer) PrintMatches(matches []match.MatchedProject) {
	if len(matches) == 0 {
		return
	}

	var sb strings.Builder
	count := min(len(matches), maxItemsToShow)
	for i := 0; i < count; i++ {
		m := matches[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, m.Project.Name))
		sb.WriteString(fmt.Sprintf("    Score: %.2f\n", m.SimilarityScore))
		if m.RelevanceReason != "" {
			reason := m.RelevanceReason
			if len(reason) > 48 {
				reason = reason[:45] + "..."
			}
			sb.WriteString(fmt.Sprintf("    %s\n", reason))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(matches) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more projects", len(matches)-maxItemsToShow))
	}

	p.printBox("MATCHED PROJECTS", strings.TrimSuffix(sb.String(), "\n"))
}
