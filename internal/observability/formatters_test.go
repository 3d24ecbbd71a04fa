package observability

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adnane/cvforge/internal/ingest"
	"github.com/adnane/cvforge/internal/jobs"
	"github.com/adnane/cvforge/internal/match"
	"github.com/adnane/cvforge/internal/progress"
	"github.com/adnane/cvforge/internal/project"
)

func TestPrintScrapeReport(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintScrapeReport(&ingest.Report{
		Username: "someone",
		Total:    12,
		Ingested: 10,
		Skipped:  1,
		Failed:   1,
		Alerts: []progress.Alert{
			{Type: "warning", Message: "Summary degraded for broken-repo"},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "SCRAPE REPORT")
	assert.Contains(t, out, "someone")
	assert.Contains(t, out, "Ingested:  10")
	assert.Contains(t, out, "warning")
}

func TestPrintScrapeReportNil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintScrapeReport(nil)
	assert.Empty(t, buf.String())
}

func TestPrintJobAnalysis(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintJobAnalysis(&jobs.JobDescriptionResult{
		Title:                "Backend Engineer",
		Company:              "Acme",
		RequiredTechnologies: []string{"Go", "PostgreSQL", "Redis", "Kafka", "Docker", "Terraform"},
		AnalysisSummary:      "Go-heavy backend role.",
	})

	out := buf.String()
	assert.Contains(t, out, "JOB ANALYSIS")
	assert.Contains(t, out, "Backend Engineer")
	assert.Contains(t, out, "... and 1 more")
}

func TestPrintMatches(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintMatches([]match.MatchedProject{
		{
			Project:         &project.Project{Name: "api_server"},
			SimilarityScore: 0.91,
			RelevanceReason: "Demonstrates experience with Go",
		},
	})

	out := buf.String()
	assert.Contains(t, out, "MATCHED PROJECTS")
	assert.Contains(t, out, "api_server")
	assert.Contains(t, out, "0.91")
}

func TestTruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", "short\n"+string(bytes.Repeat([]byte("x"), 100)))

	for _, line := range bytes.Split(buf.Bytes(), []byte("\n")) {
		assert.LessOrEqual(t, len(bytes.Runes(line)), boxWidth+2)
	}
}
