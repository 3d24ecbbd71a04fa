// Package summarize turns repository READMEs into structured project
// summaries suitable for embedding and CV rendering.
package summarize

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/adnane/cvforge/internal/llm"
	"github.com/adnane/cvforge/internal/schemas"
)

const (
	// maxReadmeChars caps how much README content goes into the prompt.
	maxReadmeChars = 8000
	// maxTreePaths caps how many file paths enrich the prompt.
	maxTreePaths = 50
)

// Request carries everything the summarizer knows about one repository.
type Request struct {
	RepoName    string
	Description string
	Readme      string
	FileTree    []string
	Languages   []string // repository languages, merged into Technologies
}

// Summary is the structured result of summarizing one repository.
type Summary struct {
	ThreeLiner        string
	DetailedParagraph string
	Technologies      []string
	BadReadme         bool
	NoReadme          bool
	NeedsReview       bool
}

// summaryPayload is the JSON contract the model is asked to fill.
type summaryPayload struct {
	ThreeLiner        string   `json:"three_liner"`
	DetailedParagraph string   `json:"detailed_paragraph"`
	Technologies      []string `json:"technologies"`
	BadReadme         bool     `json:"bad_readme"`
}

// Summarizer produces project summaries through an LLM client.
type Summarizer struct {
	client llm.Client
}

// NewSummarizer creates a Summarizer backed by the given client.
func NewSummarizer(client llm.Client) *Summarizer {
	return &Summarizer{client: client}
}

// Summarize returns a structured summary for one repository. The returned
// summary is always usable: a missing README yields a placeholder without a
// model call, and a model failure yields the repository's own description
// flagged for review alongside the error.
func (s *Summarizer) Summarize(ctx context.Context, req Request) (*Summary, error) {
	quality := ClassifyReadme(req.Readme)

	if quality == QualityMissing {
		return placeholderSummary(req), nil
	}

	prompt := buildPrompt(req, quality)

	raw, err := s.client.GenerateJSON(ctx, prompt, llm.TierPrecise)
	if err != nil {
		return fallbackSummary(req), &SummaryError{
			RepoName: req.RepoName,
			Message:  "model request failed",
			Cause:    err,
		}
	}

	cleaned := llm.ExtractJSONObject(raw)
	if err := schemas.ValidateProjectSummary(cleaned); err != nil {
		return fallbackSummary(req), &SummaryError{
			RepoName: req.RepoName,
			Message:  "model output failed schema validation",
			Cause:    err,
		}
	}

	var payload summaryPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return fallbackSummary(req), &SummaryError{
			RepoName: req.RepoName,
			Message:  "model output is not valid JSON",
			Cause:    err,
		}
	}

	return &Summary{
		ThreeLiner:        strings.TrimSpace(payload.ThreeLiner),
		DetailedParagraph: strings.TrimSpace(payload.DetailedParagraph),
		Technologies:      normalizeTechnologies(append(payload.Technologies, req.Languages...)),
		BadReadme:         payload.BadReadme || quality == QualityPoor,
	}, nil
}

// placeholderSummary covers repositories without a README. No model call is
// made for them.
func placeholderSummary(req Request) *Summary {
	desc := strings.TrimSpace(req.Description)
	if desc == "" {
		desc = fmt.Sprintf("Repository %s has no README or description.", req.RepoName)
	}
	return &Summary{
		ThreeLiner:        desc,
		DetailedParagraph: desc,
		Technologies:      normalizeTechnologies(req.Languages),
		BadReadme:         true,
		NoReadme:          true,
	}
}

// fallbackSummary covers model failures. The repository's own description is
// better than nothing, and NeedsReview marks it for a human pass.
func fallbackSummary(req Request) *Summary {
	desc := strings.TrimSpace(req.Description)
	if desc == "" {
		desc = fmt.Sprintf("Summary unavailable for %s.", req.RepoName)
	}
	return &Summary{
		ThreeLiner:        desc,
		DetailedParagraph: desc,
		Technologies:      normalizeTechnologies(req.Languages),
		NeedsReview:       true,
	}
}

func buildPrompt(req Request, quality ReadmeQuality) string {
	readme := req.Readme
	if len(readme) > maxReadmeChars {
		readme = readme[:maxReadmeChars]
	}

	var sb strings.Builder
	sb.WriteString("You are analyzing a software project to build a CV entry.\n\n")
	fmt.Fprintf(&sb, "Repository: %s\n", req.RepoName)
	if req.Description != "" {
		fmt.Fprintf(&sb, "Description: %s\n", req.Description)
	}
	sb.WriteString("\nREADME content:\n")
	sb.WriteString(readme)
	sb.WriteString("\n")

	if len(req.FileTree) > 0 {
		tree := req.FileTree
		if len(tree) > maxTreePaths {
			tree = tree[:maxTreePaths]
		}
		sb.WriteString("\nProject files:\n")
		sb.WriteString(strings.Join(tree, "\n"))
		sb.WriteString("\n")
	}

	sb.WriteString(`
Return ONLY a JSON object with these exact keys:
- "three_liner": a concise 3-line description of what the project does
- "detailed_paragraph": one paragraph covering purpose, approach, and notable features
- "technologies": a list of technology names used (languages, frameworks, databases, tools)
- "bad_readme": true if the README was too vague or thin to describe the project confidently
`)

	if quality == QualityPoor {
		sb.WriteString("\nThe README is very short, so rely on the file paths and description where possible.\n")
	}

	return sb.String()
}

// normalizeTechnologies trims entries and drops empties and duplicates while
// preserving the model's ordering.
func normalizeTechnologies(techs []string) []string {
	seen := make(map[string]bool, len(techs))
	out := make([]string, 0, len(techs))
	for _, tech := range techs {
		tech = strings.TrimSpace(tech)
		if tech == "" {
			continue
		}
		key := strings.ToLower(tech)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, tech)
	}
	return out
}
