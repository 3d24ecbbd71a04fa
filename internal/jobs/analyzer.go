// Package jobs extracts a structured profile from a free-text job
// description.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/adnane/cvforge/internal/llm"
	"github.com/adnane/cvforge/internal/schemas"
)

// JobDescriptionResult is the structured view of a job posting. The original
// posting text rides along in FullDescription so downstream steps never need
// the raw input again.
type JobDescriptionResult struct {
	Title                string   `json:"title"`
	Company              string   `json:"company"`
	RequiredTechnologies []string `json:"required_technologies"`
	ExperienceLevel      string   `json:"experience_level"`
	SoftSkills           []string `json:"soft_skills"`
	AnalysisSummary      string   `json:"analysis_summary"`
	Requirements         []string `json:"requirements"`
	FullDescription      string   `json:"full_description"`
}

// Analyzer extracts job profiles through an LLM client.
type Analyzer struct {
	client llm.Client
}

// NewAnalyzer creates an Analyzer backed by the given client.
func NewAnalyzer(client llm.Client) *Analyzer {
	return &Analyzer{client: client}
}

// strictSuffix is appended on the retry after a malformed first response.
const strictSuffix = "\n\nIMPORTANT: Your previous answer was not valid. " +
	"Respond with ONLY the JSON object. No prose, no markdown fences, " +
	"every listed key present with the exact type specified."

// Analyze parses a job description into a JobDescriptionResult. A malformed
// model response is retried exactly once with a stricter prompt; a second
// failure returns a ParseError and no result.
func (a *Analyzer) Analyze(ctx context.Context, description string) (*JobDescriptionResult, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, &ParseError{Message: "job description is empty"}
	}

	prompt := buildPrompt(description)

	result, firstErr := a.attempt(ctx, prompt, description)
	if firstErr == nil {
		return result, nil
	}

	result, retryErr := a.attempt(ctx, prompt+strictSuffix, description)
	if retryErr == nil {
		return result, nil
	}

	return nil, &ParseError{
		Message: "model output failed validation twice",
		Cause:   retryErr,
	}
}

func (a *Analyzer) attempt(ctx context.Context, prompt, description string) (*JobDescriptionResult, error) {
	raw, err := a.client.GenerateJSON(ctx, prompt, llm.TierFast)
	if err != nil {
		return nil, fmt.Errorf("model request failed: %w", err)
	}

	cleaned := llm.ExtractJSONObject(raw)
	if err := schemas.ValidateJobAnalysis(cleaned); err != nil {
		return nil, err
	}

	var result JobDescriptionResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, fmt.Errorf("decoding analysis: %w", err)
	}

	result.FullDescription = description
	return &result, nil
}

func buildPrompt(description string) string {
	var sb strings.Builder
	sb.WriteString("Analyze this job description and extract its key facts.\n\n")
	sb.WriteString("Job description:\n")
	sb.WriteString(description)
	sb.WriteString(`

Return ONLY a JSON object with these exact keys:
- "title": the job title
- "company": the company name, or "" if not stated
- "required_technologies": list of technology names the role requires
- "experience_level": one of "junior", "mid", "senior", "lead", or "" if unclear
- "soft_skills": list of non-technical skills mentioned
- "analysis_summary": 2-3 sentences summarizing what this role is about
- "requirements": list of the concrete requirements stated in the posting
`)
	return sb.String()
}
