// Package letter generates cover letter body text tailored to a job posting
// and the candidate's best-matching projects.
package letter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/adnane/cvforge/internal/llm"
	"github.com/adnane/cvforge/internal/match"
	"github.com/adnane/cvforge/internal/schemas"
)

// maxLetterProjects caps how many matched projects feed the prompt. Beyond
// the top few the letter starts reading like a list.
const maxLetterProjects = 3

// Content is the generated letter body plus the company name the model
// extracted, sanitized for use in an output filename.
type Content struct {
	CompanyName string
	Body        string
}

// GenerationError indicates the model could not produce usable letter
// content.
type GenerationError struct {
	Message string
	Cause   error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("generating cover letter: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("generating cover letter: %s", e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Generator produces cover letter content through an LLM client.
type Generator struct {
	client llm.Client
}

// NewGenerator creates a Generator backed by the given client.
func NewGenerator(client llm.Client) *Generator {
	return &Generator{client: client}
}

// letterPayload is the JSON contract the model fills.
type letterPayload struct {
	CompanyName string `json:"company_name"`
	CoverLetter string `json:"cover_letter"`
}

// Generate writes the body paragraphs of a cover letter in the style of
// templateText, grounded in the job posting and the top matched projects.
func (g *Generator) Generate(ctx context.Context, templateText, jobDescription string, projects []match.MatchedProject) (*Content, error) {
	prompt := buildPrompt(templateText, jobDescription, projects)

	raw, err := g.client.GenerateJSON(ctx, prompt, llm.TierPrecise)
	if err != nil {
		return nil, &GenerationError{Message: "model request failed", Cause: err}
	}

	cleaned := llm.ExtractJSONObject(raw)
	if err := schemas.ValidateCoverLetter(cleaned); err != nil {
		return nil, &GenerationError{Message: "model output failed schema validation", Cause: err}
	}

	var payload letterPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, &GenerationError{Message: "model output is not valid JSON", Cause: err}
	}

	return &Content{
		CompanyName: sanitizeCompanyName(payload.CompanyName),
		Body:        strings.ReplaceAll(payload.CoverLetter, `\\n`, "\n"),
	}, nil
}

func buildPrompt(templateText, jobDescription string, projects []match.MatchedProject) string {
	if len(projects) > maxLetterProjects {
		projects = projects[:maxLetterProjects]
	}

	var projectInfo strings.Builder
	for i, mp := range projects {
		p := mp.Project
		fmt.Fprintf(&projectInfo, "\nProject %d: %s\n", i+1, p.Name)
		if p.DetailedParagraph != "" {
			fmt.Fprintf(&projectInfo, "- Description: %s\n", p.DetailedParagraph)
		}
		if len(p.Technologies) > 0 {
			fmt.Fprintf(&projectInfo, "- Technologies: %s\n", strings.Join(p.Technologies, ", "))
		}
	}

	var sb strings.Builder
	sb.WriteString("You are an expert professional cover letter writer. Create a compelling, personalized cover letter.\n\n")
	sb.WriteString("TEMPLATE TO FOLLOW (adapt the structure, tone and style):\n")
	sb.WriteString(templateText)
	sb.WriteString("\n\nJOB INFORMATION:\n")
	sb.WriteString(jobDescription)
	sb.WriteString("\n\nRELEVANT PROJECTS (incorporate 1-2 max, only where genuinely relevant):\n")
	sb.WriteString(projectInfo.String())
	sb.WriteString(`
INSTRUCTIONS:
1. Follow the structure and tone of the provided template
2. Adapt the content to the specific job requirements
3. Mention matched projects naturally, and only where they fit the role
4. Return only the body paragraphs, without salutation or closing
5. Maximum 3 paragraphs, 300 words total
6. No placeholder text like [Your Name] - use actual values
7. The text goes into a LaTeX template, so avoid characters that break LaTeX

Return ONLY a JSON object with these exact keys:
- "company_name": the company name from the job description, no spaces or special characters
- "cover_letter": the full body text of the cover letter
`)
	return sb.String()
}

// sanitizeCompanyName strips anything unsafe for a filename component.
func sanitizeCompanyName(name string) string {
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == '-' || r == '_':
			sb.WriteRune(r)
		}
	}
	out := sb.String()
	if out == "" {
		return "company"
	}
	return out
}
