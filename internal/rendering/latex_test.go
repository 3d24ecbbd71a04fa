package rendering

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adnane/cvforge/internal/db"
	"github.com/adnane/cvforge/internal/match"
	"github.com/adnane/cvforge/internal/project"
)

func writeTemplate(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "template.tex")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testPerson() *db.PersonalInfo {
	phone := "+49 123"
	title := "Software Engineer"
	return &db.PersonalInfo{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Phone:     &phone,
		Title:     &title,
		Skills: map[string][]string{
			"Languages": {"Go", "C++"},
		},
		Experience: []db.ExperienceEntry{
			{Title: "Engineer", Company: "Analytical & Engines", StartDate: "1842-01", EndDate: "1843-09"},
		},
	}
}

func testProjects() []match.MatchedProject {
	return []match.MatchedProject{
		{
			Project: &project.Project{
				Name:         "api_server",
				URL:          "https://github.com/ada/api_server",
				ThreeLiner:   "• A REST API server.\nHandles 10% more load.\nWritten in Go.",
				Technologies: []string{"Go", "PostgreSQL", "Redis", "Docker", "Kafka", "Extra"},
			},
			SimilarityScore: 0.9,
			RelevanceReason: "Demonstrates experience with Go",
		},
	}
}

func TestRenderCV_EscapesAndFills(t *testing.T) {
	tmplPath := writeTemplate(t, `\name{ {{- .FirstName}} {{.LastName -}} }
{{range .Skills}}\skill{ {{- .Category}}: {{.Skills -}} }
{{end}}{{range .Experience}}\job{ {{- .Company}}}{{.Dates -}} }
{{end}}{{range .Projects}}\project{ {{- .Name}}}{ {{- .Technologies -}} }
{{end}}`)

	tex, warnings, err := RenderCV(testPerson(), testProjects(), tmplPath)
	require.NoError(t, err)

	assert.Contains(t, tex, "Ada Lovelace")
	assert.Contains(t, tex, `Analytical \& Engines`)
	assert.Contains(t, tex, "1842-01 -- 1843-09")
	assert.Contains(t, tex, `api\_server`)
	assert.Contains(t, tex, "Go, PostgreSQL, Redis, Docker, Kafka")
	assert.NotContains(t, tex, "Extra", "technologies are capped per project")

	// Warnings name the optional fields that were empty.
	assert.Contains(t, warnings, "personal info is missing summary")
	assert.NotContains(t, warnings, "personal info is missing phone")
}

func TestRenderCV_RejectsZeroProjects(t *testing.T) {
	tmplPath := writeTemplate(t, `{{.FirstName}}`)

	_, _, err := RenderCV(testPerson(), nil, tmplPath)

	var re *RenderError
	require.ErrorAs(t, err, &re)
	assert.Contains(t, re.Message, "no projects")
}

func TestRenderCV_UndefinedVariableNamedInError(t *testing.T) {
	tmplPath := writeTemplate(t, `{{.FirstName}} {{.NoSuchField}}`)

	_, _, err := RenderCV(testPerson(), testProjects(), tmplPath)

	var te *TemplateError
	require.ErrorAs(t, err, &te)
	assert.Contains(t, err.Error(), "NoSuchField")
}

func TestRenderCV_MissingTemplateFile(t *testing.T) {
	_, _, err := RenderCV(testPerson(), testProjects(), filepath.Join(t.TempDir(), "nope.tex"))

	var te *TemplateError
	require.ErrorAs(t, err, &te)
	assert.Contains(t, te.Message, "not found")
}

func TestRenderCoverLetter_BodyIsVerbatim(t *testing.T) {
	tmplPath := writeTemplate(t, `\opening{Dear {{.Company}} team}
{{.Body}}`)

	body := "I built \\textbf{three} services."
	tex, warnings, err := RenderCoverLetter(testPerson(), "Backend Engineer", "Acme", body, nil, tmplPath)
	require.NoError(t, err)

	assert.Contains(t, tex, "Dear Acme team")
	assert.Contains(t, tex, `\textbf{three}`, "generated body keeps its LaTeX formatting")
	assert.NotContains(t, warnings, "company name missing, using a generic salutation")
}

func TestRenderCoverLetter_GenericCompanyFallback(t *testing.T) {
	tmplPath := writeTemplate(t, `\opening{Dear {{.Company}} team}`)

	tex, warnings, err := RenderCoverLetter(testPerson(), "Backend Engineer", "", "body", nil, tmplPath)
	require.NoError(t, err)

	assert.Contains(t, tex, "Dear your company team")
	assert.Contains(t, warnings, "company name missing, using a generic salutation")
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "A REST API server.", firstLine("• A REST API server.\nSecond line."))
	assert.Equal(t, "Dashed entry", firstLine("- Dashed entry"))
	assert.Equal(t, "single", firstLine("single"))
	assert.Equal(t, "", firstLine(""))
}
