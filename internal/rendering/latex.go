package rendering

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/template"

	"github.com/adnane/cvforge/internal/db"
	"github.com/adnane/cvforge/internal/match"
)

// maxProjectTechnologies caps how many technologies a project lists on the
// rendered document.
const maxProjectTechnologies = 5

// SkillCategory is one named group of skills, pre-joined for the template.
type SkillCategory struct {
	Category string
	Skills   string
}

// ExperienceItem is one position, escaped and date-formatted for LaTeX.
type ExperienceItem struct {
	Title       string
	Company     string
	Location    string
	Dates       string
	Description string
}

// EducationItem is one degree, escaped and date-formatted for LaTeX.
type EducationItem struct {
	Degree      string
	Institution string
	Location    string
	Dates       string
	Description string
}

// ProjectEntry is one matched project as it appears on the document.
type ProjectEntry struct {
	Name            string
	URL             string
	Description     string
	Technologies    string
	RelevanceReason string
}

// CVData is the data structure passed to the CV template. All fields are
// already LaTeX-escaped.
type CVData struct {
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Address    string
	City       string
	PostalCode string
	Title      string
	Summary    string
	LinkedIn   string
	GitHub     string
	Skills     []SkillCategory
	Experience []ExperienceItem
	Education  []EducationItem
	Projects   []ProjectEntry
}

// LetterData is the data structure passed to the cover letter template. Body
// is inserted verbatim: the generator produces LaTeX-safe text and may use
// formatting commands.
type LetterData struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	City      string
	JobTitle  string
	Company   string
	Body      string
	Projects  []ProjectEntry
}

// RenderCV renders the CV template for the given person and selected
// projects. It returns the LaTeX source plus warnings for optional fields
// that were missing. Rendering with zero projects is rejected outright.
func RenderCV(info *db.PersonalInfo, projects []match.MatchedProject, templatePath string) (string, []string, error) {
	if len(projects) == 0 {
		return "", nil, &RenderError{Message: "no projects selected for the CV"}
	}

	tmpl, err := parseTemplate("cv", templatePath)
	if err != nil {
		return "", nil, err
	}

	data, warnings := buildCVData(info, projects)

	var result strings.Builder
	if err := tmpl.Execute(&result, data); err != nil {
		return "", nil, &TemplateError{
			Message: "failed to execute CV template",
			Cause:   err,
		}
	}
	return result.String(), warnings, nil
}

// RenderCoverLetter renders the cover letter template around the generated
// body text.
func RenderCoverLetter(info *db.PersonalInfo, jobTitle, company, body string, projects []match.MatchedProject, templatePath string) (string, []string, error) {
	tmpl, err := parseTemplate("cover_letter", templatePath)
	if err != nil {
		return "", nil, err
	}

	var warnings []string
	data := LetterData{
		FirstName: EscapeLaTeX(info.FirstName),
		LastName:  EscapeLaTeX(info.LastName),
		Email:     EscapeLaTeX(info.Email),
		Phone:     escapeOptional(info.Phone, "phone", &warnings),
		City:      escapeOptional(info.City, "city", &warnings),
		JobTitle:  EscapeLaTeX(jobTitle),
		Company:   EscapeLaTeX(company),
		Body:      body,
		Projects:  buildProjectEntries(projects),
	}
	if data.Company == "" {
		data.Company = "your company"
		warnings = append(warnings, "company name missing, using a generic salutation")
	}

	var result strings.Builder
	if err := tmpl.Execute(&result, data); err != nil {
		return "", nil, &TemplateError{
			Message: "failed to execute cover letter template",
			Cause:   err,
		}
	}
	return result.String(), warnings, nil
}

// parseTemplate reads and parses a LaTeX template file. Missing template
// variables fail execution instead of rendering as "<no value>".
func parseTemplate(name, templatePath string) (*template.Template, error) {
	content, err := os.ReadFile(templatePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &TemplateError{
				Message: fmt.Sprintf("template file not found: %s", templatePath),
				Cause:   err,
			}
		}
		return nil, &TemplateError{
			Message: fmt.Sprintf("failed to read template file: %s", templatePath),
			Cause:   err,
		}
	}

	tmpl, err := template.New(name).Option("missingkey=error").Funcs(template.FuncMap{
		"escape": EscapeLaTeX,
	}).Parse(string(content))
	if err != nil {
		return nil, &TemplateError{
			Message: "failed to parse template",
			Cause:   err,
		}
	}
	return tmpl, nil
}

func buildCVData(info *db.PersonalInfo, projects []match.MatchedProject) (*CVData, []string) {
	var warnings []string

	data := &CVData{
		FirstName:  EscapeLaTeX(info.FirstName),
		LastName:   EscapeLaTeX(info.LastName),
		Email:      EscapeLaTeX(info.Email),
		Phone:      escapeOptional(info.Phone, "phone", &warnings),
		Address:    escapeOptional(info.Address, "address", &warnings),
		City:       escapeOptional(info.City, "city", &warnings),
		PostalCode: escapeOptional(info.PostalCode, "postal code", &warnings),
		Title:      escapeOptional(info.Title, "title", &warnings),
		Summary:    escapeOptional(info.Summary, "summary", &warnings),
		LinkedIn:   derefEscaped(info.LinkedIn),
		GitHub:     derefEscaped(info.GitHub),
		Projects:   buildProjectEntries(projects),
	}

	for _, category := range sortedKeys(info.Skills) {
		escaped := make([]string, 0, len(info.Skills[category]))
		for _, skill := range info.Skills[category] {
			escaped = append(escaped, EscapeLaTeX(skill))
		}
		data.Skills = append(data.Skills, SkillCategory{
			Category: EscapeLaTeX(category),
			Skills:   strings.Join(escaped, ", "),
		})
	}

	for _, exp := range info.Experience {
		data.Experience = append(data.Experience, ExperienceItem{
			Title:       EscapeLaTeX(exp.Title),
			Company:     EscapeLaTeX(exp.Company),
			Location:    EscapeLaTeX(exp.Location),
			Dates:       formatDates(exp.StartDate, exp.EndDate),
			Description: EscapeLaTeX(exp.Description),
		})
	}

	for _, edu := range info.Education {
		data.Education = append(data.Education, EducationItem{
			Degree:      EscapeLaTeX(edu.Degree),
			Institution: EscapeLaTeX(edu.Institution),
			Location:    EscapeLaTeX(edu.Location),
			Dates:       formatDates(edu.StartDate, edu.EndDate),
			Description: EscapeLaTeX(edu.Description),
		})
	}

	return data, warnings
}

func buildProjectEntries(projects []match.MatchedProject) []ProjectEntry {
	entries := make([]ProjectEntry, 0, len(projects))
	for _, mp := range projects {
		p := mp.Project

		techs := p.Technologies
		if len(techs) > maxProjectTechnologies {
			techs = techs[:maxProjectTechnologies]
		}
		escaped := make([]string, 0, len(techs))
		for _, tech := range techs {
			escaped = append(escaped, EscapeLaTeX(tech))
		}

		entries = append(entries, ProjectEntry{
			Name:            EscapeLaTeX(p.Name),
			URL:             p.URL,
			Description:     EscapeLaTeX(firstLine(p.ThreeLiner)),
			Technologies:    strings.Join(escaped, ", "),
			RelevanceReason: EscapeLaTeX(mp.RelevanceReason),
		})
	}
	return entries
}

// firstLine takes the opening line of a three-liner and strips any leading
// bullet marker.
func firstLine(s string) string {
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "•")
	s = strings.TrimPrefix(s, "-")
	return strings.TrimSpace(s)
}

func formatDates(start, end string) string {
	switch {
	case start == "" && end == "":
		return ""
	case end == "":
		return EscapeLaTeX(start) + " -- Present"
	default:
		return EscapeLaTeX(start) + " -- " + EscapeLaTeX(end)
	}
}

// escapeOptional renders a nil or empty optional field as empty and records
// a warning for it.
func escapeOptional(field *string, name string, warnings *[]string) string {
	if field == nil || strings.TrimSpace(*field) == "" {
		*warnings = append(*warnings, fmt.Sprintf("personal info is missing %s", name))
		return ""
	}
	return EscapeLaTeX(*field)
}

func derefEscaped(field *string) string {
	if field == nil {
		return ""
	}
	return EscapeLaTeX(*field)
}

// sortedKeys gives a deterministic category order across renders.
func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
