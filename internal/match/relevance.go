package match

import (
	"fmt"
	"strings"

	"github.com/adnane/cvforge/internal/project"
)

// RelevanceReason explains in one sentence why a project matched a job. It is
// a cheap lexical heuristic: shared technologies first, then broad domain
// keywords, then a generic line naming the project's main language.
func RelevanceReason(jobText string, p *project.Project) string {
	jobLower := strings.ToLower(jobText)

	var common []string
	for _, tech := range p.Technologies {
		if strings.Contains(jobLower, strings.ToLower(tech)) {
			common = append(common, tech)
		}
	}
	if len(common) > 0 {
		if len(common) > 3 {
			common = common[:3]
		}
		return "Demonstrates experience with " + strings.Join(common, ", ")
	}

	switch {
	case strings.Contains(jobLower, "web") && hasAnyTech(p, "javascript", "typescript", "react", "html", "css"):
		return "Shows web development expertise"
	case strings.Contains(jobLower, "backend") && hasAnyTech(p, "python", "java", "go", "node"):
		return "Demonstrates backend development skills"
	case strings.Contains(jobLower, "data") && hasAnyTech(p, "python", "pandas", "sql"):
		return "Shows data processing capabilities"
	}

	if p.Language != "" {
		return fmt.Sprintf("Relevant %s project showcasing technical skills", p.Language)
	}
	return "Relevant project showcasing technical skills"
}

func hasAnyTech(p *project.Project, names ...string) bool {
	for _, tech := range p.Technologies {
		lower := strings.ToLower(tech)
		for _, name := range names {
			if lower == name {
				return true
			}
		}
	}
	return false
}
