package summarize

import "strings"

// ReadmeQuality classifies how much signal a README carries before any model
// call is spent on it.
type ReadmeQuality string

const (
	// QualityMissing means the repository has no README at all.
	QualityMissing ReadmeQuality = "missing"
	// QualityPoor means the README exists but carries too little prose to
	// summarize meaningfully.
	QualityPoor ReadmeQuality = "poor"
	// QualityOK means the README has enough content for a real summary.
	QualityOK ReadmeQuality = "ok"
)

// minReadmeLength is the character count below which a README is considered
// too thin to describe the project.
const minReadmeLength = 200

// ClassifyReadme applies cheap heuristics so that empty or near-empty READMEs
// are flagged without an LLM call.
func ClassifyReadme(content string) ReadmeQuality {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return QualityMissing
	}

	if len(trimmed) < minReadmeLength {
		return QualityPoor
	}

	if !hasProse(trimmed) {
		return QualityPoor
	}

	return QualityOK
}

// hasProse reports whether the content contains at least one line that is
// neither a heading, a badge, nor markup noise.
func hasProse(content string) bool {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "![") || strings.HasPrefix(line, "[![") {
			continue
		}
		if strings.HasPrefix(line, "```") || strings.HasPrefix(line, "---") {
			continue
		}
		return true
	}
	return false
}
