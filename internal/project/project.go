// Package project provides the portfolio project model and its file-backed store.
package project

import "time"

// Project represents a scraped source repository with its generated summaries.
type Project struct {
	Name              string    `json:"name"`
	URL               string    `json:"url"`
	Description       string    `json:"description"`        // Original repository description
	ReadmeContent     string    `json:"readme_content"`     // Full README content
	ThreeLiner        string    `json:"three_liner"`        // AI-generated 3-line summary
	DetailedParagraph string    `json:"detailed_paragraph"` // AI-generated detailed paragraph
	Technologies      []string  `json:"technologies"`
	Tree              []string  `json:"tree"` // Repository file paths
	BadReadme         bool      `json:"bad_readme"`
	NoReadme          bool      `json:"no_readme"`
	NeedsReview       bool      `json:"needs_review"` // Set when AI summarization failed and a fallback was used
	HiddenFromSearch  bool      `json:"hidden_from_search"`
	Stars             int       `json:"stars"`
	Forks             int       `json:"forks"`
	Language          string    `json:"language"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// EmbeddingText returns the text encoded into this project's embedding vector.
// Combining the detailed paragraph with technologies improves job matching.
func (p *Project) EmbeddingText() string {
	text := p.DetailedParagraph
	if len(p.Technologies) > 0 {
		text += " Technologies: "
		for i, tech := range p.Technologies {
			if i > 0 {
				text += ", "
			}
			text += tech
		}
	}
	return text
}
