// Package match ranks stored projects against a job description by vector
// similarity.
package match

import (
	"context"
	"fmt"
	"sort"

	"github.com/adnane/cvforge/internal/embedding"
	"github.com/adnane/cvforge/internal/project"
)

// DefaultK is how many projects a match returns when the caller does not ask
// for a specific count.
const DefaultK = 4

// MatchedProject pairs a project with its similarity to the job and a short
// explanation of the overlap.
type MatchedProject struct {
	Project         *project.Project `json:"project"`
	SimilarityScore float64          `json:"similarity_score"`
	RelevanceReason string           `json:"relevance_reason"`
}

// ProjectSource is the slice of the project store the matcher needs.
type ProjectSource interface {
	Get(name string) (*project.Project, error)
	IsHidden(name string) bool
	ListingRank() map[string]int
}

// Matcher embeds job text and queries the vector index for similar projects.
type Matcher struct {
	embedder embedding.Embedder
	index    *embedding.Index
	projects ProjectSource
}

// NewMatcher creates a Matcher over the given embedder, index, and store.
func NewMatcher(embedder embedding.Embedder, index *embedding.Index, projects ProjectSource) *Matcher {
	return &Matcher{embedder: embedder, index: index, projects: projects}
}

// Match returns up to k projects ranked by similarity to jobText, best first.
// Ties keep the store's listing order. An empty index returns an empty slice
// without spending an embedding call.
func (m *Matcher) Match(ctx context.Context, jobText string, k int) ([]MatchedProject, error) {
	if k <= 0 {
		k = DefaultK
	}

	if m.index.Len() == 0 {
		return []MatchedProject{}, nil
	}

	vec, err := m.embedder.Embed(ctx, jobText)
	if err != nil {
		return nil, fmt.Errorf("embedding job description: %w", err)
	}

	hits := m.index.Query(vec, k, m.projects.IsHidden)

	matched := make([]MatchedProject, 0, len(hits))
	for _, hit := range hits {
		proj, err := m.projects.Get(hit.Name)
		if err != nil {
			// The vector outlived its project. Skip it rather than fail
			// the whole match.
			continue
		}
		matched = append(matched, MatchedProject{
			Project:         proj,
			SimilarityScore: hit.Score,
			RelevanceReason: RelevanceReason(jobText, proj),
		})
	}

	rank := m.projects.ListingRank()
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].SimilarityScore != matched[j].SimilarityScore {
			return matched[i].SimilarityScore > matched[j].SimilarityScore
		}
		return rank[matched[i].Project.Name] < rank[matched[j].Project.Name]
	})

	return matched, nil
}
