// Package embedding maintains the project vector index used for semantic
// job-to-project matching.
package embedding

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Embedder encodes text into a fixed-length vector. The production
// implementation is the Gemini client; tests substitute a deterministic fake.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Hit is one query result: a project name and its cosine similarity to the
// query vector, clamped to [0, 1].
type Hit struct {
	Name  string
	Score float64
}

// Index stores L2-normalized project vectors in memory and persists them as
// JSON next to the project store. Queries are inner products, which on
// normalized vectors equal cosine similarity.
type Index struct {
	path string

	mu      sync.RWMutex
	model   string
	vectors map[string][]float32
	order   []string
}

// indexFile is the on-disk shape of the index.
type indexFile struct {
	Model   string               `json:"model"`
	Order   []string             `json:"order"`
	Vectors map[string][]float32 `json:"vectors"`
}

// NewIndex opens or creates the index file under dataDir. A missing file
// yields an empty index; a file written with a different embedding model is
// discarded, since its vectors are not comparable.
func NewIndex(dataDir, model string) (*Index, error) {
	idx := &Index{
		path:    filepath.Join(dataDir, "embeddings.json"),
		model:   model,
		vectors: make(map[string][]float32),
	}

	data, err := os.ReadFile(idx.path)
	if os.IsNotExist(err) {
		return idx, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading embedding index: %w", err)
	}

	var file indexFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing embedding index %s: %w", idx.path, err)
	}

	if file.Model != model {
		// Vectors from another model live in a different space. Start over.
		return idx, nil
	}

	for _, name := range file.Order {
		vec, ok := file.Vectors[name]
		if !ok {
			continue
		}
		idx.vectors[name] = normalize(vec)
		idx.order = append(idx.order, name)
	}
	return idx, nil
}

// Upsert inserts or replaces a project's vector. The vector is normalized on
// the way in.
func (idx *Index) Upsert(name string, vec []float32) error {
	if len(vec) == 0 {
		return fmt.Errorf("empty vector for %s", name)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, exists := idx.vectors[name]; !exists {
		idx.order = append(idx.order, name)
	}
	idx.vectors[name] = normalize(vec)

	return idx.saveLocked()
}

// Delete removes a project's vector. Deleting an absent name is a no-op.
func (idx *Index) Delete(name string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, exists := idx.vectors[name]; !exists {
		return nil
	}
	delete(idx.vectors, name)
	for i, n := range idx.order {
		if n == name {
			idx.order = append(idx.order[:i], idx.order[i+1:]...)
			break
		}
	}

	return idx.saveLocked()
}

// Has reports whether the index holds a vector for name.
func (idx *Index) Has(name string) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	_, ok := idx.vectors[name]
	return ok
}

// Len returns the number of indexed vectors.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.vectors)
}

// Query returns up to k hits most similar to vec, best first. The hidden
// filter is evaluated at query time, so hiding a project takes effect
// immediately without touching its stored vector. An empty index returns an
// empty slice and no error.
func (idx *Index) Query(vec []float32, k int, hidden func(name string) bool) []Hit {
	if k <= 0 {
		return []Hit{}
	}

	q := normalize(vec)

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	hits := make([]Hit, 0, len(idx.vectors))
	for _, name := range idx.order {
		if hidden != nil && hidden(name) {
			continue
		}
		score := dot(q, idx.vectors[name])
		hits = append(hits, Hit{Name: name, Score: clamp(score)})
	}

	// Stable sort keeps insertion order among equal scores.
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

// Clear drops every vector. Used before a full rebuild.
func (idx *Index) Clear() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.vectors = make(map[string][]float32)
	idx.order = nil
	return idx.saveLocked()
}

// saveLocked writes the index atomically. Callers hold the write lock.
func (idx *Index) saveLocked() error {
	file := indexFile{
		Model:   idx.model,
		Order:   idx.order,
		Vectors: idx.vectors,
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding embedding index: %w", err)
	}

	tmp := idx.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing embedding index: %w", err)
	}
	if err := os.Rename(tmp, idx.path); err != nil {
		return fmt.Errorf("replacing embedding index: %w", err)
	}
	return nil
}

func normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return append([]float32(nil), vec...)
	}

	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// clamp bounds a cosine score to [0, 1]. Floating point drift can push a
// perfect match slightly above 1, and opposed vectors go negative.
func clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
