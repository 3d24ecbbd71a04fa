package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Store persists projects as a JSON file under the data directory.
// Reads are frequent (every match query lists projects); writes happen in
// short bursts during a scrape, so a single RWMutex is enough.
type Store struct {
	path string

	mu       sync.RWMutex
	projects map[string]*Project
	order    []string // insertion order, used for stable tie-breaking downstream
}

// NotFoundError indicates a project name is not in the store
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("project not found: %s", e.Name)
}

// NewStore creates a store backed by <dataDir>/projects.json, loading any
// existing file.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &Store{
		path:     filepath.Join(dataDir, "projects.json"),
		projects: make(map[string]*Project),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read project store: %w", err)
	}

	var projects []*Project
	if err := json.Unmarshal(data, &projects); err != nil {
		return fmt.Errorf("failed to parse project store: %w", err)
	}

	for _, p := range projects {
		s.projects[p.Name] = p
		s.order = append(s.order, p.Name)
	}
	return nil
}

// save writes the current project set to disk. Caller must hold s.mu.
func (s *Store) save() error {
	projects := make([]*Project, 0, len(s.order))
	for _, name := range s.order {
		projects = append(projects, s.projects[name])
	}

	data, err := json.MarshalIndent(projects, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal projects: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write project store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace project store: %w", err)
	}
	return nil
}

// Upsert inserts or replaces a project by name. Existing projects keep their
// visibility flag across re-ingest so a hidden project stays hidden.
func (s *Store) Upsert(p *Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.projects[p.Name]; ok {
		p.HiddenFromSearch = existing.HiddenFromSearch
	} else {
		s.order = append(s.order, p.Name)
	}
	s.projects[p.Name] = p

	return s.save()
}

// Get returns a copy of the named project.
func (s *Store) Get(name string) (*Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[name]
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	cp := *p
	return &cp, nil
}

// List returns all projects in insertion order.
func (s *Store) List() []*Project {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Project, 0, len(s.order))
	for _, name := range s.order {
		cp := *s.projects[name]
		out = append(out, &cp)
	}
	return out
}

// ListingRank returns each project name mapped to its insertion position.
// The matcher uses this for stable tie-breaking on equal scores.
func (s *Store) ListingRank() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rank := make(map[string]int, len(s.order))
	for i, name := range s.order {
		rank[name] = i
	}
	return rank
}

// UpdateContent updates a project's generated summary and technology tags.
// Returns the updated project so the caller can re-embed it.
func (s *Store) UpdateContent(name, threeLiner string, technologies []string) (*Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[name]
	if !ok {
		return nil, &NotFoundError{Name: name}
	}

	if threeLiner != "" {
		p.ThreeLiner = threeLiner
	}
	if technologies != nil {
		techs := make([]string, len(technologies))
		copy(techs, technologies)
		sort.Strings(techs)
		p.Technologies = techs
	}

	if err := s.save(); err != nil {
		return nil, err
	}
	cp := *p
	return &cp, nil
}

// SetHidden flips the visibility flag. The embedding vector is left alone so
// unhiding restores the project to match results instantly.
func (s *Store) SetHidden(name string, hidden bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[name]
	if !ok {
		return &NotFoundError{Name: name}
	}
	p.HiddenFromSearch = hidden
	return s.save()
}

// IsHidden reports the visibility flag for a project. Unknown names are
// treated as hidden so stale index entries never surface in matches.
func (s *Store) IsHidden(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[name]
	if !ok {
		return true
	}
	return p.HiddenFromSearch
}

// Count returns the number of stored projects.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.projects)
}
