// Package ingest orchestrates the scrape pipeline: repository listing,
// README summarization, project storage, and embedding upkeep.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/adnane/cvforge/internal/embedding"
	"github.com/adnane/cvforge/internal/github"
	"github.com/adnane/cvforge/internal/progress"
	"github.com/adnane/cvforge/internal/project"
	"github.com/adnane/cvforge/internal/summarize"
)

// RepoFetcher is the slice of the GitHub client the pipeline needs.
type RepoFetcher interface {
	ListRepos(ctx context.Context, username string, policy github.Policy) ([]github.Repo, error)
	GetReadme(ctx context.Context, fullName string) (string, error)
	GetFileTree(ctx context.Context, fullName, branch string) ([]string, error)
	ListLanguages(ctx context.Context, fullName string) (map[string]int, error)
}

// Summarizer produces a structured summary for one repository.
type Summarizer interface {
	Summarize(ctx context.Context, req summarize.Request) (*summarize.Summary, error)
}

// Report summarizes one scrape run.
type Report struct {
	Username string           `json:"username"`
	Total    int              `json:"total"`
	Ingested int              `json:"ingested"`
	Skipped  int              `json:"skipped"`
	Failed   int              `json:"failed"`
	Alerts   []progress.Alert `json:"alerts,omitempty"`
}

// Service runs the ingest pipeline and keeps the project store and embedding
// index consistent with each other.
type Service struct {
	fetcher    RepoFetcher
	summarizer Summarizer
	store      *project.Store
	embedder   embedding.Embedder
	index      *embedding.Index
	hub        *progress.Hub
	policy     github.Policy

	group singleflight.Group
}

// NewService wires the pipeline together.
func NewService(fetcher RepoFetcher, summarizer Summarizer, store *project.Store, embedder embedding.Embedder, index *embedding.Index, hub *progress.Hub, policy github.Policy) *Service {
	return &Service{
		fetcher:    fetcher,
		summarizer: summarizer,
		store:      store,
		embedder:   embedder,
		index:      index,
		hub:        hub,
		policy:     policy,
	}
}

// ScrapeUser ingests every repository of username, emitting progress events
// to clientID. Concurrent scrapes of the same username share a single run.
// Per-repository failures become alerts and the batch continues.
func (s *Service) ScrapeUser(ctx context.Context, username, clientID string) (*Report, error) {
	result, err, _ := s.group.Do(username, func() (any, error) {
		return s.scrape(ctx, username, clientID)
	})
	if err != nil {
		return nil, err
	}
	return result.(*Report), nil
}

func (s *Service) scrape(ctx context.Context, username, clientID string) (*Report, error) {
	s.publish(clientID, progress.NewEvent(progress.TypeStatus,
		fmt.Sprintf("Fetching repositories for %s", username)))

	repos, err := s.fetcher.ListRepos(ctx, username, s.policy)
	if err != nil {
		ev := progress.NewEvent(progress.TypeError, fmt.Sprintf("Failed to list repositories: %v", err))
		s.publish(clientID, ev)
		return nil, fmt.Errorf("listing repositories for %s: %w", username, err)
	}

	report := &Report{Username: username, Total: len(repos)}

	for i, repo := range repos {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		ev := progress.NewEvent(progress.TypeProgress, fmt.Sprintf("Processing %s", repo.Name))
		ev.Step = "process"
		ev.Current = i + 1
		ev.Total = len(repos)
		ev.RepoName = repo.Name
		s.publish(clientID, ev)

		switch s.ingestRepo(ctx, repo, clientID, report) {
		case outcomeIngested:
			report.Ingested++
		case outcomeSkipped:
			report.Skipped++
		case outcomeFailed:
			report.Failed++
		}
	}

	done := progress.NewEvent(progress.TypeComplete,
		fmt.Sprintf("Scrape complete: %d ingested, %d skipped, %d failed",
			report.Ingested, report.Skipped, report.Failed))
	s.publish(clientID, done)

	return report, nil
}

type outcome int

const (
	outcomeIngested outcome = iota
	outcomeSkipped
	outcomeFailed
)

func (s *Service) ingestRepo(ctx context.Context, repo github.Repo, clientID string, report *Report) outcome {
	// Unchanged repositories keep their stored summary and vector.
	if existing, err := s.store.Get(repo.Name); err == nil {
		if !repo.UpdatedAt.After(existing.UpdatedAt) && s.index.Has(repo.Name) {
			s.alert(clientID, report, "info",
				fmt.Sprintf("%s is up to date, skipping", repo.Name))
			return outcomeSkipped
		}
	}

	readme, err := s.fetcher.GetReadme(ctx, repo.FullName)
	if err != nil {
		var notFound *github.NotFoundError
		if !errors.As(err, &notFound) {
			s.alert(clientID, report, "warning",
				fmt.Sprintf("Failed to fetch README for %s: %v", repo.Name, err))
			return outcomeFailed
		}
		readme = ""
	}

	// The file tree only enriches the prompt; losing it is not a failure.
	tree, err := s.fetcher.GetFileTree(ctx, repo.FullName, repo.DefaultBranch)
	if err != nil {
		log.Printf("[ingest] file tree unavailable for %s: %v", repo.FullName, err)
		tree = nil
	}

	summary, err := s.summarizer.Summarize(ctx, summarize.Request{
		RepoName:    repo.Name,
		Description: repo.Description,
		Readme:      readme,
		FileTree:    tree,
		Languages:   s.repoLanguages(ctx, repo.FullName),
	})
	if err != nil {
		s.alert(clientID, report, "warning",
			fmt.Sprintf("Summary degraded for %s: %v", repo.Name, err))
	}
	if summary == nil {
		return outcomeFailed
	}

	proj := &project.Project{
		Name:              repo.Name,
		URL:               repo.HTMLURL,
		Description:       repo.Description,
		ReadmeContent:     readme,
		ThreeLiner:        summary.ThreeLiner,
		DetailedParagraph: summary.DetailedParagraph,
		Technologies:      summary.Technologies,
		Tree:              tree,
		BadReadme:         summary.BadReadme,
		NoReadme:          summary.NoReadme,
		NeedsReview:       summary.NeedsReview,
		Stars:             repo.Stars,
		Forks:             repo.Forks,
		Language:          repo.Language,
		CreatedAt:         repo.CreatedAt,
		UpdatedAt:         repo.UpdatedAt,
	}
	if err := s.store.Upsert(proj); err != nil {
		s.alert(clientID, report, "warning",
			fmt.Sprintf("Failed to store %s: %v", repo.Name, err))
		return outcomeFailed
	}

	if err := s.embed(ctx, proj); err != nil {
		s.alert(clientID, report, "warning",
			fmt.Sprintf("Failed to embed %s: %v", repo.Name, err))
		return outcomeFailed
	}

	return outcomeIngested
}

// UpdateProject re-ingests a single repository by name.
func (s *Service) UpdateProject(ctx context.Context, name, clientID string) error {
	proj, err := s.store.Get(name)
	if err != nil {
		return err
	}

	fullName, err := fullNameFromURL(proj.URL)
	if err != nil {
		return err
	}

	readme, err := s.fetcher.GetReadme(ctx, fullName)
	if err != nil {
		var notFound *github.NotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("fetching README for %s: %w", name, err)
		}
		readme = ""
	}

	summary, sumErr := s.summarizer.Summarize(ctx, summarize.Request{
		RepoName:    name,
		Description: proj.Description,
		Readme:      readme,
		FileTree:    proj.Tree,
		Languages:   s.repoLanguages(ctx, fullName),
	})
	if summary == nil {
		return sumErr
	}

	proj.ReadmeContent = readme
	proj.ThreeLiner = summary.ThreeLiner
	proj.DetailedParagraph = summary.DetailedParagraph
	proj.Technologies = summary.Technologies
	proj.BadReadme = summary.BadReadme
	proj.NoReadme = summary.NoReadme
	proj.NeedsReview = summary.NeedsReview

	if err := s.store.Upsert(proj); err != nil {
		return err
	}
	if err := s.embed(ctx, proj); err != nil {
		return err
	}

	s.publish(clientID, progress.NewEvent(progress.TypeStatus,
		fmt.Sprintf("Re-ingested %s", name)))
	return sumErr
}

// EditProject applies a manual content edit and re-embeds synchronously, so
// no query ever sees the old vector alongside the new text.
func (s *Service) EditProject(ctx context.Context, name, threeLiner string, technologies []string) (*project.Project, error) {
	proj, err := s.store.UpdateContent(name, threeLiner, technologies)
	if err != nil {
		return nil, err
	}
	if err := s.embed(ctx, proj); err != nil {
		return nil, err
	}
	return proj, nil
}

// SetHidden toggles a project's search visibility. The vector stays in the
// index; visibility is applied at query time.
func (s *Service) SetHidden(name string, hidden bool) error {
	return s.store.SetHidden(name, hidden)
}

// RefreshEmbeddings rebuilds the whole index from current summaries.
func (s *Service) RefreshEmbeddings(ctx context.Context) (int, error) {
	if err := s.index.Clear(); err != nil {
		return 0, err
	}

	count := 0
	for _, proj := range s.store.List() {
		if err := s.embed(ctx, proj); err != nil {
			return count, fmt.Errorf("re-embedding %s: %w", proj.Name, err)
		}
		count++
	}
	return count, nil
}

func (s *Service) embed(ctx context.Context, proj *project.Project) error {
	text := proj.EmbeddingText()
	if strings.TrimSpace(text) == "" {
		// Nothing to embed. Drop any stale vector instead.
		return s.index.Delete(proj.Name)
	}

	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return err
	}
	return s.index.Upsert(proj.Name, vec)
}

// repoLanguages fetches a repository's language names ordered by byte count,
// largest first. Languages only enrich the technology list; losing them is
// not a failure.
func (s *Service) repoLanguages(ctx context.Context, fullName string) []string {
	counts, err := s.fetcher.ListLanguages(ctx, fullName)
	if err != nil {
		log.Printf("[ingest] languages unavailable for %s: %v", fullName, err)
		return nil
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}

func (s *Service) publish(clientID string, ev progress.Event) {
	if s.hub != nil && clientID != "" {
		s.hub.Publish(clientID, ev)
	}
}

func (s *Service) alert(clientID string, report *Report, alertType, message string) {
	a := progress.Alert{Type: alertType, Message: message}
	report.Alerts = append(report.Alerts, a)

	ev := progress.NewEvent(progress.TypeAlert, message)
	ev.Alert = &a
	s.publish(clientID, ev)
}

// fullNameFromURL recovers "owner/repo" from a repository's HTML URL.
func fullNameFromURL(htmlURL string) (string, error) {
	trimmed := strings.TrimSuffix(htmlURL, "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) < 2 {
		return "", fmt.Errorf("cannot derive owner/repo from URL %q", htmlURL)
	}
	return parts[len(parts)-2] + "/" + parts[len(parts)-1], nil
}
