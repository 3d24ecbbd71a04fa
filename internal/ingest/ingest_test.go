package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adnane/cvforge/internal/embedding"
	"github.com/adnane/cvforge/internal/github"
	"github.com/adnane/cvforge/internal/progress"
	"github.com/adnane/cvforge/internal/project"
	"github.com/adnane/cvforge/internal/summarize"
)

type fakeFetcher struct {
	repos     []github.Repo
	readmes   map[string]string         // keyed by full name; absent means 404
	languages map[string]map[string]int // keyed by full name
	listErr   error
	listCalls int
	mu        sync.Mutex
}

func (f *fakeFetcher) ListRepos(_ context.Context, _ string, _ github.Policy) ([]github.Repo, error) {
	f.mu.Lock()
	f.listCalls++
	f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.repos, nil
}

func (f *fakeFetcher) GetReadme(_ context.Context, fullName string) (string, error) {
	readme, ok := f.readmes[fullName]
	if !ok {
		return "", &github.NotFoundError{Resource: fullName}
	}
	return readme, nil
}

func (f *fakeFetcher) GetFileTree(context.Context, string, string) ([]string, error) {
	return []string{"main.go"}, nil
}

func (f *fakeFetcher) ListLanguages(_ context.Context, fullName string) (map[string]int, error) {
	return f.languages[fullName], nil
}

type fakeSummarizer struct {
	failFor   map[string]bool
	languages map[string][]string // languages seen per repo name
}

func (f *fakeSummarizer) Summarize(_ context.Context, req summarize.Request) (*summarize.Summary, error) {
	if f.languages == nil {
		f.languages = make(map[string][]string)
	}
	f.languages[req.RepoName] = req.Languages
	if f.failFor[req.RepoName] {
		return &summarize.Summary{
			ThreeLiner:        req.Description,
			DetailedParagraph: req.Description,
			NeedsReview:       true,
		}, &summarize.SummaryError{RepoName: req.RepoName, Message: "model unavailable"}
	}
	if summarize.ClassifyReadme(req.Readme) == summarize.QualityMissing {
		return &summarize.Summary{
			ThreeLiner:        "placeholder",
			DetailedParagraph: "placeholder",
			NoReadme:          true,
			BadReadme:         true,
		}, nil
	}
	return &summarize.Summary{
		ThreeLiner:        "Summary of " + req.RepoName,
		DetailedParagraph: "Detailed paragraph about " + req.RepoName,
		Technologies:      []string{"Go"},
	}, nil
}

type countingEmbedder struct {
	mu    sync.Mutex
	calls []string
}

func (e *countingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	e.calls = append(e.calls, text)
	e.mu.Unlock()
	return []float32{1, 0, 0}, nil
}

func newTestService(t *testing.T, fetcher *fakeFetcher, summarizer Summarizer) (*Service, *project.Store, *embedding.Index, *countingEmbedder) {
	t.Helper()
	dir := t.TempDir()
	store, err := project.NewStore(dir)
	require.NoError(t, err)
	index, err := embedding.NewIndex(dir, "test-model")
	require.NoError(t, err)

	embedder := &countingEmbedder{}
	svc := NewService(fetcher, summarizer, store, embedder, index, progress.NewHub(), github.DefaultPolicy())
	return svc, store, index, embedder
}

func repoFixture(name string, updated time.Time) github.Repo {
	return github.Repo{
		Name:          name,
		FullName:      "user/" + name,
		HTMLURL:       "https://github.com/user/" + name,
		Description:   "Description of " + name,
		DefaultBranch: "main",
		UpdatedAt:     updated,
	}
}

func TestScrapeUser_IngestsAllRepos(t *testing.T) {
	now := time.Now()
	fetcher := &fakeFetcher{
		repos: []github.Repo{
			repoFixture("alpha", now),
			repoFixture("beta", now),
			repoFixture("gamma", now),
		},
		readmes: map[string]string{
			"user/alpha": "Long readme about alpha with plenty of prose to classify as fine content here.",
			"user/beta":  "Long readme about beta with plenty of prose to classify as fine content here.",
			// gamma has no README
		},
	}

	svc, store, index, _ := newTestService(t, fetcher, &fakeSummarizer{})

	report, err := svc.ScrapeUser(context.Background(), "user", "client-1")
	require.NoError(t, err)

	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 3, report.Ingested)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, 3, store.Count())
	assert.Equal(t, 3, index.Len())

	gamma, err := store.Get("gamma")
	require.NoError(t, err)
	assert.True(t, gamma.NoReadme, "README-less repo is flagged, not dropped")
}

func TestScrapeUser_PassesRepoLanguagesToSummarizer(t *testing.T) {
	now := time.Now()
	fetcher := &fakeFetcher{
		repos: []github.Repo{repoFixture("alpha", now)},
		readmes: map[string]string{
			"user/alpha": "Long readme about alpha with plenty of prose to classify as fine content here.",
		},
		languages: map[string]map[string]int{
			"user/alpha": {"Go": 12000, "Makefile": 300, "Shell": 300},
		},
	}
	summarizer := &fakeSummarizer{}

	svc, _, _, _ := newTestService(t, fetcher, summarizer)

	_, err := svc.ScrapeUser(context.Background(), "user", "")
	require.NoError(t, err)

	// Largest language first, ties in name order.
	assert.Equal(t, []string{"Go", "Makefile", "Shell"}, summarizer.languages["alpha"])
}

func TestScrapeUser_ContinuesPastSummaryFailure(t *testing.T) {
	now := time.Now()
	fetcher := &fakeFetcher{
		repos: []github.Repo{repoFixture("ok", now), repoFixture("broken", now), repoFixture("fine", now)},
		readmes: map[string]string{
			"user/ok":     "Readme with enough words to be real prose content for the classifier to accept.",
			"user/broken": "Readme with enough words to be real prose content for the classifier to accept.",
			"user/fine":   "Readme with enough words to be real prose content for the classifier to accept.",
		},
	}
	summarizer := &fakeSummarizer{failFor: map[string]bool{"broken": true}}

	svc, store, _, _ := newTestService(t, fetcher, summarizer)

	report, err := svc.ScrapeUser(context.Background(), "user", "")
	require.NoError(t, err, "one bad repo must not abort the batch")

	assert.Equal(t, 3, report.Ingested, "fallback summaries still get stored")
	assert.NotEmpty(t, report.Alerts)

	broken, err := store.Get("broken")
	require.NoError(t, err)
	assert.True(t, broken.NeedsReview)
}

func TestScrapeUser_SkipsUpToDateRepos(t *testing.T) {
	updated := time.Now().Add(-time.Hour)
	fetcher := &fakeFetcher{
		repos: []github.Repo{repoFixture("stable", updated)},
		readmes: map[string]string{
			"user/stable": "Readme with enough words to be real prose content for the classifier to accept.",
		},
	}

	svc, _, _, embedder := newTestService(t, fetcher, &fakeSummarizer{})

	_, err := svc.ScrapeUser(context.Background(), "user", "")
	require.NoError(t, err)
	firstEmbeds := len(embedder.calls)

	report, err := svc.ScrapeUser(context.Background(), "user", "")
	require.NoError(t, err)

	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 0, report.Ingested)
	assert.Equal(t, firstEmbeds, len(embedder.calls), "an unchanged repo is not re-embedded")
}

func TestScrapeUser_EmitsProgressEvents(t *testing.T) {
	now := time.Now()
	fetcher := &fakeFetcher{
		repos:   []github.Repo{repoFixture("only", now)},
		readmes: map[string]string{},
	}

	svc, _, _, _ := newTestService(t, fetcher, &fakeSummarizer{})

	hub := progress.NewHub()
	svc.hub = hub
	ch, unsubscribe := hub.Subscribe("client-1")
	defer unsubscribe()

	_, err := svc.ScrapeUser(context.Background(), "user", "client-1")
	require.NoError(t, err)

	var types []string
	for len(ch) > 0 {
		ev := <-ch
		types = append(types, ev.Type)
	}
	assert.Contains(t, types, progress.TypeStatus)
	assert.Contains(t, types, progress.TypeProgress)
	assert.Contains(t, types, progress.TypeComplete)
}

func TestScrapeUser_ListFailureIsTerminal(t *testing.T) {
	fetcher := &fakeFetcher{listErr: errors.New("rate limited")}
	svc, _, _, _ := newTestService(t, fetcher, &fakeSummarizer{})

	_, err := svc.ScrapeUser(context.Background(), "user", "")
	assert.Error(t, err)
}

func TestEditProject_ReembedsSynchronously(t *testing.T) {
	now := time.Now()
	fetcher := &fakeFetcher{
		repos: []github.Repo{repoFixture("editable", now)},
		readmes: map[string]string{
			"user/editable": "Readme with enough words to be real prose content for the classifier to accept.",
		},
	}

	svc, _, _, embedder := newTestService(t, fetcher, &fakeSummarizer{})
	_, err := svc.ScrapeUser(context.Background(), "user", "")
	require.NoError(t, err)

	before := len(embedder.calls)
	proj, err := svc.EditProject(context.Background(), "editable", "A fresh three liner", []string{"Go", "Redis"})
	require.NoError(t, err)

	assert.Equal(t, "A fresh three liner", proj.ThreeLiner)
	require.Greater(t, len(embedder.calls), before, "edit must re-embed before returning")
	assert.Contains(t, embedder.calls[len(embedder.calls)-1], "Redis",
		"the new vector reflects the edited content")
}

func TestSetHidden_DoesNotTouchIndex(t *testing.T) {
	now := time.Now()
	fetcher := &fakeFetcher{
		repos: []github.Repo{repoFixture("shy", now)},
		readmes: map[string]string{
			"user/shy": "Readme with enough words to be real prose content for the classifier to accept.",
		},
	}

	svc, store, index, embedder := newTestService(t, fetcher, &fakeSummarizer{})
	_, err := svc.ScrapeUser(context.Background(), "user", "")
	require.NoError(t, err)
	before := len(embedder.calls)

	require.NoError(t, svc.SetHidden("shy", true))
	assert.True(t, store.IsHidden("shy"))
	assert.True(t, index.Has("shy"), "hiding leaves the vector in place")
	assert.Equal(t, before, len(embedder.calls))

	require.NoError(t, svc.SetHidden("shy", false))
	assert.False(t, store.IsHidden("shy"))
}

func TestRefreshEmbeddings_RebuildsIndex(t *testing.T) {
	now := time.Now()
	fetcher := &fakeFetcher{
		repos: []github.Repo{repoFixture("one", now), repoFixture("two", now)},
		readmes: map[string]string{
			"user/one": "Readme with enough words to be real prose content for the classifier to accept.",
			"user/two": "Readme with enough words to be real prose content for the classifier to accept.",
		},
	}

	svc, _, index, _ := newTestService(t, fetcher, &fakeSummarizer{})
	_, err := svc.ScrapeUser(context.Background(), "user", "")
	require.NoError(t, err)

	count, err := svc.RefreshEmbeddings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 2, index.Len())
}

func TestUpdateProject_SingleRepo(t *testing.T) {
	now := time.Now()
	fetcher := &fakeFetcher{
		repos: []github.Repo{repoFixture("solo", now)},
		readmes: map[string]string{
			"user/solo": "Readme with enough words to be real prose content for the classifier to accept.",
		},
	}

	svc, store, _, _ := newTestService(t, fetcher, &fakeSummarizer{})
	_, err := svc.ScrapeUser(context.Background(), "user", "")
	require.NoError(t, err)

	fetcher.readmes["user/solo"] = "A rewritten readme with plenty of fresh prose describing entirely new functionality."
	require.NoError(t, svc.UpdateProject(context.Background(), "solo", ""))

	proj, err := store.Get("solo")
	require.NoError(t, err)
	assert.Contains(t, proj.ReadmeContent, "rewritten")
}

func TestUpdateProject_UnknownName(t *testing.T) {
	fetcher := &fakeFetcher{}
	svc, _, _, _ := newTestService(t, fetcher, &fakeSummarizer{})

	err := svc.UpdateProject(context.Background(), "ghost", "")
	var nfe *project.NotFoundError
	assert.ErrorAs(t, err, &nfe)
}

func TestFullNameFromURL(t *testing.T) {
	got, err := fullNameFromURL("https://github.com/ada/engine")
	require.NoError(t, err)
	assert.Equal(t, "ada/engine", got)

	_, err = fullNameFromURL("garbage")
	assert.Error(t, err)
}
