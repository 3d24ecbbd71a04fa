package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient points a client at a local test server with no retry delay.
func newTestClient(server *httptest.Server) *Client {
	c := NewClient("", RetryPolicy{MaxAttempts: 2, Backoff: time.Millisecond})
	c.baseURL = server.URL
	return c
}

func TestListRepos_FiltersForksAndArchived(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		repos := []Repo{
			{Name: "keeper", FullName: "u/keeper"},
			{Name: "forked", FullName: "u/forked", Fork: true},
			{Name: "dusty", FullName: "u/dusty", Archived: true},
		}
		_ = json.NewEncoder(w).Encode(repos)
	}))
	defer server.Close()

	c := newTestClient(server)
	repos, err := c.ListRepos(context.Background(), "u", DefaultPolicy())
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.Equal(t, "keeper", repos[0].Name)
}

func TestListRepos_FollowsPagination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		var repos []Repo
		if page == "1" {
			for i := 0; i < perPage; i++ {
				repos = append(repos, Repo{Name: fmt.Sprintf("repo-%d", i)})
			}
		} else {
			repos = []Repo{{Name: "last"}}
		}
		_ = json.NewEncoder(w).Encode(repos)
	}))
	defer server.Close()

	c := newTestClient(server)
	repos, err := c.ListRepos(context.Background(), "u", Policy{})
	require.NoError(t, err)
	assert.Len(t, repos, perPage+1)
	assert.Equal(t, "last", repos[perPage].Name)
}

func TestListRepos_NotFoundIsNotRetried(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := newTestClient(server)
	_, err := c.ListRepos(context.Background(), "nobody", Policy{})

	var nfe *NotFoundError
	require.ErrorAs(t, err, &nfe)
	assert.Equal(t, 1, calls, "404 must not be retried")
}

func TestListRepos_ServerErrorIsRetried(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode([]Repo{{Name: "ok"}})
	}))
	defer server.Close()

	c := newTestClient(server)
	repos, err := c.ListRepos(context.Background(), "u", Policy{})
	require.NoError(t, err)
	assert.Len(t, repos, 1)
	assert.Equal(t, 2, calls)
}

func TestGetReadme_DecodesBase64(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/u/repo/readme", r.URL.Path)
		_ = json.NewEncoder(w).Encode(readmeResponse{
			Content:  base64.StdEncoding.EncodeToString([]byte("# Hello\nWorld")),
			Encoding: "base64",
		})
	}))
	defer server.Close()

	c := newTestClient(server)
	content, err := c.GetReadme(context.Background(), "u/repo")
	require.NoError(t, err)
	assert.Equal(t, "# Hello\nWorld", content)
}

func TestGetReadme_MissingIsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := newTestClient(server)
	_, err := c.GetReadme(context.Background(), "u/no-readme")

	var nfe *NotFoundError
	assert.ErrorAs(t, err, &nfe)
}

func TestRateLimit_SurfacesResetTime(t *testing.T) {
	reset := time.Now().Add(time.Hour).Unix()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", reset))
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	c := NewClient("", RetryPolicy{MaxAttempts: 1})
	c.baseURL = server.URL
	_, err := c.ListRepos(context.Background(), "u", Policy{})

	var rle *RateLimitError
	require.ErrorAs(t, err, &rle)
	assert.Equal(t, reset, rle.Reset.Unix())
}

func TestGetFileTree_ReturnsBlobPathsOnly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"tree":[
			{"path":"main.go","type":"blob"},
			{"path":"internal","type":"tree"},
			{"path":"internal/app.go","type":"blob"}
		]}`))
	}))
	defer server.Close()

	c := newTestClient(server)
	paths, err := c.GetFileTree(context.Background(), "u/repo", "main")
	require.NoError(t, err)
	assert.Equal(t, []string{"main.go", "internal/app.go"}, paths)
}

func TestRetryPolicy_Retryable(t *testing.T) {
	p := DefaultRetryPolicy()

	assert.False(t, p.Retryable(&NotFoundError{Resource: "/x"}))
	assert.False(t, p.Retryable(&RequestError{Status: 400}))
	assert.True(t, p.Retryable(&RequestError{Status: 429}))
	assert.True(t, p.Retryable(&RequestError{Status: 500}))
	assert.True(t, p.Retryable(&RateLimitError{}))
}

func TestRetryPolicy_DoRespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := RetryPolicy{MaxAttempts: 3, Backoff: time.Hour}
	err := p.Do(ctx, func() error {
		return &RequestError{Status: 500, Message: "boom"}
	})
	assert.ErrorIs(t, err, context.Canceled)
}
