// Package github provides a minimal GitHub REST API client for listing a
// user's repositories and reading their READMEs.
package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	// DefaultBaseURL is the GitHub REST API root.
	DefaultBaseURL = "https://api.github.com"

	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent identifies this client to the API.
	DefaultUserAgent = "cvforge/1.0"

	// perPage is the page size for paginated listing endpoints.
	perPage = 100
)

// Repo is the subset of repository metadata the ingest pipeline consumes.
type Repo struct {
	Name          string    `json:"name"`
	FullName      string    `json:"full_name"`
	HTMLURL       string    `json:"html_url"`
	Description   string    `json:"description"`
	Fork          bool      `json:"fork"`
	Archived      bool      `json:"archived"`
	Stars         int       `json:"stargazers_count"`
	Forks         int       `json:"forks_count"`
	Language      string    `json:"language"`
	DefaultBranch string    `json:"default_branch"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Policy controls which repositories ingest skips.
type Policy struct {
	SkipForks    bool
	SkipArchived bool
}

// DefaultPolicy skips forks and archived repositories.
func DefaultPolicy() Policy {
	return Policy{SkipForks: true, SkipArchived: true}
}

// Client is a GitHub REST API client. A token is optional but raises the
// rate limit substantially.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	retry      RetryPolicy
}

// NewClient creates a GitHub client with the given token (may be empty) and
// retry policy.
func NewClient(token string, retry RetryPolicy) *Client {
	return &Client{
		baseURL:    DefaultBaseURL,
		token:      token,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		retry:      retry,
	}
}

// HasToken reports whether the client authenticates its requests.
func (c *Client) HasToken() bool {
	return c.token != ""
}

// ListRepos fetches all repositories owned by username, following pagination,
// and filters them per policy.
func (c *Client) ListRepos(ctx context.Context, username string, policy Policy) ([]Repo, error) {
	var all []Repo

	for page := 1; ; page++ {
		endpoint := fmt.Sprintf("/users/%s/repos?type=owner&per_page=%d&page=%d",
			url.PathEscape(username), perPage, page)

		var batch []Repo
		err := c.retry.Do(ctx, func() error {
			return c.getJSON(ctx, endpoint, &batch)
		})
		if err != nil {
			return nil, err
		}

		for _, repo := range batch {
			if policy.SkipForks && repo.Fork {
				continue
			}
			if policy.SkipArchived && repo.Archived {
				continue
			}
			all = append(all, repo)
		}

		if len(batch) < perPage {
			break
		}
	}

	return all, nil
}

// readmeResponse is the wire shape of GET /repos/{owner}/{repo}/readme.
type readmeResponse struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// GetReadme fetches and decodes a repository's README. A repository without
// a README yields a NotFoundError, which callers treat as a quality signal
// rather than a failure.
func (c *Client) GetReadme(ctx context.Context, fullName string) (string, error) {
	endpoint := fmt.Sprintf("/repos/%s/readme", fullName)

	var resp readmeResponse
	err := c.retry.Do(ctx, func() error {
		return c.getJSON(ctx, endpoint, &resp)
	})
	if err != nil {
		return "", err
	}

	if resp.Encoding != "base64" {
		return resp.Content, nil
	}
	decoded, err := base64.StdEncoding.DecodeString(resp.Content)
	if err != nil {
		return "", &RequestError{
			URL:     endpoint,
			Message: "failed to decode README content",
			Cause:   err,
		}
	}
	return string(decoded), nil
}

// ListLanguages returns the language byte counts for a repository.
func (c *Client) ListLanguages(ctx context.Context, fullName string) (map[string]int, error) {
	endpoint := fmt.Sprintf("/repos/%s/languages", fullName)

	var langs map[string]int
	err := c.retry.Do(ctx, func() error {
		return c.getJSON(ctx, endpoint, &langs)
	})
	if err != nil {
		return nil, err
	}
	return langs, nil
}

// treeResponse is the wire shape of the git trees endpoint.
type treeResponse struct {
	Tree []struct {
		Path string `json:"path"`
		Type string `json:"type"`
	} `json:"tree"`
	Truncated bool `json:"truncated"`
}

// GetFileTree returns the blob paths of a repository's default branch.
// Failures here are non-fatal for ingest; the file tree only enriches the
// summary prompt.
func (c *Client) GetFileTree(ctx context.Context, fullName, branch string) ([]string, error) {
	endpoint := fmt.Sprintf("/repos/%s/git/trees/%s?recursive=1", fullName, url.PathEscape(branch))

	var resp treeResponse
	err := c.retry.Do(ctx, func() error {
		return c.getJSON(ctx, endpoint, &resp)
	})
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(resp.Tree))
	for _, entry := range resp.Tree {
		if entry.Type == "blob" {
			paths = append(paths, entry.Path)
		}
	}
	return paths, nil
}

// getJSON performs one GET request and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	reqURL := c.baseURL + endpoint

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return &RequestError{URL: endpoint, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", DefaultUserAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RequestError{URL: endpoint, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RequestError{URL: endpoint, Message: "failed to read response body", Cause: err}
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		if err := json.Unmarshal(body, out); err != nil {
			return &RequestError{URL: endpoint, Message: "failed to parse response JSON", Cause: err}
		}
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return &NotFoundError{Resource: endpoint}
	case resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode == http.StatusForbidden && rateLimited(resp):
		return &RateLimitError{URL: endpoint, Reset: rateLimitReset(resp)}
	default:
		return &RequestError{
			URL:     endpoint,
			Status:  resp.StatusCode,
			Message: truncate(string(body), 200),
		}
	}
}

// rateLimited reports whether a 403 is the rate-limit variant.
func rateLimited(resp *http.Response) bool {
	return resp.Header.Get("X-RateLimit-Remaining") == "0"
}

// rateLimitReset parses the X-RateLimit-Reset header, if present.
func rateLimitReset(resp *http.Response) time.Time {
	raw := resp.Header.Get("X-RateLimit-Reset")
	if raw == "" {
		return time.Time{}
	}
	epoch, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(epoch, 0)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
