package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	githubAdapterName = "github_commit_activity"

	// Trailing window over which commit volume is measured.
	commitWindow = 30 * 24 * time.Hour

	commitPageSize = 100

	// Upper bound on pages walked per lookup. Hitting it marks the
	// count as truncated rather than silently under-reporting.
	maxCommitPages = 10
)

// CommitStats is the success payload of the commit-activity lookup.
type CommitStats struct {
	Repository  string    `json:"repository"`
	CommitCount int       `json:"commit_count"`
	WindowStart time.Time `json:"window_start"`
	Truncated   bool      `json:"truncated,omitempty"`
}

// GitHubAdapter measures recent commit volume for a repository reference
// via the GitHub REST API.
type GitHubAdapter struct {
	apiURL string
	client *http.Client
	now    func() time.Time
}

// NewGitHubAdapter constructs the adapter. An empty token yields
// unauthenticated requests, subject to the public rate limit.
func NewGitHubAdapter(apiURL, token string, timeout time.Duration) *GitHubAdapter {
	var client *http.Client
	if strings.TrimSpace(token) != "" {
		client = oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	} else {
		client = &http.Client{}
	}
	client.Timeout = timeout

	return &GitHubAdapter{
		apiURL: strings.TrimRight(apiURL, "/"),
		client: client,
		now:    time.Now,
	}
}

// Name implements Adapter.
func (a *GitHubAdapter) Name() string { return githubAdapterName }

// Enrich counts commits over the trailing window for the repository named
// by query. Any upstream error (not-found, rate limit, network) settles
// to a failure marker.
func (a *GitHubAdapter) Enrich(ctx context.Context, query string) Result {
	repo, ok := parseRepoRef(query)
	if !ok {
		return failure(githubAdapterName, "no repository reference provided")
	}

	windowStart := a.now().UTC().Add(-commitWindow)
	next := fmt.Sprintf("%s/repos/%s/commits?since=%s&per_page=%d",
		a.apiURL, repo, url.QueryEscape(windowStart.Format(time.RFC3339)), commitPageSize)

	total := 0
	for page := 0; page < maxCommitPages && next != ""; page++ {
		count, nextURL, fail := a.fetchCommitPage(ctx, next, repo)
		if fail != nil {
			return *fail
		}
		total += count
		next = nextURL
	}

	stats := &CommitStats{
		Repository:  repo,
		CommitCount: total,
		WindowStart: windowStart,
		// A next link remaining after the page cap means the window
		// holds more commits than were counted.
		Truncated: next != "",
	}
	res := success(githubAdapterName, formatCommitStats(stats))
	res.Stats = stats
	return res
}

// fetchCommitPage retrieves one page of commits. It returns the commit
// count, the rel="next" page URL when pagination continues, or a settled
// failure.
func (a *GitHubAdapter) fetchCommitPage(ctx context.Context, pageURL, repo string) (int, string, *Result) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		fail := failure(githubAdapterName, fmt.Sprintf("build request: %v", err))
		return 0, "", &fail
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := a.client.Do(req)
	if err != nil {
		fail := failure(githubAdapterName, fmt.Sprintf("github request failed: %v", err))
		return 0, "", &fail
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		fail := failure(githubAdapterName, fmt.Sprintf("repository %s not found", repo))
		return 0, "", &fail
	case http.StatusForbidden, http.StatusTooManyRequests:
		fail := failure(githubAdapterName, "github rate limit exceeded")
		return 0, "", &fail
	default:
		fail := failure(githubAdapterName, fmt.Sprintf("github returned status %d", resp.StatusCode))
		return 0, "", &fail
	}

	var commits []struct {
		SHA string `json:"sha"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&commits); err != nil {
		fail := failure(githubAdapterName, fmt.Sprintf("decode response: %v", err))
		return 0, "", &fail
	}
	return len(commits), nextPageURL(resp.Header.Get("Link")), nil
}

// nextPageURL extracts the rel="next" target from a Link header, or
// empty when this is the last page.
func nextPageURL(linkHeader string) string {
	for _, part := range strings.Split(linkHeader, ",") {
		section := strings.Split(part, ";")
		if len(section) < 2 {
			continue
		}
		if strings.TrimSpace(section[1]) != `rel="next"` {
			continue
		}
		target := strings.TrimSpace(section[0])
		return strings.TrimSuffix(strings.TrimPrefix(target, "<"), ">")
	}
	return ""
}

func formatCommitStats(stats *CommitStats) string {
	suffix := ""
	if stats.Truncated {
		suffix = "+"
	}
	return fmt.Sprintf("Repository %s: %d%s commits since %s",
		stats.Repository, stats.CommitCount, suffix, stats.WindowStart.Format("2006-01-02"))
}

// parseRepoRef accepts "owner/repo" or a github.com URL and normalizes it
// to "owner/repo".
func parseRepoRef(raw string) (string, bool) {
	ref := strings.TrimSpace(raw)
	if ref == "" {
		return "", false
	}
	if strings.Contains(ref, "github.com") {
		if idx := strings.Index(ref, "github.com/"); idx >= 0 {
			ref = ref[idx+len("github.com/"):]
		}
	}
	ref = strings.TrimSuffix(strings.Trim(ref, "/"), ".git")
	parts := strings.Split(ref, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", false
	}
	return parts[0] + "/" + parts[1], true
}
