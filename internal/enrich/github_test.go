package enrich

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestGitHubAdapterCountsCommits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/repos/acme/tools/commits") {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("since") == "" {
			t.Fatal("expected since parameter")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"sha":"a"},{"sha":"b"},{"sha":"c"}]`))
	}))
	t.Cleanup(srv.Close)

	adapter := NewGitHubAdapter(srv.URL, "", 5*time.Second)
	res := adapter.Enrich(context.Background(), "https://github.com/acme/tools")

	if !res.OK {
		t.Fatalf("expected success, got failure: %s", res.Reason)
	}
	if res.Stats == nil || res.Stats.CommitCount != 3 {
		t.Fatalf("expected 3 commits, got %+v", res.Stats)
	}
	if res.Stats.Repository != "acme/tools" {
		t.Fatalf("unexpected repository %s", res.Stats.Repository)
	}
	if !strings.Contains(res.Summary, "3 commits") {
		t.Fatalf("summary missing commit count: %s", res.Summary)
	}
}

func TestGitHubAdapterNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	adapter := NewGitHubAdapter(srv.URL, "", 5*time.Second)
	res := adapter.Enrich(context.Background(), "acme/missing")

	if res.OK {
		t.Fatal("expected failure for missing repository")
	}
	if !strings.Contains(res.Reason, "not found") {
		t.Fatalf("unexpected reason %q", res.Reason)
	}
}

func TestGitHubAdapterRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	adapter := NewGitHubAdapter(srv.URL, "", 5*time.Second)
	res := adapter.Enrich(context.Background(), "acme/tools")

	if res.OK {
		t.Fatal("expected failure on rate limit")
	}
	if !strings.Contains(res.Reason, "rate limit") {
		t.Fatalf("unexpected reason %q", res.Reason)
	}
}

func TestGitHubAdapterEmptyReference(t *testing.T) {
	adapter := NewGitHubAdapter("http://unused.invalid", "", time.Second)
	res := adapter.Enrich(context.Background(), "   ")
	if res.OK {
		t.Fatal("expected failure for empty reference")
	}
}

func TestParseRepoRef(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"acme/tools", "acme/tools", true},
		{"https://github.com/acme/tools", "acme/tools", true},
		{"https://github.com/acme/tools.git", "acme/tools", true},
		{"https://github.com/acme/tools/tree/main", "acme/tools", true},
		{"", "", false},
		{"just-a-name", "", false},
	}
	for _, tc := range cases {
		got, ok := parseRepoRef(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("parseRepoRef(%q) = %q,%v want %q,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestGitHubAdapterFollowsPagination(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") == "2" {
			_, _ = w.Write([]byte(`[{"sha":"d"}]`))
			return
		}
		w.Header().Set("Link", "<"+srv.URL+r.URL.Path+"?page=2>; rel=\"next\"")
		_, _ = w.Write([]byte(`[{"sha":"a"},{"sha":"b"},{"sha":"c"}]`))
	}))
	t.Cleanup(srv.Close)

	adapter := NewGitHubAdapter(srv.URL, "", 5*time.Second)
	res := adapter.Enrich(context.Background(), "acme/tools")

	if !res.OK {
		t.Fatalf("expected success, got failure: %s", res.Reason)
	}
	if res.Stats.CommitCount != 4 {
		t.Fatalf("expected 4 commits across pages, got %d", res.Stats.CommitCount)
	}
	if res.Stats.Truncated {
		t.Fatal("fully-paged count must not be marked truncated")
	}
	if !strings.Contains(res.Summary, "4 commits") {
		t.Fatalf("summary missing total: %s", res.Summary)
	}
}

func TestGitHubAdapterMarksTruncatedCount(t *testing.T) {
	var srv *httptest.Server
	pages := 0
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages++
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Link", "<"+srv.URL+r.URL.Path+"?page=next>; rel=\"next\"")
		_, _ = w.Write([]byte(`[{"sha":"a"},{"sha":"b"}]`))
	}))
	t.Cleanup(srv.Close)

	adapter := NewGitHubAdapter(srv.URL, "", 5*time.Second)
	res := adapter.Enrich(context.Background(), "acme/tools")

	if !res.OK {
		t.Fatalf("expected success, got failure: %s", res.Reason)
	}
	if pages != maxCommitPages {
		t.Fatalf("expected walk to stop at %d pages, got %d", maxCommitPages, pages)
	}
	if !res.Stats.Truncated {
		t.Fatal("expected truncated flag when a next page remains")
	}
	if want := 2 * maxCommitPages; res.Stats.CommitCount != want {
		t.Fatalf("expected %d counted commits, got %d", want, res.Stats.CommitCount)
	}
	if !strings.Contains(res.Summary, "20+ commits") {
		t.Fatalf("summary must signal truncation: %s", res.Summary)
	}
}

func TestNextPageURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`<https://api.github.com/x?page=2>; rel="next", <https://api.github.com/x?page=5>; rel="last"`, "https://api.github.com/x?page=2"},
		{`<https://api.github.com/x?page=1>; rel="prev"`, ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := nextPageURL(tc.in); got != tc.want {
			t.Fatalf("nextPageURL(%q) = %q want %q", tc.in, got, tc.want)
		}
	}
}
