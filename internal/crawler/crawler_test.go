package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discardWriter{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func page(title, body string, links ...string) string {
	var b strings.Builder
	b.WriteString("<html><head><title>" + title + "</title>")
	b.WriteString(`<meta name="description" content="` + title + ` description">`)
	b.WriteString("<script>var x = 1;</script></head><body>")
	b.WriteString("<nav>Site navigation</nav>")
	b.WriteString("<p>" + body + "</p>")
	for _, l := range links {
		b.WriteString(`<a href="` + l + `">link</a>`)
	}
	b.WriteString("<footer>Footer boilerplate</footer></body></html>")
	return b.String()
}

func TestCrawl(t *testing.T) {
	var mu sync.Mutex
	requested := []string{}

	mux := http.NewServeMux()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requested = append(requested, r.URL.Path)
		mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	defer srv.Close()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, page("Acme", "Acme builds dashboards.", "/pricing", "/team", "https://elsewhere.example.com/external"))
	})
	mux.HandleFunc("/pricing", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page("Pricing", "Plans start at ten dollars."))
	})
	mux.HandleFunc("/team", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page("Team", "We are a small team."))
	})

	c := New(srv.Client(), testLogger())

	result, err := c.Crawl(context.Background(), srv.URL, 10)
	require.NoError(t, err)
	require.NotNil(t, result)

	titles := make([]string, len(result.Pages))
	for i, p := range result.Pages {
		titles[i] = p.Title
	}
	assert.Contains(t, titles, "Acme")
	assert.Contains(t, titles, "Pricing")
	assert.Contains(t, titles, "Team")

	// Stripped chrome must not leak into the combined text.
	assert.Contains(t, result.CombinedText, "Acme builds dashboards.")
	assert.Contains(t, result.CombinedText, "Plans start at ten dollars.")
	assert.NotContains(t, result.CombinedText, "Site navigation")
	assert.NotContains(t, result.CombinedText, "var x")

	// Off-origin links are never followed.
	mu.Lock()
	defer mu.Unlock()
	for _, path := range requested {
		assert.NotContains(t, path, "external")
	}
}

func TestCrawl_RespectsMaxPages(t *testing.T) {
	var mu sync.Mutex
	served := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		served++
		n := served
		mu.Unlock()
		fmt.Fprint(w, page(fmt.Sprintf("Page %d", n), "body text",
			fmt.Sprintf("/generated-%d", n), fmt.Sprintf("/generated-%d", n+100)))
	}))
	defer srv.Close()

	c := New(srv.Client(), testLogger())

	result, err := c.Crawl(context.Background(), srv.URL, 3)
	require.NoError(t, err)
	assert.Len(t, result.Pages, 3)
}

func TestCrawl_SkipsFailingPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			fmt.Fprint(w, page("Home", "only page that works"))
			return
		}
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.Client(), testLogger())

	result, err := c.Crawl(context.Background(), srv.URL, 6)
	require.NoError(t, err)
	require.Len(t, result.Pages, 1)
	assert.Equal(t, "Home", result.Pages[0].Title)
}

func TestCrawl_AllPagesFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(srv.Client(), testLogger())

	// An unreachable site is an empty result, not an error.
	result, err := c.Crawl(context.Background(), srv.URL, 6)
	require.NoError(t, err)
	assert.Empty(t, result.Pages)
	assert.Empty(t, result.CombinedText)
}

func TestCrawl_InvalidStartURL(t *testing.T) {
	c := New(nil, testLogger())

	_, err := c.Crawl(context.Background(), "not a url", 6)
	require.Error(t, err)

	_, err = c.Crawl(context.Background(), "/relative/path", 6)
	require.Error(t, err)
}

func TestCrawl_TruncatesCombinedText(t *testing.T) {
	long := strings.Repeat("carrot ", 4000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page("Long", long))
	}))
	defer srv.Close()

	c := New(srv.Client(), testLogger())

	result, err := c.Crawl(context.Background(), srv.URL, 6)
	require.NoError(t, err)
	assert.LessOrEqual(t, len([]rune(result.CombinedText)), combinedTextLimit)
}

func TestNormalizeURL(t *testing.T) {
	assert.Equal(t, "https://acme.example.com/pricing", normalizeURL("https://acme.example.com/pricing/"))
	assert.Equal(t, "https://acme.example.com/pricing", normalizeURL("https://acme.example.com/pricing#plans"))
	assert.Equal(t, "https://acme.example.com", normalizeURL("https://acme.example.com/"))
}
