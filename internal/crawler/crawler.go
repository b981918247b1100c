package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	// DefaultMaxPages bounds a crawl when the caller does not.
	DefaultMaxPages = 6

	// combinedTextLimit caps the concatenated page text so the
	// downstream strategy prompt stays a bounded size.
	combinedTextLimit = 15000

	defaultUserAgent = "CarrotViewBot/1.0"
)

// seedPaths are common marketing pages tried against the site origin in
// addition to the submitted URL itself.
var seedPaths = []string{
	"",
	"/pricing",
	"/features",
	"/product",
	"/use-cases",
	"/customers",
	"/about",
	"/blog",
	"/docs",
}

// Page is one successfully fetched page of the target site.
type Page struct {
	URL         string
	Title       string
	Description string
	Text        string
	Links       []string
}

// Result is the outcome of a crawl. CombinedText may be empty when no
// page could be fetched; that is not an error.
type Result struct {
	Pages        []Page
	CombinedText string
}

// Crawler performs a bounded best-effort breadth-first crawl of a single
// site's own pages.
type Crawler struct {
	client    *http.Client
	userAgent string
	logger    *slog.Logger
}

// New creates a Crawler. A nil client gets a default with a per-request
// timeout.
func New(client *http.Client, logger *slog.Logger) *Crawler {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Crawler{
		client:    client,
		userAgent: defaultUserAgent,
		logger:    logger,
	}
}

// Crawl fetches up to maxPages same-origin pages starting from startURL
// and the seed paths, and concatenates their text. Individual page
// failures are skipped; only an unusable start URL is an error.
func (c *Crawler) Crawl(ctx context.Context, startURL string, maxPages int) (*Result, error) {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	start, err := url.Parse(startURL)
	if err != nil || !start.IsAbs() || start.Host == "" {
		return nil, fmt.Errorf("invalid start URL %q", startURL)
	}
	origin := start.Scheme + "://" + start.Host

	var frontier []string
	queued := make(map[string]bool)
	enqueue := func(raw string) {
		if raw == "" || queued[raw] {
			return
		}
		queued[raw] = true
		frontier = append(frontier, raw)
	}

	for _, path := range seedPaths {
		enqueue(normalizeURL(origin + path))
	}
	enqueue(normalizeURL(startURL))

	visited := make(map[string]bool)
	var pages []Page

	for len(frontier) > 0 && len(pages) < maxPages {
		next := frontier[0]
		frontier = frontier[1:]

		if visited[next] {
			continue
		}
		visited[next] = true

		page, err := c.fetchPage(ctx, next)
		if err != nil {
			// Best effort: a page that fails to fetch or parse is
			// skipped, never fatal to the crawl.
			c.logger.Debug("Skipping page",
				slog.String("url", next),
				slog.Any("error", err),
			)
			continue
		}

		pages = append(pages, *page)

		for _, link := range page.Links {
			linkURL, err := url.Parse(link)
			if err != nil {
				continue
			}
			if linkURL.Scheme+"://"+linkURL.Host != origin {
				continue
			}
			if !visited[link] {
				enqueue(link)
			}
		}
	}

	var b strings.Builder
	for i, p := range pages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(p.Title)
		b.WriteString("\n")
		b.WriteString(p.Description)
		b.WriteString("\n")
		b.WriteString(p.Text)
	}

	return &Result{
		Pages:        pages,
		CombinedText: truncate(b.String(), combinedTextLimit),
	}, nil
}

// fetchPage GETs one page and extracts its title, meta description,
// visible body text, and outbound links.
func (c *Crawler) fetchPage(ctx context.Context, pageURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to fetch %s: status %d", pageURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", pageURL, err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	description, _ := doc.Find(`meta[name="description"]`).Attr("content")

	// Redirects may have moved us; resolve links against the final URL.
	base := resp.Request.URL

	seen := make(map[string]bool)
	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "mailto:") {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		abs.Fragment = ""
		link := strings.TrimSuffix(abs.String(), "/")
		if link == "" || seen[link] {
			return
		}
		seen[link] = true
		links = append(links, link)
	})

	doc.Find("script, style, nav, footer, header").Remove()
	text := strings.Join(strings.Fields(doc.Find("body").Text()), " ")

	return &Page{
		URL:         pageURL,
		Title:       title,
		Description: description,
		Text:        text,
		Links:       links,
	}, nil
}

// normalizeURL strips the fragment and any trailing slash so the visited
// set treats /pricing, /pricing/ and /pricing#plans as one page.
func normalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	u.Fragment = ""
	return strings.TrimSuffix(u.String(), "/")
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
