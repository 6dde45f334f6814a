package guide

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultMaxChars bounds the excerpt handed to the tips prompt.
const DefaultMaxChars = 1500

// Client fetches a destination guide page (a wiki-style site with one page per
// place, such as https://en.wikivoyage.org/wiki/) and reduces it to plain text.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxChars   int
}

// NewClient creates a guide client. An empty baseURL disables lookups.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		maxChars:   DefaultMaxChars,
	}
}

// Excerpt returns the cleaned guide text for destination. It returns an empty
// string when no guide site is configured.
func (c *Client) Excerpt(ctx context.Context, destination, country string) (string, error) {
	if c.baseURL == "" {
		return "", nil
	}

	page := strings.ReplaceAll(strings.TrimSpace(destination), " ", "_")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+url.PathEscape(page), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "ai-travel-planner/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch guide: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch guide: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse guide page: %w", err)
	}

	return truncateWords(cleanText(doc), c.maxChars), nil
}

// cleanText keeps headings, paragraphs and list items of the main content.
func cleanText(doc *goquery.Document) string {
	// Remove noise to save LLM tokens
	doc.Find("script, style, nav, footer, header, aside, iframe, table, sup, .ads, #ads, .mw-editsection, .noprint").Remove()

	root := doc.Find("main, #content, article").First()
	if root.Length() == 0 {
		root = doc.Find("body")
	}

	var parts []string
	root.Find("h1, h2, h3, p, li").Each(func(_ int, s *goquery.Selection) {
		if text := strings.Join(strings.Fields(s.Text()), " "); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, "\n")
}

func truncateWords(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	cut := s[:limit]
	if i := strings.LastIndexAny(cut, " \n"); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut) + "..."
}
