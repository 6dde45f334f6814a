package ghost

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ai-travel-planner/internal/config"
	"ai-travel-planner/internal/itinerary"

	"github.com/golang-jwt/jwt/v5"
)

// Post is a blog post as returned by the Ghost Admin API.
type Post struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Status    string `json:"status"`
	UpdatedAt string `json:"updated_at"`
}

type postsEnvelope struct {
	Posts []Post `json:"posts"`
}

type tag struct {
	Name string `json:"name"`
}

type newPost struct {
	Title  string `json:"title"`
	HTML   string `json:"html"`
	Status string `json:"status"`
	Tags   []tag  `json:"tags,omitempty"`
}

// Client publishes itineraries to a Ghost blog.
type Client interface {
	CreatePost(ctx context.Context, title, html string, tags []string, publish bool) (*Post, error)
	PublishItinerary(ctx context.Context, it *itinerary.Itinerary, publish bool) (*Post, error)
}

// ghostClient is the concrete implementation of the Ghost Admin API client.
type ghostClient struct {
	httpClient *http.Client
	baseURL    string
	adminKey   string
	now        func() time.Time
}

// NewClient creates a new Ghost API client.
func NewClient(cfg *config.Config) Client {
	return &ghostClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(cfg.GhostURL, "/"),
		adminKey:   cfg.GhostAdminKey,
		now:        time.Now,
	}
}

// PublishItinerary renders it as HTML and creates a post tagged with the
// destination.
func (c *ghostClient) PublishItinerary(ctx context.Context, it *itinerary.Itinerary, publish bool) (*Post, error) {
	html, err := itinerary.RenderHTML(it)
	if err != nil {
		return nil, err
	}

	title := fmt.Sprintf("%d days in %s", it.Duration, it.Destination)
	if it.Country != "" {
		title += ", " + it.Country
	}
	return c.CreatePost(ctx, title, html, []string{"itinerary", it.Destination}, publish)
}

// CreatePost creates a new post using the Ghost Admin API.
func (c *ghostClient) CreatePost(ctx context.Context, title, html string, tags []string, publish bool) (*Post, error) {
	token, err := c.createAdminToken()
	if err != nil {
		return nil, fmt.Errorf("failed to create admin token: %w", err)
	}

	post := newPost{Title: title, HTML: html, Status: "draft"}
	if publish {
		post.Status = "published"
	}
	for _, t := range tags {
		post.Tags = append(post.Tags, tag{Name: t})
	}

	body, err := json.Marshal(map[string][]newPost{"posts": {post}})
	if err != nil {
		return nil, fmt.Errorf("failed to encode post: %w", err)
	}

	url := fmt.Sprintf("%s/ghost/api/admin/posts/?source=html", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Ghost "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("admin api error: status %d, body: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var response postsEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(response.Posts) == 0 {
		return nil, fmt.Errorf("no post returned from api")
	}

	return &response.Posts[0], nil
}

// createAdminToken generates a short-lived JWT for the Admin API.
func (c *ghostClient) createAdminToken() (string, error) {
	id, secretHex, ok := strings.Cut(c.adminKey, ":")
	if !ok || id == "" || strings.Contains(secretHex, ":") {
		return "", fmt.Errorf("invalid admin key format: expected id:secret")
	}

	secret, err := hex.DecodeString(secretHex)
	if err != nil {
		return "", fmt.Errorf("failed to decode secret hex: %w", err)
	}

	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iat": now.Unix(),
		"exp": now.Add(5 * time.Minute).Unix(),
		"aud": "/admin/",
	})
	token.Header["kid"] = id

	return token.SignedString(secret)
}
