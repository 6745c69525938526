// Package publisher pushes finished posts to the external blog API.
package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"blog_writer_agent/generator"
)

const (
	defaultAuthor = "AI Blog Writer"
)

var defaultTags = []string{"AI", "Technology", "Productivity"}

// Config holds the blog API endpoint and the byline applied to every post.
type Config struct {
	APIURL string   `json:"api_url"`
	Author string   `json:"author,omitempty"`
	Tags   []string `json:"tags,omitempty"`
}

type postPayload struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Author  string   `json:"author"`
	Tags    []string `json:"tags"`
	Image   string   `json:"image"`
}

// APIError reports a non-success response from the blog API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("blog API returned status %d: %s", e.StatusCode, e.Body)
}

// Client publishes posts to the blog API.
type Client struct {
	cfg     Config
	client  *http.Client
	verbose bool
	logger  *log.Logger
}

// New creates a Client. A nil http.Client gets a 60 second timeout.
func New(cfg Config, client *http.Client, verbose bool, logger *log.Logger) (*Client, error) {
	if cfg.APIURL == "" {
		return nil, errors.New("blog config must include api_url")
	}
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	if logger == nil {
		logger = log.Default()
	}
	if cfg.Author == "" {
		cfg.Author = defaultAuthor
	}
	if len(cfg.Tags) == 0 {
		cfg.Tags = defaultTags
	}
	return &Client{
		cfg:     cfg,
		client:  client,
		verbose: verbose,
		logger:  logger,
	}, nil
}

func (c *Client) infof(format string, args ...interface{}) {
	if !c.verbose {
		return
	}
	c.logger.Printf("[INFO] "+format, args...)
}

// Publish converts the post body from markdown to HTML and posts it to the
// blog API. The API's response body is returned verbatim so callers can relay
// it without reshaping.
func (c *Client) Publish(ctx context.Context, post generator.BlogPost) (json.RawMessage, error) {
	if post.Title == "" || post.Content == "" {
		return nil, errors.New("post title and content are required")
	}

	contentHTML, err := mdToHTML(post.Content)
	if err != nil {
		return nil, err
	}
	c.infof("Converted post %q to HTML", post.Title)

	payload := postPayload{
		Title:   post.Title,
		Content: contentHTML,
		Author:  c.cfg.Author,
		Tags:    c.cfg.Tags,
		Image:   post.ImageData,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	c.infof("Blog API accepted post %q", post.Title)
	return json.RawMessage(respBody), nil
}

func mdToHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
