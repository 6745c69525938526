// Package workspace talks to the Notion REST API that backs the content
// database. Each blog post is one page in a single database; the agent reads
// and writes pages only through this client.
package workspace

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

	"blog_writer_agent/generator"
)

const (
	defaultBaseURL = "https://api.notion.com"
	defaultVersion = "2022-06-28"
)

// Config holds the Notion credentials and database target.
type Config struct {
	APIKey     string `json:"api_key"`
	DatabaseID string `json:"database_id"`
	BaseURL    string `json:"base_url,omitempty"`
	Version    string `json:"version,omitempty"`
}

type textContent struct {
	Content string `json:"content"`
}

type richText struct {
	Type      string       `json:"type,omitempty"`
	Text      *textContent `json:"text,omitempty"`
	PlainText string       `json:"plain_text,omitempty"`
}

type selectOption struct {
	Name string `json:"name"`
}

type titleProperty struct {
	Title []richText `json:"title"`
}

type statusProperty struct {
	Status selectOption `json:"status"`
}

type multiSelectProperty struct {
	MultiSelect []selectOption `json:"multi_select"`
}

type checkboxProperty struct {
	Checkbox bool `json:"checkbox"`
}

type databaseParent struct {
	DatabaseID string `json:"database_id"`
}

type createPageProperties struct {
	Name          titleProperty       `json:"Name"`
	Status        statusProperty      `json:"Status"`
	Area          multiSelectProperty `json:"Area"`
	Platform      multiSelectProperty `json:"Platform"`
	VisualsNeeded checkboxProperty    `json:"Visuals needed"`
}

type createPagePayload struct {
	Parent     databaseParent       `json:"parent"`
	Properties createPageProperties `json:"properties"`
}

type statusPatchProperties struct {
	Status statusProperty `json:"Status"`
}

type statusPatchPayload struct {
	Properties statusPatchProperties `json:"properties"`
}

type textBlock struct {
	RichText []richText `json:"rich_text"`
}

type externalFile struct {
	URL string `json:"url"`
}

type imageBlock struct {
	Type     string       `json:"type"`
	External externalFile `json:"external"`
}

type blockPayload struct {
	Object    string      `json:"object"`
	Type      string      `json:"type"`
	Heading1  *textBlock  `json:"heading_1,omitempty"`
	Heading2  *textBlock  `json:"heading_2,omitempty"`
	Heading3  *textBlock  `json:"heading_3,omitempty"`
	Paragraph *textBlock  `json:"paragraph,omitempty"`
	Image     *imageBlock `json:"image,omitempty"`
}

type appendBlocksPayload struct {
	Children []blockPayload `json:"children"`
}

type pageProperty struct {
	Type     string        `json:"type"`
	Title    []richText    `json:"title,omitempty"`
	RichText []richText    `json:"rich_text,omitempty"`
	Status   *selectOption `json:"status,omitempty"`
}

type pageResp struct {
	Object     string                  `json:"object"`
	ID         string                  `json:"id"`
	Properties map[string]pageProperty `json:"properties"`
}

type statusEquals struct {
	Equals string `json:"equals"`
}

type statusFilter struct {
	Property string       `json:"property"`
	Status   statusEquals `json:"status"`
}

type queryPayload struct {
	Filter *statusFilter `json:"filter,omitempty"`
}

type queryResp struct {
	Object  string     `json:"object"`
	Results []pageResp `json:"results"`
	HasMore bool       `json:"has_more"`
}

type apiErrorResp struct {
	Object  string `json:"object"`
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Client is a Notion API client scoped to one database.
type Client struct {
	cfg     Config
	client  *http.Client
	baseURL string
	version string
	verbose bool
	logger  *log.Logger
}

// New creates a Client. A nil http.Client gets a 60 second timeout.
func New(cfg Config, client *http.Client, verbose bool, logger *log.Logger) (*Client, error) {
	if cfg.APIKey == "" || cfg.DatabaseID == "" {
		return nil, errors.New("workspace config must include api_key and database_id")
	}
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	if logger == nil {
		logger = log.Default()
	}
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	version := cfg.Version
	if version == "" {
		version = defaultVersion
	}
	return &Client{
		cfg:     cfg,
		client:  client,
		baseURL: baseURL,
		version: version,
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

func (c *Client) newRequest(ctx context.Context, method, path string, payload interface{}) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Notion-Version", c.version)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func apiError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	var data apiErrorResp
	if err := json.Unmarshal(body, &data); err != nil || data.Object != "error" {
		return fmt.Errorf("notion API returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return fmt.Errorf("notion API error %d %s: %s", data.Status, data.Code, data.Message)
}

// CreateRecord inserts a new page into the database with the fixed property
// set every post starts from: the title, the given status, Area Brand,
// Platform Blog, and the visuals checkbox ticked.
func (c *Client) CreateRecord(ctx context.Context, title string, status generator.Status) (generator.RecordRef, error) {
	payload := createPagePayload{
		Parent: databaseParent{DatabaseID: c.cfg.DatabaseID},
		Properties: createPageProperties{
			Name:          titleProperty{Title: textSpans(title)},
			Status:        statusProperty{Status: selectOption{Name: string(status)}},
			Area:          multiSelectProperty{MultiSelect: []selectOption{{Name: "Brand"}}},
			Platform:      multiSelectProperty{MultiSelect: []selectOption{{Name: "Blog"}}},
			VisualsNeeded: checkboxProperty{Checkbox: true},
		},
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/v1/pages", payload)
	if err != nil {
		return generator.RecordRef{}, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return generator.RecordRef{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return generator.RecordRef{}, apiError(resp)
	}

	var page pageResp
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return generator.RecordRef{}, err
	}
	if page.ID == "" {
		return generator.RecordRef{}, errors.New("create record: response missing page id")
	}
	c.infof("Created page %s", page.ID)
	return generator.RecordRef{ID: page.ID, Title: title, Status: status}, nil
}

// AppendBlocks appends the rendered blocks to a page, preserving order.
func (c *Client) AppendBlocks(ctx context.Context, recordID string, blocks []generator.RichBlock) error {
	children := make([]blockPayload, 0, len(blocks))
	for _, b := range blocks {
		children = append(children, apiBlock(b))
	}
	payload := appendBlocksPayload{Children: children}

	req, err := c.newRequest(ctx, http.MethodPatch, "/v1/blocks/"+recordID+"/children", payload)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	c.infof("Appended %d blocks to page %s", len(children), recordID)
	return nil
}

// UpdateStatus moves a page to the given status.
func (c *Client) UpdateStatus(ctx context.Context, recordID string, status generator.Status) error {
	payload := statusPatchPayload{
		Properties: statusPatchProperties{
			Status: statusProperty{Status: selectOption{Name: string(status)}},
		},
	}

	req, err := c.newRequest(ctx, http.MethodPatch, "/v1/pages/"+recordID, payload)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	c.infof("Page %s moved to status %s", recordID, status)
	return nil
}

// GetRecord reads the page properties the publisher needs. Properties the
// page does not carry come back as empty strings.
func (c *Client) GetRecord(ctx context.Context, recordID string) (generator.RecordSnapshot, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/v1/pages/"+recordID, nil)
	if err != nil {
		return generator.RecordSnapshot{}, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return generator.RecordSnapshot{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return generator.RecordSnapshot{}, apiError(resp)
	}

	var page pageResp
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return generator.RecordSnapshot{}, err
	}
	return snapshotFrom(page), nil
}

// QueryRecords lists the pages currently in the database. A non-empty status
// narrows the listing to records in that lifecycle stage.
func (c *Client) QueryRecords(ctx context.Context, status generator.Status) ([]generator.RecordRef, error) {
	var payload queryPayload
	if status != "" {
		payload.Filter = &statusFilter{Property: "Status", Status: statusEquals{Equals: string(status)}}
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/v1/databases/"+c.cfg.DatabaseID+"/query", payload)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var data queryResp
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}

	refs := make([]generator.RecordRef, 0, len(data.Results))
	for _, page := range data.Results {
		snap := snapshotFrom(page)
		refs = append(refs, generator.RecordRef{ID: page.ID, Title: snap.Title, Status: snap.Status})
	}
	c.infof("Query returned %d records", len(refs))
	return refs, nil
}

func textSpans(text string) []richText {
	return []richText{{Type: "text", Text: &textContent{Content: text}}}
}

func plainText(spans []richText) string {
	var b strings.Builder
	for _, span := range spans {
		if span.PlainText != "" {
			b.WriteString(span.PlainText)
			continue
		}
		if span.Text != nil {
			b.WriteString(span.Text.Content)
		}
	}
	return b.String()
}

func snapshotFrom(page pageResp) generator.RecordSnapshot {
	var snap generator.RecordSnapshot
	for name, prop := range page.Properties {
		switch name {
		case "Name":
			snap.Title = plainText(prop.Title)
		case "Content":
			snap.Content = plainText(prop.RichText)
		case "ImageData":
			snap.ImageData = plainText(prop.RichText)
		case "Status":
			if prop.Status != nil {
				snap.Status = generator.Status(prop.Status.Name)
			}
		}
	}
	return snap
}

func apiBlock(b generator.RichBlock) blockPayload {
	switch b.Type {
	case generator.BlockHeading:
		tb := &textBlock{RichText: textSpans(b.Text)}
		out := blockPayload{Object: "block"}
		switch b.Level {
		case 2:
			out.Type = "heading_2"
			out.Heading2 = tb
		case 3:
			out.Type = "heading_3"
			out.Heading3 = tb
		default:
			out.Type = "heading_1"
			out.Heading1 = tb
		}
		return out
	case generator.BlockImage:
		return blockPayload{
			Object: "block",
			Type:   "image",
			Image:  &imageBlock{Type: "external", External: externalFile{URL: b.URL}},
		}
	default:
		return blockPayload{
			Object:    "block",
			Type:      "paragraph",
			Paragraph: &textBlock{RichText: textSpans(b.Text)},
		}
	}
}
