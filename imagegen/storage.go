package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultObjectPrefix = "website/blog"

// StorageConfig holds the public-storage upload endpoint.
type StorageConfig struct {
	UploadURL string `json:"upload_url"`
	APIKey    string `json:"api_key,omitempty"`
	Prefix    string `json:"prefix,omitempty"`
}

type uploadResp struct {
	URL string `json:"url"`
}

// HTTPUploader posts image bytes to a storage endpoint as multipart form
// data. Every upload gets a fresh object name under the configured prefix so
// posts never overwrite each other's images.
type HTTPUploader struct {
	cfg    StorageConfig
	client *http.Client
	prefix string
}

func NewHTTPUploader(cfg StorageConfig, client *http.Client) (*HTTPUploader, error) {
	if cfg.UploadURL == "" {
		return nil, errors.New("storage config must include upload_url")
	}
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	prefix := strings.Trim(cfg.Prefix, "/")
	if prefix == "" {
		prefix = defaultObjectPrefix
	}
	return &HTTPUploader{cfg: cfg, client: client, prefix: prefix}, nil
}

// Upload stores the bytes under <prefix>/<uuid>.png and returns the public
// URL reported by the storage endpoint.
func (u *HTTPUploader) Upload(ctx context.Context, data []byte) (string, error) {
	objectName := u.prefix + "/" + uuid.NewString() + ".png"

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("media", objectName)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.cfg.UploadURL, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if u.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+u.cfg.APIKey)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("storage upload returned %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}

	var out uploadResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.URL == "" {
		return "", errors.New("storage upload response missing url")
	}
	return out.URL, nil
}
