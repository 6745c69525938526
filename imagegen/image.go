// Package imagegen produces header images for blog posts: it renders a prompt
// through an OpenAI-compatible image model, pulls the result down, and pushes
// it to public storage.
package imagegen

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	defaultModel   = "dall-e-3"
	defaultSize    = "1024x1024"
	defaultQuality = "standard"
	defaultStyle   = "vivid"

	// Image models render slowly compared to chat completions.
	imageRequestTimeout = 120 * time.Second
)

// Config holds the image model credentials and rendering options.
type Config struct {
	Model   string `json:"model,omitempty"`
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url,omitempty"`
	Size    string `json:"size,omitempty"`
	Quality string `json:"quality,omitempty"`
	Style   string `json:"style,omitempty"`
}

// Uploader stores raw image bytes and returns a public URL for them.
type Uploader interface {
	Upload(ctx context.Context, data []byte) (string, error)
}

// Generator renders and stores one image per prompt. Failures are logged and
// reported as an empty URL rather than an error: a post without a header
// image is still a post.
type Generator struct {
	cfg      Config
	opts     []option.RequestOption
	uploader Uploader
	client   *http.Client
	verbose  bool
	logger   *log.Logger
}

func NewGenerator(cfg Config, uploader Uploader, client *http.Client, verbose bool, logger *log.Logger) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("image config must include api_key")
	}
	if uploader == nil {
		return nil, errors.New("image uploader is required")
	}
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	if logger == nil {
		logger = log.Default()
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Size == "" {
		cfg.Size = defaultSize
	}
	if cfg.Quality == "" {
		cfg.Quality = defaultQuality
	}
	if cfg.Style == "" {
		cfg.Style = defaultStyle
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(imageRequestTimeout),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Generator{
		cfg:      cfg,
		opts:     opts,
		uploader: uploader,
		client:   client,
		verbose:  verbose,
		logger:   logger,
	}, nil
}

func (g *Generator) infof(format string, args ...interface{}) {
	if !g.verbose {
		return
	}
	g.logger.Printf("[INFO] "+format, args...)
}

// GenerateImage renders the prompt and returns the stored image's public URL.
// A blank prompt, a model failure, a download failure, or an upload failure
// all yield an empty URL with a nil error.
func (g *Generator) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", nil
	}

	data, err := g.render(ctx, prompt)
	if err != nil {
		g.logger.Printf("image generation failed: %v", err)
		return "", nil
	}

	url, err := g.uploader.Upload(ctx, data)
	if err != nil {
		g.logger.Printf("image upload failed: %v", err)
		return "", nil
	}

	g.infof("Image stored at %s", url)
	return url, nil
}

func (g *Generator) render(ctx context.Context, prompt string) ([]byte, error) {
	client := openai.NewClient(g.opts...)
	resp, err := client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:  prompt,
		Model:   openai.ImageModel(g.cfg.Model),
		N:       openai.Int(1),
		Size:    openai.ImageGenerateParamsSize(g.cfg.Size),
		Quality: openai.ImageGenerateParamsQuality(g.cfg.Quality),
		Style:   openai.ImageGenerateParamsStyle(g.cfg.Style),
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("image model returned no data")
	}

	image := resp.Data[0]
	if image.B64JSON != "" {
		return base64.StdEncoding.DecodeString(image.B64JSON)
	}
	if image.URL == "" {
		return nil, errors.New("image model returned neither url nor data")
	}
	return g.download(ctx, image.URL)
}

func (g *Generator) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image download returned %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}
