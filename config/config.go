// Package config loads the agent's settings from a JSON file and the
// environment. Each section mirrors the package that consumes it; the
// consuming constructors validate their own sections.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"blog_writer_agent/generator"
	"blog_writer_agent/imagegen"
	"blog_writer_agent/publisher"
	"blog_writer_agent/workspace"
)

type Config struct {
	ServerAddr string                 `json:"server_addr,omitempty"`
	LLM        generator.LLMSettings  `json:"llm"`
	Image      imagegen.Config        `json:"image"`
	Storage    imagegen.StorageConfig `json:"storage"`
	Workspace  workspace.Config       `json:"workspace"`
	Blog       publisher.Config       `json:"blog"`
}

// Load reads the JSON config file, then lets environment variables override
// individual fields. A missing file is fine when the environment carries
// everything; any other read failure is not.
func Load(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, err
	}

	applyEnv(&cfg)

	// The image model and the chat model usually share one OpenAI account.
	if cfg.Image.APIKey == "" {
		cfg.Image.APIKey = cfg.LLM.APIKey
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	overlay(&cfg.ServerAddr, "SERVER_ADDR")
	overlay(&cfg.LLM.Provider, "LLM_PROVIDER")
	overlay(&cfg.LLM.Model, "LLM_MODEL")
	overlay(&cfg.LLM.APIKey, "OPENAI_API_KEY")
	overlay(&cfg.LLM.BaseURL, "OPENAI_BASE_URL")
	overlay(&cfg.Image.APIKey, "IMAGE_API_KEY")
	overlay(&cfg.Workspace.APIKey, "NOTION_API_KEY")
	overlay(&cfg.Workspace.DatabaseID, "NOTION_DATABASE_ID")
	overlay(&cfg.Storage.UploadURL, "STORAGE_UPLOAD_URL")
	overlay(&cfg.Storage.APIKey, "STORAGE_API_KEY")
	overlay(&cfg.Blog.APIURL, "BLOG_API_URL")
}

func overlay(target *string, key string) {
	if value := os.Getenv(key); value != "" {
		*target = value
	}
}
