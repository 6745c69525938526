package generator

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewOpenAILLMFromConfig_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  *LLMSettings
	}{
		{"nil config", nil},
		{"missing api key", &LLMSettings{Model: "gpt-4o-mini"}},
		{"missing model", &LLMSettings{APIKey: "key"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewOpenAILLMFromConfig(tt.cfg); err == nil {
				t.Error("expected a config error")
			}
		})
	}
}

func TestOpenAILLM_Complete(t *testing.T) {
	type chatMessage struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	var gotReq struct {
		Model       string        `json:"model"`
		Messages    []chatMessage `json:"messages"`
		Temperature float64       `json:"temperature"`
		TopP        float64       `json:"top_p"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"chatcmpl-1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Topic A, Topic B"},"finish_reason":"stop"}]}`)
	}))
	defer srv.Close()

	llm, err := NewOpenAILLMFromConfig(&LLMSettings{
		Provider: "openai",
		Model:    "gpt-4o-mini",
		APIKey:   "test-key",
		BaseURL:  srv.URL,
	})
	if err != nil {
		t.Fatalf("NewOpenAILLMFromConfig() error = %v", err)
	}

	got, err := llm.Complete(context.Background(), BuildTopicsPrompt())
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "Topic A, Topic B" {
		t.Errorf("Complete() = %q, want the assistant content", got)
	}

	if gotReq.Model != "gpt-4o-mini" {
		t.Errorf("request model = %q, want gpt-4o-mini", gotReq.Model)
	}
	if len(gotReq.Messages) != 2 {
		t.Fatalf("request carried %d messages, want 2", len(gotReq.Messages))
	}
	if gotReq.Messages[0].Role != "system" || gotReq.Messages[1].Role != "user" {
		t.Errorf("message roles = %q, %q, want system then user", gotReq.Messages[0].Role, gotReq.Messages[1].Role)
	}
	if gotReq.Temperature != 0.7 {
		t.Errorf("temperature = %v, want 0.7", gotReq.Temperature)
	}
	if gotReq.TopP != 0.95 {
		t.Errorf("top_p = %v, want 0.95", gotReq.TopP)
	}
}

func TestOpenAILLM_Complete_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"chatcmpl-1","object":"chat.completion","choices":[]}`)
	}))
	defer srv.Close()

	llm, err := NewOpenAILLMFromConfig(&LLMSettings{Model: "gpt-4o-mini", APIKey: "k", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewOpenAILLMFromConfig() error = %v", err)
	}
	if _, err := llm.Complete(context.Background(), BuildTopicsPrompt()); err == nil {
		t.Error("expected an error for an empty choices array")
	}
}
