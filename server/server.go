// Package server exposes the HTTP control surface for the agent. The
// generation endpoints acknowledge immediately and run the pipeline detached
// from the request, so a slow model never holds an HTTP connection open.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"blog_writer_agent/generator"
)

// BatchGenerator runs one full topics-to-drafts pipeline.
type BatchGenerator interface {
	GenerateBatch(ctx context.Context) ([]generator.GenerationResult, error)
}

type Server struct {
	agent  BatchGenerator
	logger *log.Logger
}

func New(agent BatchGenerator, logger *log.Logger) (*Server, error) {
	if agent == nil {
		return nil, errors.New("batch generator required")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{agent: agent, logger: logger}, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/generate-topics", s.handleGenerateTopics)
	mux.HandleFunc("/generate-blog", s.handleGenerateBlog)
	return s.logMiddleware(mux)
}

// --- Handlers ---

type messageResp struct {
	Message string `json:"message"`
}

type healthResp struct {
	Status string `json:"status"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, messageResp{Message: "Blog Writer Agent is running"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, healthResp{Status: "healthy"})
}

func (s *Server) handleGenerateTopics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.startBatch()
	writeJSON(w, messageResp{Message: "Blog topics and content generation started"})
}

func (s *Server) handleGenerateBlog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.startBatch()
	writeJSON(w, messageResp{Message: "Blog post generation started"})
}

// startBatch detaches the pipeline from the request; its context must outlive
// the HTTP exchange that triggered it.
func (s *Server) startBatch() {
	go func() {
		results, err := s.agent.GenerateBatch(context.Background())
		if err != nil {
			s.logger.Printf("batch generation failed: %v", err)
			return
		}
		succeeded := 0
		for _, res := range results {
			if res.Succeeded() {
				succeeded++
			} else {
				s.logger.Printf("topic %q failed: %v", res.Title, res.Err)
			}
		}
		s.logger.Printf("batch generation finished: %d/%d topics drafted", succeeded, len(results))
	}()
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start).Round(time.Millisecond))
	})
}
