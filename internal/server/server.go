// Package server provides the HTTP REST API and WebSocket progress channel.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adnane/cvforge/internal/db"
	"github.com/adnane/cvforge/internal/embedding"
	"github.com/adnane/cvforge/internal/ingest"
	"github.com/adnane/cvforge/internal/jobs"
	"github.com/adnane/cvforge/internal/letter"
	"github.com/adnane/cvforge/internal/match"
	"github.com/adnane/cvforge/internal/progress"
	"github.com/adnane/cvforge/internal/project"
)

// Config holds server configuration
type Config struct {
	Port         int
	OutputDir    string
	TemplatesDir string
}

// Deps bundles the services the server fronts.
type Deps struct {
	DB       *db.DB
	Store    *project.Store
	Index    *embedding.Index
	Ingest   *ingest.Service
	Analyzer *jobs.Analyzer
	Matcher  *match.Matcher
	Letters  *letter.Generator
	Hub      *progress.Hub
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	cfg        Config

	db       *db.DB
	store    *project.Store
	index    *embedding.Index
	ingest   *ingest.Service
	analyzer *jobs.Analyzer
	matcher  *match.Matcher
	letters  *letter.Generator
	hub      *progress.Hub
}

// New creates a new server instance
func New(cfg Config, deps Deps) *Server {
	s := &Server{
		cfg:      cfg,
		db:       deps.DB,
		store:    deps.Store,
		index:    deps.Index,
		ingest:   deps.Ingest,
		analyzer: deps.Analyzer,
		matcher:  deps.Matcher,
		letters:  deps.Letters,
		hub:      deps.Hub,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withLogging(s.withCORS(s.routes())),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // generation endpoints run pdflatex
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Scrape pipeline
	mux.HandleFunc("POST /scrape-github", s.handleScrapeGitHub)
	mux.HandleFunc("POST /refresh-embeddings", s.handleRefreshEmbeddings)

	// Projects
	mux.HandleFunc("GET /projects", s.handleListProjects)
	mux.HandleFunc("GET /projects/{name}", s.handleGetProject)
	mux.HandleFunc("PATCH /projects/{name}/content", s.handlePatchProjectContent)
	mux.HandleFunc("PATCH /projects/{name}/visibility", s.handlePatchProjectVisibility)
	mux.HandleFunc("POST /projects/{name}/update", s.handleUpdateProject)

	// Job analysis and matching
	mux.HandleFunc("POST /analyze-job", s.handleAnalyzeJob)
	mux.HandleFunc("POST /match-projects", s.handleMatchProjects)

	// Document generation
	mux.HandleFunc("POST /generate-cv", s.handleGenerateCV)
	mux.HandleFunc("POST /generate-cover-letter", s.handleGenerateCoverLetter)
	mux.HandleFunc("POST /generate-full-application", s.handleGenerateFullApplication)

	// Personal info
	mux.HandleFunc("GET /personal-info", s.handleListPersonalInfo)
	mux.HandleFunc("POST /personal-info", s.handleCreatePersonalInfo)
	mux.HandleFunc("GET /personal-info/{id}", s.handleGetPersonalInfo)
	mux.HandleFunc("PUT /personal-info/{id}", s.handleUpdatePersonalInfo)
	mux.HandleFunc("GET /personal-info/{id}/job-applications", s.handleListApplicationsForPerson)

	// Job applications
	mux.HandleFunc("GET /job-applications", s.handleListApplications)
	mux.HandleFunc("POST /job-applications", s.handleCreateApplication)
	mux.HandleFunc("GET /job-applications/{id}", s.handleGetApplication)
	mux.HandleFunc("PUT /job-applications/{id}", s.handleUpdateApplication)
	mux.HandleFunc("DELETE /job-applications/{id}", s.handleDeleteApplication)

	// Generated files
	mux.HandleFunc("GET /output", s.handleListOutput)
	mux.HandleFunc("GET /download/{filename}", s.handleDownload)

	// Progress channel
	mux.HandleFunc("GET /ws/{client_id}", s.handleWebSocket)

	mux.HandleFunc("GET /health", s.handleHealth)

	return mux
}

// Start begins listening for requests and blocks until shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.db != nil {
		s.db.Close()
	}
	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// serviceError maps a service error to its HTTP status and writes it.
func (s *Server) serviceError(w http.ResponseWriter, err error) {
	s.errorResponse(w, HTTPStatus(err), err.Error())
}
