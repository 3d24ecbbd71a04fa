package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
)

// handleScrapeGitHub kicks off a background scrape and returns the client id
// to follow on the progress channel.
func (s *Server) handleScrapeGitHub(w http.ResponseWriter, r *http.Request) {
	var req ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.serviceError(w, err)
		return
	}

	clientID := req.ClientID
	if clientID == "" {
		clientID = uuid.New().String()
	}

	go func() {
		// The request context dies with the 202 response; the scrape
		// carries on with its own.
		if _, err := s.ingest.ScrapeUser(context.Background(), req.GitHubUsername, clientID); err != nil {
			log.Printf("[scrape] %s failed: %v", req.GitHubUsername, err)
		}
	}()

	s.jsonResponse(w, http.StatusAccepted, map[string]string{
		"client_id": clientID,
		"status":    "started",
	})
}

// handleRefreshEmbeddings rebuilds the vector index from current summaries.
func (s *Server) handleRefreshEmbeddings(w http.ResponseWriter, r *http.Request) {
	count, err := s.ingest.RefreshEmbeddings(r.Context())
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":            "ok",
		"embedded_projects": count,
	})
}

// handleListProjects returns every stored project.
func (s *Server) handleListProjects(w http.ResponseWriter, _ *http.Request) {
	projects := s.store.List()
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"total_projects": len(projects),
		"projects":       projects,
	})
}

// handleGetProject returns one project by name.
func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	proj, err := s.store.Get(r.PathValue("name"))
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, proj)
}

// handlePatchProjectContent edits a project's summary and re-embeds it.
func (s *Server) handlePatchProjectContent(w http.ResponseWriter, r *http.Request) {
	var patch ContentPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	proj, err := s.ingest.EditProject(r.Context(), r.PathValue("name"), patch.ThreeLiner, patch.Technologies)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, proj)
}

// handlePatchProjectVisibility hides or unhides a project in matching.
func (s *Server) handlePatchProjectVisibility(w http.ResponseWriter, r *http.Request) {
	var patch VisibilityPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := patch.Validate(); err != nil {
		s.serviceError(w, err)
		return
	}

	name := r.PathValue("name")
	if err := s.ingest.SetHidden(name, *patch.HiddenFromSearch); err != nil {
		s.serviceError(w, err)
		return
	}

	proj, err := s.store.Get(name)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, proj)
}

// handleUpdateProject re-ingests a single repository in the background.
func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if _, err := s.store.Get(name); err != nil {
		s.serviceError(w, err)
		return
	}

	clientID := uuid.New().String()
	go func() {
		if err := s.ingest.UpdateProject(context.Background(), name, clientID); err != nil {
			log.Printf("[update] %s failed: %v", name, err)
		}
	}()

	s.jsonResponse(w, http.StatusAccepted, map[string]string{
		"client_id": clientID,
		"status":    "started",
	})
}
