package server

import (
	"encoding/json"
	"net/http"
)

// handleAnalyzeJob extracts structured fields from a pasted job description.
func (s *Server) handleAnalyzeJob(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.serviceError(w, err)
		return
	}

	result, err := s.analyzer.Analyze(r.Context(), req.Description)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleMatchProjects ranks stored projects against a job description.
func (s *Server) handleMatchProjects(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.serviceError(w, err)
		return
	}

	matches, err := s.matcher.Match(r.Context(), req.JobDescription, req.TopK)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"total_matches":    len(matches),
		"matched_projects": matches,
	})
}
