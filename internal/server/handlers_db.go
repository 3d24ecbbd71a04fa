package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/adnane/cvforge/internal/db"
)

// handleListPersonalInfo returns every stored personal info record.
func (s *Server) handleListPersonalInfo(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w) {
		return
	}
	records, err := s.db.ListPersonalInfo(r.Context())
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"total":         len(records),
		"personal_info": records,
	})
}

// handleCreatePersonalInfo stores a new personal info record.
func (s *Server) handleCreatePersonalInfo(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w) {
		return
	}
	var req PersonalInfoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.serviceError(w, err)
		return
	}

	created, err := s.db.CreatePersonalInfo(r.Context(), req.ToRecord())
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, created)
}

// handleGetPersonalInfo returns one personal info record by id.
func (s *Server) handleGetPersonalInfo(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w) {
		return
	}
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	info, err := s.db.GetPersonalInfo(r.Context(), id)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	if info == nil {
		s.errorResponse(w, http.StatusNotFound, fmt.Sprintf("Personal info %d not found", id))
		return
	}
	s.jsonResponse(w, http.StatusOK, info)
}

// handleUpdatePersonalInfo replaces a personal info record.
func (s *Server) handleUpdatePersonalInfo(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w) {
		return
	}
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	var req PersonalInfoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.serviceError(w, err)
		return
	}

	updated, err := s.db.UpdatePersonalInfo(r.Context(), id, req.ToRecord())
	if err != nil {
		s.serviceError(w, err)
		return
	}
	if updated == nil {
		s.errorResponse(w, http.StatusNotFound, fmt.Sprintf("Personal info %d not found", id))
		return
	}
	s.jsonResponse(w, http.StatusOK, updated)
}

// handleListApplicationsForPerson returns the applications tied to one
// person.
func (s *Server) handleListApplicationsForPerson(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w) {
		return
	}
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	filter := applicationFilterFromQuery(r)
	filter.PersonalInfoID = id

	apps, err := s.db.ListApplications(r.Context(), filter)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"total":        len(apps),
		"applications": apps,
	})
}

// handleListApplications returns applications, optionally filtered by status
// or a title/company search.
func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w) {
		return
	}
	filter := applicationFilterFromQuery(r)

	apps, err := s.db.ListApplications(r.Context(), filter)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"total":        len(apps),
		"applications": apps,
	})
}

// handleCreateApplication records an application entered by hand.
func (s *Server) handleCreateApplication(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w) {
		return
	}
	var req ApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.serviceError(w, err)
		return
	}

	created, err := s.db.CreateApplication(r.Context(), req.ToRecord())
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, created)
}

// handleGetApplication returns one application by id.
func (s *Server) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w) {
		return
	}
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	app, err := s.db.GetApplication(r.Context(), id)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	if app == nil {
		s.errorResponse(w, http.StatusNotFound, fmt.Sprintf("Job application %d not found", id))
		return
	}
	s.jsonResponse(w, http.StatusOK, app)
}

// handleUpdateApplication replaces an application's mutable fields.
func (s *Server) handleUpdateApplication(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w) {
		return
	}
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	var req ApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.serviceError(w, err)
		return
	}

	updated, err := s.db.UpdateApplication(r.Context(), id, req.ToRecord())
	if err != nil {
		s.serviceError(w, err)
		return
	}
	if updated == nil {
		s.errorResponse(w, http.StatusNotFound, fmt.Sprintf("Job application %d not found", id))
		return
	}
	s.jsonResponse(w, http.StatusOK, updated)
}

// handleDeleteApplication removes an application.
func (s *Server) handleDeleteApplication(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w) {
		return
	}
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	deleted, err := s.db.DeleteApplication(r.Context(), id)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	if !deleted {
		s.errorResponse(w, http.StatusNotFound, fmt.Sprintf("Job application %d not found", id))
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// applicationFilterFromQuery builds a filter from the status and q query
// parameters.
func applicationFilterFromQuery(r *http.Request) db.ApplicationFilter {
	return db.ApplicationFilter{
		Status: r.URL.Query().Get("status"),
		Search: r.URL.Query().Get("q"),
	}
}

// pathID parses the {id} path segment, writing a 400 on garbage.
func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid id: "+r.PathValue("id"))
		return 0, false
	}
	return id, true
}

// requireDB rejects database endpoints when no database is configured.
func (s *Server) requireDB(w http.ResponseWriter) bool {
	if s.db == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "Database is not configured")
		return false
	}
	return true
}
