package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/adnane/cvforge/internal/db"
	"github.com/adnane/cvforge/internal/jobs"
	"github.com/adnane/cvforge/internal/match"
	"github.com/adnane/cvforge/internal/progress"
	"github.com/adnane/cvforge/internal/rendering"
)

// generatedDocument describes one compiled PDF in API responses.
type generatedDocument struct {
	Filename    string   `json:"filename"`
	DownloadURL string   `json:"download_url"`
	Warnings    []string `json:"warnings,omitempty"`
}

// handleGenerateCV renders and compiles a CV for the given person and
// projects.
func (s *Server) handleGenerateCV(w http.ResponseWriter, r *http.Request) {
	var req GenerateCVRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.serviceError(w, err)
		return
	}

	info, err := s.requirePersonalInfo(r.Context(), w, req.PersonalInfoID)
	if info == nil || err != nil {
		return
	}

	doc, err := s.generateCV(r.Context(), info, req.MatchedProjects, req.TemplatePath)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, doc)
}

// handleGenerateCoverLetter writes, renders, and compiles a cover letter.
func (s *Server) handleGenerateCoverLetter(w http.ResponseWriter, r *http.Request) {
	var req GenerateLetterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.serviceError(w, err)
		return
	}

	info, err := s.requirePersonalInfo(r.Context(), w, req.PersonalInfoID)
	if info == nil || err != nil {
		return
	}

	analysis, err := s.analyzer.Analyze(r.Context(), req.JobDescription)
	if err != nil {
		s.serviceError(w, err)
		return
	}

	doc, _, err := s.generateCoverLetter(r.Context(), info, analysis.Title, req.JobDescription, req.MatchedProjects, req.TemplatePath)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, doc)
}

// handleGenerateFullApplication runs the whole flow for one job posting:
// analyze it, pick projects, generate both documents concurrently, and record
// the application.
func (s *Server) handleGenerateFullApplication(w http.ResponseWriter, r *http.Request) {
	var req FullApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.serviceError(w, err)
		return
	}

	info, err := s.requirePersonalInfo(r.Context(), w, req.PersonalInfoID)
	if info == nil || err != nil {
		return
	}

	s.publishStatus(req.ClientID, "Analyzing job description...")
	analysis, err := s.analyzer.Analyze(r.Context(), req.JobDescription)
	if err != nil {
		s.serviceError(w, err)
		return
	}

	s.publishStatus(req.ClientID, "Selecting projects...")
	projects, err := s.selectProjects(r.Context(), req)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	if len(projects) == 0 {
		s.errorResponse(w, http.StatusBadRequest, "No projects available to match. Scrape some repositories first.")
		return
	}

	s.publishStatus(req.ClientID, "Generating documents...")

	var (
		cvDoc      *generatedDocument
		letterDoc  *generatedDocument
		letterMeta *letterResult
	)
	g, gctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var genErr error
		cvDoc, genErr = s.generateCV(gctx, info, projects, "")
		return genErr
	})
	g.Go(func() error {
		var genErr error
		letterDoc, letterMeta, genErr = s.generateCoverLetter(gctx, info, analysis.Title, req.JobDescription, projects, "")
		return genErr
	})
	if err := g.Wait(); err != nil {
		s.serviceError(w, err)
		return
	}

	response := map[string]any{
		"job_analysis":     analysis,
		"matched_projects": projects,
		"cv":               cvDoc,
		"cover_letter":     letterDoc,
	}

	if s.db != nil {
		app, recErr := s.recordApplication(r.Context(), req.PersonalInfoID, analysis, letterMeta, projects, cvDoc, letterDoc)
		if recErr != nil {
			s.serviceError(w, recErr)
			return
		}
		response["application"] = app
	}

	s.publishStatus(req.ClientID, "Application generated")
	if req.ClientID != "" {
		s.hub.Publish(req.ClientID, progress.NewEvent(progress.TypeComplete, "done"))
	}
	s.jsonResponse(w, http.StatusOK, response)
}

// letterResult carries the generated letter content between steps.
type letterResult struct {
	CompanyName string
	Body        string
}

// generateCV renders the CV template and compiles it to a PDF in the output
// directory.
func (s *Server) generateCV(ctx context.Context, info *db.PersonalInfo, projects []match.MatchedProject, templatePath string) (*generatedDocument, error) {
	if templatePath == "" {
		templatePath = filepath.Join(s.cfg.TemplatesDir, "cv_template.tex")
	}

	tex, warnings, err := rendering.RenderCV(info, projects, templatePath)
	if err != nil {
		return nil, err
	}

	baseName := fmt.Sprintf("cv_%s_%s", sanitizeFileToken(info.LastName), shortID())
	pdfPath, _, err := rendering.Compile(ctx, tex, s.cfg.OutputDir, baseName)
	if err != nil {
		return nil, err
	}

	filename := filepath.Base(pdfPath)
	return &generatedDocument{
		Filename:    filename,
		DownloadURL: "/download/" + filename,
		Warnings:    warnings,
	}, nil
}

// generateCoverLetter asks the model for letter content, fills the letter
// template, and compiles it.
func (s *Server) generateCoverLetter(ctx context.Context, info *db.PersonalInfo, jobTitle, jobDescription string, projects []match.MatchedProject, templatePath string) (*generatedDocument, *letterResult, error) {
	if templatePath == "" {
		templatePath = filepath.Join(s.cfg.TemplatesDir, "cover_letter_template.tex")
	}

	templateText, err := os.ReadFile(templatePath)
	if err != nil {
		return nil, nil, &rendering.TemplateError{Message: "reading cover letter template", Cause: err}
	}

	content, err := s.letters.Generate(ctx, string(templateText), jobDescription, projects)
	if err != nil {
		return nil, nil, err
	}

	tex, warnings, err := rendering.RenderCoverLetter(info, jobTitle, content.CompanyName, content.Body, projects, templatePath)
	if err != nil {
		return nil, nil, err
	}

	baseName := fmt.Sprintf("cover_letter_%s_%s", content.CompanyName, shortID())
	pdfPath, _, err := rendering.Compile(ctx, tex, s.cfg.OutputDir, baseName)
	if err != nil {
		return nil, nil, err
	}

	filename := filepath.Base(pdfPath)
	doc := &generatedDocument{
		Filename:    filename,
		DownloadURL: "/download/" + filename,
		Warnings:    warnings,
	}
	return doc, &letterResult{CompanyName: content.CompanyName, Body: content.Body}, nil
}

// selectProjects resolves the projects for a full application: the caller's
// explicit selection when given, otherwise a vector match against the job.
func (s *Server) selectProjects(ctx context.Context, req FullApplicationRequest) ([]match.MatchedProject, error) {
	if len(req.SelectedProjects) == 0 {
		return s.matcher.Match(ctx, req.JobDescription, req.TopK)
	}

	selected := make([]match.MatchedProject, 0, len(req.SelectedProjects))
	for _, name := range req.SelectedProjects {
		proj, err := s.store.Get(name)
		if err != nil {
			return nil, err
		}
		selected = append(selected, match.MatchedProject{
			Project:         proj,
			SimilarityScore: 1,
			RelevanceReason: match.RelevanceReason(req.JobDescription, proj),
		})
	}
	return selected, nil
}

// recordApplication stores the generated application in the database.
func (s *Server) recordApplication(ctx context.Context, personID int, analysis *jobs.JobDescriptionResult, letter *letterResult, projects []match.MatchedProject, cvDoc, letterDoc *generatedDocument) (*db.JobApplication, error) {
	matched, err := json.Marshal(projects)
	if err != nil {
		return nil, err
	}

	company := analysis.Company
	if company == "" && letter != nil {
		company = letter.CompanyName
	}
	if company == "" {
		company = "Unknown"
	}

	requirements := strings.Join(analysis.Requirements, "\n")
	cvPath := filepath.Join(s.cfg.OutputDir, cvDoc.Filename)
	letterPath := filepath.Join(s.cfg.OutputDir, letterDoc.Filename)

	app := &db.JobApplication{
		PersonalInfoID:         &personID,
		JobTitle:               analysis.Title,
		CompanyName:            company,
		JobDescription:         &analysis.FullDescription,
		JobRequirements:        &requirements,
		CVFilePath:             &cvPath,
		CoverLetterFilePath:    &letterPath,
		CVDownloadURL:          &cvDoc.DownloadURL,
		CoverLetterDownloadURL: &letterDoc.DownloadURL,
		MatchedProjects:        matched,
	}
	return s.db.CreateApplication(ctx, app)
}

// requirePersonalInfo loads a personal info record or writes a 404/500 and
// returns nil.
func (s *Server) requirePersonalInfo(ctx context.Context, w http.ResponseWriter, id int) (*db.PersonalInfo, error) {
	if s.db == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "Database is not configured")
		return nil, nil
	}
	info, err := s.db.GetPersonalInfo(ctx, id)
	if err != nil {
		s.serviceError(w, err)
		return nil, err
	}
	if info == nil {
		s.errorResponse(w, http.StatusNotFound, fmt.Sprintf("Personal info %d not found", id))
		return nil, nil
	}
	return info, nil
}

// publishStatus emits a status event when the caller asked to follow along.
func (s *Server) publishStatus(clientID, message string) {
	if clientID == "" {
		return
	}
	s.hub.Publish(clientID, progress.NewEvent(progress.TypeStatus, message))
}

func shortID() string {
	return uuid.New().String()[:8]
}

// sanitizeFileToken keeps a name safe for use inside an output filename.
func sanitizeFileToken(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "candidate"
	}
	return b.String()
}
