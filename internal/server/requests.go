package server

import (
	"github.com/go-playground/validator/v10"

	"github.com/adnane/cvforge/internal/db"
	"github.com/adnane/cvforge/internal/match"
)

var validate = validator.New()

// ScrapeRequest starts a scrape of a GitHub user's repositories.
type ScrapeRequest struct {
	GitHubUsername string `json:"github_username" validate:"required"`
	ClientID       string `json:"client_id,omitempty"`
}

// Validate validates the ScrapeRequest using the validator.
func (r *ScrapeRequest) Validate() error {
	return validate.Struct(r)
}

// ContentPatch edits a project's summary content.
type ContentPatch struct {
	ThreeLiner   string   `json:"three_liner,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
}

// VisibilityPatch toggles a project's search visibility.
type VisibilityPatch struct {
	HiddenFromSearch *bool `json:"hidden_from_search" validate:"required"`
}

// Validate validates the VisibilityPatch using the validator.
func (r *VisibilityPatch) Validate() error {
	return validate.Struct(r)
}

// AnalyzeJobRequest parses a free-text job description.
type AnalyzeJobRequest struct {
	Description string `json:"description" validate:"required"`
	ClientID    string `json:"client_id,omitempty"`
}

// Validate validates the AnalyzeJobRequest using the validator.
func (r *AnalyzeJobRequest) Validate() error {
	return validate.Struct(r)
}

// MatchRequest finds projects similar to a job description.
type MatchRequest struct {
	JobDescription string `json:"job_description" validate:"required"`
	TopK           int    `json:"top_k,omitempty" validate:"omitempty,min=1,max=20"`
	ClientID       string `json:"client_id,omitempty"`
}

// Validate validates the MatchRequest using the validator.
func (r *MatchRequest) Validate() error {
	return validate.Struct(r)
}

// GenerateCVRequest renders and compiles a CV from selected projects.
type GenerateCVRequest struct {
	PersonalInfoID  int                    `json:"personal_info_id" validate:"required"`
	MatchedProjects []match.MatchedProject `json:"matched_projects" validate:"required,min=1"`
	TemplatePath    string                 `json:"template_path,omitempty"`
}

// Validate validates the GenerateCVRequest using the validator.
func (r *GenerateCVRequest) Validate() error {
	return validate.Struct(r)
}

// GenerateLetterRequest renders and compiles a cover letter.
type GenerateLetterRequest struct {
	PersonalInfoID  int                    `json:"personal_info_id" validate:"required"`
	JobDescription  string                 `json:"job_description" validate:"required"`
	MatchedProjects []match.MatchedProject `json:"matched_projects,omitempty"`
	TemplatePath    string                 `json:"template_path,omitempty"`
}

// Validate validates the GenerateLetterRequest using the validator.
func (r *GenerateLetterRequest) Validate() error {
	return validate.Struct(r)
}

// FullApplicationRequest runs the whole flow: analyze, match, generate both
// documents, and record the application.
type FullApplicationRequest struct {
	PersonalInfoID   int      `json:"personal_info_id" validate:"required"`
	JobDescription   string   `json:"job_description" validate:"required"`
	SelectedProjects []string `json:"selected_projects,omitempty"`
	TopK             int      `json:"top_k,omitempty" validate:"omitempty,min=1,max=20"`
	ClientID         string   `json:"client_id,omitempty"`
}

// Validate validates the FullApplicationRequest using the validator.
func (r *FullApplicationRequest) Validate() error {
	return validate.Struct(r)
}

// PersonalInfoRequest creates or replaces a personal info record.
type PersonalInfoRequest struct {
	FirstName  string               `json:"first_name" validate:"required"`
	LastName   string               `json:"last_name" validate:"required"`
	Email      string               `json:"email" validate:"required,email"`
	Phone      *string              `json:"phone,omitempty"`
	Address    *string              `json:"address,omitempty"`
	City       *string              `json:"city,omitempty"`
	PostalCode *string              `json:"postal_code,omitempty"`
	Title      *string              `json:"title,omitempty"`
	Summary    *string              `json:"summary,omitempty"`
	LinkedIn   *string              `json:"linkedin,omitempty"`
	GitHub     *string              `json:"github,omitempty"`
	Skills     map[string][]string  `json:"skills,omitempty"`
	Experience []db.ExperienceEntry `json:"experience,omitempty"`
	Education  []db.EducationEntry  `json:"education,omitempty"`
}

// Validate validates the PersonalInfoRequest using the validator.
func (r *PersonalInfoRequest) Validate() error {
	return validate.Struct(r)
}

// ToRecord converts the request into a storage record.
func (r *PersonalInfoRequest) ToRecord() *db.PersonalInfo {
	return &db.PersonalInfo{
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Email:      r.Email,
		Phone:      r.Phone,
		Address:    r.Address,
		City:       r.City,
		PostalCode: r.PostalCode,
		Title:      r.Title,
		Summary:    r.Summary,
		LinkedIn:   r.LinkedIn,
		GitHub:     r.GitHub,
		Skills:     r.Skills,
		Experience: r.Experience,
		Education:  r.Education,
	}
}

// ApplicationRequest creates or replaces a job application record.
type ApplicationRequest struct {
	PersonalInfoID  *int    `json:"personal_info_id,omitempty"`
	JobTitle        string  `json:"job_title" validate:"required"`
	CompanyName     string  `json:"company_name" validate:"required"`
	JobDescription  *string `json:"job_description,omitempty"`
	JobRequirements *string `json:"job_requirements,omitempty"`
	Status          string  `json:"status,omitempty" validate:"omitempty,oneof=applied interview accepted rejected other"`
	Notes           *string `json:"notes,omitempty"`
}

// Validate validates the ApplicationRequest using the validator.
func (r *ApplicationRequest) Validate() error {
	return validate.Struct(r)
}

// ToRecord converts the request into a storage record.
func (r *ApplicationRequest) ToRecord() *db.JobApplication {
	return &db.JobApplication{
		PersonalInfoID:  r.PersonalInfoID,
		JobTitle:        r.JobTitle,
		CompanyName:     r.CompanyName,
		JobDescription:  r.JobDescription,
		JobRequirements: r.JobRequirements,
		Status:          r.Status,
		Notes:           r.Notes,
	}
}
