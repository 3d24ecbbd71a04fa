package db

import (
	"encoding/json"
	"time"
)

// Application status values
const (
	StatusApplied   = "applied"
	StatusInterview = "interview"
	StatusAccepted  = "accepted"
	StatusRejected  = "rejected"
	StatusOther     = "other"
)

// ValidStatus reports whether s is one of the known application statuses.
// Transitions are free-form; only the vocabulary is enforced.
func ValidStatus(s string) bool {
	switch s {
	case StatusApplied, StatusInterview, StatusAccepted, StatusRejected, StatusOther:
		return true
	}
	return false
}

// ExperienceEntry is one position in the candidate's work history.
type ExperienceEntry struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location,omitempty"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date,omitempty"`
	Description string `json:"description,omitempty"`
}

// EducationEntry is one degree or certification.
type EducationEntry struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Location    string `json:"location,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	Description string `json:"description,omitempty"`
}

// PersonalInfo is the candidate's contact block plus CV sections. Skills maps
// a category name to its skill list; the three JSON columns keep their shape
// flexible without schema churn.
type PersonalInfo struct {
	ID         int                 `json:"id"`
	FirstName  string              `json:"first_name"`
	LastName   string              `json:"last_name"`
	Email      string              `json:"email"`
	Phone      *string             `json:"phone,omitempty"`
	Address    *string             `json:"address,omitempty"`
	City       *string             `json:"city,omitempty"`
	PostalCode *string             `json:"postal_code,omitempty"`
	Title      *string             `json:"title,omitempty"`
	Summary    *string             `json:"summary,omitempty"`
	LinkedIn   *string             `json:"linkedin,omitempty"`
	GitHub     *string             `json:"github,omitempty"`
	Skills     map[string][]string `json:"skills,omitempty"`
	Experience []ExperienceEntry   `json:"experience,omitempty"`
	Education  []EducationEntry    `json:"education,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// JobApplication tracks one application: the posting, the generated
// documents, and where the process stands.
type JobApplication struct {
	ID                     int             `json:"id"`
	PersonalInfoID         *int            `json:"personal_info_id,omitempty"`
	JobTitle               string          `json:"job_title"`
	CompanyName            string          `json:"company_name"`
	JobDescription         *string         `json:"job_description,omitempty"`
	JobRequirements        *string         `json:"job_requirements,omitempty"`
	CVFilePath             *string         `json:"cv_file_path,omitempty"`
	CoverLetterFilePath    *string         `json:"cover_letter_file_path,omitempty"`
	CVDownloadURL          *string         `json:"cv_download_url,omitempty"`
	CoverLetterDownloadURL *string         `json:"cover_letter_download_url,omitempty"`
	MatchedProjects        json.RawMessage `json:"matched_projects,omitempty"`
	ApplicationDate        time.Time       `json:"application_date"`
	Status                 string          `json:"status"`
	Notes                  *string         `json:"notes,omitempty"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
}
