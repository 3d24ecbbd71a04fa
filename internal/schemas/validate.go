// Package schemas holds the JSON Schemas for every structured artifact the
// language model produces, and validates model output against them before it
// enters the system.
package schemas

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed project_summary.json
var projectSummarySchema string

//go:embed job_analysis.json
var jobAnalysisSchema string

//go:embed cover_letter.json
var coverLetterSchema string

// ValidationError carries the individual field failures from a schema check.
type ValidationError struct {
	Schema string
	Errors []FieldError
}

// FieldError is a single validation failure at a specific field path.
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s validation failed:\n", ve.Schema)
	for i, err := range ve.Errors {
		fmt.Fprintf(&sb, "  %d. %s: %s\n", i+1, err.Field, err.Message)
	}
	return sb.String()
}

// SchemaLoadError means the schema itself could not be loaded or parsed, not
// that the document was invalid.
type SchemaLoadError struct {
	Schema string
	Cause  error
}

func (e *SchemaLoadError) Error() string {
	return fmt.Sprintf("failed to load schema %s: %v", e.Schema, e.Cause)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// ValidateProjectSummary checks model output for a repository summary.
func ValidateProjectSummary(jsonContent string) error {
	return validate("project_summary", projectSummarySchema, jsonContent)
}

// ValidateJobAnalysis checks model output for a parsed job description.
func ValidateJobAnalysis(jsonContent string) error {
	return validate("job_analysis", jobAnalysisSchema, jsonContent)
}

// ValidateCoverLetter checks model output for a generated cover letter.
func ValidateCoverLetter(jsonContent string) error {
	return validate("cover_letter", coverLetterSchema, jsonContent)
}

func validate(name, schemaContent, jsonContent string) error {
	schemaLoader := gojsonschema.NewStringLoader(schemaContent)
	documentLoader := gojsonschema.NewStringLoader(jsonContent)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{Schema: name, Cause: err}
	}

	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Schema: name,
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
