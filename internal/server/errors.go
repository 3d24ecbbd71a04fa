package server

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/adnane/cvforge/internal/github"
	"github.com/adnane/cvforge/internal/jobs"
	"github.com/adnane/cvforge/internal/letter"
	"github.com/adnane/cvforge/internal/project"
	"github.com/adnane/cvforge/internal/rendering"
	"github.com/adnane/cvforge/internal/summarize"
)

// HTTPStatus returns the appropriate HTTP status code for an error.
// Validation problems are the client's fault, upstream problems surface as
// gateway errors, and LaTeX failures stay internal (their diagnostic travels
// in the message).
func HTTPStatus(err error) int {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return http.StatusBadRequest
	}

	var projectNotFound *project.NotFoundError
	var ghNotFound *github.NotFoundError
	if errors.As(err, &projectNotFound) || errors.As(err, &ghNotFound) {
		return http.StatusNotFound
	}

	var rateLimited *github.RateLimitError
	if errors.As(err, &rateLimited) {
		return http.StatusTooManyRequests
	}

	var ghErr *github.RequestError
	var parseErr *jobs.ParseError
	var summaryErr *summarize.SummaryError
	var letterErr *letter.GenerationError
	if errors.As(err, &ghErr) || errors.As(err, &parseErr) ||
		errors.As(err, &summaryErr) || errors.As(err, &letterErr) {
		return http.StatusBadGateway
	}

	var renderErr *rendering.RenderError
	if errors.As(err, &renderErr) {
		return http.StatusBadRequest
	}

	var tmplErr *rendering.TemplateError
	var compileErr *rendering.CompilationError
	if errors.As(err, &tmplErr) || errors.As(err, &compileErr) {
		return http.StatusInternalServerError
	}

	return http.StatusInternalServerError
}
