package server

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adnane/cvforge/internal/github"
	"github.com/adnane/cvforge/internal/jobs"
	"github.com/adnane/cvforge/internal/letter"
	"github.com/adnane/cvforge/internal/project"
	"github.com/adnane/cvforge/internal/rendering"
	"github.com/adnane/cvforge/internal/summarize"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", (&MatchRequest{}).Validate(), http.StatusBadRequest},
		{"project not found", &project.NotFoundError{Name: "x"}, http.StatusNotFound},
		{"github not found", &github.NotFoundError{Resource: "x"}, http.StatusNotFound},
		{"rate limited", &github.RateLimitError{}, http.StatusTooManyRequests},
		{"parse failure", &jobs.ParseError{Message: "bad json"}, http.StatusBadGateway},
		{"summary failure", &summarize.SummaryError{RepoName: "x"}, http.StatusBadGateway},
		{"letter failure", &letter.GenerationError{Message: "bad json"}, http.StatusBadGateway},
		{"render rejected", &rendering.RenderError{Message: "no projects"}, http.StatusBadRequest},
		{"template broken", &rendering.TemplateError{Message: "parse"}, http.StatusInternalServerError},
		{"compile failed", &rendering.CompilationError{Message: "pdflatex"}, http.StatusInternalServerError},
		{"wrapped", &jobs.ParseError{Cause: errors.New("inner")}, http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
