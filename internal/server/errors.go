package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/fairguide/internal/assets"
	"github.com/jonathan/fairguide/internal/crm"
	"github.com/jonathan/fairguide/internal/guide"
	"github.com/jonathan/fairguide/internal/latex"
	"github.com/jonathan/fairguide/internal/rendering"
)

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		compileErr  *latex.CompilationError
		crmErr      *crm.Error
		fetchErr    *assets.FetchError
		templateErr *rendering.TemplateError
	)

	switch {
	case errors.Is(err, guide.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &compileErr):
		return http.StatusInternalServerError
	case errors.As(err, &crmErr), errors.As(err, &fetchErr):
		return http.StatusBadGateway
	case errors.As(err, &templateErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage is the client-facing text for err. Compiler failures carry
// the compiler log so the offending markup can be found.
func errorMessage(err error) string {
	var compileErr *latex.CompilationError
	if errors.As(err, &compileErr) {
		return compileErr.Error()
	}
	var crmErr *crm.Error
	if errors.As(err, &crmErr) {
		return "CRM request failed: " + crmErr.Error()
	}
	var fetchErr *assets.FetchError
	if errors.As(err, &fetchErr) {
		return "asset download failed: " + fetchErr.Error()
	}
	return err.Error()
}

// failResponse logs err and writes it with the status HTTPStatus picks.
func (s *Server) failResponse(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "path", r.URL.Path, "status", status, "error", err)
	}
	s.errorResponse(w, status, errorMessage(err))
}
