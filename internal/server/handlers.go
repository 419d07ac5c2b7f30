package server

import (
	"fmt"
	"html/template"
	"net/http"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="de">
<head>
<meta charset="utf-8">
<title>Messeführer</title>
</head>
<body>
<h1>Messeführer</h1>
<p><a href="/guide.pdf">Gesamter Messeführer (PDF)</a></p>
<ul>
{{- range .}}
<li><a href="/companies/{{.ID}}/page.pdf">{{.Name}}</a></li>
{{- end}}
</ul>
</body>
</html>
`))

// handleIndex lists the participating companies with links to their pages
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	listings, err := s.guide.GetCompanies(r.Context())
	if err != nil {
		s.failResponse(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := indexTemplate.Execute(w, listings); err != nil {
		s.log.Error("failed to render index", "error", err)
	}
}

// handleListCompanies returns the participating companies ordered by name
func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	listings, err := s.guide.GetCompanies(r.Context())
	if err != nil {
		s.failResponse(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"companies": listings,
		"count":     len(listings),
	})
}

// handleGetCompany returns the normalized record of one company
func (s *Server) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		s.errorResponse(w, http.StatusBadRequest, "Company ID is required")
		return
	}

	company, err := s.guide.GetCompany(r.Context(), id)
	if err != nil {
		s.failResponse(w, r, err)
		return
	}
	if company == nil {
		s.errorResponse(w, http.StatusNotFound, "Company not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, company)
}

// handleCompanyTeX returns the page markup of one company without compiling it
func (s *Server) handleCompanyTeX(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		s.errorResponse(w, http.StatusBadRequest, "Company ID is required")
		return
	}

	tex, err := s.guide.RenderTeX(r.Context(), id)
	if err != nil {
		s.failResponse(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=page.tex")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(tex))
}

// handleCompanyPDF compiles and returns the page of one company
func (s *Server) handleCompanyPDF(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		s.errorResponse(w, http.StatusBadRequest, "Company ID is required")
		return
	}

	pdf, err := s.guide.RenderCompany(r.Context(), id)
	if err != nil {
		s.failResponse(w, r, err)
		return
	}
	s.pdfResponse(w, "page.pdf", pdf)
}

// handleGuidePDF compiles the pages of all participating companies into one document
func (s *Server) handleGuidePDF(w http.ResponseWriter, r *http.Request) {
	pdf, err := s.guide.RenderGuide(r.Context())
	if err != nil {
		s.failResponse(w, r, err)
		return
	}
	s.pdfResponse(w, "guide.pdf", pdf)
}

func (s *Server) pdfResponse(w http.ResponseWriter, filename string, pdf []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%s", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(pdf)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
