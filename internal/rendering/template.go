package rendering

import (
	"embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/jonathan/fairguide/internal/companies"
)

//go:embed templates/company_page.tex
var templateFS embed.FS

const defaultTemplate = "templates/company_page.tex"

// Renderer renders companies into a LaTeX document. It is safe for
// concurrent use; the parsed template is never modified after New.
type Renderer struct {
	tmpl *template.Template
}

// New parses the page template at templatePath, or the embedded default
// template when templatePath is empty.
func New(templatePath string) (*Renderer, error) {
	content, err := readTemplate(templatePath)
	if err != nil {
		return nil, err
	}

	// Parse template with custom delimiters so LaTeX braces stay literal
	tmpl, err := template.New("company_page").
		Delims("(((", ")))").
		Option("missingkey=error").
		Funcs(template.FuncMap{
			"l":       EscapeLaTeX,
			"newline": NewlineToBreak,
			"path":    Path,
			"join":    strings.Join,
		}).
		Parse(content)
	if err != nil {
		return nil, &TemplateError{
			Message: "failed to parse template",
			Cause:   err,
		}
	}

	return &Renderer{tmpl: tmpl}, nil
}

// readTemplate reads a template override or the embedded default
func readTemplate(templatePath string) (string, error) {
	if templatePath == "" {
		content, err := templateFS.ReadFile(defaultTemplate)
		if err != nil {
			return "", &TemplateError{Message: "failed to read embedded template", Cause: err}
		}
		return string(content), nil
	}

	content, err := os.ReadFile(templatePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &TemplateError{
				Message: fmt.Sprintf("template file not found: %s", templatePath),
				Cause:   err,
			}
		}
		return "", &TemplateError{
			Message: fmt.Sprintf("failed to read template file: %s", templatePath),
			Cause:   err,
		}
	}
	return string(content), nil
}

// Render produces one document containing a page for each company, in the
// given order. A field the template references but the data lacks aborts
// rendering with a TemplateError naming the field.
func (r *Renderer) Render(cs ...companies.Company) (string, error) {
	if len(cs) == 0 {
		return "", &RenderError{Message: "no companies to render"}
	}

	pages := make([]map[string]any, 0, len(cs))
	for _, c := range cs {
		pages = append(pages, companyData(c))
	}

	var result strings.Builder
	if err := r.tmpl.Execute(&result, map[string]any{"Companies": pages}); err != nil {
		return "", &TemplateError{
			Message: "failed to execute template",
			Cause:   err,
		}
	}

	return result.String(), nil
}

// companyData exposes exactly the fields a page template may reference.
// Values are raw; escaping happens in the template through l.
func companyData(c companies.Company) map[string]any {
	return map[string]any{
		"ID":           c.ID,
		"Name":         c.Name,
		"Website":      c.Website,
		"Contact":      c.Contact,
		"Booth":        c.Booth,
		"InterestedIn": c.InterestedIn,
		"FullTime":     c.FullTime,
		"EntryLevel":   c.EntryLevel,
		"Thesis":       c.Thesis,
		"About":        c.About,
		"Focus":        c.Focus,
		"Employees":    c.Employees,
		"MediaPackage": c.MediaPackage,
		"HasAd":        c.HasAd,
		"LogoPath":     c.Logo.Path,
		"AdPath":       c.Ad.Path,
	}
}
