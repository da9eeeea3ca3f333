package api

import (
	"embed"
	"html/template"
	"time"

	"github.com/lox/transcriptfmt/internal/htmlutil"
)

//go:embed templates/*
var templateFS embed.FS

// newTemplates creates and parses the HTML templates with custom functions.
func newTemplates() *template.Template {
	funcs := template.FuncMap{
		// Processed output is trusted markup from the configured endpoint.
		"bodyHTML": func(s string) template.HTML {
			return template.HTML(htmlutil.BodyHTML(s))
		},
		"seconds": func(d time.Duration) string {
			return d.Round(100 * time.Millisecond).String()
		},
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}
