package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"log"
	"net/http"
)

//go:embed templates/*.html templates/errors/*.html
var templateFS embed.FS

// Renderer executes the embedded HTML templates.
type Renderer struct {
	templates *template.Template
}

// NewRenderer parses every embedded template.
func NewRenderer() (*Renderer, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.html", "templates/errors/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{templates: templates}, nil
}

// Render executes one template to the response. The template runs into a
// buffer first so a rendering failure can still become a clean 500.
func (rn *Renderer) Render(w http.ResponseWriter, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := rn.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.Printf("[render] failed to execute template %s: %v", name, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// RenderTo executes one template into an existing buffer. Used when a
// response concatenates several fragments.
func (rn *Renderer) RenderTo(buf *bytes.Buffer, name string, data interface{}) error {
	return rn.templates.ExecuteTemplate(buf, name, data)
}
