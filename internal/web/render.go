package web

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/hpungsan/algenova/internal/errors"
	"github.com/hpungsan/algenova/internal/ops"
)

// PageData holds common fields for all page templates.
type PageData struct {
	Title   string
	Version string
}

// DetailPageData is the template data for a solution transcript.
type DetailPageData struct {
	PageData
	Solution *ops.FetchOutput
	Body     template.HTML
}

// ErrorPageData is the template data for error pages.
type ErrorPageData struct {
	PageData
	StatusCode int
	Message    string
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates map[string]*template.Template
	markdown  goldmark.Markdown
	version   string
}

// NewRenderer creates a Renderer by parsing templates from the given FS.
func NewRenderer(templateFS fs.FS, version string) *Renderer {
	funcMap := template.FuncMap{
		"formatTime": formatTime,
	}

	// Parse layout as the base template
	layoutTmpl := template.Must(template.New("layout").Funcs(funcMap).ParseFS(templateFS, "layout.html"))

	pages := map[string]string{
		"detail": "detail.html",
		"error":  "error.html",
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t := template.Must(layoutTmpl.Clone())
		template.Must(t.ParseFS(templateFS, file))
		templates[name] = t
	}

	return &Renderer{
		templates: templates,
		markdown:  goldmark.New(goldmark.WithExtensions(extension.Table)),
		version:   version,
	}
}

// renderPage renders a named page template with the given data and HTTP status code.
func (r *Renderer) renderPage(w http.ResponseWriter, status int, name string, data any) {
	t, ok := r.templates[name]
	if !ok {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderMarkdown converts markdown text to HTML using goldmark.
func (r *Renderer) renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// renderErrorPage renders an error as HTML for browser clients.
func (r *Renderer) renderErrorPage(w http.ResponseWriter, err error) {
	nErr := asNovaError(err)
	r.renderPage(w, nErr.Status, "error", ErrorPageData{
		PageData: PageData{
			Title:   fmt.Sprintf("Error %d", nErr.Status),
			Version: r.version,
		},
		StatusCode: nErr.Status,
		Message:    nErr.Message,
	})
}

// renderError writes err as JSON. The body carries the message under
// "error", the code, and any details as sibling keys.
func renderError(w http.ResponseWriter, err error) {
	nErr := asNovaError(err)
	body := map[string]any{
		"error": nErr.Message,
		"code":  string(nErr.Code),
	}
	for k, v := range nErr.Details {
		body[k] = v
	}
	renderJSON(w, nErr.Status, body)
}

func asNovaError(err error) *errors.NovaError {
	var nErr *errors.NovaError
	if !stderrors.As(err, &nErr) {
		nErr = errors.NewInternal(err)
	}
	return nErr
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// wantsHTML reports whether the client asked for an HTML page.
func wantsHTML(r *http.Request) bool {
	if f := r.URL.Query().Get("format"); f != "" {
		return f == "html"
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

// formatTime formats a Unix timestamp as "2006-01-02 15:04" UTC.
func formatTime(unix int64) string {
	return time.Unix(unix, 0).UTC().Format("2006-01-02 15:04")
}
