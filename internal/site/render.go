package site

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/wonny/signalboard/internal/contracts"
)

//go:embed templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Cache-Control values of the HTML pages
const (
	CacheMarketing = "public, max-age=0, s-maxage=3600"
	CacheStock     = "public, s-maxage=300"
	CachePrivate   = "private, no-store"
	CacheNotFound  = "no-store"
)

// page is the data every template receives
type page struct {
	Title       string
	Description string
	SiteURL     string
	Path        string
	ShowPopup   bool
	Data        interface{}
}

var funcs = template.FuncMap{
	"pct":    func(v float64) string { return fmt.Sprintf("%.0f%%", v*100) },
	"usd":    func(v float64) string { return fmt.Sprintf("$%.2f", v) },
	"signed": func(v float64) string { return fmt.Sprintf("%+.2f", v) },
	"deref": func(v *float64) float64 {
		if v == nil {
			return 0
		}
		return *v
	},
	"excess": func(p *contracts.PerformancePayload) string {
		if v, ok := p.Excess(); ok {
			return fmt.Sprintf("%+.2f", v)
		}
		return ""
	},
}

// templates holds one parsed set per page: layout plus the page's content block
type templates map[string]*template.Template

func parseTemplates() (templates, error) {
	layout, err := template.New("layout").Funcs(funcs).ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	pages, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}

	out := make(templates, len(pages))
	for _, p := range pages {
		t, err := template.Must(layout.Clone()).ParseFS(templateFS, p)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", p, err)
		}
		name := p[len("templates/pages/") : len(p)-len(".html")]
		out[name] = t
	}
	return out, nil
}

// render executes into a buffer first so a template error never sends a half page
func (t templates) render(w http.ResponseWriter, status int, cacheControl, name string, data page) error {
	tmpl, ok := t[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", cacheControl)
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
	return nil
}

// StaticHandler serves the embedded assets under /static/
func StaticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=86400")
		fileServer.ServeHTTP(w, r)
	})
}
