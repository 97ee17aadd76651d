package web

import (
	"embed"
	"errors"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path"
	"sync"
)

//go:embed templates static
var assets embed.FS

// TemplateEngine handles HTML template rendering
type TemplateEngine struct {
	fsys      fs.FS
	reload    bool // dev mode: reload on each request
	mu        sync.RWMutex
	templates *template.Template
}

// NewTemplateEngine creates a new template engine reading templatesDir, or
// the templates built into the binary when templatesDir is empty.
func NewTemplateEngine(templatesDir string, reload bool) *TemplateEngine {
	if templatesDir == "" {
		sub, _ := fs.Sub(assets, "templates")
		return &TemplateEngine{fsys: sub}
	}
	return &TemplateEngine{fsys: os.DirFS(templatesDir), reload: reload}
}

// StaticFS returns the static assets built into the binary.
func StaticFS() fs.FS {
	sub, _ := fs.Sub(assets, "static")
	return sub
}

// Load parses all templates outside the pages directory
func (te *TemplateEngine) Load() error {
	tmpl := template.New("")

	err := fs.WalkDir(te.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Skip pages directory - these are loaded on-demand
		if d.IsDir() && d.Name() == "pages" {
			return fs.SkipDir
		}

		if !d.IsDir() && path.Ext(p) == ".html" {
			_, err = tmpl.ParseFS(te.fsys, p)
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	te.mu.Lock()
	te.templates = tmpl
	te.mu.Unlock()
	return nil
}

func (te *TemplateEngine) base() (*template.Template, error) {
	if te.reload {
		if err := te.Load(); err != nil {
			return nil, err
		}
	}
	te.mu.RLock()
	defer te.mu.RUnlock()
	if te.templates == nil {
		return nil, errors.New("templates not loaded")
	}
	return te.templates, nil
}

func (te *TemplateEngine) page(name string) (*template.Template, error) {
	base, err := te.base()
	if err != nil {
		return nil, err
	}

	// Clone base templates and parse page-specific template
	tmpl, err := base.Clone()
	if err != nil {
		return nil, err
	}
	return tmpl.ParseFS(te.fsys, path.Join("pages", name+".html"))
}

// Render renders a page inside the layout
func (te *TemplateEngine) Render(w io.Writer, name string, data interface{}) error {
	tmpl, err := te.page(name)
	if err != nil {
		return err
	}
	return tmpl.ExecuteTemplate(w, "layout", data)
}

// RenderContent renders only the content template without layout (for HTMX)
func (te *TemplateEngine) RenderContent(w io.Writer, name string, data interface{}) error {
	tmpl, err := te.page(name)
	if err != nil {
		return err
	}
	return tmpl.ExecuteTemplate(w, "content", data)
}

// RenderPartial renders a named template (partial). The base set is never
// executed directly: html/template refuses to clone a set once it has run.
func (te *TemplateEngine) RenderPartial(w io.Writer, name string, data interface{}) error {
	base, err := te.base()
	if err != nil {
		return err
	}
	tmpl, err := base.Clone()
	if err != nil {
		return err
	}
	return tmpl.ExecuteTemplate(w, name, data)
}
