// Package view renders the HTML pages.
//
// Every page is a file defining a "content" template. At startup each page is
// parsed together with layout.html and the shared partials (files whose name
// starts with "_"), and stored under its path without the extension, e.g.
// "snippets/edit".
package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/sakif/conftrack/internal/apperror"
	"github.com/sakif/conftrack/internal/auth"
	"github.com/sakif/conftrack/internal/flash"
)

// Crumb is one breadcrumb. The last crumb usually has no URL.
type Crumb struct {
	Label string
	URL   string
}

type Breadcrumbs []Crumb

func (b *Breadcrumbs) Add(label, url string) {
	*b = append(*b, Crumb{Label: label, URL: url})
}

// Page carries the title and breadcrumbs of a page. Page data structs embed
// it so the layout can find them.
type Page struct {
	Title       string
	Breadcrumbs Breadcrumbs
}

func (p *Page) page() *Page { return p }

type pager interface {
	page() *Page
}

// layoutData is what the layout template sees.
type layoutData struct {
	Page      *Page
	Flash     flash.Messages
	Principal auth.Principal
	Content   any
}

// Templates is the production renderer.
type Templates struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"errorsFor": func(e *apperror.AppError, field string) []string {
		if e == nil {
			return nil
		}
		return e.For(field)
	},
	"fmtTime": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format("2006-01-02 15:04 UTC")
	},
	"fmtDate": func(t time.Time) string {
		if t.IsZero() {
			return "TBA"
		}
		return t.Format("2 Jan 2006")
	},
}

// New parses every page found in fsys.
func New(fsys fs.FS) (*Templates, error) {
	base := template.New("layout").Funcs(funcs)
	if _, err := base.ParseFS(fsys, "layout.html"); err != nil {
		return nil, fmt.Errorf("view: parsing layout: %w", err)
	}

	var pageFiles []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".html" || p == "layout.html" {
			return nil
		}
		if strings.HasPrefix(path.Base(p), "_") {
			if _, err := base.ParseFS(fsys, p); err != nil {
				return fmt.Errorf("parsing partial %s: %w", p, err)
			}
			return nil
		}
		pageFiles = append(pageFiles, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("view: %w", err)
	}

	t := &Templates{pages: make(map[string]*template.Template, len(pageFiles))}
	for _, p := range pageFiles {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("view: cloning layout for %s: %w", p, err)
		}
		if _, err := clone.ParseFS(fsys, p); err != nil {
			return nil, fmt.Errorf("view: parsing %s: %w", p, err)
		}
		t.pages[strings.TrimSuffix(p, ".html")] = clone
	}
	return t, nil
}

// Has reports whether a page called name exists.
func (t *Templates) Has(name string) bool {
	_, ok := t.pages[name]
	return ok
}

// Render executes page name inside the layout. Output is buffered so a
// template error never leaves a half-written page behind.
func (t *Templates) Render(w http.ResponseWriter, r *http.Request, status int, name string, data any) error {
	tmpl, ok := t.pages[name]
	if !ok {
		return fmt.Errorf("view: no template %q", name)
	}

	ld := layoutData{
		Flash:     flash.FromContext(r.Context()),
		Principal: auth.PrincipalFromContext(r.Context()),
		Content:   data,
	}
	if p, ok := data.(pager); ok {
		ld.Page = p.page()
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", ld); err != nil {
		return fmt.Errorf("view: executing %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
