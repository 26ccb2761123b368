// Package web holds the embedded HTML templates.
package web

import (
	"embed"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/s/eduportal/internal/models"
)

//go:embed templates
var files embed.FS

const layout = "templates/layout.html"

// Renderer executes a page inside the shared layout. Page names are paths
// relative to templates/, e.g. "landing.html" or "admin/index.html".
type Renderer struct {
	pages map[string]*template.Template
}

func FuncMap() template.FuncMap {
	return template.FuncMap{
		"add": func(i, j int) int { return i + j },
		"mod": func(i, j int) int { return i % j },
		// t выбирает вариант текста по языку страницы.
		"t": func(lang models.Lang, text models.LocalizedText) string {
			return text.Resolve(lang)
		},
		"tr": func(lang models.Lang, ar, en string) string {
			if lang == models.LangEn {
				return en
			}
			return ar
		},
		"upload": func(name string) string {
			if name == "" {
				return ""
			}
			return "/uploads/" + name
		},
		"formatTime": func(t time.Time) string {
			if t.IsZero() {
				return "-"
			}
			return t.Format("02.01.2006 15:04")
		},
	}
}

func New() (*Renderer, error) {
	base, err := template.New("").Funcs(FuncMap()).ParseFS(files, layout)
	if err != nil {
		return nil, errors.Wrap(err, "parsing layout")
	}

	r := &Renderer{pages: map[string]*template.Template{}}
	err = fs.WalkDir(files, "templates", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || p == layout || path.Ext(p) != ".html" {
			return err
		}
		t, err := base.Clone()
		if err != nil {
			return err
		}
		if _, err := t.ParseFS(files, p); err != nil {
			return errors.Wrapf(err, "parsing %s", p)
		}
		r.pages[strings.TrimPrefix(p, "templates/")] = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Render writes the named page wrapped in the layout.
func (r *Renderer) Render(w io.Writer, name string, data any) error {
	t, ok := r.pages[name]
	if !ok {
		return errors.Errorf("template %q not found", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}
