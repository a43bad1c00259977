package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hylla/nametag/internal/app"
)

const defaultTemplate = "assets/nametags.html.tmpl"

// Renderer turns snapshots into printable HTML.
type Renderer struct {
	mu           sync.RWMutex
	templatePath string
	tables       Tables
	tmpl         *template.Template
}

// NewRenderer parses the template at templatePath, or the bundled one when empty.
func NewRenderer(templatePath string, tables Tables) (*Renderer, error) {
	r := &Renderer{templatePath: strings.TrimSpace(templatePath), tables: tables}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// TemplatePath reports the user template path, empty for the bundled template.
func (r *Renderer) TemplatePath() string {
	return r.templatePath
}

// Reload re-parses the template. On failure the previous template stays active.
func (r *Renderer) Reload() error {
	var (
		src []byte
		err error
	)
	name := filepath.Base(defaultTemplate)
	if r.templatePath == "" {
		src, err = assets.ReadFile(defaultTemplate)
	} else {
		name = filepath.Base(r.templatePath)
		src, err = os.ReadFile(r.templatePath)
	}
	if err != nil {
		return fmt.Errorf("read template: %w", err)
	}
	tmpl, err := template.New(name).Funcs(funcMap()).Parse(string(src))
	if err != nil {
		return fmt.Errorf("parse template %s: %w", name, err)
	}

	r.mu.Lock()
	r.tmpl = tmpl
	r.mu.Unlock()
	return nil
}

// Render writes the HTML document for snap to w.
func (r *Renderer) Render(w io.Writer, snap app.Snapshot) error {
	r.mu.RLock()
	tmpl := r.tmpl
	r.mu.RUnlock()

	doc := BuildDocument(snap, r.tables)
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, doc); err != nil {
		return fmt.Errorf("execute template: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// RenderFile writes the document to path, replacing any previous file atomically.
func (r *Renderer) RenderFile(path string, snap app.Snapshot) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".nametags-*.html")
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()
	if err = r.Render(tmp, snap); err != nil {
		return err
	}
	if err = tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod temp output: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp output: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"cm": func(v float64) string {
			return strconv.FormatFloat(v, 'f', -1, 64)
		},
		"clock": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("15:04")
		},
		"day": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("Mon 15:04")
		},
		"join":  strings.Join,
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
	}
}
