package handlers

import (
	"bytes"
	"errors"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"path/filepath"
	"sync"
)

// Renderer executes page templates from a directory. A page whose template
// file is missing is answered with a plain-text fallback instead.
type Renderer struct {
	dir   string
	cache bool

	mu    sync.RWMutex
	pages map[string]*template.Template
}

// NewRenderer loads templates from dir. With cache off every request re-reads
// the file, which suits template editing during development.
func NewRenderer(dir string, cache bool) *Renderer {
	return &Renderer{dir: dir, cache: cache, pages: make(map[string]*template.Template)}
}

func (p *Renderer) lookup(name string) (*template.Template, error) {
	if p.cache {
		p.mu.RLock()
		t, ok := p.pages[name]
		p.mu.RUnlock()
		if ok {
			return t, nil
		}
	}

	t, err := template.ParseFiles(filepath.Join(p.dir, name))
	if err != nil {
		return nil, err
	}

	if p.cache {
		p.mu.Lock()
		p.pages[name] = t
		p.mu.Unlock()
	}
	return t, nil
}

// Render writes the named template with data, or fallback as text/plain
// when the template does not exist.
func (p *Renderer) Render(w http.ResponseWriter, status int, name, fallback string, data any) {
	t, err := p.lookup(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(status)
			w.Write([]byte(fallback))
			return
		}
		log.Printf("❌ template %s: %v", name, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		log.Printf("❌ template %s: %v", name, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
