// Package markdown renders embedded markdown documents with YAML front matter
// into HTML fragments. Rendered documents are cached by name.
package markdown

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

var (
	ErrNotFound           = errors.New("markdown: document not found")
	ErrInvalidFrontmatter = errors.New("markdown: invalid front matter")
	ErrRenderFailed       = errors.New("markdown: render failed")
)

// Document is a rendered markdown file.
type Document struct {
	// Meta holds the front matter.
	Meta map[string]any
	// Title is Meta["title"] when it is a string.
	Title string
	HTML  string
}

// Renderer converts documents from an fs.FS.
type Renderer struct {
	fs    fs.FS
	md    goldmark.Markdown
	cache map[string]*Document
	mu    sync.RWMutex
}

// NewRenderer returns a Renderer reading from fsys with GitHub flavored
// markdown enabled.
func NewRenderer(fsys fs.FS) *Renderer {
	return &Renderer{
		fs:    fsys,
		md:    goldmark.New(goldmark.WithExtensions(extension.GFM)),
		cache: make(map[string]*Document),
	}
}

// Render returns the document stored at name.
func (r *Renderer) Render(name string) (*Document, error) {
	r.mu.RLock()
	doc, ok := r.cache[name]
	r.mu.RUnlock()
	if ok {
		return doc, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if doc, ok := r.cache[name]; ok {
		return doc, nil
	}

	content, err := fs.ReadFile(r.fs, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotFound, name, err)
	}
	doc, err = r.convert(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	r.cache[name] = doc
	return doc, nil
}

// Localized renders "<base>.<lang>.md" and falls back to "<base>.md".
//
//	r.Localized("home", "de") // home.de.md, then home.md
func (r *Renderer) Localized(base, lang string) (*Document, error) {
	if lang != "" {
		doc, err := r.Render(base + "." + lang + ".md")
		if err == nil || !errors.Is(err, ErrNotFound) {
			return doc, err
		}
	}
	return r.Render(base + ".md")
}

func (r *Renderer) convert(content []byte) (*Document, error) {
	meta, body, err := splitFrontmatter(content)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := r.md.Convert(body, &buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	doc := &Document{Meta: meta, HTML: buf.String()}
	if title, ok := meta["title"].(string); ok {
		doc.Title = title
	}
	return doc, nil
}

const delimiter = "---"

// splitFrontmatter separates the YAML block between the leading "---" lines
// from the markdown body. Content without a leading delimiter has no meta.
func splitFrontmatter(content []byte) (map[string]any, []byte, error) {
	meta := make(map[string]any)
	if !bytes.HasPrefix(content, []byte(delimiter)) {
		return meta, content, nil
	}

	rest := bytes.TrimLeft(content[len(delimiter):], "\r\n")
	end := bytes.Index(rest, []byte("\n"+delimiter))
	if end == -1 {
		return nil, nil, fmt.Errorf("%w: closing delimiter not found", ErrInvalidFrontmatter)
	}

	if head := bytes.TrimSpace(rest[:end]); len(head) > 0 {
		if err := yaml.Unmarshal(head, &meta); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidFrontmatter, err)
		}
	}

	body := rest[end+1+len(delimiter):]
	body = []byte(strings.TrimLeft(string(body), "\r\n"))
	return meta, body, nil
}

// Warm renders every markdown file directly under dir, so broken documents
// fail at startup instead of on the first request.
func (r *Renderer) Warm(dir string) error {
	entries, err := fs.ReadDir(r.fs, dir)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNotFound, dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".md" {
			continue
		}
		if _, err := r.Render(path.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
