// Package views loads HTML page templates from disk and renders them
// with simple {{KEY}} placeholder substitution.
package views

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

// searchDirs lists where page templates may live relative to the working
// directory, probed in order. Running from the repo root, a build output
// directory, or a test directory all resolve to the same tree.
var searchDirs = []string{
	"views",
	filepath.Join("..", "views"),
	filepath.Join("..", "..", "views"),
	filepath.Join("web", "views"),
}

var placeholderPattern = regexp.MustCompile(`\{\{([A-Za-z0-9_]+)\}\}`)

// Loader reads page templates once and caches them for the process
// lifetime. Templates are plain HTML files with {{KEY}} placeholders.
type Loader struct {
	dir string

	mu    sync.RWMutex
	cache map[string]string
}

// NewLoader locates the views directory. It returns an error naming every
// probed path when no directory exists.
func NewLoader() (*Loader, error) {
	tried := make([]string, 0, len(searchDirs))
	for _, dir := range searchDirs {
		info, err := os.Stat(dir)
		if err == nil && info.IsDir() {
			return &Loader{dir: dir, cache: make(map[string]string)}, nil
		}
		tried = append(tried, dir)
	}
	return nil, fmt.Errorf("views directory not found, tried %v", tried)
}

// NewLoaderAt uses a fixed directory, bypassing discovery. Used in tests.
func NewLoaderAt(dir string) *Loader {
	return &Loader{dir: dir, cache: make(map[string]string)}
}

func (l *Loader) load(name string) (string, error) {
	l.mu.RLock()
	tmpl, ok := l.cache[name]
	l.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	raw, err := os.ReadFile(filepath.Join(l.dir, name+".html"))
	if err != nil {
		return "", fmt.Errorf("loading view %q: %w", name, err)
	}
	tmpl = string(raw)

	l.mu.Lock()
	l.cache[name] = tmpl
	l.mu.Unlock()
	return tmpl, nil
}

// Render loads the named template and substitutes each {{KEY}} placeholder
// with the corresponding value, HTML-escaped. Placeholders without a value
// are left in place.
func (l *Loader) Render(name string, values map[string]string) (string, error) {
	tmpl, err := l.load(name)
	if err != nil {
		return "", err
	}
	if len(values) == 0 {
		return tmpl, nil
	}

	out := placeholderPattern.ReplaceAllStringFunc(tmpl, func(match string) string {
		key := placeholderPattern.FindStringSubmatch(match)[1]
		val, ok := values[key]
		if !ok {
			return match
		}
		return html.EscapeString(val)
	})
	return out, nil
}
