package cache

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// PageCache keeps rendered public pages as files. The whole cache is
// dropped every time the site document changes.
type PageCache struct {
	dir    string
	maxAge time.Duration

	mu  sync.Mutex
	gen uint64 // bumped by Invalidate
}

func New(dir string, maxAge time.Duration) *PageCache {
	if dir == "" {
		dir = "cache"
	}
	return &PageCache{dir: dir, maxAge: maxAge}
}

// Path returns the cache file path for a request key
func (p *PageCache) Path(key string) string {
	hash := generateHash(key)
	return filepath.Join(p.dir, fmt.Sprintf("page_%s.html", hash[:16]))
}

// generateHash generates an xxHash hash for the given string
func generateHash(s string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(s))
}

// Write writes HTML content to the cache file
func (p *PageCache) Write(key, html string) error {
	if err := os.MkdirAll(p.dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(p.Path(key), []byte(html), 0644)
}

// Read reads HTML content from the cache file if it exists and is not expired
func (p *PageCache) Read(key string) (string, bool) {
	path := p.Path(key)

	info, err := os.Stat(path)
	if err != nil {
		return "", false
	}

	if p.maxAge > 0 && time.Since(info.ModTime()) > p.maxAge {
		return "", false
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}

	return string(content), true
}

// Clear removes every cached page
func (p *PageCache) Clear() error {
	matches, err := filepath.Glob(filepath.Join(p.dir, "page_*.html"))
	if err != nil {
		return err
	}
	for _, match := range matches {
		if err := os.Remove(match); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// ClearOld removes cache files older than maxAge
func (p *PageCache) ClearOld() error {
	if p.maxAge <= 0 {
		return nil
	}
	return filepath.Walk(p.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}
		if time.Since(info.ModTime()) > p.maxAge {
			os.Remove(path)
		}
		return nil
	})
}

// Generation identifies the cache contents between two invalidations.
func (p *PageCache) Generation() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gen
}

// WriteIfCurrent stores html only when no invalidation happened since gen
// was read, so a page rendered from older data is dropped.
func (p *PageCache) WriteIfCurrent(key, html string, gen uint64) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gen != gen {
		return false, nil
	}
	return true, p.Write(key, html)
}

// Invalidate is an observer for document snapshots.
func (p *PageCache) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gen++
	if err := p.Clear(); err != nil {
		slog.Error("failed to clear page cache", "dir", p.dir, "error", err)
	}
}
