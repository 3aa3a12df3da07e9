package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileCache stores API responses as JSON files, one per request URL,
// grouped in a directory per backend host so switching --api-url never
// serves another backend's data.
type FileCache struct {
	dir  string
	opts options
}

// fileEntry is one cached response. Freshness is decided on read so a
// changed TTL applies to entries already on disk.
type fileEntry struct {
	URL      string `json:"url"`
	StoredAt int64  `json:"stored_at"` // unix milliseconds
	Body     []byte `json:"body"`
}

// NewFileCache creates the cache directory and returns a cache whose
// entries live for ttl unless a WithPathTTL rule says otherwise.
func NewFileCache(dir string, ttl time.Duration, opts ...Option) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, err
	}

	return &FileCache{
		dir:  dir,
		opts: newOptions(ttl, opts),
	}, nil
}

// DefaultCacheDir returns $XDG_CACHE_HOME/sokoni, else ~/.cache/sokoni
func DefaultCacheDir() string {
	if xdgCache := os.Getenv("XDG_CACHE_HOME"); xdgCache != "" {
		return filepath.Join(xdgCache, "sokoni")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "sokoni-cache")
	}

	return filepath.Join(home, ".cache", "sokoni")
}

// hostDir names the per-backend directory for a URL key
func hostDir(key string) string {
	u, err := url.Parse(key)
	if err != nil || u.Host == "" {
		return "_"
	}
	return strings.NewReplacer(":", "_", "/", "_").Replace(u.Host)
}

func (c *FileCache) path(key string) string {
	hash := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hostDir(key), hex.EncodeToString(hash[:])+".json")
}

func readEntry(filename string) (fileEntry, error) {
	var e fileEntry
	// #nosec G304 -- filename is derived from the cache dir and a hash
	data, err := os.ReadFile(filename)
	if err != nil {
		return e, err
	}
	err = json.Unmarshal(data, &e)
	return e, err
}

func (c *FileCache) fresh(e fileEntry) bool {
	ttl := c.opts.ttlFor(e.URL)
	if ttl <= 0 {
		return false
	}
	age := c.opts.now().Sub(time.UnixMilli(e.StoredAt))
	return age <= ttl
}

// Get returns the cached body for key while it is fresh
func (c *FileCache) Get(key string) ([]byte, bool) {
	filename := c.path(key)

	e, err := readEntry(filename)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			// unreadable entry
			_ = os.Remove(filename)
		}
		return nil, false
	}
	if e.URL != key || !c.fresh(e) {
		return nil, false
	}
	return e.Body, true
}

// Set stores value under key. Responses with a zero lifetime are not
// written at all.
func (c *FileCache) Set(key string, value []byte) error {
	if c.opts.ttlFor(key) <= 0 {
		return nil
	}

	data, err := json.Marshal(fileEntry{
		URL:      key,
		StoredAt: c.opts.now().UnixMilli(),
		Body:     value,
	})
	if err != nil {
		return err
	}

	filename := c.path(key)
	if err := os.MkdirAll(filepath.Dir(filename), 0750); err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0600)
}

// walk calls fn for every entry file below the cache directory
func (c *FileCache) walk(fn func(filename string) error) error {
	return filepath.WalkDir(c.dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(p) != ".json" {
			return nil
		}
		return fn(p)
	})
}

// Clear removes every cached response, for all backends
func (c *FileCache) Clear() error {
	err := c.walk(func(filename string) error {
		_ = os.Remove(filename)
		return nil
	})
	if err != nil {
		return err
	}
	c.removeEmptyHostDirs()
	return nil
}

// Prune removes stale and unreadable entries and reports how many went
func (c *FileCache) Prune() (int, error) {
	removed := 0
	err := c.walk(func(filename string) error {
		e, err := readEntry(filename)
		if err == nil && c.fresh(e) {
			return nil
		}
		if os.Remove(filename) == nil {
			removed++
		}
		return nil
	})
	if err != nil {
		return removed, err
	}
	c.removeEmptyHostDirs()
	return removed, nil
}

func (c *FileCache) removeEmptyHostDirs() {
	dirs, err := os.ReadDir(c.dir)
	if err != nil {
		return
	}
	for _, d := range dirs {
		if d.IsDir() {
			// fails unless empty
			_ = os.Remove(filepath.Join(c.dir, d.Name()))
		}
	}
}
