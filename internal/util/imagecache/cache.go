// Package imagecache keeps downloaded images on disk so repeated runs
// against the same URL skip the network.
package imagecache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/jmylchreest/toolshub/internal/version"
)

// Cache stores images under Dir, keyed by URL.
type Cache struct {
	Dir string
}

// DefaultDir returns the default cache directory, e.g. ~/.cache/toolshub/images.
func DefaultDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		// Fallback to home directory if cache dir not available.
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to determine cache directory: %w", err)
		}
		return filepath.Join(home, ".cache", version.Name, "images"), nil
	}
	return filepath.Join(cacheDir, version.Name, "images"), nil
}

// New returns a Cache rooted at dir, or at DefaultDir when dir is empty.
func New(dir string) (*Cache, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	return &Cache{Dir: dir}, nil
}

// Path returns where the image for rawURL is stored: the first 16 bytes of
// the URL's SHA-256 in hex plus the URL path's extension.
func (c *Cache) Path(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	name := hex.EncodeToString(sum[:16])

	ext := ""
	if u, err := url.Parse(rawURL); err == nil {
		ext = strings.ToLower(path.Ext(u.Path))
	}
	if ext == "" || len(ext) > 5 {
		ext = ".img"
	}

	return filepath.Join(c.Dir, name+ext)
}

// Get returns the cached file for rawURL if there is one.
func (c *Cache) Get(rawURL string) (string, bool) {
	p := c.Path(rawURL)
	info, err := os.Stat(p)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return p, true
}

// Put stores data for rawURL, replacing any existing entry, and returns its path.
func (c *Cache) Put(rawURL string, data []byte) (string, error) {
	if err := os.MkdirAll(c.Dir, 0o755); err != nil { // #nosec G301 - Cache directory needs standard permissions
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	p := c.Path(rawURL)
	// Write then rename so readers never see a partial file.
	tmp, err := os.CreateTemp(c.Dir, ".download-*")
	if err != nil {
		return "", fmt.Errorf("failed to write cached image: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write cached image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write cached image: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write cached image: %w", err)
	}
	return p, nil
}
