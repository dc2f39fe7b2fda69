// Package cache memoizes CLI results keyed on a fingerprint of the analyzed
// tree. It lives outside the engine: the engine itself never caches.
package cache

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"
)

// Cache stores results as one JSON file per key.
type Cache struct {
	dir     string
	ttl     time.Duration
	enabled bool
}

// Entry is the on-disk form of a cached result. Checksum is the BLAKE3
// hash of Data and guards against truncated or edited files.
type Entry struct {
	Key       string          `json:"key"`
	Checksum  string          `json:"checksum"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// New creates a cache under dir. A disabled cache misses every lookup and
// ignores writes.
func New(dir string, ttl time.Duration, enabled bool) (*Cache, error) {
	if !enabled {
		return &Cache{enabled: false}, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Cache{dir: dir, ttl: ttl, enabled: true}, nil
}

// Enabled reports whether the cache reads and writes entries.
func (c *Cache) Enabled() bool {
	return c.enabled
}

// Fingerprint hashes the sorted relative paths, sizes and modification
// times of files plus any extra strings (settings that change the result).
// Any change to the tree or the settings yields a different key.
func Fingerprint(root string, files []string, extra ...string) (string, error) {
	rel := make([]string, 0, len(files))
	for _, f := range files {
		r, err := filepath.Rel(root, f)
		if err != nil {
			r = f
		}
		rel = append(rel, filepath.ToSlash(r))
	}
	slices.Sort(rel)

	h := xxhash.New()
	for _, r := range rel {
		info, err := os.Stat(filepath.Join(root, filepath.FromSlash(r)))
		if err != nil {
			return "", fmt.Errorf("fingerprint %s: %w", r, err)
		}
		h.WriteString(r)
		h.WriteString("\x00")
		h.WriteString(strconv.FormatInt(info.Size(), 10))
		h.WriteString("\x00")
		h.WriteString(strconv.FormatInt(info.ModTime().UnixNano(), 10))
		h.WriteString("\n")
	}
	for _, e := range extra {
		h.WriteString(e)
		h.WriteString("\n")
	}
	return strconv.FormatUint(h.Sum64(), 16), nil
}

// Checksum computes a BLAKE3 hash of data as a hex string.
func Checksum(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Get returns the cached data for key when present, intact and not expired.
func (c *Cache) Get(key string) ([]byte, bool) {
	if !c.enabled {
		return nil, false
	}

	path := c.keyPath(key)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false
	}
	if entry.Key != key || entry.Checksum != Checksum(entry.Data) {
		os.Remove(path)
		return nil, false
	}
	if c.ttl > 0 && time.Since(entry.Timestamp) > c.ttl {
		os.Remove(path)
		return nil, false
	}
	return entry.Data, true
}

// Set stores data, which must be valid JSON, under key.
func (c *Cache) Set(key string, data []byte) error {
	if !c.enabled {
		return nil
	}
	// Data is stored compact and unescaped so the checksum matches what is read back.
	var compact bytes.Buffer
	if err := json.Compact(&compact, data); err != nil {
		return fmt.Errorf("cache %s: data is not valid JSON: %w", key, err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	err := enc.Encode(Entry{
		Key:       key,
		Checksum:  Checksum(compact.Bytes()),
		Timestamp: time.Now(),
		Data:      compact.Bytes(),
	})
	if err != nil {
		return err
	}
	return os.WriteFile(c.keyPath(key), buf.Bytes(), 0o600)
}

// keyPath maps a key to a file name that is safe on every filesystem.
func (c *Cache) keyPath(key string) string {
	return filepath.Join(c.dir, Checksum([]byte(key))[:32]+".json")
}
