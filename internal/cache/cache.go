// Package cache persists normalized extraction results, one JSON record per
// (document, method) pair.
//
// The cache key hashes the document's absolute path, not its content, so
// editing a document in place is the only invalidation signal: an entry
// older than the source document's mtime is treated as a miss. There is no
// cross-process locking; concurrent writers race with last-writer-wins.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"invoiceparser/internal/logger"
	"invoiceparser/pkg/models"
)

// Cache is a file-backed result store.
type Cache struct {
	dir     string
	methods []string
	log     zerolog.Logger
}

// New creates a cache rooted at dir. The methods list enumerates the known
// extraction methods so that per-document invalidation can address every
// record the document may have.
func New(dir string, methods []string) *Cache {
	return &Cache{
		dir:     dir,
		methods: methods,
		log:     logger.WithComponent("cache"),
	}
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// entryPath derives the record path for a (document, method) pair.
func (c *Cache) entryPath(docPath, method string) string {
	abs, err := filepath.Abs(docPath)
	if err != nil {
		abs = docPath
	}
	sum := sha256.Sum256([]byte(abs))
	return filepath.Join(c.dir, fmt.Sprintf("%s_%s.json", hex.EncodeToString(sum[:8]), method))
}

// Get returns the cached invoice for the pair, or ok=false on a miss. A miss
// is reported for absent entries and for entries staler than the source
// document's last modification.
func (c *Cache) Get(docPath, method string) (*models.Invoice, bool, error) {
	entry := c.entryPath(docPath, method)

	entryInfo, err := os.Stat(entry)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache: stat entry: %w", err)
	}

	srcInfo, err := os.Stat(docPath)
	if err != nil {
		return nil, false, fmt.Errorf("cache: stat document: %w", err)
	}
	if srcInfo.ModTime().After(entryInfo.ModTime()) {
		c.log.Debug().
			Str("document", docPath).
			Str("method", method).
			Msg("Cache entry stale, skipping")
		return nil, false, nil
	}

	data, err := os.ReadFile(entry)
	if err != nil {
		return nil, false, fmt.Errorf("cache: read entry: %w", err)
	}

	var invoice models.Invoice
	if err := json.Unmarshal(data, &invoice); err != nil {
		// A corrupt record behaves like a miss; the next Put repairs it.
		c.log.Warn().
			Err(err).
			Str("entry", entry).
			Msg("Corrupt cache entry, treating as miss")
		return nil, false, nil
	}

	return &invoice, true, nil
}

// Put stores the invoice for the pair, creating the cache directory on first
// use. Null-valued invoice fields are omitted from the record.
func (c *Cache) Put(docPath, method string, invoice *models.Invoice) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("cache: create dir: %w", err)
	}

	data, err := json.MarshalIndent(invoice, "", "  ")
	if err != nil {
		return fmt.Errorf("cache: encode invoice: %w", err)
	}

	entry := c.entryPath(docPath, method)
	if err := os.WriteFile(entry, data, 0o644); err != nil {
		return fmt.Errorf("cache: write entry: %w", err)
	}

	c.log.Debug().
		Str("document", docPath).
		Str("method", method).
		Str("entry", entry).
		Msg("Cached extraction result")

	return nil
}

// Invalidate removes every known method's record for one document.
func (c *Cache) Invalidate(docPath string) error {
	for _, method := range c.methods {
		entry := c.entryPath(docPath, method)
		if err := os.Remove(entry); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("cache: remove entry: %w", err)
		}
	}
	return nil
}

// InvalidateAll clears every record in the cache directory.
func (c *Cache) InvalidateAll() error {
	entries, err := filepath.Glob(filepath.Join(c.dir, "*.json"))
	if err != nil {
		return fmt.Errorf("cache: list entries: %w", err)
	}
	for _, entry := range entries {
		if err := os.Remove(entry); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("cache: remove entry: %w", err)
		}
	}
	return nil
}
