// SPDX-License-Identifier: MPL-2.0

package cache

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/natefinch/atomic"

	"github.com/gi-cli/gi/internal/catalog"
	"github.com/gi-cli/gi/internal/clock"
	"github.com/gi-cli/gi/internal/platform"
)

const (
	indexFileName = "index.cbor"
	templatesDir  = "templates"
	recordExt     = ".cbor"
)

// ErrInvalidName is returned by Put for names that cannot be mapped to a
// file inside the cache directory.
var ErrInvalidName = errors.New("invalid template name")

type (
	// Record is one cached template body.
	Record struct {
		Name        string
		Content     []byte
		FetchedAt   time.Time
		LocatorHash string
		ContentHash string
	}

	// CatalogRecord is the cached catalog with its fetch metadata.
	CatalogRecord struct {
		Catalog   *catalog.Catalog
		FetchedAt time.Time
		Source    string
	}

	// EntryInfo describes a cached template file for diagnostics.
	EntryInfo struct {
		Name      string
		Size      int
		FetchedAt time.Time
	}

	// Store is a directory-backed cache. A Store holds no in-memory state
	// besides its configuration, so any number of Stores (or processes) may
	// share one directory.
	Store struct {
		dir    string
		clock  clock.Clock
		logger *log.Logger
	}

	// StoreOption configures a Store during construction.
	StoreOption func(*Store)

	// templateFile is the on-disk form of a Record.
	templateFile struct {
		Version     int       `cbor:"v"`
		Name        string    `cbor:"name"`
		Content     []byte    `cbor:"content"`
		FetchedAt   time.Time `cbor:"fetched_at"`
		LocatorHash string    `cbor:"locator_hash"`
		ContentHash string    `cbor:"content_hash"`
	}

	// indexFile is the on-disk form of a CatalogRecord.
	indexFile struct {
		Version   int             `cbor:"v"`
		FetchedAt time.Time       `cbor:"fetched_at"`
		Source    string          `cbor:"source"`
		Entries   []catalog.Entry `cbor:"entries"`
	}
)

// WithClock overrides the clock used for FetchedAt stamps and staleness.
func WithClock(c clock.Clock) StoreOption {
	return func(s *Store) {
		s.clock = c
	}
}

// WithLogger sets the logger used for corruption and cleanup diagnostics.
func WithLogger(l *log.Logger) StoreOption {
	return func(s *Store) {
		s.logger = l
	}
}

// New returns a Store rooted at dir. The directory is created lazily on the
// first write.
func New(dir string, opts ...StoreOption) *Store {
	s := &Store{
		dir:    dir,
		clock:  clock.Real{},
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the cache directory.
func (s *Store) Dir() string {
	return s.dir
}

// IsStale reports whether a record fetched at fetchedAt has reached ttl.
func (s *Store) IsStale(fetchedAt time.Time, ttl time.Duration) bool {
	return s.clock.Since(fetchedAt) >= ttl
}

// Get returns the cached record for name. Missing, unreadable and malformed
// records all report false.
func (s *Store) Get(name string) (Record, bool) {
	p, err := s.templatePath(name)
	if err != nil {
		return Record{}, false
	}
	return s.readRecord(p, name)
}

// readRecord decodes the record file at p. When name is not empty the stored
// name must match it.
func (s *Store) readRecord(p, name string) (Record, bool) {
	data, err := os.ReadFile(p)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("cache record unreadable", "path", p, "err", err)
		}
		return Record{}, false
	}

	var f templateFile
	if err := decMode.Unmarshal(data, &f); err != nil {
		s.logger.Debug("cache record corrupt", "path", p, "err", err)
		return Record{}, false
	}
	if f.Version != recordVersion || f.Name == "" || (name != "" && f.Name != name) || f.FetchedAt.IsZero() {
		s.logger.Debug("cache record rejected", "path", p, "version", f.Version, "stored_name", f.Name)
		return Record{}, false
	}
	if hashHex(f.Content) != f.ContentHash {
		s.logger.Debug("cache record content hash mismatch", "path", p)
		return Record{}, false
	}

	return f.toRecord(), true
}

// Put stores content for name, replacing any previous record atomically.
func (s *Store) Put(name string, content []byte, locator string) error {
	p, err := s.templatePath(name)
	if err != nil {
		return err
	}

	f := templateFile{
		Version:     recordVersion,
		Name:        name,
		Content:     content,
		FetchedAt:   s.clock.Now().UTC(),
		LocatorHash: hashHex([]byte(locator)),
		ContentHash: hashHex(content),
	}
	data, err := encMode.Marshal(f)
	if err != nil {
		return fmt.Errorf("encoding cache record %s: %w", name, err)
	}
	return writeAtomic(p, data)
}

// GetCatalog returns the cached catalog. Missing and malformed files report false.
func (s *Store) GetCatalog() (CatalogRecord, bool) {
	data, err := os.ReadFile(filepath.Join(s.dir, indexFileName))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("cached catalog unreadable", "err", err)
		}
		return CatalogRecord{}, false
	}

	var f indexFile
	if err := decMode.Unmarshal(data, &f); err != nil {
		s.logger.Debug("cached catalog corrupt", "err", err)
		return CatalogRecord{}, false
	}
	if f.Version != recordVersion || f.FetchedAt.IsZero() {
		s.logger.Debug("cached catalog rejected", "version", f.Version)
		return CatalogRecord{}, false
	}

	return CatalogRecord{
		Catalog:   catalog.New(f.Entries),
		FetchedAt: f.FetchedAt,
		Source:    f.Source,
	}, true
}

// PutCatalog replaces the cached catalog atomically.
func (s *Store) PutCatalog(c *catalog.Catalog, source string) error {
	f := indexFile{
		Version:   recordVersion,
		FetchedAt: s.clock.Now().UTC(),
		Source:    source,
		Entries:   c.Entries(),
	}
	data, err := encMode.Marshal(f)
	if err != nil {
		return fmt.Errorf("encoding cached catalog: %w", err)
	}
	return writeAtomic(filepath.Join(s.dir, indexFileName), data)
}

// Entries lists every readable cached template, sorted by name.
func (s *Store) Entries() ([]EntryInfo, error) {
	root := filepath.Join(s.dir, templatesDir)
	var out []EntryInfo

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && p == root {
				return fs.SkipDir
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), recordExt) {
			return nil
		}
		// File names are escaped, so the stored name is authoritative.
		if rec, ok := s.readRecord(p, ""); ok {
			out = append(out, EntryInfo{Name: rec.Name, Size: len(rec.Content), FetchedAt: rec.FetchedAt})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing cache: %w", err)
	}

	slices.SortFunc(out, func(a, b EntryInfo) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

// Clear removes the cached catalog and every cached template.
func (s *Store) Clear() error {
	if err := os.RemoveAll(filepath.Join(s.dir, templatesDir)); err != nil {
		return fmt.Errorf("removing cached templates: %w", err)
	}
	if err := os.Remove(filepath.Join(s.dir, indexFileName)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing cached catalog: %w", err)
	}
	s.logger.Debug("cache cleared", "dir", s.dir)
	return nil
}

// templatePath maps a canonical name to its record file. Names are
// slash-separated; each segment must be a plain file name and is escaped
// with platform.SafeFileName.
func (s *Store) templatePath(name string) (string, error) {
	if name == "" || strings.HasPrefix(name, "/") || strings.ContainsAny(name, `\:`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	segs := []string{s.dir, templatesDir}
	for seg := range strings.SplitSeq(name, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
		segs = append(segs, platform.SafeFileName(seg))
	}
	return filepath.Join(segs...) + recordExt, nil
}

// toRecord converts the file form; field layout matches Record.
func (f templateFile) toRecord() Record {
	return Record{
		Name:        f.Name,
		Content:     f.Content,
		FetchedAt:   f.FetchedAt,
		LocatorHash: f.LocatorHash,
		ContentHash: f.ContentHash,
	}
}

// writeAtomic creates the parent directory and replaces p with data via a
// temporary file and rename.
func writeAtomic(p string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	if err := atomic.WriteFile(p, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing %s: %w", p, err)
	}
	return nil
}
