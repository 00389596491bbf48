package holiday

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"threemonthcal/internal/fsutil"
)

// ErrNotCached is returned by a Store when no record exists for a year or
// no refresh marker has been written yet.
var ErrNotCached = errors.New("holiday: not cached")

// Store persists the per-year holiday records and the refresh marker.
// Writes replace a record wholesale.
type Store interface {
	// Year returns the day-keys cached for year, or ErrNotCached.
	Year(year int) ([]string, error)
	// PutYear replaces the record for year.
	PutYear(year int, keys []string) error
	// Marker returns the last refreshed month-token, or ErrNotCached.
	Marker() (string, error)
	// PutMarker replaces the refresh marker.
	PutMarker(token string) error
}

const (
	yearFilePrefix    = "holidays_"
	refreshMarkerName = "holiday_refresh.json"
)

// markerRecord is the on-disk shape of the refresh marker.
type markerRecord struct {
	Month string `json:"month"`
}

// FileStore keeps one JSON file per year plus a marker file in a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at dir. The directory is created
// lazily on first write.
func NewFileStore(dir string) *FileStore {
	if dir == "" {
		// Caller should set this explicitly; fall back to a relative dir so
		// development runs need no special permissions.
		dir = "./var/holiday-cache"
	}
	return &FileStore{dir: dir}
}

// Dir returns the cache directory.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) yearPath(year int) string {
	return filepath.Join(s.dir, yearFilePrefix+strconv.Itoa(year)+".json")
}

func (s *FileStore) markerPath() string {
	return filepath.Join(s.dir, refreshMarkerName)
}

func (s *FileStore) Year(year int) ([]string, error) {
	data, err := os.ReadFile(s.yearPath(year))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotCached
		}
		return nil, err
	}
	var keys []string
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("holiday: corrupt cache for %d: %w", year, err)
	}
	return keys, nil
}

func (s *FileStore) PutYear(year int, keys []string) error {
	sorted := append([]string{}, keys...)
	sort.Strings(sorted)
	data, err := json.Marshal(sorted)
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(s.yearPath(year), data, 0o600)
}

func (s *FileStore) Marker() (string, error) {
	data, err := os.ReadFile(s.markerPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrNotCached
		}
		return "", err
	}
	var rec markerRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return "", fmt.Errorf("holiday: corrupt refresh marker: %w", err)
	}
	return rec.Month, nil
}

func (s *FileStore) PutMarker(token string) error {
	data, err := json.Marshal(markerRecord{Month: token})
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(s.markerPath(), data, 0o600)
}

// MemoryStore is an in-process Store. It is safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	years  map[int][]string
	marker *string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{years: make(map[int][]string)}
}

func (s *MemoryStore) Year(year int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys, ok := s.years[year]
	if !ok {
		return nil, ErrNotCached
	}
	return append([]string{}, keys...), nil
}

func (s *MemoryStore) PutYear(year int, keys []string) error {
	sorted := append([]string{}, keys...)
	sort.Strings(sorted)
	s.mu.Lock()
	s.years[year] = sorted
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Marker() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.marker == nil {
		return "", ErrNotCached
	}
	return *s.marker, nil
}

func (s *MemoryStore) PutMarker(token string) error {
	s.mu.Lock()
	s.marker = &token
	s.mu.Unlock()
	return nil
}
