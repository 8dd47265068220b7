// Package artifacts persists generated pages under collision-free names.
package artifacts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync/atomic"
	"time"
)

const (
	anonymousCaller = "anonymous"
	maxCallerLength = 64
	timeLayout      = "20060102T150405"
)

var unsafeCaller = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// Store writes pages to <dir>/<caller>_<UTC timestamp>_<seq>.html.
type Store struct {
	dir string
	seq atomic.Uint64
	now func() time.Time
}

// NewStore creates dir if needed. A nil clock uses time.Now.
func NewStore(dir string, now func() time.Time) (*Store, error) {
	if dir == "" {
		return nil, errors.New("artifact directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact directory: %w", err)
	}
	if now == nil {
		now = time.Now
	}
	return &Store{dir: dir, now: now}, nil
}

func (s *Store) Dir() string { return s.dir }

// Save writes html and returns its path. Existing files are never replaced.
func (s *Store) Save(callerID, html string) (string, error) {
	caller := SanitizeCaller(callerID)
	stamp := s.now().UTC().Format(timeLayout)

	for {
		seq := s.seq.Add(1)
		path := filepath.Join(s.dir, fmt.Sprintf("%s_%s_%d.html", caller, stamp, seq))

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create artifact: %w", err)
		}

		if _, err := f.WriteString(html); err != nil {
			f.Close()
			os.Remove(path)
			return "", fmt.Errorf("write artifact: %w", err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("close artifact: %w", err)
		}
		return path, nil
	}
}

// SanitizeCaller keeps letters, digits, '-' and '_' and caps the length.
func SanitizeCaller(callerID string) string {
	c := strings.Trim(unsafeCaller.ReplaceAllString(strings.TrimSpace(callerID), "_"), "_")
	if len(c) > maxCallerLength {
		c = c[:maxCallerLength]
	}
	if c == "" {
		return anonymousCaller
	}
	return c
}
