package artifacts

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2026, 3, 4, 5, 6, 7, 0, time.FixedZone("IST", 5*3600+1800))
}

func TestStore_Save(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir, fixedClock)
	require.NoError(t, err)

	path, err := s.Save("user-42", "<!DOCTYPE html><html></html>")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "user-42_20260303T233607_1.html"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<!DOCTYPE html><html></html>", string(data))
}

func TestStore_NeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "anonymous_20260303T233607_1.html")
	require.NoError(t, os.WriteFile(existing, []byte("keep"), 0o644))

	s, err := NewStore(dir, fixedClock)
	require.NoError(t, err)

	path, err := s.Save("", "new")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "anonymous_20260303T233607_2.html"), path)

	data, _ := os.ReadFile(existing)
	assert.Equal(t, "keep", string(data))
}

func TestStore_ConcurrentSavesAreDistinct(t *testing.T) {
	s, err := NewStore(t.TempDir(), fixedClock)
	require.NoError(t, err)

	var wg sync.WaitGroup
	paths := make([]string, 20)
	for i := range paths {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := s.Save("caller", "x")
			assert.NoError(t, err)
			paths[i] = p
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, p := range paths {
		assert.False(t, seen[p], "duplicate path %s", p)
		seen[p] = true
	}
}

func TestSanitizeCaller(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "anonymous"},
		{"   ", "anonymous"},
		{"../../etc/passwd", "etc_passwd"},
		{"alice@example.com", "alice_example_com"},
		{"ok_id-1", "ok_id-1"},
		{strings.Repeat("a", 100), strings.Repeat("a", 64)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeCaller(tt.in), tt.in)
	}
}

func TestNewStore_RequiresDir(t *testing.T) {
	_, err := NewStore("", nil)
	assert.Error(t, err)
}
