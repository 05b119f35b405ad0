package fs_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexcrawl/lexcrawl"
	"github.com/lexcrawl/lexcrawl/fs"
)

// Ensure RobotsCache implements lexcrawl.RobotsCache at compile time.
var _ lexcrawl.RobotsCache = (*fs.RobotsCache)(nil)

func TestRobotsCache(t *testing.T) {
	t.Parallel()

	t.Run("round-trips rules per domain", func(t *testing.T) {
		t.Parallel()

		cache := fs.NewRobotsCache(t.TempDir())
		rules := &lexcrawl.RobotsRules{
			Domain:      "eur-lex.europa.eu",
			Raw:         "User-agent: *\nCrawl-delay: 2\n",
			CrawlDelay:  2 * time.Second,
			RequestRate: 0.5,
			FetchedAt:   time.Now().UTC().Truncate(time.Second),
		}

		require.NoError(t, cache.PutRobots(rules))

		got, ok, err := cache.GetRobots("eur-lex.europa.eu")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, rules, got)
	})

	t.Run("miss reports absent without error", func(t *testing.T) {
		t.Parallel()

		_, ok, err := fs.NewRobotsCache(t.TempDir()).GetRobots("unknown.example")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("corrupt entries are treated as absent", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.example.json"), []byte("{not json"), 0644))

		_, ok, err := fs.NewRobotsCache(dir).GetRobots("bad.example")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("hostile domain names stay inside the cache directory", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		cache := fs.NewRobotsCache(dir)
		require.NoError(t, cache.PutRobots(&lexcrawl.RobotsRules{Domain: "../escape"}))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, ".._escape.json", entries[0].Name())
	})
}
