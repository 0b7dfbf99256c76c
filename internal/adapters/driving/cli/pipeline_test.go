package cli

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetPollFlags restores every poll flag after an Execute-driven test,
// so later tests see pristine defaults.
func resetPollFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		names := []string{"store", "mode", "locale", "tag", "output",
			"token", "secret", "token-file", "secret-file"}
		for _, name := range names {
			f := pollCmd.Flags().Lookup(name)
			require.NoError(t, f.Value.Set(f.DefValue))
			f.Changed = false
		}
		for _, name := range []string{"config", "verbose"} {
			f := rootCmd.PersistentFlags().Lookup(name)
			require.NoError(t, f.Value.Set(f.DefValue))
			f.Changed = false
		}
		rootCmd.SetArgs(nil)
	})
}

func TestPollPipeline_EndToEnd(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	resetPollFlags(t)

	var requests int
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			requests++
			assert.Equal(t, "/v1/us/search", r.URL.Path)
			assert.Equal(t, "tok", r.Header.Get("X-Auth-Token"))
			fmt.Fprint(w, `{"items": [{
				"asin": "B001",
				"title": "Widget",
				"url": "http://shop.test/dp/B001",
				"kind": "Books",
				"price": "$9.99",
				"images": {"l": "http://img.test/B001-l.jpg"},
				"people": {"author": ["A. Author"]}
			}]}`)
		}))
	defer server.Close()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfgPath,
		[]byte("[search]\nendpoint = \""+server.URL+"\"\n"), 0600))
	feedPath := filepath.Join(dir, "feed.xml")

	args := []string{"poll", "widget",
		"--config", cfgPath,
		"--store", filepath.Join(dir, "items.db"),
		"--output", feedPath,
		"--token", "tok",
		"--secret", "sec",
		"--tag", "kw-20",
	}

	// First run: one new item, one feed entry.
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	require.Equal(t, 1, requests)

	data, err := os.ReadFile(feedPath)
	require.NoError(t, err)

	parsed, err := gofeed.NewParser().ParseString(string(data))
	require.NoError(t, err)
	require.Len(t, parsed.Items, 1)

	entry := parsed.Items[0]
	assert.Equal(t, "Widget (widget)", entry.Title)
	assert.Contains(t, entry.Link, "tag=kw-20")
	assert.Contains(t, entry.Description, "<img")
	require.Len(t, entry.Enclosures, 1)
	assert.Equal(t, "image/jpeg", entry.Enclosures[0].Type)
	assert.Equal(t, "http://img.test/B001-l.jpg", entry.Enclosures[0].URL)

	// Second run against unchanged upstream: nothing new, the
	// published feed stays byte-identical.
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	require.Equal(t, 2, requests)

	after, err := os.ReadFile(feedPath)
	require.NoError(t, err)
	assert.Equal(t, data, after)
	assert.NoFileExists(t, feedPath+".tmp")
}
