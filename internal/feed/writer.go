package feed

import (
	"fmt"
	"io"
	"os"

	"github.com/gorilla/feeds"
)

// WriteTo serializes the feed as RSS to w. Used for the stdout
// destination, which never touches the filesystem.
func WriteTo(f *feeds.Feed, w io.Writer) error {
	if err := f.WriteRss(w); err != nil {
		return fmt.Errorf("serializing feed: %w", err)
	}
	return nil
}

// WriteFile publishes the feed at path atomically: the document is
// written to <path>.tmp and renamed over <path> only once complete.
// On any failure the previously published feed, if any, is untouched
// and the temporary file is removed.
func WriteFile(f *feeds.Feed, path string) error {
	tmp := path + ".tmp"

	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating temp feed file: %w", err)
	}

	if err := f.WriteRss(file); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("serializing feed: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing temp feed file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("publishing feed: %w", err)
	}

	return nil
}
