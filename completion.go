package rumbleup

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

const LogFileName = "href_log.txt"

// DefaultLogPath is href_log.txt in the user's Documents folder.
func DefaultLogPath() (string, error) {
	docs, err := DocumentsDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate documents folder: %w", err)
	}
	return filepath.Join(docs, LogFileName), nil
}

// ResolveHref turns href into an absolute URL relative to pageURL.
func ResolveHref(pageURL, href string) (string, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("bad href %q: %w", href, err)
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("bad page url %q: %w", pageURL, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// LogBook is the flat file of published links, newest first, one line per link.
type LogBook struct {
	Path string
}

// Contains reports whether link appears anywhere in the file.
func (l *LogBook) Contains(link string) (bool, error) {
	content, err := os.ReadFile(l.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return bytes.Contains(content, []byte(link)), nil
}

// Record prepends "YYYY-MM-DD, link" unless link is already logged.
// It reports whether a line was written.
func (l *LogBook) Record(link string, now time.Time) (bool, error) {
	content, err := os.ReadFile(l.Path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("failed to read log %s: %w", l.Path, err)
	}
	if bytes.Contains(content, []byte(link)) {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(l.Path), 0o755); err != nil {
		return false, err
	}
	line := fmt.Sprintf("%s, %s\n", now.Format("2006-01-02"), link)
	if err := os.WriteFile(l.Path, append([]byte(line), content...), 0o644); err != nil {
		return false, fmt.Errorf("failed to write log %s: %w", l.Path, err)
	}
	return true, nil
}
