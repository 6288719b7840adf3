package rumbleup

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

var DefaultVideoExtensions = []string{".mp4", ".mov"}

var ErrNoVideo = errors.New("no video file found")

// FindFirstVideo walks root in lexical order and returns the first file
// whose lowercased name ends in one of extensions (DefaultVideoExtensions
// when none are given). Unreadable subdirectories are skipped.
func FindFirstVideo(root string, extensions ...string) (string, error) {
	if len(extensions) == 0 {
		extensions = DefaultVideoExtensions
	}

	patterns := make([]glob.Glob, 0, len(extensions))
	for _, ext := range extensions {
		g, err := glob.Compile("*" + strings.ToLower(ext))
		if err != nil {
			return "", fmt.Errorf("bad extension %q: %w", ext, err)
		}
		patterns = append(patterns, g)
	}

	var found string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		name := strings.ToLower(d.Name())
		for _, g := range patterns {
			if g.Match(name) {
				found = path
				return fs.SkipAll
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to scan %s: %w", root, err)
	}
	if found == "" {
		return "", fmt.Errorf("%w in %s", ErrNoVideo, root)
	}
	return found, nil
}
