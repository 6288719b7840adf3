//go:build !windows

package rumbleup

import (
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

// DocumentsDir returns $XDG_DOCUMENTS_DIR or ~/Documents.
func DocumentsDir() (string, error) {
	if dir := os.Getenv("XDG_DOCUMENTS_DIR"); dir != "" {
		return homedir.Expand(dir)
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "Documents"), nil
}
