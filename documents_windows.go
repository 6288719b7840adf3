//go:build windows

package rumbleup

import "golang.org/x/sys/windows"

// DocumentsDir returns the current user's Documents known folder.
func DocumentsDir() (string, error) {
	return windows.KnownFolderPath(windows.FOLDERID_Documents, windows.KF_FLAG_DEFAULT)
}
