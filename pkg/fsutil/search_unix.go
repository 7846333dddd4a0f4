//go:build unix

package fsutil

import (
	"os"

	"golang.org/x/sys/unix"
)

// Unix executables carry no suffix.
func executableSuffixes() []string { return nil }

func isExecutablePath(p string) bool {
	stat, err := os.Stat(p)
	if err != nil || stat.IsDir() {
		return false
	}
	return unix.Access(p, unix.X_OK) == nil
}
