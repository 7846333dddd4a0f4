package fsutil

import (
	"os"
	"path/filepath"
	"strings"
)

// Returns the suffixes in PATHEXT, falling back to the usual ones if that env
// var isn't set.
func executableSuffixes() []string {
	pathext := os.Getenv("PATHEXT")
	if pathext == "" {
		return []string{".com", ".exe", ".bat", ".cmd", ".ps1"}
	}
	var exts []string
	for _, e := range filepath.SplitList(strings.ToLower(pathext)) {
		if e == "" {
			continue
		}
		if e[0] != '.' {
			e = "." + e
		}
		exts = append(exts, e)
	}
	return exts
}

func isExecutablePath(p string) bool {
	stat, err := os.Stat(p)
	if err != nil || stat.IsDir() {
		return false
	}
	ext := strings.ToLower(filepath.Ext(p))
	for _, e := range executableSuffixes() {
		if ext == e {
			return true
		}
	}
	return false
}
