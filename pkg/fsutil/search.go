// Package fsutil contains filesystem utilities.
package fsutil

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by SearchExecutable when no candidate exists.
var ErrNotFound = errors.New("executable file not found in $PATH")

// DontSearch determines whether the path to an external command should be
// taken literally and not searched.
func DontSearch(exe string) bool {
	return strings.ContainsRune(exe, filepath.Separator) ||
		strings.ContainsRune(exe, '/')
}

// SearchExecutable looks for an executable called name in the directories of
// $PATH. The bare name is tried first, followed by name with each of the
// platform's executable suffixes.
func SearchExecutable(name string) (string, error) {
	if name == "" {
		return "", ErrNotFound
	}
	candidates := append([]string{name}, withSuffixes(name)...)
	if DontSearch(name) {
		for _, c := range candidates {
			if isExecutablePath(c) {
				return c, nil
			}
		}
		return "", ErrNotFound
	}
	for _, dir := range searchPaths() {
		if dir == "" {
			dir = "."
		}
		for _, c := range candidates {
			p := filepath.Join(dir, c)
			if isExecutablePath(p) {
				return p, nil
			}
		}
	}
	return "", ErrNotFound
}

func withSuffixes(name string) []string {
	var names []string
	for _, suffix := range executableSuffixes() {
		if !strings.EqualFold(filepath.Ext(name), suffix) {
			names = append(names, name+suffix)
		}
	}
	return names
}

func searchPaths() []string {
	return filepath.SplitList(os.Getenv("PATH"))
}
