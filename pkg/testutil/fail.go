package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// OK fails the test if err is not nil.
func OK(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

// Pipe returns the ends of an OS pipe. Both are closed when the test
// finishes; closing them earlier is fine.
func Pipe(t testing.TB) (r, w *os.File) {
	t.Helper()
	r, w, err := os.Pipe()
	OK(t, err)
	t.Cleanup(func() {
		r.Close()
		w.Close()
	})
	return r, w
}

// ReadFile returns the content of a file.
func ReadFile(t testing.TB, name string) string {
	t.Helper()
	data, err := os.ReadFile(name)
	OK(t, err)
	return string(data)
}

// WriteFile writes a file, creating missing parent directories.
func WriteFile(t testing.TB, name, content string) {
	t.Helper()
	OK(t, os.MkdirAll(filepath.Dir(name), 0o700))
	OK(t, os.WriteFile(name, []byte(content), 0o600))
}
