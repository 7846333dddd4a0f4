//go:build unix

package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"src.kitcon.sh/pkg/testutil"
	"src.kitcon.sh/pkg/tt"
)

var It = tt.It

func TestSearchExecutable(t *testing.T) {
	dir := testutil.TempDir(t)
	testutil.WriteFile(t, filepath.Join(dir, "bin", "tool"), "#!/bin/sh\n")
	testutil.OK(t, os.Chmod(filepath.Join(dir, "bin", "tool"), 0700))
	testutil.WriteFile(t, filepath.Join(dir, "bin", "plain"), "not executable")
	testutil.OK(t, os.MkdirAll(filepath.Join(dir, "bin", "subdir"), 0700))
	testutil.Setenv(t, "PATH", filepath.Join(dir, "bin"))

	tt.Test(t, tt.Fn(SearchExecutable).Named("SearchExecutable"),
		It("finds an executable on $PATH").
			Args("tool").Rets(filepath.Join(dir, "bin", "tool"), error(nil)),
		It("skips files without the execute bit").
			Args("plain").Rets("", ErrNotFound),
		It("skips directories").
			Args("subdir").Rets("", ErrNotFound),
		It("reports missing commands").
			Args("nonexistent").Rets("", ErrNotFound),
		It("reports the empty name as missing").
			Args("").Rets("", ErrNotFound),
		It("takes paths literally").
			Args(filepath.Join(dir, "bin", "tool")).
			Rets(filepath.Join(dir, "bin", "tool"), error(nil)),
	)
}

func TestGetHome_UsesEnv(t *testing.T) {
	testutil.Setenv(t, "HOME", "/home/somebody/")
	home, err := GetHome("")
	if err != nil || home != "/home/somebody" {
		t.Errorf("GetHome() -> (%q, %v), want /home/somebody", home, err)
	}
}
