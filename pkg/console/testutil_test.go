package console

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"src.kitcon.sh/pkg/framework"
	"src.kitcon.sh/pkg/store"
	"src.kitcon.sh/pkg/testutil"
)

// safeBuffer is a strings.Builder safe for concurrent writes.
type safeBuffer struct {
	mu sync.Mutex
	sb strings.Builder
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sb.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sb.String()
}

type fixture struct {
	home string
	fw   *framework.Framework
	out  *safeBuffer
	opts Options
}

// newFixture returns options for a console reading input, with a temporary
// home and a framework with an active database.
func newFixture(t *testing.T, input string) *fixture {
	t.Helper()
	home := testutil.TempDir(t)
	fw := framework.New(framework.Config{Store: store.MustTempStore(t)})
	t.Cleanup(func() { fw.Jobs().StopAll() })
	out := &safeBuffer{}
	opts := DefaultOptions()
	opts.Framework = fw
	opts.NoBanner = true
	opts.Home = home
	opts.ConfigFile = filepath.Join(home, "config")
	opts.PersistFile = filepath.Join(home, "persistent_handlers.yml")
	opts.Launcher = "kitcon"
	opts.Input = strings.NewReader(input)
	opts.Output = out
	return &fixture{home, fw, out, opts}
}

func (f *fixture) newDriver(t *testing.T) *Driver {
	t.Helper()
	d, err := New([3]*os.File{}, f.opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

// bareDriver returns a driver with a line editor and dispatcher stack, but
// without running any startup phase.
func (f *fixture) bareDriver(t *testing.T) *Driver {
	t.Helper()
	d, err := newDriver([3]*os.File{}, f.opts)
	if err != nil {
		t.Fatalf("newDriver: %v", err)
	}
	if err := d.selectEditor(); err != nil {
		t.Fatalf("selectEditor: %v", err)
	}
	d.populate()
	t.Cleanup(func() { d.Close() })
	return d
}

// recorder counts calls to the injected process and prompt functions.
type recorder struct {
	searches []string
	spawns   [][]string
	confirms []string
	found    bool
	answer   bool
}

func (r *recorder) install(d *Driver) {
	d.search = func(name string) (string, error) {
		r.searches = append(r.searches, name)
		if r.found {
			return "/usr/bin/" + name, nil
		}
		return "", os.ErrNotExist
	}
	d.spawn = func(path string, args []string, _ io.Writer) error {
		r.spawns = append(r.spawns, append([]string{path}, args...))
		return nil
	}
	d.confirm = func(q string) bool {
		r.confirms = append(r.confirms, q)
		return r.answer
	}
}
