package dispatch

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type fakeHandler struct {
	name    string
	cmds    map[string]string
	invoked []string
	conf    []string
}

func newFake(name string, cmds ...string) *fakeHandler {
	h := &fakeHandler{name: name, cmds: map[string]string{}}
	for _, c := range cmds {
		h.cmds[c] = c + " command"
	}
	return h
}

func (h *fakeHandler) Name() string                { return h.name }
func (h *fakeHandler) Commands() map[string]string { return h.cmds }
func (h *fakeHandler) Invoke(cmd string, args []string) error {
	h.invoked = append(h.invoked, cmd)
	return nil
}
func (h *fakeHandler) LoadConfig(path string) { h.conf = append(h.conf, path) }

func TestResolve_TopFirst(t *testing.T) {
	core := newFake("Core", "help", "back", "set")
	module := newFake("Module", "run", "set")
	s := New(core)
	s.Push(module)

	if h, _ := s.Resolve("set"); h != module {
		t.Errorf("Resolve(set) = %v, want the module handler", h)
	}
	if h, _ := s.Resolve("help"); h != core {
		t.Errorf("Resolve(help) = %v, want the core handler", h)
	}
	if _, ok := s.Resolve("Help"); ok {
		t.Errorf("Resolve should match names exactly")
	}
	if _, ok := s.Resolve("zzz"); ok {
		t.Errorf("Resolve(zzz) found a handler")
	}
}

func TestPop_NeverRemovesBase(t *testing.T) {
	core := newFake("Core", "help")
	s := New(core)
	s.Push(newFake("A", "a"))
	s.Push(newFake("B", "b"))

	for i := 0; i < 5; i++ {
		s.Pop()
	}
	if s.Len() != 1 || s.Top() != core {
		t.Fatalf("stack has %d handlers after popping to the floor", s.Len())
	}
	if s.Pop() != nil {
		t.Errorf("Pop at the floor returned a handler")
	}
	if h, ok := s.Resolve("help"); !ok || h != core {
		t.Errorf("base command not resolvable after popping to the floor")
	}
}

func TestRemove(t *testing.T) {
	core := newFake("Core", "help")
	s := New(core)
	s.Push(newFake("Plugin", "alias"))
	s.Push(newFake("Module", "run"))

	if s.Remove("Core") {
		t.Errorf("Remove removed the base handler")
	}
	if !s.Remove("Plugin") {
		t.Errorf("Remove(Plugin) = false")
	}
	if _, ok := s.Resolve("alias"); ok {
		t.Errorf("removed handler's command still resolves")
	}
	if s.Top().Name() != "Module" {
		t.Errorf("Remove disturbed the order")
	}
}

func TestCommands(t *testing.T) {
	s := New(newFake("Core", "help", "set"))
	s.Push(newFake("Module", "run", "set"))
	if diff := cmp.Diff([]string{"help", "run", "set"}, s.Commands()); diff != "" {
		t.Errorf("Commands() (-want +got):\n%s", diff)
	}
}

func TestConfigure(t *testing.T) {
	core := newFake("Core", "help")
	mod := newFake("Module", "run")
	s := New(core)
	s.Push(mod)
	s.Configure("/tmp/config")
	if len(core.conf) != 1 || len(mod.conf) != 1 || core.conf[0] != "/tmp/config" {
		t.Errorf("Configure didn't call each handler once: %v %v", core.conf, mod.conf)
	}
}
