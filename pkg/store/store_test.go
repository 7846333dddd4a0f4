package store_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"src.kitcon.sh/pkg/store"
	"src.kitcon.sh/pkg/store/storedefs"
)

func TestCmd(t *testing.T) {
	st := store.MustTempStore(t)

	cmds := []string{"use exploit/multi/handler", "set LHOST 0.0.0.0", "run"}
	for i, cmd := range cmds {
		seq, err := st.AddCmd(cmd)
		if seq != i+1 || err != nil {
			t.Errorf("st.AddCmd(%q) => (%v, %v), want (%v, nil)", cmd, seq, err, i+1)
		}
	}
	for i, want := range cmds {
		cmd, err := st.Cmd(i + 1)
		if cmd != want || err != nil {
			t.Errorf("st.Cmd(%v) => (%q, %v), want (%q, nil)", i+1, cmd, err, want)
		}
	}

	got, err := st.CmdsWithSeq(2, 4)
	if err != nil {
		t.Fatal(err)
	}
	want := []storedefs.Cmd{{Text: cmds[1], Seq: 2}, {Text: cmds[2], Seq: 3}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("st.CmdsWithSeq(2, 4) (-want +got):\n%s", diff)
	}

	if err := st.DelCmd(1); err != nil {
		t.Errorf("st.DelCmd(1) => %v", err)
	}
	if _, err := st.Cmd(1); err != storedefs.ErrNoMatchingCmd {
		t.Errorf("st.Cmd(1) after deletion => %v, want ErrNoMatchingCmd", err)
	}
}

func TestAddCmd_SkipsRepeats(t *testing.T) {
	st := store.MustTempStore(t)
	for _, cmd := range []string{"jobs", "jobs", "back", "jobs"} {
		st.AddCmd(cmd)
	}
	got, err := st.CmdsWithSeq(0, 100)
	if err != nil {
		t.Fatal(err)
	}
	want := []storedefs.Cmd{{Text: "jobs", Seq: 1}, {Text: "back", Seq: 2}, {Text: "jobs", Seq: 3}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("history (-want +got):\n%s", diff)
	}
}

func TestLastCmds(t *testing.T) {
	st := store.MustTempStore(t)
	if cmds, err := st.LastCmds(5); len(cmds) != 0 || err != nil {
		t.Errorf("LastCmds on empty history => (%v, %v)", cmds, err)
	}
	for _, cmd := range []string{"a", "b", "c", "d"} {
		st.AddCmd(cmd)
	}
	got, err := st.LastCmds(2)
	if err != nil {
		t.Fatal(err)
	}
	want := []storedefs.Cmd{{Text: "c", Seq: 3}, {Text: "d", Seq: 4}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("LastCmds(2) (-want +got):\n%s", diff)
	}
	if all, _ := st.LastCmds(100); len(all) != 4 {
		t.Errorf("LastCmds(100) returned %d entries, want 4", len(all))
	}
}

func TestWorkspace(t *testing.T) {
	st := store.MustTempStore(t)

	if cur, err := st.CurrentWorkspace(); cur != "" || err != nil {
		t.Errorf("CurrentWorkspace() on new store => (%q, %v)", cur, err)
	}
	if err := st.SetCurrentWorkspace("missing"); err != storedefs.ErrNoWorkspace {
		t.Errorf("SetCurrentWorkspace(missing) => %v, want ErrNoWorkspace", err)
	}

	for _, name := range []string{"default", "lab", "default"} {
		if err := st.AddWorkspace(name); err != nil {
			t.Errorf("AddWorkspace(%q) => %v", name, err)
		}
	}
	names, _ := st.Workspaces()
	if diff := cmp.Diff([]string{"default", "lab"}, names); diff != "" {
		t.Errorf("Workspaces() (-want +got):\n%s", diff)
	}

	if err := st.SetCurrentWorkspace("lab"); err != nil {
		t.Fatal(err)
	}
	if cur, _ := st.CurrentWorkspace(); cur != "lab" {
		t.Errorf("CurrentWorkspace() => %q, want lab", cur)
	}
	if err := st.DelWorkspace("lab"); err != nil {
		t.Fatal(err)
	}
	if cur, _ := st.CurrentWorkspace(); cur != "" {
		t.Errorf("CurrentWorkspace() after deleting it => %q, want empty", cur)
	}
	if ok, _ := st.HasWorkspace("lab"); ok {
		t.Errorf("HasWorkspace(lab) after deletion => true")
	}
	if err := st.DelWorkspace("lab"); err != storedefs.ErrNoWorkspace {
		t.Errorf("DelWorkspace twice => %v, want ErrNoWorkspace", err)
	}
}

func TestModuleCache(t *testing.T) {
	st := store.MustTempStore(t)

	if err := st.SetModuleCache([]string{"b", "a"}); err != nil {
		t.Fatal(err)
	}
	if err := st.SetModuleCache([]string{"c", "a"}); err != nil {
		t.Fatal(err)
	}
	names, err := st.ModuleCache()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a", "c"}, names); diff != "" {
		t.Errorf("ModuleCache() (-want +got):\n%s", diff)
	}
}
