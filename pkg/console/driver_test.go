package console

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"src.kitcon.sh/pkg/buildinfo"
	"src.kitcon.sh/pkg/confstore"
	"src.kitcon.sh/pkg/hooks"
	"src.kitcon.sh/pkg/lineedit"
	"src.kitcon.sh/pkg/logutil"
	"src.kitcon.sh/pkg/persist"
	"src.kitcon.sh/pkg/store"
	"src.kitcon.sh/pkg/testutil"
)

func writeGroup(t *testing.T, path, name string, kvs ...string) {
	t.Helper()
	if err := (confstore.Store{Path: path}).Save(name, confstore.GroupOf(kvs...)); err != nil {
		t.Fatal(err)
	}
}

func TestNew_RequiresFramework(t *testing.T) {
	_, err := New([3]*os.File{}, Options{})
	if !errors.Is(err, ErrNoFramework) {
		t.Errorf("err = %v, want ErrNoFramework", err)
	}
}

func TestLoadPreconfig_FiresHooksFirst(t *testing.T) {
	f := newFixture(t, "")
	writeGroup(t, f.opts.ConfigFile, confstore.CoreGroup, "LogLevel", "3", "RHOSTS", "10.0.0.1")
	d, err := newDriver([3]*os.File{}, f.opts)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { d.Close() })

	var values []string
	d.hooks.Register(hooks.LogLevel, hooks.Hook{OnSet: func(global bool, value string) bool {
		if !global {
			t.Errorf("preconfig hook fired with global=false")
		}
		if d.stack != nil {
			t.Errorf("dispatcher stack populated before preconfig")
		}
		values = append(values, value)
		return true
	}})
	d.loadPreconfig()

	if diff := cmp.Diff([]string{"3"}, values); diff != "" {
		t.Errorf("log-level hook values (-want +got):\n%s", diff)
	}
	if v, _ := f.fw.Datastore().Get("rhosts"); v != "10.0.0.1" {
		t.Errorf("RHOSTS = %q, want it stored", v)
	}
}

func TestNew_PreconfigLogLevel(t *testing.T) {
	t.Cleanup(func() {
		logutil.ResetLevel(logutil.SourceCore)
		logutil.ResetLevel(logutil.SourceBase)
	})
	f := newFixture(t, "")
	writeGroup(t, f.opts.ConfigFile, confstore.CoreGroup, "LogLevel", "0")
	f.newDriver(t)
	if lvl := logutil.Source(logutil.SourceBase).GetLevel(); lvl != logutil.Source(logutil.SourceCore).GetLevel() || lvl == logutil.DefaultLevel {
		t.Errorf("log level not applied, got %v", lvl)
	}
}

func TestStack_FloorSurvives(t *testing.T) {
	f := newFixture(t, "")
	d := f.bareDriver(t)

	d.RunSingle("use exploit/multi/handler")
	if _, ok := d.Stack().Resolve("show"); !ok {
		t.Errorf("module commands not available after use")
	}
	d.RunSingle("back")
	for d.Stack().Pop() != nil {
	}
	for _, cmd := range []string{"set", "use", "help", "exit"} {
		if _, ok := d.Stack().Resolve(cmd); !ok {
			t.Errorf("core command %s lost", cmd)
		}
	}
	if _, ok := d.Stack().Resolve("show"); ok {
		t.Errorf("module commands still available after back")
	}
}

func TestPhaseNames(t *testing.T) {
	want := []string{
		"diagnostics", "workspace", "ui-start", "splash", "banner", "av-warning",
		"plugins", "command-callback", "cache-rebuild", "ui-config",
		"resource-scripts", "persistent-handlers", "extra-commands", "deferred-warnings",
	}
	if diff := cmp.Diff(want, PhaseNames()); diff != "" {
		t.Errorf("phases (-want +got):\n%s", diff)
	}
}

func TestRunPhases(t *testing.T) {
	f := newFixture(t, "")
	d := f.bareDriver(t)
	var ran []string
	phase := func(name string, err error, fatal bool) Phase {
		return Phase{Name: name, Fatal: fatal, Run: func(*Driver) error {
			ran = append(ran, name)
			return err
		}}
	}
	skipped := phase("skipped", nil, false)
	skipped.When = func(*Driver) bool { return false }

	err := d.runPhases([]Phase{
		phase("first", nil, false),
		skipped,
		phase("failing", errors.New("oops"), false),
		phase("fatal", errors.New("boom"), true),
		phase("never", nil, false),
	})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("err = %v, want the fatal error", err)
	}
	if diff := cmp.Diff([]string{"first", "failing", "fatal"}, ran); diff != "" {
		t.Errorf("phases run (-want +got):\n%s", diff)
	}
	if !strings.Contains(f.out.String(), "failing: oops") {
		t.Errorf("non-fatal failure not reported: %q", f.out.String())
	}
}

func TestNew_StartupSequence(t *testing.T) {
	f := newFixture(t, "")
	rc := filepath.Join(f.home, "startup.rc")
	testutil.WriteFile(t, rc, "# comment\nsetg LHOST 127.0.0.1\n\nsetg LPORT 4444\n")
	f.opts.Resources = []string{rc, filepath.Join(f.home, "missing.rc")}
	f.opts.Commands = []string{"setg A 1; setg B 2", "get B"}
	f.opts.NoBanner = false
	stopped := 0
	f.opts.StopSplash = func() { stopped++ }

	var events []string
	f.fw.Events().OnUIStart(func(string) { events = append(events, "ui-start") })
	f.fw.Events().OnCommand(func(line string) { events = append(events, line) })
	d := f.newDriver(t)

	if stopped != 1 {
		t.Errorf("splash stopped %d times", stopped)
	}
	ds := f.fw.Datastore()
	for name, want := range map[string]string{"LHOST": "127.0.0.1", "LPORT": "4444", "A": "1", "B": "2"} {
		if v, _ := ds.Get(name); v != want {
			t.Errorf("%s = %q, want %q", name, v, want)
		}
	}
	out := f.out.String()
	for _, s := range []string{"kitcon", "resource (" + rc + ")> setg LHOST 127.0.0.1",
		"resource file does not exist", "B => 2"} {
		if !strings.Contains(out, s) {
			t.Errorf("output lacks %q:\n%s", s, out)
		}
	}
	if len(events) == 0 || events[0] != "ui-start" {
		t.Errorf("events = %v, want ui-start first", events)
	}
	if ws := f.fw.DB().Workspace(); ws == nil || ws.Name != "default" {
		t.Errorf("workspace = %v, want default", ws)
	}
	if d.Exiting() {
		t.Errorf("exiting after startup")
	}
}

func TestNew_UIConfig(t *testing.T) {
	f := newFixture(t, "")
	writeGroup(t, f.opts.ConfigFile, confstore.UIGroup,
		"ActiveModule", "exploit/multi/handler", "ActiveWorkspace", "nonexistent")
	d := f.newDriver(t)

	if m := d.ActiveModule(); m == nil || m.Name() != "exploit/multi/handler" {
		t.Errorf("active module = %v", m)
	}
	if got := d.Prompt(); got != "kitcon exploit(multi/handler) > " {
		t.Errorf("prompt = %q", got)
	}
	if ws := f.fw.DB().Workspace(); ws == nil || ws.Name != "default" {
		t.Errorf("unknown workspace not ignored, workspace = %v", ws)
	}
	if strings.Contains(f.out.String(), "nonexistent") {
		t.Errorf("unknown workspace reported: %q", f.out.String())
	}
}

func TestSave_RoundTrip(t *testing.T) {
	f := newFixture(t, "")
	d := f.newDriver(t)
	d.RunSingle("setg LogLevel 2")
	d.RunSingle("workspace -a engagement")
	d.RunSingle("use exploit/multi/handler")
	d.RunSingle("save")

	groups := (confstore.Store{Path: f.opts.ConfigFile}).Load()
	if v, _ := groups.Get(confstore.CoreGroup).Get("LogLevel"); v != "2" {
		t.Errorf("saved LogLevel = %q", v)
	}
	want := confstore.GroupOf("ActiveModule", "exploit/multi/handler", "ActiveWorkspace", "engagement")
	if got := groups.Get(confstore.UIGroup); got == nil || !got.Equal(want) {
		t.Errorf("saved UI group = %v", got)
	}
	logutil.ResetLevel(logutil.SourceCore)
	logutil.ResetLevel(logutil.SourceBase)
}

func TestSet_ModuleAndGlobal(t *testing.T) {
	f := newFixture(t, "")
	d := f.bareDriver(t)
	d.RunSingle("use exploit/multi/handler")
	d.RunSingle("set LHOST 10.1.1.1")
	d.RunSingle("setg RPORT 8080")

	if v, _ := d.ActiveModule().Datastore().Get("LHOST"); v != "10.1.1.1" {
		t.Errorf("module LHOST = %q", v)
	}
	if f.fw.Datastore().Has("LHOST") {
		t.Errorf("set leaked into the global datastore")
	}
	if v, _ := d.ActiveModule().Datastore().Get("RPORT"); v != "8080" {
		t.Errorf("global RPORT not visible from the module, got %q", v)
	}

	d.RunSingle("set PAYLOAD generic/nope")
	if d.ActiveModule().Datastore().Has("PAYLOAD") {
		t.Errorf("invalid payload stored")
	}
	d.RunSingle("set PAYLOAD generic/shell_reverse_tcp")
	if v, _ := d.ActiveModule().Datastore().Get("PAYLOAD"); v != "generic/shell_reverse_tcp" {
		t.Errorf("PAYLOAD = %q", v)
	}
	d.RunSingle("unset LHOST")
	if d.ActiveModule().Datastore().Has("LHOST") {
		t.Errorf("LHOST not unset")
	}
}

func TestRun_ExitAndHistory(t *testing.T) {
	f := newFixture(t, "setg A b\nexit\nsetg C d\n")
	f.opts.HistoryFile = filepath.Join(f.home, "history")
	d := f.newDriver(t)
	d.Run()

	if !d.Exiting() {
		t.Errorf("not exiting after exit")
	}
	ds := f.fw.Datastore()
	if !ds.Has("A") || ds.Has("C") {
		t.Errorf("commands after exit were run, or before it were not")
	}
	cmds, err := d.history.CmdsWithSeq(0, 100)
	if err != nil {
		t.Fatal(err)
	}
	var texts []string
	for _, cmd := range cmds {
		texts = append(texts, cmd.Text)
	}
	if diff := cmp.Diff([]string{"setg A b", "exit"}, texts); diff != "" {
		t.Errorf("history (-want +got):\n%s", diff)
	}
}

func TestHistoryCommand(t *testing.T) {
	f := newFixture(t, "setg A b\nhistory 1\n")
	f.opts.HistoryFile = filepath.Join(f.home, "history")
	d := f.newDriver(t)
	d.Run()

	out := f.out.String()
	if !strings.Contains(out, "    2  history 1\n") || strings.Contains(out, "1  setg A b") {
		t.Errorf("history 1 should list only itself:\n%s", out)
	}
}

func TestRun_EOF(t *testing.T) {
	f := newFixture(t, "setg A b")
	d := f.newDriver(t)
	d.Run()
	if !f.fw.Datastore().Has("A") {
		t.Errorf("last line without newline not run")
	}
}

func TestExit_ConfirmWithJobs(t *testing.T) {
	f := newFixture(t, "")
	f.opts.ConfirmExit = true
	d := f.bareDriver(t)
	r := &recorder{answer: false}
	r.install(d)

	d.RunSingle("exit")
	if !d.Exiting() {
		t.Errorf("confirmation asked without jobs")
	}
	d.exiting = false
	f.fw.Jobs().Start("test job", "exploit/multi/handler", nil, nil)
	d.RunSingle("exit")
	if d.Exiting() || len(r.confirms) != 1 {
		t.Errorf("exited without confirmation, confirms = %v", r.confirms)
	}
	d.RunSingle("exit -y")
	if !d.Exiting() {
		t.Errorf("exit -y did not exit")
	}
}

func TestSessionLogging(t *testing.T) {
	f := newFixture(t, "")
	d := f.bareDriver(t)
	d.RunSingle("setg SessionLogging y")
	path := d.SessionLogPath()
	if path == "" || filepath.Dir(path) != filepath.Join(f.home, "logs", "sessions") {
		t.Fatalf("session log path = %q", path)
	}
	d.RunSingle("version")
	d.RunSingle("setg SessionLogging n")
	d.RunSingle("setg Marker after")

	if d.SessionLogPath() != "" {
		t.Errorf("session logging still on")
	}
	content := testutil.ReadFile(t, path)
	if !strings.Contains(content, "Version: "+buildinfo.FullVersion()) {
		t.Errorf("session log lacks version output: %q", content)
	}
	if strings.Contains(content, "Marker") {
		t.Errorf("session log has output written after it stopped")
	}
}

func TestConsoleLogging(t *testing.T) {
	f := newFixture(t, "")
	d := f.bareDriver(t)
	d.RunSingle("set ConsoleLogging true")
	d.RunSingle("setg ConsoleLogging true")
	if diff := cmp.Diff([]string{consoleSink}, logutil.Sinks()); diff != "" {
		t.Errorf("sinks (-want +got):\n%s", diff)
	}
	d.RunSingle("unsetg ConsoleLogging")
	if len(logutil.Sinks()) != 0 {
		t.Errorf("sinks after unset = %v", logutil.Sinks())
	}
	content := testutil.ReadFile(t, filepath.Join(f.home, "logs", "console.log"))
	if strings.Count(content, "console logging started") != 1 ||
		strings.Count(content, "console logging stopped") != 1 {
		t.Errorf("console.log = %q", content)
	}
}

func TestNew_RestoresPersistentHandlers(t *testing.T) {
	f := newFixture(t, "")
	testutil.OK(t, persist.Write(f.opts.PersistFile, []persist.Record{
		{Module: "exploit/multi/handler", Options: map[string]string{
			"PAYLOAD": "generic/shell_reverse_tcp", "LHOST": "127.0.0.1", "LPORT": "0"}},
		{Module: "exploit/does/not/exist"},
	}))
	f.newDriver(t)
	if n := f.fw.Jobs().Len(); n != 1 {
		t.Errorf("%d jobs running, want 1", n)
	}
	out := f.out.String()
	if !strings.Contains(out, "Restored 1 persistent handler(s)") ||
		!strings.Contains(out, "exploit/does/not/exist") {
		t.Errorf("output = %q", out)
	}
}

func TestJobs_Persist(t *testing.T) {
	f := newFixture(t, "")
	d := f.bareDriver(t)
	d.RunSingle("use exploit/multi/handler")
	d.RunSingle("run PAYLOAD=generic/shell_bind_tcp LHOST=127.0.0.1 LPORT=0")
	if f.fw.Jobs().Len() != 1 {
		t.Fatalf("handler job not started: %q", f.out.String())
	}
	d.RunSingle("jobs -P 0")
	records, err := persist.Read(f.opts.PersistFile)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Module != "exploit/multi/handler" {
		t.Errorf("records = %v", records)
	}
	d.RunSingle("jobs -k 0")
	if f.fw.Jobs().Len() != 0 {
		t.Errorf("job not stopped")
	}
}

func TestNew_DeferredEditorWarning(t *testing.T) {
	f := newFixture(t, "")
	f.opts.SystemReadline = true
	f.opts.Opener = func(name string) (lineedit.Editor, error) {
		if name == lineedit.System {
			return nil, errors.New("no terminal here")
		}
		return lineedit.NewBundled(strings.NewReader(""), f.out), nil
	}
	f.newDriver(t)
	if !strings.Contains(f.out.String(), "no terminal here") {
		t.Errorf("editor warning not shown: %q", f.out.String())
	}
}

func TestNew_NoEditor(t *testing.T) {
	f := newFixture(t, "")
	f.opts.Opener = func(string) (lineedit.Editor, error) { return nil, errors.New("nope") }
	if _, err := New([3]*os.File{}, f.opts); err == nil {
		t.Errorf("New succeeded without a line editor")
	}
}

func TestNew_NoEditorReleasesHistory(t *testing.T) {
	f := newFixture(t, "")
	f.opts.HistoryFile = filepath.Join(f.home, "history")
	f.opts.Opener = func(string) (lineedit.Editor, error) { return nil, errors.New("nope") }
	if _, err := New([3]*os.File{}, f.opts); err == nil {
		t.Fatalf("New succeeded without a line editor")
	}
	st, err := store.NewStore(f.opts.HistoryFile)
	if err != nil {
		t.Fatalf("history still locked after a failed New: %v", err)
	}
	st.Close()
}

func TestShowFatal(t *testing.T) {
	var sb strings.Builder
	inner := errors.New("no tty")
	ShowFatal(&sb, wrapErr("cannot start the console", wrapErr("system", inner)))
	out := sb.String()
	for _, s := range []string{"fatal: cannot start the console", "caused by: system: no tty", "caused by: no tty"} {
		if !strings.Contains(out, s) {
			t.Errorf("output lacks %q:\n%s", s, out)
		}
	}
}

type wrapped struct {
	msg   string
	cause error
}

func (w wrapped) Error() string { return w.msg + ": " + w.cause.Error() }
func (w wrapped) Unwrap() error { return w.cause }

func wrapErr(msg string, cause error) error { return wrapped{msg, cause} }
