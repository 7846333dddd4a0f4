//go:build unix

package lineedit

import (
	"errors"
	"testing"

	"github.com/creack/pty"
	"golang.org/x/term"
	"src.kitcon.sh/pkg/testutil"
)

func TestNewSystem_NotTerminal(t *testing.T) {
	r, w := testutil.Pipe(t)
	if _, err := NewSystem(r, w); !errors.Is(err, ErrNotTerminal) {
		t.Errorf("NewSystem on a pipe: err = %v", err)
	}
}

func TestOpen_SystemFallsBackOnPipe(t *testing.T) {
	r, w := testutil.Pipe(t)
	ed, warning, err := Select(DefaultPath(), true, Open(r, w))
	if err != nil {
		t.Fatal(err)
	}
	if ed.Backend() != Bundled || !errors.Is(warning, ErrNotTerminal) {
		t.Errorf("got backend %s, warning %v", ed.Backend(), warning)
	}
}

func TestSystem_ReadLine(t *testing.T) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skip("no pty:", err)
	}
	defer ptmx.Close()
	defer tty.Close()

	ed, err := NewSystem(tty, tty)
	if err != nil {
		t.Fatal(err)
	}
	go func() {
		// Drain the terminal echo so writes to tty never block.
		buf := make([]byte, 1024)
		for {
			if _, err := ptmx.Read(buf); err != nil {
				return
			}
		}
	}()
	// Switch to raw mode before writing, so that the line discipline leaves
	// the carriage return alone.
	state, err := term.MakeRaw(int(tty.Fd()))
	testutil.OK(t, err)
	defer term.Restore(int(tty.Fd()), state)
	_, err = ptmx.WriteString("show options\r")
	testutil.OK(t, err)

	line, err := ed.ReadLine("kitcon > ")
	if err != nil {
		t.Fatal(err)
	}
	if line != "show options" {
		t.Errorf("ReadLine() = %q", line)
	}
}
