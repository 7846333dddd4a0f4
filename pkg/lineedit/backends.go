package lineedit

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// ErrNotTerminal is returned when the system backend is asked to read from
// something that is not a terminal.
var ErrNotTerminal = errors.New("input is not a terminal")

// Open returns an Opener that creates backends reading from in and writing to
// out.
func Open(in, out *os.File) Opener {
	return func(name string) (Editor, error) {
		switch name {
		case System:
			return NewSystem(in, out)
		case Bundled:
			return NewBundled(in, out), nil
		default:
			return nil, fmt.Errorf("unknown line editor backend %q", name)
		}
	}
}

type systemEditor struct {
	fd int
	t  *term.Terminal
}

// NewSystem returns the system backend. Input is put into raw mode only while
// a line is being read.
func NewSystem(in, out *os.File) (Editor, error) {
	if !isatty.IsTerminal(in.Fd()) && !isatty.IsCygwinTerminal(in.Fd()) {
		return nil, ErrNotTerminal
	}
	rw := struct {
		io.Reader
		io.Writer
	}{in, out}
	return &systemEditor{int(in.Fd()), term.NewTerminal(rw, "")}, nil
}

func (ed *systemEditor) Backend() string { return System }

func (ed *systemEditor) ReadLine(prompt string) (string, error) {
	state, err := term.MakeRaw(ed.fd)
	if err != nil {
		return "", err
	}
	defer term.Restore(ed.fd, state)
	ed.t.SetPrompt(prompt)
	return ed.t.ReadLine()
}

func (ed *systemEditor) Close() error { return nil }

type bundledEditor struct {
	in  *bufio.Reader
	out io.Writer
}

// NewBundled returns the bundled backend.
func NewBundled(in io.Reader, out io.Writer) Editor {
	return &bundledEditor{bufio.NewReader(in), out}
}

func (ed *bundledEditor) Backend() string { return Bundled }

func (ed *bundledEditor) ReadLine(prompt string) (string, error) {
	fmt.Fprint(ed.out, prompt)
	line, err := ed.in.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	return chopLineEnding(line), err
}

func (ed *bundledEditor) Close() error { return nil }

func chopLineEnding(s string) string {
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimSuffix(s, "\r")
}
