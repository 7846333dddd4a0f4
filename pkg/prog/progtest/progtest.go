// Package progtest contains utilities for testing [prog.Program]
// implementations.
package progtest

import (
	"io"
	"os"
	"strings"
	"testing"

	"src.kitcon.sh/pkg/prog"
	"src.kitcon.sh/pkg/testutil"
)

// Result is what running a program produced.
type Result struct {
	Exit   int
	Stdout string
	Stderr string
}

// Run runs p through prog.Run with the given arguments, feeding stdin to it,
// and collects its exit status and output. The program name is prepended to
// args.
func Run(t testing.TB, p prog.Program, stdin string, args ...string) Result {
	t.Helper()
	r0, w0 := testutil.Pipe(t)
	r1, w1 := testutil.Pipe(t)
	r2, w2 := testutil.Pipe(t)

	go func() {
		w0.WriteString(stdin)
		w0.Close()
	}()
	stdout := collect(r1)
	stderr := collect(r2)

	exit := prog.Run([3]*os.File{r0, w1, w2}, append([]string{"kitcon"}, args...), p)
	r0.Close()
	w1.Close()
	w2.Close()
	return Result{exit, <-stdout, <-stderr}
}

func collect(r *os.File) <-chan string {
	ch := make(chan string, 1)
	go func() {
		var sb strings.Builder
		io.Copy(&sb, r)
		r.Close()
		ch <- sb.String()
	}()
	return ch
}
