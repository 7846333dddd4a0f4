// Package logutil provides logging utilities.
//
// All loggers write to a shared output, which discards everything unless
// SetOutput or SetOutputFile is called. Named sinks can be attached to receive
// a copy of everything written.
package logutil

import (
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// DefaultLevel is the level of newly created loggers, and the level sources
// are reset to.
const DefaultLevel = log.InfoLevel

// Names of the log sources whose levels are controlled by the log-level
// setting.
const (
	SourceCore = "core"
	SourceBase = "base"
)

var (
	fan = &fanout{out: io.Discard, sinks: map[string]io.Writer{}}

	mu      sync.Mutex
	sources = map[string]*log.Logger{}
)

// GetLogger gets a logger with the given prefix.
func GetLogger(prefix string) *log.Logger {
	return log.NewWithOptions(fan, log.Options{
		Prefix:          prefix,
		ReportTimestamp: true,
		Level:           DefaultLevel,
	})
}

// Source returns the logger for a named log source, creating it on first use.
func Source(name string) *log.Logger {
	mu.Lock()
	defer mu.Unlock()
	if l, ok := sources[name]; ok {
		return l
	}
	l := GetLogger(name)
	sources[name] = l
	return l
}

// SetLevel sets the level of a log source.
func SetLevel(source string, level log.Level) {
	Source(source).SetLevel(level)
}

// ResetLevel resets the level of a log source to DefaultLevel.
func ResetLevel(source string) {
	Source(source).SetLevel(DefaultLevel)
}

// ParseLevel parses a level. The numeric levels 0 to 3 map to increasingly
// verbose levels, from error to debug; level names are also accepted.
func ParseLevel(s string) (log.Level, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		switch {
		case n <= 0:
			return log.ErrorLevel, nil
		case n == 1:
			return log.WarnLevel, nil
		case n == 2:
			return log.InfoLevel, nil
		default:
			return log.DebugLevel, nil
		}
	}
	return log.ParseLevel(strings.ToLower(s))
}

// SetOutput redirects the output of all loggers obtained with GetLogger to
// the new io.Writer. If the old output was a file opened by SetOutputFile, it
// is closed.
func SetOutput(newout io.Writer) {
	fan.setOut(newout)
}

// SetOutputFile redirects the output of all loggers obtained with GetLogger to
// the named file. If the old output was a file opened by SetOutputFile, it is
// closed. The new file is truncated. SetOutFile("") is equivalent to
// SetOutput(io.Discard).
func SetOutputFile(fname string) error {
	if fname == "" {
		SetOutput(io.Discard)
		return nil
	}
	file, err := os.OpenFile(fname, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	SetOutput(file)
	return nil
}

// AddSink attaches a named writer that receives a copy of all log output. An
// existing sink with the same name is replaced.
func AddSink(name string, w io.Writer) {
	fan.mu.Lock()
	defer fan.mu.Unlock()
	if old, ok := fan.sinks[name]; ok && old != w {
		closeIfFile(old)
	}
	fan.sinks[name] = w
}

// RemoveSink detaches a named sink, closing it if it is a file. It reports
// whether the sink existed.
func RemoveSink(name string) bool {
	fan.mu.Lock()
	defer fan.mu.Unlock()
	w, ok := fan.sinks[name]
	if ok {
		delete(fan.sinks, name)
		closeIfFile(w)
	}
	return ok
}

// Sinks returns the names of the attached sinks in sorted order.
func Sinks() []string {
	fan.mu.Lock()
	defer fan.mu.Unlock()
	names := make([]string, 0, len(fan.sinks))
	for name := range fan.sinks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type fanout struct {
	mu    sync.Mutex
	out   io.Writer
	sinks map[string]io.Writer
}

func (f *fanout) setOut(w io.Writer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	closeIfFile(f.out)
	f.out = w
}

func (f *fanout) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sink := range f.sinks {
		// Sinks are best-effort.
		sink.Write(p)
	}
	return f.out.Write(p)
}

func closeIfFile(w io.Writer) {
	if file, ok := w.(*os.File); ok && file != os.Stdout && file != os.Stderr {
		file.Close()
	}
}
