package console

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"src.kitcon.sh/pkg/logutil"
)

// Name of the log sink attached by console logging.
const consoleSink = "console"

func (d *Driver) logDir(sub ...string) string {
	return filepath.Join(append([]string{d.opts.Home, "logs"}, sub...)...)
}

// SetSessionLogging starts or stops copying the console's output, and the
// commands typed, to a new file under logs/sessions.
func (d *Driver) SetSessionLogging(on bool) {
	if !on {
		if d.sessionLog != nil {
			d.out.setTee(nil)
			d.sessionLog.Close()
			d.sessionLog = nil
		}
		return
	}
	if d.sessionLog != nil {
		return
	}
	dir := d.logDir("sessions")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		d.printError("cannot create session log directory: %v", err)
		return
	}
	name := fmt.Sprintf("%s_%s.log", time.Now().Format("20060102_150405"), uuid.NewString())
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		d.printError("cannot open session log: %v", err)
		return
	}
	d.sessionLog = f
	d.out.setTee(f)
	logger.Info("session logging started", "path", f.Name())
}

// SessionLogPath returns the path of the current session log, or "".
func (d *Driver) SessionLogPath() string {
	if d.sessionLog == nil {
		return ""
	}
	return d.sessionLog.Name()
}

// SetConsoleLogging attaches or detaches a log sink writing to
// logs/console.log, marking each start and stop in the file.
func (d *Driver) SetConsoleLogging(on bool) {
	if !on {
		if d.consoleLog != nil {
			writeMarker(d.consoleLog, "stopped")
			logutil.RemoveSink(consoleSink)
			d.consoleLog = nil
		}
		return
	}
	if d.consoleLog != nil {
		return
	}
	path := d.logDir("console.log")
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		d.printError("cannot create log directory: %v", err)
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		d.printError("cannot open console log: %v", err)
		return
	}
	writeMarker(f, "started")
	logutil.AddSink(consoleSink, f)
	d.consoleLog = f
}

func writeMarker(f *os.File, what string) {
	fmt.Fprintf(f, "[%s] console logging %s\n", time.Now().Format(time.RFC3339), what)
}
