// Package persist saves background handlers across sessions and restores them
// at startup.
//
// The descriptor file is a YAML list (JSON is accepted too):
//
//	# persistent_handlers.yml
//	- mod_name: exploit/multi/handler
//	  mod_options:
//	    PAYLOAD: generic/shell_reverse_tcp
//	    LHOST: 0.0.0.0
//	    LPORT: 4444
package persist

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
	"src.kitcon.sh/pkg/framework"
	"src.kitcon.sh/pkg/logutil"
)

var logger = logutil.GetLogger("[persist] ")

// Record describes one persisted handler.
type Record struct {
	Module  string            `yaml:"mod_name"`
	Options map[string]string `yaml:"mod_options"`
}

// Read reads the records in the descriptor file.
func Read(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []Record
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Write replaces the descriptor file with records.
func Write(path string, records []Record) error {
	data, err := yaml.Marshal(records)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// Add appends a record to the descriptor file. A missing or unreadable file
// is replaced.
func Add(path string, r Record) error {
	records, err := Read(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("replacing unreadable handler file", "path", path, "err", err)
	}
	return Write(path, append(records, r))
}

// Restore activates each handler in the descriptor file and returns the number
// activated. A missing or malformed file counts as having no records. Records
// that fail are passed to report and skipped.
func Restore(path string, fw *framework.Framework, out io.Writer, report func(error)) int {
	records, err := Read(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Debug("ignoring unreadable handler file", "path", path, "err", err)
		}
		return 0
	}
	n := 0
	for _, r := range records {
		if err := restoreOne(r, fw, out); err != nil {
			report(err)
			continue
		}
		n++
	}
	return n
}

func restoreOne(r Record, fw *framework.Framework, out io.Writer) error {
	m, ok := fw.CreateModule(r.Module)
	if !ok {
		return fmt.Errorf("failed to create persistent handler %s", r.Module)
	}
	if err := m.ExploitSimple(fw, r.Options, out); err != nil {
		return fmt.Errorf("failed to start persistent handler %s: %w", r.Module, err)
	}
	return nil
}
