package console

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

var errResourceNotUTF8 = errors.New("resource file is not valid UTF-8")

// runResource runs each line of a resource file as a command, echoing it
// first. It stops early if a command exits the console.
func (d *Driver) runResource(path string) error {
	code, err := readFileUTF8(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("resource file does not exist: %s", path)
		}
		return fmt.Errorf("cannot read resource file %s: %w", path, err)
	}
	for _, line := range strings.Split(code, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if d.exiting {
			break
		}
		d.printStatus("resource (%s)> %s", path, line)
		d.RunSingle(line)
	}
	return nil
}

func readFileUTF8(fname string) (string, error) {
	bytes, err := os.ReadFile(fname)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(bytes) {
		return "", errResourceNotUTF8
	}
	return string(bytes), nil
}
