// Package confstore loads and saves named groups of settings.
//
// The backing file is TOML. Each group is a table whose header is the group
// path, for example:
//
//	['framework/core']
//	LogLevel = '3'
//
//	['framework/ui/console']
//	ActiveModule = 'exploit/multi/handler'
//
// Scalar values of any TOML type are read as strings, in their literal form.
package confstore

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pelletier/go-toml/v2/unstable"
	"src.kitcon.sh/pkg/logutil"
)

var logger = logutil.GetLogger("[confstore] ")

// Names of the groups used by the console.
const (
	CoreGroup = "framework/core"
	UIGroup   = "framework/ui/console"
)

// Keys recognized in UIGroup.
const (
	KeyActiveModule    = "ActiveModule"
	KeyActiveWorkspace = "ActiveWorkspace"
)

// Separator is reserved; it may not appear in group names or keys.
const Separator = "="

// ErrReservedSeparator is returned by Save when a name or key contains
// Separator.
var ErrReservedSeparator = errors.New("names and keys may not contain " + Separator)

// Store reads and writes groups in one file.
type Store struct {
	Path string
}

// Load reads all groups from the file. Errors are logged and result in an
// empty set; they never reach the caller.
func (s Store) Load() *Groups {
	gs, err := s.load()
	if err != nil {
		logger.Warn("cannot load config, continuing without it", "path", s.Path, "err", err)
		return NewGroups()
	}
	return gs
}

// GroupExists reports whether the file contains the named group.
func (s Store) GroupExists(name string) bool {
	return s.Load().Exists(name)
}

// Save replaces the named group in the file with g, keeping the other groups.
// The caller is expected to report the error to the user.
func (s Store) Save(name string, g *Group) error {
	if err := checkName(name); err != nil {
		return err
	}
	for _, k := range g.keys {
		if err := checkName(k); err != nil {
			return err
		}
	}
	gs, err := s.load()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("discarding unreadable config", "path", s.Path, "err", err)
		}
		gs = NewGroups()
	}
	gs.Put(name, g)

	data, err := Marshal(gs)
	if err != nil {
		return err
	}
	return writeFileAtomic(s.Path, data)
}

func checkName(s string) error {
	if s == "" {
		return errors.New("names and keys may not be empty")
	}
	if strings.Contains(s, Separator) {
		return fmt.Errorf("%q: %w", s, ErrReservedSeparator)
	}
	return nil
}

func (s Store) load() (*Groups, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}

// Unmarshal parses groups from TOML data.
func Unmarshal(data []byte) (*Groups, error) {
	gs := NewGroups()
	var p unstable.Parser
	p.Reset(data)

	current := ""
	skipping := false
	for p.NextExpression() {
		e := p.Expression()
		switch e.Kind {
		case unstable.Table:
			current = joinKey(e.Key(), "/")
			skipping = false
			gs.ensure(current)
		case unstable.ArrayTable:
			skipping = true
		case unstable.KeyValue:
			if skipping {
				continue
			}
			key := joinKey(e.Key(), ".")
			v := e.Value()
			switch v.Kind {
			case unstable.Array, unstable.InlineTable:
				logger.Debug("ignoring non-scalar value", "group", current, "key", key)
				continue
			}
			gs.ensure(current).Set(key, string(v.Data))
		}
	}
	if err := p.Error(); err != nil {
		return nil, err
	}
	return gs, nil
}

func joinKey(it unstable.Iterator, sep string) string {
	var parts []string
	for it.Next() {
		parts = append(parts, string(it.Node().Data))
	}
	return strings.Join(parts, sep)
}

// Marshal encodes groups as TOML, preserving the order of groups and keys.
func Marshal(gs *Groups) ([]byte, error) {
	var buf bytes.Buffer
	for i, name := range gs.names {
		if i > 0 {
			buf.WriteByte('\n')
		}
		header, _, err := encodePair(name, "")
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&buf, "[%s]\n", header)
		var pairErr error
		gs.groups[name].Each(func(k, v string) {
			if pairErr != nil {
				return
			}
			var ek, ev string
			ek, ev, pairErr = encodePair(k, v)
			fmt.Fprintf(&buf, "%s = %s\n", ek, ev)
		})
		if pairErr != nil {
			return nil, pairErr
		}
	}
	return buf.Bytes(), nil
}

// Encodes a key and a string value with TOML quoting.
func encodePair(k, v string) (string, string, error) {
	line, err := toml.Marshal(map[string]string{k: v})
	if err != nil {
		return "", "", err
	}
	ek, ev, ok := strings.Cut(strings.TrimSpace(string(line)), " = ")
	if !ok {
		return "", "", fmt.Errorf("unexpected encoding of %q", k)
	}
	return ek, ev, nil
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".config-*")
	if err != nil {
		return err
	}
	_, err = tmp.Write(data)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}
