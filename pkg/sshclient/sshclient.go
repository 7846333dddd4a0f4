// Package sshclient builds SSH client configurations for modules that speak
// SSH, with a process-wide identification string.
package sshclient

import (
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
)

// DefaultClientVersion is the identification string sent when none has been
// set.
const DefaultClientVersion = "SSH-2.0-OpenSSH_8.9p1"

// ErrBadIdent is returned by SetClientVersion for malformed identification
// strings.
var ErrBadIdent = errors.New("SSH identification must start with SSH-2.0- and fit on one line of at most 255 bytes")

var (
	mu            sync.RWMutex
	clientVersion = DefaultClientVersion
)

// ClientVersion returns the identification string currently in use.
func ClientVersion() string {
	mu.RLock()
	defer mu.RUnlock()
	return clientVersion
}

// SetClientVersion replaces the identification string. It reports whether the
// value changed.
func SetClientVersion(v string) (bool, error) {
	if !strings.HasPrefix(v, "SSH-2.0-") || len(v) > 255 || strings.ContainsAny(v, "\r\n") {
		return false, ErrBadIdent
	}
	mu.Lock()
	defer mu.Unlock()
	if clientVersion == v {
		return false, nil
	}
	clientVersion = v
	return true, nil
}

// ResetClientVersion restores DefaultClientVersion.
func ResetClientVersion() {
	mu.Lock()
	defer mu.Unlock()
	clientVersion = DefaultClientVersion
}

// Config returns a client configuration authenticating as user with the given
// methods. Host keys are not verified; targets are rarely known in advance.
func Config(user string, timeout time.Duration, auth ...ssh.AuthMethod) *ssh.ClientConfig {
	return &ssh.ClientConfig{
		User:            user,
		Auth:            auth,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		ClientVersion:   ClientVersion(),
		Timeout:         timeout,
	}
}
