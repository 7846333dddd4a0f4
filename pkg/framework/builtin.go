package framework

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/ssh"
	"src.kitcon.sh/pkg/sshclient"
)

var builtinPayloads = map[string]string{
	"generic/shell_reverse_tcp": "Connect back to the attacker and spawn a shell",
	"generic/shell_bind_tcp":    "Listen for a connection and spawn a shell",
	"cmd/unix/reverse_bash":     "Creates an interactive shell via bash's builtin /dev/tcp",
}

func registerBuiltins(fw *Framework) {
	for name, desc := range builtinPayloads {
		fw.RegisterPayload(name, desc)
	}
	fw.RegisterModule("exploit/multi/handler", func() Module { return newHandler() })
	fw.RegisterModule("auxiliary/scanner/ssh/ssh_login", func() Module { return newSSHLogin() })
}

// The generic payload handler. It listens on LHOST:LPORT as a job and counts
// the connections it receives; staging payloads is left to the payload.
type handler struct {
	BaseModule
}

func newHandler() *handler {
	return &handler{BaseModule{
		ModName: "exploit/multi/handler",
		ModDesc: "Generic payload handler",
		ModOpts: []Option{
			{Name: "PAYLOAD", Required: true, Description: "The payload to handle"},
			{Name: "LHOST", Required: true, Description: "The listen address"},
			{Name: "LPORT", Default: "4444", Required: true, Description: "The listen port"},
		},
	}}
}

func (m *handler) ExploitSimple(fw *Framework, opts map[string]string, out io.Writer) error {
	values, err := Resolve(m, opts)
	if err != nil {
		return err
	}
	payload := lookupFold(values, "PAYLOAD")
	if !fw.IsPayloadValid(payload) {
		return fmt.Errorf("invalid payload: %s", payload)
	}
	addr := net.JoinHostPort(lookupFold(values, "LHOST"), lookupFold(values, "LPORT"))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("handler failed to bind to %s: %w", addr, err)
	}

	var conns atomic.Int64
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			n := conns.Add(1)
			logger.Info("handler received connection", "from", conn.RemoteAddr(), "count", n)
			conn.Close()
		}
	}()
	job := fw.Jobs().Start("Exploit: multi/handler", m.Name(), values, func() { ln.Close() })
	fmt.Fprintf(out, "Started %s handler on %s as job %d\n", payload, ln.Addr(), job.ID)
	return nil
}

// Tries one username and password against an SSH server.
type sshLogin struct {
	BaseModule
}

func newSSHLogin() *sshLogin {
	return &sshLogin{BaseModule{
		ModName: "auxiliary/scanner/ssh/ssh_login",
		ModDesc: "SSH login check",
		ModOpts: []Option{
			{Name: "RHOSTS", Required: true, Description: "The target host"},
			{Name: "RPORT", Default: "22", Required: true, Description: "The target port"},
			{Name: "USERNAME", Required: true, Description: "The username to try"},
			{Name: "PASSWORD", Description: "The password to try"},
			{Name: "TIMEOUT", Default: "10", Description: "Connect timeout in seconds"},
		},
	}}
}

var errLoginFailed = errors.New("login failed")

func (m *sshLogin) ExploitSimple(fw *Framework, opts map[string]string, out io.Writer) error {
	values, err := Resolve(m, opts)
	if err != nil {
		return err
	}
	timeout, err := strconv.Atoi(lookupFold(values, "TIMEOUT"))
	if err != nil || timeout <= 0 {
		timeout = 10
	}
	addr := net.JoinHostPort(lookupFold(values, "RHOSTS"), lookupFold(values, "RPORT"))
	user, pass := lookupFold(values, "USERNAME"), lookupFold(values, "PASSWORD")

	cfg := sshclient.Config(user, time.Duration(timeout)*time.Second, ssh.Password(pass))
	client, err := ssh.Dial("tcp", addr, cfg)
	if err != nil {
		fmt.Fprintf(out, "%s - Failed: '%s:%s' (%v)\n", addr, user, pass, err)
		return fmt.Errorf("%s: %w", addr, errLoginFailed)
	}
	defer client.Close()
	fmt.Fprintf(out, "%s - Success: '%s:%s' '%s'\n", addr, user, pass, client.ServerVersion())
	return nil
}
