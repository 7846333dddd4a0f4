// Package dispatch implements the stack of command handlers consulted for
// each command line.
package dispatch

import "sort"

// Handler is a named set of commands.
type Handler interface {
	// Name identifies the handler, e.g. "Core" or "Module".
	Name() string
	// Commands maps each command name the handler accepts to a short
	// description.
	Commands() map[string]string
	// Invoke runs a command previously found in Commands.
	Invoke(cmd string, args []string) error
}

// Configurer is implemented by handlers that read settings when the
// stack is configured.
type Configurer interface {
	LoadConfig(path string)
}

// Stack is an ordered collection of handlers. The last pushed handler is
// consulted first. The base handler given to New can never be popped.
//
// A Stack is not safe for concurrent use.
type Stack struct {
	handlers []Handler
}

// New returns a Stack whose floor is base.
func New(base Handler) *Stack {
	return &Stack{handlers: []Handler{base}}
}

// Push puts h on top of the stack.
func (s *Stack) Push(h Handler) {
	s.handlers = append(s.handlers, h)
}

// Pop removes and returns the top handler. At the floor it returns nil and
// leaves the stack unchanged.
func (s *Stack) Pop() Handler {
	if len(s.handlers) <= 1 {
		return nil
	}
	top := s.handlers[len(s.handlers)-1]
	s.handlers = s.handlers[:len(s.handlers)-1]
	return top
}

// Remove removes the topmost handler with the given name, unless it is the
// base handler. It reports whether a handler was removed.
func (s *Stack) Remove(name string) bool {
	for i := len(s.handlers) - 1; i > 0; i-- {
		if s.handlers[i].Name() == name {
			s.handlers = append(s.handlers[:i:i], s.handlers[i+1:]...)
			return true
		}
	}
	return false
}

// Top returns the top handler.
func (s *Stack) Top() Handler { return s.handlers[len(s.handlers)-1] }

// Base returns the floor handler.
func (s *Stack) Base() Handler { return s.handlers[0] }

// Len returns the number of handlers, including the base.
func (s *Stack) Len() int { return len(s.handlers) }

// Each calls f on each handler from top to bottom, stopping if f returns
// false.
func (s *Stack) Each(f func(Handler) bool) {
	for i := len(s.handlers) - 1; i >= 0; i-- {
		if !f(s.handlers[i]) {
			return
		}
	}
}

// Resolve returns the topmost handler accepting cmd. Names are matched
// exactly.
func (s *Stack) Resolve(cmd string) (Handler, bool) {
	var found Handler
	s.Each(func(h Handler) bool {
		if _, ok := h.Commands()[cmd]; ok {
			found = h
			return false
		}
		return true
	})
	return found, found != nil
}

// Commands returns the sorted, deduplicated names of all the commands on the
// stack.
func (s *Stack) Commands() []string {
	seen := map[string]bool{}
	var names []string
	s.Each(func(h Handler) bool {
		for name := range h.Commands() {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
		return true
	})
	sort.Strings(names)
	return names
}

// Configure calls LoadConfig on each handler implementing Configurer, from
// bottom to top.
func (s *Stack) Configure(path string) {
	for _, h := range s.handlers {
		if c, ok := h.(Configurer); ok {
			c.LoadConfig(path)
		}
	}
}
