// Package errutil combines errors and takes them apart again.
package errutil

import "strings"

// Multi combines errors into one. Nil errors are dropped; if none is left the
// result is nil, and a single error is returned as is. Errors combined by an
// earlier call are spliced in, so nesting calls gives a flat list.
//
// The combined error satisfies errors.Is and errors.As for each member.
func Multi(errs ...error) error {
	var flat multiError
	for _, err := range errs {
		switch err := err.(type) {
		case nil:
		case multiError:
			flat = append(flat, err...)
		default:
			flat = append(flat, err)
		}
	}
	switch len(flat) {
	case 0:
		return nil
	case 1:
		return flat[0]
	}
	return flat
}

type multiError []error

func (me multiError) Error() string {
	msgs := make([]string, len(me))
	for i, err := range me {
		msgs[i] = err.Error()
	}
	return "multiple errors: " + strings.Join(msgs, "; ")
}

func (me multiError) Unwrap() []error { return me }

// Causes returns the errors err wraps, directly or indirectly, in depth-first
// order. Members of a combined error each contribute their own chain.
func Causes(err error) []error {
	var causes []error
	var walk func(error)
	walk = func(err error) {
		var next []error
		switch u := err.(type) {
		case interface{ Unwrap() error }:
			if e := u.Unwrap(); e != nil {
				next = []error{e}
			}
		case interface{ Unwrap() []error }:
			next = u.Unwrap()
		}
		for _, e := range next {
			causes = append(causes, e)
			walk(e)
		}
	}
	walk(err)
	return causes
}
