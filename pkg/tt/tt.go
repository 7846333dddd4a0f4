// Package tt supports table-driven tests with little boilerplate.
//
// A test is written as a list of cases against a function:
//
//	tt.Test(t, tt.Fn(strings.ToUpper).Named("ToUpper"),
//		It("upcases ASCII").Args("abc").Rets("ABC"),
//	)
package tt

import (
	"fmt"
	"reflect"
	"strings"
)

// Case is one test case. It is created by It and completed with Args and Rets.
type Case struct {
	desc     string
	args     []any
	matchers []any
}

// It returns a new Case with the given description.
func It(desc string) *Case { return &Case{desc: desc} }

// Args sets the arguments of the case and returns the case.
func (c *Case) Args(args ...any) *Case {
	c.args = args
	return c
}

// Rets sets the expected return values of the case and returns the case. A
// value implementing Matcher is matched with its Match method; other values
// are compared with reflect.DeepEqual.
func (c *Case) Rets(matchers ...any) *Case {
	c.matchers = matchers
	return c
}

// FnDescriptor describes a function under test.
type FnDescriptor struct {
	name string
	body any
}

// Fn wraps a function for use in Test.
func Fn(body any) *FnDescriptor { return &FnDescriptor{body: body} }

// Named sets the name used in failure messages and returns the descriptor.
func (fn *FnDescriptor) Named(name string) *FnDescriptor {
	fn.name = name
	return fn
}

// T is the subset of testing.TB used by Test.
type T interface {
	Helper()
	Errorf(format string, args ...any)
}

// Matcher wraps the Match method.
type Matcher interface {
	// Match reports whether a return value is considered a match. The argument
	// is of type RetValue so that it cannot be implemented accidentally.
	Match(RetValue) bool
}

// RetValue is an empty interface used in the Matcher interface.
type RetValue any

// Any is a Matcher that matches any value.
var Any Matcher = anyMatcher{}

type anyMatcher struct{}

func (anyMatcher) Match(RetValue) bool { return true }

// Test runs all the cases against fn.
func Test(t T, fn *FnDescriptor, cases ...*Case) {
	t.Helper()
	for _, c := range cases {
		rets := call(fn.body, c.args)
		if !match(c.matchers, rets) {
			t.Errorf("%s (%s): %s(%s) -> %s, want %s", fn.name, c.desc,
				fn.name, join(c.args), join(rets), join(c.matchers))
		}
	}
}

func call(fn any, args []any) []any {
	argsReflect := make([]reflect.Value, len(args))
	fnType := reflect.TypeOf(fn)
	for i, arg := range args {
		if arg == nil {
			// The zero reflect.Value is not a valid argument; use the zero
			// value of the parameter type instead.
			argsReflect[i] = reflect.Zero(paramType(fnType, i))
		} else {
			argsReflect[i] = reflect.ValueOf(arg)
		}
	}
	retsReflect := reflect.ValueOf(fn).Call(argsReflect)
	rets := make([]any, len(retsReflect))
	for i, ret := range retsReflect {
		rets[i] = ret.Interface()
	}
	return rets
}

func paramType(fnType reflect.Type, i int) reflect.Type {
	if fnType.IsVariadic() && i >= fnType.NumIn()-1 {
		return fnType.In(fnType.NumIn() - 1).Elem()
	}
	return fnType.In(i)
}

func match(matchers, actual []any) bool {
	if len(matchers) != len(actual) {
		return false
	}
	for i, m := range matchers {
		if m, ok := m.(Matcher); ok {
			if !m.Match(actual[i]) {
				return false
			}
			continue
		}
		if !reflect.DeepEqual(m, actual[i]) {
			return false
		}
	}
	return true
}

func join(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%#v", v)
	}
	return strings.Join(parts, ", ")
}
