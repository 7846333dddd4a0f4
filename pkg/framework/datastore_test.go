package framework

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDataStore(t *testing.T) {
	parent := NewDataStore(nil)
	parent.Set("LHOST", "1.1.1.1")
	ds := NewDataStore(parent)
	ds.SetDefault("LPORT", "4444")
	ds.Set("Payload", "generic/shell_bind_tcp")

	if v, ok := ds.Get("payload"); !ok || v != "generic/shell_bind_tcp" {
		t.Errorf("case-insensitive Get failed: (%q, %v)", v, ok)
	}
	if v, _ := ds.Get("lhost"); v != "1.1.1.1" {
		t.Errorf("Get didn't fall back to parent")
	}
	if ds.Has("LHOST") {
		t.Errorf("Has should ignore the parent")
	}
	if !ds.UserDefined("PAYLOAD") || ds.UserDefined("LPORT") {
		t.Errorf("UserDefined gives wrong answers")
	}

	ds.ClearNonUserDefined()
	if diff := cmp.Diff([]string{"Payload"}, ds.Names()); diff != "" {
		t.Errorf("Names() after ClearNonUserDefined (-want +got):\n%s", diff)
	}

	ds.Set("lhost", "2.2.2.2")
	want := map[string]string{"lhost": "2.2.2.2", "Payload": "generic/shell_bind_tcp"}
	if diff := cmp.Diff(want, ds.Map()); diff != "" {
		t.Errorf("Map() (-want +got):\n%s", diff)
	}
	if !ds.Unset("PAYLOAD") || ds.Unset("PAYLOAD") {
		t.Errorf("Unset gives wrong answers")
	}
}
