package dynflag

import (
	"bytes"
	"errors"
	"regexp"
	"testing"
)

func TestDescriptorNameFormat(t *testing.T) {
	r := newTestRegistry(t)

	h := r.New("debug", "slow-path")

	want := regexp.MustCompile(`^debug:slow-path@hook_test\.go:\d+$`)
	if !want.MatchString(h.Name()) {
		t.Errorf("descriptor name %q does not match kind:name@file:line", h.Name())
	}
	if h.Kind() != "debug" {
		t.Errorf("unexpected kind %q", h.Kind())
	}
}

func TestRegistrationDefaults(t *testing.T) {
	r := newTestRegistry(t)

	cases := []struct {
		label    string
		hook     *Hook
		enabled  bool
		state    State
		hookable bool
	}{
		{"default-off", r.New("k", "a"), false, Inactive, true},
		{"default-on", r.NewOn("k", "b"), true, Active, true},
		{"unsafe", r.NewUnsafe("k", "c"), false, Inactive, false},
		{"flipped", r.NewFlipped("k", "d"), false, Active, true},
		{"flipped-on", r.NewFlippedOn("k", "e"), true, Inactive, true},
		{"debug", r.NewDebug("f"), true, Active, true},
	}
	for _, c := range cases {
		if c.hook.Enabled() != c.enabled {
			t.Errorf("%s: Enabled() = %v, want %v", c.label, c.hook.Enabled(), c.enabled)
		}
		if c.hook.State() != c.state {
			t.Errorf("%s: State() = %v, want %v", c.label, c.hook.State(), c.state)
		}
		if c.hook.Hookable() != c.hookable {
			t.Errorf("%s: Hookable() = %v, want %v", c.label, c.hook.Hookable(), c.hookable)
		}
	}
}

func TestSetStateFollowsPolarity(t *testing.T) {
	r := newTestRegistry(t)

	normal := r.New("perf", "normal")
	flipped := r.NewFlippedOn("perf", "flipped")

	if err := normal.SetState(Active); err != nil {
		t.Fatal(err)
	}
	if !normal.Enabled() {
		t.Error("activating a normal hook must enter the block")
	}

	if err := flipped.SetState(Active); err != nil {
		t.Fatal(err)
	}
	if flipped.Enabled() {
		t.Error("activating a flipped hook must skip the block")
	}
	if err := flipped.SetState(Inactive); err != nil {
		t.Fatal(err)
	}
	if !flipped.Enabled() {
		t.Error("deactivating a flipped hook must enter the block")
	}
}

func TestSetStateIdempotent(t *testing.T) {
	r := newTestRegistry(t)
	h := r.New("perf", "idem")

	if err := h.SetState(Active); err != nil {
		t.Fatal(err)
	}
	once := make([]byte, len(slotBytes(t, h)))
	copy(once, slotBytes(t, h))

	if err := h.SetState(Active); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(once, slotBytes(t, h)) {
		t.Error("repeated SetState changed the site bytes")
	}
	if h.State() != Active {
		t.Errorf("state %v after repeated activation", h.State())
	}
}

func TestUnsafeHookRefusesPatching(t *testing.T) {
	r := newTestRegistry(t)
	h := r.NewUnsafe("k", "frozen")

	err := h.SetState(Active)
	if !errors.Is(err, ErrUnhookable) {
		t.Errorf("got %v, want ErrUnhookable", err)
	}
	if h.Enabled() {
		t.Error("unsafe hook changed state")
	}
}

func TestDummyEnsuresKind(t *testing.T) {
	r := newTestRegistry(t)
	r.Dummy("maintenance")

	infos := r.Snapshot("maintenance")
	if len(infos) != 1 {
		t.Fatalf("expected 1 hook for the kind, got %d", len(infos))
	}
	if infos[0].Hookable {
		t.Error("dummy hook must be pinned")
	}
	if !regexp.MustCompile(`^maintenance:dummy@`).MatchString(infos[0].Name) {
		t.Errorf("unexpected dummy name %q", infos[0].Name)
	}
}

func TestEmptyKindPanics(t *testing.T) {
	r := newTestRegistry(t)
	defer func() {
		if recover() == nil {
			t.Errorf("The code did not panic")
		}
	}()

	r.New("", "nameless")
}

func TestSnapshotScopes(t *testing.T) {
	r := newTestRegistry(t)
	r.New("perf", "a")
	r.New("perf", "b")
	r.NewOn("debug", "c")

	if n := len(r.Snapshot("")); n != 3 {
		t.Errorf("global snapshot has %d hooks, want 3", n)
	}
	if n := len(r.Snapshot("perf")); n != 2 {
		t.Errorf("perf snapshot has %d hooks, want 2", n)
	}
	if n := len(r.Snapshot("absent")); n != 0 {
		t.Errorf("unknown kind snapshot has %d hooks, want 0", n)
	}
	for _, info := range r.Snapshot("perf") {
		if !info.Patched {
			t.Errorf("%s should be backed by an instruction slot", info.Name)
		}
		if info.Initial != Inactive {
			t.Errorf("%s records initial state %v", info.Name, info.Initial)
		}
	}
}
