package dynflag

import (
	"testing"
)

func TestPortableSitesToggle(t *testing.T) {
	r := NewRegistry(WithPortableSites())
	h := r.New("perf", "portable")

	if h.Enabled() {
		t.Error("default-off hook starts enabled")
	}
	if err := r.Activate("portable"); err != nil {
		t.Fatal(err)
	}
	if !h.Enabled() {
		t.Error("portable site did not toggle on")
	}
	if err := r.Deactivate("portable"); err != nil {
		t.Fatal(err)
	}
	if h.Enabled() {
		t.Error("portable site did not toggle off")
	}

	for _, info := range r.Snapshot("") {
		if info.Patched {
			t.Errorf("%s claims an instruction slot in portable mode", info.Name)
		}
	}
}

func TestPortableFlippedPolarity(t *testing.T) {
	r := NewRegistry(WithPortableSites())
	h := r.NewFlippedOn("perf", "flipped")

	if !h.Enabled() {
		t.Error("flipped-on hook must start with its block running")
	}
	if err := r.Activate("flipped"); err != nil {
		t.Fatal(err)
	}
	if h.Enabled() {
		t.Error("activating a flipped hook must skip the block")
	}
}

// Pinned hooks share the code path the whole process takes on architectures
// without an encoding table: bulk calls succeed and nothing ever moves.
func TestPinnedHooksAreNoOpSuccess(t *testing.T) {
	r := NewRegistry(WithPortableSites())
	off := r.NewUnsafe("k", "off")
	r.Dummy("k")

	for _, call := range []func() error{
		func() error { return r.Activate("") },
		func() error { return r.Deactivate("") },
		func() error { return r.Unhook("") },
		func() error { return r.Rehook("") },
		func() error { return r.ActivateKind("k", "") },
	} {
		if err := call(); err != nil {
			t.Fatalf("bulk call failed on pinned hooks: %v", err)
		}
	}
	if off.Enabled() {
		t.Error("pinned hook changed state")
	}
	if off.Hookable() {
		t.Error("pinned hook became hookable")
	}
}

func TestVerifySkipsPortableSites(t *testing.T) {
	r := NewRegistry(WithPortableSites())
	r.New("perf", "portable")

	if err := r.Verify(); err != nil {
		t.Errorf("verify failed on a portable registry: %v", err)
	}
}
