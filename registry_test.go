package dynflag

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitIsIdempotent(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := NewRegistry(WithLogger(zap.New(core)), WithPortableSites())
	r.New("perf", "a")

	r.Init()
	r.Init()
	r.Init()

	if n := logs.FilterMessage("dynamic flags initialised").Len(); n != 1 {
		t.Errorf("init logged %d times, want 1", n)
	}
}

func TestDegradesWhenArenaUnavailable(t *testing.T) {
	if !patchSupported {
		t.Skip("no encoding table for this architecture")
	}
	core, logs := observer.New(zap.WarnLevel)
	r := NewRegistry(WithLogger(zap.New(core)))
	r.arena = newArena(nativeEncoding)
	r.arena.mapper = func(int) ([]byte, error) { return nil, errors.New("W^X policy") }

	h := r.New("perf", "degraded")

	if _, patched := h.site.(*patchedSite); patched {
		t.Fatal("hook claims an instruction slot without a mapping")
	}
	if err := r.Activate("degraded"); err != nil {
		t.Fatal(err)
	}
	if !h.Enabled() {
		t.Error("degraded hook did not toggle")
	}
	if logs.FilterMessage("executable arena unavailable, using portable sites").Len() != 1 {
		t.Error("degradation was not logged")
	}
}

// The default registry is exercised through the package-level API, whatever
// site strategy the host allows.
func TestDefaultRegistry(t *testing.T) {
	Init()
	h := New("smoke", "default-registry")

	infos := Default().Snapshot("smoke")
	if len(infos) != 1 || infos[0].Name != h.Name() {
		t.Fatalf("hook not registered with the default registry: %+v", infos)
	}

	if err := Activate("default-registry"); err != nil {
		t.Fatal(err)
	}
	if !h.Enabled() {
		t.Error("package-level activation had no effect")
	}
	if err := Deactivate("default-registry"); err != nil {
		t.Fatal(err)
	}
	if h.Enabled() {
		t.Error("package-level deactivation had no effect")
	}
	if err := Default().Verify(); err != nil {
		t.Errorf("default registry failed verification: %v", err)
	}
}
