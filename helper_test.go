package dynflag

import (
	"encoding/binary"
	"testing"
	"unsafe"
)

// heapChunk backs the arena with ordinary heap memory so the suite does not
// depend on the host granting writable executable mappings. The patching
// logic is byte-for-byte the same.
func heapChunk(size int) ([]byte, error) {
	words := make([]uint32, size/4)
	return unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), size), nil
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	if !patchSupported {
		t.Skip("no encoding table for this architecture")
	}
	r := NewRegistry()
	r.arena = newArena(nativeEncoding)
	r.arena.mapper = heapChunk
	return r
}

// materialize renders the full slot bytes a freshly installed site must hold.
func materialize(enc *encoding, entered bool) []byte {
	slot := make([]byte, enc.slotSize)
	binary.LittleEndian.PutUint32(slot, enc.wordFor(entered))
	copy(slot[4:], enc.tail)
	return slot
}

func slotBytes(t *testing.T, h *Hook) []byte {
	t.Helper()
	ps, ok := h.site.(*patchedSite)
	if !ok {
		t.Fatalf("hook %s is not backed by an instruction slot", h.Name())
	}
	return ps.slot
}
