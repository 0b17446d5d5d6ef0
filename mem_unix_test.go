//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package dynflag

import (
	"os"
	"testing"
	"unsafe"
)

func TestMapExecutable(t *testing.T) {
	mem, err := mapExecutable(arenaChunkBytes)
	if err != nil {
		t.Skipf("host refuses writable executable memory: %v", err)
	}

	if len(mem) != arenaChunkBytes {
		t.Errorf("mapped %d bytes, want %d", len(mem), arenaChunkBytes)
	}
	if uintptr(unsafe.Pointer(&mem[0]))%uintptr(os.Getpagesize()) != 0 {
		t.Error("mapping is not page aligned")
	}

	// must be writable despite PROT_EXEC
	mem[0] = 0xcc
	if mem[0] != 0xcc {
		t.Error("mapping is not writable")
	}
}
