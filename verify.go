// This file is part of the dynamic-flag project, available at https://github.com/markpapadakis/dynamic-flag
// Copyright (c) 2026 Mark Papadakis. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at https://www.apache.org/licenses/LICENSE-2.0
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dynflag

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/arch/arm64/arm64asm"
	"golang.org/x/arch/x86/x86asm"
)

// Verify reads back the memory of every patched site and checks that it
// holds exactly one of the two declared encodings, by byte comparison and by
// actually disassembling the instruction and its displacement. Portable and
// pinned sites carry no instruction and are skipped.
//
// No sequence of toggles can violate the invariant; Verify exists to detect
// external corruption of the arena and as a diagnostic after incidents.
func (r *Registry) Verify() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, h := range r.hooks {
		ps, ok := h.site.(*patchedSite)
		if !ok {
			continue
		}
		if err := verifySlot(ps.enc, ps.slot); err != nil {
			return fmt.Errorf("%s: %w", h.name, err)
		}
	}
	return nil
}

func verifySlot(enc *encoding, slot []byte) error {
	word := binary.LittleEndian.Uint32(slot)
	if !enc.valid(word) {
		return fmt.Errorf("site holds %#08x, not a valid encoding", word)
	}
	instr := slot[:enc.instrLen]

	switch enc.arch {
	case "amd64":
		inst, err := x86asm.Decode(instr, 64)
		if err != nil {
			return fmt.Errorf("site does not decode: %v", err)
		}
		if inst.Len != enc.instrLen {
			return fmt.Errorf("decoded length %d, want %d", inst.Len, enc.instrLen)
		}
		if enc.entered(word) {
			if inst.Op != x86asm.JMP {
				return fmt.Errorf("jump encoding decodes to %v", inst.Op)
			}
			rel, ok := inst.Args[0].(x86asm.Rel)
			if !ok || int(rel) != enc.blockOff-enc.instrLen {
				return fmt.Errorf("jump does not target the guarded block: %v", inst)
			}
		} else if inst.Op != x86asm.TEST {
			return fmt.Errorf("fall-through encoding decodes to %v", inst.Op)
		}
	case "arm64":
		inst, err := arm64asm.Decode(instr)
		if err != nil {
			return fmt.Errorf("site does not decode: %v", err)
		}
		if enc.entered(word) {
			if inst.Op != arm64asm.B {
				return fmt.Errorf("jump encoding decodes to %v", inst.Op)
			}
			rel, ok := inst.Args[0].(arm64asm.PCRel)
			if !ok || int(rel) != enc.blockOff {
				return fmt.Errorf("jump does not target the guarded block: %v", inst)
			}
		} else if inst.Op == arm64asm.B {
			return fmt.Errorf("fall-through encoding decodes to a branch")
		}
	default:
		return fmt.Errorf("no decoder for %s sites", enc.arch)
	}
	return nil
}
