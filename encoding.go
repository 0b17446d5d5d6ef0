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

// encoding is the per-architecture contract for one hook slot. A slot is
// slotSize bytes: the patchable instruction at offset 0, the skip path right
// after it, and the guarded-block code at blockOff. The first 4 bytes of the
// slot are the only bytes ever rewritten after installation, as a single
// aligned 32-bit atomic store of either test or jump.
//
// test falls through to the skip path and has no effect visible to program
// logic (it only clobbers flags, or nothing at all on ARM64 where it targets
// the scratch register). jump transfers control to blockOff. The jump
// displacement is encoded once, in both words, so a transition changes only
// the bits that select the operation.
type encoding struct {
	arch     string
	slotSize int
	instrLen int // bytes of the patchable instruction
	blockOff int // slot offset of the guarded-block code
	test     uint32
	jump     uint32
	tail     []byte // immutable slot bytes from offset 4 to slotSize
}

// amd64Encoding patches between
//
//	test eax, 0x3    A9 03 00 00 00    fall through
//	jmp  .+3         E9 03 00 00 00    enter the block at +8
//
// The displacement bytes are identical, so the two first words differ in the
// opcode byte only and the atomic store changes exactly one byte in memory.
// The skip path at +5 is xor eax,eax; ret and the block at +8 is
// mov eax,1; ret, with int3 padding.
var amd64Encoding = encoding{
	arch:     "amd64",
	slotSize: 16,
	instrLen: 5,
	blockOff: 8,
	test:     0x000003a9,
	jump:     0x000003e9,
	tail: []byte{
		0x00,                   // high displacement byte, shared by both encodings
		0x31, 0xc0, 0xc3,       // xor eax, eax; ret
		0xb8, 0x01, 0x00, 0x00, // mov eax, 1
		0x00, 0xc3, // ...; ret
		0xcc, 0xcc, // int3 padding
	},
}

// arm64Encoding patches between
//
//	tst x16, x16     1F 02 10 EA       fall through
//	b   .+12         03 00 00 14       enter the block at +12
//
// Instructions are exactly one aligned word, the architecture's natural
// atomic store granularity, so the whole instruction is replaced at once.
// x16 is the IP0 scratch register, dead across the site by convention.
var arm64Encoding = encoding{
	arch:     "arm64",
	slotSize: 24,
	instrLen: 4,
	blockOff: 12,
	test:     0xea10021f,
	jump:     0x14000003,
	tail: []byte{
		0x00, 0x00, 0x80, 0x52, // mov w0, #0
		0xc0, 0x03, 0x5f, 0xd6, // ret
		0x20, 0x00, 0x80, 0x52, // mov w0, #1
		0xc0, 0x03, 0x5f, 0xd6, // ret
		0x00, 0x00, 0x20, 0xd4, // brk #0 padding
	},
}

func (e *encoding) wordFor(entered bool) uint32 {
	if entered {
		return e.jump
	}
	return e.test
}

// entered reports whether word is the jump encoding. The caller must have
// established that word is one of the two valid encodings.
func (e *encoding) entered(word uint32) bool {
	return word == e.jump
}

func (e *encoding) valid(word uint32) bool {
	return word == e.test || word == e.jump
}

// enterFor maps an administrative state to a block-entered outcome under the
// hook's polarity, and stateFor is its inverse.
func enterFor(s State, flipped bool) bool {
	return (s == Active) != flipped
}

func stateFor(entered, flipped bool) State {
	if entered != flipped {
		return Active
	}
	return Inactive
}
