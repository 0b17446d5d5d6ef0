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
	"sync/atomic"
	"unsafe"
)

const arenaChunkBytes = 4096

// arena hands out instruction slots from writable+executable chunks. Slots
// are never reclaimed: hooks live for the process lifetime.
type arena struct {
	enc    *encoding
	mapper func(int) ([]byte, error)
	chunks [][]byte
	used   int // slots carved out of the newest chunk
}

func newArena(enc *encoding) *arena {
	return &arena{enc: enc, mapper: mapExecutable}
}

// place carves out one slot and installs the complete initial encoding: the
// operand and the fixed tail are written here, once; later transitions touch
// only the first word.
func (a *arena) place(entered bool) (*patchedSite, error) {
	perChunk := arenaChunkBytes / a.enc.slotSize
	if len(a.chunks) == 0 || a.used == perChunk {
		mem, err := a.mapper(arenaChunkBytes)
		if err != nil {
			return nil, err
		}
		a.chunks = append(a.chunks, mem)
		a.used = 0
	}
	chunk := a.chunks[len(a.chunks)-1]
	slot := chunk[a.used*a.enc.slotSize:][:a.enc.slotSize:a.enc.slotSize]
	a.used++

	copy(slot[4:], a.enc.tail)
	s := &patchedSite{
		enc:  a.enc,
		slot: slot,
		word: (*uint32)(unsafe.Pointer(&slot[0])),
	}
	atomic.StoreUint32(s.word, a.enc.wordFor(entered))
	return s, nil
}
