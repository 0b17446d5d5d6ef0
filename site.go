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

import "sync/atomic"

// site is the patchable capability behind one hook. All implementations are
// safe for concurrent entered/setEntered; the controller additionally
// serializes setEntered callers.
type site interface {
	entered() bool
	setEntered(bool)
}

// patchedSite is a live instruction slot in the executable arena. The state
// is the instruction itself: entered loads the first word and compares it
// against the jump encoding, setEntered stores the replacement word.
type patchedSite struct {
	enc  *encoding
	slot []byte
	word *uint32 // first word of slot, 4-byte aligned
}

func (p *patchedSite) entered() bool {
	return p.enc.entered(atomic.LoadUint32(p.word))
}

func (p *patchedSite) setEntered(on bool) {
	atomic.StoreUint32(p.word, p.enc.wordFor(on))
}

// portableSite is the reference strategy for hosts that refuse writable
// executable memory: an atomic boolean guarding the branch.
type portableSite struct {
	on atomic.Bool
}

func (p *portableSite) entered() bool     { return p.on.Load() }
func (p *portableSite) setEntered(b bool) { p.on.Store(b) }

// pinnedSite backs unsafe hooks and every hook on architectures without an
// encoding table. The outcome is fixed at registration.
type pinnedSite bool

func (p pinnedSite) entered() bool   { return bool(p) }
func (p pinnedSite) setEntered(bool) {} // pinned hooks are rejected before patching
