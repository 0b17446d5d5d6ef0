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

// Hook is one registered guarded site. Hooks are created by the New family
// during package initialization and live until process exit; they are never
// unregistered.
//
// The only method meant for the guarded code path is [Hook.Enabled]. The
// rest is administrative.
type Hook struct {
	reg     *Registry
	kind    string
	name    string // kind:name@file:line
	initial State
	flipped bool
	pinned  bool
	site    site

	// guarded by reg.mu
	hookable bool
}

// Enabled reports whether the guarded block should run. It is lock-free: one
// atomic load of whatever currently occupies the hook's instruction slot.
func (h *Hook) Enabled() bool {
	return h.site.entered()
}

// Name returns the full descriptor name, kind:name@file:line.
func (h *Hook) Name() string { return h.name }

func (h *Hook) Kind() string { return h.kind }

func (h *Hook) String() string { return h.name }

// State returns the administrative state mirrored by the live encoding.
// For a flipped hook Active means the guarded block is skipped.
func (h *Hook) State() State {
	return stateFor(h.site.entered(), h.flipped)
}

// Hookable reports whether the hook currently accepts state changes. Unsafe
// hooks are never hookable.
func (h *Hook) Hookable() bool {
	h.reg.mu.Lock()
	defer h.reg.mu.Unlock()
	return h.hookable
}

// SetState patches the hook to the requested state; the polarity decides
// which encoding that is. Setting the current state again is a no-op store
// of the bytes already present. Returns [ErrUnhookable] for unhooked and
// unsafe hooks, and nothing else can fail.
func (h *Hook) SetState(s State) error {
	h.reg.mu.Lock()
	defer h.reg.mu.Unlock()
	return h.set(s)
}

// set is the patch engine. Caller holds reg.mu.
func (h *Hook) set(s State) error {
	if h.pinned || !h.hookable {
		return ErrUnhookable
	}
	h.site.setEntered(enterFor(s, h.flipped))
	return nil
}

// New registers a hook whose guarded block is skipped until activated.
func New(kind, name string) *Hook {
	return Default().register(2, kind, name, false, false, false)
}

// NewOn registers a hook whose guarded block runs until deactivated.
func NewOn(kind, name string) *Hook {
	return Default().register(2, kind, name, true, false, false)
}

// NewUnsafe registers a hook that is pinned with its guarded block skipped.
// It participates in the registry for matching and diagnostics but is never
// patched, on any host.
func NewUnsafe(kind, name string) *Hook {
	return Default().register(2, kind, name, false, false, true)
}

// NewFlipped registers a flipped-polarity hook: activating it skips the
// guarded block. Use it when the guarded block is the feature-off path.
// The block is skipped by default.
func NewFlipped(kind, name string) *Hook {
	return Default().register(2, kind, name, false, true, false)
}

// NewFlippedOn is [NewFlipped] with the guarded block running by default,
// i.e. the feature starts deactivated.
func NewFlippedOn(kind, name string) *Hook {
	return Default().register(2, kind, name, true, true, false)
}

// NewDebug registers a default-on hook of kind "debug".
func NewDebug(name string) *Hook {
	return Default().register(2, "debug", name, true, false, false)
}

// Dummy guarantees that at least one hook of the given kind exists, so that
// kind-scoped calls stay meaningful before any feature code uses the kind.
// The hook is pinned off.
func Dummy(kind string) {
	Default().register(2, kind, "dummy", false, false, true)
}

func (r *Registry) New(kind, name string) *Hook {
	return r.register(2, kind, name, false, false, false)
}

func (r *Registry) NewOn(kind, name string) *Hook {
	return r.register(2, kind, name, true, false, false)
}

func (r *Registry) NewUnsafe(kind, name string) *Hook {
	return r.register(2, kind, name, false, false, true)
}

func (r *Registry) NewFlipped(kind, name string) *Hook {
	return r.register(2, kind, name, false, true, false)
}

func (r *Registry) NewFlippedOn(kind, name string) *Hook {
	return r.register(2, kind, name, true, true, false)
}

func (r *Registry) NewDebug(name string) *Hook {
	return r.register(2, "debug", name, true, false, false)
}

func (r *Registry) Dummy(kind string) {
	r.register(2, kind, "dummy", false, false, true)
}
