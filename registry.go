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
	"fmt"
	"path/filepath"
	"runtime"
	"sync"

	"go.uber.org/zap"
)

// Registry owns every hook registered against it: one global list plus one
// list per kind, so kind-scoped calls never scan unrelated hooks. Hooks are
// only ever appended; nothing is removed for the process lifetime.
//
// Almost all programs use the process-wide [Default] registry through the
// package-level functions. Separate registries exist so that tests can work
// against an isolated hook population.
type Registry struct {
	mu       sync.Mutex
	logger   *zap.Logger
	hooks    []*Hook
	kinds    map[string][]*Hook
	arena    *arena
	portable bool
	initOnce sync.Once
}

// Option configures a [Registry] at construction.
type Option func(*Registry)

// WithLogger attaches a logger; the default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithPortableSites forces the atomic-boolean site strategy even where
// in-place patching is available. Meant for environments that cannot
// tolerate writable executable mappings.
func WithPortableSites() Option {
	return func(r *Registry) { r.portable = true }
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		logger: zap.NewNop(),
		kinds:  make(map[string][]*Hook),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry used by the package-level
// functions.
func Default() *Registry { return defaultRegistry }

// SetLogger attaches a logger to the default registry.
func SetLogger(l *zap.Logger) {
	if l == nil {
		return
	}
	r := Default()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = l
}

// Init performs idempotent process-wide setup of the default registry. It is
// cheap and safe to call any number of times.
func Init() { Default().Init() }

// Init logs the registry's mode and population once. Registration and
// toggling do not depend on it having been called.
func (r *Registry) Init() {
	r.initOnce.Do(func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		mode := "patched"
		switch {
		case !patchSupported:
			mode = "pinned"
		case r.portable:
			mode = "portable"
		}
		r.logger.Info("dynamic flags initialised",
			zap.String("mode", mode),
			zap.Int("hooks", len(r.hooks)),
			zap.Int("kinds", len(r.kinds)))
	})
}

// register creates the descriptor, installs the site with its initial
// encoding and links it into the global and kind lists. skip counts stack
// frames up to the user's registration call, for the file:line part of the
// descriptor name.
func (r *Registry) register(skip int, kind, name string, entered, flipped, pinned bool) *Hook {
	if kind == "" || name == "" {
		panic("dynflag: hook kind and name must not be empty")
	}
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		file, line = "unknown", 0
	}

	if !patchSupported {
		pinned = true // whole-process fallback, nothing is ever patched
	}
	h := &Hook{
		reg:      r,
		kind:     kind,
		name:     fmt.Sprintf("%s:%s@%s:%d", kind, name, filepath.Base(file), line),
		flipped:  flipped,
		pinned:   pinned,
		initial:  stateFor(entered, flipped),
		hookable: !pinned,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	h.site = r.placeSite(entered, pinned)
	r.hooks = append(r.hooks, h)
	r.kinds[kind] = append(r.kinds[kind], h)
	return h
}

// placeSite picks the strategy: a real instruction slot when we can get one,
// the atomic guard when the arena is unavailable, a constant for pinned
// hooks. Caller holds mu.
func (r *Registry) placeSite(entered, pinned bool) site {
	if pinned {
		return pinnedSite(entered)
	}
	if !r.portable {
		if r.arena == nil {
			r.arena = newArena(nativeEncoding)
		}
		s, err := r.arena.place(entered)
		if err == nil {
			return s
		}
		// One failed mapping means later ones will fail too; degrade the
		// whole registry rather than mixing strategies mid-kind.
		r.portable = true
		r.logger.Warn("executable arena unavailable, using portable sites", zap.Error(err))
	}
	s := &portableSite{}
	s.on.Store(entered)
	return s
}

// SiteInfo is a point-in-time view of one hook, for diagnostics.
type SiteInfo struct {
	Name     string
	Kind     string
	State    State
	Initial  State // state held immediately after registration
	Enabled  bool
	Hookable bool
	Patched  bool // backed by a live instruction slot
}

// Snapshot returns the current view of every hook of the given kind, or of
// all hooks when kind is empty.
func (r *Registry) Snapshot(kind string) []SiteInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	scope := r.scopeLocked(kind)
	out := make([]SiteInfo, 0, len(scope))
	for _, h := range scope {
		_, patched := h.site.(*patchedSite)
		out = append(out, SiteInfo{
			Name:     h.name,
			Kind:     h.kind,
			State:    h.State(),
			Initial:  h.initial,
			Enabled:  h.Enabled(),
			Hookable: h.hookable,
			Patched:  patched,
		})
	}
	return out
}

func (r *Registry) scopeLocked(kind string) []*Hook {
	if kind == "" {
		return r.hooks
	}
	return r.kinds[kind]
}
