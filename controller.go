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
	"regexp"

	"go.uber.org/zap"
)

// The bulk operations share one contract: the pattern is compiled before any
// hook is touched, so a malformed pattern mutates nothing; matching zero
// hooks is a successful no-op; unhookable matches are skipped silently.
// Patterns are unanchored regular expressions over the full descriptor name,
// kind:name@file:line. The empty pattern matches every name.

// Activate patches every matching hookable hook to Active, in any kind.
func Activate(pattern string) error { return Default().Activate(pattern) }

// Deactivate patches every matching hookable hook to Inactive, in any kind.
func Deactivate(pattern string) error { return Default().Deactivate(pattern) }

// Unhook makes matching hooks refuse future state changes. The current
// state of each match is left exactly as it is.
func Unhook(pattern string) error { return Default().Unhook(pattern) }

// Rehook undoes [Unhook] for matching hooks, again without touching their
// current state. Unsafe hooks stay unhookable.
func Rehook(pattern string) error { return Default().Rehook(pattern) }

// ActivateKind is [Activate] restricted to one kind's partition; only that
// kind's hooks are scanned. An empty pattern selects the whole kind.
func ActivateKind(kind, pattern string) error { return Default().ActivateKind(kind, pattern) }

// DeactivateKind is the kind-scoped [Deactivate].
func DeactivateKind(kind, pattern string) error { return Default().DeactivateKind(kind, pattern) }

func (r *Registry) Activate(pattern string) error {
	return r.applyState("", pattern, Active)
}

func (r *Registry) Deactivate(pattern string) error {
	return r.applyState("", pattern, Inactive)
}

func (r *Registry) ActivateKind(kind, pattern string) error {
	return r.applyState(kind, pattern, Active)
}

func (r *Registry) DeactivateKind(kind, pattern string) error {
	return r.applyState(kind, pattern, Inactive)
}

func (r *Registry) Unhook(pattern string) error {
	return r.setHookable(pattern, false)
}

func (r *Registry) Rehook(pattern string) error {
	return r.setHookable(pattern, true)
}

func compilePattern(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPattern, err)
	}
	return re, nil
}

func (r *Registry) applyState(kind, pattern string, s State) error {
	re, err := compilePattern(pattern)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	matched, skipped := 0, 0
	for _, h := range r.scopeLocked(kind) {
		if !re.MatchString(h.name) {
			continue
		}
		matched++
		if h.set(s) != nil {
			skipped++ // unhookable, deliberately not an error
		}
	}
	r.logger.Debug("hooks toggled",
		zap.Stringer("state", s),
		zap.String("kind", kind),
		zap.String("pattern", pattern),
		zap.Int("matched", matched),
		zap.Int("skipped", skipped))
	return nil
}

func (r *Registry) setHookable(pattern string, hookable bool) error {
	re, err := compilePattern(pattern)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := 0
	for _, h := range r.hooks {
		if h.pinned || !re.MatchString(h.name) {
			continue
		}
		matched++
		h.hookable = hookable
	}
	verb := "unhooked"
	if hookable {
		verb = "rehooked"
	}
	r.logger.Debug("hooks "+verb,
		zap.String("pattern", pattern),
		zap.Int("matched", matched))
	return nil
}
