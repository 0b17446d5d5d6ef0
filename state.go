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

import "errors"

// State is the administrative state of a hook. Whether Active means
// "guarded block runs" or "guarded block is skipped" depends on the hook's
// polarity, see [NewFlipped].
type State uint8

const (
	Inactive State = iota
	Active
)

func (s State) String() string {
	switch s {
	case Inactive:
		return "inactive"
	case Active:
		return "active"
	}
	return "invalid"
}

// ErrBadPattern is reported when an administrative call receives a pattern
// that does not compile as a regular expression. It is detected before any
// hook is mutated.
var ErrBadPattern = errors.New("malformed hook pattern")

// ErrUnhookable is reported by [Hook.SetState] when the hook has been
// unhooked or was registered as unsafe. Bulk administrative calls skip such
// hooks silently instead of returning it.
var ErrUnhookable = errors.New("hook is not hookable")
