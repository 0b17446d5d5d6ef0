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

/*
Package dynflag toggles guarded blocks of code ("hooks") on and off at runtime
by rewriting machine instructions in place, instead of branching on a flag
loaded from data memory on every call.

# The concept

Every hook owns one fixed-size instruction slot in an executable arena the
package maps at startup. The slot always holds exactly one of two valid
encodings of the same length:

  - a test against a disposable register that falls through to the skip path
    (the guarded block does not run), or
  - a relative jump into the guarded block (the block runs).

The jump displacement is written once, when the hook is registered, and never
changes. Flipping a hook only rewrites the opcode with a single aligned
32-bit atomic store, so a thread that is concurrently fetching the slot
observes either the complete old instruction or the complete new one, never a
torn hybrid. The hot path - [Hook.Enabled] - is one atomic load with no
locks, no map lookups and no allocation.

Hooks are declared once, usually in a package-level var:

	var slowPath = dynflag.New("perf", "slow-path-tracing")

	func handle(req *Request) {
	    if slowPath.Enabled() {
	        // expensive tracing, off by default
	    }
	    ...
	}

Code inside a guarded block must stay correct whether or not it runs: hooks
can be toggled between any two invocations.

Every hook carries a descriptor name of the form

	kind:name@file:line

and the administrative surface works on regular expressions over those names:

	dynflag.Activate("slow-path")          // any kind
	dynflag.DeactivateKind("perf", "")     // empty pattern matches the whole kind
	dynflag.Unhook("perf:")                // freeze matching hooks as they are
	dynflag.Rehook("perf:")

A malformed pattern is the only error these calls report; matching zero hooks
is a successful no-op.

# Platforms supported

In-place patching needs an instruction encoding table for the CPU and an
executable memory mapping from the OS:

  - x86-64 and ARM64 have encoding tables
  - Linux, macOS, *BSD (via mmap) and Windows (via VirtualAlloc) can map the
    arena

On other CPU architectures, hooks are pinned to their compile-time default
and the administrative calls become success-returning no-ops. When the build
target is supported but the process cannot obtain writable executable memory
(W^X-hardened hosts), hooks degrade to an atomic boolean guard with identical
toggling semantics. [Hook.Enabled] behaves the same in every mode.

# Concurrency

Guarded code never synchronizes with the administrative side - it simply
executes whichever instruction currently occupies its slot. Administrative
calls serialize on a per-registry mutex. A patch applied on one core becomes
visible to others per the architecture's instruction fetch and coherency
rules; do not assume instantaneous cross-core visibility.

Some x86 processors may mis-speculate across an instruction that is being
rewritten concurrently and raise a spurious fault. That failure mode cannot
execute unintended bytes and cannot corrupt state; environments that cannot
tolerate it should use portable sites, see [WithPortableSites].
*/
package dynflag
