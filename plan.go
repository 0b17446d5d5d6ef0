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
	"os"

	"gopkg.in/yaml.v3"
)

// Plan is a startup activation plan, usually loaded from a YAML file shipped
// alongside the service config:
//
//	rehook:
//	  - "perf:"
//	activate:
//	  - "slow-path"
//	deactivate:
//	  - "debug:"
//	kinds:
//	  perf:
//	    activate: [sampling]
//	unhook:
//	  - "legacy:"
//
// Every entry is a pattern with the same semantics as the corresponding
// administrative call. The plan only drives the in-process API; no state is
// ever persisted back.
type Plan struct {
	Rehook     []string            `yaml:"rehook"`
	Activate   []string            `yaml:"activate"`
	Deactivate []string            `yaml:"deactivate"`
	Unhook     []string            `yaml:"unhook"`
	Kinds      map[string]KindPlan `yaml:"kinds"`
}

// KindPlan is the kind-scoped part of a [Plan].
type KindPlan struct {
	Activate   []string `yaml:"activate"`
	Deactivate []string `yaml:"deactivate"`
}

// LoadPlan reads a YAML activation plan from path.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := ParsePlan(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// ParsePlan parses a YAML activation plan.
func ParsePlan(data []byte) (*Plan, error) {
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Apply runs the plan against a registry: rehook first, then deactivations,
// then activations (global before kind-scoped), and unhook last so that the
// plan's own toggles are not gated by its own unhooks. The first malformed
// pattern aborts the remainder.
func (p *Plan) Apply(r *Registry) error {
	for _, pat := range p.Rehook {
		if err := r.Rehook(pat); err != nil {
			return err
		}
	}
	for _, pat := range p.Deactivate {
		if err := r.Deactivate(pat); err != nil {
			return err
		}
	}
	for _, pat := range p.Activate {
		if err := r.Activate(pat); err != nil {
			return err
		}
	}
	for kind, kp := range p.Kinds {
		for _, pat := range kp.Deactivate {
			if err := r.DeactivateKind(kind, pat); err != nil {
				return err
			}
		}
		for _, pat := range kp.Activate {
			if err := r.ActivateKind(kind, pat); err != nil {
				return err
			}
		}
	}
	for _, pat := range p.Unhook {
		if err := r.Unhook(pat); err != nil {
			return err
		}
	}
	return nil
}
