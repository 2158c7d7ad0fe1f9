// Copyright 2026 The Lockstep Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package sim runs declarative scheduling scenarios against the
// dispatcher. A scenario declares named counter resources and the
// systems that read and write them each frame; the simulator drives
// the frame loop until the scenario's stop rule or frame limit fires.
package sim

import (
	"fmt"
	"slices"
	"strings"
)

// Counter is the resource type managed by scenarios. Systems mutate
// counters while holding their locks.
type Counter struct {
	Value int64
}

// A Scenario describes a self-contained simulation. The struct mirrors
// the on-disk YAML schema.
type Scenario struct {
	Name      string     `yaml:"name"`
	Frames    uint64     `yaml:"frames,omitempty"`
	Workers   int        `yaml:"workers,omitempty"`
	Depth     int        `yaml:"queue_depth,omitempty"`
	Resources []Resource `yaml:"resources"`
	Stages    []Stage    `yaml:"stages"`
	Stop      *StopRule  `yaml:"stop,omitempty"`
}

// A Resource declares a named counter and its starting value.
type Resource struct {
	Name  string `yaml:"name"`
	Start int64  `yaml:"start,omitempty"`
}

// A Stage groups systems that run together once per frame. Sequential
// stages invoke their systems in declaration order; parallel stages
// hand them to the worker pool and wait for all of them.
type Stage struct {
	Name     string   `yaml:"name"`
	Parallel bool     `yaml:"parallel,omitempty"`
	Systems  []System `yaml:"systems"`
}

// A System is a single task run once per frame. It adds Add, plus the
// current value of the AddFrom counter if set, to every counter in
// Writes.
type System struct {
	Name    string   `yaml:"name"`
	Reads   []string `yaml:"reads,omitempty"`
	Writes  []string `yaml:"writes,omitempty"`
	Add     int64    `yaml:"add,omitempty"`
	AddFrom string   `yaml:"add_from,omitempty"`

	// Flaky makes the first N attempts in every frame fail with a
	// retriable error. Retries bounds the retry loop; zero means
	// retry without limit.
	Flaky   int `yaml:"flaky,omitempty"`
	Retries int `yaml:"retries,omitempty"`
}

// A StopRule requests termination once a counter reaches a threshold.
type StopRule struct {
	Resource string `yaml:"resource"`
	AtLeast  int64  `yaml:"at_least"`
}

// Normalized returns a trimmed copy of the scenario.
func (s Scenario) Normalized() Scenario {
	clone := Scenario{
		Name:    strings.TrimSpace(s.Name),
		Frames:  s.Frames,
		Workers: s.Workers,
		Depth:   s.Depth,
	}
	if len(s.Resources) > 0 {
		clone.Resources = make([]Resource, len(s.Resources))
		for i, res := range s.Resources {
			clone.Resources[i] = Resource{Name: strings.TrimSpace(res.Name), Start: res.Start}
		}
	}
	if len(s.Stages) > 0 {
		clone.Stages = make([]Stage, len(s.Stages))
		for i, stage := range s.Stages {
			clone.Stages[i] = stage.normalized()
		}
	}
	if s.Stop != nil {
		clone.Stop = &StopRule{
			Resource: strings.TrimSpace(s.Stop.Resource),
			AtLeast:  s.Stop.AtLeast,
		}
	}
	return clone
}

func (st Stage) normalized() Stage {
	clone := Stage{Name: strings.TrimSpace(st.Name), Parallel: st.Parallel}
	if len(st.Systems) > 0 {
		clone.Systems = make([]System, len(st.Systems))
		for i, sys := range st.Systems {
			clone.Systems[i] = sys.normalized()
		}
	}
	return clone
}

func (sys System) normalized() System {
	return System{
		Name:    strings.TrimSpace(sys.Name),
		Reads:   trimAll(sys.Reads),
		Writes:  trimAll(sys.Writes),
		Add:     sys.Add,
		AddFrom: strings.TrimSpace(sys.AddFrom),
		Flaky:   sys.Flaky,
		Retries: sys.Retries,
	}
}

func trimAll(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Validate ensures the scenario is well-formed, references only
// declared resources, and is guaranteed to terminate.
func (s Scenario) Validate() error {
	normalized := s.Normalized()
	if normalized.Name == "" {
		return fmt.Errorf("scenario: name is required")
	}
	if normalized.Workers < 0 {
		return fmt.Errorf("scenario %s: workers must not be negative", normalized.Name)
	}
	if normalized.Depth < 0 {
		return fmt.Errorf("scenario %s: queue_depth must not be negative", normalized.Name)
	}
	if len(normalized.Resources) == 0 {
		return fmt.Errorf("scenario %s: at least one resource is required", normalized.Name)
	}
	known := make(map[string]struct{}, len(normalized.Resources))
	for i, res := range normalized.Resources {
		if res.Name == "" {
			return fmt.Errorf("scenario %s: resources[%d]: name is required", normalized.Name, i)
		}
		if _, dup := known[res.Name]; dup {
			return fmt.Errorf("scenario %s: duplicate resource %s", normalized.Name, res.Name)
		}
		known[res.Name] = struct{}{}
	}
	if len(normalized.Stages) == 0 {
		return fmt.Errorf("scenario %s: at least one stage is required", normalized.Name)
	}
	stageNames := make(map[string]struct{}, len(normalized.Stages))
	for i, stage := range normalized.Stages {
		if err := stage.validate(known); err != nil {
			return fmt.Errorf("scenario %s: stages[%d]: %w", normalized.Name, i, err)
		}
		if _, dup := stageNames[stage.Name]; dup {
			return fmt.Errorf("scenario %s: duplicate stage %s", normalized.Name, stage.Name)
		}
		stageNames[stage.Name] = struct{}{}
	}
	if normalized.Stop != nil {
		if normalized.Stop.Resource == "" {
			return fmt.Errorf("scenario %s: stop: resource is required", normalized.Name)
		}
		if _, ok := known[normalized.Stop.Resource]; !ok {
			return fmt.Errorf("scenario %s: stop: unknown resource %s", normalized.Name, normalized.Stop.Resource)
		}
	}
	if normalized.Stop == nil && normalized.Frames == 0 {
		return fmt.Errorf("scenario %s: a stop rule or a frame limit is required", normalized.Name)
	}
	return nil
}

func (st Stage) validate(known map[string]struct{}) error {
	if st.Name == "" {
		return fmt.Errorf("stage name is required")
	}
	if len(st.Systems) == 0 {
		return fmt.Errorf("stage %s: at least one system is required", st.Name)
	}
	names := make(map[string]struct{}, len(st.Systems))
	for i, sys := range st.Systems {
		if err := sys.validate(known); err != nil {
			return fmt.Errorf("stage %s: systems[%d]: %w", st.Name, i, err)
		}
		if _, dup := names[sys.Name]; dup {
			return fmt.Errorf("stage %s: duplicate system %s", st.Name, sys.Name)
		}
		names[sys.Name] = struct{}{}
	}
	return nil
}

func (sys System) validate(known map[string]struct{}) error {
	if sys.Name == "" {
		return fmt.Errorf("system name is required")
	}
	if len(sys.Reads) == 0 && len(sys.Writes) == 0 {
		return fmt.Errorf("system %s: at least one read or write is required", sys.Name)
	}
	for _, name := range sys.Reads {
		if _, ok := known[name]; !ok {
			return fmt.Errorf("system %s: unknown resource %s in reads", sys.Name, name)
		}
	}
	for _, name := range sys.Writes {
		if _, ok := known[name]; !ok {
			return fmt.Errorf("system %s: unknown resource %s in writes", sys.Name, name)
		}
	}
	if sys.AddFrom != "" &&
		!slices.Contains(sys.Reads, sys.AddFrom) &&
		!slices.Contains(sys.Writes, sys.AddFrom) {
		return fmt.Errorf("system %s: add_from %s must be declared in reads or writes", sys.Name, sys.AddFrom)
	}
	if sys.Flaky < 0 || sys.Retries < 0 {
		return fmt.Errorf("system %s: flaky and retries must not be negative", sys.Name)
	}
	return nil
}
