// deploywatch
// (C) 2026, the deploywatch authors
//
// The deploywatch authors and all other contributors /
// copyright owners license this file to you under the Apache
// License, Version 2.0 (the "License"); you may not use this
// file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package monitor

import (
	"time"

	"github.com/deploywatch/deploywatch/pkg/probe"
)

// Status is the lifecycle state of a monitoring run
type Status string

const (
	StatusPending    Status = "pending"
	StatusRunning    Status = "running"
	StatusSuccessful Status = "successful"
	StatusFailed     Status = "failed"
	StatusStopped    Status = "stopped"
)

// Cycle is one round of probes across all configured endpoints
type Cycle struct {
	Index   int            `json:"index"`
	Start   time.Time      `json:"start"`
	Results []probe.Result `json:"results"`
}

// Run is a full bounded-duration monitoring session composed of multiple
// cycles. Cycles are only appended by the monitor loop; once the run has
// reached a terminal status it never changes again.
type Run struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end,omitempty"`
	Status Status    `json:"status"`
	// Reason holds the trigger description for failed runs
	Reason string  `json:"reason,omitempty"`
	Cycles []Cycle `json:"cycles"`
}

// Terminal returns true once the run can no longer change
func (s Status) Terminal() bool {
	return s == StatusSuccessful || s == StatusFailed || s == StatusStopped
}

// TotalChecks returns the number of probes performed across all cycles
func (r Run) TotalChecks() int {
	total := 0
	for _, c := range r.Cycles {
		total += len(c.Results)
	}
	return total
}

// HealthyChecks returns the number of healthy probes across all cycles
func (r Run) HealthyChecks() int {
	healthy := 0
	for _, c := range r.Cycles {
		for _, res := range c.Results {
			if res.Healthy {
				healthy++
			}
		}
	}
	return healthy
}

// Results returns all probe results of the run in cycle order
func (r Run) Results() []probe.Result {
	var results []probe.Result
	for _, c := range r.Cycles {
		results = append(results, c.Results...)
	}
	return results
}

// Duration returns the elapsed wall-clock time of the run in seconds.
// For runs still in progress it is measured up to now.
func (r Run) Duration() float64 {
	if r.Start.IsZero() {
		return 0
	}
	if r.End.IsZero() {
		return time.Since(r.Start).Seconds()
	}
	return r.End.Sub(r.Start).Seconds()
}

// FailureStreaks returns the longest streak of consecutive cycle failures
// for each endpoint that failed at least once
func (r Run) FailureStreaks() map[string]int {
	streaks := map[string]int{}
	current := map[string]int{}
	for _, c := range r.Cycles {
		for _, res := range c.Results {
			if res.Healthy {
				current[res.Endpoint] = 0
				continue
			}
			current[res.Endpoint]++
			if current[res.Endpoint] > streaks[res.Endpoint] {
				streaks[res.Endpoint] = current[res.Endpoint]
			}
		}
	}
	return streaks
}

// copy returns a deep copy of the run so readers never observe
// a cycle list the monitor loop is still appending to
func (r Run) copy() Run {
	cp := r
	cp.Cycles = make([]Cycle, len(r.Cycles))
	for i, c := range r.Cycles {
		cc := c
		cc.Results = make([]probe.Result, len(c.Results))
		copy(cc.Results, c.Results)
		cp.Cycles[i] = cc
	}
	return cp
}
