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
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/deploywatch/deploywatch/internal/logger"
	"github.com/deploywatch/deploywatch/pkg/probe"
)

const (
	// DefaultInterval is the pause between two probe cycles
	DefaultInterval = 30 * time.Second
	// DefaultWindow is the bounded duration of a monitoring run
	DefaultWindow = 300 * time.Second
	// DefaultFailureRate is the per-cycle failure rate above which a run fails
	DefaultFailureRate = 0.2
	// DefaultLatencyLimit is the single-probe latency above which a run fails
	DefaultLatencyLimit = 30 * time.Second
	// DefaultConsecutiveLimit is the number of consecutive cycles a required
	// endpoint may be unreachable before the run fails
	DefaultConsecutiveLimit = 2

	minInterval = 100 * time.Millisecond
)

// Config defines the configuration parameters for a monitoring run
type Config struct {
	Interval         time.Duration `json:"interval" yaml:"interval"`
	Window           time.Duration `json:"window" yaml:"window"`
	FailureRate      float64       `json:"failureRate" yaml:"failureRate"`
	LatencyLimit     time.Duration `json:"latencyLimit" yaml:"latencyLimit"`
	ConsecutiveLimit int           `json:"consecutiveLimit" yaml:"consecutiveLimit"`
}

// NewConfig returns a Config with the default thresholds
func NewConfig() Config {
	return Config{
		Interval:         DefaultInterval,
		Window:           DefaultWindow,
		FailureRate:      DefaultFailureRate,
		LatencyLimit:     DefaultLatencyLimit,
		ConsecutiveLimit: DefaultConsecutiveLimit,
	}
}

// Validate checks if the configuration is valid
func (c Config) Validate() error {
	if c.Interval < minInterval {
		return fmt.Errorf("invalid monitor configuration: interval must be at least %v", minInterval)
	}
	if c.Window < c.Interval {
		return fmt.Errorf("invalid monitor configuration: window must be at least one interval")
	}
	if c.FailureRate < 0 || c.FailureRate > 1 {
		return fmt.Errorf("invalid monitor configuration: failure rate must be between 0 and 1")
	}
	if c.ConsecutiveLimit < 1 {
		return fmt.Errorf("invalid monitor configuration: consecutive limit must be at least 1")
	}
	return nil
}

// Monitor drives the probe cycles for one deployment window. The cycle loop
// is the only writer of the run; readers get consistent snapshots.
type Monitor struct {
	config Config
	prober *probe.Prober

	// Mutex guards run; Done signals an external stop
	mu     sync.Mutex
	run    Run
	done   chan struct{}
	closed bool
}

// New creates a new Monitor in the pending state
func New(cfg Config, p *probe.Prober) *Monitor {
	return &Monitor{
		config: cfg,
		prober: p,
		run:    Run{Status: StatusPending},
		done:   make(chan struct{}, 1),
	}
}

// Shutdown stops a running monitor. The current cycle is finished or aborted
// within one probe timeout and all partial results are preserved.
func (m *Monitor) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		close(m.done)
		m.closed = true
	}
}

// Snapshot returns a consistent copy of the current run
func (m *Monitor) Snapshot() Run {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.run.copy()
}

// Run drives probe cycles until the window elapses, a rollback trigger is
// hit, or the context is canceled. The first cycle starts immediately,
// subsequent cycles are gated by the interval timer and never overlap.
// It blocks until the run has reached a terminal status and returns it.
func (m *Monitor) Run(ctx context.Context) (Run, error) {
	ctx, cancel := logger.NewContextWithLogger(ctx)
	defer cancel()
	log := logger.FromContext(ctx)

	if err := m.config.Validate(); err != nil {
		return m.Snapshot(), err
	}
	m.start()

	cycleTimer := time.NewTimer(0)
	defer cycleTimer.Stop()
	windowTimer := time.NewTimer(m.config.Window)
	defer windowTimer.Stop()

	log.InfoContext(ctx, "Starting deployment monitoring",
		"interval", m.config.Interval.String(),
		"window", m.config.Window.String(),
	)
	for {
		select {
		case <-ctx.Done():
			log.InfoContext(ctx, "Monitoring canceled, partial results preserved")
			m.finish(StatusStopped, "")
			return m.Snapshot(), nil
		case <-m.done:
			log.InfoContext(ctx, "Monitoring stopped, partial results preserved")
			m.finish(StatusStopped, "")
			return m.Snapshot(), nil
		case <-windowTimer.C:
			log.InfoContext(ctx, "Deployment window elapsed")
			m.finish(StatusSuccessful, "")
			return m.Snapshot(), nil
		case <-cycleTimer.C:
			results := m.prober.Cycle(ctx)
			m.append(results)
			if ctx.Err() != nil {
				m.finish(StatusStopped, "")
				return m.Snapshot(), nil
			}
			if reason := m.trigger(); reason != "" {
				log.ErrorContext(ctx, "Rollback trigger hit", "reason", reason)
				m.finish(StatusFailed, reason)
				return m.Snapshot(), nil
			}
			log.DebugContext(ctx, "Successfully finished probe cycle")
			cycleTimer.Reset(m.config.Interval)
		}
	}
}

// start transitions the run from pending to running
func (m *Monitor) start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.run.Status = StatusRunning
	m.run.Start = time.Now().UTC()
}

// append adds a completed cycle to the run
func (m *Monitor) append(results []probe.Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.run.Cycles = append(m.run.Cycles, Cycle{
		Index:   len(m.run.Cycles),
		Start:   time.Now().UTC(),
		Results: results,
	})
}

// finish transitions the run into a terminal status exactly once
func (m *Monitor) finish(status Status, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.run.Status.Terminal() {
		return
	}
	m.run.Status = status
	m.run.Reason = reason
	m.run.End = time.Now().UTC()
}

// trigger evaluates the rollback triggers against the latest cycle and
// returns a non-empty reason if one of them is hit. The triggers only end
// the run; any actual rollback remains a manual, advisory concern.
func (m *Monitor) trigger() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.run.Cycles) == 0 {
		return ""
	}
	latest := m.run.Cycles[len(m.run.Cycles)-1]
	if len(latest.Results) == 0 {
		return ""
	}

	failed := 0
	for _, res := range latest.Results {
		if !res.Healthy {
			failed++
		}
		if res.Latency > m.config.LatencyLimit.Seconds() {
			return fmt.Sprintf("latency of endpoint %q exceeded %v", res.Endpoint, m.config.LatencyLimit)
		}
	}

	rate := float64(failed) / float64(len(latest.Results))
	if rate > m.config.FailureRate {
		return fmt.Sprintf("failure rate %.0f%% exceeded %.0f%%", rate*100, m.config.FailureRate*100)
	}

	if name := m.unreachable(); name != "" {
		return fmt.Sprintf("required endpoint %q unreachable for %d consecutive cycles", name, m.config.ConsecutiveLimit)
	}

	return ""
}

// unreachable returns the name of the first required endpoint that failed
// in each of the most recent ConsecutiveLimit cycles
func (m *Monitor) unreachable() string {
	if len(m.run.Cycles) < m.config.ConsecutiveLimit {
		return ""
	}

	required := map[string]bool{}
	for _, ep := range m.prober.Config().Endpoints {
		if ep.Required {
			required[ep.Name] = true
		}
	}

	recent := m.run.Cycles[len(m.run.Cycles)-m.config.ConsecutiveLimit:]
	failing := map[string]int{}
	for _, c := range recent {
		for _, res := range c.Results {
			if !res.Healthy && required[res.Endpoint] {
				failing[res.Endpoint]++
			}
		}
	}

	for _, ep := range m.prober.Config().Endpoints {
		if failing[ep.Name] == m.config.ConsecutiveLimit {
			return ep.Name
		}
	}
	return ""
}
