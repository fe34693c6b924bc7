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

package report

import (
	"fmt"
	"math"
	"time"

	"github.com/deploywatch/deploywatch/pkg/monitor"
)

const (
	// minSuccessRate is the success rate below which a rollback is recommended
	minSuccessRate = 80.0
	// persistentFailureCycles is the consecutive-cycle streak after which an
	// endpoint is reported as persistently failing
	persistentFailureCycles = 2
	// degradedLatency is the mean probe latency above which response times
	// are reported as degraded
	degradedLatency = 10 * time.Second
)

const (
	recommendRollback   = "Investigate failing endpoints immediately; consider rollback."
	recommendDegraded   = "Response times degraded; check service load."
	recommendPersistent = "Endpoint %s persistently failing."
)

// Report is the summary of a monitoring run. It is derived on demand and
// carries no reference back to the run it was computed from.
type Report struct {
	DeploymentStatus string   `json:"deployment_status"`
	SuccessRate      float64  `json:"success_rate"`
	TotalChecks      int      `json:"total_health_checks"`
	HealthyChecks    int      `json:"healthy_checks"`
	Duration         float64  `json:"deployment_duration_seconds"`
	Recommendations  []string `json:"recommendations"`
}

// Generate reduces a monitoring run into its report. It is a pure function;
// callers decide whether to print, persist, or serve the result.
func Generate(run monitor.Run) Report {
	total := run.TotalChecks()
	healthy := run.HealthyChecks()

	rate := 0.0
	if total > 0 {
		rate = float64(healthy) / float64(total) * 100
	}

	return Report{
		DeploymentStatus: status(run, total),
		SuccessRate:      math.Round(rate*10) / 10,
		TotalChecks:      total,
		HealthyChecks:    healthy,
		Duration:         run.Duration(),
		Recommendations:  recommendations(run, rate),
	}
}

// status maps the run status to the reported deployment status.
// A run without a single check is never reported as successful.
func status(run monitor.Run, total int) string {
	switch run.Status {
	case monitor.StatusSuccessful:
		if total == 0 {
			return string(monitor.StatusFailed)
		}
		return string(monitor.StatusSuccessful)
	case monitor.StatusPending, monitor.StatusRunning:
		return "in_progress"
	default:
		return string(run.Status)
	}
}

// recommendations applies the advisory threshold rules. All matching rules
// contribute; a run that trips none of them yields an empty list.
func recommendations(run monitor.Run, rate float64) []string {
	recs := []string{}

	if rate < minSuccessRate {
		recs = append(recs, recommendRollback)
	}

	for _, ep := range failingEndpoints(run) {
		recs = append(recs, fmt.Sprintf(recommendPersistent, ep))
	}

	if meanLatency(run) > degradedLatency.Seconds() {
		recs = append(recs, recommendDegraded)
	}

	return recs
}

// failingEndpoints returns the endpoints that failed for at least
// persistentFailureCycles consecutive cycles, in stable order
func failingEndpoints(run monitor.Run) []string {
	streaks := run.FailureStreaks()

	var names []string
	seen := map[string]bool{}
	for _, res := range run.Results() {
		if seen[res.Endpoint] {
			continue
		}
		seen[res.Endpoint] = true
		if streaks[res.Endpoint] >= persistentFailureCycles {
			names = append(names, res.Endpoint)
		}
	}
	return names
}

// meanLatency returns the mean probe latency across the run in seconds
func meanLatency(run monitor.Run) float64 {
	results := run.Results()
	if len(results) == 0 {
		return 0
	}

	sum := 0.0
	for _, res := range results {
		sum += res.Latency
	}
	return sum / float64(len(results))
}
