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

package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/deploywatch/deploywatch/internal/logger"
)

// Result is the outcome of a single probe against one endpoint.
// It is immutable once created.
type Result struct {
	// Endpoint is the name of the probed endpoint
	Endpoint string `json:"endpoint"`
	// Timestamp is the UTC time the probe was started
	Timestamp time.Time `json:"timestamp"`
	// Code is the HTTP status code, 0 if no response was received
	Code int `json:"code"`
	// Latency is the total request duration in seconds
	Latency float64 `json:"latency"`
	// Healthy is true if the endpoint passed all success conditions
	Healthy bool `json:"healthy"`
	// Error holds the failure cause, nil for healthy probes
	Error *string `json:"error"`
}

// Prober issues HTTP GET probes against the configured endpoints.
type Prober struct {
	config  Config
	metrics metrics
}

// New creates a new Prober for the given configuration
func New(cfg Config) *Prober {
	return &Prober{
		config:  cfg,
		metrics: newMetrics(),
	}
}

// Config returns the configuration of the prober
func (p *Prober) Config() Config {
	return p.config
}

// GetMetricCollectors returns all metric collectors of the prober
func (p *Prober) GetMetricCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		p.metrics.up,
		p.metrics.latency,
		p.metrics.count,
	}
}

// Cycle probes all configured endpoints once. The probes run in separate
// routines and are joined before the cycle is considered complete. The
// returned results are ordered like the configured endpoints.
func (p *Prober) Cycle(ctx context.Context) []Result {
	log := logger.FromContext(ctx)
	log.Debug("Probing endpoints", "amount", len(p.config.Endpoints))

	var wg sync.WaitGroup
	results := make([]Result, len(p.config.Endpoints))

	client := &http.Client{
		Timeout: p.config.Timeout,
	}
	for i, ep := range p.config.Endpoints {
		wg.Add(1)
		go func(i int, ep Endpoint) {
			defer wg.Done()
			res := p.Probe(ctx, client, ep)
			results[i] = res

			state := 0.0
			if res.Healthy {
				state = 1.0
			}
			p.metrics.up.WithLabelValues(ep.Name).Set(state)
			p.metrics.latency.WithLabelValues(ep.Name).Observe(res.Latency)
			p.metrics.count.WithLabelValues(ep.Name).Inc()
		}(i, ep)
	}

	log.Debug("Waiting for all probes to finish")
	wg.Wait()

	return results
}

// Probe performs a single HTTP GET request against the endpoint and
// classifies the response. Network errors, timeouts, unexpected status
// codes and malformed bodies are recovered into an unhealthy Result,
// they never propagate as errors. A probe is never retried.
func (p *Prober) Probe(ctx context.Context, client *http.Client, ep Endpoint) Result {
	log := logger.FromContext(ctx).With("endpoint", ep.Name)
	res := Result{
		Endpoint:  ep.Name,
		Timestamp: time.Now().UTC(),
	}

	url := p.config.BaseURL + ep.Path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		log.Error("Error while creating request", "error", err)
		return res.fail(fmt.Sprintf("invalid request: %v", err))
	}

	start := time.Now()
	resp, err := client.Do(req)
	res.Latency = time.Since(start).Seconds()
	if err != nil {
		log.Warn("Probe request failed", "error", err)
		return res.fail(classify(err))
	}
	defer resp.Body.Close()

	res.Code = resp.StatusCode
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		log.Warn("Probe status was not ok", "status", resp.Status)
		return res.fail(fmt.Sprintf("unexpected status %d", resp.StatusCode))
	}
	if ep.ExpectedStatus != 0 && resp.StatusCode != ep.ExpectedStatus {
		log.Warn("Probe status did not match expectation", "status", resp.Status, "want", ep.ExpectedStatus)
		return res.fail(fmt.Sprintf("unexpected status %d, want %d", resp.StatusCode, ep.ExpectedStatus))
	}

	if err := checkShape(resp.Body, ep.Shape); err != nil {
		log.Warn("Probe body did not match expected shape", "error", err)
		return res.fail(fmt.Sprintf("malformed body: %v", err))
	}

	res.Healthy = true
	return res
}

// fail marks the result unhealthy with the given cause
func (r Result) fail(cause string) Result {
	r.Healthy = false
	r.Error = &cause
	return r
}

// classify maps a transport error to a stable failure cause string
func classify(err error) string {
	var nErr net.Error
	if errors.As(err, &nErr) && nErr.Timeout() {
		return "timeout"
	}
	return fmt.Sprintf("connection error: %v", err)
}

// checkShape validates the response body against the declared shape
func checkShape(body io.Reader, shape Shape) error {
	switch shape {
	case ShapeNone:
		return nil
	case ShapeStatusOK:
		var payload struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(body).Decode(&payload); err != nil {
			return fmt.Errorf("not a JSON object: %w", err)
		}
		if payload.Status != "ok" {
			return fmt.Errorf("status is %q, want %q", payload.Status, "ok")
		}
		return nil
	default:
		return fmt.Errorf("unknown body shape %q", shape)
	}
}
