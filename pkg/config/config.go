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

package config

import (
	"time"

	"github.com/deploywatch/deploywatch/internal/helper"
	"github.com/deploywatch/deploywatch/pkg/monitor"
	"github.com/deploywatch/deploywatch/pkg/probe"
)

// DefaultBaseURL is the deployment this tool was built to watch
const DefaultBaseURL = "https://mcp-google-ads-vtmp.onrender.com"

const (
	defaultApiAddress   = ":8080"
	defaultStorePath    = "deploywatch.db"
	defaultInterval     = 30 * time.Second
	defaultWindow       = 300 * time.Second
	defaultProbeTimeout = 10 * time.Second
)

// Config holds the full runtime configuration of a deploywatch invocation
type Config struct {
	// BaseURL is the base url of the deployment under watch
	BaseURL string
	// ApiAddress is the listening address of the status API
	ApiAddress string
	// StorePath is the path of the sqlite run store
	StorePath string
	// Interval is the delay between two monitoring cycles
	Interval time.Duration
	// Window is the total monitoring duration
	Window time.Duration
	// ProbeTimeout is the per-request timeout of a single probe
	ProbeTimeout time.Duration
	// Wait retries the root endpoint before monitoring starts,
	// to give a fresh deployment time to come up
	Wait bool
	// WaitRetry configures the readiness gate retries
	WaitRetry helper.RetryConfig
	// Endpoints are the endpoints probed each cycle
	Endpoints []probe.Endpoint
}

// NewConfig creates a new Config with the defaults applied
func NewConfig() *Config {
	return &Config{
		BaseURL:      DefaultBaseURL,
		ApiAddress:   defaultApiAddress,
		StorePath:    defaultStorePath,
		Interval:     defaultInterval,
		Window:       defaultWindow,
		ProbeTimeout: defaultProbeTimeout,
		WaitRetry: helper.RetryConfig{
			Count: 3,
			Delay: 10 * time.Second,
		},
		Endpoints: DefaultEndpoints(),
	}
}

// DefaultEndpoints returns the endpoints of the deployment under watch.
// The root endpoint is required and must answer {"status": "ok"}.
func DefaultEndpoints() []probe.Endpoint {
	return []probe.Endpoint{
		{Name: "root", Path: "/", Shape: probe.ShapeStatusOK, Required: true},
		{Name: "health-keyword-ideas", Path: "/health/keyword-ideas"},
		{Name: "test-keyword-ideas", Path: "/test/keyword-ideas"},
		{Name: "list-accounts", Path: "/list-accounts"},
	}
}

// ProbeConfig derives the prober configuration
func (c *Config) ProbeConfig() probe.Config {
	return probe.Config{
		BaseURL:   c.BaseURL,
		Timeout:   c.ProbeTimeout,
		Endpoints: c.Endpoints,
	}
}

// MonitorConfig derives the monitor configuration
func (c *Config) MonitorConfig() monitor.Config {
	mc := monitor.NewConfig()
	mc.Interval = c.Interval
	mc.Window = c.Window
	return mc
}
