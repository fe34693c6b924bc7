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
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultTimeout is the fixed per-probe timeout
	DefaultTimeout = 10 * time.Second

	minTimeout = 1 * time.Second
)

// Shape declares an expectation on the response payload of an endpoint.
type Shape string

const (
	// ShapeNone declares no expectation on the payload
	ShapeNone Shape = ""
	// ShapeStatusOK expects a JSON object with a "status" field set to "ok"
	ShapeStatusOK Shape = "status-ok"
)

// Endpoint describes one HTTP endpoint to probe.
// Endpoints are defined at startup and never change during a run.
type Endpoint struct {
	Name string `json:"name" yaml:"name"`
	Path string `json:"path" yaml:"path"`
	// ExpectedStatus narrows the success condition to a single status code.
	// Zero accepts any 2xx status.
	ExpectedStatus int `json:"expectedStatus,omitempty" yaml:"expectedStatus,omitempty"`
	// Shape declares an optional expectation on the response payload
	Shape Shape `json:"shape,omitempty" yaml:"shape,omitempty"`
	// Required endpoints participate in the unreachable-for-two-cycles trigger
	Required bool `json:"required" yaml:"required"`
}

// Config defines the configuration parameters for the prober
type Config struct {
	BaseURL   string        `json:"baseUrl" yaml:"baseUrl"`
	Timeout   time.Duration `json:"timeout" yaml:"timeout"`
	Endpoints []Endpoint    `json:"endpoints" yaml:"endpoints"`
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Host == "" {
		return ErrInvalidConfig{Field: "baseUrl", Reason: "invalid base URL"}
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return ErrInvalidConfig{Field: "baseUrl", Reason: "base URL must start with 'https://' or 'http://'"}
	}

	if c.Timeout < minTimeout {
		return ErrInvalidConfig{Field: "timeout", Reason: fmt.Sprintf("timeout must be at least %v", minTimeout)}
	}

	if len(c.Endpoints) == 0 {
		return ErrInvalidConfig{Field: "endpoints", Reason: "at least one endpoint must be configured"}
	}

	seen := map[string]bool{}
	for _, ep := range c.Endpoints {
		if ep.Name == "" {
			return ErrInvalidConfig{Field: "endpoints", Reason: "endpoint name must not be empty"}
		}
		if seen[ep.Name] {
			return ErrInvalidConfig{Field: "endpoints", Reason: fmt.Sprintf("duplicate endpoint name %q", ep.Name)}
		}
		seen[ep.Name] = true

		if !strings.HasPrefix(ep.Path, "/") {
			return ErrInvalidConfig{Field: "endpoints", Reason: fmt.Sprintf("path of endpoint %q must start with '/'", ep.Name)}
		}
		if ep.Shape != ShapeNone && ep.Shape != ShapeStatusOK {
			return ErrInvalidConfig{Field: "endpoints", Reason: fmt.Sprintf("unknown shape %q for endpoint %q", ep.Shape, ep.Name)}
		}
	}

	return nil
}
