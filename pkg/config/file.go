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
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/deploywatch/deploywatch/internal/logger"
	"github.com/deploywatch/deploywatch/pkg/probe"
)

type endpointsFile struct {
	Endpoints []probe.Endpoint `yaml:"endpoints"`
}

// LoadEndpoints reads endpoint definitions from a yaml file,
// replacing the built-in endpoint set
func LoadEndpoints(ctx context.Context, path string) ([]probe.Endpoint, error) {
	log := logger.FromContext(ctx)
	log.Info("Reading endpoints from file", "file", path)

	b, err := os.ReadFile(path)
	if err != nil {
		log.Error("Failed to read endpoints file", "path", path, "error", err)
		return nil, fmt.Errorf("failed to read endpoints file: %w", err)
	}

	var f endpointsFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		log.Error("Failed to parse endpoints file", "error", err)
		return nil, fmt.Errorf("failed to parse endpoints file: %w", err)
	}

	if len(f.Endpoints) == 0 {
		return nil, fmt.Errorf("endpoints file %q declares no endpoints", path)
	}
	return f.Endpoints, nil
}
