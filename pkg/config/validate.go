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

	"github.com/deploywatch/deploywatch/internal/logger"
)

// Validates the config
func (c *Config) Validate(ctx context.Context, fm *RunFlagsNameMapping) error {
	log := logger.FromContext(ctx)

	ok := true
	probeConfig := c.ProbeConfig()
	if err := probeConfig.Validate(); err != nil {
		ok = false
		log.ErrorContext(ctx, "The probe configuration is invalid",
			fm.BaseURL, c.BaseURL, "error", err)
	}

	if err := c.MonitorConfig().Validate(); err != nil {
		ok = false
		log.ErrorContext(ctx, "The monitor configuration is invalid",
			fm.Interval, c.Interval, fm.Window, c.Window, "error", err)
	}

	if c.Window <= c.Interval {
		ok = false
		log.ErrorContext(ctx, "The monitoring window must be longer than the cycle interval",
			fm.Window, c.Window, fm.Interval, c.Interval)
	}

	if c.StorePath == "" {
		ok = false
		log.ErrorContext(ctx, "The store path must not be empty", fm.StorePath, c.StorePath)
	}

	if c.WaitRetry.Count < 1 || c.WaitRetry.Count >= 6 {
		ok = false
		log.ErrorContext(ctx, "The amount of readiness retries should be above 0 and below 6",
			fm.WaitRetryCount, c.WaitRetry.Count)
	}

	if !ok {
		return fmt.Errorf("validation of configuration failed")
	}
	return nil
}
