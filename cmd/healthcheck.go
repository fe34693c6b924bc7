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

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/deploywatch/deploywatch/internal/logger"
	"github.com/deploywatch/deploywatch/pkg/config"
	"github.com/deploywatch/deploywatch/pkg/probe"
)

// NewCmdHealthCheck creates a new health-check command
func NewCmdHealthCheck() *cobra.Command {
	flagMapping := config.RunFlagsNameMapping{
		BaseURL:       "healthCheck.baseUrl",
		ProbeTimeout:  "healthCheck.probeTimeout",
		EndpointsFile: "healthCheck.endpointsFile",
	}

	cmd := &cobra.Command{
		Use:   "health-check",
		Short: "Probe every endpoint once",
		Long: "Probes every configured endpoint exactly once and prints one line per endpoint.\n" +
			"Exits zero only if all endpoints are healthy.",
		RunE: runHealthCheck(&flagMapping),
	}

	defaults := config.NewConfig()
	NewFlag(flagMapping.BaseURL, "base-url").String().Bind(cmd, defaults.BaseURL, "The base url of the deployment under watch")
	NewFlag(flagMapping.ProbeTimeout, "probe-timeout").Duration().Bind(cmd, defaults.ProbeTimeout, "The per-request timeout of a single probe")
	NewFlag(flagMapping.EndpointsFile, "endpoints-file").String().Bind(cmd, "", "Path to a yaml file replacing the built-in endpoint set")

	if err := viper.BindEnv(flagMapping.BaseURL, "BASE_URL"); err != nil {
		panic(err)
	}

	return cmd
}

// runHealthCheck probes all endpoints once and reports per endpoint
func runHealthCheck(fm *config.RunFlagsNameMapping) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		log := logger.NewLogger()
		ctx := logger.IntoContext(cmd.Context(), log)

		cfg := config.NewConfig()
		cfg.BaseURL = viper.GetString(fm.BaseURL)
		cfg.ProbeTimeout = viper.GetDuration(fm.ProbeTimeout)
		if path := viper.GetString(fm.EndpointsFile); path != "" {
			eps, err := config.LoadEndpoints(ctx, path)
			if err != nil {
				return err
			}
			cfg.Endpoints = eps
		}

		pc := cfg.ProbeConfig()
		if err := pc.Validate(); err != nil {
			log.Error("Error while validating the config", "error", err)
			return err
		}

		p := probe.New(pc)
		results := p.Cycle(ctx)

		unhealthy := 0
		for _, res := range results {
			if res.Healthy {
				fmt.Fprintf(cmd.OutOrStdout(), "PASS %s %s (%d, %.2fs)\n",
					res.Endpoint, endpointPath(pc, res.Endpoint), res.Code, res.Latency)
				continue
			}
			unhealthy++
			cause := "unknown"
			if res.Error != nil {
				cause = *res.Error
			}
			fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s %s: %s\n",
				res.Endpoint, endpointPath(pc, res.Endpoint), cause)
		}

		if unhealthy > 0 {
			return fmt.Errorf("%d of %d endpoints unhealthy", unhealthy, len(results))
		}
		return nil
	}
}

func endpointPath(pc probe.Config, name string) string {
	for _, ep := range pc.Endpoints {
		if ep.Name == name {
			return ep.Path
		}
	}
	return ""
}
