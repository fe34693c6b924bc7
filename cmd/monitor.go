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
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/deploywatch/deploywatch/internal/helper"
	"github.com/deploywatch/deploywatch/internal/httpclient"
	"github.com/deploywatch/deploywatch/internal/logger"
	"github.com/deploywatch/deploywatch/pkg/api"
	"github.com/deploywatch/deploywatch/pkg/config"
	"github.com/deploywatch/deploywatch/pkg/metrics"
	"github.com/deploywatch/deploywatch/pkg/monitor"
	"github.com/deploywatch/deploywatch/pkg/probe"
	"github.com/deploywatch/deploywatch/pkg/report"
	"github.com/deploywatch/deploywatch/pkg/store"
)

// NewCmdMonitor creates a new monitor command
func NewCmdMonitor() *cobra.Command {
	flagMapping := config.RunFlagsNameMapping{
		BaseURL:        "monitor.baseUrl",
		ApiAddress:     "monitor.apiAddress",
		StorePath:      "monitor.store",
		Interval:       "monitor.interval",
		Window:         "monitor.window",
		ProbeTimeout:   "monitor.probeTimeout",
		Wait:           "monitor.wait",
		WaitRetryCount: "monitor.waitRetryCount",
		WaitRetryDelay: "monitor.waitRetryDelay",
		EndpointsFile:  "monitor.endpointsFile",
	}

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Monitor the deployment over a bounded window",
		Long: "Probes all endpoints of the deployment in fixed intervals until the window elapses,\n" +
			"a rollback trigger is hit, or the process is interrupted. The run is persisted for\n" +
			"the report command and the final report is printed to stdout.",
		RunE: runMonitor(&flagMapping),
	}

	defaults := config.NewConfig()
	NewFlag(flagMapping.BaseURL, "base-url").String().Bind(cmd, defaults.BaseURL, "The base url of the deployment under watch")
	NewFlag(flagMapping.ApiAddress, "api-address").String().Bind(cmd, defaults.ApiAddress, "The address the status api is listening on")
	NewFlag(flagMapping.StorePath, "store").String().Bind(cmd, defaults.StorePath, "The path of the sqlite run store")
	NewFlag(flagMapping.Interval, "interval").Duration().Bind(cmd, defaults.Interval, "The delay between two probe cycles")
	NewFlag(flagMapping.Window, "window").Duration().Bind(cmd, defaults.Window, "The total monitoring duration")
	NewFlag(flagMapping.ProbeTimeout, "probe-timeout").Duration().Bind(cmd, defaults.ProbeTimeout, "The per-request timeout of a single probe")
	NewFlag(flagMapping.Wait, "wait").Bool().Bind(cmd, false, "Wait for the root endpoint to become ready before monitoring starts")
	NewFlag(flagMapping.WaitRetryCount, "wait-retry-count").Int().Bind(cmd, defaults.WaitRetry.Count, "Amount of retries waiting for the root endpoint")
	NewFlag(flagMapping.WaitRetryDelay, "wait-retry-delay").Duration().Bind(cmd, defaults.WaitRetry.Delay, "The initial delay between readiness retries")
	NewFlag(flagMapping.EndpointsFile, "endpoints-file").String().Bind(cmd, "", "Path to a yaml file replacing the built-in endpoint set")

	if err := viper.BindEnv(flagMapping.BaseURL, "BASE_URL"); err != nil {
		panic(err)
	}

	return cmd
}

// runMonitor is the entry point of a monitoring run
func runMonitor(fm *config.RunFlagsNameMapping) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		log := logger.NewLogger()
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		ctx = logger.IntoContext(ctx, log)

		cfg, err := monitorConfig(ctx, fm)
		if err != nil {
			return err
		}
		if err = cfg.Validate(ctx, fm); err != nil {
			log.Error("Error while validating the config", "error", err)
			return err
		}
		ctx = httpclient.IntoContext(ctx, &http.Client{Timeout: cfg.ProbeTimeout})

		p := probe.New(cfg.ProbeConfig())
		mon := monitor.New(cfg.MonitorConfig(), p)

		m := metrics.New()
		m.GetRegistry().MustRegister(p.GetMetricCollectors()...)

		a := api.New(cfg.ApiAddress)
		if err = a.RegisterRoutes(ctx, api.Routes(mon, m)...); err != nil {
			return err
		}
		go func() {
			if apiErr := a.Run(ctx); apiErr != nil {
				log.Error("Status api stopped", "error", apiErr)
			}
		}()
		defer func() {
			if apiErr := a.Shutdown(ctx); apiErr != nil {
				log.Debug("Status api shutdown", "error", apiErr)
			}
		}()

		if cfg.Wait {
			if err = waitReady(ctx, cfg, p); err != nil {
				log.Error("Deployment did not become ready", "error", err)
				return err
			}
		}

		log.Info("Running deploywatch")
		run, err := mon.Run(ctx)
		if err != nil {
			return err
		}

		if err = persistRun(ctx, cfg.StorePath, run); err != nil {
			log.Error("Failed to persist run, report command will not see it", "error", err)
		}

		out, err := json.MarshalIndent(report.Generate(run), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to render report: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))

		if run.Status == monitor.StatusFailed {
			return fmt.Errorf("deployment failed: %s", run.Reason)
		}
		return nil
	}
}

// monitorConfig assembles the run configuration from flags and environment
func monitorConfig(ctx context.Context, fm *config.RunFlagsNameMapping) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.BaseURL = viper.GetString(fm.BaseURL)
	cfg.ApiAddress = viper.GetString(fm.ApiAddress)
	cfg.StorePath = viper.GetString(fm.StorePath)
	cfg.Interval = viper.GetDuration(fm.Interval)
	cfg.Window = viper.GetDuration(fm.Window)
	cfg.ProbeTimeout = viper.GetDuration(fm.ProbeTimeout)
	cfg.Wait = viper.GetBool(fm.Wait)
	cfg.WaitRetry.Count = viper.GetInt(fm.WaitRetryCount)
	cfg.WaitRetry.Delay = viper.GetDuration(fm.WaitRetryDelay)

	if path := viper.GetString(fm.EndpointsFile); path != "" {
		eps, err := config.LoadEndpoints(ctx, path)
		if err != nil {
			return nil, err
		}
		cfg.Endpoints = eps
	}
	return cfg, nil
}

// waitReady probes the root endpoint with backoff until it answers healthy,
// giving a fresh deployment time to come up before the window starts
func waitReady(ctx context.Context, cfg *config.Config, p *probe.Prober) error {
	ep := cfg.Endpoints[0]
	for _, e := range cfg.Endpoints {
		if e.Required {
			ep = e
			break
		}
	}

	check := helper.Retry(func(ctx context.Context) error {
		res := p.Probe(ctx, httpclient.FromContext(ctx), ep)
		if !res.Healthy {
			return fmt.Errorf("endpoint %q not ready", ep.Name)
		}
		return nil
	}, cfg.WaitRetry)

	logger.FromContext(ctx).Info("Waiting for deployment to become ready", "endpoint", ep.Name)
	return check(ctx)
}

// persistRun saves a finished run so the report command can pick it up
func persistRun(ctx context.Context, path string, run monitor.Run) error {
	s, err := store.New(path)
	if err != nil {
		return err
	}
	defer s.Close()

	saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err = s.SaveRun(saveCtx, run)
	return err
}
