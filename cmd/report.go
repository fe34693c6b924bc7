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
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/deploywatch/deploywatch/internal/logger"
	"github.com/deploywatch/deploywatch/pkg/config"
	"github.com/deploywatch/deploywatch/pkg/report"
	"github.com/deploywatch/deploywatch/pkg/store"
)

// NewCmdReport creates a new report command
func NewCmdReport() *cobra.Command {
	flagMapping := config.RunFlagsNameMapping{
		StorePath: "report.store",
	}
	chartsFlag := "report.charts"

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate the report for the last monitoring run",
		Long: "Reduces the most recent persisted monitoring run into a deployment report\n" +
			"and prints it as json. Optionally renders latency and availability charts.",
		RunE: runReport(&flagMapping, chartsFlag),
	}

	defaults := config.NewConfig()
	NewFlag(flagMapping.StorePath, "store").String().Bind(cmd, defaults.StorePath, "The path of the sqlite run store")
	NewFlag(chartsFlag, "charts").String().Bind(cmd, "", "Directory to render latency and availability charts into")

	return cmd
}

// runReport loads the latest run and prints its report
func runReport(fm *config.RunFlagsNameMapping, chartsFlag string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		log := logger.NewLogger()
		ctx := logger.IntoContext(cmd.Context(), log)

		s, err := store.New(viper.GetString(fm.StorePath))
		if err != nil {
			return err
		}
		defer s.Close()

		run, err := s.LatestRun(ctx)
		if err != nil {
			if errors.Is(err, store.ErrNoRuns) {
				return fmt.Errorf("no monitoring runs recorded yet, run 'deploywatch monitor' first")
			}
			return err
		}

		out, err := json.MarshalIndent(report.Generate(run), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to render report: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))

		if dir := viper.GetString(chartsFlag); dir != "" {
			if err := report.RenderCharts(ctx, run, dir); err != nil {
				return fmt.Errorf("failed to render charts: %w", err)
			}
			log.Info("Charts rendered", "dir", dir)
		}
		return nil
	}
}
