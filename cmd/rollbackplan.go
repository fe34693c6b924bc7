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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deploywatch/deploywatch/pkg/config"
)

type rollbackPlan struct {
	Steps             []string `json:"rollback_plan"`
	EmergencyContacts []string `json:"emergency_contacts"`
	CriticalEndpoints []string `json:"critical_endpoints"`
}

// NewCmdRollbackPlan creates a new rollback-plan command
func NewCmdRollbackPlan() *cobra.Command {
	return &cobra.Command{
		Use:   "rollback-plan",
		Short: "Print the manual rollback checklist",
		Long: "Prints the checklist to work through when a deployment fails its monitoring window.\n" +
			"Deploywatch never rolls back on its own; the plan is advisory.",
		RunE: runRollbackPlan,
	}
}

func runRollbackPlan(cmd *cobra.Command, args []string) error {
	plan := rollbackPlan{
		Steps: []string{
			"1. Immediately stop the deployment process",
			"2. Check the hosting dashboard for deployment status",
			"3. If deployment is still in progress, wait for completion",
			"4. Verify the previous version is still accessible",
			"5. Check environment variables and secrets",
			"6. Review application logs for errors",
			"7. Test critical endpoints manually",
			"8. If issues persist, consider manual rollback via Git",
		},
		EmergencyContacts: []string{
			"Check Render dashboard: https://dashboard.render.com",
			"Review application logs in Render dashboard",
			"Verify environment variables in Render settings",
		},
	}
	for _, ep := range config.DefaultEndpoints() {
		plan.CriticalEndpoints = append(plan.CriticalEndpoints, ep.Path)
	}

	out, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to render rollback plan: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
