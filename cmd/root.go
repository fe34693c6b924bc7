package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewCmdRoot creates a new root command
func NewCmdRoot(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "deploywatch",
		Short: "Deploywatch, the deployment monitoring tool",
		Long: "Deploywatch probes the endpoints of a fresh deployment, watches them over a bounded window\n" +
			"and reports whether the deployment looks healthy or should be rolled back.",
		Version:       version,
		SilenceErrors: true,
	}
	return rootCmd
}

// Execute adds all child commands to the root command
// and executes the cmd tree
func Execute(version string) {
	cmd := NewCmdRoot(version)
	cmd.AddCommand(NewCmdMonitor())
	cmd.AddCommand(NewCmdHealthCheck())
	cmd.AddCommand(NewCmdReport())
	cmd.AddCommand(NewCmdRollbackPlan())

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
