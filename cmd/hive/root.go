package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hive",
	Short: "Capability-matched swarm task execution",
	Long: `Hive decomposes a task into subtasks, assigns each to the most
specific capable executor, runs them concurrently, and merges the
outcomes into one result.

Executors are declared in a YAML manifest and can be canned responders,
HTTP endpoints, or LLM workers. Every execution leaves an audit trace.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(executorsCmd)
	rootCmd.AddCommand(traceCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
