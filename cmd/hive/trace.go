package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/hive/internal/config"
	"github.com/ShayCichocki/hive/internal/trace"
)

var (
	traceLimit int
	tracePurge time.Duration
)

var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Show recent execution traces",
	Long: `List audit traces of past executions, newest first. Each trace
records the task, how many subtasks ran, how many failed, and whether
the merged result succeeded.

Use --purge to delete traces older than a duration, e.g. --purge 720h.`,
	RunE: showTraces,
}

func init() {
	traceCmd.Flags().IntVar(&traceLimit, "limit", 20, "Maximum traces to show")
	traceCmd.Flags().DurationVar(&tracePurge, "purge", 0, "Delete traces older than this duration")
}

func showTraces(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	dbPath := cfg.Trace.DBPath
	if dbPath == "" {
		dbPath = trace.GlobalDBPath()
	}

	store, err := trace.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open trace store: %w", err)
	}
	defer store.Close()

	if tracePurge > 0 {
		deleted, err := store.Purge(tracePurge)
		if err != nil {
			return err
		}
		fmt.Printf("purged %d traces older than %s\n", deleted, tracePurge)
		return nil
	}

	traces, err := store.Recent(traceLimit)
	if err != nil {
		return err
	}
	if len(traces) == 0 {
		fmt.Println("no traces recorded")
		return nil
	}

	ok := color.New(color.FgGreen).SprintFunc()
	fail := color.New(color.FgRed).SprintFunc()

	for _, t := range traces {
		status := ok("✓")
		if !t.Success {
			status = fail("✗")
		}
		fmt.Printf("%s %s  %s  task=%s  subtasks=%d failed=%d\n",
			status,
			t.RecordedAt.Local().Format("2006-01-02 15:04:05"),
			t.ExecutionID, t.TaskID, t.SubtaskCount, t.FailedCount)
		if t.Goal != "" {
			fmt.Printf("    %s\n", t.Goal)
		}
	}

	return nil
}
