package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/hive/internal/config"
	"github.com/ShayCichocki/hive/internal/inbox"
	"github.com/ShayCichocki/hive/pkg/models"
)

var watchDir string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch an inbox directory for task files",
	Long: `Run the swarm as a daemon consuming task files from an inbox
directory. Drop a JSON or YAML file like

  {"goal": "process the report", "payload": {"ops": ["summarize"]}}

into the inbox (write elsewhere, then rename in) and hive executes it.
Processed files move to done/ or failed/ inside the inbox.

The inbox location comes from --dir, the inbox.dir config key, or
defaults to ./hive-inbox.`,
	RunE: runInbox,
}

func init() {
	watchCmd.Flags().StringVar(&watchDir, "dir", "", "Inbox directory to watch")
}

func runInbox(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	dir := watchDir
	if dir == "" {
		dir = cfg.Inbox.Dir
	}
	if dir == "" {
		dir = filepath.Join(".", "hive-inbox")
	}

	bundle, err := buildSwarm(cfg, false)
	if err != nil {
		return err
	}
	defer bundle.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		for event := range bundle.swarm.Events() {
			logEvent(event)
		}
	}()

	submit := func(task models.Task) error {
		result, err := bundle.swarm.Execute(ctx, task)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "task %s finished, success=%t\n", task.ID, result.Success)
		return nil
	}

	watcher, err := inbox.New(dir, submit)
	if err != nil {
		return fmt.Errorf("start inbox: %w", err)
	}
	defer watcher.Close()

	fmt.Fprintf(os.Stderr, "watching %s (ctrl-c to stop)\n", watcher.Dir())
	<-ctx.Done()
	return nil
}
