package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/hive/internal/config"
	"github.com/ShayCichocki/hive/internal/coordinator"
	"github.com/ShayCichocki/hive/internal/tui"
	"github.com/ShayCichocki/hive/pkg/models"
)

var (
	runPayload  string
	runPayloadF string
	runOps      []string
	runLLM      bool
	runWatch    bool
)

var runCmd = &cobra.Command{
	Use:   "run <goal>",
	Short: "Execute a task through the swarm",
	Long: `Execute a single task: decompose it into subtasks, assign each to
the most specific capable executor, run them concurrently, and merge
the outcomes.

The task payload is given inline with --payload or from a file with
--payload-file. Use --ops to split the task into named operations
without writing a payload by hand:

  hive run "process the report" --ops summarize,translate

With --llm the decomposition is delegated to the model instead of the
ops list. --watch shows a live view of the execution.

The merged result is printed as JSON on stdout.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTask,
}

func init() {
	runCmd.Flags().StringVar(&runPayload, "payload", "", "Task payload as inline JSON")
	runCmd.Flags().StringVar(&runPayloadF, "payload-file", "", "Task payload from a JSON file")
	runCmd.Flags().StringSliceVar(&runOps, "ops", nil, "Operations to split the task into")
	runCmd.Flags().BoolVar(&runLLM, "llm", false, "Decompose with the model instead of the ops list")
	runCmd.Flags().BoolVar(&runWatch, "watch", false, "Show a live view of the execution")
}

func runTask(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	payload, err := buildPayload()
	if err != nil {
		return err
	}

	task := models.Task{
		ID:          uuid.New().String(),
		Goal:        strings.Join(args, " "),
		Payload:     payload,
		SubmittedAt: time.Now(),
	}

	bundle, err := buildSwarm(cfg, runLLM)
	if err != nil {
		return err
	}
	defer bundle.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var result models.AggregateResult
	if runWatch {
		result, err = executeWithTUI(ctx, bundle.swarm, task)
	} else {
		result, err = executeHeadless(ctx, bundle.swarm, task)
	}
	if err != nil {
		return err
	}

	if dropped := bundle.swarm.DroppedEventCount(); dropped > 0 {
		fmt.Fprintf(os.Stderr, "%d progress events dropped\n", dropped)
	}

	if bundle.tracker != nil && bundle.tracker.Calls() > 0 {
		in, out := bundle.tracker.Total()
		fmt.Fprintf(os.Stderr, "model usage: %d tokens over %d calls ($%.4f)\n",
			in+out, bundle.tracker.Calls(), bundle.tracker.Cost())
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	fmt.Println(string(out))

	if !result.Success {
		return fmt.Errorf("task %s did not succeed", task.ID)
	}
	return nil
}

// buildPayload assembles the task payload from the run flags.
func buildPayload() (models.Payload, error) {
	payload := models.Payload{}

	switch {
	case runPayload != "" && runPayloadF != "":
		return nil, fmt.Errorf("--payload and --payload-file are mutually exclusive")
	case runPayload != "":
		if err := json.Unmarshal([]byte(runPayload), &payload); err != nil {
			return nil, fmt.Errorf("parse --payload: %w", err)
		}
	case runPayloadF != "":
		data, err := os.ReadFile(runPayloadF)
		if err != nil {
			return nil, fmt.Errorf("read payload file: %w", err)
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("parse payload file: %w", err)
		}
	}

	if len(runOps) > 0 {
		ops := make([]any, len(runOps))
		for i, op := range runOps {
			ops[i] = op
		}
		payload["ops"] = ops
	}

	return payload, nil
}

// executeHeadless runs the task while logging coordinator events.
func executeHeadless(ctx context.Context, swarm *coordinator.Swarm, task models.Task) (models.AggregateResult, error) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for event := range swarm.Events() {
			logEvent(event)
		}
	}()

	result, err := swarm.Execute(ctx, task)
	swarm.Close()
	<-done
	return result, err
}

// executeWithTUI runs the task behind a live bubbletea view. Quitting
// the view early cancels the execution; either way the execution has
// fully unwound before this returns, so the caller may close the swarm.
func executeWithTUI(ctx context.Context, swarm *coordinator.Swarm, task models.Task) (models.AggregateResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app := tui.New(swarm.Events())
	program := tea.NewProgram(app)

	done := make(chan struct{})
	var result models.AggregateResult
	var execErr error
	go func() {
		defer close(done)
		result, execErr = swarm.Execute(ctx, task)
		program.Send(tui.ResultMsg{Result: result, Err: execErr})
	}()

	_, runErr := program.Run()
	cancel()
	<-done
	if runErr != nil {
		return result, fmt.Errorf("tui: %w", runErr)
	}
	return result, execErr
}

// logEvent prints one coordinator event in a compact form.
func logEvent(event coordinator.Event) {
	switch event.Type {
	case coordinator.EventPhaseChanged:
		fmt.Fprintf(os.Stderr, "[%s] phase: %s\n", event.ExecutionID, event.Phase)
	case coordinator.EventSubtaskStarted:
		fmt.Fprintf(os.Stderr, "[%s] subtask %d started on %s\n", event.ExecutionID, event.Position, event.Executor)
	case coordinator.EventSubtaskFinished:
		status := "ok"
		if !event.Success {
			status = "failed: " + event.Message
		}
		fmt.Fprintf(os.Stderr, "[%s] subtask %d %s\n", event.ExecutionID, event.Position, status)
	case coordinator.EventDispatchFailed:
		fmt.Fprintf(os.Stderr, "[%s] dispatch failed: %s\n", event.ExecutionID, event.Message)
	}
}
