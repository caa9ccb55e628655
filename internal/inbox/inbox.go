// Package inbox watches a drop directory for task files and submits
// them to the swarm. Producers write a JSON or YAML task file into the
// inbox (atomically, via rename) and hive picks it up; processed files
// move to done/ or failed/.
package inbox

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"go.yaml.in/yaml/v3"

	"github.com/ShayCichocki/hive/pkg/models"
)

// SubmitFunc receives each task parsed from the inbox.
type SubmitFunc func(task models.Task) error

// taskFile is the structure of a dropped task file.
type taskFile struct {
	ID      string         `json:"id" yaml:"id"`
	Goal    string         `json:"goal" yaml:"goal"`
	Payload map[string]any `json:"payload" yaml:"payload"`
}

// Watcher monitors an inbox directory for task files.
type Watcher struct {
	dir     string
	submit  SubmitFunc
	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
}

// New creates a Watcher for the given directory, creating the inbox
// and its done/ and failed/ subdirectories as needed. Files already
// present are processed before watching begins.
func New(dir string, submit SubmitFunc) (*Watcher, error) {
	for _, d := range []string{dir, filepath.Join(dir, "done"), filepath.Join(dir, "failed")} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return nil, fmt.Errorf("create inbox directory: %w", err)
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	w := &Watcher{
		dir:     dir,
		submit:  submit,
		watcher: fsw,
		done:    make(chan struct{}),
	}

	w.sweep()
	w.wg.Add(1)
	go w.watch()

	return w, nil
}

// Dir returns the inbox directory path.
func (w *Watcher) Dir() string {
	return w.dir
}

// sweep processes task files already sitting in the inbox.
func (w *Watcher) sweep() {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		log.Printf("[inbox] sweep failed: %v", err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !isTaskFile(entry.Name()) {
			continue
		}
		w.process(filepath.Join(w.dir, entry.Name()))
	}
}

func (w *Watcher) watch() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !isTaskFile(filepath.Base(event.Name)) {
				continue
			}
			if _, err := os.Stat(event.Name); err != nil {
				continue
			}
			w.process(event.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[inbox] watch error: %v", err)
		}
	}
}

// process parses one task file, submits it, and files it away.
func (w *Watcher) process(path string) {
	task, err := parseTaskFile(path)
	if err != nil {
		log.Printf("[inbox] rejected %s: %v", filepath.Base(path), err)
		w.moveTo(path, "failed")
		return
	}

	if err := w.submit(task); err != nil {
		log.Printf("[inbox] submit %s failed: %v", task.ID, err)
		w.moveTo(path, "failed")
		return
	}

	w.moveTo(path, "done")
}

func (w *Watcher) moveTo(path, subdir string) {
	dest := filepath.Join(w.dir, subdir, filepath.Base(path))
	if err := os.Rename(path, dest); err != nil {
		log.Printf("[inbox] move %s to %s failed: %v", filepath.Base(path), subdir, err)
	}
}

// parseTaskFile reads a dropped JSON or YAML file into a task,
// picking the format from the file extension. A missing ID gets a
// generated one.
func parseTaskFile(path string) (models.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Task{}, fmt.Errorf("read task file: %w", err)
	}

	var tf taskFile
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &tf)
	default:
		err = json.Unmarshal(data, &tf)
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("parse task file: %w", err)
	}
	if tf.Goal == "" {
		return models.Task{}, fmt.Errorf("task file has no goal")
	}

	id := tf.ID
	if id == "" {
		id = uuid.New().String()
	}
	payload := models.Payload(tf.Payload)
	if payload == nil {
		payload = models.Payload{}
	}

	return models.Task{
		ID:          id,
		Goal:        tf.Goal,
		Payload:     payload,
		SubmittedAt: time.Now(),
	}, nil
}

func isTaskFile(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	switch filepath.Ext(name) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// Close stops the watcher and waits for an in-flight submission to
// finish, so the swarm behind submit may be shut down afterwards.
func (w *Watcher) Close() {
	close(w.done)
	w.watcher.Close()
	w.wg.Wait()
}
