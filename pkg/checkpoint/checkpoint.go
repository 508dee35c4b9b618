// Package checkpoint persists run progress so an interrupted run can resume
// without repeating completed searches.
package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"viralreporter/pkg/models"
)

// Checkpoint tracks which tasks of a job have finished
type Checkpoint struct {
	JobName        string                       `json:"job_name"`
	CompletedTasks map[string]models.TaskStatus `json:"completed_tasks"`
	StartedAt      time.Time                    `json:"started_at"`
	UpdatedAt      time.Time                    `json:"updated_at"`

	path string
	mu   sync.Mutex
}

// Path returns the checkpoint file path for a job inside dir
func Path(dir, jobName string) string {
	return filepath.Join(dir, ".checkpoint_"+jobName+".json")
}

// Exists checks whether a checkpoint file exists for the job
func Exists(dir, jobName string) bool {
	_, err := os.Stat(Path(dir, jobName))
	return err == nil
}

// New creates a fresh checkpoint for a job
func New(dir, jobName string) *Checkpoint {
	now := time.Now()
	return &Checkpoint{
		JobName:        jobName,
		CompletedTasks: make(map[string]models.TaskStatus),
		StartedAt:      now,
		UpdatedAt:      now,
		path:           Path(dir, jobName),
	}
}

// Load reads an existing checkpoint for a job
func Load(dir, jobName string) (*Checkpoint, error) {
	path := Path(dir, jobName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("failed to parse checkpoint: %w", err)
	}
	if cp.CompletedTasks == nil {
		cp.CompletedTasks = make(map[string]models.TaskStatus)
	}
	cp.path = path
	return &cp, nil
}

// IsDone reports whether a task already completed in a previous run
func (c *Checkpoint) IsDone(task *models.SearchTask) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.CompletedTasks[task.Key()]
	return ok
}

// Restore applies a previously recorded status to the task
func (c *Checkpoint) Restore(task *models.SearchTask) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if status, ok := c.CompletedTasks[task.Key()]; ok {
		task.Status = status
	}
}

// RecordTask marks a task complete and persists the checkpoint
func (c *Checkpoint) RecordTask(task *models.SearchTask) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.CompletedTasks[task.Key()] = task.Status
	c.UpdatedAt = time.Now()
	return c.save()
}

// Delete removes the checkpoint file, typically after a successful run
func (c *Checkpoint) Delete() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := os.Remove(c.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove checkpoint: %w", err)
	}
	return nil
}

func (c *Checkpoint) save() error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	tempFile := c.path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	return os.Rename(tempFile, c.path)
}
