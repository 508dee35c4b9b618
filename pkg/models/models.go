package models

import (
	"time"
)

// Keyword is a search keyword
type Keyword struct {
	Text string `json:"text"`
}

// Post is a target post the run is trying to find in search results.
// ID is the platform-specific identifier extracted from the URL; it is
// empty for URLs the platform cannot parse.
type Post struct {
	URL string `json:"url"`
	ID  string `json:"id,omitempty"`
}

// Screenshot is a captured image artifact
type Screenshot struct {
	FilePath string `json:"file_path"`
}

// SearchResult holds the outcome of a single keyword search
type SearchResult struct {
	FoundPosts []Post      `json:"found_posts"`
	Screenshot *Screenshot `json:"screenshot,omitempty"`
}

// TaskStatus represents the lifecycle state of a search task
type TaskStatus string

const (
	TaskPending  TaskStatus = "pending"
	TaskFound    TaskStatus = "found"
	TaskNotFound TaskStatus = "not_found"
	TaskError    TaskStatus = "error"
)

// JobStatus represents the lifecycle state of a search job
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
)

// SearchTask is one keyword search against one platform
type SearchTask struct {
	Platform    string       `json:"platform"`
	Keyword     Keyword      `json:"keyword"`
	PostsToFind []Post       `json:"posts_to_find"`
	Status      TaskStatus   `json:"status"`
	Result      *SearchResult `json:"result,omitempty"`
	Err         string       `json:"error,omitempty"`
}

// Key identifies a task within a job for checkpointing
func (t *SearchTask) Key() string {
	return t.Platform + "|" + t.Keyword.Text
}

// UpdateResult records the result and derives the task status from it
func (t *SearchTask) UpdateResult(result SearchResult) {
	t.Result = &result
	if len(result.FoundPosts) > 0 {
		t.Status = TaskFound
	} else {
		t.Status = TaskNotFound
	}
}

// MarkError moves the task into the error state
func (t *SearchTask) MarkError(err error) {
	t.Status = TaskError
	if err != nil {
		t.Err = err.Error()
	}
}

// SearchJob is an ordered collection of search tasks processed in one run
type SearchJob struct {
	Name      string        `json:"name"`
	Tasks     []*SearchTask `json:"tasks"`
	Status    JobStatus     `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

// NewJob creates a pending job over the given tasks
func NewJob(name string, tasks []*SearchTask) *SearchJob {
	for _, t := range tasks {
		if t.Status == "" {
			t.Status = TaskPending
		}
	}
	return &SearchJob{
		Name:      name,
		Tasks:     tasks,
		Status:    JobPending,
		CreatedAt: time.Now(),
	}
}

// Start moves the job into the running state
func (j *SearchJob) Start() {
	if j.Status == JobPending {
		j.Status = JobRunning
	}
}

// CheckCompleted marks the job completed once no task is pending
func (j *SearchJob) CheckCompleted() bool {
	for _, t := range j.Tasks {
		if t.Status == TaskPending {
			return false
		}
	}
	j.Status = JobCompleted
	return true
}

// Counts returns the number of tasks per status
func (j *SearchJob) Counts() (found, notFound, failed, pending int) {
	for _, t := range j.Tasks {
		switch t.Status {
		case TaskFound:
			found++
		case TaskNotFound:
			notFound++
		case TaskError:
			failed++
		case TaskPending:
			pending++
		}
	}
	return
}
