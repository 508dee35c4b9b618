package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskKey(t *testing.T) {
	task := &SearchTask{
		Platform: "instagram",
		Keyword:  Keyword{Text: "iced coffee"},
	}
	assert.Equal(t, "instagram|iced coffee", task.Key())
}

func TestUpdateResult(t *testing.T) {
	task := &SearchTask{Status: TaskPending}

	task.UpdateResult(SearchResult{FoundPosts: []Post{{URL: "https://www.instagram.com/p/ABC/"}}})
	assert.Equal(t, TaskFound, task.Status)

	task = &SearchTask{Status: TaskPending}
	task.UpdateResult(SearchResult{})
	assert.Equal(t, TaskNotFound, task.Status)
}

func TestMarkError(t *testing.T) {
	task := &SearchTask{Status: TaskPending}
	task.MarkError(errors.New("boom"))

	assert.Equal(t, TaskError, task.Status)
	assert.Equal(t, "boom", task.Err)
}

func TestJobLifecycle(t *testing.T) {
	job := NewJob("campaign", []*SearchTask{
		{Platform: "instagram", Keyword: Keyword{Text: "a"}},
		{Platform: "naver_blog", Keyword: Keyword{Text: "b"}},
	})

	assert.Equal(t, JobPending, job.Status)
	for _, task := range job.Tasks {
		assert.Equal(t, TaskPending, task.Status)
	}

	job.Start()
	assert.Equal(t, JobRunning, job.Status)

	require.False(t, job.CheckCompleted())
	assert.Equal(t, JobRunning, job.Status)

	job.Tasks[0].Status = TaskFound
	job.Tasks[1].Status = TaskError
	require.True(t, job.CheckCompleted())
	assert.Equal(t, JobCompleted, job.Status)
}

func TestCounts(t *testing.T) {
	job := NewJob("campaign", []*SearchTask{
		{Status: TaskFound},
		{Status: TaskFound},
		{Status: TaskNotFound},
		{Status: TaskError},
		{Status: TaskPending},
	})

	found, notFound, failed, pending := job.Counts()
	assert.Equal(t, 2, found)
	assert.Equal(t, 1, notFound)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, pending)
}
