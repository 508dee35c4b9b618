package checkpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viralreporter/pkg/models"
)

func task(platform, keyword string) *models.SearchTask {
	return &models.SearchTask{
		Platform: platform,
		Keyword:  models.Keyword{Text: keyword},
		Status:   models.TaskPending,
	}
}

func TestCheckpointRoundTrip(t *testing.T) {
	dir := t.TempDir()

	cp := New(dir, "campaign")
	done := task("instagram", "coffee")
	done.Status = models.TaskFound
	require.NoError(t, cp.RecordTask(done))

	assert.True(t, Exists(dir, "campaign"))
	assert.False(t, Exists(dir, "other"))

	loaded, err := Load(dir, "campaign")
	require.NoError(t, err)
	assert.True(t, loaded.IsDone(task("instagram", "coffee")))
	assert.False(t, loaded.IsDone(task("naver_blog", "coffee")))
}

func TestCheckpointRestore(t *testing.T) {
	dir := t.TempDir()

	cp := New(dir, "campaign")
	done := task("naver_blog", "summer sale")
	done.Status = models.TaskNotFound
	require.NoError(t, cp.RecordTask(done))

	loaded, err := Load(dir, "campaign")
	require.NoError(t, err)

	fresh := task("naver_blog", "summer sale")
	loaded.Restore(fresh)
	assert.Equal(t, models.TaskNotFound, fresh.Status)
}

func TestCheckpointKeyIncludesPlatform(t *testing.T) {
	dir := t.TempDir()

	cp := New(dir, "campaign")
	done := task("instagram", "coffee")
	done.Status = models.TaskFound
	require.NoError(t, cp.RecordTask(done))

	// Same keyword on another platform is a different task
	assert.False(t, cp.IsDone(task("naver_blog", "coffee")))
}

func TestCheckpointDelete(t *testing.T) {
	dir := t.TempDir()

	cp := New(dir, "campaign")
	done := task("instagram", "coffee")
	done.Status = models.TaskError
	require.NoError(t, cp.RecordTask(done))

	require.NoError(t, cp.Delete())
	assert.False(t, Exists(dir, "campaign"))

	// Deleting twice is not an error
	assert.NoError(t, cp.Delete())
}

func TestLoadMissingCheckpoint(t *testing.T) {
	_, err := Load(t.TempDir(), "nope")
	assert.Error(t, err)
}
