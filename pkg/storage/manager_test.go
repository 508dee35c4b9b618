package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viralreporter/pkg/models"
)

func TestScreenshotFilename(t *testing.T) {
	m, err := NewManager(t.TempDir(), "report.json")
	require.NoError(t, err)

	path := m.ScreenshotPath(0, "iced coffee recipe")
	assert.Equal(t, "0_iced_coffee_recipe.png", filepath.Base(path))
}

func TestSaveScreenshot(t *testing.T) {
	m, err := NewManager(t.TempDir(), "report.json")
	require.NoError(t, err)

	data := []byte{0x89, 0x50, 0x4E, 0x47}
	path, err := m.SaveScreenshot(data, 2, "summer sale")
	require.NoError(t, err)

	saved, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, saved)
	assert.Equal(t, "2_summer_sale.png", filepath.Base(path))
}

func TestWriteReport(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir, "report.json")
	require.NoError(t, err)

	job := models.NewJob("demo", []*models.SearchTask{
		{
			Platform: "instagram",
			Keyword:  models.Keyword{Text: "coffee"},
			Status:   models.TaskFound,
		},
	})

	path, err := m.WriteReport(job)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report.json"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded models.SearchJob
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded.Tasks, 1)
	assert.Equal(t, "coffee", decoded.Tasks[0].Keyword.Text)
}

func TestNewManagerCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "reports")
	_, err := NewManager(dir, "report.json")
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
