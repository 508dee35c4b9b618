package reporter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viralreporter/pkg/models"
)

func writeJobFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadJob(t *testing.T) {
	path := writeJobFile(t, "tasks.yaml", `
name: summer-campaign
tasks:
  - platform: instagram
    keyword: iced coffee
    urls:
      - https://www.instagram.com/p/Cxyz123AbC/
      - https://www.instagram.com/reel/DqRs456-_x/
  - platform: naver_blog
    keyword: 여름 세일
    urls:
      - https://blog.naver.com/writer/223456789012
`)

	job, err := LoadJob(path)
	require.NoError(t, err)

	assert.Equal(t, "summer-campaign", job.Name)
	assert.Equal(t, models.JobPending, job.Status)
	require.Len(t, job.Tasks, 2)

	ig := job.Tasks[0]
	assert.Equal(t, "instagram", ig.Platform)
	assert.Equal(t, "iced coffee", ig.Keyword.Text)
	require.Len(t, ig.PostsToFind, 2)
	assert.Equal(t, "Cxyz123AbC", ig.PostsToFind[0].ID)
	assert.Equal(t, "DqRs456-_x", ig.PostsToFind[1].ID)

	naver := job.Tasks[1]
	assert.Equal(t, "naver_blog", naver.Platform)
	assert.Equal(t, "writer/223456789012", naver.PostsToFind[0].ID)
}

func TestLoadJobNameDefaultsToFileName(t *testing.T) {
	path := writeJobFile(t, "spring_launch.yaml", `
tasks:
  - platform: instagram
    keyword: coffee
`)

	job, err := LoadJob(path)
	require.NoError(t, err)
	assert.Equal(t, "spring_launch", job.Name)
}

func TestLoadJobUnparseableURLKeepsEmptyID(t *testing.T) {
	path := writeJobFile(t, "tasks.yaml", `
tasks:
  - platform: instagram
    keyword: coffee
    urls:
      - https://www.instagram.com/someuser/
`)

	job, err := LoadJob(path)
	require.NoError(t, err)
	assert.Empty(t, job.Tasks[0].PostsToFind[0].ID)
}

func TestLoadJobValidation(t *testing.T) {
	_, err := LoadJob(writeJobFile(t, "bad.yaml", `
tasks:
  - platform: tiktok
    keyword: coffee
`))
	assert.ErrorContains(t, err, "unknown platform")

	_, err = LoadJob(writeJobFile(t, "empty.yaml", `name: nothing`))
	assert.ErrorContains(t, err, "no tasks")

	_, err = LoadJob(writeJobFile(t, "nokeyword.yaml", `
tasks:
  - platform: instagram
    keyword: "  "
`))
	assert.ErrorContains(t, err, "keyword is required")

	_, err = LoadJob(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
