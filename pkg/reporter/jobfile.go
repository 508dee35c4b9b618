package reporter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"viralreporter/pkg/models"
	"viralreporter/pkg/platform"
	"viralreporter/pkg/platform/instagram"
	"viralreporter/pkg/platform/naverblog"
)

// jobFile is the on-disk shape of a task list
type jobFile struct {
	Name  string     `yaml:"name"`
	Tasks []taskSpec `yaml:"tasks"`
}

type taskSpec struct {
	Platform string   `yaml:"platform"`
	Keyword  string   `yaml:"keyword"`
	URLs     []string `yaml:"urls"`
}

// LoadJob reads and validates a YAML task file. The job name defaults to the
// file name when the file does not set one.
func LoadJob(path string) (*models.SearchJob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read task file: %w", err)
	}

	var jf jobFile
	if err := yaml.Unmarshal(data, &jf); err != nil {
		return nil, fmt.Errorf("failed to parse task file: %w", err)
	}

	if len(jf.Tasks) == 0 {
		return nil, fmt.Errorf("task file %s contains no tasks", path)
	}

	name := jf.Name
	if name == "" {
		base := filepath.Base(path)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	tasks := make([]*models.SearchTask, 0, len(jf.Tasks))
	for i, spec := range jf.Tasks {
		p, err := platform.Parse(spec.Platform)
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", i+1, err)
		}
		if strings.TrimSpace(spec.Keyword) == "" {
			return nil, fmt.Errorf("task %d: keyword is required", i+1)
		}

		posts := make([]models.Post, 0, len(spec.URLs))
		for _, u := range spec.URLs {
			posts = append(posts, models.Post{URL: u, ID: extractID(p, u)})
		}

		tasks = append(tasks, &models.SearchTask{
			Platform:    string(p),
			Keyword:     models.Keyword{Text: spec.Keyword},
			PostsToFind: posts,
			Status:      models.TaskPending,
		})
	}

	return models.NewJob(name, tasks), nil
}

// extractID normalizes a target URL to its platform identifier up front so
// unparseable URLs surface in the report instead of silently never matching
func extractID(p platform.Platform, url string) string {
	switch p {
	case platform.Instagram:
		return instagram.ExtractPostID(url)
	case platform.NaverBlog:
		return naverblog.ExtractPostID(url)
	default:
		return ""
	}
}
