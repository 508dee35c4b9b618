// Package storage writes the run's artifacts: screenshots and the final
// report.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"viralreporter/pkg/models"
)

// Manager handles the output directory for a run
type Manager struct {
	baseDir    string
	reportFile string
	mu         sync.Mutex
}

// NewManager creates a storage manager rooted at baseDir
func NewManager(baseDir, reportFile string) (*Manager, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Manager{baseDir: baseDir, reportFile: reportFile}, nil
}

// BaseDir returns the output directory
func (m *Manager) BaseDir() string {
	return m.baseDir
}

// ScreenshotPath returns the path a screenshot for the given task would be
// written to. Keyword spaces become underscores so the name stays shell-safe.
func (m *Manager) ScreenshotPath(index int, keyword string) string {
	name := fmt.Sprintf("%d_%s.png", index, strings.ReplaceAll(keyword, " ", "_"))
	return filepath.Join(m.baseDir, name)
}

// SaveScreenshot writes PNG data for the task at the given position in the
// run and returns the file path
func (m *Manager) SaveScreenshot(data []byte, index int, keyword string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	path := m.ScreenshotPath(index, keyword)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save screenshot: %w", err)
	}
	return path, nil
}

// WriteReport serializes the finished job to the report file
func (m *Manager) WriteReport(job *models.SearchJob) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	path := filepath.Join(m.baseDir, m.reportFile)
	tempFile := path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	if err := os.Rename(tempFile, path); err != nil {
		return "", fmt.Errorf("failed to finalize report: %w", err)
	}
	return path, nil
}
