// Package platform defines the search service contract and the fixed set of
// supported platforms.
package platform

import (
	"context"
	"fmt"

	"viralreporter/pkg/browser"
	"viralreporter/pkg/config"
	"viralreporter/pkg/logger"
	"viralreporter/pkg/models"
	"viralreporter/pkg/session"
	"viralreporter/pkg/storage"
)

// Platform identifies a supported social platform
type Platform string

const (
	Instagram Platform = "instagram"
	NaverBlog Platform = "naver_blog"
)

// Platforms lists every supported platform
func Platforms() []Platform {
	return []Platform{Instagram, NaverBlog}
}

// Parse validates a platform name from user input
func Parse(name string) (Platform, error) {
	switch Platform(name) {
	case Instagram:
		return Instagram, nil
	case NaverBlog:
		return NaverBlog, nil
	default:
		return "", fmt.Errorf("unknown platform %q (supported: instagram, naver_blog)", name)
	}
}

// Service searches one platform for keyword results and captures them
type Service interface {
	// Platform returns the platform this service searches
	Platform() Platform

	// Authenticate establishes a usable session. It is idempotent within a
	// run; platforms with public search implement it as a no-op.
	Authenticate(ctx context.Context) error

	// Search runs a keyword search, matches the target posts among the top
	// results, highlights any matches, and captures the results screenshot.
	// index is the task's position in the run and names the screenshot file.
	Search(ctx context.Context, index int, keyword models.Keyword, targets []models.Post) (models.SearchResult, error)

	// Close releases the browser context held by the service
	Close() error
}

// Deps bundles what a service needs to operate
type Deps struct {
	Browser  *browser.Manager
	Sessions session.Store
	Storage  *storage.Manager
	Config   *config.Config
	Logger   logger.Logger
}

