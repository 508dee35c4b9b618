package logger

// LogSearch logs the outcome of a keyword search on a platform
func LogSearch(platform, keyword string, candidates, matches int) {
	GetLogger().InfoWithFields("search completed", map[string]interface{}{
		"platform":   platform,
		"keyword":    keyword,
		"candidates": candidates,
		"matches":    matches,
	})
}

// LogScreenshot logs a captured screenshot artifact
func LogScreenshot(platform, keyword, path string) {
	GetLogger().InfoWithFields("screenshot saved", map[string]interface{}{
		"platform": platform,
		"keyword":  keyword,
		"path":     path,
	})
}

// LogAuth logs an authentication event for a platform
func LogAuth(platform, event string) {
	GetLogger().InfoWithFields("authentication", map[string]interface{}{
		"platform": platform,
		"event":    event,
	})
}
