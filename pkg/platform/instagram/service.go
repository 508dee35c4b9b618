// Package instagram implements keyword search and capture against
// Instagram's explore search.
package instagram

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"sync"

	"github.com/go-rod/rod"

	"viralreporter/pkg/capture"
	apperrors "viralreporter/pkg/errors"
	"viralreporter/pkg/logger"
	"viralreporter/pkg/models"
	"viralreporter/pkg/platform"
)

const (
	searchURLFormat = "https://www.instagram.com/explore/search/keyword/?q=%s"
	tileSelector    = `a[href*="/p/"], a[href*="/reel/"]`
)

// postIDPattern captures the shortcode from post and reel permalinks
var postIDPattern = regexp.MustCompile(`/(p|reel)/([\w-]+)/?`)

// ExtractPostID returns the shortcode of an Instagram post or reel URL, or
// the empty string when the URL is not a post link. Both permalink forms
// share the shortcode, so a /p/ URL matches the same post linked as /reel/.
func ExtractPostID(rawURL string) string {
	m := postIDPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return ""
	}
	return m[2]
}

// Service searches Instagram with an authenticated session
type Service struct {
	deps     platform.Deps
	capturer *capture.Capturer
	log      logger.Logger

	// browserCtx is the incognito context carrying the session cookies
	browserCtx *rod.Browser

	authOnce sync.Once
	authErr  error

	// swappable in tests
	doAuth      func(context.Context) error
	doHighlight func(*rod.Element) error
}

// New creates the Instagram search service
func New(deps platform.Deps) (*Service, error) {
	log := deps.Logger
	if log == nil {
		log = logger.GetLogger()
	}
	search := deps.Config.Search
	b := deps.Config.Browser
	return &Service{
		deps: deps,
		capturer: capture.NewCapturer(capture.Options{
			RowTolerance:   search.RowTolerance,
			Margin:         search.Margin,
			BottomPadding:  int(search.BottomPadding),
			ScrollPause:    search.ScrollPause,
			ImageWait:      search.ImageWait,
			ViewportWidth:  b.ViewportWidth,
			ViewportHeight: b.ViewportHeight,
		}, log),
		log: log.WithField("platform", string(platform.Instagram)),
	}, nil
}

// Platform returns the platform this service searches
func (s *Service) Platform() platform.Platform {
	return platform.Instagram
}

// Search runs the keyword search, highlights any target posts found among
// the top results, and captures the result grid. The screenshot is attempted
// even when nothing matched so the report shows what the search returned.
func (s *Service) Search(ctx context.Context, index int, keyword models.Keyword, targets []models.Post) (models.SearchResult, error) {
	if err := s.Authenticate(ctx); err != nil {
		return models.SearchResult{}, err
	}

	page, err := s.deps.Browser.NewPage(s.browserCtx)
	if err != nil {
		return models.SearchResult{}, apperrors.Wrap(apperrors.ErrorTypeNavigation, string(platform.Instagram), "failed to open page", err)
	}
	defer page.Close()

	searchURL := fmt.Sprintf(searchURLFormat, url.QueryEscape(keyword.Text))
	if err := s.deps.Browser.Navigate(ctx, page, searchURL); err != nil {
		return models.SearchResult{}, apperrors.Wrap(apperrors.ErrorTypeNavigation, string(platform.Instagram), "search navigation failed", err)
	}

	tiles, loadErr := s.collectTiles(page)
	if loadErr != nil {
		// Recovered locally: capture whatever the page shows
		s.log.WithError(loadErr).Warn("Continuing after results wait timeout")
	}

	found := s.matchAndHighlight(tiles, targets)

	result := models.SearchResult{FoundPosts: found}

	// The screenshot is evidence either way, matched or not
	shot, capErr := s.captureResults(ctx, page, index, keyword, tiles)
	if capErr == nil {
		result.Screenshot = shot
	}

	logger.LogSearch(string(platform.Instagram), keyword.Text, len(tiles), len(found))

	return result, capErr
}

// collectTiles waits for result tiles and returns the top candidates. A
// timeout is reported as a page load timeout but any tiles that did appear
// are still returned.
func (s *Service) collectTiles(page *rod.Page) ([]*rod.Element, error) {
	timeout := s.deps.Config.Browser.PageLoadTimeout

	var loadErr error
	if _, err := page.Timeout(timeout).Element(tileSelector); err != nil {
		loadErr = apperrors.Wrap(apperrors.ErrorTypePageLoadTimeout, string(platform.Instagram), "search results did not appear", err)
	}

	tiles, err := page.Elements(tileSelector)
	if err != nil {
		if loadErr != nil {
			return nil, loadErr
		}
		return nil, apperrors.Wrap(apperrors.ErrorTypeNavigation, string(platform.Instagram), "failed to collect result tiles", err)
	}

	topN := s.deps.Config.Search.InstagramTopN
	if len(tiles) > topN {
		tiles = tiles[:topN]
	}
	return tiles, loadErr
}

// MatchCandidates compares candidate hrefs against the target posts by
// shortcode and returns candidate index → matched post. A target appearing
// at several candidates is reported at each of them.
func MatchCandidates(hrefs []string, targets []models.Post) map[int]models.Post {
	targetIDs := make(map[string]models.Post, len(targets))
	for _, t := range targets {
		id := t.ID
		if id == "" {
			id = ExtractPostID(t.URL)
		}
		if id != "" {
			targetIDs[id] = t
		}
	}

	matched := make(map[int]models.Post)
	for i, href := range hrefs {
		id := ExtractPostID(href)
		if id == "" {
			continue
		}
		if post, ok := targetIDs[id]; ok {
			matched[i] = post
		}
	}
	return matched
}

// matchAndHighlight reads each tile's href, matches against the targets, and
// outlines the matched tiles. Reads and highlights fan out per tile; each
// tile is touched by exactly one goroutine per phase.
func (s *Service) matchAndHighlight(tiles []*rod.Element, targets []models.Post) []models.Post {
	hrefs := make([]string, len(tiles))
	var wg sync.WaitGroup
	for i, tile := range tiles {
		wg.Add(1)
		go func(i int, tile *rod.Element) {
			defer wg.Done()
			if href, err := tile.Attribute("href"); err == nil && href != nil {
				hrefs[i] = *href
			}
		}(i, tile)
	}
	wg.Wait()

	return s.highlightMatched(tiles, MatchCandidates(hrefs, targets))
}

// highlightMatched outlines the matched tiles and returns the posts found,
// deduplicated: a target appearing at several tiles is highlighted at each
// but reported once
func (s *Service) highlightMatched(tiles []*rod.Element, matched map[int]models.Post) []models.Post {
	h := s.doHighlight
	if h == nil {
		h = highlight
	}

	var wg sync.WaitGroup
	seen := make(map[string]bool, len(matched))
	var found []models.Post
	for i, post := range matched {
		wg.Add(1)
		go func(tile *rod.Element) {
			defer wg.Done()
			if err := h(tile); err != nil {
				s.log.WithError(err).Warn("Failed to highlight matched tile")
			}
		}(tiles[i])

		if !seen[post.URL] {
			seen[post.URL] = true
			found = append(found, post)
		}
	}
	wg.Wait()

	return found
}

// highlight outlines a matched tile so it stands out in the screenshot
func highlight(el *rod.Element) error {
	_, err := el.Eval(`() => {
		this.style.border = "5px solid red";
		this.style.display = "block";
	}`)
	return err
}

func (s *Service) captureResults(ctx context.Context, page *rod.Page, index int, keyword models.Keyword, tiles []*rod.Element) (*models.Screenshot, error) {
	data, err := s.capturer.CaptureGrid(ctx, page, string(platform.Instagram), tiles)
	if err != nil {
		return nil, err
	}

	path, err := s.deps.Storage.SaveScreenshot(data, index, keyword.Text)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrorTypeUnknown, string(platform.Instagram), "failed to save screenshot", err)
	}

	logger.LogScreenshot(string(platform.Instagram), keyword.Text, path)

	return &models.Screenshot{FilePath: path}, nil
}

// Close releases the incognito context
func (s *Service) Close() error {
	s.browserCtx = nil
	return nil
}
