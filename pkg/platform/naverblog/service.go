// Package naverblog implements keyword search and capture against Naver's
// blog search tab. Naver blog search is public, so there is no login flow,
// but sponsored results hide the real post URL behind an ad-redirect link
// that has to be resolved before matching.
package naverblog

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/go-rod/rod"

	"viralreporter/internal/resolver"
	"viralreporter/pkg/capture"
	apperrors "viralreporter/pkg/errors"
	"viralreporter/pkg/logger"
	"viralreporter/pkg/models"
	"viralreporter/pkg/platform"
)

const (
	searchURLFormat   = "https://search.naver.com/search.naver?ssc=tab.blog.all&sm=tab_jum&query=%s"
	tileSelector      = `[data-template-id='ugcItem']`
	containerSelector = `#main_pack`

	resolverWorkers = 4
	adLinkTimeout   = 3 * time.Second
)

// Service searches Naver blog anonymously
type Service struct {
	deps     platform.Deps
	capturer *capture.Capturer
	resolver *resolver.Resolver
	log      logger.Logger

	browserCtx *rod.Browser
	ctxOnce    sync.Once
	ctxErr     error

	// swappable in tests
	doHighlight func(*rod.Element) error
}

// New creates the Naver blog search service
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
		resolver: resolver.New(resolverWorkers, adLinkTimeout, log),
		log:      log.WithField("platform", string(platform.NaverBlog)),
	}, nil
}

// Platform returns the platform this service searches
func (s *Service) Platform() platform.Platform {
	return platform.NaverBlog
}

// Authenticate is a no-op: Naver blog search works without a session. The
// browser context is still created here so Search has one to use.
func (s *Service) Authenticate(ctx context.Context) error {
	s.ctxOnce.Do(func() {
		bctx, err := s.deps.Browser.NewContext()
		if err != nil {
			s.ctxErr = apperrors.Wrap(apperrors.ErrorTypeNavigation, string(platform.NaverBlog), "failed to create browser context", err)
			return
		}
		s.browserCtx = bctx
	})
	return s.ctxErr
}

// Search runs the keyword search, highlights any target posts among the top
// blog results, and captures the results pane
func (s *Service) Search(ctx context.Context, index int, keyword models.Keyword, targets []models.Post) (models.SearchResult, error) {
	if err := s.Authenticate(ctx); err != nil {
		return models.SearchResult{}, err
	}

	page, err := s.deps.Browser.NewPage(s.browserCtx)
	if err != nil {
		return models.SearchResult{}, apperrors.Wrap(apperrors.ErrorTypeNavigation, string(platform.NaverBlog), "failed to open page", err)
	}
	defer page.Close()

	searchURL := fmt.Sprintf(searchURLFormat, url.QueryEscape(keyword.Text))
	if err := s.deps.Browser.Navigate(ctx, page, searchURL); err != nil {
		return models.SearchResult{}, apperrors.Wrap(apperrors.ErrorTypeNavigation, string(platform.NaverBlog), "search navigation failed", err)
	}

	tiles, loadErr := s.collectTiles(page)
	if loadErr != nil {
		// Recovered locally: capture whatever the page shows
		s.log.WithError(loadErr).Warn("Continuing after results wait timeout")
	}
	if len(tiles) == 0 {
		return models.SearchResult{}, apperrors.New(apperrors.ErrorTypeNoResults, string(platform.NaverBlog), "no blog results for keyword")
	}

	found := s.matchAndHighlight(ctx, tiles, targets)

	result := models.SearchResult{FoundPosts: found}

	shot, capErr := s.captureResults(ctx, page, tiles, index, keyword)
	if capErr == nil {
		result.Screenshot = shot
	}

	logger.LogSearch(string(platform.NaverBlog), keyword.Text, len(tiles), len(found))

	return result, capErr
}

func (s *Service) collectTiles(page *rod.Page) ([]*rod.Element, error) {
	timeout := s.deps.Config.Browser.PageLoadTimeout

	var loadErr error
	if _, err := page.Timeout(timeout).Element(tileSelector); err != nil {
		loadErr = apperrors.Wrap(apperrors.ErrorTypePageLoadTimeout, string(platform.NaverBlog), "search results did not appear", err)
	}

	tiles, err := page.Elements(tileSelector)
	if err != nil {
		if loadErr != nil {
			return nil, loadErr
		}
		return nil, apperrors.Wrap(apperrors.ErrorTypeNavigation, string(platform.NaverBlog), "failed to collect result tiles", err)
	}

	topN := s.deps.Config.Search.NaverTopN
	if len(tiles) > topN {
		tiles = tiles[:topN]
	}
	return tiles, loadErr
}

// matchAndHighlight checks every tile's links against the target posts.
// Ad-redirect links are resolved to the real post URL by the resolver's
// worker pool first. Matched tiles get an outline so they stand out in the
// screenshot.
func (s *Service) matchAndHighlight(ctx context.Context, tiles []*rod.Element, targets []models.Post) []models.Post {
	if len(targets) == 0 {
		return nil
	}

	tileLinks := collectTileLinks(tiles)
	matched := MatchTiles(s.resolveLinks(ctx, tileLinks), targets)

	return s.highlightMatched(tiles, matched)
}

// collectTileLinks reads every anchor href inside each tile, keeping the
// per-tile grouping
func collectTileLinks(tiles []*rod.Element) [][]string {
	tileLinks := make([][]string, len(tiles))
	for i, tile := range tiles {
		links, err := tile.Elements("a")
		if err != nil {
			continue
		}
		for _, link := range links {
			href, err := link.Attribute("href")
			if err != nil || href == nil {
				continue
			}
			tileLinks[i] = append(tileLinks[i], *href)
		}
	}
	return tileLinks
}

// resolveLinks resolves all tiles' links in one batch so the resolver's
// worker pool bounds the ad-redirect fan-out. The per-tile grouping is
// preserved.
func (s *Service) resolveLinks(ctx context.Context, tileLinks [][]string) [][]string {
	total := 0
	for _, links := range tileLinks {
		total += len(links)
	}
	flat := make([]string, 0, total)
	for _, links := range tileLinks {
		flat = append(flat, links...)
	}

	resolved := s.resolver.ResolveAll(ctx, flat)

	out := make([][]string, len(tileLinks))
	idx := 0
	for i, links := range tileLinks {
		out[i] = resolved[idx : idx+len(links)]
		idx += len(links)
	}
	return out
}

// MatchTiles returns, for each tile whose resolved links include a target
// post, the tile's index mapped to that post.
func MatchTiles(tileLinks [][]string, targets []models.Post) map[int]models.Post {
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
	if len(targetIDs) == 0 {
		return nil
	}

	matched := make(map[int]models.Post)
	for i, links := range tileLinks {
		for _, href := range links {
			id := ExtractPostID(href)
			if id == "" {
				continue
			}
			if post, ok := targetIDs[id]; ok {
				matched[i] = post
				break
			}
		}
	}
	return matched
}

// highlightMatched outlines the matched tiles and returns the posts found
func (s *Service) highlightMatched(tiles []*rod.Element, matched map[int]models.Post) []models.Post {
	h := s.doHighlight
	if h == nil {
		h = highlight
	}

	var (
		mu    sync.Mutex
		found []models.Post
		wg    sync.WaitGroup
	)
	for i, post := range matched {
		wg.Add(1)
		go func(i int, post models.Post) {
			defer wg.Done()

			if err := h(tiles[i]); err != nil {
				s.log.WithError(err).Warn("Failed to highlight matched tile")
			}

			mu.Lock()
			found = append(found, post)
			mu.Unlock()
		}(i, post)
	}
	wg.Wait()

	return found
}

// highlight outlines a matched result tile
func highlight(el *rod.Element) error {
	_, err := el.Eval(`() => {
		this.style.outline = "3px solid red";
	}`)
	return err
}

// captureResults screenshots the results pane as a single column: the
// container gives the horizontal extent and the collected tiles bound the
// bottom edge, so the crop stops at the last result instead of running the
// container's full height
func (s *Service) captureResults(ctx context.Context, page *rod.Page, tiles []*rod.Element, index int, keyword models.Keyword) (*models.Screenshot, error) {
	container, err := page.Timeout(s.deps.Config.Browser.SessionProbe).Element(containerSelector)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrorTypeNoResults, string(platform.NaverBlog), "results container not found", err)
	}

	data, err := s.capturer.CaptureColumn(ctx, page, string(platform.NaverBlog), container, tiles)
	if err != nil {
		return nil, err
	}

	path, err := s.deps.Storage.SaveScreenshot(data, index, keyword.Text)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrorTypeUnknown, string(platform.NaverBlog), "failed to save screenshot", err)
	}

	logger.LogScreenshot(string(platform.NaverBlog), keyword.Text, path)

	return &models.Screenshot{FilePath: path}, nil
}

// Close releases the incognito context
func (s *Service) Close() error {
	s.browserCtx = nil
	return nil
}
