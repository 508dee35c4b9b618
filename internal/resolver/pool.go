// Package resolver follows Naver's ad-redirect links to the blog post they
// point at. Ad links answer with a redirect status instead of the post page,
// so each one costs an HTTP request; a small worker pool keeps a batch of
// tiles fast.
package resolver

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"viralreporter/pkg/logger"
)

const adLinkHost = "ader.naver.com"

// Resolver resolves redirect links to their destination without following
// the redirect in a browser
type Resolver struct {
	client  *http.Client
	workers int
	log     logger.Logger
}

// New creates a resolver with the given concurrency and per-request timeout
func New(workers int, timeout time.Duration, log logger.Logger) *Resolver {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &Resolver{
		client: &http.Client{
			Timeout: timeout,
			// Read the redirect response ourselves instead of following it
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		workers: workers,
		log:     log,
	}
}

// IsAdLink reports whether href is a Naver ad-redirect link
func IsAdLink(href string) bool {
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	return u.Host == adLinkHost || strings.HasSuffix(u.Host, "."+adLinkHost)
}

// Resolve returns the destination of an ad-redirect link. Non-ad links and
// links that fail to resolve come back unchanged.
func (r *Resolver) Resolve(ctx context.Context, href string) string {
	if !IsAdLink(href) {
		return href
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, href, nil)
	if err != nil {
		return href
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.log.WithError(err).WithField("href", href).Debug("Ad link request failed")
		return href
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		if location := resp.Header.Get("Location"); location != "" {
			return location
		}
	}
	r.log.WithFields(map[string]interface{}{
		"href":   href,
		"status": resp.StatusCode,
	}).Debug("Ad link did not redirect")
	return href
}

// ResolveAll resolves a batch of links concurrently, preserving order
func (r *Resolver) ResolveAll(ctx context.Context, hrefs []string) []string {
	resolved := make([]string, len(hrefs))

	var wg sync.WaitGroup
	sem := make(chan struct{}, r.workers)
	for i, href := range hrefs {
		wg.Add(1)
		go func(i int, href string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			resolved[i] = r.Resolve(ctx, href)
		}(i, href)
	}
	wg.Wait()

	return resolved
}
