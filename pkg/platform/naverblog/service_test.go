package naverblog

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-rod/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viralreporter/internal/resolver"
	"viralreporter/pkg/logger"
	"viralreporter/pkg/models"
)

func TestMatchTiles(t *testing.T) {
	tileLinks := [][]string{
		{"https://blog.naver.com/foodie_kim/223456789012"},
		{"https://other.example.com/somewhere", "https://blog.naver.com/travel_lee/223000000001"},
		{"https://blog.naver.com/unrelated/111111111111"},
	}
	targets := []models.Post{
		{URL: "https://blog.naver.com/travel_lee/223000000001"},
	}

	matched := MatchTiles(tileLinks, targets)
	require.Len(t, matched, 1)
	assert.Equal(t, targets[0], matched[1])
}

func TestMatchTilesFirstLinkWins(t *testing.T) {
	// A tile matches at most once even when several of its links point at
	// target posts
	tileLinks := [][]string{
		{
			"https://blog.naver.com/foodie_kim/223456789012",
			"https://blog.naver.com/travel_lee/223000000001",
		},
	}
	targets := []models.Post{
		{URL: "https://blog.naver.com/foodie_kim/223456789012"},
		{URL: "https://blog.naver.com/travel_lee/223000000001"},
	}

	matched := MatchTiles(tileLinks, targets)
	require.Len(t, matched, 1)
	assert.Equal(t, targets[0], matched[0])
}

func TestMatchTilesNoTargets(t *testing.T) {
	tileLinks := [][]string{{"https://blog.naver.com/foodie_kim/223456789012"}}
	assert.Empty(t, MatchTiles(tileLinks, nil))
}

func TestMatchTilesUnparseableTarget(t *testing.T) {
	tileLinks := [][]string{{"https://blog.naver.com/foodie_kim/223456789012"}}
	targets := []models.Post{{URL: "https://blog.naver.com/"}}
	assert.Empty(t, MatchTiles(tileLinks, targets))
}

func TestResolveLinksKeepsTileGrouping(t *testing.T) {
	// Direct blog links pass through the resolver pool untouched; the
	// per-tile grouping must survive the batch round trip
	s := &Service{
		resolver: resolver.New(4, time.Second, logger.GetLogger()),
	}
	tileLinks := [][]string{
		{"https://blog.naver.com/a/1", "https://blog.naver.com/a/2"},
		nil,
		{"https://blog.naver.com/b/3"},
	}

	resolved := s.resolveLinks(context.Background(), tileLinks)
	require.Len(t, resolved, 3)
	assert.Equal(t, []string{"https://blog.naver.com/a/1", "https://blog.naver.com/a/2"}, resolved[0])
	assert.Empty(t, resolved[1])
	assert.Equal(t, []string{"https://blog.naver.com/b/3"}, resolved[2])
}

func TestHighlightMatchedCallsPerTile(t *testing.T) {
	var calls atomic.Int32
	s := &Service{
		log: logger.GetLogger(),
		doHighlight: func(*rod.Element) error {
			calls.Add(1)
			return nil
		},
	}

	tiles := make([]*rod.Element, 10)
	target := models.Post{URL: "https://blog.naver.com/travel_lee/223000000001", ID: "travel_lee/223000000001"}
	matched := map[int]models.Post{3: target}

	found := s.highlightMatched(tiles, matched)
	require.Len(t, found, 1)
	assert.Equal(t, target, found[0])
	assert.Equal(t, int32(1), calls.Load())
}
