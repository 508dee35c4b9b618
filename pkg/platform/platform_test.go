package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	p, err := Parse("instagram")
	require.NoError(t, err)
	assert.Equal(t, Instagram, p)

	p, err = Parse("naver_blog")
	require.NoError(t, err)
	assert.Equal(t, NaverBlog, p)

	_, err = Parse("tiktok")
	assert.Error(t, err)

	_, err = Parse("")
	assert.Error(t, err)
}

func TestPlatforms(t *testing.T) {
	assert.Equal(t, []Platform{Instagram, NaverBlog}, Platforms())
}
