package naverblog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPostID(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"canonical path", "https://blog.naver.com/coffeewriter/223456789012", "coffeewriter/223456789012"},
		{"trailing slash", "https://blog.naver.com/coffeewriter/223456789012/", "coffeewriter/223456789012"},
		{"mobile host", "https://m.blog.naver.com/coffeewriter/223456789012", "coffeewriter/223456789012"},
		{"postview form", "https://blog.naver.com/PostView.naver?blogId=coffeewriter&logNo=223456789012", "coffeewriter/223456789012"},
		{"legacy postview form", "https://blog.naver.com/PostView.nhn?blogId=coffeewriter&logNo=223456789012&redirect=Dlog", "coffeewriter/223456789012"},
		{"blog home", "https://blog.naver.com/coffeewriter", ""},
		{"non-numeric logno", "https://blog.naver.com/coffeewriter/about", ""},
		{"wrong host", "https://cafe.naver.com/coffeewriter/223456789012", ""},
		{"ad link", "https://ader.naver.com/v1/click?code=abc", ""},
		{"postview missing params", "https://blog.naver.com/PostView.naver?blogId=coffeewriter", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractPostID(tt.url))
		})
	}
}

func TestExtractPostIDFormInsensitive(t *testing.T) {
	// A post linked via PostView and via the canonical path is the same post
	canonical := ExtractPostID("https://blog.naver.com/writer/1122334455")
	postview := ExtractPostID("https://blog.naver.com/PostView.naver?blogId=writer&logNo=1122334455")
	assert.Equal(t, canonical, postview)
	assert.NotEmpty(t, canonical)
}
