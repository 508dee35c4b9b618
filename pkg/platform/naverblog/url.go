package naverblog

import (
	"net/url"
	"regexp"
	"strings"
)

// blogPathPattern matches the canonical /<blogId>/<logNo> post path
var blogPathPattern = regexp.MustCompile(`^/([\w.-]+)/(\d+)/?$`)

// ExtractPostID returns the canonical "<blogId>/<logNo>" identifier of a
// Naver blog post URL, or the empty string for anything else. Both URL forms
// Naver serves resolve to the same identifier:
//
//	https://blog.naver.com/<blogId>/<logNo>
//	https://blog.naver.com/PostView.naver?blogId=<blogId>&logNo=<logNo>
func ExtractPostID(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	host := strings.ToLower(u.Host)
	if host != "blog.naver.com" && host != "m.blog.naver.com" {
		return ""
	}

	if strings.HasPrefix(u.Path, "/PostView.naver") || strings.HasPrefix(u.Path, "/PostView.nhn") {
		q := u.Query()
		blogID, logNo := q.Get("blogId"), q.Get("logNo")
		if blogID == "" || logNo == "" {
			return ""
		}
		return blogID + "/" + logNo
	}

	if m := blogPathPattern.FindStringSubmatch(u.Path); m != nil {
		return m[1] + "/" + m[2]
	}
	return ""
}
