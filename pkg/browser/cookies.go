package browser

import (
	"encoding/json"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// ExportCookies serializes every cookie in the browser context to JSON. The
// result is the opaque session blob handed to the session store.
func ExportCookies(b *rod.Browser) ([]byte, error) {
	cookies, err := b.GetCookies()
	if err != nil {
		return nil, fmt.Errorf("failed to read cookies: %w", err)
	}
	blob, err := json.Marshal(cookies)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize cookies: %w", err)
	}
	return blob, nil
}

// ImportCookies restores cookies previously exported with ExportCookies into
// the browser context
func ImportCookies(b *rod.Browser, blob []byte) error {
	var cookies []*proto.NetworkCookie
	if err := json.Unmarshal(blob, &cookies); err != nil {
		return fmt.Errorf("failed to parse session cookies: %w", err)
	}

	params := make([]*proto.NetworkCookieParam, 0, len(cookies))
	for _, c := range cookies {
		params = append(params, &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
			SameSite: c.SameSite,
			Expires:  c.Expires,
		})
	}

	if err := b.SetCookies(params); err != nil {
		return fmt.Errorf("failed to set cookies: %w", err)
	}
	return nil
}
