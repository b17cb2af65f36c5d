package mailing

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ctaHrefPattern locates the call-to-action link rewritten for click
// tracking. Only the first cta-button anchor is rewritten.
var ctaHrefPattern = regexp.MustCompile(`<a href="([^"]+)" class="cta-button"`)

// Injector rewrites rendered HTML to add the open pixel and the click
// redirect, both pointing at the tracking server.
type Injector struct {
	// BaseURL is the public tracking base, e.g. "https://track.example.com/track".
	BaseURL string
}

// NewInjector creates an Injector for the given public tracking base URL.
func NewInjector(baseURL string) *Injector {
	return &Injector{BaseURL: strings.TrimRight(baseURL, "/")}
}

// InjectTracking adds the tracking pixel before </body> and rewrites the
// CTA link through the click endpoint. HTML without a </body> or without a
// CTA link passes through with whichever element could be placed.
func (in *Injector) InjectTracking(html, trackingID string) string {
	pixel := fmt.Sprintf(
		`<img src="%s/pixel/%s" width="1" height="1" alt="" style="display:none;">`,
		in.BaseURL, trackingID,
	)
	if strings.Contains(html, "</body>") {
		html = strings.Replace(html, "</body>", pixel+"</body>", 1)
	} else {
		html += pixel
	}

	if m := ctaHrefPattern.FindStringSubmatch(html); m != nil {
		original := m[1]
		clickURL := fmt.Sprintf("%s/click/%s?url=%s", in.BaseURL, trackingID, url.QueryEscape(original))
		html = strings.Replace(html, `href="`+original+`"`, `href="`+clickURL+`"`, 1)
	}
	return html
}
