package mailing

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ignite/outreach-tracker/internal/domain"
)

const testTrackingID = "camp1_lead1_aaaa1111"

func TestInjectTracking_Pixel(t *testing.T) {
	in := NewInjector("https://track.example.com/track/")
	html := `<html><body><p>hi</p></body></html>`

	out := in.InjectTracking(html, testTrackingID)
	assert.Contains(t, out, `<img src="https://track.example.com/track/pixel/`+testTrackingID+`"`)
	assert.True(t, strings.HasSuffix(out, "</body></html>"), "pixel goes before </body>")
	assert.Less(t, strings.Index(out, "<img"), strings.Index(out, "</body>"))
}

func TestInjectTracking_NoBodyTag(t *testing.T) {
	in := NewInjector("https://track.example.com/track")
	out := in.InjectTracking("<p>plain fragment</p>", testTrackingID)
	assert.Contains(t, out, "/pixel/"+testTrackingID)
	assert.True(t, strings.HasPrefix(out, "<p>plain fragment</p>"), "pixel is appended")
}

func TestInjectTracking_CTARewrite(t *testing.T) {
	in := NewInjector("https://track.example.com/track")
	target := "https://calendly.com/outreach/intro"
	html := `<body><a href="` + target + `" class="cta-button">Book</a></body>`

	out := in.InjectTracking(html, testTrackingID)
	want := "https://track.example.com/track/click/" + testTrackingID + "?url=" + url.QueryEscape(target)
	assert.Contains(t, out, `href="`+want+`"`)
	assert.NotContains(t, out, `href="`+target+`"`, "original CTA href must be gone")
}

func TestInjectTracking_OnlyFirstCTA(t *testing.T) {
	in := NewInjector("https://track.example.com/track")
	html := `<body>` +
		`<a href="https://one.test" class="cta-button">One</a>` +
		`<a href="https://two.test" class="cta-button">Two</a>` +
		`</body>`

	out := in.InjectTracking(html, testTrackingID)
	assert.Contains(t, out, "/click/"+testTrackingID)
	assert.Contains(t, out, `href="https://two.test"`, "second CTA stays untouched")
}

func TestInjectTracking_NoCTA(t *testing.T) {
	in := NewInjector("https://track.example.com/track")
	html := `<body><a href="https://plain.test">link</a></body>`

	out := in.InjectTracking(html, testTrackingID)
	assert.Contains(t, out, `href="https://plain.test"`)
	assert.NotContains(t, out, "/click/")
	assert.Contains(t, out, "/pixel/"+testTrackingID, "pixel still injected")
}

func TestInjectTracking_RoundTripWithDefaultBody(t *testing.T) {
	// The built-in body template and the injector must agree on the CTA
	// markup, or campaigns silently lose click tracking.
	r := NewRenderer("", "")
	_, body, err := r.Render(domain.Lead{Company: "Acme", Contact: "Ada Smith"})
	assert.NoError(t, err)

	in := NewInjector("https://track.example.com/track")
	out := in.InjectTracking(body, testTrackingID)
	assert.Contains(t, out, "/click/"+testTrackingID)
	assert.Contains(t, out, "/pixel/"+testTrackingID)
}
