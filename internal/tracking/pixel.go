package tracking

import (
	"bytes"
	"image"
	"image/png"
)

// pixelPNG is the 1x1 fully-transparent PNG served by the open endpoint.
// Encoded once at startup rather than hand-embedding magic bytes.
var pixelPNG = func() []byte {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic("tracking: encoding pixel: " + err.Error())
	}
	return buf.Bytes()
}()
