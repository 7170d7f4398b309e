// Package render turns record summaries into scannable images.
package render

import (
	qrcode "github.com/skip2/go-qrcode"
)

// ModulePixels is the edge length of one QR module in the output image.
// go-qrcode always adds a four module quiet zone.
const ModulePixels = 10

// QRCode encodes text as a PNG QR code at the low error-correction level.
func QRCode(text string) ([]byte, error) {
	q, err := qrcode.New(text, qrcode.Low)
	if err != nil {
		return nil, err
	}
	// A negative size asks go-qrcode for a fixed number of pixels per module.
	return q.PNG(-ModulePixels)
}
