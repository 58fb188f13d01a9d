// Package encode serializes raster images into transport-ready payloads.
package encode

import (
	"bytes"
	"encoding/base64"
	"image/jpeg"

	"github.com/docsight/docsight/internal/domain"
)

// DefaultQuality is the JPEG quality used when none is configured.
const DefaultQuality = 85

const jpegMediaType = "image/jpeg"

// Encoder compresses page images to JPEG and base64-encodes them.
type Encoder struct {
	quality int
}

// NewEncoder creates an encoder with the given JPEG quality.
// Values outside [1,100] fall back to DefaultQuality.
func NewEncoder(quality int) *Encoder {
	if quality < 1 || quality > 100 {
		quality = DefaultQuality
	}
	return &Encoder{quality: quality}
}

// EncodeBatch converts page images into payloads, index-aligned to the input:
// payloads[i] encodes pages[i]. A failure on any page aborts the whole batch
// with the offending page index; no partial batches are produced.
func (e *Encoder) EncodeBatch(pages []domain.PageImage) ([]domain.ImagePayload, error) {
	payloads := make([]domain.ImagePayload, 0, len(pages))
	for _, page := range pages {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, page.Image, &jpeg.Options{Quality: e.quality}); err != nil {
			return nil, domain.EncodeError(page.Index, "failed to compress page image", err)
		}
		payloads = append(payloads, domain.ImagePayload{
			MediaType: jpegMediaType,
			Data:      base64.StdEncoding.EncodeToString(buf.Bytes()),
		})
	}
	return payloads, nil
}
