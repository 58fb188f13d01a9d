// Package domain defines the request-scoped types and error taxonomy shared
// by the Docsight pipeline. Nothing here persists across requests.
package domain

import "image"

// PageImage is the decoded raster of exactly one document page.
// Index is the zero-based page index the image was rendered from.
type PageImage struct {
	Index int
	Image image.Image
}

// ImagePayload is a transport-ready encoding of one page image: the JPEG
// bytes of the raster, base64-encoded, tagged with a MIME type. Immutable
// once produced.
type ImagePayload struct {
	MediaType string
	Data      string
}

// DataURI returns the payload as an inline data URI suitable for embedding
// in a chat message.
func (p ImagePayload) DataURI() string {
	return "data:" + p.MediaType + ";base64," + p.Data
}

// AskResponse is the success body of POST /ask.
type AskResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// UploadResponse is the success body of POST /upload-and-analyze.
type UploadResponse struct {
	Message  string `json:"message"`
	Insights string `json:"insights"`
}

// ErrorResponse is the body returned for internal failures. Error and
// Message are fixed strings; ErrorID correlates the response with the
// server-side log line that carries the real error.
type ErrorResponse struct {
	Error   string `json:"error"`
	ErrorID string `json:"error_id"`
	Message string `json:"message"`
}
