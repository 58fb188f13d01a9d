package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind string

const (
	KindInvalidRequest Kind = "invalid_request"
	KindRender         Kind = "render"
	KindEncode         Kind = "encode"
	KindUpstream       Kind = "upstream"
	KindTimeout        Kind = "timeout"
)

// Error is a pipeline error with a kind and optional page context.
// Page is -1 unless the failure concerns a specific page.
type Error struct {
	Kind    Kind
	Message string
	Page    int
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Page >= 0 && e.Err != nil:
		return fmt.Sprintf("[%s] page %d: %s: %v", e.Kind, e.Page, e.Message, e.Err)
	case e.Page >= 0:
		return fmt.Sprintf("[%s] page %d: %s", e.Kind, e.Page, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	default:
		return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates an error of the given kind without page context.
func NewError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Page: -1, Err: err}
}

// InvalidRequest reports bad or missing client input.
func InvalidRequest(message string) *Error {
	return NewError(KindInvalidRequest, message, nil)
}

// RenderError reports a corrupt document or an unrenderable page.
// page is the zero-based page index, or -1 when the document itself failed.
func RenderError(page int, message string, err error) *Error {
	return &Error{Kind: KindRender, Message: message, Page: page, Err: err}
}

// EncodeError reports a JPEG compression or encoding failure for one page.
func EncodeError(page int, message string, err error) *Error {
	return &Error{Kind: KindEncode, Message: message, Page: page, Err: err}
}

// UpstreamError reports a model service failure.
func UpstreamError(message string, err error) *Error {
	return NewError(KindUpstream, message, err)
}

// TimeoutError reports a bounded wait that expired.
func TimeoutError(message string, err error) *Error {
	return NewError(KindTimeout, message, err)
}

// KindOf returns the kind of the first *Error in err's chain, or "" when
// the chain carries no domain error.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
