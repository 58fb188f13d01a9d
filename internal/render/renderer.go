// Package render converts PDF pages into raster images using the MuPDF
// bindings from go-fitz.
package render

import (
	"context"
	"errors"
	"image"
	"time"

	"github.com/gen2brain/go-fitz"
	"golang.org/x/sync/errgroup"

	"github.com/docsight/docsight/internal/domain"
)

// DefaultDPI is the rendering resolution used when none is configured.
const DefaultDPI = 150

// Renderer rasterizes every page of a PDF document concurrently.
type Renderer struct {
	dpi     int
	workers int
	timeout time.Duration
}

// NewRenderer creates a renderer. dpi must be positive (DefaultDPI when <= 0).
// workers bounds the fan-out; <= 0 means one worker per page. timeout bounds
// a whole-document render; 0 disables the bound.
func NewRenderer(dpi, workers int, timeout time.Duration) *Renderer {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &Renderer{dpi: dpi, workers: workers, timeout: timeout}
}

// RenderFile rasterizes all pages of the PDF at path and returns the images
// index-aligned to page order: images[i] is page i. One render task is
// dispatched per page and the call blocks until every task has joined. If any
// page fails, the whole operation fails and partial results are discarded.
// A document with zero pages returns an empty slice.
func (r *Renderer) RenderFile(ctx context.Context, path string) ([]domain.PageImage, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	pageCount, err := r.pageCount(path)
	if err != nil {
		return nil, err
	}
	if pageCount == 0 {
		return []domain.PageImage{}, nil
	}

	images := make([]domain.PageImage, pageCount)
	g, gctx := errgroup.WithContext(ctx)
	if r.workers > 0 {
		g.SetLimit(r.workers)
	}
	for i := 0; i < pageCount; i++ {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			img, err := renderPage(path, i, r.dpi)
			if err != nil {
				return err
			}
			images[i] = domain.PageImage{Index: i, Image: img}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, domain.TimeoutError("page rendering did not complete in time", err)
		}
		return nil, err
	}
	return images, nil
}

// pageCount opens the document once to fix the page count for the fan-out.
func (r *Renderer) pageCount(path string) (int, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return 0, domain.RenderError(-1, "failed to open PDF", err)
	}
	defer doc.Close()
	return doc.NumPage(), nil
}

// renderPage rasterizes a single page at the given DPI. MuPDF document
// handles are not safe for concurrent use, so each task opens its own handle
// on the shared read-only file.
func renderPage(path string, page, dpi int) (image.Image, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, domain.RenderError(page, "failed to open PDF", err)
	}
	defer doc.Close()
	img, err := doc.ImageDPI(page, float64(dpi))
	if err != nil {
		return nil, domain.RenderError(page, "failed to rasterize page", err)
	}
	return img, nil
}
