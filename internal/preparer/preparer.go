// Package preparer converts input documents into the forms the extraction
// backends need: a single-page rasterized image for vision-capable models and
// the original file for layout/OCR engines.
//
// PDFs are rasterized with poppler's pdftoppm. Only the first page is used; a
// deliberate simplification, since the invoices this system handles are
// single-page and the backends that need full-document context receive the
// original file bytes anyway.
package preparer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"invoiceparser/internal/config"
	"invoiceparser/internal/logger"
)

// Document is a prepared input: the original file plus a first-page raster.
type Document struct {
	// SourcePath is the original document path (PDF or image).
	SourcePath string

	// ImagePath points at a single-page JPEG suitable for vision backends.
	// For image inputs this is the source itself; for PDFs it is a temporary
	// file owned by the cleanup function returned from Prepare.
	ImagePath string
}

// IsPDF reports whether the source document is a PDF.
func (d *Document) IsPDF() bool {
	return strings.EqualFold(filepath.Ext(d.SourcePath), ".pdf")
}

// Preparer produces backend-ready document forms.
type Preparer interface {
	// Prepare returns the prepared document and a cleanup function that
	// removes any temporary artifacts. The cleanup function is non-nil even
	// on error and must be called on every exit path.
	Prepare(ctx context.Context, path string) (*Document, func(), error)
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".tiff": true,
	".tif":  true,
	".bmp":  true,
	".webp": true,
}

// PopplerPreparer implements Preparer using pdftoppm.
type PopplerPreparer struct {
	runner Runner
	bin    string
	dpi    int
	log    zerolog.Logger
}

// NewPopplerPreparer creates a preparer from the application configuration.
func NewPopplerPreparer(cfg *config.Config) *PopplerPreparer {
	return NewPopplerPreparerWithRunner(execRunner{}, cfg.PdftoppmBin, cfg.RasterDPI)
}

// NewPopplerPreparerWithRunner creates a preparer with an explicit command
// runner (for testing).
func NewPopplerPreparerWithRunner(runner Runner, bin string, dpi int) *PopplerPreparer {
	if bin == "" {
		bin = "pdftoppm"
	}
	if dpi <= 0 {
		dpi = 200
	}
	return &PopplerPreparer{
		runner: runner,
		bin:    bin,
		dpi:    dpi,
		log:    logger.WithComponent("preparer"),
	}
}

// Prepare rasterizes the first page of a PDF, or passes an image through.
func (p *PopplerPreparer) Prepare(ctx context.Context, path string) (*Document, func(), error) {
	const op = "Prepare"
	noop := func() {}

	if _, err := os.Stat(path); err != nil {
		return nil, noop, WrapConversionError(op, path, ErrFileNotFound)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if imageExtensions[ext] {
		return &Document{SourcePath: path, ImagePath: path}, noop, nil
	}
	if ext != ".pdf" {
		return nil, noop, WrapConversionError(op, path, ErrUnsupportedFormat)
	}

	tmpDir, err := os.MkdirTemp("", "invparse-*")
	if err != nil {
		return nil, noop, WrapConversionError(op, path, err)
	}
	cleanup := func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			p.log.Warn().Err(err).Str("dir", tmpDir).Msg("Failed to remove temp dir")
		}
	}

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -f 1 -l 1 -r <dpi> -jpeg <in.pdf> <tmp/page>
	_, errb, err := p.runner.Run(ctx, p.bin,
		"-f", "1", "-l", "1",
		"-r", fmt.Sprintf("%d", p.dpi),
		"-jpeg", path, prefix)
	if err != nil {
		p.log.Error().
			Err(err).
			Str("path", path).
			Str("stderr", string(errb)).
			Msg("pdftoppm failed")
		return nil, cleanup, WrapConversionError(op, path, err)
	}

	// pdftoppm names output page-1.jpg (or page-01.jpg depending on version)
	matches, _ := filepath.Glob(prefix + "*.jpg")
	sort.Strings(matches)
	if len(matches) == 0 {
		return nil, cleanup, WrapConversionError(op, path, ErrNoPages)
	}

	p.log.Debug().
		Str("path", path).
		Str("image", matches[0]).
		Msg("Rasterized first page")

	return &Document{SourcePath: path, ImagePath: matches[0]}, cleanup, nil
}
