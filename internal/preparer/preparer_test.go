package preparer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// stubRunner lets tests control the rasterizer's observable behavior.
type stubRunner struct {
	run func(ctx context.Context, name string, args ...string) ([]byte, []byte, error)
}

func (s stubRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	return s.run(ctx, name, args...)
}

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("content"), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

func TestPrepareImagePassThrough(t *testing.T) {
	dir := t.TempDir()
	img := writeFile(t, dir, "scan.jpg")

	p := NewPopplerPreparerWithRunner(stubRunner{run: func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
		t.Fatal("rasterizer must not run for image inputs")
		return nil, nil, nil
	}}, "", 0)

	doc, cleanup, err := p.Prepare(context.Background(), img)
	defer cleanup()
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if doc.ImagePath != img || doc.SourcePath != img {
		t.Errorf("expected pass-through paths, got %+v", doc)
	}
	if doc.IsPDF() {
		t.Error("jpg input reported as PDF")
	}
}

func TestPrepareMissingFile(t *testing.T) {
	p := NewPopplerPreparerWithRunner(stubRunner{}, "", 0)

	_, cleanup, err := p.Prepare(context.Background(), filepath.Join(t.TempDir(), "absent.pdf"))
	defer cleanup()
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
}

func TestPrepareUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt")

	p := NewPopplerPreparerWithRunner(stubRunner{}, "", 0)

	_, cleanup, err := p.Prepare(context.Background(), path)
	defer cleanup()
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestPrepareNoPages(t *testing.T) {
	dir := t.TempDir()
	pdf := writeFile(t, dir, "empty.pdf")

	// Rasterizer exits cleanly but produces no output files.
	p := NewPopplerPreparerWithRunner(stubRunner{run: func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
		return nil, nil, nil
	}}, "", 0)

	_, cleanup, err := p.Prepare(context.Background(), pdf)
	defer cleanup()
	if !errors.Is(err, ErrNoPages) {
		t.Fatalf("expected ErrNoPages, got %v", err)
	}
	var convErr *ConversionError
	if !errors.As(err, &convErr) {
		t.Fatalf("expected ConversionError, got %T", err)
	}
}

func TestPrepareRasterizesFirstPage(t *testing.T) {
	dir := t.TempDir()
	pdf := writeFile(t, dir, "invoice.pdf")

	p := NewPopplerPreparerWithRunner(stubRunner{run: func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
		prefix := args[len(args)-1]
		if err := os.WriteFile(prefix+"-1.jpg", []byte("jpeg"), 0o644); err != nil {
			return nil, nil, err
		}
		return nil, nil, nil
	}}, "", 0)

	doc, cleanup, err := p.Prepare(context.Background(), pdf)
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if !strings.HasSuffix(doc.ImagePath, "-1.jpg") {
		t.Errorf("expected rasterized page path, got %s", doc.ImagePath)
	}
	if doc.SourcePath != pdf {
		t.Errorf("expected source path %s, got %s", pdf, doc.SourcePath)
	}
	if !doc.IsPDF() {
		t.Error("pdf input not reported as PDF")
	}

	cleanup()
	if _, err := os.Stat(doc.ImagePath); !os.IsNotExist(err) {
		t.Error("cleanup did not remove the temporary raster")
	}
}

func TestPrepareRasterizerFailure(t *testing.T) {
	dir := t.TempDir()
	pdf := writeFile(t, dir, "broken.pdf")

	wantErr := errors.New("exit status 1")
	p := NewPopplerPreparerWithRunner(stubRunner{run: func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
		return nil, []byte("Syntax Error: couldn't read xref table"), wantErr
	}}, "", 0)

	_, cleanup, err := p.Prepare(context.Background(), pdf)
	defer cleanup()
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected rasterizer error to be wrapped, got %v", err)
	}
}
