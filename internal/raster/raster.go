// Package raster renders PDF pages to PNG images for the vision strategy.
package raster

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// DefaultDPI balances legibility against request payload size.
const DefaultDPI = 150

// Renderer rasterizes document pages via pdftoppm (poppler-utils).
// pdfcpu provides the page count; its image extraction is not used because
// it extracts embedded image objects, whose numbering may not match page
// order, instead of rendering pages.
type Renderer struct {
	dpi int
}

// NewRenderer creates a page renderer. dpi <= 0 uses DefaultDPI.
func NewRenderer(dpi int) *Renderer {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &Renderer{dpi: dpi}
}

// PageCount returns the number of pages in the PDF.
func PageCount(pdfPath string) (int, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	count, err := api.PageCount(f, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get page count: %w", err)
	}
	return count, nil
}

// RenderPages renders every page of the PDF to a PNG, in page order.
func (r *Renderer) RenderPages(ctx context.Context, pdfPath string) ([][]byte, error) {
	count, err := PageCount(pdfPath)
	if err != nil {
		return nil, err
	}

	images := make([][]byte, 0, count)
	for page := 1; page <= count; page++ {
		img, err := r.renderPage(ctx, pdfPath, page)
		if err != nil {
			return nil, fmt.Errorf("failed to render page %d: %w", page, err)
		}
		images = append(images, img)
	}
	return images, nil
}

func (r *Renderer) renderPage(ctx context.Context, pdfPath string, page int) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "doctriage-page-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	outputPrefix := filepath.Join(tmpDir, "page")

	pageStr := fmt.Sprintf("%d", page)
	cmd := exec.CommandContext(ctx, "pdftoppm",
		"-png",
		"-f", pageStr,
		"-l", pageStr,
		"-r", fmt.Sprintf("%d", r.dpi),
		"-singlefile",
		pdfPath,
		outputPrefix,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w (output: %s)", err, string(output))
	}

	data, err := os.ReadFile(outputPrefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("pdftoppm did not create expected output: %w", err)
	}
	return data, nil
}
