// Package pdfconv shells out to external tools for the PDF ends of the
// pipeline: rasterizing input pages to images and assembling processed
// images back into a PDF.
package pdfconv

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// DefaultAssembleCmd is the image-to-PDF command template. %i expands to
// the space-joined input images and %o to the output path.
const DefaultAssembleCmd = "convert %i %o"

// Rasterize renders every page of a PDF into PNG files under dir at the
// given DPI using pdftoppm, returning the page image paths in page order.
func Rasterize(ctx context.Context, pdfPath, dir string, dpi int) ([]string, error) {
	if dpi <= 0 {
		dpi = 150
	}
	prefix := filepath.Join(dir, "page")
	cmd := exec.CommandContext(ctx, "pdftoppm", "-png", "-r", strconv.Itoa(dpi), pdfPath, prefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm %s: %w: %s", pdfPath, err, strings.TrimSpace(string(out)))
	}

	pages, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no pages for %s", pdfPath)
	}
	// pdftoppm zero-pads page numbers, so lexical order is page order.
	sort.Strings(pages)
	return pages, nil
}

// Assemble combines images into a PDF by expanding %i and %o in the
// command template and running the result. Paths containing spaces are not
// supported by the template expansion.
func Assemble(ctx context.Context, images []string, outPDF, cmdTemplate string) error {
	if len(images) == 0 {
		return fmt.Errorf("no images to assemble")
	}
	parts := expandCommand(cmdTemplate, images, outPDF)
	if len(parts) == 0 {
		return fmt.Errorf("empty pdf command template")
	}
	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", parts[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}

// expandCommand substitutes %i and %o in the template and splits the
// result into argv fields.
func expandCommand(tmpl string, images []string, outPDF string) []string {
	if tmpl == "" {
		tmpl = DefaultAssembleCmd
	}
	expanded := strings.ReplaceAll(tmpl, "%i", strings.Join(images, " "))
	expanded = strings.ReplaceAll(expanded, "%o", outPDF)
	return strings.Fields(expanded)
}
