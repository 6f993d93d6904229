package export

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// ReportCardPNG turns a full-height PNG capture of the results panel into a
// paginated PDF: the image is cut into page-height bands and each band is
// placed full printable width on its own page. The last band may be shorter
// than a page.
func ReportCardPNG(r io.Reader) ([]byte, error) {
	img, err := png.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode capture: %w", err)
	}
	return ReportCard(img)
}

// ReportCard paginates an already-decoded capture.
func ReportCard(img image.Image) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pageW, pageH := pdf.GetPageSize()
	printableW := pageW - 2*pdfMarginLeft
	printableH := pageH - 2*pdfMarginTop

	rects, err := bands(img.Bounds(), printableW, printableH)
	if err != nil {
		return nil, err
	}
	for i, rect := range rects {
		band := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
		draw.Draw(band, band.Bounds(), img, rect.Min, draw.Src)

		var pngBuf bytes.Buffer
		if err := png.Encode(&pngBuf, band); err != nil {
			return nil, fmt.Errorf("encode band %d: %w", i, err)
		}
		name := fmt.Sprintf("report-band-%d", i)
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(name, opts, &pngBuf)

		pdf.AddPage()
		bandH := printableW * float64(rect.Dy()) / float64(rect.Dx())
		pdf.ImageOptions(name, pdfMarginLeft, pdfMarginTop, printableW, bandH, false, opts, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// bands slices the capture into rectangles that each map to one page's
// printable area at full width.
func bands(bounds image.Rectangle, printableW, printableH float64) ([]image.Rectangle, error) {
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, errors.New("empty capture")
	}
	// Pixels per page: printable height scaled by the width fit.
	bandPx := int(float64(w) * printableH / printableW)
	if bandPx < 1 {
		bandPx = 1
	}
	var out []image.Rectangle
	for top := bounds.Min.Y; top < bounds.Max.Y; top += bandPx {
		bottom := top + bandPx
		if bottom > bounds.Max.Y {
			bottom = bounds.Max.Y
		}
		out = append(out, image.Rect(bounds.Min.X, top, bounds.Max.X, bottom))
	}
	return out, nil
}
