package export

import (
	"bytes"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Page geometry, in millimeters on A4. Top/left margins and line height are
// fixed; a line that would cross the bottom margin starts a new page.
const (
	pdfMarginTop  = 15.0
	pdfMarginLeft = 15.0
	pdfLineHeight = 7.0
	pdfFontSize   = 11.0
)

// PDF lays a text artifact out as a paginated document: each input line is
// word-wrapped to the printable width, flowing top-down with a page break
// before overflow. No other layout is performed.
func PDF(text string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetFont("Helvetica", "", pdfFontSize)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()
	printableW := pageW - 2*pdfMarginLeft
	bottom := pageH - pdfMarginTop

	y := pdfMarginTop
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		for _, seg := range wrapLine(pdf, line, printableW) {
			if y+pdfLineHeight > bottom {
				pdf.AddPage()
				y = pdfMarginTop
			}
			pdf.SetXY(pdfMarginLeft, y)
			pdf.CellFormat(printableW, pdfLineHeight, tr(seg), "", 0, "L", false, 0, "")
			y += pdfLineHeight
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// wrapLine breaks one logical line into printable segments no wider than
// width. The line's leading indentation is kept on the first segment;
// continuation segments start at the margin.
func wrapLine(pdf *gofpdf.Fpdf, line string, width float64) []string {
	if strings.TrimSpace(line) == "" {
		return []string{""}
	}
	indent := line[:len(line)-len(strings.TrimLeft(line, " "))]
	words := strings.Fields(line)

	var segs []string
	cur := indent
	for _, w := range words {
		candidate := cur + w
		if cur != indent && cur != "" {
			candidate = cur + " " + w
		}
		if pdf.GetStringWidth(candidate) <= width || cur == indent {
			cur = candidate
			continue
		}
		segs = append(segs, cur)
		cur = w
	}
	return append(segs, cur)
}
