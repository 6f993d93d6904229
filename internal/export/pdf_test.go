package export

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"
)

func TestPDFProducesDocument(t *testing.T) {
	txt, err := Text(ModeAnswerKey, sampleQuiz(), nil)
	if err != nil {
		t.Fatal(err)
	}
	out, err := PDF(txt)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("output does not start with %%PDF: %q", out[:8])
	}
}

func TestPDFLongTextPaginates(t *testing.T) {
	// Far more lines than fit one A4 page at the fixed line height.
	long := strings.Repeat("line of quiz text\n", 200)
	short, err := PDF("one line\n")
	if err != nil {
		t.Fatal(err)
	}
	multi, err := PDF(long)
	if err != nil {
		t.Fatal(err)
	}
	if len(multi) <= len(short) {
		t.Fatal("long text did not grow the document")
	}
	if pages := bytes.Count(multi, []byte("/Type /Page")); pages < 3 {
		t.Fatalf("expected multiple pages, found %d markers", pages)
	}
}

func TestWrapLineKeepsIndentAndWords(t *testing.T) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", pdfFontSize)

	line := "   A. " + strings.Repeat("option ", 60)
	segs := wrapLine(pdf, line, 50)
	if len(segs) < 2 {
		t.Fatalf("long line not wrapped: %d segments", len(segs))
	}
	if !strings.HasPrefix(segs[0], "   A.") {
		t.Fatalf("indent lost: %q", segs[0])
	}
	var words int
	for _, s := range segs {
		words += len(strings.Fields(s))
	}
	if want := len(strings.Fields(line)); words != want {
		t.Fatalf("wrapped word count %d, want %d", words, want)
	}
}

func TestWrapLineEmpty(t *testing.T) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", pdfFontSize)
	if segs := wrapLine(pdf, "", 50); len(segs) != 1 || segs[0] != "" {
		t.Fatalf("empty line mishandled: %#v", segs)
	}
}

func tallCapture(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestReportCardSlicesBands(t *testing.T) {
	out, err := ReportCardPNG(bytes.NewReader(tallCapture(t, 200, 2000)))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatal("report card is not a PDF")
	}
	if pages := bytes.Count(out, []byte("/Type /Page")); pages < 3 {
		t.Fatalf("tall capture should span multiple pages, found %d markers", pages)
	}
}

func TestBandsLastBandShorter(t *testing.T) {
	printableW, printableH := 180.0, 267.0
	// bandPx = 100 * 267/180 = 148 px; 350 px -> 148, 148, 54.
	rects, err := bands(image.Rect(0, 0, 100, 350), printableW, printableH)
	if err != nil {
		t.Fatal(err)
	}
	if len(rects) != 3 {
		t.Fatalf("got %d bands, want 3", len(rects))
	}
	full := rects[0].Dy()
	if rects[1].Dy() != full {
		t.Fatalf("middle band height %d != %d", rects[1].Dy(), full)
	}
	if last := rects[2].Dy(); last >= full {
		t.Fatalf("last band should be shorter: %d vs %d", last, full)
	}
	if rects[2].Max.Y != 350 {
		t.Fatalf("bands do not cover the capture: end %d", rects[2].Max.Y)
	}
}

func TestReportCardRejectsGarbage(t *testing.T) {
	if _, err := ReportCardPNG(strings.NewReader("not a png")); err == nil {
		t.Fatal("garbage capture accepted")
	}
}

func TestArtifactsFullSet(t *testing.T) {
	d := sampleQuiz()
	answers := [][]int{{0}, {0, 1}}
	rc := []byte("%PDF-1.4 fake")
	arts, err := Artifacts(d, answers, rc)
	if err != nil {
		t.Fatal(err)
	}
	if len(arts) != 7 {
		t.Fatalf("got %d artifacts, want 7", len(arts))
	}
	seen := map[string]bool{}
	for _, a := range arts {
		seen[a.FileType] = true
		if len(a.Data) == 0 {
			t.Fatalf("artifact %s is empty", a.FileType)
		}
	}
	for _, want := range []string{
		"questions.txt", "questions.pdf",
		"with-attempts.txt", "with-attempts.pdf",
		"answer-key.txt", "answer-key.pdf",
		ReportCardFileType,
	} {
		if !seen[want] {
			t.Fatalf("missing artifact %s", want)
		}
	}

	// Without a capture the report card is simply absent.
	arts, err = Artifacts(d, answers, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(arts) != 6 {
		t.Fatalf("got %d artifacts without capture, want 6", len(arts))
	}
}
