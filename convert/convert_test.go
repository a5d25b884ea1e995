package convert

import (
	"archive/zip"
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"
)

const deckPresentationXML = `<?xml version="1.0" encoding="UTF-8"?>
<p:presentation xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
  <p:sldSz cx="9144000" cy="5143500"/>
</p:presentation>`

func titleSlideXML(title string) string {
	return fmt.Sprintf(`<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"
  xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">
  <p:cSld><p:spTree>
    <p:sp>
      <p:nvSpPr><p:nvPr><p:ph type="title"/></p:nvPr></p:nvSpPr>
      <p:spPr><a:xfrm><a:off x="457200" y="457200"/><a:ext cx="8229600" cy="914400"/></a:xfrm></p:spPr>
      <p:txBody><a:bodyPr anchor="ctr"/><a:p><a:r><a:t>%s</a:t></a:r></a:p></p:txBody>
    </p:sp>
  </p:spTree></p:cSld>
</p:sld>`, title)
}

const shapeSlideXML = `<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"
  xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">
  <p:cSld>
    <p:bg><p:bgPr><a:solidFill><a:srgbClr val="EEF2F7"/></a:solidFill></p:bgPr></p:bg>
    <p:spTree>
      <p:sp>
        <p:nvSpPr><p:nvPr/></p:nvSpPr>
        <p:spPr>
          <a:xfrm><a:off x="914400" y="914400"/><a:ext cx="1828800" cy="1828800"/></a:xfrm>
          <a:prstGeom prst="ellipse"/>
          <a:solidFill><a:srgbClr val="3366CC"/></a:solidFill>
        </p:spPr>
      </p:sp>
    </p:spTree>
  </p:cSld>
</p:sld>`

const bulletSlideXML = `<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"
  xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">
  <p:cSld><p:spTree>
    <p:sp>
      <p:nvSpPr><p:nvPr><p:ph type="body"/></p:nvPr></p:nvSpPr>
      <p:spPr><a:xfrm><a:off x="457200" y="457200"/><a:ext cx="8229600" cy="3657600"/></a:xfrm></p:spPr>
      <p:txBody><a:bodyPr/>
        <a:p><a:pPr><a:buChar char="-"/></a:pPr><a:r><a:t>First takeaway</a:t></a:r></a:p>
        <a:p><a:pPr><a:buChar char="-"/></a:pPr><a:r><a:t>Second takeaway</a:t></a:r></a:p>
      </p:txBody>
    </p:sp>
  </p:spTree></p:cSld>
</p:sld>`

func buildDeck(t *testing.T, slides ...string) []byte {
	t.Helper()
	files := map[string]string{
		"ppt/presentation.xml": deckPresentationXML,
	}
	for i, slide := range slides {
		files[fmt.Sprintf("ppt/slides/slide%d.xml", i+1)] = slide
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("creating %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing deck: %v", err)
	}
	return buf.Bytes()
}

func countPages(pdf []byte) int {
	return bytes.Count(pdf, []byte("/Type /Page")) - bytes.Count(pdf, []byte("/Type /Pages"))
}

// inflatedStreams decompresses the PDF's zlib content streams so drawn
// text can be searched for. Non-zlib streams (image data) are skipped.
func inflatedStreams(t *testing.T, pdf []byte) string {
	t.Helper()
	var out bytes.Buffer
	rest := pdf
	for {
		i := bytes.Index(rest, []byte("stream\n"))
		if i < 0 {
			break
		}
		rest = rest[i+len("stream\n"):]
		j := bytes.Index(rest, []byte("endstream"))
		if j < 0 {
			break
		}
		raw := bytes.TrimSuffix(rest[:j], []byte("\n"))
		rest = rest[j+len("endstream"):]
		zr, err := zlib.NewReader(bytes.NewReader(raw))
		if err != nil {
			continue
		}
		io.Copy(&out, zr)
		zr.Close()
	}
	return out.String()
}

func TestConvertThreeSlideDeck(t *testing.T) {
	deck := buildDeck(t, titleSlideXML("Welcome"), bulletSlideXML, shapeSlideXML)
	pdf, err := ToPDF(deck, Options{})
	if err != nil {
		t.Fatalf("ToPDF: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		t.Fatal("output is not a PDF")
	}
	if got := countPages(pdf); got != 3 {
		t.Fatalf("got %d pages, want 3", got)
	}
}

func TestPageCountMatchesSlideCount(t *testing.T) {
	var slides []string
	for i := 0; i < 5; i++ {
		slides = append(slides, titleSlideXML(fmt.Sprintf("Slide %d", i+1)))
	}
	deck := buildDeck(t, slides...)

	pdf, err := ToPDF(deck, Options{})
	if err != nil {
		t.Fatalf("ToPDF: %v", err)
	}
	if got := countPages(pdf); got != 5 {
		t.Fatalf("got %d pages, want 5", got)
	}
}

func TestBrokenSlideGetsErrorPage(t *testing.T) {
	deck := buildDeck(t,
		titleSlideXML("Good first"),
		"<p:sld><this is not valid xml",
		titleSlideXML("Good last"),
	)

	pdf, err := ToPDF(deck, Options{})
	if err != nil {
		t.Fatalf("a broken slide must not fail the conversion: %v", err)
	}
	if got := countPages(pdf); got != 3 {
		t.Fatalf("got %d pages, want 3 including the error page", got)
	}

	// The substitute page names the failed slide, not just any page.
	text := inflatedStreams(t, pdf)
	if !strings.Contains(text, "Slide 2 could not be rendered") {
		t.Error("error page does not identify the failed slide")
	}
}

func TestMalformedPackage(t *testing.T) {
	_, err := ToPDF([]byte("definitely not a zip archive"), Options{})
	if !errors.Is(err, ErrMalformedPackage) {
		t.Fatalf("got %v, want ErrMalformedPackage", err)
	}
}

func TestNoSlides(t *testing.T) {
	deck := buildDeck(t) // presentation part only
	_, err := ToPDF(deck, Options{})
	if !errors.Is(err, ErrNoSlides) {
		t.Fatalf("got %v, want ErrNoSlides", err)
	}
}

func TestProgressReporting(t *testing.T) {
	deck := buildDeck(t, titleSlideXML("One"), titleSlideXML("Two"), bulletSlideXML)

	var seen []int
	_, err := ToPDF(deck, Options{
		Progress: func(pct int) { seen = append(seen, pct) },
	})
	if err != nil {
		t.Fatalf("ToPDF: %v", err)
	}

	if len(seen) == 0 {
		t.Fatal("no progress reported")
	}
	if seen[0] != 0 {
		t.Errorf("first report = %d, want 0", seen[0])
	}
	if seen[len(seen)-1] != 100 {
		t.Errorf("last report = %d, want 100", seen[len(seen)-1])
	}
	for i := 1; i < len(seen); i++ {
		if seen[i] <= seen[i-1] {
			t.Errorf("progress not increasing: %v", seen)
			break
		}
	}
}

func TestSlowProgressObserverDoesNotStallConversion(t *testing.T) {
	const slides = 40
	const callbackDelay = 50 * time.Millisecond

	var deckSlides []string
	for i := 0; i < slides; i++ {
		deckSlides = append(deckSlides, titleSlideXML(fmt.Sprintf("Slide %d", i+1)))
	}
	deck := buildDeck(t, deckSlides...)

	var seen []int
	start := time.Now()
	_, err := ToPDF(deck, Options{
		DPI: 24, // tiny canvas keeps the raster work out of the timing
		Progress: func(pct int) {
			seen = append(seen, pct)
			time.Sleep(callbackDelay)
		},
	})
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("ToPDF: %v", err)
	}

	// A queueing reporter would pay the delay for every distinct
	// percentage; coalescing pays it for at most a handful of
	// deliveries regardless of slide count.
	if limit := time.Duration(slides) * callbackDelay; elapsed >= limit {
		t.Errorf("conversion took %v, stalled behind the observer (limit %v)", elapsed, limit)
	}
	if len(seen) == 0 || seen[0] != 0 {
		t.Errorf("initial 0 not delivered: %v", seen)
	}
	if seen[len(seen)-1] != 100 {
		t.Errorf("terminal 100 not delivered: %v", seen)
	}
	for i := 1; i < len(seen); i++ {
		if seen[i] <= seen[i-1] {
			t.Errorf("progress not increasing: %v", seen)
			break
		}
	}
}

func TestPanickingProgressCallback(t *testing.T) {
	deck := buildDeck(t, titleSlideXML("Only"))
	pdf, err := ToPDF(deck, Options{
		Progress: func(int) { panic("consumer bug") },
	})
	if err != nil {
		t.Fatalf("callback panic must not abort conversion: %v", err)
	}
	if got := countPages(pdf); got != 1 {
		t.Fatalf("got %d pages, want 1", got)
	}
}

func TestDocumentMetadataFromCoreProperties(t *testing.T) {
	files := map[string]string{
		"ppt/presentation.xml":  deckPresentationXML,
		"ppt/slides/slide1.xml": titleSlideXML("Metadata"),
		"docProps/core.xml": `<cp:coreProperties
  xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
  xmlns:dc="http://purl.org/dc/elements/1.1/">
  <dc:title>Board Deck</dc:title>
  <dc:creator>Finance Team</dc:creator>
</cp:coreProperties>`,
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("creating %s: %v", name, err)
		}
		w.Write([]byte(body))
	}
	zw.Close()

	pdf, err := ToPDF(buf.Bytes(), Options{})
	if err != nil {
		t.Fatalf("ToPDF: %v", err)
	}
	if !bytes.Contains(pdf, utf16be("Board Deck")) {
		t.Error("title not carried into document metadata")
	}
}

func utf16be(s string) []byte {
	out := []byte{0xFE, 0xFF}
	for _, r := range s {
		out = append(out, byte(r>>8), byte(r))
	}
	return out
}
