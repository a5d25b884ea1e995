// Package pdfpage assembles rendered slide images into a single PDF
// document. Slides become full-bleed image pages; slides that failed to
// render become styled error pages so the output always carries one page
// per input slide.
package pdfpage

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/jung-kurt/gofpdf"
)

// Assembler accumulates pages for one document. Page dimensions are fixed
// at construction from the presentation's canvas size and shared by every
// page, including error pages. Not safe for concurrent use.
type Assembler struct {
	pdf       *gofpdf.Fpdf
	widthPt   float64
	heightPt  float64
	pageCount int
	imageSeq  int
}

// New creates an assembler producing pages of the given pixel dimensions.
// Pixels map one-to-one onto PDF points, which keeps the rendered raster
// unscaled inside the page box.
func New(widthPx, heightPx float64) *Assembler {
	size := gofpdf.SizeType{Wd: widthPx, Ht: heightPx}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    size,
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	return &Assembler{pdf: pdf, widthPt: widthPx, heightPt: heightPx}
}

// SetMetadata records document title and author. Empty values are left
// unset rather than written as empty strings.
func (a *Assembler) SetMetadata(title, author string) {
	if title != "" {
		a.pdf.SetTitle(title, true)
	}
	if author != "" {
		a.pdf.SetAuthor(author, true)
	}
}

// AddSlidePage appends one page showing the rendered slide image scaled
// to fill the page exactly.
func (a *Assembler) AddSlidePage(img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encoding slide image: %w", err)
	}

	a.imageSeq++
	name := fmt.Sprintf("slide-%d", a.imageSeq)
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	a.pdf.RegisterImageOptionsReader(name, opts, &buf)
	if err := a.pdf.Error(); err != nil {
		return fmt.Errorf("registering slide image: %w", err)
	}

	a.pdf.AddPageFormat("P", gofpdf.SizeType{Wd: a.widthPt, Ht: a.heightPt})
	a.pdf.ImageOptions(name, 0, 0, a.widthPt, a.heightPt, false, opts, 0, "")
	if err := a.pdf.Error(); err != nil {
		return fmt.Errorf("placing slide image: %w", err)
	}
	a.pageCount++
	return nil
}

// AddErrorPage appends a placeholder page for a slide that could not be
// rendered. The ordinal is the slide's 1-based position; reason is shown
// beneath the heading so the document records what went wrong in place.
func (a *Assembler) AddErrorPage(ordinal int, reason string) {
	a.pdf.AddPageFormat("P", gofpdf.SizeType{Wd: a.widthPt, Ht: a.heightPt})

	a.pdf.SetFillColor(248, 248, 248)
	a.pdf.Rect(0, 0, a.widthPt, a.heightPt, "F")

	a.pdf.SetTextColor(120, 32, 32)
	a.pdf.SetFont("Helvetica", "B", 24)
	a.pdf.SetXY(a.widthPt*0.1, a.heightPt*0.35)
	a.pdf.CellFormat(a.widthPt*0.8, 30, fmt.Sprintf("Slide %d could not be rendered", ordinal), "", 1, "C", false, 0, "")

	a.pdf.SetTextColor(90, 90, 90)
	a.pdf.SetFont("Helvetica", "", 12)
	a.pdf.SetXY(a.widthPt*0.1, a.heightPt*0.45)
	a.pdf.MultiCell(a.widthPt*0.8, 16, reason, "", "C", false)
	a.pageCount++
}

// PageCount reports the number of pages appended so far.
func (a *Assembler) PageCount() int {
	return a.pageCount
}

// Bytes finalizes the document and returns the serialized PDF.
func (a *Assembler) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := a.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}
	return buf.Bytes(), nil
}
