// Package skillstack converts PowerPoint presentations to PDF documents.
// Each slide becomes one PDF page; slides that cannot be rendered become
// error pages so the page count always matches the slide count.
//
// The root package is a thin facade. The pipeline stages live in the
// pptx, render, pdfpage, and convert subpackages and can be used
// directly when finer control is needed.
package skillstack

import "github.com/411sst/SkillStack/convert"

// Version is the library version.
const Version = "1.0.0"

// ConvertPresentationToPDF converts PPTX bytes to PDF bytes at the
// default 96 DPI. The optional progress callback receives percentages
// from 0 to 100.
func ConvertPresentationToPDF(data []byte, progress func(percent int)) ([]byte, error) {
	return convert.ToPDF(data, convert.Options{Progress: progress})
}
