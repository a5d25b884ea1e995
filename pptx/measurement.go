package pptx

import "encoding/xml"

// EMU (English Metric Units) conversion helpers.
// 1 inch = 914400 EMU, 1 point = 12700 EMU.

const (
	emuPerInch  = 914400
	emuPerPoint = 12700
)

// DefaultDPI is the device resolution assumed when none is configured.
const DefaultDPI = 96

// EMUToPixels converts an EMU length to device pixels at the given DPI.
func EMUToPixels(emu int64, dpi float64) float64 {
	return float64(emu) / emuPerInch * dpi
}

// EMUToPoints converts an EMU length to typographic points.
func EMUToPoints(emu int64) float64 {
	return float64(emu) / emuPerPoint
}

// PointsToPixels converts typographic points to device pixels.
func PointsToPixels(pt, dpi float64) float64 {
	return pt * dpi / 72
}

// Size is a canvas extent in device pixels.
type Size struct {
	Width  float64
	Height float64
}

// Default canvas when the presentation declares no slide size:
// 16:9 at 96 DPI.
const (
	defaultCanvasWidth  = 960
	defaultCanvasHeight = 540
)

type presentationXML struct {
	XMLName xml.Name    `xml:"presentation"`
	SldSz   *slideSzXML `xml:"sldSz"`
}

type slideSzXML struct {
	Cx int64 `xml:"cx,attr"`
	Cy int64 `xml:"cy,attr"`
}

// CanvasSize returns the presentation's shared slide canvas in pixels,
// read from the presentation-level size declaration. The value is computed
// once per conversion and passed to every slide.
func CanvasSize(c *Container, dpi float64) Size {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	data, err := c.ReadBinary(presentationPart)
	if err != nil {
		return Size{Width: defaultCanvasWidth, Height: defaultCanvasHeight}
	}
	var pres presentationXML
	if err := xml.Unmarshal(data, &pres); err != nil || pres.SldSz == nil ||
		pres.SldSz.Cx <= 0 || pres.SldSz.Cy <= 0 {
		return Size{Width: defaultCanvasWidth, Height: defaultCanvasHeight}
	}
	return Size{
		Width:  EMUToPixels(pres.SldSz.Cx, dpi),
		Height: EMUToPixels(pres.SldSz.Cy, dpi),
	}
}
