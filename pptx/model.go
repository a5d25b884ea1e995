package pptx

import (
	"image/color"
	"strings"
)

// GeometryKind is the closed set of non-text shape geometries the
// rasterizer dispatches on. Unknown preset geometries degrade to
// GeometryRect rather than failing the slide.
type GeometryKind int

const (
	GeometryRect GeometryKind = iota
	GeometryEllipse
	GeometryRoundRect
	GeometryLine
)

// Role is the placeholder role of a text shape.
type Role int

const (
	RoleNone Role = iota
	RoleTitle
	RoleSubtitle
	RoleBody
)

// Anchor is the vertical anchoring of text within its shape.
type Anchor int

const (
	AnchorTop Anchor = iota
	AnchorMiddle
	AnchorBottom
)

// Alignment is the horizontal alignment of a paragraph.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

// SlideModel is the structured content of one slide, rebuilt per slide and
// discarded after rasterization. All positions and sizes are device pixels.
type SlideModel struct {
	Background Background
	Shapes     []ShapeModel
	Pictures   []Picture
	TextShapes []TextShape
}

// Background is either a solid color or an image; both unset means the
// white default is applied at rasterization time.
type Background struct {
	Color *color.RGBA
	Image []byte
}

// ShapeModel is a non-text shape with resolved geometry and styling.
type ShapeModel struct {
	X, Y, W, H  float64
	Kind        GeometryKind
	Fill        *color.RGBA
	Stroke      *color.RGBA
	StrokeWidth float64
}

// Picture is an embedded image placement with its resolved bytes.
type Picture struct {
	Data       []byte
	X, Y, W, H float64
}

// TextShape is a shape with a text body.
type TextShape struct {
	X, Y, W, H float64
	Role       Role
	Anchor     Anchor
	Paragraphs []Paragraph
}

// Paragraph groups runs with shared block-level formatting.
type Paragraph struct {
	Alignment   Alignment
	Level       int
	Bullet      bool
	BulletGlyph string
	LineSpacing float64 // multiplier, 1.0 when unset
	SpaceBefore float64 // pixels
	SpaceAfter  float64 // pixels
	Runs        []Run
}

// Run is a span of text with uniform formatting. Size is in pixels.
type Run struct {
	Text      string
	Size      float64
	Bold      bool
	Italic    bool
	Underline bool
	Color     color.RGBA
	Family    string
}

// JoinedText concatenates the paragraph's runs. A single space is inferred
// between adjacent runs only when neither the trailing character of the
// previous run nor the leading character of the next is whitespace or
// terminal punctuation, so words split across runs for formatting reasons
// are neither glued together nor split apart.
func (p *Paragraph) JoinedText() string {
	var sb strings.Builder
	for _, run := range p.Runs {
		if run.Text == "" {
			continue
		}
		if sb.Len() > 0 {
			prev := sb.String()
			last := rune(0)
			for _, r := range prev {
				last = r
			}
			first := []rune(run.Text)[0]
			if !isJoinBoundary(last) && !isJoinBoundary(first) {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(run.Text)
	}
	return sb.String()
}

// isJoinBoundary reports whether a rune already separates words at a run
// boundary: whitespace or terminal punctuation.
func isJoinBoundary(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r':
		return true
	case '.', ',', ';', ':', '!', '?':
		return true
	}
	return false
}

// ParseColor parses a 6-character RRGGBB hex string into an opaque color.
// A leading "#" is stripped. Returns false for anything else.
func ParseColor(hex string) (color.RGBA, bool) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return color.RGBA{}, false
	}
	var vals [3]uint8
	for i := 0; i < 3; i++ {
		hi := hexVal(hex[i*2])
		lo := hexVal(hex[i*2+1])
		if hi < 0 || lo < 0 {
			return color.RGBA{}, false
		}
		vals[i] = uint8(hi<<4 | lo)
	}
	return color.RGBA{R: vals[0], G: vals[1], B: vals[2], A: 255}, true
}

func hexVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	default:
		return -1
	}
}
