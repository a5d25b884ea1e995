package render

import (
	"sort"
	"strings"

	"github.com/411sst/SkillStack/pptx"
)

// MeasureFunc reports the rendered width of text in the run's font. It is
// supplied by the host rendering surface; layout degrades to a coarse
// estimate when it is nil, panics, or reports a non-positive width.
type MeasureFunc func(text string, run pptx.Run) float64

// Line is one laid-out line of text in absolute canvas coordinates. It is
// produced by LayoutText and consumed immediately by the rasterizer.
type Line struct {
	Text     string
	X        float64
	Baseline float64
	Width    float64
	Run      pptx.Run
	Bullet   string  // drawn once, on the first line of a bullet paragraph
	BulletX  float64
}

// Fixed layout constants in pixels (margins) and ratios (metrics
// approximated from the font size).
const (
	textMarginX      = 8.0
	textMarginY      = 6.0
	lineHeightFactor = 1.2
	ascentFactor     = 0.8
	bulletIndent     = 1.2  // per nesting level, multiplied by font size
	charWidthFactor  = 0.55 // fallback estimate per rune
	fallbackRunSize  = 24.0 // empty-paragraph line height basis
)

// LayoutText wraps and places a text shape's paragraphs. Continuation
// lines of a bullet paragraph indent to align under the text rather than
// the bullet; the vertical block position honors the shape's anchor with
// the computed offset clamped to be non-negative.
func LayoutText(shape *pptx.TextShape, measure MeasureFunc) []Line {
	type paraLayout struct {
		para  *pptx.Paragraph
		run   pptx.Run
		texts []string
	}

	layouts := make([]paraLayout, 0, len(shape.Paragraphs))
	totalHeight := 0.0
	for i := range shape.Paragraphs {
		para := &shape.Paragraphs[i]
		run := dominantRun(para)
		indent := paragraphIndent(para, run.Size)
		avail := shape.W - 2*textMarginX - indent
		if avail < 1 {
			avail = 1
		}
		texts := wrapWords(para.JoinedText(), run, avail, measure)
		layouts = append(layouts, paraLayout{para: para, run: run, texts: texts})

		spacing := para.LineSpacing
		if spacing <= 0 {
			spacing = 1
		}
		totalHeight += para.SpaceBefore + para.SpaceAfter
		totalHeight += float64(len(texts)) * run.Size * lineHeightFactor * spacing
	}

	offset := anchorOffset(shape.Anchor, shape.H, totalHeight)

	var lines []Line
	y := shape.Y + offset
	for _, pl := range layouts {
		spacing := pl.para.LineSpacing
		if spacing <= 0 {
			spacing = 1
		}
		lineHeight := pl.run.Size * lineHeightFactor * spacing
		indent := paragraphIndent(pl.para, pl.run.Size)

		y += pl.para.SpaceBefore
		for li, text := range pl.texts {
			baseline := y + pl.run.Size*ascentFactor
			y += lineHeight
			if text == "" && len(pl.texts) == 1 {
				continue // blank paragraph: vertical space only
			}

			width := measureLine(text, pl.run, measure)
			avail := shape.W - 2*textMarginX - indent
			x := shape.X + textMarginX + indent
			switch pl.para.Alignment {
			case pptx.AlignCenter:
				x += (avail - width) / 2
			case pptx.AlignRight:
				x += avail - width
			}
			if x < shape.X {
				x = shape.X
			}

			line := Line{
				Text:     text,
				X:        x,
				Baseline: baseline,
				Width:    width,
				Run:      pl.run,
			}
			if pl.para.Bullet && li == 0 {
				line.Bullet = pl.para.BulletGlyph
				bx := x - pl.run.Size*0.9
				if bx < shape.X {
					bx = shape.X
				}
				line.BulletX = bx
			}
			lines = append(lines, line)
		}
		y += pl.para.SpaceAfter
	}
	return lines
}

// anchorOffset places the text block inside the shape. The offset is
// measured from the shape's top edge and never goes negative, so an
// overflowing bottom- or middle-anchored block starts at the top instead
// of above the shape.
func anchorOffset(anchor pptx.Anchor, shapeHeight, totalHeight float64) float64 {
	var offset float64
	switch anchor {
	case pptx.AnchorMiddle:
		offset = (shapeHeight - totalHeight) / 2
	case pptx.AnchorBottom:
		offset = shapeHeight - totalHeight
	default:
		offset = textMarginY
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}

// paragraphIndent is the bullet-indent allowance, proportional to font
// size and nesting level.
func paragraphIndent(para *pptx.Paragraph, fontSize float64) float64 {
	if !para.Bullet && para.Level == 0 {
		return 0
	}
	return fontSize * bulletIndent * float64(para.Level+1)
}

// dominantRun picks the formatting a paragraph's lines are rendered with.
func dominantRun(para *pptx.Paragraph) pptx.Run {
	if len(para.Runs) > 0 {
		return para.Runs[0]
	}
	return pptx.Run{Size: fallbackRunSize}
}

// wrapWords greedily packs words into lines no wider than avail. A single
// word wider than the available width still gets its own line; no word is
// ever dropped.
func wrapWords(text string, run pptx.Run, avail float64, measure MeasureFunc) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := ""
	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if current == "" || measureLine(candidate, run, measure) <= avail {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// measureLine measures text with the host primitive, falling back to a
// character-count estimate when the primitive is unavailable or fails.
func measureLine(text string, run pptx.Run, measure MeasureFunc) (width float64) {
	if text == "" {
		return 0
	}
	if measure != nil {
		func() {
			defer func() {
				if recover() != nil {
					width = 0
				}
			}()
			width = measure(text, run)
		}()
		if width > 0 {
			return width
		}
	}
	size := run.Size
	if size <= 0 {
		size = fallbackRunSize
	}
	return float64(len([]rune(text))) * size * charWidthFactor
}

// OrderTextShapes returns text shapes in render order: titles first, then
// everything else in document order. The sort is stable so same-role
// shapes keep their source order.
func OrderTextShapes(shapes []pptx.TextShape) []pptx.TextShape {
	ordered := make([]pptx.TextShape, len(shapes))
	copy(ordered, shapes)
	sort.SliceStable(ordered, func(i, j int) bool {
		return roleRank(ordered[i].Role) < roleRank(ordered[j].Role)
	})
	return ordered
}

func roleRank(role pptx.Role) int {
	if role == pptx.RoleTitle {
		return 0
	}
	return 1
}
