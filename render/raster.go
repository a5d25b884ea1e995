package render

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/411sst/SkillStack/pptx"
)

var (
	white         = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	black         = color.RGBA{A: 255}
	defaultStroke = 1.0
)

// Rasterize draws one slide onto a fresh RGBA canvas. Element order is
// fixed: background, non-text shapes, pictures, then text, so text is
// never painted over by fills.
func Rasterize(slide *pptx.SlideModel, canvas pptx.Size, fonts *FontCache) *image.RGBA {
	w := int(math.Round(canvas.Width))
	h := int(math.Round(canvas.Height))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))

	drawBackground(img, slide.Background)
	for i := range slide.Shapes {
		drawShape(img, &slide.Shapes[i])
	}
	for i := range slide.Pictures {
		pic := &slide.Pictures[i]
		drawImageBytes(img, pic.Data, pic.X, pic.Y, pic.W, pic.H)
	}

	measure := Measurer(fonts)
	for _, shape := range OrderTextShapes(slide.TextShapes) {
		for _, line := range LayoutText(&shape, measure) {
			drawLine(img, fonts, line)
		}
	}
	return img
}

// Measurer builds a text measurement function backed by the cache's
// hinting-free measurement faces, so measured widths stay consistent
// across repeated layout passes.
func Measurer(fonts *FontCache) MeasureFunc {
	return func(text string, run pptx.Run) float64 {
		face := fonts.MeasureFace(run.Family, run.Size, run.Bold, run.Italic)
		if face == nil {
			return 0
		}
		return float64(font.MeasureString(face, text)) / 64
	}
}

func drawBackground(img *image.RGBA, bg pptx.Background) {
	fill := white
	if bg.Color != nil {
		fill = *bg.Color
	}
	draw.Draw(img, img.Bounds(), &image.Uniform{C: fill}, image.Point{}, draw.Src)
	if len(bg.Image) > 0 {
		b := img.Bounds()
		drawImageBytes(img, bg.Image, 0, 0, float64(b.Dx()), float64(b.Dy()))
	}
}

func drawShape(img *image.RGBA, s *pptx.ShapeModel) {
	if s.Kind == pptx.GeometryLine {
		stroke := black
		if s.Stroke != nil {
			stroke = *s.Stroke
		}
		width := s.StrokeWidth
		if width < 1 {
			width = defaultStroke
		}
		drawSegment(img, s.X, s.Y, s.X+s.W, s.Y+s.H, stroke, width)
		return
	}

	inside := regionPredicate(s)
	if s.Fill != nil {
		fillRegion(img, s, inside, *s.Fill)
	}
	if s.Stroke != nil {
		width := s.StrokeWidth
		if width < 1 {
			width = defaultStroke
		}
		strokeRegion(img, s, inside, *s.Stroke, width)
	}
}

// regionPredicate returns a hit test for the shape's geometry in local
// coordinates relative to the shape's top-left corner.
func regionPredicate(s *pptx.ShapeModel) func(x, y float64) bool {
	switch s.Kind {
	case pptx.GeometryEllipse:
		rx, ry := s.W/2, s.H/2
		return func(x, y float64) bool {
			if rx <= 0 || ry <= 0 {
				return false
			}
			dx := (x - rx) / rx
			dy := (y - ry) / ry
			return dx*dx+dy*dy <= 1
		}
	case pptx.GeometryRoundRect:
		r := math.Min(s.W, s.H) * 0.15
		return func(x, y float64) bool {
			if x < 0 || y < 0 || x > s.W || y > s.H {
				return false
			}
			cx := clampF(x, r, s.W-r)
			cy := clampF(y, r, s.H-r)
			dx, dy := x-cx, y-cy
			return dx*dx+dy*dy <= r*r
		}
	default:
		return func(x, y float64) bool {
			return x >= 0 && y >= 0 && x <= s.W && y <= s.H
		}
	}
}

func fillRegion(img *image.RGBA, s *pptx.ShapeModel, inside func(x, y float64) bool, c color.RGBA) {
	x0, y0, x1, y1 := boundsFor(img, s.X, s.Y, s.W, s.H, 0)
	for py := y0; py <= y1; py++ {
		for px := x0; px <= x1; px++ {
			if inside(float64(px)+0.5-s.X, float64(py)+0.5-s.Y) {
				img.SetRGBA(px, py, c)
			}
		}
	}
}

// strokeRegion paints the band of pixels inside the region whose
// neighborhood at the stroke width crosses the region boundary.
func strokeRegion(img *image.RGBA, s *pptx.ShapeModel, inside func(x, y float64) bool, c color.RGBA, width float64) {
	x0, y0, x1, y1 := boundsFor(img, s.X, s.Y, s.W, s.H, int(width)+1)
	for py := y0; py <= y1; py++ {
		for px := x0; px <= x1; px++ {
			fx := float64(px) + 0.5 - s.X
			fy := float64(py) + 0.5 - s.Y
			if !inside(fx, fy) {
				continue
			}
			if !inside(fx-width, fy) || !inside(fx+width, fy) ||
				!inside(fx, fy-width) || !inside(fx, fy+width) {
				img.SetRGBA(px, py, c)
			}
		}
	}
}

// drawSegment draws a straight line with Bresenham stepping, thickened by
// stamping a small square at each step.
func drawSegment(img *image.RGBA, x0f, y0f, x1f, y1f float64, c color.RGBA, width float64) {
	x0, y0 := int(math.Round(x0f)), int(math.Round(y0f))
	x1, y1 := int(math.Round(x1f)), int(math.Round(y1f))
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	half := int(width / 2)
	for {
		stamp(img, x0, y0, half, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func stamp(img *image.RGBA, x, y, half int, c color.RGBA) {
	b := img.Bounds()
	for py := y - half; py <= y+half; py++ {
		for px := x - half; px <= x+half; px++ {
			if px >= b.Min.X && px < b.Max.X && py >= b.Min.Y && py < b.Max.Y {
				img.SetRGBA(px, py, c)
			}
		}
	}
}

// drawImageBytes decodes an embedded image and scales it into the target
// rectangle. Undecodable images are skipped so one bad blob cannot take
// the slide down.
func drawImageBytes(img *image.RGBA, data []byte, x, y, w, h float64) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil || w < 1 || h < 1 {
		return
	}
	dst := image.Rect(int(math.Round(x)), int(math.Round(y)),
		int(math.Round(x+w)), int(math.Round(y+h)))
	xdraw.ApproxBiLinear.Scale(img, dst, src, src.Bounds(), xdraw.Over, nil)
}

func drawLine(img *image.RGBA, fonts *FontCache, line Line) {
	face := faceFor(fonts, line.Run)
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(line.Run.Color),
		Face: face,
	}

	if line.Bullet != "" {
		drawer.Dot = fixed.Point26_6{
			X: fixed.Int26_6(line.BulletX * 64),
			Y: fixed.Int26_6(line.Baseline * 64),
		}
		drawer.DrawString(line.Bullet)
	}

	drawer.Dot = fixed.Point26_6{
		X: fixed.Int26_6(line.X * 64),
		Y: fixed.Int26_6(line.Baseline * 64),
	}
	drawer.DrawString(line.Text)

	if line.Run.Underline {
		underlineY := int(math.Round(line.Baseline)) + 2
		x0 := int(math.Round(line.X))
		x1 := int(math.Round(line.X + line.Width))
		b := img.Bounds()
		if underlineY >= b.Min.Y && underlineY < b.Max.Y {
			for px := x0; px <= x1; px++ {
				if px >= b.Min.X && px < b.Max.X {
					img.SetRGBA(px, underlineY, line.Run.Color)
				}
			}
		}
	}
}

// faceFor resolves a draw face, degrading to the built-in bitmap face so
// text still appears on systems with no usable font files.
func faceFor(fonts *FontCache, run pptx.Run) font.Face {
	face := fonts.Face(run.Family, run.Size, run.Bold, run.Italic)
	if face == nil {
		return basicfont.Face7x13
	}
	return face
}

func boundsFor(img *image.RGBA, x, y, w, h float64, pad int) (int, int, int, int) {
	b := img.Bounds()
	x0 := maxInt(int(math.Floor(x))-pad, b.Min.X)
	y0 := maxInt(int(math.Floor(y))-pad, b.Min.Y)
	x1 := minInt(int(math.Ceil(x+w))+pad, b.Max.X-1)
	y1 := minInt(int(math.Ceil(y+h))+pad, b.Max.Y-1)
	return x0, y0, x1, y1
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
