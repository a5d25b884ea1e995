package pptx

import (
	"encoding/xml"
	"fmt"
	"image/color"
	"strings"
)

// Default font sizes in points, applied only when a run carries no
// explicit size. Titles largest, subtitles next, body smallest.
const (
	defaultTitleSizePt    = 44
	defaultSubtitleSizePt = 32
	defaultBodySizePt     = 18
)

// defaultBulletGlyph substitutes for auto-numbered and implicit bullets.
const defaultBulletGlyph = "•"

// ExtractSlide parses one slide's XML into a SlideModel. Relationship IDs
// referenced by the slide are resolved through rels; references that
// cannot be resolved drop the referencing element rather than failing.
// The returned error represents a slide-level extraction failure and is
// recovered by the orchestrator with an error page.
func ExtractSlide(data []byte, rels RelationshipTable, c *Container, dpi float64) (*SlideModel, error) {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	var sld slideXML
	if err := xml.Unmarshal(data, &sld); err != nil {
		return nil, fmt.Errorf("failed to parse slide XML: %w", err)
	}

	model := &SlideModel{}
	model.Background = extractBackground(sld.CSld.Bg, rels, c)
	extractShapeTree(&sld.CSld.SpTree, model, rels, c, dpi)
	return model, nil
}

func extractBackground(bg *bgXML, rels RelationshipTable, c *Container) Background {
	if bg == nil || bg.BgPr == nil {
		return Background{}
	}
	if clr := fillColor(bg.BgPr.SolidFill); clr != nil {
		return Background{Color: clr}
	}
	if bg.BgPr.BlipFill != nil {
		if data := resolveImage(bg.BgPr.BlipFill.Blip.Embed, rels, c); data != nil {
			return Background{Image: data}
		}
	}
	return Background{}
}

// extractShapeTree walks the slide's shape tree in document order. Groups
// are flattened; child shape transforms are taken as-is, which places
// grouped content approximately when the group remaps its child space.
func extractShapeTree(tree *spTreeXML, model *SlideModel, rels RelationshipTable, c *Container, dpi float64) {
	for i := range tree.Sp {
		extractSp(&tree.Sp[i], model, dpi)
	}
	for i := range tree.Pic {
		extractPic(&tree.Pic[i], model, rels, c, dpi)
	}
	for i := range tree.CxnSp {
		extractCxnSp(&tree.CxnSp[i], model, dpi)
	}
	for i := range tree.GrpSp {
		extractGroup(&tree.GrpSp[i], model, rels, c, dpi)
	}
}

func extractGroup(grp *grpSpXML, model *SlideModel, rels RelationshipTable, c *Container, dpi float64) {
	for i := range grp.Sp {
		extractSp(&grp.Sp[i], model, dpi)
	}
	for i := range grp.Pic {
		extractPic(&grp.Pic[i], model, rels, c, dpi)
	}
	for i := range grp.GrpSp {
		extractGroup(&grp.GrpSp[i], model, rels, c, dpi)
	}
}

func extractSp(sp *spXML, model *SlideModel, dpi float64) {
	x, y, w, h := transformPixels(sp.SpPr.Xfrm, dpi)
	if hasText(sp.TxBody) {
		ts := TextShape{
			X: x, Y: y, W: w, H: h,
			Role:   placeholderRole(sp.NvSpPr.NvPr.Ph),
			Anchor: anchorFromAttr(sp.TxBody.BodyPr.Anchor),
		}
		for i := range sp.TxBody.P {
			ts.Paragraphs = append(ts.Paragraphs, extractParagraph(&sp.TxBody.P[i], ts.Role, dpi))
		}
		model.TextShapes = append(model.TextShapes, ts)
		return
	}

	shape := ShapeModel{
		X: x, Y: y, W: w, H: h,
		Kind: geometryKind(sp.SpPr.PrstGeom),
		Fill: fillColor(sp.SpPr.SolidFill),
	}
	if sp.SpPr.NoFill != nil {
		shape.Fill = nil
	}
	shape.Stroke, shape.StrokeWidth = lineStyle(sp.SpPr.Ln)
	model.Shapes = append(model.Shapes, shape)
}

func extractPic(pic *picXML, model *SlideModel, rels RelationshipTable, c *Container, dpi float64) {
	data := resolveImage(pic.BlipFill.Blip.Embed, rels, c)
	if data == nil {
		// Unresolved relationship: the picture is skipped, not fatal.
		return
	}
	x, y, w, h := transformPixels(pic.SpPr.Xfrm, dpi)
	model.Pictures = append(model.Pictures, Picture{Data: data, X: x, Y: y, W: w, H: h})
}

func extractCxnSp(cxn *cxnSpXML, model *SlideModel, dpi float64) {
	x, y, w, h := transformPixels(cxn.SpPr.Xfrm, dpi)
	shape := ShapeModel{X: x, Y: y, W: w, H: h, Kind: GeometryLine}
	shape.Stroke, shape.StrokeWidth = lineStyle(cxn.SpPr.Ln)
	if shape.Stroke == nil {
		black := color.RGBA{A: 255}
		shape.Stroke = &black
	}
	model.Shapes = append(model.Shapes, shape)
}

func transformPixels(xfrm *xfrmXML, dpi float64) (x, y, w, h float64) {
	if xfrm == nil {
		return 0, 0, 0, 0
	}
	return EMUToPixels(xfrm.Off.X, dpi), EMUToPixels(xfrm.Off.Y, dpi),
		EMUToPixels(xfrm.Ext.Cx, dpi), EMUToPixels(xfrm.Ext.Cy, dpi)
}

// geometryKind maps a preset geometry name to the rasterizer's closed set.
// Unknown presets render as plain rectangles.
func geometryKind(geom *prstGeomXML) GeometryKind {
	if geom == nil {
		return GeometryRect
	}
	switch geom.Prst {
	case "ellipse":
		return GeometryEllipse
	case "roundRect":
		return GeometryRoundRect
	case "line", "straightConnector1":
		return GeometryLine
	default:
		return GeometryRect
	}
}

func fillColor(fill *solidFillXML) *color.RGBA {
	if fill == nil || fill.SrgbClr == nil {
		return nil
	}
	clr, ok := ParseColor(fill.SrgbClr.Val)
	if !ok {
		return nil
	}
	return &clr
}

// lineStyle extracts stroke color and width. Line width is converted from
// EMU to the points-equivalent pixel scale (12700 EMU per point).
func lineStyle(ln *lnXML) (*color.RGBA, float64) {
	if ln == nil || ln.NoFill != nil {
		return nil, 0
	}
	clr := fillColor(ln.SolidFill)
	if clr == nil {
		return nil, 0
	}
	width := float64(ln.W) / emuPerPoint
	if width <= 0 {
		width = 1
	}
	return clr, width
}

func resolveImage(embedID string, rels RelationshipTable, c *Container) []byte {
	if embedID == "" {
		return nil
	}
	target, ok := rels.Resolve(embedID)
	if !ok {
		return nil
	}
	data, err := c.ReadBinary(target)
	if err != nil {
		return nil
	}
	return data
}

func hasText(tx *txBodyXML) bool {
	if tx == nil {
		return false
	}
	for i := range tx.P {
		for j := range tx.P[i].R {
			if strings.TrimSpace(tx.P[i].R[j].T.Text) != "" {
				return true
			}
		}
	}
	return false
}

func placeholderRole(ph *phXML) Role {
	if ph == nil {
		return RoleNone
	}
	switch ph.Type {
	case "title", "ctrTitle":
		return RoleTitle
	case "subTitle":
		return RoleSubtitle
	default:
		return RoleBody
	}
}

func anchorFromAttr(anchor string) Anchor {
	switch anchor {
	case "ctr":
		return AnchorMiddle
	case "b":
		return AnchorBottom
	default:
		return AnchorTop
	}
}

func alignmentFromAttr(algn string) Alignment {
	switch algn {
	case "ctr":
		return AlignCenter
	case "r":
		return AlignRight
	default:
		return AlignLeft
	}
}

func extractParagraph(p *pXML, role Role, dpi float64) Paragraph {
	para := Paragraph{LineSpacing: 1}
	if p.PPr != nil {
		para.Alignment = alignmentFromAttr(p.PPr.Algn)
		para.Level = p.PPr.Lvl
		switch {
		case p.PPr.BuNone != nil:
			// explicit no-bullet
		case p.PPr.BuChar != nil:
			para.Bullet = true
			para.BulletGlyph = p.PPr.BuChar.Char
		case p.PPr.BuAutoNum != nil:
			para.Bullet = true
			para.BulletGlyph = defaultBulletGlyph
		case p.PPr.Lvl > 0:
			para.Bullet = true
			para.BulletGlyph = defaultBulletGlyph
		}
		if pct := spacingPct(p.PPr.LnSpc); pct > 0 {
			para.LineSpacing = pct
		}
		para.SpaceBefore = spacingPixels(p.PPr.SpcBef, dpi)
		para.SpaceAfter = spacingPixels(p.PPr.SpcAft, dpi)
	}
	if para.Bullet && para.BulletGlyph == "" {
		para.BulletGlyph = defaultBulletGlyph
	}

	for i := range p.R {
		run := extractRun(&p.R[i], role, dpi)
		if run.Text == "" {
			continue
		}
		para.Runs = append(para.Runs, run)
	}
	return para
}

// spacingPct returns a line-spacing multiplier from a spcPct value
// (thousandths of a percent), or 0 when unset.
func spacingPct(s *spacingXML) float64 {
	if s == nil || s.SpcPct == nil || s.SpcPct.Val <= 0 {
		return 0
	}
	return float64(s.SpcPct.Val) / 100000
}

// spacingPixels returns paragraph spacing in pixels from a spcPts value
// (hundredths of a point), or 0 when unset.
func spacingPixels(s *spacingXML, dpi float64) float64 {
	if s == nil || s.SpcPts == nil || s.SpcPts.Val <= 0 {
		return 0
	}
	return PointsToPixels(float64(s.SpcPts.Val)/100, dpi)
}

func extractRun(r *rXML, role Role, dpi float64) Run {
	run := Run{
		Color:  color.RGBA{A: 255},
		Family: "Calibri",
	}

	run.Text = normalizeRunText(r.T.Text, r.T.Space == "preserve")

	sizePt := 0.0
	if r.RPr != nil {
		if r.RPr.Sz > 0 {
			sizePt = float64(r.RPr.Sz) / 100
		}
		run.Bold = boolAttr(r.RPr.B)
		run.Italic = boolAttr(r.RPr.I)
		run.Underline = r.RPr.U != "" && r.RPr.U != "none"
		if clr := fillColor(r.RPr.SolidFill); clr != nil {
			run.Color = *clr
		}
		if r.RPr.Latin != nil && r.RPr.Latin.Typeface != "" {
			run.Family = r.RPr.Latin.Typeface
		}
	}
	if sizePt == 0 {
		sizePt = defaultSizeForRole(role)
	}
	run.Size = PointsToPixels(sizePt, dpi)
	return run
}

func defaultSizeForRole(role Role) float64 {
	switch role {
	case RoleTitle:
		return defaultTitleSizePt
	case RoleSubtitle:
		return defaultSubtitleSizePt
	default:
		return defaultBodySizePt
	}
}

// normalizeRunText collapses whitespace runs into single spaces unless the
// run asked for preserved whitespace. XML entity unescaping has already
// happened during decoding.
func normalizeRunText(text string, preserve bool) string {
	if preserve {
		return text
	}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	joined := strings.Join(fields, " ")
	// Keep a single boundary space so adjacent runs separated by
	// whitespace in the source do not fuse into one word.
	if isBoundaryByte(text[0]) {
		joined = " " + joined
	}
	if isBoundaryByte(text[len(text)-1]) {
		joined = joined + " "
	}
	return joined
}

func isBoundaryByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func boolAttr(v string) bool {
	return v == "1" || v == "true"
}
