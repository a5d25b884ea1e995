package pptx

import "encoding/xml"

// XML structures for slide parts. Element names are matched by local name,
// which covers both the presentationml (p:) and drawingml (a:) namespaces;
// relationship attributes (r:embed, r:id) are namespace-qualified.

type slideXML struct {
	XMLName xml.Name `xml:"sld"`
	CSld    cSldXML  `xml:"cSld"`
}

type cSldXML struct {
	Bg     *bgXML    `xml:"bg"`
	SpTree spTreeXML `xml:"spTree"`
}

type bgXML struct {
	BgPr *bgPrXML `xml:"bgPr"`
}

type bgPrXML struct {
	SolidFill *solidFillXML `xml:"solidFill"`
	BlipFill  *blipFillXML  `xml:"blipFill"`
}

type spTreeXML struct {
	Sp    []spXML    `xml:"sp"`
	Pic   []picXML   `xml:"pic"`
	CxnSp []cxnSpXML `xml:"cxnSp"`
	GrpSp []grpSpXML `xml:"grpSp"`
}

type grpSpXML struct {
	Sp    []spXML    `xml:"sp"`
	Pic   []picXML   `xml:"pic"`
	GrpSp []grpSpXML `xml:"grpSp"`
}

type spXML struct {
	NvSpPr nvSpPrXML  `xml:"nvSpPr"`
	SpPr   spPrXML    `xml:"spPr"`
	TxBody *txBodyXML `xml:"txBody"`
}

type nvSpPrXML struct {
	NvPr nvPrXML `xml:"nvPr"`
}

type nvPrXML struct {
	Ph *phXML `xml:"ph"`
}

type phXML struct {
	Type string `xml:"type,attr"`
	Idx  int    `xml:"idx,attr"`
}

type spPrXML struct {
	Xfrm      *xfrmXML      `xml:"xfrm"`
	PrstGeom  *prstGeomXML  `xml:"prstGeom"`
	SolidFill *solidFillXML `xml:"solidFill"`
	NoFill    *struct{}     `xml:"noFill"`
	Ln        *lnXML        `xml:"ln"`
}

type xfrmXML struct {
	Off offXML `xml:"off"`
	Ext extXML `xml:"ext"`
}

type offXML struct {
	X int64 `xml:"x,attr"`
	Y int64 `xml:"y,attr"`
}

type extXML struct {
	Cx int64 `xml:"cx,attr"`
	Cy int64 `xml:"cy,attr"`
}

type prstGeomXML struct {
	Prst string `xml:"prst,attr"`
}

type solidFillXML struct {
	SrgbClr *srgbClrXML `xml:"srgbClr"`
}

type srgbClrXML struct {
	Val string `xml:"val,attr"`
}

type lnXML struct {
	W         int64         `xml:"w,attr"` // EMU
	SolidFill *solidFillXML `xml:"solidFill"`
	NoFill    *struct{}     `xml:"noFill"`
}

type txBodyXML struct {
	BodyPr bodyPrXML `xml:"bodyPr"`
	P      []pXML    `xml:"p"`
}

type bodyPrXML struct {
	Anchor string `xml:"anchor,attr"`
}

type pXML struct {
	PPr *pPrXML `xml:"pPr"`
	R   []rXML  `xml:"r"`
}

type pPrXML struct {
	Algn      string        `xml:"algn,attr"`
	Lvl       int           `xml:"lvl,attr"`
	BuNone    *struct{}     `xml:"buNone"`
	BuChar    *buCharXML    `xml:"buChar"`
	BuAutoNum *buAutoNumXML `xml:"buAutoNum"`
	SpcBef    *spacingXML   `xml:"spcBef"`
	SpcAft    *spacingXML   `xml:"spcAft"`
	LnSpc     *spacingXML   `xml:"lnSpc"`
}

type buCharXML struct {
	Char string `xml:"char,attr"`
}

type buAutoNumXML struct {
	Type string `xml:"type,attr"`
}

type spacingXML struct {
	SpcPct *spcValXML `xml:"spcPct"`
	SpcPts *spcValXML `xml:"spcPts"`
}

type spcValXML struct {
	Val int `xml:"val,attr"`
}

type rXML struct {
	RPr *rPrXML `xml:"rPr"`
	T   tXML    `xml:"t"`
}

type tXML struct {
	Space string `xml:"space,attr"`
	Text  string `xml:",chardata"`
}

type rPrXML struct {
	Sz        int           `xml:"sz,attr"` // hundredths of a point
	B         string        `xml:"b,attr"`
	I         string        `xml:"i,attr"`
	U         string        `xml:"u,attr"`
	SolidFill *solidFillXML `xml:"solidFill"`
	Latin     *latinXML     `xml:"latin"`
}

type latinXML struct {
	Typeface string `xml:"typeface,attr"`
}

type picXML struct {
	BlipFill blipFillXML `xml:"blipFill"`
	SpPr     spPrXML     `xml:"spPr"`
}

type blipFillXML struct {
	Blip blipXML `xml:"blip"`
}

type blipXML struct {
	Embed string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships embed,attr"`
}

type cxnSpXML struct {
	SpPr spPrXML `xml:"spPr"`
}
