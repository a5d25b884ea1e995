// Package pptx reads Office Open XML presentation packages: the ZIP
// container, part relationships, the presentation-level geometry, and the
// per-slide XML that the conversion pipeline turns into a renderable model.
package pptx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
)

// maxEntrySize is the maximum allowed size for a single part extracted from
// the package. This prevents zip bomb attacks. 50 MB is generous for any
// legitimate PPTX part.
const maxEntrySize = 50 << 20 // 50 MB

// maxPackageSize is the limit for the package archive itself.
const maxPackageSize = 200 << 20 // 200 MB

// maxEntries is the maximum number of parts allowed in a package.
const maxEntries = 10000

// presentationPart is the manifest every valid presentation package carries.
const presentationPart = "ppt/presentation.xml"

// Container is a read-only view over an opened presentation package.
// It lives for the duration of one conversion.
type Container struct {
	index map[string]*zip.File
}

// OpenPackage opens a presentation package from raw bytes.
func OpenPackage(data []byte) (*Container, error) {
	if int64(len(data)) > maxPackageSize {
		return nil, fmt.Errorf("package size %d exceeds maximum allowed (%d bytes)", len(data), maxPackageSize)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open package archive: %w", err)
	}
	if len(zr.File) > maxEntries {
		return nil, fmt.Errorf("package contains too many entries (%d > %d)", len(zr.File), maxEntries)
	}

	c := &Container{index: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		c.index[f.Name] = f
	}
	if _, ok := c.index[presentationPart]; !ok {
		return nil, fmt.Errorf("missing required part: %s", presentationPart)
	}
	return c, nil
}

// Has reports whether the package contains the named entry.
func (c *Container) Has(name string) bool {
	_, ok := c.index[name]
	return ok
}

// ReadBinary returns the raw bytes of the named entry.
func (c *Container) ReadBinary(name string) ([]byte, error) {
	f, ok := c.index[name]
	if !ok {
		return nil, fmt.Errorf("entry not found in package: %s", name)
	}
	if f.UncompressedSize64 > maxEntrySize {
		return nil, fmt.Errorf("entry %s exceeds maximum allowed size (%d bytes)", name, maxEntrySize)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open entry %s: %w", name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, int64(maxEntrySize)+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read entry %s: %w", name, err)
	}
	if int64(len(data)) > int64(maxEntrySize) {
		return nil, fmt.Errorf("entry %s actual size exceeds maximum allowed size", name)
	}
	return data, nil
}

// ReadText returns the named entry decoded as a string.
func (c *Container) ReadText(name string) (string, error) {
	data, err := c.ReadBinary(name)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// slideNamePattern matches slide parts and captures their numeric index.
var slideNamePattern = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// SlidePaths returns slide entry names sorted ascending by the numeric
// suffix in the entry name. Page order in the output document follows this
// order, never the archive's enumeration order.
func (c *Container) SlidePaths() []string {
	type indexed struct {
		path string
		num  int
	}
	var found []indexed
	for name := range c.index {
		m := slideNamePattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		found = append(found, indexed{path: name, num: n})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].num < found[j].num })

	paths := make([]string, len(found))
	for i, f := range found {
		paths[i] = f.path
	}
	return paths
}

// CoreProperties holds the package's Dublin Core metadata.
type CoreProperties struct {
	Title   string
	Creator string
	Subject string
}

type corePropertiesXML struct {
	XMLName xml.Name `xml:"coreProperties"`
	Title   string   `xml:"title"`
	Creator string   `xml:"creator"`
	Subject string   `xml:"subject"`
}

// CoreProperties returns the package metadata from docProps/core.xml.
// A missing or unparseable part yields empty properties, not an error.
func (c *Container) CoreProperties() CoreProperties {
	data, err := c.ReadBinary("docProps/core.xml")
	if err != nil {
		return CoreProperties{}
	}
	var props corePropertiesXML
	if err := xml.Unmarshal(data, &props); err != nil {
		return CoreProperties{}
	}
	return CoreProperties{
		Title:   props.Title,
		Creator: props.Creator,
		Subject: props.Subject,
	}
}
