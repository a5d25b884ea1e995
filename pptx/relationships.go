package pptx

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// Relationship is one entry from a part's _rels manifest.
type Relationship struct {
	ID     string
	Type   string
	Target string // normalized to an absolute entry name
}

// RelationshipTable maps relationship IDs to resolved package entries.
// Built once per slide; every r:embed / r:id reference must pass through
// it before being treated as a path.
type RelationshipTable map[string]Relationship

// Resolve returns the entry name a relationship ID points at.
func (t RelationshipTable) Resolve(id string) (string, bool) {
	rel, ok := t[id]
	if !ok {
		return "", false
	}
	return rel.Target, true
}

type relationshipsXML struct {
	XMLName      xml.Name          `xml:"Relationships"`
	Relationship []relationshipXML `xml:"Relationship"`
}

type relationshipXML struct {
	ID     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}

// ResolveSlideRelationships reads a slide's relationship manifest and
// normalizes each target against the package layout. A slide without a
// manifest is valid and yields an empty table.
func ResolveSlideRelationships(c *Container, slidePath string) (RelationshipTable, error) {
	relsPath := strings.Replace(slidePath, "slides/", "slides/_rels/", 1) + ".rels"

	table := make(RelationshipTable)
	if !c.Has(relsPath) {
		return table, nil
	}

	data, err := c.ReadBinary(relsPath)
	if err != nil {
		return table, nil
	}

	var rels relationshipsXML
	if err := xml.Unmarshal(data, &rels); err != nil {
		return nil, fmt.Errorf("failed to parse relationships %s: %w", relsPath, err)
	}

	for _, rel := range rels.Relationship {
		if rel.ID == "" || rel.Target == "" {
			continue
		}
		table[rel.ID] = Relationship{
			ID:     rel.ID,
			Type:   rel.Type,
			Target: normalizeTarget(rel.Target),
		}
	}
	return table, nil
}

// normalizeTarget rewrites a relationship target into an absolute entry
// name. Targets beginning with "../" are relative to the ppt/ content
// folder; bare names are relative to the slides folder; anything else is
// used as-is.
func normalizeTarget(target string) string {
	target = strings.TrimPrefix(target, "/")
	if strings.HasPrefix(target, "../") {
		rest := target
		for strings.HasPrefix(rest, "../") {
			rest = strings.TrimPrefix(rest, "../")
		}
		return "ppt/" + rest
	}
	if !strings.Contains(target, "/") {
		return "ppt/slides/" + target
	}
	return target
}
