package glyphinfo

import (
	"encoding/xml"
	"io"
	"os"
	"sort"

	"github.com/npillmayer/graide/core"
	"github.com/npillmayer/graide/core/dimen"
)

// AttachmentPoints holds the attachment points of the glyphs of a font.
// It implements Source, naming glyphs by their PostScript names.
type AttachmentPoints struct {
	Font   string
	glyphs map[int]apGlyph
}

var _ Source = &AttachmentPoints{}

type apGlyph struct {
	name    string
	anchors []Anchor
}

type xmlFont struct {
	XMLName xml.Name   `xml:"font"`
	Name    string     `xml:"name,attr"`
	Glyphs  []xmlGlyph `xml:"glyph"`
}

type xmlGlyph struct {
	GID    int        `xml:"GID,attr"`
	PSName string     `xml:"PSName,attr"`
	Points []xmlPoint `xml:"point"`
}

type xmlPoint struct {
	Type     string       `xml:"type,attr"`
	Location *xmlLocation `xml:"location"`
}

type xmlLocation struct {
	X float64 `xml:"x,attr"`
	Y float64 `xml:"y,attr"`
}

// LoadAttachmentPoints reads an attachment point file.
func LoadAttachmentPoints(path string) (*AttachmentPoints, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "cannot open attachment points %s", path)
	}
	defer f.Close()
	return ReadAttachmentPoints(f)
}

// ReadAttachmentPoints parses attachment points in XML format. Points without
// a location are ignored.
func ReadAttachmentPoints(r io.Reader) (*AttachmentPoints, error) {
	var doc xmlFont
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, core.WrapError(err, core.EFORMAT, "invalid attachment point file")
	}
	ap := &AttachmentPoints{Font: doc.Name, glyphs: make(map[int]apGlyph, len(doc.Glyphs))}
	n := 0
	for _, g := range doc.Glyphs {
		if _, dup := ap.glyphs[g.GID]; dup {
			return nil, core.Error(core.EFORMAT, "glyph %d listed twice in attachment point file", g.GID)
		}
		glyph := apGlyph{name: g.PSName}
		for _, p := range g.Points {
			if p.Location == nil {
				continue
			}
			glyph.anchors = append(glyph.anchors, Anchor{
				Name: p.Type,
				At:   dimen.Point{X: dimen.DU(p.Location.X), Y: dimen.DU(p.Location.Y)},
			})
		}
		sort.SliceStable(glyph.anchors, func(i, j int) bool {
			return glyph.anchors[i].Name < glyph.anchors[j].Name
		})
		n += len(glyph.anchors)
		ap.glyphs[g.GID] = glyph
	}
	tracer().Infof("read %d attachment points for %d glyphs", n, len(ap.glyphs))
	return ap, nil
}

// GlyphName returns the PostScript name of a glyph, or its fallback name.
func (ap *AttachmentPoints) GlyphName(gid int) string {
	if g, ok := ap.glyphs[gid]; ok && g.name != "" {
		return g.name
	}
	return FallbackName(gid)
}

// Anchors returns the attachment points of a glyph, ordered by name.
func (ap *AttachmentPoints) Anchors(gid int) []Anchor {
	return ap.glyphs[gid].anchors
}

// Len returns the number of glyphs with attachment data.
func (ap *AttachmentPoints) Len() int {
	return len(ap.glyphs)
}
