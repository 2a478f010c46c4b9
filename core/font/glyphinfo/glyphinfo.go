package glyphinfo

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/flopp/go-findfont"
	"github.com/npillmayer/graide/core"
	"github.com/npillmayer/graide/core/dimen"
	"golang.org/x/image/font/sfnt"
)

// Source provides names and attachment points of glyphs.
type Source interface {
	GlyphName(gid int) string
	Anchors(gid int) []Anchor
}

// Anchor is a named attachment point of a glyph.
type Anchor struct {
	Name string
	At   dimen.Point
}

// FallbackName is the display name of a glyph without a name.
func FallbackName(gid int) string {
	return fmt.Sprintf("gid%d", gid)
}

// SFNTSource reads glyph names from a font file. It has no anchors.
type SFNTSource struct {
	Name  string // full name of the font
	font  *sfnt.Font
	mx    sync.Mutex // guards buf and names
	buf   sfnt.Buffer
	names map[int]string
}

var _ Source = &SFNTSource{}

// LoadFont loads a TrueType or OpenType font file.
func LoadFont(fontfile string) (*SFNTSource, error) {
	data, err := os.ReadFile(fontfile)
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "cannot read font %s", fontfile)
	}
	return ParseFont(data)
}

// ParseFont creates a source from the binary data of a font.
func ParseFont(data []byte) (*SFNTSource, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, core.WrapError(err, core.EFORMAT, "cannot parse font")
	}
	src := &SFNTSource{font: f, names: make(map[int]string)}
	src.Name, _ = f.Name(&src.buf, sfnt.NameIDFull)
	tracer().Debugf("loaded font %q with %d glyphs", src.Name, f.NumGlyphs())
	return src, nil
}

// NumGlyphs returns the number of glyphs of the font.
func (src *SFNTSource) NumGlyphs() int {
	return src.font.NumGlyphs()
}

// GlyphName returns the PostScript name of a glyph. Glyphs without a name, or
// out of range, are named by FallbackName.
func (src *SFNTSource) GlyphName(gid int) string {
	if gid < 0 || gid >= src.font.NumGlyphs() {
		return FallbackName(gid)
	}
	src.mx.Lock()
	defer src.mx.Unlock()
	if name, ok := src.names[gid]; ok {
		return name
	}
	name, err := src.font.GlyphName(&src.buf, sfnt.GlyphIndex(gid))
	if err != nil || name == "" {
		if err != nil && !errors.Is(err, sfnt.ErrNotFound) {
			tracer().Debugf("glyph name for %d: %v", gid, err)
		}
		name = FallbackName(gid)
	}
	src.names[gid] = name
	return name
}

// Anchors implements Source. Fonts carry no Graphite attachment points.
func (src *SFNTSource) Anchors(gid int) []Anchor {
	return nil
}

// WithPoints combines the glyph names of src with attachment points.
func WithPoints(src Source, ap *AttachmentPoints) Source {
	return withPoints{Source: src, ap: ap}
}

type withPoints struct {
	Source
	ap *AttachmentPoints
}

func (wp withPoints) Anchors(gid int) []Anchor {
	return wp.ap.Anchors(gid)
}

// Locate finds the file path of a font, given either as a path or as the
// name of a system font.
func Locate(name string) (string, error) {
	if fi, err := os.Stat(name); err == nil && !fi.IsDir() {
		return name, nil
	}
	fpath, err := findfont.Find(name)
	if err != nil || fpath == "" {
		return "", core.WrapError(fmt.Errorf("font not found: %s", name), core.EMISSING,
			"font not found: %s", name)
	}
	tracer().Debugf("%s is a system font at %s", name, fpath)
	return fpath, nil
}
