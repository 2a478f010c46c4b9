package glyphinfo

import (
	"strings"
	"testing"

	"github.com/npillmayer/graide/core"
	"github.com/npillmayer/graide/core/dimen"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

const apFile = `<?xml version="1.0"?>
<font name="Test">
  <glyph GID="3" PSName="uni1000">
    <point type="BSS">
      <location x="320" y="-20"/>
    </point>
    <point type="ASS">
      <location x="100.5" y="700"/>
    </point>
    <point type="empty"/>
  </glyph>
  <glyph GID="4" PSName=""/>
</font>`

func TestGoRegularNames(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "graide.fonts")
	defer teardown()
	//
	src, err := ParseFont(goregular.TTF)
	require.NoError(t, err)
	assert.Contains(t, src.Name, "Go")
	assert.Greater(t, src.NumGlyphs(), 100)
	assert.Equal(t, ".notdef", src.GlyphName(0))
	assert.Equal(t, "gid-1", src.GlyphName(-1))
	assert.Equal(t, FallbackName(100000), src.GlyphName(100000))
	assert.Nil(t, src.Anchors(0))
}

func TestNotAFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "graide.fonts")
	defer teardown()
	//
	_, err := ParseFont([]byte("not a font"))
	assert.Equal(t, core.EFORMAT, core.Code(err))
	_, err = LoadFont("./no/such/font.ttf")
	assert.Equal(t, core.EMISSING, core.Code(err))
}

func TestReadAttachmentPoints(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "graide.fonts")
	defer teardown()
	//
	ap, err := ReadAttachmentPoints(strings.NewReader(apFile))
	require.NoError(t, err)
	assert.Equal(t, "Test", ap.Font)
	assert.Equal(t, 2, ap.Len())
	assert.Equal(t, "uni1000", ap.GlyphName(3))
	assert.Equal(t, "gid4", ap.GlyphName(4))
	assert.Equal(t, []Anchor{
		{Name: "ASS", At: dimen.Point{X: 100.5, Y: 700}},
		{Name: "BSS", At: dimen.Point{X: 320, Y: -20}},
	}, ap.Anchors(3))
	assert.Empty(t, ap.Anchors(4))
	assert.Empty(t, ap.Anchors(99))
	//
	src, err := ParseFont(goregular.TTF)
	require.NoError(t, err)
	combined := WithPoints(src, ap)
	assert.Len(t, combined.Anchors(3), 2)
	assert.Equal(t, src.GlyphName(3), combined.GlyphName(3))
}

func TestInvalidAttachmentPoints(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "graide.fonts")
	defer teardown()
	//
	_, err := ReadAttachmentPoints(strings.NewReader("<font><glyph GID='x'/></font>"))
	assert.Equal(t, core.EFORMAT, core.Code(err))
	_, err = ReadAttachmentPoints(strings.NewReader("<font><glyph GID='1'/><glyph GID='1'/></font>"))
	assert.Equal(t, core.EFORMAT, core.Code(err))
}

func TestLocate(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "graide.fonts")
	defer teardown()
	//
	path, err := Locate("glyphinfo.go") // existing files are taken as they are
	require.NoError(t, err)
	assert.Equal(t, "glyphinfo.go", path)
	_, err = Locate("no-such-font-0815.ttf")
	assert.Equal(t, core.EMISSING, core.Code(err))
}
