/*
Package glyphinfo provides metadata about the glyphs of a font, as needed to
present a shaping trace to humans: glyph names and attachment points.

Glyph names are read from the 'post' table of a TrueType/OpenType font. Glyphs
without a name are presented as "gid<N>". Attachment points are read from an
XML file in the format written by the Graide font debugger:

   <font name="Padauk">
     <glyph GID="12" PSName="uni1000">
       <point type="BSS">
         <location x="320" y="-20"/>
       </point>
     </glyph>
   </font>

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package glyphinfo

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'graide.fonts'.
func tracer() tracing.Trace {
	return tracing.Select("graide.fonts")
}
