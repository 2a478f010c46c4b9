/*
Package glyphrun implements glyph runs: ordered sequences of positioned glyph slots,
as reported by a Graphite shaping engine for one line of text at a point in time.

Slots are identified by an engine-assigned ID, which stays stable while a slot lives.
The index of a slot is its position within the run and changes whenever the run
is restructured. Clients correlating glyphs across snapshots must always go through
IDs, never through indices.

Runs are cheap to copy (one line of text) and copies are deep: replaying a trace
works on copies exclusively, leaving the trace data untouched.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package glyphrun

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'graide.glyphs'
func tracer() tracing.Trace {
	return tracing.Select("graide.glyphs")
}
