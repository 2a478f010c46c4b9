/*
Package replay reconstructs glyph-run snapshots from a shaping trace.

Three granularities are supported:

■ Passes: one row per pass boundary, "Init" plus one row per pass.

■ Rules: drilling down into a single pass, one row per rule considered, whether
the rule fired or failed to match.

■ Collisions: for positioning passes, one row per move of collision avoidance.

Every replay is a pure function of a trace, a pass selection and Options. Traces
are never modified; all rows are deep copies, so different passes of the same trace
may be replayed concurrently.

Row j (j ≥ 1) of a pass replay shows the output of pass j-1 and carries the rules
and collision moves recorded for pass j-1. This mirrors the way the engine
associates rules with pass records and is kept as is, as existing tooling relies on it.

Rows carry symbolic highlight kinds (see glyphrun.Highlight), never colors.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package replay

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'graide.replay'
func tracer() tracing.Trace {
	return tracing.Select("graide.replay")
}
