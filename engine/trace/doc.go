/*
Package trace reads the structured debug trace of a Graphite shaping run.

A trace lists the passes of the engine in execution order. Every pass carries the
run which has been input to the pass, the rules considered while executing the
pass, and, for positioning passes, the moves of collision avoidance. A final
output run is the result of the last pass. For N passes, a trace therefore holds
N+1 run snapshots.

The reader validates the structure of a trace document, but does not interpret it.
A malformed document fails as a whole with a *TraceFormatError, naming the path
of the offending field, e.g. "passes[2].rules[0].output.range.start".

Pass IDs are kept, but must not be used as indices: the engine may omit passes
(e.g., its internal bidi-reordering pass) from the list.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package trace

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'graide.trace'
func tracer() tracing.Trace {
	return tracing.Select("graide.trace")
}
