/*
Package shaping defines the contract with a Graphite shaping engine: a shaping
request for a font and a test string, and a Shaper producing the debug trace of
shaping that request.

CommandShaper implements Shaper by running an external test program of the
engine (usually gr2fonttest), which writes its trace as JSON.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package shaping

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'graide.shaping'
func tracer() tracing.Trace {
	return tracing.Select("graide.shaping")
}
