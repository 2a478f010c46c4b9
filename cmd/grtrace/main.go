/*
Command grtrace inspects the debug trace of a Graphite shaping run.

It replays a trace at pass granularity, drills down into the rules and
collision moves of a single pass, and offers an interactive mode for
stepping through a trace:

   grtrace passes trace.json
   grtrace rules trace.json 3
   grtrace collisions --font Padauk.ttf trace.json 5
   grtrace shape --lang my Padauk.ttf "ကို"
   grtrace repl trace.json

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package main

import (
	"os"
	"strings"

	"github.com/npillmayer/graide/core"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
)

// tracer traces with key 'graide.cli'
func tracer() tracing.Trace {
	return tracing.Select("graide.cli")
}

var version = "dev"

// traceKeys are the tracing keys of all packages of this module.
var traceKeys = []string{"cli", "trace", "replay", "glyphs", "fonts", "shaping"}

func main() {
	initDisplay()
	if err := newRootCmd(&app{out: os.Stdout}).Execute(); err != nil {
		core.UserError(err)
		os.Exit(1)
	}
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// setupTracing routes all tracers of this module to the Go logger, with a
// common trace level.
func setupTracing(level string) error {
	switch strings.ToLower(level) {
	case "debug", "info", "error":
	default:
		return core.Error(core.EINVALID, "trace level must be one of Debug|Info|Error, is %q", level)
	}
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter": "go",
	}
	for _, key := range traceKeys {
		conf["trace.graide."+key] = level
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		return core.WrapError(err, core.EINTERNAL, "error configuring tracing")
	}
	tracing.SetTraceSelector(trace2go.Selector())
	tracer().Debugf("trace level is %s", level)
	return nil
}

func errUsage(format string, v ...interface{}) error {
	return core.Error(core.EINVALID, format, v...)
}
