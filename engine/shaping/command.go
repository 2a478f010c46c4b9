package shaping

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/npillmayer/graide/core"
	"github.com/npillmayer/graide/core/percent"
	"github.com/npillmayer/graide/engine/trace"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/bidi"
)

// DefaultCommand is the Graphite test program.
const DefaultCommand = "gr2fonttest"

// CommandShaper runs an external test program of the shaping engine.
type CommandShaper struct {
	Command string   // program to run, DefaultCommand if empty
	Args    []string // leading arguments, e.g. for wrapper scripts
	Env     []string // additional environment, "KEY=value"
}

var _ Shaper = CommandShaper{}

// Shape runs the test program for req and loads the trace it writes.
func (cs CommandShaper) Shape(ctx context.Context, req Request) (*trace.Trace, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	tmp, err := os.CreateTemp("", "graide-trace-*.json")
	if err != nil {
		return nil, core.WrapError(err, core.EINTERNAL, "cannot create trace file")
	}
	tracefile := tmp.Name()
	tmp.Close()
	defer os.Remove(tracefile)
	//
	command := cs.Command
	if command == "" {
		command = DefaultCommand
	}
	args := append(append([]string{}, cs.Args...), Arguments(req, tracefile)...)
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Env = append(os.Environ(), cs.Env...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	tracer().Debugf("running %s %s", command, strings.Join(args, " "))
	if err = cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		return nil, core.WrapError(err, core.ECONNECTION, "shaping engine %s failed: %s", command, msg)
	}
	tr, err := trace.ReadFile(tracefile)
	if err != nil {
		return nil, err
	}
	tracer().Infof("shaped %q with %s: %d passes", req.Text, req.Font, len(tr.Passes))
	return tr, nil
}

// Arguments builds the command line of the test program for req, writing its
// trace to tracefile. The test string is given as a list of hex code points.
func Arguments(req Request, tracefile string) []string {
	args := []string{req.Font, "-codes"}
	for _, r := range req.Text {
		args = append(args, fmt.Sprintf("%04X", r))
	}
	args = append(args, "-trace", tracefile)
	if req.Direction == bidi.RightToLeft {
		args = append(args, "-rtl")
	}
	if len(req.Features) > 0 {
		fs := make([]string, len(req.Features))
		for i, f := range req.Features {
			fs[i] = f.String()
		}
		args = append(args, "-feat", strings.Join(fs, ","))
	}
	if lang := LanguageCode(req.Language); lang != "" {
		args = append(args, "-lang", lang)
	}
	if req.Width != 0 && req.Width != percent.Natural {
		args = append(args, "-justify", fmt.Sprintf("%d", int(req.Width)))
	}
	return args
}

// LanguageCode returns the language code Graphite expects for a language tag,
// or "" for an undetermined language.
func LanguageCode(tag language.Tag) string {
	if tag == language.Und {
		return ""
	}
	base, conf := tag.Base()
	if conf == language.No {
		return ""
	}
	return base.String()
}
