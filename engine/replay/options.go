package replay

import (
	"fmt"
	"strings"

	"github.com/npillmayer/graide/core"
	"github.com/npillmayer/graide/engine/glyphrun"
	"github.com/npillmayer/graide/engine/trace"
	"golang.org/x/text/unicode/bidi"
)

// Options configure a replay. The zero value is a valid configuration for
// left-to-right fonts.
type Options struct {
	NominalRTL bool      // nominal direction of the font is right-to-left
	KernEdges  bool      // compute kern-edge overlays for kerning moves
	Mirror     bool      // emit every row in mirrored direction
	PassKinds  PassKinds // optional source of pass sub-table kinds
}

// PassKind is the sub-table type of a pass.
type PassKind int8

const (
	UnknownKind PassKind = iota
	Linebreak
	Substitution
	Justification
	Positioning
)

var passKindNames = [...]string{"", "linebreak", "substitution", "justification", "positioning"}

func (k PassKind) String() string {
	if k < 0 || int(k) >= len(passKindNames) {
		return fmt.Sprintf("PassKind(%d)", int(k))
	}
	return passKindNames[k]
}

// ParsePassKind maps a sub-table name (case-insensitive) to a PassKind.
func ParsePassKind(s string) PassKind {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range passKindNames {
		if i > 0 && n == s {
			return PassKind(i)
		}
	}
	return UnknownKind
}

// PassKinds reports the sub-table kind of a pass, given by its position in
// the pass list of a trace. Clients usually derive it from a rule source map.
type PassKinds interface {
	PassKind(pass int) PassKind
}

// PassKindList is a PassKinds backed by a slice.
type PassKindList []PassKind

// PassKind implements PassKinds.
func (l PassKindList) PassKind(pass int) PassKind {
	if pass < 0 || pass >= len(l) {
		return UnknownKind
	}
	return l[pass]
}

func (opts Options) kind(pass int) PassKind {
	if opts.PassKinds == nil {
		return UnknownKind
	}
	return opts.PassKinds.PassKind(pass)
}

// isPositioning is true for passes declared as positioning passes and for passes
// with recorded collision moves.
func (opts Options) isPositioning(pass int, p *trace.Pass) bool {
	return opts.kind(pass) == Positioning || p.HasCollisions()
}

func isRTL(dir bidi.Direction) bool {
	return dir == bidi.RightToLeft
}

func checkPass(tr *trace.Trace, pass int) error {
	if tr.Empty() {
		return core.Error(core.EINVALID, "trace has no passes")
	}
	if pass < 0 || pass >= len(tr.Passes) {
		return core.Error(core.EINVALID, "pass %d out of range 0…%d", pass, len(tr.Passes)-1)
	}
	return nil
}

// mirror reverses the direction of every run in place.
func mirror(runs []*glyphrun.Run) {
	for _, r := range runs {
		r.ReverseDirection()
	}
}
