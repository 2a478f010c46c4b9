package replay

import (
	"fmt"

	"github.com/npillmayer/graide/engine/glyphrun"
	"github.com/npillmayer/graide/engine/trace"
)

// Status tells if a pass row is to be highlighted.
type Status int8

const (
	Inactive   Status = iota // nothing happened in the pass
	Active                   // at least one rule fired
	SemiActive               // no rule fired, but collision avoidance moved glyphs
)

func (s Status) String() string {
	switch s {
	case Active:
		return "active"
	case SemiActive:
		return "semi-active"
	}
	return "inactive"
}

// ParseStatus maps a status name to a Status. Unknown names map to Inactive.
func ParseStatus(s string) Status {
	switch s {
	case "active":
		return Active
	case "semi-active":
		return SemiActive
	}
	return Inactive
}

// PassRow is one row of a pass replay.
type PassRow struct {
	Run        *glyphrun.Run
	Label      string
	Status     Status
	Flipped    bool // run has been reversed to match the direction of the producing pass
	Pass       int  // index of the pass which produced the row, -1 for "Init"
	Rules      []trace.Rule
	Collisions []trace.CollisionPhase
}

// PassReplay holds the rows of a pass replay: "Init" plus one row per pass.
type PassReplay struct {
	Rows  []PassRow
	Empty bool // trace had no passes; Rows holds a single empty "Init" row
	trace *trace.Trace
	opts  Options
}

// Passes replays a trace at pass granularity. For a trace with N passes it
// produces N+1 rows.
func Passes(tr *trace.Trace, opts Options) *PassReplay {
	pr := &PassReplay{trace: tr, opts: opts}
	if tr.Empty() {
		tracer().Infof("replaying empty trace")
		run := glyphrun.NewRun(nil, opts.NominalRTL)
		run.Label = "Init"
		pr.Rows = []PassRow{{Run: run, Label: run.Label, Pass: -1}}
		pr.Empty = true
		return pr
	}
	n := len(tr.Passes)
	pr.Rows = make([]PassRow, n+1)
	for j := 0; j <= n; j++ {
		run, flipped := snapshot(tr, j)
		row := PassRow{Pass: j - 1, Flipped: flipped}
		if j == 0 {
			row.Label = "Init"
		} else {
			prev := &tr.Passes[j-1]
			row.Label = passLabel(j, prev, opts)
			row.Rules, row.Collisions = prev.Rules, prev.Collisions
			if prev.Fired() {
				row.Status = Active
			} else if opts.isPositioning(j-1, prev) && offsetsChanged(pr.Rows[j-1].Run, run) {
				row.Status = SemiActive
			}
		}
		run.Label = row.Label
		row.Run = run
		pr.Rows[j] = row
		tracer().Debugf("%s: %d slots, %s", row.Label, run.Len(), row.Status)
	}
	if opts.Mirror {
		for _, row := range pr.Rows {
			row.Run.ReverseDirection()
		}
	}
	return pr
}

// DrillDown replays the rules and collision moves which produced row j.
// Row j ≥ 1 has been produced by pass j-1.
func (pr *PassReplay) DrillDown(j int) (*StepReplay, error) {
	return Rules(pr.trace, j-1, pr.opts)
}

// Labels returns the labels of all rows.
func (pr *PassReplay) Labels() []string {
	labels := make([]string, len(pr.Rows))
	for i, row := range pr.Rows {
		labels[i] = row.Label
	}
	return labels
}

// Mirrored returns a copy of pr with every row reversed in direction.
func (pr *PassReplay) Mirrored() *PassReplay {
	m := *pr
	m.Rows = make([]PassRow, len(pr.Rows))
	for i, row := range pr.Rows {
		m.Rows[i] = row
		m.Rows[i].Run = row.Run.Copy()
		m.Rows[i].Run.ReverseDirection()
	}
	m.opts.Mirror = !pr.opts.Mirror
	return &m
}

// snapshot returns a copy of run j of a trace, reversed if its declared direction
// differs from the direction of pass j-1, which produced it.
func snapshot(tr *trace.Trace, j int) (*glyphrun.Run, bool) {
	src, dir := tr.Snapshot(j)
	run := src.Copy()
	run.ResetHighlights()
	run.PassIndex, run.RuleIndex = j-1, -1
	if j > 0 && dir != tr.Passes[j-1].PassDir {
		run.ReverseDirection()
		return run, true
	}
	return run, false
}

// passLabel is "Pass: j", followed by the sub-table kind of the producing pass and
// a direction annotation, if that pass ran against the nominal direction of the font.
func passLabel(j int, prev *trace.Pass, opts Options) string {
	label := fmt.Sprintf("Pass: %d", j)
	if kind := opts.kind(j - 1); kind != UnknownKind {
		label += " - " + kind.String()
	}
	if rtl := isRTL(prev.PassDir); rtl != opts.NominalRTL {
		if rtl {
			label += " (RTL)"
		} else {
			label += " (LTR)"
		}
	}
	return label
}

// offsetsChanged is true if any slot, identified by ID, has a different collision
// offset in run out than in run in. Slots new in out count as changed if they
// carry a non-zero offset.
func offsetsChanged(in, out *glyphrun.Run) bool {
	for _, s := range out.Slots {
		before := in.SlotByID(s.ID)
		if before == nil {
			if !s.CollisionOffset().IsZero() {
				return true
			}
			continue
		}
		if before.CollisionOffset() != s.CollisionOffset() {
			return true
		}
	}
	return false
}
