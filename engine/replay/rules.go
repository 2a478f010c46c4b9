package replay

import (
	"fmt"

	"github.com/npillmayer/graide/core/dimen"
	"github.com/npillmayer/graide/engine/glyphrun"
	"github.com/npillmayer/graide/engine/trace"
)

// StepReplay holds the rows of a drill-down into a single pass: "Init", one row
// per rule considered, and one row per collision move.
type StepReplay struct {
	Pass    int             // index of the pass replayed
	Rows    []*glyphrun.Run // rows in order, tagged with pass and rule index
	Shifts  []PendingShift  // final pending collision shifts, ordered by slot ID
	Skipped int             // events referencing slots not present in the run
}

// PendingShift is the last collision shift applied to a slot.
type PendingShift struct {
	Slot  int
	Shift dimen.Point
}

// Labels returns the labels of all rows.
func (sr *StepReplay) Labels() []string {
	labels := make([]string, len(sr.Rows))
	for i, r := range sr.Rows {
		labels[i] = r.Label
	}
	return labels
}

// Mirrored returns a copy of sr with every row reversed in direction.
func (sr *StepReplay) Mirrored() *StepReplay {
	m := *sr
	m.Rows = make([]*glyphrun.Run, len(sr.Rows))
	for i, r := range sr.Rows {
		m.Rows[i] = r.Copy()
	}
	mirror(m.Rows)
	return &m
}

// Rules replays the rules considered in pass (an index into the pass list of tr),
// followed by the collision moves of the pass, if any.
//
// The pass is replayed on the snapshot which has been input to the pass, oriented
// in the direction the pass has been executed in (PassDir). This may differ from
// the orientation of row `pass` of the pass replay.
func Rules(tr *trace.Trace, pass int, opts Options) (*StepReplay, error) {
	if err := checkPass(tr, pass); err != nil {
		return nil, err
	}
	input, _ := snapshot(tr, pass)
	return ReplayRules(input, &tr.Passes[pass], pass, opts), nil
}

// ReplayRules replays the rules of a pass on input. Input is not modified.
func ReplayRules(input *glyphrun.Run, p *trace.Pass, pass int, opts Options) *StepReplay {
	sr := &StepReplay{Pass: pass}
	sr.Rows = []*glyphrun.Run{seed(input, p, pass)}
	cur := ruleCursor{rowInput: 0, pending: noSpan}
	for i := range p.Rules {
		sr.Rows, cur = cur.step(sr.Rows, &p.Rules[i], pass, &sr.Skipped)
	}
	cur.flush(sr.Rows)
	tracer().Infof("pass %d: replayed %d rules, %d events skipped", pass, len(p.Rules), sr.Skipped)
	if p.HasCollisions() {
		sr.Rows, sr.Shifts = appendCollisionRows(sr.Rows, p, pass, opts, &sr.Skipped)
	}
	if opts.Mirror {
		mirror(sr.Rows)
	}
	return sr
}

// seed copies the input of a pass, reversed if needed to match the direction
// the pass has been executed in.
func seed(input *glyphrun.Run, p *trace.Pass, pass int) *glyphrun.Run {
	run := input.Copy()
	run.ResetHighlights()
	if run.RTL != isRTL(p.PassDir) {
		run.ReverseDirection()
	}
	run.Label = "Init"
	run.PassIndex, run.RuleIndex = pass, -1
	return run
}

// span is a range of slots in a row, to be highlighted with kind.
type span struct {
	row      int // -1 for no span
	beg, end int
	kind     glyphrun.Highlight
}

var noSpan = span{row: -1}

// ruleCursor is the state carried from one considered rule to the next.
//
// The output of a rule is highlighted in its own row only when the next rule is
// processed, as the next rule may consume some of these slots as input, turning
// them into InAndOut.
type ruleCursor struct {
	rowInput int  // row holding the input slots of the next firing rule
	pending  span // highlight not yet applied
}

func (c ruleCursor) flush(rows []*glyphrun.Run) {
	if c.pending.row >= 0 {
		rows[c.pending.row].Highlight(c.pending.beg, c.pending.end, c.pending.kind)
	}
}

// step appends the row for rule r and returns the cursor for the next rule.
func (c ruleCursor) step(rows []*glyphrun.Run, r *trace.Rule, pass int, skipped *int) ([]*glyphrun.Run, ruleCursor) {
	c.flush(rows)
	c.pending = noSpan
	row := len(rows)
	run := rows[row-1].Copy()
	run.ResetHighlights()
	run.PassIndex, run.RuleIndex = pass, r.ID
	if r.Failed {
		run.Label = fmt.Sprintf("Rule: %d (failed)", r.ID)
		if beg := run.IndexOfID(r.InputStart); beg == glyphrun.NotFound {
			*skipped++
			tracer().Infof("%s: input slot #%d not found", run.Label, r.InputStart)
		} else {
			c.pending = span{row: row, beg: beg, end: min(beg+r.InputLength, run.Len()), kind: glyphrun.Failed}
		}
		tracer().Debugf("%s", run.Label)
		return append(rows, run), c
	}
	run.Label = fmt.Sprintf("Rule: %d", r.ID)
	// an output range ending before its start replaces through the end of the run
	beg, end, err := run.ReplaceSlots(r.OutputSlots, r.OutputStart, r.OutputEnd)
	if err != nil {
		*skipped++
		tracer().Infof("%s: %v", run.Label, err)
		return append(rows, run), c
	}
	markInput(rows[c.rowInput], beg, end)
	n := len(r.OutputSlots)
	if r.PostShift != nil {
		run.Shift(beg+n, *r.PostShift)
	}
	c.pending = span{row: row, beg: beg, end: beg + n, kind: glyphrun.Output}
	c.rowInput = row
	tracer().Debugf("%s: [%d,%d) → %d slots", run.Label, beg, end, n)
	return append(rows, run), c
}

// markInput highlights slots [beg,end) of run as input. Slots which are already
// highlighted as output of the rule producing run become InAndOut.
func markInput(run *glyphrun.Run, beg, end int) {
	for k := max(beg, 0); k < end && k < run.Len(); k++ {
		s := run.Slots[k]
		if s.Highlight == glyphrun.Output || s.Highlight == glyphrun.InAndOut {
			s.Highlight = glyphrun.InAndOut
		} else {
			s.Highlight = glyphrun.Input
		}
	}
}
