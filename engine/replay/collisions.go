package replay

import (
	"fmt"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/npillmayer/graide/core/dimen"
	"github.com/npillmayer/graide/engine/glyphrun"
	"github.com/npillmayer/graide/engine/trace"
)

// Collisions replays the collision moves of a positioning pass (an index into
// the pass list of tr), starting from the input of the pass. Rules of the pass
// are not replayed.
func Collisions(tr *trace.Trace, pass int, opts Options) (*StepReplay, error) {
	if err := checkPass(tr, pass); err != nil {
		return nil, err
	}
	input, _ := snapshot(tr, pass)
	return ReplayCollisions(input, &tr.Passes[pass], pass, opts), nil
}

// ReplayCollisions replays the collision moves of a pass on input.
// Input is not modified.
func ReplayCollisions(input *glyphrun.Run, p *trace.Pass, pass int, opts Options) *StepReplay {
	sr := &StepReplay{Pass: pass}
	sr.Rows = []*glyphrun.Run{seed(input, p, pass)}
	sr.Rows, sr.Shifts = appendCollisionRows(sr.Rows, p, pass, opts, &sr.Skipped)
	if opts.Mirror {
		mirror(sr.Rows)
	}
	return sr
}

// appendCollisionRows appends one row per collision move of p, continuing from
// the last row. Missed moves produce no row.
func appendCollisionRows(rows []*glyphrun.Run, p *trace.Pass, pass int, opts Options,
	skipped *int) ([]*glyphrun.Run, []PendingShift) {
	//
	prevMoves := treemap.NewWithIntComparator() // slot ID → last pending shift
	for _, phase := range p.Collisions {
		label := phaseLabel(phase)
		for i := range phase.Moves {
			m := &phase.Moves[i]
			if m.Missed {
				continue
			}
			run := rows[len(rows)-1].Copy()
			run.ResetHighlights()
			clearAnnotations(run)
			inx := run.IndexOfID(m.Slot)
			if inx == glyphrun.NotFound {
				*skipped++
				tracer().Infof("%s: slot #%d not found", label, m.Slot)
				continue
			}
			slot := run.Slots[inx]
			newValue := m.Result
			if m.IsKern() {
				newValue = dimen.Point{X: m.Result.X}
			}
			col := slot.EnsureCollision()
			col.Pending = newValue
			col.StillBad = m.StillBad
			if len(m.Vectors) > 0 {
				annotateVectors(run, slot, m)
			} else if len(m.Slices) > 0 && opts.KernEdges {
				run.Edges = kernEdges(m)
			}
			prev := dimen.Origin
			if v, found := prevMoves.Get(m.Slot); found {
				prev = v.(dimen.Point)
			}
			changed := newValue != prev
			prevMoves.Put(m.Slot, newValue)
			switch {
			case m.StillBad:
				slot.Highlight = glyphrun.Input
			case changed:
				slot.Highlight = glyphrun.Output
			default:
				slot.Highlight = glyphrun.Default
			}
			if m.IsKern() {
				// kerning is cumulative: all subsequent glyphs move along
				if delta := newValue.X - prev.X; delta != 0 {
					run.Shift(inx+1, dimen.Point{X: delta})
				}
			}
			run.Label = label
			run.PassIndex, run.RuleIndex = pass, -1
			rows = append(rows, run)
			tracer().Debugf("%s: slot #%d → %v, changed=%v", label, m.Slot, newValue, changed)
		}
	}
	shifts := make([]PendingShift, 0, prevMoves.Size())
	it := prevMoves.Iterator()
	for it.Next() {
		shifts = append(shifts, PendingShift{Slot: it.Key().(int), Shift: it.Value().(dimen.Point)})
	}
	return rows, shifts
}

// phaseLabel labels the rows of a collision phase. Loops are counted from 1,
// with phase "1" reported as loop -1.
func phaseLabel(phase trace.CollisionPhase) string {
	switch phase.Phase {
	case "3":
		return "Kern"
	case "2a":
		return fmt.Sprintf("Shift loop: %d (rev)", phase.Loop+2)
	}
	return fmt.Sprintf("Shift loop: %d", phase.Loop+2)
}

// annotateVectors records the ranges removed by other slots on these slots, and
// the best ranges chosen on the moving slot.
func annotateVectors(run *glyphrun.Run, slot *glyphrun.Slot, m *trace.Move) {
	best := make([]glyphrun.BestRange, 0, len(m.Vectors))
	for _, v := range m.Vectors {
		for _, rem := range v.Removals {
			other := run.SlotByID(rem.Slot)
			if other == nil {
				tracer().Debugf("removal references unknown slot #%d", rem.Slot)
				continue
			}
			oc := other.EnsureCollision()
			oc.Removals = append(oc.Removals, glyphrun.Removal{
				By:        m.Slot,
				Direction: v.Direction,
				Lo:        rem.Lo,
				Hi:        rem.Hi,
			})
		}
		best = append(best, glyphrun.BestRange{
			Direction: v.Direction,
			Value:     v.BestVal,
			Cost:      v.BestCost,
			Ranges:    append([][2]dimen.DU(nil), v.Ranges...),
		})
	}
	slot.Collision.Best = best
}

// kernEdges lays out the slice edges of a kerning move by slice index.
func kernEdges(m *trace.Move) *glyphrun.KernEdges {
	n := 0
	for _, s := range m.Slices {
		n = max(n, s.Index+1)
	}
	edges := &glyphrun.KernEdges{
		Slot:      m.Slot,
		Edges:     make([]dimen.DU, n),
		NearEdges: make([]dimen.DU, n),
		Present:   make([]bool, n),
	}
	for _, s := range m.Slices {
		edges.Edges[s.Index] = s.Edge
		edges.NearEdges[s.Index] = s.NearEdge
		edges.Present[s.Index] = true
	}
	return edges
}

// clearAnnotations removes diagnostic data of the previous move.
func clearAnnotations(run *glyphrun.Run) {
	for _, s := range run.Slots {
		if s.Collision != nil {
			s.Collision.Removals = nil
			s.Collision.Best = nil
		}
	}
}
