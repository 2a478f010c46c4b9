package trace

import (
	"github.com/npillmayer/graide/core/dimen"
	"github.com/npillmayer/graide/engine/glyphrun"
	"golang.org/x/text/unicode/bidi"
)

// Trace is the parsed debug trace of one shaping run. Traces are read-only
// after parsing.
type Trace struct {
	Passes    []Pass
	Output    *glyphrun.Run  // result of the last pass
	OutputDir bidi.Direction // declared direction of Output
}

// Empty is true for a trace without passes.
func (tr *Trace) Empty() bool {
	return tr == nil || len(tr.Passes) == 0
}

// Snapshot returns run j of a trace: the input of pass j for j < N, the final
// output for j == N. Snapshots are shared with the trace and must not be mutated.
// A missing run is reported as an empty run.
func (tr *Trace) Snapshot(j int) (*glyphrun.Run, bidi.Direction) {
	run, dir := tr.Output, tr.OutputDir
	if j < len(tr.Passes) {
		run, dir = tr.Passes[j].Input, tr.Passes[j].SlotsDir
	}
	if run == nil {
		run = glyphrun.NewRun(nil, dir == bidi.RightToLeft)
	}
	return run, dir
}

// Pass is one stage of rule-table execution.
type Pass struct {
	ID         int // engine pass ID, not an index
	RunDir     bidi.Direction
	SlotsDir   bidi.Direction // order of the slots of Input
	PassDir    bidi.Direction // direction the pass has been executed in
	Input      *glyphrun.Run  // run which has been input to the pass
	Rules      []Rule
	Collisions []CollisionPhase
}

// Fired is true if at least one rule fired during the pass.
func (p *Pass) Fired() bool {
	for _, r := range p.Rules {
		if !r.Failed {
			return true
		}
	}
	return false
}

// HasCollisions is true for passes with recorded collision moves.
func (p *Pass) HasCollisions() bool {
	for _, ph := range p.Collisions {
		if len(ph.Moves) > 0 {
			return true
		}
	}
	return false
}

// Rule is a rule considered during a pass.
//
// For failed rules, the input range tells which slots have been matched.
// For fired rules, slots from OutputStart up to (not including) OutputEnd have been
// replaced by OutputSlots.
type Rule struct {
	ID          int // rule index within its pass
	Failed      bool
	InputStart  int // slot ID
	InputLength int
	OutputStart int // slot ID
	OutputEnd   int // slot ID
	OutputSlots []*glyphrun.Slot
	PostShift   *dimen.Point // shift of subsequent slots, if any
}

// CollisionPhase groups the collision moves of one phase and loop.
//
// Phases are "1" (loop -1), then alternating forward "2" and reverse "2a" loops,
// then "3" for kerning.
type CollisionPhase struct {
	Phase string
	Loop  int // -1 if not reported
	Moves []Move
}

// FixKern is the fix type of kerning moves.
const FixKern = "kern"

// Move is one step of collision avoidance.
type Move struct {
	Missed   bool
	Slot     int    // slot ID
	Fix      string // "kern" or a shift type
	Result   dimen.Point
	Scalar   bool // result has been reported as a single number
	StillBad bool
	Vectors  []Vector
	Slices   []Slice
}

// IsKern is true for kerning moves.
func (m *Move) IsKern() bool {
	return m.Fix == FixKern
}

// Vector holds the candidate ranges of one direction of a shift move.
type Vector struct {
	Direction int
	BestCost  float64
	BestVal   dimen.DU
	Ranges    [][2]dimen.DU
	Removals  []VectorRemoval
}

// VectorRemoval is a range removed from the candidates because of another slot.
type VectorRemoval struct {
	Slot   int // slot ID
	Lo, Hi dimen.DU
}

// Slice is the kern-edge geometry of one horizontal slice of a kerning move.
type Slice struct {
	Index    int
	Edge     dimen.DU // target edge
	NearEdge dimen.DU // edge of the nearest neighbor
}
