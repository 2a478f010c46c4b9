package replay

import (
	"path/filepath"
	"testing"

	"github.com/npillmayer/graide/core"
	"github.com/npillmayer/graide/core/dimen"
	"github.com/npillmayer/graide/engine/glyphrun"
	"github.com/npillmayer/graide/engine/trace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/suite"
	"golang.org/x/text/unicode/bidi"
)

// --- Test Suite Preparation ------------------------------------------------

type ReplayTestEnviron struct {
	suite.Suite
	twopass    *trace.Trace
	collisions *trace.Trace
}

// listen for 'go test' command --> run test methods
func TestReplayFunctions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "graide.replay")
	defer teardown()
	suite.Run(t, new(ReplayTestEnviron))
}

// run once, before test suite methods
func (env *ReplayTestEnviron) SetupSuite() {
	env.T().Log("Setting up test suite")
	tracing.Select("graide.trace").SetTraceLevel(tracing.LevelError)
	var err error
	env.twopass, err = trace.ReadFile(filepath.Join("..", "trace", "testdata", "twopass.json"))
	env.Require().NoError(err)
	env.collisions, err = trace.ReadFile(filepath.Join("..", "trace", "testdata", "collisions.json"))
	env.Require().NoError(err)
	tracing.Select("graide.replay").SetTraceLevel(tracing.LevelDebug)
}

// --- Helpers ---------------------------------------------------------------

// slots creates slots with the given IDs, 100 units apart.
func slots(ids ...int) []*glyphrun.Slot {
	s := make([]*glyphrun.Slot, len(ids))
	for i, id := range ids {
		s[i] = glyphrun.NewSlot(id, id)
		s[i].Origin = dimen.Point{X: dimen.DU(100 * i)}
		s[i].Advance = dimen.Point{X: 100}
	}
	return s
}

func ltrPass(id int, ids ...int) trace.Pass {
	return trace.Pass{
		ID:       id,
		RunDir:   bidi.LeftToRight,
		SlotsDir: bidi.LeftToRight,
		PassDir:  bidi.LeftToRight,
		Input:    glyphrun.NewRun(slots(ids...), false),
	}
}

func fired(id, start, end int, out ...int) trace.Rule {
	return trace.Rule{ID: id, OutputStart: start, OutputEnd: end, OutputSlots: slots(out...),
		InputStart: trace.NoSlot}
}

func failed(id, start, length int) trace.Rule {
	return trace.Rule{ID: id, Failed: true, InputStart: start, InputLength: length,
		OutputStart: trace.NoSlot, OutputEnd: trace.NoSlot}
}

func kernMove(slot int, x dimen.DU) trace.Move {
	return trace.Move{Slot: slot, Fix: trace.FixKern, Result: dimen.Point{X: x}, Scalar: true}
}

// --- Pass replay -----------------------------------------------------------

func (env *ReplayTestEnviron) TestPassRowCount() {
	for n := 0; n < 5; n++ {
		tr := &trace.Trace{Output: glyphrun.NewRun(slots(1, 2), false)}
		for i := 0; i < n; i++ {
			tr.Passes = append(tr.Passes, ltrPass(i*3, 1, 2))
		}
		pr := Passes(tr, Options{})
		env.Len(pr.Rows, n+1, "expected N+1 rows for %d passes", n)
		env.Equal(n == 0, pr.Empty)
	}
}

func (env *ReplayTestEnviron) TestEmptyTrace() {
	pr := Passes(&trace.Trace{}, Options{})
	env.Require().Len(pr.Rows, 1)
	env.Equal("Init", pr.Rows[0].Label)
	env.Equal(0, pr.Rows[0].Run.Len())
	env.True(pr.Empty)
	_, err := pr.DrillDown(1)
	env.Equal(core.EINVALID, core.Code(err))
}

func (env *ReplayTestEnviron) TestMissingOutputRun() {
	tr := &trace.Trace{Passes: []trace.Pass{ltrPass(0, 1, 2)}} // no output run
	pr := Passes(tr, Options{})
	env.Require().Len(pr.Rows, 2)
	env.Equal([]int{1, 2}, pr.Rows[0].Run.IDs())
	env.Equal(0, pr.Rows[1].Run.Len())
	env.Equal("Pass: 1", pr.Rows[1].Label)
	//
	tr.Passes[0].Input = nil
	sr, err := Rules(tr, 0, Options{})
	env.Require().NoError(err)
	env.Equal(0, sr.Rows[0].Len())
}

func (env *ReplayTestEnviron) TestConcreteTwoPassScenario() {
	pr := Passes(env.twopass, Options{})
	env.Equal([]string{"Init", "Pass: 1", "Pass: 2"}, pr.Labels())
	env.Equal(Inactive, pr.Rows[0].Status)
	env.Equal(Active, pr.Rows[1].Status)
	env.Equal(Inactive, pr.Rows[2].Status)
	env.Equal(0, pr.Rows[1].Pass)
	env.Len(pr.Rows[1].Rules, 1, "row 1 carries the rules of pass 0")
	env.Empty(pr.Rows[2].Rules)
	env.Equal([]int{5, 6}, pr.Rows[0].Run.IDs())
	env.Equal([]int{7}, pr.Rows[1].Run.IDs())
	//
	sr, err := Rules(env.twopass, 0, Options{})
	env.Require().NoError(err)
	env.Require().Len(sr.Rows, 2)
	env.Equal([]string{"Init", "Rule: 3"}, sr.Labels())
	env.Equal(sr.Rows[0].Len()-1, sr.Rows[1].Len(), "2 slots replaced by 1")
	env.Equal([]glyphrun.Highlight{glyphrun.Input, glyphrun.Input}, sr.Rows[0].Highlights())
	env.Equal([]glyphrun.Highlight{glyphrun.Output}, sr.Rows[1].Highlights())
	env.Equal(0, sr.Rows[1].PassIndex)
	env.Equal(3, sr.Rows[1].RuleIndex)
	env.Equal(0, sr.Skipped)
	//
	dd, err := pr.DrillDown(1)
	env.Require().NoError(err)
	env.Equal(sr.Labels(), dd.Labels())
}

func (env *ReplayTestEnviron) TestPassDirectionReversal() {
	p0 := ltrPass(0, 1, 2, 3)
	p0.PassDir = bidi.RightToLeft
	p1 := ltrPass(1, 1, 2, 3) // slots reported ltr after an rtl pass
	tr := &trace.Trace{
		Passes:    []trace.Pass{p0, p1},
		Output:    glyphrun.NewRun(slots(1, 2, 3), false),
		OutputDir: bidi.LeftToRight,
	}
	pr := Passes(tr, Options{})
	env.False(pr.Rows[0].Flipped)
	env.True(pr.Rows[1].Flipped)
	env.Equal([]int{3, 2, 1}, pr.Rows[1].Run.IDs())
	env.True(pr.Rows[1].Run.RTL)
	env.Equal("Pass: 1 (RTL)", pr.Rows[1].Label)
	env.False(pr.Rows[2].Flipped)
	env.Equal("Pass: 2", pr.Rows[2].Label)
	env.Equal([]int{1, 2, 3}, tr.Passes[1].Input.IDs(), "trace must not be modified")
	//
	pr = Passes(tr, Options{NominalRTL: true, PassKinds: PassKindList{Substitution, Positioning}})
	env.Equal("Pass: 1 - substitution", pr.Rows[1].Label)
	env.Equal("Pass: 2 - positioning (LTR)", pr.Rows[2].Label)
}

func (env *ReplayTestEnviron) TestSemiActivePass() {
	pr := Passes(env.collisions, Options{})
	env.Require().Len(pr.Rows, 2)
	env.Equal(SemiActive, pr.Rows[1].Status)
	env.Equal("Pass: 1 (RTL)", pr.Rows[1].Label)
	env.Len(pr.Rows[1].Collisions, 3)
	//
	pr = Passes(env.collisions, Options{NominalRTL: true})
	env.Equal("Pass: 1", pr.Rows[1].Label)
}

func (env *ReplayTestEnviron) TestMirroredPasses() {
	pr := Passes(env.twopass, Options{})
	m := pr.Mirrored()
	env.Equal([]int{6, 5}, m.Rows[0].Run.IDs())
	env.True(m.Rows[0].Run.RTL)
	env.Equal([]int{5, 6}, pr.Rows[0].Run.IDs(), "original rows must stay untouched")
	mo := Passes(env.twopass, Options{Mirror: true})
	env.Equal([]int{6, 5}, mo.Rows[0].Run.IDs())
}

// --- Rule replay -----------------------------------------------------------

func (env *ReplayTestEnviron) TestHighlightStacking() {
	p := ltrPass(0, 1, 2, 3, 4)
	p.Rules = []trace.Rule{
		fired(10, 2, 3, 20),            // 2 → 20
		fired(11, 20, 4, 21),           // 20 3 → 21, consuming the output of rule 10
		failed(12, 21, 1),              // 21 fails
		fired(13, 4, trace.NoSlot, 22), // 4 → 22
	}
	sr := ReplayRules(p.Input, &p, 0, Options{})
	env.Equal([]string{"Init", "Rule: 10", "Rule: 11", "Rule: 12 (failed)", "Rule: 13"}, sr.Labels())
	env.Equal([]glyphrun.Highlight{glyphrun.None, glyphrun.Input, glyphrun.None, glyphrun.None},
		sr.Rows[0].Highlights())
	env.Equal([]glyphrun.Highlight{glyphrun.None, glyphrun.InAndOut, glyphrun.Input, glyphrun.None},
		sr.Rows[1].Highlights(), "output of rule 10 consumed by rule 11 must be InAndOut")
	env.Equal([]int{1, 21, 4}, sr.Rows[2].IDs())
	env.Equal([]glyphrun.Highlight{glyphrun.None, glyphrun.Output, glyphrun.Input},
		sr.Rows[2].Highlights())
	env.Equal([]glyphrun.Highlight{glyphrun.None, glyphrun.Failed, glyphrun.None},
		sr.Rows[3].Highlights())
	env.Equal([]int{1, 21, 22}, sr.Rows[4].IDs())
	env.Equal([]glyphrun.Highlight{glyphrun.None, glyphrun.None, glyphrun.Output},
		sr.Rows[4].Highlights())
	env.Equal([]int{1, 2, 3, 4}, p.Input.IDs(), "input must not be modified")
	env.Equal(glyphrun.None, p.Input.Slots[1].Highlight)
}

func (env *ReplayTestEnviron) TestRuleReplayIsDeterministic() {
	p := ltrPass(0, 1, 2, 3, 4)
	p.Rules = []trace.Rule{fired(10, 2, 3, 20), failed(11, 3, 2), fired(12, 1, 2, 30, 31)}
	a := ReplayRules(p.Input, &p, 0, Options{})
	b := ReplayRules(p.Input, &p, 0, Options{})
	env.Equal(a, b)
}

func (env *ReplayTestEnviron) TestPostShift() {
	p := ltrPass(0, 1, 2, 3)
	r := fired(10, 1, 2, 20, 21)
	r.PostShift = &dimen.Point{X: 30}
	p.Rules = []trace.Rule{r}
	sr := ReplayRules(p.Input, &p, 0, Options{})
	row := sr.Rows[1]
	env.Equal([]int{20, 21, 2, 3}, row.IDs())
	env.Equal(dimen.DU(100), row.Slots[1].Origin.X, "output slots keep their origin")
	env.Equal(dimen.DU(130), row.Slots[2].Origin.X)
	env.Equal(dimen.DU(230), row.Slots[3].Origin.X)
}

func (env *ReplayTestEnviron) TestMissingSlotsAreSkipped() {
	p := ltrPass(0, 1, 2)
	p.Rules = []trace.Rule{fired(10, 99, 2, 20), failed(11, 98, 1), fired(12, 1, 2, 30)}
	sr := ReplayRules(p.Input, &p, 0, Options{})
	env.Equal(2, sr.Skipped)
	env.Len(sr.Rows, 4)
	env.Equal([]int{1, 2}, sr.Rows[1].IDs())
	env.Equal([]int{30, 2}, sr.Rows[3].IDs())
}

func (env *ReplayTestEnviron) TestOutputRangeEndingBeforeStart() {
	p := ltrPass(0, 1, 2, 3)
	p.Rules = []trace.Rule{fired(10, 2, 1, 20)} // slot 1 precedes slot 2
	sr := ReplayRules(p.Input, &p, 0, Options{})
	env.Equal(0, sr.Skipped)
	env.Require().Len(sr.Rows, 2)
	env.Equal([]int{1, 20}, sr.Rows[1].IDs(), "expected replacement through end of run")
	env.Equal(glyphrun.Input, sr.Rows[0].Slots[1].Highlight)
	env.Equal(glyphrun.Input, sr.Rows[0].Slots[2].Highlight)
	env.Equal(glyphrun.Output, sr.Rows[1].Slots[1].Highlight)
}

func (env *ReplayTestEnviron) TestRuleSeedFollowsPassDirection() {
	p := ltrPass(0, 1, 2, 3)
	p.PassDir = bidi.RightToLeft
	p.Rules = []trace.Rule{fired(10, 3, 2, 30)} // replaces 3 in rtl order 3 2 1
	sr := ReplayRules(p.Input, &p, 0, Options{})
	env.Equal([]int{3, 2, 1}, sr.Rows[0].IDs())
	env.Equal([]int{30, 2, 1}, sr.Rows[1].IDs())
	m := ReplayRules(p.Input, &p, 0, Options{Mirror: true})
	env.Equal([]int{1, 2, 30}, m.Rows[1].IDs())
}

func (env *ReplayTestEnviron) TestRulesOutOfRange() {
	_, err := Rules(env.twopass, 2, Options{})
	env.Error(err)
	_, err = Collisions(env.twopass, -1, Options{})
	env.Error(err)
}

// --- Collision replay ------------------------------------------------------

func (env *ReplayTestEnviron) TestKernPropagation() {
	p := ltrPass(0, 1, 2, 3)
	p.Collisions = []trace.CollisionPhase{{Phase: "3", Loop: -1, Moves: []trace.Move{kernMove(2, 50)}}}
	sr := ReplayCollisions(p.Input, &p, 0, Options{})
	env.Require().Len(sr.Rows, 2)
	row := sr.Rows[1]
	env.Equal("Kern", row.Label)
	env.Equal(-1, row.RuleIndex)
	env.Equal(dimen.Point{X: 50}, row.Slots[1].Collision.Pending)
	env.Equal(dimen.DU(0), row.Slots[0].Origin.X)
	env.Equal(dimen.DU(100), row.Slots[1].Origin.X)
	env.Equal(dimen.DU(250), row.Slots[2].Origin.X)
	env.Equal(glyphrun.Output, row.Slots[1].Highlight)
	env.Nil(p.Input.Slots[1].Collision, "input must not be modified")
	//
	p.Collisions = []trace.CollisionPhase{{Phase: "1", Loop: -1, Moves: []trace.Move{
		{Slot: 2, Fix: "shift", Result: dimen.Point{X: 50, Y: 20}},
	}}}
	sr = ReplayCollisions(p.Input, &p, 0, Options{})
	row = sr.Rows[1]
	env.Equal("Shift loop: 1", row.Label)
	env.Equal(dimen.Point{X: 50, Y: 20}, row.Slots[1].Collision.Pending)
	env.Equal(dimen.DU(200), row.Slots[2].Origin.X, "shifts do not propagate")
}

func (env *ReplayTestEnviron) TestMissedMoveProducesNoRow() {
	p := ltrPass(0, 1, 2)
	p.Collisions = []trace.CollisionPhase{{Phase: "1", Loop: -1, Moves: []trace.Move{{Missed: true}}}}
	sr := ReplayCollisions(p.Input, &p, 0, Options{})
	env.Len(sr.Rows, 1, "only the seed row expected")
	env.Empty(sr.Shifts)
}

func (env *ReplayTestEnviron) TestPhaseLabels() {
	data := []struct {
		phase string
		loop  int
		want  string
	}{
		{"1", -1, "Shift loop: 1"},
		{"2", 0, "Shift loop: 2"},
		{"2a", 0, "Shift loop: 2 (rev)"},
		{"2", 3, "Shift loop: 5"},
		{"2a", 3, "Shift loop: 5 (rev)"},
		{"3", -1, "Kern"},
	}
	for _, d := range data {
		env.Equal(d.want, phaseLabel(trace.CollisionPhase{Phase: d.phase, Loop: d.loop}))
	}
}

func (env *ReplayTestEnviron) TestCollisionTrace() {
	sr, err := Collisions(env.collisions, 0, Options{KernEdges: true})
	env.Require().NoError(err)
	env.Equal([]string{"Init", "Shift loop: 1", "Shift loop: 2 (rev)", "Kern"}, sr.Labels())
	env.Equal(0, sr.Skipped)
	//
	r1 := sr.Rows[1]
	env.Equal([]glyphrun.Highlight{glyphrun.None, glyphrun.Output, glyphrun.None}, r1.Highlights())
	env.Equal([]glyphrun.Removal{{By: 0x11, Direction: 0, Lo: -10, Hi: 10}}, r1.Slots[0].Collision.Removals)
	env.Require().Len(r1.Slots[1].Collision.Best, 1)
	env.Equal(1.5, r1.Slots[1].Collision.Best[0].Cost)
	//
	r2 := sr.Rows[2]
	env.Equal(glyphrun.Input, r2.Slots[1].Highlight, "still bad")
	env.Nil(r2.Slots[0].Collision.Removals, "annotations belong to a single move")
	//
	r3 := sr.Rows[3]
	env.Equal(glyphrun.Output, r3.Slots[1].Highlight)
	env.Equal(dimen.Point{X: -25}, r3.Slots[1].Collision.Pending)
	env.Equal(dimen.DU(575), r3.Slots[2].Origin.X)
	env.Require().NotNil(r3.Edges)
	env.Equal([]bool{false, true}, r3.Edges.Present)
	env.Equal(dimen.DU(120), r3.Edges.Edges[1])
	env.Equal(dimen.DU(80), r3.Edges.NearEdges[1])
	env.Equal([]PendingShift{{Slot: 0x11, Shift: dimen.Point{X: -25}}}, sr.Shifts)
	//
	noEdges, err := Collisions(env.collisions, 0, Options{})
	env.Require().NoError(err)
	env.Nil(noEdges.Rows[3].Edges)
}

func (env *ReplayTestEnviron) TestUnchangedMoveIsDefault() {
	p := ltrPass(0, 1, 2)
	move := trace.Move{Slot: 1, Fix: "shift", Result: dimen.Point{Y: 10}}
	p.Collisions = []trace.CollisionPhase{
		{Phase: "1", Loop: -1, Moves: []trace.Move{move}},
		{Phase: "2", Loop: 0, Moves: []trace.Move{move, {Slot: 77, Result: dimen.Point{X: 1}}}},
	}
	sr := ReplayCollisions(p.Input, &p, 0, Options{})
	env.Len(sr.Rows, 3)
	env.Equal(glyphrun.Output, sr.Rows[1].Slots[0].Highlight)
	env.Equal(glyphrun.Default, sr.Rows[2].Slots[0].Highlight)
	env.Equal(1, sr.Skipped)
}

func (env *ReplayTestEnviron) TestCollisionsFollowRules() {
	p := ltrPass(0, 1, 2, 3)
	p.Rules = []trace.Rule{fired(10, 1, 2, 20)}
	p.Collisions = []trace.CollisionPhase{{Phase: "3", Loop: -1, Moves: []trace.Move{kernMove(20, 10)}}}
	sr := ReplayRules(p.Input, &p, 0, Options{})
	env.Equal([]string{"Init", "Rule: 10", "Kern"}, sr.Labels())
	env.Equal([]int{20, 2, 3}, sr.Rows[2].IDs(), "collision rows continue from last rule row")
	env.Equal(dimen.DU(110), sr.Rows[2].Slots[1].Origin.X)
}
