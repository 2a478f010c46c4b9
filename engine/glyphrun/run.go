package glyphrun

import (
	"errors"
	"fmt"
	"strings"

	"github.com/npillmayer/graide/core"
	"github.com/npillmayer/graide/core/dimen"
)

// NotFound is returned by IndexOfID for IDs not present in a run.
const NotFound = -1

// ErrSlotNotFound is matched by errors.Is for every SlotNotFoundError.
var ErrSlotNotFound = errors.New("slot not found")

// SlotNotFoundError is returned if an operation references a slot ID not present
// in a run. This may happen legitimately, if a previous rule consumed the slot.
type SlotNotFoundError struct {
	ID int
}

func (e SlotNotFoundError) Error() string {
	return fmt.Sprintf("slot #%d not found in run", e.ID)
}

// Is makes SlotNotFoundError match ErrSlotNotFound.
func (e SlotNotFoundError) Is(target error) bool {
	return target == ErrSlotNotFound
}

func (e SlotNotFoundError) ErrorCode() int {
	return core.EMISSING
}

func (e SlotNotFoundError) UserMessage() string {
	return e.Error()
}

var _ core.AppError = SlotNotFoundError{}

// Run is an ordered sequence of slots representing one line of shaping output
// at a point in time.
//
// Label, PassIndex and RuleIndex are provenance tags of runs produced by a replay.
// Runs read from a trace have PassIndex and RuleIndex set to -1.
type Run struct {
	Slots     []*Slot
	RTL       bool       // current visual direction
	Label     string     // display label of a replay row
	PassIndex int        // pass this run has been produced by
	RuleIndex int        // rule this run has been produced by
	Edges     *KernEdges // kern-edge overlay of a collision move
}

// KernEdges are the per-slice edges considered by a kerning collision move.
// Slices not reported by the engine are flagged in Present.
type KernEdges struct {
	Slot      int // ID of the kerned slot
	Edges     []dimen.DU
	NearEdges []dimen.DU
	Present   []bool
}

// GlyphNamer maps glyph IDs to display names.
type GlyphNamer interface {
	GlyphName(gid int) string
}

// NewRun creates a run from a sequence of slots. The slots are taken over
// (not copied) and renumbered.
func NewRun(slots []*Slot, rtl bool) *Run {
	r := &Run{Slots: slots, RTL: rtl, PassIndex: -1, RuleIndex: -1}
	r.renumber()
	return r
}

// Len returns the number of slots in r.
func (r *Run) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Slots)
}

// Copy returns a deep copy of r. Mutating the copy will never affect r.
func (r *Run) Copy() *Run {
	if r == nil {
		return nil
	}
	c := *r
	c.Slots = make([]*Slot, len(r.Slots))
	for i, s := range r.Slots {
		c.Slots[i] = s.Copy()
	}
	c.renumber()
	if r.Edges != nil {
		c.Edges = &KernEdges{
			Slot:      r.Edges.Slot,
			Edges:     append([]dimen.DU(nil), r.Edges.Edges...),
			NearEdges: append([]dimen.DU(nil), r.Edges.NearEdges...),
			Present:   append([]bool(nil), r.Edges.Present...),
		}
	}
	return &c
}

// IndexOfID returns the index of the slot with the given ID, or NotFound.
// Runs are short, so this is a linear scan.
func (r *Run) IndexOfID(id int) int {
	for i, s := range r.Slots {
		if s.ID == id {
			return i
		}
	}
	return NotFound
}

// SlotByID returns the slot with the given ID, or nil.
func (r *Run) SlotByID(id int) *Slot {
	if i := r.IndexOfID(id); i != NotFound {
		return r.Slots[i]
	}
	return nil
}

// ReplaceSlots replaces the slots starting at the slot with ID startID, up to but
// not including the slot with ID endID, by copies of newSlots. If endID is not
// found, or precedes startID in the run, slots are replaced through the end of
// the run.
//
// ReplaceSlots returns the index range [beg,end) of the replaced slots, relative
// to the run before replacement. If startID is not found, r is left unchanged and
// a SlotNotFoundError is returned.
func (r *Run) ReplaceSlots(newSlots []*Slot, startID, endID int) (beg, end int, err error) {
	beg = r.IndexOfID(startID)
	if beg == NotFound {
		return NotFound, NotFound, SlotNotFoundError{ID: startID}
	}
	end = r.IndexOfID(endID)
	if end == NotFound || end < beg {
		end = len(r.Slots)
	}
	slots := make([]*Slot, 0, len(r.Slots)-(end-beg)+len(newSlots))
	slots = append(slots, r.Slots[:beg]...)
	for _, s := range newSlots {
		slots = append(slots, s.Copy())
	}
	slots = append(slots, r.Slots[end:]...)
	r.Slots = slots
	r.renumber()
	tracer().Debugf("replaced slots [%d,%d) by %d new slots", beg, end, len(newSlots))
	return beg, end, nil
}

// ReverseDirection reverses the order of slots and toggles the direction flag.
// Calling it twice restores the original run.
func (r *Run) ReverseDirection() {
	for i, j := 0, len(r.Slots)-1; i < j; i, j = i+1, j-1 {
		r.Slots[i], r.Slots[j] = r.Slots[j], r.Slots[i]
	}
	r.RTL = !r.RTL
	r.renumber()
}

// Highlight sets the highlight of every slot in index range [beg,end) to kind.
// The range is clipped to the run. The most recent call wins.
func (r *Run) Highlight(beg, end int, kind Highlight) {
	if beg < 0 {
		beg = 0
	}
	if end > len(r.Slots) {
		end = len(r.Slots)
	}
	for i := beg; i < end; i++ {
		r.Slots[i].Highlight = kind
	}
}

// ResetHighlights clears all highlights and per-step collision annotations.
func (r *Run) ResetHighlights() {
	for _, s := range r.Slots {
		s.Highlight = None
	}
	r.Edges = nil
}

// Shift translates the origin of every slot from index from onwards by delta.
func (r *Run) Shift(from int, delta dimen.Point) {
	if from < 0 {
		from = 0
	}
	for i := from; i < len(r.Slots); i++ {
		r.Slots[i].Origin.Shift(delta)
	}
}

// IDs returns the slot IDs of r in order.
func (r *Run) IDs() []int {
	ids := make([]int, len(r.Slots))
	for i, s := range r.Slots {
		ids[i] = s.ID
	}
	return ids
}

// Highlights returns the highlight kinds of r's slots in order.
func (r *Run) Highlights() []Highlight {
	h := make([]Highlight, len(r.Slots))
	for i, s := range r.Slots {
		h[i] = s.Highlight
	}
	return h
}

// Describe lists the glyphs of r by name. If names is nil, glyph IDs are used.
func (r *Run) Describe(names GlyphNamer) string {
	var b strings.Builder
	for i, s := range r.Slots {
		if i > 0 {
			b.WriteByte(' ')
		}
		if names != nil {
			b.WriteString(names.GlyphName(s.GID))
		} else {
			fmt.Fprintf(&b, "g%d", s.GID)
		}
	}
	return b.String()
}

func (r *Run) String() string {
	dir := "ltr"
	if r.RTL {
		dir = "rtl"
	}
	return fmt.Sprintf("run(%s,%d slots,%q)", dir, len(r.Slots), r.Label)
}

func (r *Run) renumber() {
	for i, s := range r.Slots {
		s.Index = i
	}
}
