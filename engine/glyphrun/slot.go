package glyphrun

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/npillmayer/graide/core/dimen"
)

// Highlight is a symbolic tag telling why a slot is distinguished in a snapshot.
// Mapping highlights to colors is up to the presentation layer.
type Highlight int8

const (
	None     Highlight = iota // no highlight
	Default                   // evaluated, nothing changed
	Input                     // consumed by the next step
	Output                    // produced by this step
	InAndOut                  // produced by this step and consumed by the next one
	Failed                    // matched by a rule which failed
	Exclude                   // excluded from collision avoidance
)

var highlightNames = [...]string{"none", "default", "input", "output", "inAndOut", "failed", "exclude"}

func (h Highlight) String() string {
	if h < 0 || int(h) >= len(highlightNames) {
		return fmt.Sprintf("Highlight(%d)", int(h))
	}
	return highlightNames[h]
}

// ParseHighlight maps a highlight name, as printed by String, to a Highlight.
func ParseHighlight(s string) (Highlight, bool) {
	for i, n := range highlightNames {
		if n == s {
			return Highlight(i), true
		}
	}
	return None, false
}

// Slot is one positioned glyph occurrence within a run.
type Slot struct {
	ID        int         // engine-assigned identity, immutable
	Index     int         // position within owning run
	GID       int         // glyph index within the font
	Origin    dimen.Point // pen position before the glyph is drawn
	Advance   dimen.Point // pen movement contributed by this glyph
	Before    int         // first character offset this slot maps from
	After     int         // last character offset this slot maps from
	Highlight Highlight   // transient, reset per replay step
	Parent    *Attachment // attachment to a base slot, if any
	Collision *Collision  // present for positioning passes only
	User      []UserValue // engine-defined user attributes, uninterpreted
}

// UserValue is an opaque engine-defined user attribute value.
type UserValue = json.RawMessage

// Attachment links a slot to the slot it is attached to.
type Attachment struct {
	ID     int
	Offset dimen.Point
}

// Collision holds collision-avoidance data of a slot.
type Collision struct {
	Flags    int
	Offset   dimen.Point // offset applied by the engine
	Limit    dimen.Rect
	Margin   dimen.DU
	Pending  dimen.Point // pending shift while replaying collision moves
	StillBad bool
	Removals []Removal   // annotations from moves of other slots
	Best     []BestRange // chosen range per direction of the last move
}

// Removal annotates a slot as the source of a range removed from the
// candidate positions of another slot.
type Removal struct {
	By        int // ID of the moving slot
	Direction int
	Lo, Hi    dimen.DU
}

// BestRange is the range chosen for one direction of a shift move.
type BestRange struct {
	Direction int
	Value     dimen.DU
	Cost      float64
	Ranges    [][2]dimen.DU
}

// NewSlot creates a slot with an ID and a glyph.
func NewSlot(id, gid int) *Slot {
	return &Slot{ID: id, GID: gid}
}

// Copy creates a deep copy of a slot.
func (s *Slot) Copy() *Slot {
	if s == nil {
		return nil
	}
	c := *s
	if s.Parent != nil {
		p := *s.Parent
		c.Parent = &p
	}
	c.Collision = s.Collision.Copy()
	if s.User != nil {
		c.User = make([]UserValue, len(s.User))
		for i, u := range s.User {
			c.User[i] = bytes.Clone(u)
		}
	}
	return &c
}

// CollisionOffset returns the engine's collision offset, or zero if the slot
// carries no collision data.
func (s *Slot) CollisionOffset() dimen.Point {
	if s.Collision == nil {
		return dimen.Origin
	}
	return s.Collision.Offset
}

// EnsureCollision returns the collision record of s, creating an empty one if needed.
func (s *Slot) EnsureCollision() *Collision {
	if s.Collision == nil {
		s.Collision = &Collision{}
	}
	return s.Collision
}

func (s *Slot) String() string {
	return fmt.Sprintf("[%d:#%d gid=%d @%v]", s.Index, s.ID, s.GID, s.Origin)
}

// Copy creates a deep copy of collision data.
func (c *Collision) Copy() *Collision {
	if c == nil {
		return nil
	}
	cc := *c
	if c.Removals != nil {
		cc.Removals = append([]Removal(nil), c.Removals...)
	}
	if c.Best != nil {
		cc.Best = make([]BestRange, len(c.Best))
		for i, b := range c.Best {
			cc.Best[i] = b
			if b.Ranges != nil {
				cc.Best[i].Ranges = append([][2]dimen.DU(nil), b.Ranges...)
			}
		}
	}
	return &cc
}
