package trace

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/npillmayer/graide/core"
	"github.com/npillmayer/graide/core/dimen"
	"github.com/npillmayer/graide/engine/glyphrun"
	"golang.org/x/text/unicode/bidi"
)

// NoSlot is used for slot-ID references absent from a trace.
const NoSlot = -1

// TraceFormatError is returned for trace documents which are missing a required
// field or have a field of invalid type.
type TraceFormatError struct {
	Path string // path of the offending field
	Msg  string
}

func (e *TraceFormatError) Error() string {
	return fmt.Sprintf("trace format error at %s: %s", e.Path, e.Msg)
}

func (e *TraceFormatError) ErrorCode() int {
	return core.EFORMAT
}

func (e *TraceFormatError) UserMessage() string {
	return "could not load trace: " + e.Error()
}

var _ core.AppError = &TraceFormatError{}

func formatError(path string, format string, v ...interface{}) error {
	if path == "" {
		path = "$"
	}
	return &TraceFormatError{Path: path, Msg: fmt.Sprintf(format, v...)}
}

// ReadFile reads a trace document from a file.
func ReadFile(path string) (*Trace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "cannot read trace file %s", path)
	}
	return Parse(data)
}

// Read reads a trace document from r.
func Read(r io.Reader) (*Trace, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "cannot read trace")
	}
	return Parse(data)
}

// Parse parses a trace document. A malformed document results in a
// *TraceFormatError and no trace at all.
func Parse(data []byte) (*Trace, error) {
	tr, err := parseTrace(data)
	if err != nil {
		tracer().Errorf("%v", err)
		return nil, err
	}
	tracer().Infof("loaded trace with %d passes", len(tr.Passes))
	return tr, nil
}

func parseTrace(data []byte) (*Trace, error) {
	// Graphite writes a single document, but some front-ends wrap it into an
	// array with one entry per shaped line.
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var docs []json.RawMessage
		if err := json.Unmarshal(data, &docs); err != nil {
			return nil, formatError("", "%v", err)
		}
		if len(docs) != 1 {
			return nil, formatError("", "expected a single trace document, have %d", len(docs))
		}
		data = docs[0]
	}
	root, err := decodeObject("", data)
	if err != nil {
		return nil, err
	}
	tr := &Trace{}
	passes, err := root.array("passes")
	if err != nil {
		return nil, err
	}
	tr.Passes = make([]Pass, len(passes))
	for i, p := range passes {
		if err = parsePass(root.index("passes", i), p, &tr.Passes[i]); err != nil {
			return nil, err
		}
	}
	if len(passes) == 0 && !root.has("output") {
		tr.Output = glyphrun.NewRun(nil, false)
		return tr, nil
	}
	if tr.OutputDir, err = root.direction("outputdir"); err != nil {
		return nil, err
	}
	if tr.Output, err = root.run("output", tr.OutputDir); err != nil {
		return nil, err
	}
	return tr, nil
}

func parsePass(path string, raw json.RawMessage, pass *Pass) (err error) {
	o, err := decodeObject(path, raw)
	if err != nil {
		return err
	}
	if pass.ID, err = o.int("id"); err != nil {
		return err
	}
	if pass.SlotsDir, err = o.direction("slotsdir"); err != nil {
		return err
	}
	if pass.PassDir, err = o.direction("passdir"); err != nil {
		return err
	}
	pass.RunDir = pass.SlotsDir
	if o.has("rundir") {
		if pass.RunDir, err = o.direction("rundir"); err != nil {
			return err
		}
	}
	if pass.Input, err = o.run("slots", pass.SlotsDir); err != nil {
		return err
	}
	rules, err := o.optArray("rules")
	if err != nil {
		return err
	}
	for i, r := range rules {
		rule, err := parseRule(o.index("rules", i), r)
		if err != nil {
			return err
		}
		pass.Rules = append(pass.Rules, rule)
	}
	phases, err := o.optArray("collisions")
	if err != nil {
		return err
	}
	for i, ph := range phases {
		phase, ok, err := parsePhase(o.index("collisions", i), ph)
		if err != nil {
			return err
		}
		if ok {
			pass.Collisions = append(pass.Collisions, phase)
		}
	}
	return nil
}

func parseRule(path string, raw json.RawMessage) (rule Rule, err error) {
	o, err := decodeObject(path, raw)
	if err != nil {
		return
	}
	if rule.ID, err = o.int("id"); err != nil {
		return
	}
	if rule.Failed, err = o.optBool("failed", false); err != nil {
		return
	}
	rule.InputStart, rule.OutputStart, rule.OutputEnd = NoSlot, NoSlot, NoSlot
	if rule.Failed || o.has("input") {
		var in object
		if in, err = o.object("input"); err != nil {
			return
		}
		if rule.InputStart, err = in.slotID("start"); err != nil {
			return
		}
		if rule.InputLength, err = in.int("length"); err != nil {
			return
		}
		if rule.InputLength < 0 {
			err = formatError(in.sub("length"), "negative length %d", rule.InputLength)
			return
		}
	}
	if rule.Failed {
		return
	}
	out, err := o.object("output")
	if err != nil {
		return
	}
	rng, err := out.object("range")
	if err != nil {
		return
	}
	if rule.OutputStart, err = rng.slotID("start"); err != nil {
		return
	}
	if rng.has("end") {
		if rule.OutputEnd, err = rng.slotID("end"); err != nil {
			return
		}
	}
	slots, err := out.array("slots")
	if err != nil {
		return
	}
	rule.OutputSlots = make([]*glyphrun.Slot, len(slots))
	for i, s := range slots {
		if rule.OutputSlots[i], err = parseSlot(out.index("slots", i), s); err != nil {
			return
		}
	}
	if out.has("postshift") {
		var shift dimen.Point
		if shift, err = out.point("postshift"); err != nil {
			return
		}
		rule.PostShift = &shift
	}
	return
}

// parsePhase returns false for phase records which carry no moves, as
// {"num-loops": n}.
func parsePhase(path string, raw json.RawMessage) (phase CollisionPhase, ok bool, err error) {
	o, err := decodeObject(path, raw)
	if err != nil {
		return
	}
	if !o.has("phase") {
		if o.has("num-loops") {
			return phase, false, nil
		}
		return phase, false, formatError(o.sub("phase"), "missing field")
	}
	if phase.Phase, err = o.label("phase"); err != nil {
		return
	}
	if phase.Loop, err = o.optInt("loop", -1); err != nil {
		return
	}
	moves, err := o.optArray("moves")
	if err != nil {
		return
	}
	phase.Moves = make([]Move, len(moves))
	for i, m := range moves {
		if phase.Moves[i], err = parseMove(o.index("moves", i), m); err != nil {
			return
		}
	}
	return phase, true, nil
}

func parseMove(path string, raw json.RawMessage) (m Move, err error) {
	o, err := decodeObject(path, raw)
	if err != nil {
		return
	}
	if o.has("missed") {
		m.Missed = true
		m.Slot = NoSlot
		return
	}
	if m.Slot, err = o.slotID("slot"); err != nil {
		return
	}
	target, err := o.object("target")
	if err != nil {
		return
	}
	if m.Fix, err = target.optStr("fix", ""); err != nil {
		return
	}
	if m.Result, m.Scalar, err = o.pointOrNumber("result"); err != nil {
		return
	}
	if m.StillBad, err = o.optBool("stillBad", false); err != nil {
		return
	}
	vectors, err := o.optArray("vectors")
	if err != nil {
		return
	}
	for i, v := range vectors {
		var vec Vector
		if vec, err = parseVector(o.index("vectors", i), v, i); err != nil {
			return
		}
		m.Vectors = append(m.Vectors, vec)
	}
	slices, err := o.optArray("slices")
	if err != nil {
		return
	}
	for i, s := range slices {
		var sl Slice
		if sl, err = parseSlice(o.index("slices", i), s, i); err != nil {
			return
		}
		m.Slices = append(m.Slices, sl)
	}
	return
}

func parseVector(path string, raw json.RawMessage, n int) (v Vector, err error) {
	o, err := decodeObject(path, raw)
	if err != nil {
		return
	}
	if v.Direction, err = o.optInt("direction", n); err != nil {
		return
	}
	var f float64
	if f, err = o.optNumber("bestCost", 0); err != nil {
		return
	}
	v.BestCost = f
	if f, err = o.optNumber("bestVal", 0); err != nil {
		return
	}
	v.BestVal = dimen.DU(f)
	ranges, err := o.optArray("ranges")
	if err != nil {
		return
	}
	for i, r := range ranges {
		var lohi []float64
		if lohi, err = decodeNumbers(o.index("ranges", i), r, 2); err != nil {
			return
		}
		v.Ranges = append(v.Ranges, [2]dimen.DU{dimen.DU(lohi[0]), dimen.DU(lohi[1])})
	}
	removals, err := o.optArray("removals")
	if err != nil {
		return
	}
	for i, r := range removals {
		var rem VectorRemoval
		if rem, err = parseRemoval(o.index("removals", i), r); err != nil {
			return
		}
		v.Removals = append(v.Removals, rem)
	}
	return
}

// parseRemoval accepts {"slot": id, "lo": x, "hi": y} as well as [id, lo, hi].
func parseRemoval(path string, raw json.RawMessage) (rem VectorRemoval, err error) {
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
		var nums []float64
		if nums, err = decodeNumbers(path, raw, 3); err != nil {
			return
		}
		if nums[0] != math.Trunc(nums[0]) {
			err = formatError(path+"[0]", "expected slot ID, have %v", nums[0])
			return
		}
		return VectorRemoval{Slot: int(nums[0]), Lo: dimen.DU(nums[1]), Hi: dimen.DU(nums[2])}, nil
	}
	o, err := decodeObject(path, raw)
	if err != nil {
		return
	}
	if rem.Slot, err = o.slotID("slot"); err != nil {
		return
	}
	var f float64
	if f, err = o.optNumber("lo", 0); err != nil {
		return
	}
	rem.Lo = dimen.DU(f)
	if f, err = o.optNumber("hi", 0); err != nil {
		return
	}
	rem.Hi = dimen.DU(f)
	return
}

func parseSlice(path string, raw json.RawMessage, n int) (s Slice, err error) {
	o, err := decodeObject(path, raw)
	if err != nil {
		return
	}
	if s.Index, err = o.optInt("i", n); err != nil {
		return
	}
	if s.Index < 0 {
		err = formatError(o.sub("i"), "negative slice index %d", s.Index)
		return
	}
	var f float64
	if f, err = o.number("targetEdge"); err != nil {
		return
	}
	s.Edge = dimen.DU(f)
	if f, err = o.optNumber("nearEdge", 0); err != nil {
		return
	}
	s.NearEdge = dimen.DU(f)
	return
}

func parseSlot(path string, raw json.RawMessage) (*glyphrun.Slot, error) {
	o, err := decodeObject(path, raw)
	if err != nil {
		return nil, err
	}
	s := &glyphrun.Slot{}
	if s.ID, err = o.slotID("id"); err != nil {
		return nil, err
	}
	if s.GID, err = o.int("gid"); err != nil {
		return nil, err
	}
	if s.Origin, err = o.point("origin"); err != nil {
		return nil, err
	}
	if s.Advance, err = o.point("advance"); err != nil {
		return nil, err
	}
	charinfo := o
	if o.has("charinfo") {
		if charinfo, err = o.object("charinfo"); err != nil {
			return nil, err
		}
	}
	if s.Before, err = charinfo.optInt("before", 0); err != nil {
		return nil, err
	}
	if s.After, err = charinfo.optInt("after", s.Before); err != nil {
		return nil, err
	}
	user, err := o.optArray("user")
	if err != nil {
		return nil, err
	}
	if user != nil {
		s.User = make([]glyphrun.UserValue, len(user))
		for i, u := range user {
			s.User[i] = bytes.Clone(u)
		}
	}
	if o.has("parent") {
		p, err := o.object("parent")
		if err != nil {
			return nil, err
		}
		s.Parent = &glyphrun.Attachment{}
		if s.Parent.ID, err = p.slotID("id"); err != nil {
			return nil, err
		}
		if p.has("offset") {
			if s.Parent.Offset, err = p.point("offset"); err != nil {
				return nil, err
			}
		}
	}
	if o.has("collision") {
		if s.Collision, err = parseSlotCollision(o.sub("collision"), o.fields["collision"]); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func parseSlotCollision(path string, raw json.RawMessage) (*glyphrun.Collision, error) {
	o, err := decodeObject(path, raw)
	if err != nil {
		return nil, err
	}
	c := &glyphrun.Collision{}
	if c.Flags, err = o.optInt("flags", 0); err != nil {
		return nil, err
	}
	if o.has("offset") {
		if c.Offset, err = o.point("offset"); err != nil {
			return nil, err
		}
	}
	if o.has("limit") {
		lim, err := decodeNumbers(o.sub("limit"), o.fields["limit"], 4)
		if err != nil {
			return nil, err
		}
		c.Limit = dimen.Rect{
			TopL: dimen.Point{X: dimen.DU(lim[0]), Y: dimen.DU(lim[1])},
			BotR: dimen.Point{X: dimen.DU(lim[2]), Y: dimen.DU(lim[3])},
		}
	}
	margin, err := o.optNumber("margin", 0)
	if err != nil {
		return nil, err
	}
	c.Margin = dimen.DU(margin)
	return c, nil
}

// --- Structural decoding ---------------------------------------------------

// object is a JSON object together with its path in the trace document.
type object struct {
	path   string
	fields map[string]json.RawMessage
}

func decodeObject(path string, raw json.RawMessage) (object, error) {
	o := object{path: path}
	if err := json.Unmarshal(raw, &o.fields); err != nil || o.fields == nil {
		return o, formatError(path, "expected object")
	}
	return o, nil
}

func (o object) sub(key string) string {
	if o.path == "" {
		return key
	}
	return o.path + "." + key
}

func (o object) index(key string, i int) string {
	return o.sub(key) + "[" + strconv.Itoa(i) + "]"
}

// has is true if key is present and not null.
func (o object) has(key string) bool {
	raw, ok := o.fields[key]
	return ok && !isNull(raw)
}

func (o object) required(key string) (json.RawMessage, error) {
	if !o.has(key) {
		return nil, formatError(o.sub(key), "missing field")
	}
	return o.fields[key], nil
}

func (o object) object(key string) (object, error) {
	raw, err := o.required(key)
	if err != nil {
		return object{}, err
	}
	return decodeObject(o.sub(key), raw)
}

func (o object) array(key string) ([]json.RawMessage, error) {
	raw, err := o.required(key)
	if err != nil {
		return nil, err
	}
	var a []json.RawMessage
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, formatError(o.sub(key), "expected array")
	}
	if a == nil {
		a = []json.RawMessage{}
	}
	return a, nil
}

func (o object) optArray(key string) ([]json.RawMessage, error) {
	if !o.has(key) {
		return nil, nil
	}
	return o.array(key)
}

func (o object) int(key string) (int, error) {
	raw, err := o.required(key)
	if err != nil {
		return 0, err
	}
	return decodeInt(o.sub(key), raw)
}

func (o object) optInt(key string, def int) (int, error) {
	if !o.has(key) {
		return def, nil
	}
	return o.int(key)
}

// slotID decodes a slot reference. Some engine builds write slot IDs as
// strings, possibly in hex notation.
func (o object) slotID(key string) (int, error) {
	raw, err := o.required(key)
	if err != nil {
		return 0, err
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		n, err := strconv.ParseInt(strings.TrimSpace(s), 0, 64)
		if err != nil || n < 0 || n > math.MaxInt32 {
			return 0, formatError(o.sub(key), "expected slot ID, have %q", s)
		}
		return int(n), nil
	}
	id, err := decodeInt(o.sub(key), raw)
	if err == nil && id < 0 {
		return 0, formatError(o.sub(key), "negative slot ID %d", id)
	}
	return id, err
}

func (o object) number(key string) (float64, error) {
	raw, err := o.required(key)
	if err != nil {
		return 0, err
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, formatError(o.sub(key), "expected number")
	}
	return f, nil
}

func (o object) optNumber(key string, def float64) (float64, error) {
	if !o.has(key) {
		return def, nil
	}
	return o.number(key)
}

func (o object) optBool(key string, def bool) (bool, error) {
	if !o.has(key) {
		return def, nil
	}
	var b bool
	if err := json.Unmarshal(o.fields[key], &b); err != nil {
		return def, formatError(o.sub(key), "expected boolean")
	}
	return b, nil
}

func (o object) optStr(key string, def string) (string, error) {
	if !o.has(key) {
		return def, nil
	}
	var s string
	if err := json.Unmarshal(o.fields[key], &s); err != nil {
		return def, formatError(o.sub(key), "expected string")
	}
	return s, nil
}

// label decodes a string, accepting numbers as well.
func (o object) label(key string) (string, error) {
	raw, err := o.required(key)
	if err != nil {
		return "", err
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s, nil
	}
	var f float64
	if json.Unmarshal(raw, &f) == nil {
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	}
	return "", formatError(o.sub(key), "expected string")
}

func (o object) direction(key string) (bidi.Direction, error) {
	raw, err := o.required(key)
	if err != nil {
		return bidi.LeftToRight, err
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return bidi.LeftToRight, formatError(o.sub(key), "expected direction string")
	}
	switch strings.ToLower(s) {
	case "ltr":
		return bidi.LeftToRight, nil
	case "rtl":
		return bidi.RightToLeft, nil
	}
	return bidi.LeftToRight, formatError(o.sub(key), "unknown direction %q", s)
}

func (o object) point(key string) (dimen.Point, error) {
	raw, err := o.required(key)
	if err != nil {
		return dimen.Origin, err
	}
	xy, err := decodeNumbers(o.sub(key), raw, 2)
	if err != nil {
		return dimen.Origin, err
	}
	return dimen.Point{X: dimen.DU(xy[0]), Y: dimen.DU(xy[1])}, nil
}

// pointOrNumber decodes [x,y] or a single number x, which is returned as (x,0).
func (o object) pointOrNumber(key string) (dimen.Point, bool, error) {
	raw, err := o.required(key)
	if err != nil {
		return dimen.Origin, false, err
	}
	var f float64
	if json.Unmarshal(raw, &f) == nil {
		return dimen.Point{X: dimen.DU(f)}, true, nil
	}
	p, err := o.point(key)
	return p, false, err
}

func (o object) run(key string, dir bidi.Direction) (*glyphrun.Run, error) {
	raw, err := o.array(key)
	if err != nil {
		return nil, err
	}
	slots := make([]*glyphrun.Slot, len(raw))
	seen := make(map[int]bool, len(raw))
	for i, s := range raw {
		path := o.index(key, i)
		if slots[i], err = parseSlot(path, s); err != nil {
			return nil, err
		}
		if seen[slots[i].ID] {
			return nil, formatError(path+".id", "duplicate slot ID %d", slots[i].ID)
		}
		seen[slots[i].ID] = true
	}
	return glyphrun.NewRun(slots, dir == bidi.RightToLeft), nil
}

func decodeInt(path string, raw json.RawMessage) (int, error) {
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, formatError(path, "expected integer")
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, formatError(path, "expected integer, have %v", f)
	}
	return int(f), nil
}

func decodeNumbers(path string, raw json.RawMessage, n int) ([]float64, error) {
	var nums []float64
	if err := json.Unmarshal(raw, &nums); err != nil {
		return nil, formatError(path, "expected array of %d numbers", n)
	}
	if len(nums) != n {
		return nil, formatError(path, "expected %d numbers, have %d", n, len(nums))
	}
	return nums, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// IsFormatError is true if err is or wraps a *TraceFormatError.
func IsFormatError(err error) bool {
	var fe *TraceFormatError
	return errors.As(err, &fe)
}
