package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/npillmayer/graide/core/font/glyphinfo"
	"github.com/npillmayer/graide/engine/glyphrun"
	"github.com/npillmayer/graide/engine/replay"
	"github.com/pterm/pterm"
)

// display renders replays as tables.
type display struct {
	out   io.Writer
	theme *Theme
	names glyphrun.GlyphNamer // may be nil
}

func (d display) glyphName(s *glyphrun.Slot) string {
	if d.names == nil {
		return "g" + strconv.Itoa(s.GID)
	}
	return d.names.GlyphName(s.GID)
}

// glyphs lists the glyphs of a run in visual order, styled by highlight.
func (d display) glyphs(run *glyphrun.Run) string {
	var b strings.Builder
	for i, s := range run.Slots {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(d.theme.Sprint(s.Highlight, d.glyphName(s)))
	}
	if run.Edges != nil {
		b.WriteString(" | kern edges of #")
		b.WriteString(strconv.Itoa(run.Edges.Slot))
	}
	return b.String()
}

func (d display) passTable(pr *replay.PassReplay) pterm.TableData {
	data := pterm.TableData{{"#", "Pass", "", "Glyphs"}}
	for i, row := range pr.Rows {
		data = append(data, []string{
			strconv.Itoa(i),
			row.Label,
			d.theme.StatusLabel(row.Status),
			d.glyphs(row.Run),
		})
	}
	return data
}

func (d display) stepTable(sr *replay.StepReplay) pterm.TableData {
	data := pterm.TableData{{"#", "Step", "Glyphs"}}
	for i, run := range sr.Rows {
		data = append(data, []string{strconv.Itoa(i), run.Label, d.glyphs(run)})
	}
	return data
}

func (d display) shiftTable(sr *replay.StepReplay) pterm.TableData {
	data := pterm.TableData{{"Slot", "Shift"}}
	for _, sh := range sr.Shifts {
		data = append(data, []string{"#" + strconv.Itoa(sh.Slot), sh.Shift.String()})
	}
	return data
}

func (d display) slotTable(run *glyphrun.Run) pterm.TableData {
	data := pterm.TableData{{"Slot", "Glyph", "Origin", "Advance", "Highlight", "Anchors", "Collision"}}
	for _, s := range run.Slots {
		data = append(data, []string{
			"#" + strconv.Itoa(s.ID),
			fmt.Sprintf("%s (%d)", d.glyphName(s), s.GID),
			s.Origin.String(),
			s.Advance.String(),
			s.Highlight.String(),
			d.anchors(s),
			collisionText(s),
		})
	}
	return data
}

// anchors lists the attachment points of a slot's glyph, if known.
func (d display) anchors(s *glyphrun.Slot) string {
	src, ok := d.names.(glyphinfo.Source)
	if !ok {
		return ""
	}
	var parts []string
	for _, a := range src.Anchors(s.GID) {
		parts = append(parts, a.Name+a.At.String())
	}
	return strings.Join(parts, " ")
}

func collisionText(s *glyphrun.Slot) string {
	c := s.Collision
	if c == nil {
		return ""
	}
	parts := []string{"offset " + c.Offset.String()}
	if !c.Pending.IsZero() {
		parts = append(parts, "pending "+c.Pending.String())
	}
	if c.StillBad {
		parts = append(parts, "still bad")
	}
	for _, r := range c.Removals {
		parts = append(parts, fmt.Sprintf("removed [%s,%s] by #%d", r.Lo, r.Hi, r.By))
	}
	for _, b := range c.Best {
		parts = append(parts, fmt.Sprintf("best %g (cost %g)", b.Value, b.Cost))
	}
	return strings.Join(parts, ", ")
}

func (d display) render(data pterm.TableData) error {
	s, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(d.out, s)
	return err
}

func (d display) passes(pr *replay.PassReplay) error {
	if pr.Empty {
		fmt.Fprintln(d.out, "trace has no passes")
	}
	return d.render(d.passTable(pr))
}

func (d display) steps(sr *replay.StepReplay) error {
	if err := d.render(d.stepTable(sr)); err != nil {
		return err
	}
	if len(sr.Shifts) > 0 {
		if err := d.render(d.shiftTable(sr)); err != nil {
			return err
		}
	}
	if sr.Skipped > 0 {
		fmt.Fprintf(d.out, "%d events referenced slots not present in the run\n", sr.Skipped)
	}
	return nil
}
