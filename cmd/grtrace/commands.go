package main

import (
	"context"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/npillmayer/graide/core/font/glyphinfo"
	"github.com/npillmayer/graide/core/percent"
	"github.com/npillmayer/graide/engine/glyphrun"
	"github.com/npillmayer/graide/engine/replay"
	"github.com/npillmayer/graide/engine/shaping"
	"github.com/npillmayer/graide/engine/trace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/bidi"
)

// app holds the settings shared by all commands.
type app struct {
	out        io.Writer
	level      string
	themeFile  string
	font       string // font for glyph names
	points     string // attachment point file
	kinds      string // comma-separated pass kinds
	nominalRTL bool
	kernEdges  bool
	mirror     bool
}

func (a *app) options() replay.Options {
	opts := replay.Options{
		NominalRTL: a.nominalRTL,
		KernEdges:  a.kernEdges,
		Mirror:     a.mirror,
	}
	if a.kinds != "" {
		var kinds replay.PassKindList
		for _, k := range strings.Split(a.kinds, ",") {
			kinds = append(kinds, replay.ParsePassKind(k))
		}
		opts.PassKinds = kinds
	}
	return opts
}

// glyphNames loads the glyph name source configured by flags, or returns nil.
func (a *app) glyphNames() (glyphrun.GlyphNamer, error) {
	var points *glyphinfo.AttachmentPoints
	if a.points != "" {
		var err error
		if points, err = glyphinfo.LoadAttachmentPoints(a.points); err != nil {
			return nil, err
		}
	}
	if a.font == "" {
		if points != nil {
			return points, nil
		}
		return nil, nil
	}
	src, err := glyphinfo.GlobalRegistry().Source(a.font)
	if err != nil {
		return nil, err
	}
	if tracer().GetTraceLevel() == tracing.LevelDebug {
		glyphinfo.GlobalRegistry().LogFontList()
	}
	if points != nil {
		return glyphinfo.WithPoints(src, points), nil
	}
	return src, nil
}

func (a *app) display() (display, error) {
	th, err := LoadTheme(a.themeFile)
	if err != nil {
		return display{}, err
	}
	names, err := a.glyphNames()
	if err != nil {
		return display{}, err
	}
	return display{out: a.out, theme: th, names: names}, nil
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:     "grtrace",
		Version: version,
		Short:   "Inspect the debug trace of a Graphite shaping run",
		Long: `grtrace replays the debug trace of a Graphite shaping engine.

It shows the glyph run after every pass, the effect of every rule within a
pass, and the moves of collision avoidance.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupTracing(a.level)
		},
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	root.SetOut(a.out)
	flags := root.PersistentFlags()
	flags.StringVar(&a.level, "trace", "Error", "Trace level [Debug|Info|Error]")
	flags.StringVar(&a.themeFile, "theme", "", "YAML theme file for highlight colors")
	flags.StringVar(&a.font, "font", "", "Font file or system font name for glyph names")
	flags.StringVar(&a.points, "ap", "", "Attachment point file (XML)")
	flags.StringVar(&a.kinds, "kinds", "", "Sub-table kind per pass, e.g. \"substitution,positioning\"")
	flags.BoolVar(&a.nominalRTL, "nominal-rtl", false, "Font is nominally right-to-left")
	flags.BoolVar(&a.kernEdges, "kern-edges", false, "Compute kern edges of kerning moves")
	flags.BoolVar(&a.mirror, "mirror", false, "Show every row in mirrored direction")
	root.AddCommand(
		newPassesCmd(a),
		newRulesCmd(a),
		newCollisionsCmd(a),
		newShapeCmd(a),
		newReplCmd(a),
	)
	return root
}

func newPassesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "passes <trace.json>",
		Short: "Show the glyph run after every pass",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := trace.ReadFile(args[0])
			if err != nil {
				return err
			}
			d, err := a.display()
			if err != nil {
				return err
			}
			return d.passes(replay.Passes(tr, a.options()))
		},
	}
}

func newRulesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rules <trace.json> <row>",
		Short: "Show the rules which produced a row of the pass table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := rowArg(args[1])
			if err != nil {
				return err
			}
			tr, err := trace.ReadFile(args[0])
			if err != nil {
				return err
			}
			d, err := a.display()
			if err != nil {
				return err
			}
			sr, err := replay.Passes(tr, a.options()).DrillDown(row)
			if err != nil {
				return err
			}
			return d.steps(sr)
		},
	}
}

func newCollisionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "collisions <trace.json> <pass>",
		Short: "Show the collision moves of a pass",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pass, err := rowArg(args[1])
			if err != nil {
				return err
			}
			tr, err := trace.ReadFile(args[0])
			if err != nil {
				return err
			}
			d, err := a.display()
			if err != nil {
				return err
			}
			sr, err := replay.Collisions(tr, pass, a.options())
			if err != nil {
				return err
			}
			if err = d.steps(sr); err != nil {
				return err
			}
			return d.render(d.slotTable(sr.Rows[len(sr.Rows)-1]))
		},
	}
}

func newShapeCmd(a *app) *cobra.Command {
	var (
		engine   string
		features string
		lang     string
		rtl      bool
		width    string
		timeout  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "shape <font> <text>",
		Short: "Shape a text with the Graphite engine and show its passes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := shapeRequest(args[0], args[1], features, lang, rtl, width)
			if err != nil {
				return err
			}
			if a.font == "" {
				a.font = req.Font
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			tr, err := shaping.CommandShaper{Command: engine}.Shape(ctx, req)
			if err != nil {
				return err
			}
			d, err := a.display()
			if err != nil {
				return err
			}
			return d.passes(replay.Passes(tr, a.options()))
		},
	}
	cmd.Flags().StringVar(&engine, "engine", shaping.DefaultCommand, "Graphite test program")
	cmd.Flags().StringVar(&features, "feat", "", "Feature settings, e.g. \"smcp=1,liga=0\"")
	cmd.Flags().StringVar(&lang, "lang", "", "BCP 47 language tag")
	cmd.Flags().BoolVar(&rtl, "rtl", false, "Text is right-to-left")
	cmd.Flags().StringVar(&width, "width", "", "Justification width in percent of natural width")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Time limit for the engine")
	return cmd
}

func newReplCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "repl <trace.json>",
		Short: "Step through a trace interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := trace.ReadFile(args[0])
			if err != nil {
				return err
			}
			d, err := a.display()
			if err != nil {
				return err
			}
			return newIntp(tr, a.options(), d).REPL()
		},
	}
}

// shapeRequest assembles a shaping request from command line arguments.
func shapeRequest(font, text, features, lang string, rtl bool, width string) (shaping.Request, error) {
	req := shaping.Request{
		Text:      text,
		Language:  language.Und,
		Direction: bidi.LeftToRight,
	}
	path, err := glyphinfo.Locate(font)
	if err != nil {
		return req, err
	}
	req.Font = path
	if req.Features, err = shaping.ParseFeatures(features); err != nil {
		return req, err
	}
	if lang != "" {
		if req.Language, err = language.Parse(lang); err != nil {
			return req, errUsage("invalid language tag %q", lang)
		}
	}
	if rtl {
		req.Direction = bidi.RightToLeft
	}
	if width != "" {
		if req.Width, err = percent.FromString(width); err != nil {
			return req, errUsage("invalid width %q", width)
		}
	}
	return req, nil
}

func rowArg(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errUsage("not a row number: %q", s)
	}
	return n, nil
}
