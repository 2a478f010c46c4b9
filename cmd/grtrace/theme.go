package main

import (
	"os"
	"strings"

	"github.com/npillmayer/graide/core"
	"github.com/npillmayer/graide/engine/glyphrun"
	"github.com/npillmayer/graide/engine/replay"
	"github.com/pterm/pterm"
	"gopkg.in/yaml.v3"
)

// Theme maps highlight kinds to terminal styles and row states to labels.
//
// A theme file is YAML:
//
//	highlights:
//	  input: [black, bg-yellow]
//	  failed: [white, bg-red, bold]
//	status:
//	  active: "*"
type Theme struct {
	Highlights map[string][]string `yaml:"highlights"`
	Status     map[string]string   `yaml:"status"`
	styles     map[glyphrun.Highlight]pterm.Style
}

var colorNames = map[string]pterm.Color{
	"black":         pterm.FgBlack,
	"red":           pterm.FgRed,
	"green":         pterm.FgGreen,
	"yellow":        pterm.FgYellow,
	"blue":          pterm.FgBlue,
	"magenta":       pterm.FgMagenta,
	"cyan":          pterm.FgCyan,
	"white":         pterm.FgWhite,
	"gray":          pterm.FgGray,
	"light-red":     pterm.FgLightRed,
	"light-green":   pterm.FgLightGreen,
	"light-yellow":  pterm.FgLightYellow,
	"light-blue":    pterm.FgLightBlue,
	"light-magenta": pterm.FgLightMagenta,
	"light-cyan":    pterm.FgLightCyan,
	"bg-black":      pterm.BgBlack,
	"bg-red":        pterm.BgRed,
	"bg-green":      pterm.BgGreen,
	"bg-yellow":     pterm.BgYellow,
	"bg-blue":       pterm.BgBlue,
	"bg-magenta":    pterm.BgMagenta,
	"bg-cyan":       pterm.BgCyan,
	"bg-white":      pterm.BgWhite,
	"bg-gray":       pterm.BgGray,
	"bold":          pterm.Bold,
	"italic":        pterm.Italic,
	"underscore":    pterm.Underscore,
}

// DefaultTheme returns the built-in theme.
func DefaultTheme() *Theme {
	th := &Theme{
		Highlights: map[string][]string{
			"input":    {"black", "bg-yellow"},
			"output":   {"black", "bg-green"},
			"inAndOut": {"black", "bg-cyan"},
			"failed":   {"white", "bg-red"},
			"exclude":  {"gray"},
		},
		Status: map[string]string{
			"active":      "●",
			"semi-active": "◐",
			"inactive":    "",
		},
	}
	if err := th.compile(); err != nil {
		panic(err) // built-in theme is valid
	}
	return th
}

// LoadTheme reads a theme file. Entries of the file override the default theme.
func LoadTheme(path string) (*Theme, error) {
	if path == "" {
		return DefaultTheme(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "cannot read theme %s", path)
	}
	return ParseTheme(data)
}

// ParseTheme parses a YAML theme on top of the default theme.
func ParseTheme(data []byte) (*Theme, error) {
	var user Theme
	if err := yaml.Unmarshal(data, &user); err != nil {
		return nil, core.WrapError(err, core.EFORMAT, "invalid theme: %v", err)
	}
	th := DefaultTheme()
	for k, v := range user.Highlights {
		th.Highlights[k] = v
	}
	for k, v := range user.Status {
		if replay.ParseStatus(k) == replay.Inactive && k != "inactive" {
			return nil, core.Error(core.EINVALID, "theme: unknown row status %q", k)
		}
		th.Status[k] = v
	}
	if err := th.compile(); err != nil {
		return nil, err
	}
	return th, nil
}

func (th *Theme) compile() error {
	th.styles = make(map[glyphrun.Highlight]pterm.Style, len(th.Highlights))
	for name, colors := range th.Highlights {
		h, ok := glyphrun.ParseHighlight(name)
		if !ok {
			return core.Error(core.EINVALID, "theme: unknown highlight %q", name)
		}
		style := make(pterm.Style, 0, len(colors))
		for _, c := range colors {
			color, ok := colorNames[strings.ToLower(strings.TrimSpace(c))]
			if !ok {
				return core.Error(core.EINVALID, "theme: unknown color %q for %s", c, name)
			}
			style = append(style, color)
		}
		th.styles[h] = style
	}
	return nil
}

// Sprint styles s for highlight kind h.
func (th *Theme) Sprint(h glyphrun.Highlight, s string) string {
	if style, ok := th.styles[h]; ok && len(style) > 0 {
		return style.Sprint(s)
	}
	return s
}

// StatusLabel returns the label for a row status.
func (th *Theme) StatusLabel(s replay.Status) string {
	if l, ok := th.Status[s.String()]; ok {
		return l
	}
	return s.String()
}
