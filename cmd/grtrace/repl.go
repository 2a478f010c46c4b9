package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/derekparker/trie"
	"github.com/npillmayer/graide/core"
	"github.com/npillmayer/graide/engine/glyphrun"
	"github.com/npillmayer/graide/engine/replay"
	"github.com/npillmayer/graide/engine/trace"
	"github.com/pterm/pterm"
)

// Intp is our interpreter object
type Intp struct {
	repl     *readline.Instance
	commands *trie.Trie
	table    []replCommand
	d        display
	trace    *trace.Trace
	opts     replay.Options
	passes   *replay.PassReplay
	step     *replay.StepReplay // current drill-down, nil if none
}

type replCommand struct {
	name  string
	args  string
	help  string
	apply func(intp *Intp, args []string) error
}

func replCommands() []replCommand {
	return []replCommand{
		{"passes", "", "show the glyph run after every pass", (*Intp).showPasses},
		{"rules", "<row>", "show the rules which produced a row of the pass table", (*Intp).showRules},
		{"collisions", "<pass>", "show the collision moves of a pass", (*Intp).showCollisions},
		{"slots", "<row>", "show the slots of a row of the current table", (*Intp).showSlots},
		{"mirror", "", "toggle mirrored playback", (*Intp).toggleMirror},
		{"help", "", "list commands", (*Intp).help},
		{"quit", "", "leave", nil},
	}
}

func newIntp(tr *trace.Trace, opts replay.Options, d display) *Intp {
	intp := &Intp{
		commands: trie.New(),
		d:        d,
		trace:    tr,
		opts:     opts,
		passes:   replay.Passes(tr, opts),
		table:    replCommands(),
	}
	for i := range intp.table {
		intp.commands.Add(intp.table[i].name, &intp.table[i])
	}
	return intp
}

// lookup finds a command by name or by an unambiguous prefix of its name.
func (intp *Intp) lookup(word string) (*replCommand, error) {
	if node, ok := intp.commands.Find(word); ok {
		return node.Meta().(*replCommand), nil
	}
	keys := intp.commands.PrefixSearch(word)
	switch len(keys) {
	case 0:
		return nil, errUsage("unknown command %q, try 'help'", word)
	case 1:
		node, _ := intp.commands.Find(keys[0])
		return node.Meta().(*replCommand), nil
	}
	sort.Strings(keys)
	return nil, errUsage("ambiguous command %q: %s", word, strings.Join(keys, ", "))
}

// REPL starts interactive mode.
func (intp *Intp) REPL() error {
	repl, err := readline.New("graide > ")
	if err != nil {
		return err
	}
	defer repl.Close()
	intp.repl = repl
	pterm.Info.Println("Quit with <ctrl>D") // inform user how to stop the CLI
	if err := intp.showPasses(nil); err != nil {
		tracer().Errorf("%v", err)
	}
	for {
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		quit, err := intp.execute(line)
		if err != nil {
			intp.report(err)
			continue
		}
		if quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
	return nil
}

// report shows the user message of err.
func (intp *Intp) report(err error) {
	fmt.Fprintln(intp.d.out, pterm.Error.Sprint(core.UserMessage(err)))
}

// execute interprets a single command line.
func (intp *Intp) execute(line string) (quit bool, err error) {
	words := strings.Fields(line)
	if len(words) == 0 {
		return false, nil
	}
	cmd, err := intp.lookup(strings.ToLower(words[0]))
	if err != nil {
		return false, err
	}
	tracer().Debugf("command %s %v", cmd.name, words[1:])
	if cmd.apply == nil {
		return true, nil
	}
	return false, cmd.apply(intp, words[1:])
}

func (intp *Intp) showPasses(args []string) error {
	intp.step = nil
	return intp.d.passes(intp.passes)
}

func (intp *Intp) showRules(args []string) error {
	row, err := intp.rowArg(args, len(intp.passes.Rows))
	if err != nil {
		return err
	}
	if row == 0 {
		return errUsage("row 0 is the input of the first pass, no rules produced it")
	}
	sr, err := intp.passes.DrillDown(row)
	if err != nil {
		return err
	}
	intp.step = sr
	return intp.d.steps(sr)
}

func (intp *Intp) showCollisions(args []string) error {
	pass, err := intp.rowArg(args, len(intp.trace.Passes))
	if err != nil {
		return err
	}
	sr, err := replay.Collisions(intp.trace, pass, intp.opts)
	if err != nil {
		return err
	}
	intp.step = sr
	return intp.d.steps(sr)
}

func (intp *Intp) showSlots(args []string) error {
	var rows []*glyphrun.Run
	if intp.step != nil {
		rows = intp.step.Rows
	} else {
		for _, r := range intp.passes.Rows {
			rows = append(rows, r.Run)
		}
	}
	row, err := intp.rowArg(args, len(rows))
	if err != nil {
		return err
	}
	fmt.Fprintln(intp.d.out, rows[row].Label)
	return intp.d.render(intp.d.slotTable(rows[row]))
}

func (intp *Intp) toggleMirror(args []string) error {
	intp.opts.Mirror = !intp.opts.Mirror
	intp.passes = intp.passes.Mirrored()
	if intp.step != nil {
		intp.step = intp.step.Mirrored()
	}
	fmt.Fprintf(intp.d.out, "mirrored playback: %v\n", intp.opts.Mirror)
	return nil
}

func (intp *Intp) help(args []string) error {
	for _, c := range intp.table {
		fmt.Fprintf(intp.d.out, "  %-10s %-7s %s\n", c.name, c.args, c.help)
	}
	fmt.Fprintln(intp.d.out, "Commands may be abbreviated.")
	return nil
}

// rowArg reads a row number in [0,n) from the first argument.
func (intp *Intp) rowArg(args []string, n int) (int, error) {
	if len(args) == 0 {
		return 0, errUsage("missing row number")
	}
	row, err := strconv.Atoi(args[0])
	if err != nil || row < 0 || row >= n {
		return 0, errUsage("row number must be in [0,%d], is %q", n-1, args[0])
	}
	return row, nil
}
