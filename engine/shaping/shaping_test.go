package shaping

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/graide/core"
	"github.com/npillmayer/graide/core/percent"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/bidi"
)

func TestParseFeatures(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "graide.shaping")
	defer teardown()
	//
	fs, err := ParseFeatures("smcp=1, liga=0,,1001")
	require.NoError(t, err)
	assert.Equal(t, []Feature{{"smcp", 1}, {"liga", 0}, {"1001", 1}}, fs)
	_, err = ParseFeatures("smcp=on")
	assert.Equal(t, core.EINVALID, core.Code(err))
	_, err = ParseFeatures("=1")
	assert.Error(t, err)
}

func TestArguments(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "graide.shaping")
	defer teardown()
	//
	req := Request{
		Font:      "Padauk.ttf",
		Text:      "ab",
		Features:  []Feature{{"smcp", 1}},
		Language:  language.MustParse("my-MM"),
		Direction: bidi.RightToLeft,
		Width:     120,
	}
	args := Arguments(req, "out.json")
	assert.Equal(t, []string{"Padauk.ttf", "-codes", "0061", "0062", "-trace", "out.json",
		"-rtl", "-feat", "smcp=1", "-lang", "my", "-justify", "120"}, args)
	//
	req = Request{Font: "f.ttf", Text: "€", Language: language.Und, Width: percent.Natural}
	assert.Equal(t, []string{"f.ttf", "-codes", "20AC", "-trace", "t"}, Arguments(req, "t"))
}

func TestValidate(t *testing.T) {
	assert.Error(t, Request{Text: "a"}.Validate())
	assert.Error(t, Request{Font: "f"}.Validate())
	assert.Error(t, Request{Font: "f", Text: "a", Direction: bidi.Mixed}.Validate())
	assert.NoError(t, Request{Font: "f", Text: "a"}.Validate())
}

// TestHelperProcess is not a real test. It stands in for the shaping engine
// when run as a sub-process of TestCommandShaper.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GRAIDE_HELPER_PROCESS") != "1" {
		return
	}
	args := os.Args
	for i, a := range args {
		if a == "-trace" && i+1 < len(args) {
			data, err := os.ReadFile(filepath.Join("..", "trace", "testdata", "twopass.json"))
			if err == nil {
				err = os.WriteFile(args[i+1], data, 0644)
			}
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			os.Exit(0)
		}
	}
	fmt.Fprintln(os.Stderr, "no trace file given")
	os.Exit(1)
}

func TestCommandShaper(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "graide.shaping")
	defer teardown()
	//
	cs := CommandShaper{
		Command: os.Args[0],
		Args:    []string{"-test.run=TestHelperProcess", "--"},
		Env:     []string{"GRAIDE_HELPER_PROCESS=1"},
	}
	tr, err := cs.Shape(context.Background(), Request{Font: "f.ttf", Text: "ab"})
	require.NoError(t, err)
	assert.Len(t, tr.Passes, 2)
	//
	cs.Env = nil // helper now behaves as a regular test binary and writes no trace
	_, err = cs.Shape(context.Background(), Request{Font: "f.ttf", Text: "ab"})
	assert.Error(t, err)
	//
	cs = CommandShaper{Command: filepath.Join(t.TempDir(), "no-such-engine")}
	_, err = cs.Shape(context.Background(), Request{Font: "f.ttf", Text: "ab"})
	assert.Equal(t, core.ECONNECTION, core.Code(err))
}
