package shaping

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/npillmayer/graide/core"
	"github.com/npillmayer/graide/core/percent"
	"github.com/npillmayer/graide/engine/trace"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/bidi"
)

// A Shaper shapes a test string with a font and reports the trace of the
// shaping run.
type Shaper interface {
	Shape(context.Context, Request) (*trace.Trace, error)
}

// Request collects shaping parameters.
type Request struct {
	Font      string          // path of the font file
	Text      string          // UTF-8 test string
	Features  []Feature       // feature settings
	Language  language.Tag    // BCP 47 language tag, language.Und for none
	Direction bidi.Direction  // base direction of the test string
	Width     percent.Percent // justification width relative to natural width, 0 for none
}

// Feature sets a Graphite feature to a value.
type Feature struct {
	ID    string // feature ID, a 4-letter tag or a numeric ID
	Value int
}

func (f Feature) String() string {
	return f.ID + "=" + strconv.Itoa(f.Value)
}

// ParseFeatures parses a feature list as "smcp=1,liga=0". A feature without
// a value is switched on.
func ParseFeatures(s string) ([]Feature, error) {
	var features []Feature
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		id, val, found := strings.Cut(item, "=")
		f := Feature{ID: strings.TrimSpace(id), Value: 1}
		if f.ID == "" {
			return nil, errShaper(fmt.Sprintf("feature setting without ID: %q", item))
		}
		if found {
			n, err := strconv.Atoi(strings.TrimSpace(val))
			if err != nil {
				return nil, errShaper(fmt.Sprintf("feature %s: value is not a number: %q", f.ID, val))
			}
			f.Value = n
		}
		features = append(features, f)
	}
	return features, nil
}

// Validate checks a request for completeness.
func (req Request) Validate() error {
	if req.Font == "" {
		return errShaper("no font given")
	}
	if req.Text == "" {
		return errShaper("empty test string")
	}
	if req.Direction != bidi.LeftToRight && req.Direction != bidi.RightToLeft {
		return errShaper("direction must be left-to-right or right-to-left")
	}
	return nil
}

// errShaper produces user level errors for shaping requests.
func errShaper(x string) error {
	return core.Error(core.EINVALID, "Graphite shaping: %s", x)
}
