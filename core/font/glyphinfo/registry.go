package glyphinfo

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/image/font/gofont/goregular"
)

// Registry is a type for holding glyph sources of loaded fonts.
type Registry struct {
	sync.Mutex
	sources map[string]*SFNTSource
}

var globalRegistry *Registry

var globalRegistryCreation sync.Once

// GlobalRegistry is an application-wide singleton to hold loaded fonts.
func GlobalRegistry() *Registry {
	globalRegistryCreation.Do(func() {
		globalRegistry = NewRegistry()
	})
	return globalRegistry
}

func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]*SFNTSource)}
}

// Source returns the glyph source for a font, given as a file path or as the
// name of a system font. Fonts are loaded once and cached under their
// normalized name.
//
// If the font cannot be loaded, Source returns the fallback source together
// with an error.
func (r *Registry) Source(name string) (*SFNTSource, error) {
	key := NormalizeFontname(name)
	r.Lock()
	defer r.Unlock()
	if src, ok := r.sources[key]; ok {
		tracer().Debugf("registry found font %s", key)
		return src, nil
	}
	path, err := Locate(name)
	if err == nil {
		var src *SFNTSource
		if src, err = LoadFont(path); err == nil {
			tracer().Infof("registry stores font %s as %s", src.Name, key)
			r.sources[key] = src
			return src, nil
		}
	}
	tracer().Infof("registry cannot load font %s, using fallback font", name)
	return FallbackSource(), err
}

// LogFontList is a helper function to dump the list of known fonts in a
// registry to the trace-file (log-level Info).
func (r *Registry) LogFontList() {
	level := tracer().GetTraceLevel()
	tracer().SetTraceLevel(tracing.LevelInfo)
	r.Lock()
	defer r.Unlock()
	tracer().Infof("--- registered fonts ---")
	for k, src := range r.sources {
		tracer().Infof("font [%s] = %s, %d glyphs", k, src.Name, src.NumGlyphs())
	}
	tracer().Infof("------------------------")
	tracer().SetTraceLevel(level)
}

// NormalizeFontname derives a registry key from a font name or path:
// "/fonts/Padauk Book.ttf" becomes "padauk_book".
func NormalizeFontname(fname string) string {
	fname = filepath.Base(strings.TrimSpace(fname))
	if dot := strings.LastIndex(fname, "."); dot > 0 {
		fname = fname[:dot]
	}
	fname = strings.ReplaceAll(fname, " ", "_")
	return strings.ToLower(fname)
}

// --- Fallback font ---------------------------------------------------------

// FallbackSource returns a glyph source to be used if everything else fails.
// It is always present. Currently we use Go Sans.
func FallbackSource() *SFNTSource {
	fallbackLoading.Do(func() {
		var err error
		if fallback, err = ParseFont(goregular.TTF); err != nil {
			panic("cannot load fallback font") // this cannot happen
		}
	})
	return fallback
}

var fallbackLoading sync.Once

var fallback *SFNTSource
