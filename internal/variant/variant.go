package variant

import (
	"fmt"
	"strings"

	"github.com/kjstillabower/temperature-average-service/internal/extract"
)

// Profile names accepted in config.
const (
	ProfileLenient = "lenient"
	ProfileMinimal = "minimal"
)

// Options are the behavior switches that distinguish the lenient and minimal
// handlers. Each flag is independent; Lenient and Minimal are the two presets.
type Options struct {
	StrictValidation       bool // 400 on empty input
	AcceptAltDegreeGlyph   bool // º accepted alongside °
	IncludeCountInJSON     bool
	NegotiateHTML          bool // honor Accept: text/html on POST
	DecodeStructuredBodies bool // read JSON and form bodies instead of raw text only
}

// Lenient accepts every content type and glyph, validates input and negotiates the response format.
func Lenient() Options {
	return Options{
		StrictValidation:       true,
		AcceptAltDegreeGlyph:   true,
		IncludeCountInJSON:     true,
		NegotiateHTML:          true,
		DecodeStructuredBodies: true,
	}
}

// Minimal reads raw text only and always answers unvalidated JSON without a count.
func Minimal() Options {
	return Options{}
}

// ForProfile returns the preset for name (case-insensitive).
func ForProfile(name string) (Options, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ProfileLenient:
		return Lenient(), nil
	case ProfileMinimal:
		return Minimal(), nil
	default:
		return Options{}, fmt.Errorf("unknown variant profile %q", name)
	}
}

// ExtractOptions returns the extractor settings implied by o.
func (o Options) ExtractOptions() extract.Options {
	return extract.Options{AcceptAltDegreeGlyph: o.AcceptAltDegreeGlyph}
}

// Label is a low-cardinality metric label for the glyph mode.
func (o Options) Label() string {
	if o.AcceptAltDegreeGlyph {
		return ProfileLenient
	}
	return ProfileMinimal
}
