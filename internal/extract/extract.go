package extract

import (
	"math"
	"regexp"
	"strconv"

	"github.com/kjstillabower/temperature-average-service/internal/models"
)

var (
	// pairPattern matches 25°/14° only.
	pairPattern = regexp.MustCompile(`(\d+)°/(\d+)°`)
	// lenientPairPattern also accepts the masculine ordinal º that forecast
	// copy often uses in place of the degree sign.
	lenientPairPattern = regexp.MustCompile(`(\d+)[°º]/(\d+)[°º]`)
)

// Options selects the glyphs the extractor accepts.
type Options struct {
	AcceptAltDegreeGlyph bool
}

// Extractor finds day/night temperature pairs in free-form text.
// It holds no mutable state and is safe for concurrent use.
type Extractor struct {
	pattern *regexp.Regexp
	lenient bool
}

// New returns an Extractor for the given options.
func New(opts Options) *Extractor {
	if opts.AcceptAltDegreeGlyph {
		return &Extractor{pattern: lenientPairPattern, lenient: true}
	}
	return &Extractor{pattern: pairPattern}
}

// Lenient reports whether the alternate degree glyph is accepted.
func (e *Extractor) Lenient() bool {
	return e.lenient
}

// Pairs returns every non-overlapping pair in text, scanning left to right.
// A group too large for int is skipped along with its pair.
func (e *Extractor) Pairs(text string) []models.TemperaturePair {
	matches := e.pattern.FindAllStringSubmatch(text, -1)
	pairs := make([]models.TemperaturePair, 0, len(matches))
	for _, m := range matches {
		day, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		night, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		pairs = append(pairs, models.TemperaturePair{Day: day, Night: night})
	}
	return pairs
}

// ComputeAverages returns the match count and the arithmetic mean of the day
// and night columns. Text without matches yields the zero result.
func (e *Extractor) ComputeAverages(text string) models.ExtractionResult {
	pairs := e.Pairs(text)
	if len(pairs) == 0 {
		return models.ExtractionResult{}
	}
	var daySum, nightSum float64
	for _, p := range pairs {
		daySum += float64(p.Day)
		nightSum += float64(p.Night)
	}
	n := float64(len(pairs))
	return models.ExtractionResult{
		Count:        len(pairs),
		DayAverage:   daySum / n,
		NightAverage: nightSum / n,
	}
}

// Round1 rounds v to one decimal place for display.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
