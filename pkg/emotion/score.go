package emotion

import (
	"fmt"
	"math"
	"strings"
)

const (
	minDisplayScore = 0.5
	maxScore        = 5.0
)

// MaxLevel is the highest index LevelIndex returns.
const MaxLevel = 5

// Names are the anchor names of the 0..5 continuum, one per integer step.
var Names = [6]string{"Nervioso", "Ansioso", "Neutro", "Confiado", "Motivado", "Entusiasta"}

// ScoreOptions controls post-processing of the weighted sum.
type ScoreOptions struct {
	RoundToHalf bool
	Clamp       bool
}

var (
	// DisplayOptions produces star scores: nearest 0.5 within [0.5, 5].
	DisplayOptions = ScoreOptions{RoundToHalf: true, Clamp: true}
	// RawOptions keeps the unrounded weighted sum.
	RawOptions = ScoreOptions{}
)

// ComputeScore returns the probability-weighted sum of base values. A nil
// distribution yields 0 regardless of options.
func ComputeScore(d Distribution, opts ScoreOptions) float64 {
	if d == nil {
		return 0
	}
	var score float64
	for _, k := range d.keys() {
		score += d[k] * Base(k)
	}
	if opts.RoundToHalf {
		score = RoundHalfUp(score*2) / 2
	}
	if opts.Clamp {
		score = math.Max(minDisplayScore, math.Min(maxScore, score))
	}
	return score
}

// Percentage maps a 0..5 score to 0..100 with one decimal.
func Percentage(raw float64) float64 {
	return Round1(raw / maxScore * 100)
}

// LevelIndex returns the 1-based integer level of raw, clamped to 1..5.
func LevelIndex(raw float64) int {
	idx := int(math.Floor(raw)) + 1
	if idx < 1 {
		return 1
	}
	if idx > MaxLevel {
		return MaxLevel
	}
	return idx
}

// WithinLevelPct is the fractional progress inside the current integer level.
func WithinLevelPct(raw float64) int {
	return int(RoundHalfUp((raw - math.Floor(raw)) * 100))
}

// ToNextPct is the remaining progress to the next integer level.
func ToNextPct(raw float64) int {
	return 100 - WithinLevelPct(raw)
}

func anchorIndex(raw float64) int {
	i := int(math.Floor(raw))
	if i < 0 {
		i = 0
	}
	if i > len(Names)-2 {
		i = len(Names) - 2
	}
	return i
}

// BetweenLabel names the two adjacent anchors raw sits between.
func BetweenLabel(raw float64) string {
	i := anchorIndex(raw)
	return fmt.Sprintf("Entre %s y %s", Names[i], Names[i+1])
}

// SegmentLabel names the transition covered by gauge segment i (0-based).
func SegmentLabel(i int) string {
	if i < 0 || i > len(Names)-2 {
		return ""
	}
	return fmt.Sprintf("%s → %s", Names[i], Names[i+1])
}

// Input is the scoring input of a single presentation: either a full
// distribution or just the dominant emotion.
type Input interface {
	isInput()
}

// WithDistribution scores from the probability distribution.
type WithDistribution struct {
	Distribution Distribution
}

// DominantOnly scores from the anchor table of the dominant emotion.
type DominantOnly struct {
	Dominant Key
}

func (WithDistribution) isInput() {}
func (DominantOnly) isInput()     {}

// InputFor picks WithDistribution when d has at least one entry.
func InputFor(dominant string, d Distribution) Input {
	if len(d) > 0 {
		return WithDistribution{Distribution: d}
	}
	return DominantOnly{Dominant: Normalize(dominant)}
}

var starsAnchor = map[Key]float64{
	Nerviosa:   1,
	Ansiosa:    2,
	Neutra:     2,
	Confiada:   3,
	Motivada:   4,
	Entusiasta: 5,
}

const defaultAnchor = 2

// DisplayScore returns the star score used by line charts.
func DisplayScore(in Input) float64 {
	switch v := in.(type) {
	case WithDistribution:
		return ComputeScore(v.Distribution, DisplayOptions)
	case DominantOnly:
		if s, ok := starsAnchor[v.Dominant]; ok {
			return s
		}
		return defaultAnchor
	default:
		panic(fmt.Sprintf("emotion: unsupported input %T", in))
	}
}

// RawScore returns the unrounded score used by the gauge and trend deltas.
func RawScore(in Input) float64 {
	switch v := in.(type) {
	case WithDistribution:
		return ComputeScore(v.Distribution, RawOptions)
	case DominantOnly:
		if s, ok := baseTable[v.Dominant]; ok {
			return s
		}
		return defaultAnchor
	default:
		panic(fmt.Sprintf("emotion: unsupported input %T", in))
	}
}

// ConfidenceStars converts a 0..1 confidence into 1..5 stars.
func ConfidenceStars(confidence float64) int {
	stars := int(RoundHalfUp(confidence * 5))
	if stars < 1 {
		return 1
	}
	return stars
}

// StarsLine renders n (0..5, halves allowed) as a five glyph string.
func StarsLine(n float64) string {
	const total = 5
	if n < 0 {
		n = 0
	}
	if n > total {
		n = total
	}
	full := int(math.Floor(n))
	half := 0
	if math.Mod(n, 1) >= 0.5 {
		half = 1
	}
	return strings.Repeat("★", full) + strings.Repeat("⯪", half) + strings.Repeat("☆", total-full-half)
}
