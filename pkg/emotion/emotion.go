package emotion

import (
	"math"
	"sort"
	"strings"
)

// Key identifies one of the six emotional categories reported by the analysis backend.
type Key string

const (
	Nerviosa   Key = "nerviosa"
	Ansiosa    Key = "ansiosa"
	Neutra     Key = "neutra"
	Confiada   Key = "confiada"
	Motivada   Key = "motivada"
	Entusiasta Key = "entusiasta"
)

// Ordered lists the keys from the lowest to the highest base value.
var Ordered = []Key{Nerviosa, Ansiosa, Neutra, Confiada, Motivada, Entusiasta}

// DisplayOrder is the order used by the per-presentation emotion breakdown.
var DisplayOrder = []Key{Confiada, Ansiosa, Entusiasta, Motivada, Nerviosa, Neutra}

var baseTable = map[Key]float64{
	Nerviosa:   0,
	Ansiosa:    1,
	Neutra:     2,
	Confiada:   3,
	Motivada:   4,
	Entusiasta: 5,
}

var labels = map[Key]string{
	Confiada:   "Confiada",
	Ansiosa:    "Ansiosa",
	Entusiasta: "Entusiasta",
	Motivada:   "Motivada",
	Nerviosa:   "Nerviosa",
	Neutra:     "Neutra",
}

var colors = map[Key]string{
	Confiada:   "#22c55e",
	Ansiosa:    "#ef4444",
	Entusiasta: "#06b6d4",
	Motivada:   "#f59e0b",
	Nerviosa:   "#8b5cf6",
	Neutra:     "#9ca3af",
}

const fallbackColor = "#9ca3af"

// Normalize lower-cases a raw emotion name. Empty input maps to Neutra.
func Normalize(raw string) Key {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return Neutra
	}
	return Key(trimmed)
}

// Known reports whether k belongs to the closed emotion set.
func (k Key) Known() bool {
	_, ok := baseTable[k]
	return ok
}

// Base returns the ordinal value of k on the 0..5 scale. Unknown keys use Neutra's value.
func Base(k Key) float64 {
	if v, ok := baseTable[k]; ok {
		return v
	}
	return baseTable[Neutra]
}

// Label returns the display label, or the raw key when it is not part of the set.
func (k Key) Label() string {
	if l, ok := labels[k]; ok {
		return l
	}
	return string(k)
}

// Color returns the chart colour assigned to k.
func (k Key) Color() string {
	if c, ok := colors[k]; ok {
		return c
	}
	return fallbackColor
}

// Distribution maps emotion keys to probabilities in [0,1]. Values are not
// required to sum to one and are never normalised. A nil Distribution means
// the backend did not provide one.
type Distribution map[Key]float64

// Prob returns the probability for k and whether the key was present.
func (d Distribution) Prob(k Key) (float64, bool) {
	if d == nil {
		return 0, false
	}
	v, ok := d[k]
	return v, ok
}

// keys returns the known keys in base order followed by unknown keys sorted
// lexically, so float sums do not depend on map iteration order.
func (d Distribution) keys() []Key {
	out := make([]Key, 0, len(d))
	for _, k := range Ordered {
		if _, ok := d[k]; ok {
			out = append(out, k)
		}
	}
	extra := make([]Key, 0)
	for k := range d {
		if !k.Known() {
			extra = append(extra, k)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}

// Percent returns the probability of k as a whole percentage.
func (d Distribution) Percent(k Key) int {
	v, _ := d.Prob(k)
	return int(RoundHalfUp(v * 100))
}

// Levels010 rescales every probability to 0..10 with one decimal.
func (d Distribution) Levels010() map[Key]float64 {
	out := make(map[Key]float64, len(d))
	for k, v := range d {
		out[k] = RoundHalfUp(v*10*10) / 10
	}
	return out
}

// FromStrings converts a decoded JSON object into a Distribution, lower-casing keys.
func FromStrings(raw map[string]float64) Distribution {
	if raw == nil {
		return nil
	}
	out := make(Distribution, len(raw))
	for k, v := range raw {
		out[Normalize(k)] += v
	}
	return out
}

// RoundHalfUp rounds to the nearest integer with halves going towards +Inf.
func RoundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

// Round1 rounds to one decimal place.
func Round1(x float64) float64 {
	return RoundHalfUp(x*10) / 10
}
