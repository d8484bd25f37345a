// Package history aggregates a speaker's presentation history into
// chart-ready series. Every function is pure and never returns an error for
// malformed data; it degrades to neutral values instead.
package history

import (
	"sort"
	"time"

	"github.com/noah-isme/oratoria-api/pkg/emotion"
)

// Record is one analysed presentation as seen by the aggregator.
type Record struct {
	ID              string
	Filename        string
	DominantEmotion string
	Confidence      float64
	CreatedAt       time.Time
	Transcript      string
	Distribution    emotion.Distribution
}

// Dominant returns the normalised dominant emotion.
func (r Record) Dominant() emotion.Key {
	return emotion.Normalize(r.DominantEmotion)
}

// Input selects the scoring variant for the record.
func (r Record) Input() emotion.Input {
	return emotion.InputFor(r.DominantEmotion, r.Distribution)
}

// SortByCreatedAt returns a copy ordered from oldest to newest. Records with
// equal timestamps keep their relative order.
func SortByCreatedAt(records []Record) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Recent returns up to n records, newest first.
func Recent(records []Record, n int) []Record {
	sorted := SortByCreatedAt(records)
	if n < 0 {
		n = 0
	}
	if n > len(sorted) {
		n = len(sorted)
	}
	out := make([]Record, 0, n)
	for i := len(sorted) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, sorted[i])
	}
	return out
}
