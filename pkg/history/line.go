package history

import (
	"time"

	"github.com/noah-isme/oratoria-api/pkg/emotion"
)

const defaultMovingAverageWindow = 3

// LineOptions configures BuildLineSeries.
type LineOptions struct {
	// Location is used for date labels. Defaults to UTC.
	Location *time.Location
	// MovingAverageWindow defaults to 3.
	MovingAverageWindow int
}

// Point is one presentation on the score line.
type Point struct {
	PresentationID string    `json:"presentation_id"`
	Label          string    `json:"label"`
	Score          float64   `json:"score"`
	CreatedAt      time.Time `json:"created_at"`
}

// LineSeries is the display-score history of a speaker.
type LineSeries struct {
	Points        []Point   `json:"points"`
	Average       float64   `json:"average"`
	Best          float64   `json:"best"`
	MovingAverage []float64 `json:"moving_average"`
}

// Labels returns the point labels in order.
func (s LineSeries) Labels() []string {
	out := make([]string, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Label
	}
	return out
}

// Scores returns the point scores in order.
func (s LineSeries) Scores() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Score
	}
	return out
}

// BuildLineSeries scores each record with its display score, oldest first.
func BuildLineSeries(records []Record, opts LineOptions) LineSeries {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	window := opts.MovingAverageWindow
	if window <= 0 {
		window = defaultMovingAverageWindow
	}

	sorted := SortByCreatedAt(records)
	series := LineSeries{Points: make([]Point, 0, len(sorted))}
	var sum, best float64
	for _, r := range sorted {
		score := emotion.DisplayScore(r.Input())
		series.Points = append(series.Points, Point{
			PresentationID: r.ID,
			Label:          ShortDate(r.CreatedAt.In(loc)),
			Score:          score,
			CreatedAt:      r.CreatedAt,
		})
		sum += score
		if score > best {
			best = score
		}
	}
	n := len(sorted)
	if n == 0 {
		n = 1
	}
	series.Average = emotion.Round1(sum / float64(n))
	series.Best = emotion.Round1(best)
	series.MovingAverage = MovingAverage(series.Scores(), window)
	return series
}

// RawScores returns the unrounded score of each record, oldest first.
func RawScores(records []Record) []float64 {
	sorted := SortByCreatedAt(records)
	out := make([]float64, len(sorted))
	for i, r := range sorted {
		out[i] = emotion.RawScore(r.Input())
	}
	return out
}

// Mean returns the arithmetic mean of values, or 0 when empty.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// MovingAverage returns the trailing mean over window values. The first
// window-1 entries average over what is available.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 || len(values) == 0 {
		copy(out, values)
		return out
	}
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}
