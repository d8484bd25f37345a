package history

import "github.com/noah-isme/oratoria-api/pkg/emotion"

// Trend compares the first, previous and last raw scores of a series.
type Trend struct {
	TotalDeltaPct     int `json:"total_delta_pct"`
	TotalDeltaLevels  int `json:"total_delta_levels"`
	RecentDeltaPct    int `json:"recent_delta_pct"`
	RecentDeltaLevels int `json:"recent_delta_levels"`
}

// ComputeTrendDeltas derives percentage-point and level deltas from raw
// scores ordered oldest first. Recent deltas need at least two scores.
func ComputeTrendDeltas(raws []float64) Trend {
	var t Trend
	n := len(raws)
	if n == 0 {
		return t
	}
	first, last := raws[0], raws[n-1]
	t.TotalDeltaPct = int(emotion.RoundHalfUp(pct(last) - pct(first)))
	t.TotalDeltaLevels = emotion.LevelIndex(last) - emotion.LevelIndex(first)
	if n >= 2 {
		prev := raws[n-2]
		t.RecentDeltaPct = int(emotion.RoundHalfUp(pct(last) - pct(prev)))
		t.RecentDeltaLevels = emotion.LevelIndex(last) - emotion.LevelIndex(prev)
	}
	return t
}

func pct(raw float64) float64 {
	return raw / 5 * 100
}
