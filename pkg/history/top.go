package history

import (
	"fmt"

	"github.com/noah-isme/oratoria-api/pkg/emotion"
)

// Tiebreak names the rule that settled a tie for the most frequent emotion.
type Tiebreak string

const (
	TiebreakNone       Tiebreak = ""
	TiebreakConfidence Tiebreak = "confianza"
	TiebreakRecency    Tiebreak = "recencia"
)

const emptyLabel = "—"

// TopEmotion is the most frequent dominant emotion of a history.
type TopEmotion struct {
	Key      emotion.Key `json:"key,omitempty"`
	Label    string      `json:"label"`
	Count    int         `json:"count"`
	Total    int         `json:"total"`
	Tie      bool        `json:"tie"`
	TiedWith []string    `json:"tied_with"`
	Tiebreak Tiebreak    `json:"tiebreak"`
	Note     string      `json:"note"`
}

type emotionTally struct {
	count     int
	lastIndex int
	confSum   float64
	confN     int
}

// TopEmotionWithTiebreak counts dominant emotions. Ties are settled by the
// highest mean probability of each candidate over the records where it was
// dominant; when that does not single out one candidate, the most recently
// seen candidate wins.
func TopEmotionWithTiebreak(records []Record) TopEmotion {
	sorted := SortByCreatedAt(records)
	if len(sorted) == 0 {
		return TopEmotion{Label: emptyLabel, TiedWith: []string{}}
	}

	tallies := make(map[emotion.Key]*emotionTally)
	order := make([]emotion.Key, 0)
	for i, r := range sorted {
		key := r.Dominant()
		t, ok := tallies[key]
		if !ok {
			t = &emotionTally{}
			tallies[key] = t
			order = append(order, key)
		}
		t.count++
		t.lastIndex = i
		if p, ok := r.Distribution.Prob(key); ok {
			t.confSum += p
			t.confN++
		}
	}

	maxCount := 0
	for _, k := range order {
		if tallies[k].count > maxCount {
			maxCount = tallies[k].count
		}
	}
	candidates := make([]emotion.Key, 0)
	for _, k := range order {
		if tallies[k].count == maxCount {
			candidates = append(candidates, k)
		}
	}

	result := TopEmotion{Count: maxCount, Total: len(sorted), TiedWith: []string{}}
	if len(candidates) == 1 {
		result.Key = candidates[0]
		result.Label = candidates[0].Label()
		return result
	}
	result.Tie = true

	if winner, note, ok := byConfidence(candidates, tallies); ok {
		result.Key = winner
		result.Tiebreak = TiebreakConfidence
		result.Note = note
	} else {
		winner := candidates[0]
		for _, k := range candidates {
			if tallies[k].lastIndex > tallies[winner].lastIndex {
				winner = k
			}
		}
		result.Key = winner
		result.Tiebreak = TiebreakRecency
	}
	result.Label = result.Key.Label()
	for _, k := range candidates {
		if k != result.Key {
			result.TiedWith = append(result.TiedWith, k.Label())
		}
	}
	return result
}

func byConfidence(candidates []emotion.Key, tallies map[emotion.Key]*emotionTally) (emotion.Key, string, bool) {
	means := make(map[emotion.Key]float64)
	var best emotion.Key
	bestMean := -1.0
	for _, k := range candidates {
		t := tallies[k]
		if t.confN == 0 {
			continue
		}
		m := t.confSum / float64(t.confN)
		means[k] = m
		if m > bestMean {
			bestMean = m
			best = k
		}
	}
	if len(means) == 0 {
		return "", "", false
	}
	peers := 0
	for _, m := range means {
		if m == bestMean {
			peers++
		}
	}
	if peers != 1 {
		return "", "", false
	}
	if len(candidates) == 2 {
		other := candidates[0]
		if other == best {
			other = candidates[1]
		}
		return best, fmt.Sprintf("%.2f vs %.2f", bestMean, means[other]), true
	}
	return best, fmt.Sprintf("%.2f", bestMean), true
}
