package emotion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeScoreAnchors(t *testing.T) {
	assert.Equal(t, 5.0, ComputeScore(Distribution{Entusiasta: 1}, RawOptions))
	assert.Equal(t, 0.0, ComputeScore(Distribution{Nerviosa: 1}, RawOptions))
	assert.Equal(t, 0.5, ComputeScore(Distribution{}, DisplayOptions))
	assert.Equal(t, 0.0, ComputeScore(nil, DisplayOptions))
}

func TestComputeScoreRoundsToHalf(t *testing.T) {
	d := Distribution{Confiada: 0.6, Motivada: 0.4}
	assert.InDelta(t, 3.4, ComputeScore(d, RawOptions), 1e-9)
	assert.Equal(t, 3.5, ComputeScore(d, DisplayOptions))
	assert.Equal(t, 3.5, ComputeScore(d, ScoreOptions{RoundToHalf: true}))
}

func TestComputeScoreUnknownKeyUsesNeutralBase(t *testing.T) {
	assert.Equal(t, 2.0, ComputeScore(Distribution{"alegre": 1}, RawOptions))
}

func TestComputeScoreDoesNotNormalise(t *testing.T) {
	d := Distribution{Entusiasta: 0.5, Motivada: 0.5, Confiada: 0.5}
	assert.InDelta(t, 6.0, ComputeScore(d, RawOptions), 1e-9)
	assert.Equal(t, 5.0, ComputeScore(d, DisplayOptions))
}

func TestComputeScoreMonotonicWhenMassMovesUp(t *testing.T) {
	base := Distribution{Nerviosa: 0.3, Neutra: 0.4, Entusiasta: 0.3}
	shifted := Distribution{Nerviosa: 0.2, Neutra: 0.4, Entusiasta: 0.4}
	assert.GreaterOrEqual(t, ComputeScore(shifted, RawOptions), ComputeScore(base, RawOptions))

	for i := 0; i < len(Ordered)-1; i++ {
		low := Distribution{Ordered[i]: 1}
		high := Distribution{Ordered[i+1]: 1}
		assert.Greater(t, ComputeScore(high, RawOptions), ComputeScore(low, RawOptions))
	}
}

func TestComputeScoreIsDeterministic(t *testing.T) {
	d := Distribution{Nerviosa: 0.11, Ansiosa: 0.13, Neutra: 0.17, Confiada: 0.19, Motivada: 0.23, Entusiasta: 0.17}
	first := ComputeScore(d, RawOptions)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, ComputeScore(d, RawOptions))
	}
}

func TestPercentageAndLevels(t *testing.T) {
	assert.Equal(t, 68.0, Percentage(3.4))
	assert.Equal(t, 100.0, Percentage(5))
	assert.InDelta(t, 46.9, Percentage(2.345), 1e-9)

	assert.Equal(t, 1, LevelIndex(-1))
	assert.Equal(t, 1, LevelIndex(0))
	assert.Equal(t, 3, LevelIndex(2.5))
	assert.Equal(t, 5, LevelIndex(4.2))
	assert.Equal(t, 5, LevelIndex(5))

	assert.Equal(t, 40, WithinLevelPct(3.4))
	assert.Equal(t, 60, ToNextPct(3.4))
	assert.Equal(t, 0, WithinLevelPct(2))
	assert.Equal(t, 100, ToNextPct(2))
}

func TestBetweenLabel(t *testing.T) {
	assert.Equal(t, "Entre Nervioso y Ansioso", BetweenLabel(0.3))
	assert.Equal(t, "Entre Neutro y Confiado", BetweenLabel(2.9))
	assert.Equal(t, "Entre Motivado y Entusiasta", BetweenLabel(5))
	assert.Equal(t, "Entre Nervioso y Ansioso", BetweenLabel(-2))
	assert.Equal(t, "Neutro → Confiado", SegmentLabel(2))
	assert.Empty(t, SegmentLabel(5))
}

func TestInputVariants(t *testing.T) {
	in := InputFor("Confiada", nil)
	assert.Equal(t, DominantOnly{Dominant: Confiada}, in)
	assert.Equal(t, 3.0, DisplayScore(in))
	assert.Equal(t, 3.0, RawScore(in))

	nervous := InputFor("nerviosa", Distribution{})
	assert.Equal(t, 1.0, DisplayScore(nervous))
	assert.Equal(t, 0.0, RawScore(nervous))

	empty := InputFor("", nil)
	assert.Equal(t, DominantOnly{Dominant: Neutra}, empty)
	assert.Equal(t, 2.0, DisplayScore(empty))

	unknown := DominantOnly{Dominant: "alegre"}
	assert.Equal(t, 2.0, DisplayScore(unknown))
	assert.Equal(t, 2.0, RawScore(unknown))

	withDist := InputFor("nerviosa", Distribution{Confiada: 0.6, Motivada: 0.4})
	assert.IsType(t, WithDistribution{}, withDist)
	assert.Equal(t, 3.5, DisplayScore(withDist))
	assert.InDelta(t, 3.4, RawScore(withDist), 1e-9)
}

func TestStarsHelpers(t *testing.T) {
	assert.Equal(t, 1, ConfidenceStars(0))
	assert.Equal(t, 3, ConfidenceStars(0.5))
	assert.Equal(t, 5, ConfidenceStars(0.92))

	assert.Equal(t, "★★★⯪☆", StarsLine(3.5))
	assert.Equal(t, "★★★★★", StarsLine(5))
	assert.Equal(t, "☆☆☆☆☆", StarsLine(0))
	assert.Equal(t, "★★★★★", StarsLine(7))
}

func TestDistributionHelpers(t *testing.T) {
	d := Distribution{Confiada: 0.456, Ansiosa: 0.123}
	assert.Equal(t, 46, d.Percent(Confiada))
	assert.Equal(t, 0, d.Percent(Entusiasta))

	levels := d.Levels010()
	assert.InDelta(t, 4.6, levels[Confiada], 1e-9)
	assert.InDelta(t, 1.2, levels[Ansiosa], 1e-9)

	decoded := FromStrings(map[string]float64{"Confiada": 0.7, "neutra": 0.3})
	assert.Equal(t, Distribution{Confiada: 0.7, Neutra: 0.3}, decoded)
	assert.Nil(t, FromStrings(nil))

	assert.Equal(t, "Confiada", Confiada.Label())
	assert.Equal(t, "alegre", Key("alegre").Label())
	assert.Equal(t, "#22c55e", Confiada.Color())
	assert.Equal(t, Neutra, Normalize("  "))
}
