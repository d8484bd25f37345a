package emotion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBandsForPercent(t *testing.T) {
	assert.Equal(t, 1, FiveLevelBands.ForPercent(0).Index)
	assert.Equal(t, 1, FiveLevelBands.ForPercent(19.9).Index)
	assert.Equal(t, 2, FiveLevelBands.ForPercent(20).Index)
	assert.Equal(t, 4, FiveLevelBands.ForPercent(79.9).Index)
	assert.Equal(t, 5, FiveLevelBands.ForPercent(100).Index)
	assert.Equal(t, 5, FiveLevelBands.ForPercent(130).Index)
	assert.Equal(t, Band{}, Bands{}.ForPercent(50))

	assert.Equal(t, "Nervioso", SixLevelBands.ForPercent(5).Name)
	assert.Equal(t, "Entusiasta", SixLevelBands.ForPercent(100).Name)
}

func TestBandsValidate(t *testing.T) {
	require.NoError(t, FiveLevelBands.Validate())
	require.NoError(t, SixLevelBands.Validate())

	gap := Bands{
		{Index: 1, Name: "a", Min: 0, Max: 40},
		{Index: 2, Name: "b", Min: 50, Max: 100},
	}
	assert.Error(t, gap.Validate())
	assert.Error(t, Bands{}.Validate())
	assert.Error(t, Bands{{Index: 1, Name: "a", Min: 0, Max: 90}}.Validate())
}

func TestBandsSegments(t *testing.T) {
	assert.Equal(t, []float64{20, 20, 20, 20, 20}, FiveLevelBands.Segments())
	band, ok := FiveLevelBands.ByIndex(3)
	require.True(t, ok)
	assert.Equal(t, "Neutro", band.Name)
	_, ok = FiveLevelBands.ByIndex(9)
	assert.False(t, ok)
}

func TestParseBandsFromTOML(t *testing.T) {
	doc := `
[[band]]
index = 1
key = "bajo"
name = "Bajo"
min = 0
max = 50
color = "#ef4444"

[[band]]
index = 2
key = "alto"
name = "Alto"
min = 50
max = 100
color = "#22c55e"
`
	bands, err := ParseBands(doc)
	require.NoError(t, err)
	require.Len(t, bands, 2)
	assert.Equal(t, "Alto", bands.ForPercent(100).Name)

	_, err = ParseBands("[[band]]\nindex = 1\nmin = 10\nmax = 100\n")
	assert.Error(t, err)
}

func TestBandsByName(t *testing.T) {
	b, err := BandsByName("six")
	require.NoError(t, err)
	assert.Len(t, b, 6)
	b, err = BandsByName("")
	require.NoError(t, err)
	assert.Len(t, b, 5)
	_, err = BandsByName("seven")
	assert.Error(t, err)
}
