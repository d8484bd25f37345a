package emotion

import (
	"fmt"
	"math"
	"os"

	"github.com/BurntSushi/toml"
)

// Band is a contiguous percentage range rendered as one level of the gauge.
type Band struct {
	Index       int     `json:"index" toml:"index"`
	Key         string  `json:"key" toml:"key"`
	Name        string  `json:"name" toml:"name"`
	Min         float64 `json:"min" toml:"min"`
	Max         float64 `json:"max" toml:"max"`
	Color       string  `json:"color" toml:"color"`
	Pale        string  `json:"pale" toml:"pale"`
	Description string  `json:"description,omitempty" toml:"description"`
	Advice      string  `json:"advice,omitempty" toml:"advice"`
}

// Width returns the size of the band in percentage points.
func (b Band) Width() float64 {
	return b.Max - b.Min
}

// Bands is an ordered, non-overlapping partition of [0,100].
type Bands []Band

// FiveLevelBands is the canonical 20%-wide banding.
var FiveLevelBands = Bands{
	{Index: 1, Key: "nivel1", Name: "Muy tenso", Min: 0, Max: 20, Color: "#ef4444", Pale: "rgba(239, 68, 68, 0.35)", Description: "Alto nivel de tensión.", Advice: "Respira y practica pausas."},
	{Index: 2, Key: "nivel2", Name: "Ansiedad baja/mod.", Min: 20, Max: 40, Color: "#f97316", Pale: "rgba(249, 115, 22, 0.35)", Description: "Algo de inquietud.", Advice: "Baja el ritmo y enfoca ideas."},
	{Index: 3, Key: "nivel3", Name: "Neutro", Min: 40, Max: 60, Color: "#f59e0b", Pale: "rgba(245, 158, 11, 0.35)", Description: "Estable, balanceado.", Advice: "Añade energía positiva."},
	{Index: 4, Key: "nivel4", Name: "Confiado", Min: 60, Max: 80, Color: "#14b8a6", Pale: "rgba(20, 184, 166, 0.35)", Description: "Buena confianza.", Advice: "Mantén contacto visual."},
	{Index: 5, Key: "nivel5", Name: "Alta motivación", Min: 80, Max: 100, Color: "#22c55e", Pale: "rgba(34, 197, 94, 0.35)", Description: "Muy positivo y dinámico.", Advice: "Cuida la claridad y ritmo."},
}

// SixLevelBands centres one band on each emotion anchor (anchor*20%).
var SixLevelBands = Bands{
	{Index: 1, Key: "nerviosa", Name: "Nervioso", Min: 0, Max: 10, Color: "#8b5cf6", Pale: "rgba(139, 92, 246, 0.35)"},
	{Index: 2, Key: "ansiosa", Name: "Ansioso", Min: 10, Max: 30, Color: "#ef4444", Pale: "rgba(239, 68, 68, 0.35)"},
	{Index: 3, Key: "neutra", Name: "Neutro", Min: 30, Max: 50, Color: "#9ca3af", Pale: "rgba(156, 163, 175, 0.35)"},
	{Index: 4, Key: "confiada", Name: "Confiado", Min: 50, Max: 70, Color: "#22c55e", Pale: "rgba(34, 197, 94, 0.35)"},
	{Index: 5, Key: "motivada", Name: "Motivado", Min: 70, Max: 90, Color: "#f59e0b", Pale: "rgba(245, 158, 11, 0.35)"},
	{Index: 6, Key: "entusiasta", Name: "Entusiasta", Min: 90, Max: 100, Color: "#06b6d4", Pale: "rgba(6, 182, 212, 0.35)"},
}

// ForPercent returns the first band whose upper bound is above pct, or the
// last band when none is (pct == 100). An empty table yields a zero Band.
func (b Bands) ForPercent(pct float64) Band {
	if len(b) == 0 {
		return Band{}
	}
	for _, band := range b {
		if pct < band.Max {
			return band
		}
	}
	return b[len(b)-1]
}

// ByIndex looks up a band by its 1-based index.
func (b Bands) ByIndex(index int) (Band, bool) {
	for _, band := range b {
		if band.Index == index {
			return band, true
		}
	}
	return Band{}, false
}

// Segments returns the width of every band, in order.
func (b Bands) Segments() []float64 {
	out := make([]float64, len(b))
	for i, band := range b {
		out[i] = band.Width()
	}
	return out
}

// Validate checks that the table is ordered, contiguous and covers [0,100].
func (b Bands) Validate() error {
	if len(b) == 0 {
		return fmt.Errorf("band table is empty")
	}
	if b[0].Min != 0 {
		return fmt.Errorf("first band must start at 0, got %v", b[0].Min)
	}
	for i, band := range b {
		if band.Index != i+1 {
			return fmt.Errorf("band %q has index %d, want %d", band.Name, band.Index, i+1)
		}
		if band.Max <= band.Min {
			return fmt.Errorf("band %q has empty range [%v,%v)", band.Name, band.Min, band.Max)
		}
		if i > 0 && math.Abs(b[i-1].Max-band.Min) > 1e-9 {
			return fmt.Errorf("band %q does not start where %q ends", band.Name, b[i-1].Name)
		}
	}
	if last := b[len(b)-1]; last.Max != 100 {
		return fmt.Errorf("last band must end at 100, got %v", last.Max)
	}
	return nil
}

type bandFile struct {
	Bands Bands `toml:"band"`
}

// LoadBands reads a band table from a TOML file with one [[band]] table per level.
func LoadBands(path string) (Bands, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bands file: %w", err)
	}
	return ParseBands(string(raw))
}

// ParseBands decodes a TOML band table and validates it.
func ParseBands(doc string) (Bands, error) {
	var file bandFile
	if _, err := toml.Decode(doc, &file); err != nil {
		return nil, fmt.Errorf("decode bands: %w", err)
	}
	if err := file.Bands.Validate(); err != nil {
		return nil, err
	}
	return file.Bands, nil
}

// BandsByName resolves a named scheme ("five" or "six").
func BandsByName(name string) (Bands, error) {
	switch name {
	case "", "five", "5":
		return FiveLevelBands, nil
	case "six", "6":
		return SixLevelBands, nil
	default:
		return nil, fmt.Errorf("unknown band scheme %q", name)
	}
}
