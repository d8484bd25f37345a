package language

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSuggestionsNumbered(t *testing.T) {
	assert.Equal(t, []string{"Do X", "Do Y"}, ParseSuggestions("1) Do X\n2) Do Y", nil))
}

func TestParseSuggestionsMarkers(t *testing.T) {
	cases := map[string]struct {
		raw  string
		want []string
	}{
		"dot dash": {
			raw:  "1.- Primero\n2.- Segundo\n3.- Tercero",
			want: []string{"Primero", "Segundo", "Tercero"},
		},
		"bullets": {
			raw:  "• Habla más lento\n• Usa pausas",
			want: []string{"Habla más lento", "Usa pausas"},
		},
		"keycaps": {
			raw:  "1️⃣ Respira 2️⃣ Pausa",
			want: []string{"Respira", "Pausa"},
		},
		"inline": {
			raw:  "1) Respira hondo 2) Mira al público",
			want: []string{"Respira hondo", "Mira al público"},
		},
		"sentence prefixes": {
			raw:  "- Oración 1: Abre con una pregunta\n- Oración 2: Cierra con una cifra",
			want: []string{"Abre con una pregunta", "Cierra con una cifra"},
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseSuggestions(tc.raw, nil))
		})
	}
}

func TestParseSuggestionsCapsAtFive(t *testing.T) {
	raw := "1) a\n2) b\n3) c\n4) d\n5) e\n6) f\n7) g"
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ParseSuggestions(raw, nil))
}

func TestParseSuggestionsFallback(t *testing.T) {
	assert.Equal(t, []string{SuggestionRecording}, ParseSuggestions("", nil))

	short := &Metrics{FillerCount: 2, TotalWords: 80}
	assert.Equal(t, []string{SuggestionFillers, SuggestionStructure, SuggestionRecording}, ParseSuggestions("Practica más.", short))

	long := &Metrics{TotalWords: 500}
	assert.Equal(t, []string{SuggestionRecording}, ParseSuggestions("Practica más.", long))
}

func TestParseSuggestionsKeepsInlineParentheses(t *testing.T) {
	assert.Equal(t, []string{"Usa 3 pausas (cada 2) y respira."}, SplitSuggestions("Usa 3 pausas (cada 2) y respira."))
	assert.Equal(t, []string{"Reduce el uso de 10) muletillas"}, SplitSuggestions("Reduce el uso de 10) muletillas"))

	m := &Metrics{TotalWords: 500}
	assert.Equal(t, []string{SuggestionRecording}, ParseSuggestions("Usa 3 pausas (cada 2) y respira.", m))

	assert.Equal(t, []string{"Haz 4 pausas (cada 3) al hablar", "Mira al público"},
		ParseSuggestions("1) Haz 4 pausas (cada 3) al hablar 2) Mira al público", nil))
}
