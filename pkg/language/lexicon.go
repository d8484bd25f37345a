package language

import "regexp"

// Lexicon groups the cue patterns scanned in a transcript. Patterns are
// matched case-insensitively and counted per occurrence.
type Lexicon struct {
	Positive []*regexp.Regexp
	Negative []*regexp.Regexp
	Fillers  []*regexp.Regexp
}

// wordPattern counts words. \b and \w are ASCII-only, so a word ending in an
// accented vowel is counted up to its last ASCII letter.
var wordPattern = regexp.MustCompile(`(?i)\b[\wáéíóúñü]+\b`)

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		out[i] = regexp.MustCompile(`(?i)` + expr)
	}
	return out
}

// SpanishLexicon is the default cue set for Spanish-language presentations.
var SpanishLexicon = Lexicon{
	Positive: compileAll(
		`\bexcelente\b`, `\bgenial\b`, `\bclar[oa]s?\b`, `\bsegur[oa]s?\b`,
		`\blograr\w*\b`, `\bobjetiv\w+\b`, `\bconfianz\w*\b`, `\btranquil\w*\b`,
	),
	Negative: compileAll(
		`\bnervios?\b`, `\bansios\w*\b`, `\bpreocupad\w*\b`, `\bdud\w*\b`,
		`\btemor(es)?\b`, `\bestresad\w*\b`, `\bno puedo\b`, `\bdif[ií]cil\b`,
	),
	Fillers: compileAll(
		`\beh+\b`, `\bem+\b`, `\bmmm+\b`,
		`\b(o\s*sea|osea)\b`, `\beste\b`, `\bpues\b`, `\bya\b`,
		`\bdigamos\b`, `\bvale\b`, `\btipo\b`, `\bnada\b`,
		`\bbueno\b`, `\bentonces\b`, `\ba ver\b`, `\bdigo\b`,
		`\bcomo que\b`, `\beste que\b`,
		`\bvoy a hablar\b`, `\bcomo est[aá] afectando\b`,
	),
}

// Tip texts emitted by Analyze.
const (
	TipFillers    = "Reduce muletillas (“este”, “o sea”, “bueno”). Practica pausas de 1s."
	TipPositive   = "Refuerza lenguaje positivo: “claramente…”, “estamos seguros de…”, “logramos…”."
	TipConfidence = "Incluye afirmaciones de seguridad/claridad para transmitir confianza."
	TipExercises  = "Ejercicios: respiración 4-7-8, shadowing, ensayo cronometrado y grabación."
	TipClosing    = "Cierre: prepara dos versiones (30s y 10s) y remarca el aporte clave."
)

// Fallback suggestions used when the backend block cannot be split.
const (
	SuggestionFillers   = "Reduce las muletillas: reemplázalas por una pausa breve antes de cada idea."
	SuggestionStructure = "Amplía el discurso con una estructura clara: apertura, dos o tres ideas clave y un cierre."
	SuggestionRecording = "Grábate de nuevo y compara con esta presentación para medir tu avance."
)
