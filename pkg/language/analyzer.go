package language

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	defaultMaxExamples = 5
	defaultContext     = 15
)

// Metrics summarises language cues found in one transcript.
type Metrics struct {
	TotalWords     int      `json:"total_words"`
	PositiveWords  int      `json:"positive_words"`
	NegativeWords  int      `json:"negative_words"`
	FillerCount    int      `json:"filler_count"`
	GoodExamples   []string `json:"good_examples"`
	BadExamples    []string `json:"bad_examples"`
	FillerExamples []string `json:"filler_examples"`
	Tips           []string `json:"tips"`
}

// Analyzer scans transcripts with a fixed lexicon.
type Analyzer struct {
	lexicon     Lexicon
	maxExamples int
	context     int
}

// Option customises an Analyzer.
type Option func(*Analyzer)

// WithMaxExamples caps the snippets collected per cue set.
func WithMaxExamples(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.maxExamples = n
		}
	}
}

// WithContext sets how many characters of context surround each snippet.
func WithContext(n int) Option {
	return func(a *Analyzer) {
		if n >= 0 {
			a.context = n
		}
	}
}

// NewAnalyzer builds an analyzer for the given lexicon.
func NewAnalyzer(lexicon Lexicon, opts ...Option) *Analyzer {
	a := &Analyzer{lexicon: lexicon, maxExamples: defaultMaxExamples, context: defaultContext}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var defaultAnalyzer = NewAnalyzer(SpanishLexicon)

// Analyze runs the default Spanish analyzer.
func Analyze(text string) Metrics {
	return defaultAnalyzer.Analyze(text)
}

// Analyze counts words and cue matches and derives coaching tips.
func (a *Analyzer) Analyze(text string) Metrics {
	m := Metrics{
		TotalWords:     len(wordPattern.FindAllStringIndex(text, -1)),
		PositiveWords:  countMatches(text, a.lexicon.Positive),
		NegativeWords:  countMatches(text, a.lexicon.Negative),
		FillerCount:    countMatches(text, a.lexicon.Fillers),
		GoodExamples:   a.samples(text, a.lexicon.Positive),
		BadExamples:    a.samples(text, a.lexicon.Negative),
		FillerExamples: a.samples(text, a.lexicon.Fillers),
	}
	m.Tips = tipsFor(m, strings.TrimSpace(text) != "")
	return m
}

func tipsFor(m Metrics, spoken bool) []string {
	tips := make([]string, 0, 5)
	if m.FillerCount >= 1 {
		tips = append(tips, TipFillers)
	}
	if m.NegativeWords > m.PositiveWords {
		tips = append(tips, TipPositive)
	}
	// A blank transcript has nothing to strengthen.
	if m.PositiveWords == 0 && spoken {
		tips = append(tips, TipConfidence)
	}
	return append(tips, TipExercises, TipClosing)
}

func countMatches(text string, patterns []*regexp.Regexp) int {
	total := 0
	for _, re := range patterns {
		total += len(re.FindAllStringIndex(text, -1))
	}
	return total
}

// samples collects up to maxExamples snippets in pattern order, then match order.
// Offsets are measured in characters, not bytes.
func (a *Analyzer) samples(text string, patterns []*regexp.Regexp) []string {
	out := make([]string, 0, a.maxExamples)
	if text == "" {
		return out
	}
	runes := []rune(text)
	for _, re := range patterns {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			start := utf8.RuneCountInString(text[:loc[0]])
			length := utf8.RuneCountInString(text[loc[0]:loc[1]])
			from := start - a.context
			if from < 0 {
				from = 0
			}
			to := start + length + a.context
			if to > len(runes) {
				to = len(runes)
			}
			out = append(out, strings.TrimSpace(string(runes[from:to])))
			if len(out) >= a.maxExamples {
				return out
			}
		}
	}
	return out
}
