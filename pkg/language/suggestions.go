package language

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	maxParsedSuggestions   = 5
	maxFallbackSuggestions = 3
	shortTranscriptWords   = 120
)

var (
	sentencePrefix = regexp.MustCompile(`(?i)oraci[oó]n\s*\d+\s*:\s*`)
	bulletGlyph    = regexp.MustCompile(`(?m)^[ \t]*[•●▪◦‣·*–—][ \t]*`)
	// Leading markers: "1)", "1.", "1.-", "-", keycap digits.
	suggestionMarker = regexp.MustCompile(`(?m)(?:^[ \t]*(?:\d+\.[ \t]*-|\d+[.)]|-)|[0-9]\x{FE0F}?\x{20E3}|\x{1F51F})[ \t]*`)
	leadingFirst     = regexp.MustCompile(`^\s*1\)`)
	inlineNumber     = regexp.MustCompile(`[ \t](\d+)\)`)
)

// breakInlineNumbers moves "2)", "3)" ... onto their own lines when a
// single-line block opens with "1)". Numbers out of sequence stay as text.
func breakInlineNumbers(s string) string {
	if !leadingFirst.MatchString(s) {
		return s
	}
	var b strings.Builder
	next, last := 2, 0
	for _, m := range inlineNumber.FindAllStringSubmatchIndex(s, -1) {
		n, err := strconv.Atoi(s[m[2]:m[3]])
		if err != nil || n != next {
			continue
		}
		b.WriteString(s[last:m[0]])
		b.WriteByte('\n')
		last = m[0] + 1
		next++
	}
	b.WriteString(s[last:])
	return b.String()
}

// SplitSuggestions splits a backend suggestions block into at most five
// items. Numbering, bullets and "Oración N:" prefixes are stripped.
func SplitSuggestions(raw string) []string {
	cleaned := sentencePrefix.ReplaceAllString(raw, "")
	cleaned = bulletGlyph.ReplaceAllString(cleaned, "- ")
	cleaned = breakInlineNumbers(cleaned)

	parts := make([]string, 0)
	for _, part := range suggestionMarker.Split(cleaned, -1) {
		part = strings.Join(strings.Fields(part), " ")
		if part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) > maxParsedSuggestions {
		parts = parts[:maxParsedSuggestions]
	}
	return parts
}

// ParseSuggestions splits a backend suggestions block into items. When the
// block does not split into at least two items, rule-based fallbacks built
// from m are returned instead. m may be nil.
func ParseSuggestions(raw string, m *Metrics) []string {
	if parts := SplitSuggestions(raw); len(parts) >= 2 {
		return parts
	}
	return fallbackSuggestions(m)
}

func fallbackSuggestions(m *Metrics) []string {
	out := make([]string, 0, maxFallbackSuggestions)
	if m != nil && m.FillerCount > 0 {
		out = append(out, SuggestionFillers)
	}
	if m != nil && m.TotalWords < shortTranscriptWords {
		out = append(out, SuggestionStructure)
	}
	out = append(out, SuggestionRecording)
	if len(out) > maxFallbackSuggestions {
		out = out[:maxFallbackSuggestions]
	}
	return out
}
