package dto

import "github.com/noah-isme/oratoria-api/pkg/language"

// AnalyzeTextRequest is the body of POST /language/analyze.
type AnalyzeTextRequest struct {
	Text string `json:"text" validate:"max=100000"`
}

// SuggestionsRequest is the body of POST /language/suggestions. Text is the
// optional transcript used for fallback suggestions.
type SuggestionsRequest struct {
	Raw  string `json:"raw" validate:"max=20000"`
	Text string `json:"text" validate:"max=100000"`
}

// SuggestionsResponse lists parsed or fallback suggestions.
type SuggestionsResponse struct {
	Items    []string          `json:"items"`
	Metrics  *language.Metrics `json:"metrics,omitempty"`
	Fallback bool              `json:"fallback"`
}
