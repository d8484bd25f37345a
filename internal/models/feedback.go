package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Feedback holds the backend's textual coaching for one presentation.
type Feedback struct {
	GeneralFeedback      string             `json:"general_feedback"`
	ConfidenceFeedback   string             `json:"confidence_feedback"`
	AnxietyFeedback      string             `json:"anxiety_feedback"`
	LanguageFeedback     string             `json:"language_feedback"`
	Suggestions          string             `json:"suggestions"`
	DominantEmotion      *string            `json:"dominant_emotion"`
	Confidence           *float64           `json:"confidence"`
	EmotionProbabilities map[string]float64 `json:"emotion_probabilities"`
}

// FeedbackPayload decodes the feedback endpoint, which answers with an
// object, an array whose first element is the feedback, or null.
type FeedbackPayload struct {
	value *Feedback
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *FeedbackPayload) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		p.value = nil
		return nil
	}
	switch trimmed[0] {
	case '{':
		var fb Feedback
		if err := json.Unmarshal(trimmed, &fb); err != nil {
			return fmt.Errorf("decode feedback object: %w", err)
		}
		p.value = &fb
	case '[':
		var items []*Feedback
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return fmt.Errorf("decode feedback array: %w", err)
		}
		if len(items) == 0 || items[0] == nil {
			p.value = &Feedback{}
			return nil
		}
		p.value = items[0]
	default:
		return fmt.Errorf("unexpected feedback payload starting with %q", trimmed[0])
	}
	return nil
}

// Present reports whether the backend returned anything.
func (p FeedbackPayload) Present() bool {
	return p.value != nil
}

// Normalize returns the feedback, or nil when the payload was null.
func (p FeedbackPayload) Normalize() *Feedback {
	return p.value
}

// NewFeedbackPayload wraps fb, mainly for tests and fakes.
func NewFeedbackPayload(fb *Feedback) FeedbackPayload {
	return FeedbackPayload{value: fb}
}
