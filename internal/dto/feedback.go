package dto

import (
	"time"

	"github.com/noah-isme/oratoria-api/pkg/language"
)

// FeedbackViewResponse is the payload of the feedback detail screen.
type FeedbackViewResponse struct {
	PresentationID  string            `json:"presentationId"`
	Filename        string            `json:"filename"`
	CreatedAt       time.Time         `json:"createdAt"`
	DominantEmotion string            `json:"dominantEmotion"`
	EmotionLabel    string            `json:"emotionLabel"`
	Confidence      float64           `json:"confidence"`
	ConfidenceStars int               `json:"confidenceStars"`
	OverallStars    float64           `json:"overallStars"`
	StarsLine       string            `json:"starsLine"`
	Score           ScoreDescriptor   `json:"score"`
	Doughnut        []EmotionSlice    `json:"doughnut"`
	Levels          []EmotionLevel    `json:"levels"`
	Feedback        *FeedbackText     `json:"feedback"`
	Transcript      string            `json:"transcript"`
	Language        *language.Metrics `json:"language"`
	Suggestions     []string          `json:"suggestions"`
	Reflection      string            `json:"reflection"`
	Resources       []Resource        `json:"resources"`
	DurationSeconds float64           `json:"durationSeconds,omitempty"`
}

// ScoreDescriptor places the raw score of one presentation on the band table.
type ScoreDescriptor struct {
	Raw         float64 `json:"raw"`
	Percent     float64 `json:"percent"`
	LevelIndex  int     `json:"levelIndex"`
	LevelName   string  `json:"levelName"`
	Color       string  `json:"color"`
	Pale        string  `json:"pale"`
	Description string  `json:"description,omitempty"`
	Advice      string  `json:"advice,omitempty"`
}

// EmotionSlice is one doughnut slice; Value is probability*100.
type EmotionSlice struct {
	Key     string  `json:"key"`
	Label   string  `json:"label"`
	Color   string  `json:"color"`
	Value   float64 `json:"value"`
	Percent int     `json:"percent"`
}

// EmotionLevel is one 0..10 bar.
type EmotionLevel struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Level float64 `json:"level"`
}

// FeedbackText carries the backend's coaching paragraphs.
type FeedbackText struct {
	General    string `json:"general"`
	Confidence string `json:"confidence"`
	Anxiety    string `json:"anxiety"`
	Language   string `json:"language"`
}

// Resource is a study link recommended for the presentation.
type Resource struct {
	Topic  string `json:"topic"`
	Title  string `json:"title"`
	Reason string `json:"reason"`
	URL    string `json:"url"`
}
