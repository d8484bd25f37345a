package dto

import "time"

// HistoryQuery filters the presentation list.
type HistoryQuery struct {
	Page      int    `form:"page" validate:"omitempty,min=1"`
	Limit     int    `form:"limit" validate:"omitempty,min=1,max=100"`
	Emotion   string `form:"emotion" validate:"omitempty,oneof=nerviosa ansiosa neutra confiada motivada entusiasta"`
	Favorites bool   `form:"favorites"`
}

// PresentationItem is one row of the history list.
type PresentationItem struct {
	ID              string    `json:"id"`
	Filename        string    `json:"filename"`
	DominantEmotion string    `json:"dominantEmotion"`
	EmotionLabel    string    `json:"emotionLabel"`
	EmotionColor    string    `json:"emotionColor"`
	Confidence      float64   `json:"confidence"`
	ConfidenceStars int       `json:"confidenceStars"`
	CreatedAt       time.Time `json:"createdAt"`
	DateLabel       string    `json:"dateLabel"`
	TimeAgo         string    `json:"timeAgo"`
	Favorite        bool      `json:"favorite"`
}

// AudioResponse backs the audio player: a signed link plus transcript.
type AudioResponse struct {
	PresentationID  string     `json:"presentationId"`
	Filename        string     `json:"filename"`
	URL             string     `json:"url"`
	ExpiresAt       *time.Time `json:"expiresAt,omitempty"`
	Transcript      string     `json:"transcript"`
	DurationSeconds float64    `json:"durationSeconds"`
	Language        string     `json:"language,omitempty"`
}

// UploadResponse reports the outcome of an audio upload.
type UploadResponse struct {
	Success      bool              `json:"success"`
	Message      string            `json:"message"`
	Presentation *PresentationItem `json:"presentation,omitempty"`
	Dominant     string            `json:"dominantEmotion,omitempty"`
	Confidence   float64           `json:"confidence,omitempty"`
}

// FavoriteResponse echoes the favourite state after a toggle.
type FavoriteResponse struct {
	PresentationID string `json:"presentationId"`
	Favorite       bool   `json:"favorite"`
}
