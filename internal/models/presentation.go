package models

import (
	"time"

	"github.com/noah-isme/oratoria-api/pkg/emotion"
	"github.com/noah-isme/oratoria-api/pkg/history"
)

// Presentation is the summary row returned by the analysis backend.
type Presentation struct {
	ID              string    `json:"id"`
	Filename        string    `json:"filename"`
	DominantEmotion string    `json:"dominant_emotion"`
	Confidence      float64   `json:"confidence"`
	CreatedAt       Timestamp `json:"created_at"`
}

// AudioMetadata describes the uploaded recording.
type AudioMetadata struct {
	Duration   float64 `json:"duration"`
	SampleRate int     `json:"sample_rate"`
	Language   string  `json:"language"`
}

// PresentationDetail is the full analysis of one presentation.
type PresentationDetail struct {
	Presentation
	Transcript           string             `json:"transcript"`
	EmotionProbabilities map[string]float64 `json:"emotion_probabilities"`
	Metadata             AudioMetadata      `json:"metadata"`
}

// Distribution converts the backend probabilities. Nil when absent.
func (d *PresentationDetail) Distribution() emotion.Distribution {
	if d == nil {
		return nil
	}
	return emotion.FromStrings(d.EmotionProbabilities)
}

// Record builds the aggregator view of a summary and its optional detail.
func (p Presentation) Record(detail *PresentationDetail) history.Record {
	rec := history.Record{
		ID:              p.ID,
		Filename:        p.Filename,
		DominantEmotion: p.DominantEmotion,
		Confidence:      p.Confidence,
		CreatedAt:       p.CreatedAt.Time,
	}
	if detail != nil {
		rec.Transcript = detail.Transcript
		rec.Distribution = detail.Distribution()
	}
	return rec
}

// AudioURL is a short-lived link to the original recording.
type AudioURL struct {
	URL       string     `json:"url"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// UploadResult is the backend answer to an audio upload.
type UploadResult struct {
	Success      bool            `json:"success"`
	Message      string          `json:"message"`
	Presentation *Presentation   `json:"presentation,omitempty"`
	AnalysisData *EmotionSummary `json:"analysisData,omitempty"`
}

// EmotionSummary is the immediate analysis returned with an upload.
type EmotionSummary struct {
	DominantEmotion      string             `json:"dominant_emotion"`
	Confidence           float64            `json:"confidence"`
	EmotionProbabilities map[string]float64 `json:"emotion_probabilities,omitempty"`
}

// PresentationSnapshot is a persisted copy of an analysed presentation.
type PresentationSnapshot struct {
	PresentationID       string          `db:"presentation_id"`
	UserID               string          `db:"user_id"`
	Filename             string          `db:"filename"`
	DominantEmotion      string          `db:"dominant_emotion"`
	Confidence           float64         `db:"confidence"`
	Transcript           string          `db:"transcript"`
	EmotionProbabilities ProbabilityJSON `db:"emotion_probabilities"`
	DurationSeconds      float64         `db:"duration_seconds"`
	SampleRate           int             `db:"sample_rate"`
	Language             string          `db:"language"`
	AnalysedAt           time.Time       `db:"analysed_at"`
}

// SnapshotFromDetail captures a detail for userID.
func SnapshotFromDetail(userID string, d PresentationDetail) PresentationSnapshot {
	return PresentationSnapshot{
		PresentationID:       d.ID,
		UserID:               userID,
		Filename:             d.Filename,
		DominantEmotion:      d.DominantEmotion,
		Confidence:           d.Confidence,
		Transcript:           d.Transcript,
		EmotionProbabilities: ProbabilityJSON(d.EmotionProbabilities),
		DurationSeconds:      d.Metadata.Duration,
		SampleRate:           d.Metadata.SampleRate,
		Language:             d.Metadata.Language,
		AnalysedAt:           d.CreatedAt.Time,
	}
}

// Detail restores the backend shape.
func (s PresentationSnapshot) Detail() PresentationDetail {
	return PresentationDetail{
		Presentation: Presentation{
			ID:              s.PresentationID,
			Filename:        s.Filename,
			DominantEmotion: s.DominantEmotion,
			Confidence:      s.Confidence,
			CreatedAt:       Timestamp{Time: s.AnalysedAt},
		},
		Transcript:           s.Transcript,
		EmotionProbabilities: map[string]float64(s.EmotionProbabilities),
		Metadata: AudioMetadata{
			Duration:   s.DurationSeconds,
			SampleRate: s.SampleRate,
			Language:   s.Language,
		},
	}
}
