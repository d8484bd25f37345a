package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedbackPayloadShapes(t *testing.T) {
	var obj FeedbackPayload
	require.NoError(t, json.Unmarshal([]byte(`{"general_feedback":"Bien","suggestions":"1) a\n2) b"}`), &obj))
	require.True(t, obj.Present())
	assert.Equal(t, "Bien", obj.Normalize().GeneralFeedback)
	assert.Nil(t, obj.Normalize().Confidence)

	var arr FeedbackPayload
	require.NoError(t, json.Unmarshal([]byte(`[{"anxiety_feedback":"Respira","confidence":0.7}]`), &arr))
	require.True(t, arr.Present())
	assert.Equal(t, "Respira", arr.Normalize().AnxietyFeedback)
	require.NotNil(t, arr.Normalize().Confidence)
	assert.Equal(t, 0.7, *arr.Normalize().Confidence)

	var empty FeedbackPayload
	require.NoError(t, json.Unmarshal([]byte(`[]`), &empty))
	assert.Equal(t, &Feedback{}, empty.Normalize())

	var null FeedbackPayload
	require.NoError(t, json.Unmarshal([]byte(`null`), &null))
	assert.False(t, null.Present())
	assert.Nil(t, null.Normalize())

	var bad FeedbackPayload
	assert.Error(t, json.Unmarshal([]byte(`"text"`), &bad))
}

func TestTimestampLayouts(t *testing.T) {
	cases := map[string]time.Time{
		`"2025-09-02T10:00:00Z"`:       time.Date(2025, 9, 2, 10, 0, 0, 0, time.UTC),
		`"2025-09-02T10:00:00.123456"`: time.Date(2025, 9, 2, 10, 0, 0, 123456000, time.UTC),
		`"2025-09-02T05:00:00-05:00"`:  time.Date(2025, 9, 2, 10, 0, 0, 0, time.UTC),
		`"2025-09-02 10:00:00"`:        time.Date(2025, 9, 2, 10, 0, 0, 0, time.UTC),
	}
	for raw, want := range cases {
		var ts Timestamp
		require.NoError(t, json.Unmarshal([]byte(raw), &ts), raw)
		assert.True(t, want.Equal(ts.Time), raw)
	}

	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
}

func TestPresentationRecord(t *testing.T) {
	var detail PresentationDetail
	require.NoError(t, json.Unmarshal([]byte(`{
		"id":"p1","filename":"pitch.wav","dominant_emotion":"Confiada","confidence":0.8,
		"created_at":"2025-09-02T10:00:00","transcript":"hola",
		"emotion_probabilities":{"Confiada":0.8,"neutra":0.2},
		"metadata":{"duration":12.5,"sample_rate":16000,"language":"es"}
	}`), &detail))

	rec := detail.Presentation.Record(&detail)
	assert.Equal(t, "p1", rec.ID)
	assert.Equal(t, "hola", rec.Transcript)
	assert.Equal(t, 0.8, rec.Distribution["confiada"])
	assert.Equal(t, 16000, detail.Metadata.SampleRate)

	bare := detail.Presentation.Record(nil)
	assert.Nil(t, bare.Distribution)
}

func TestSnapshotRoundTrip(t *testing.T) {
	detail := PresentationDetail{
		Presentation:         Presentation{ID: "p1", Filename: "a.wav", DominantEmotion: "neutra", CreatedAt: Timestamp{Time: time.Date(2025, 9, 2, 10, 0, 0, 0, time.UTC)}},
		EmotionProbabilities: map[string]float64{"neutra": 1},
		Metadata:             AudioMetadata{Duration: 3, SampleRate: 8000, Language: "es"},
	}
	snap := SnapshotFromDetail("u1", detail)
	assert.Equal(t, "u1", snap.UserID)
	assert.Equal(t, detail, snap.Detail())
}

func TestProbabilityJSON(t *testing.T) {
	v, err := ProbabilityJSON(nil).Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	var p ProbabilityJSON
	require.NoError(t, p.Scan([]byte(`{"confiada":0.5}`)))
	assert.Equal(t, ProbabilityJSON{"confiada": 0.5}, p)
	require.NoError(t, p.Scan(nil))
	assert.Nil(t, p)
	assert.Error(t, p.Scan(42))
}
