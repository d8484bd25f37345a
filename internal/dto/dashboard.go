package dto

import "time"

// PeriodQuery selects the bar chart window. Start and End are calendar dates
// and are only read when Period is "custom".
type PeriodQuery struct {
	Period string `form:"period" json:"period" validate:"omitempty,oneof=7d 30d 6m 1y custom"`
	Start  string `form:"start" json:"start" validate:"omitempty,datetime=2006-01-02"`
	End    string `form:"end" json:"end" validate:"omitempty,datetime=2006-01-02"`
}

// HomeDashboardResponse is the payload of the home screen.
type HomeDashboardResponse struct {
	UserID      string               `json:"userId"`
	HasData     bool                 `json:"hasData"`
	Totals      DashboardTotals      `json:"totals"`
	Recent      []RecentPresentation `json:"recent"`
	Line        LineChart            `json:"line"`
	Gauge       Gauge                `json:"gauge"`
	Trends      Trends               `json:"trends"`
	TopEmotion  TopEmotion           `json:"topEmotion"`
	Bars        BarChart             `json:"bars"`
	GeneratedAt time.Time            `json:"generatedAt"`
}

// DashboardTotals are the headline counters.
type DashboardTotals struct {
	Presentations      int        `json:"presentations"`
	WithDistribution   int        `json:"withDistribution"`
	LastPresentationAt *time.Time `json:"lastPresentationAt,omitempty"`
}

// RecentPresentation is one card of the "latest presentations" strip.
type RecentPresentation struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	DominantEmotion string    `json:"dominantEmotion"`
	EmotionLabel    string    `json:"emotionLabel"`
	EmotionColor    string    `json:"emotionColor"`
	Confidence      float64   `json:"confidence"`
	CreatedAt       time.Time `json:"createdAt"`
	TimeAgo         string    `json:"timeAgo"`
}

// LineChart is the score history, oldest first.
type LineChart struct {
	Labels        []string  `json:"labels"`
	Scores        []float64 `json:"scores"`
	MovingAverage []float64 `json:"movingAverage"`
	Average       float64   `json:"average"`
	Best          float64   `json:"best"`
}

// GaugeSegment is one coloured band of the gauge.
type GaugeSegment struct {
	Index   int     `json:"index"`
	Key     string  `json:"key"`
	Name    string  `json:"name"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Width   float64 `json:"width"`
	Color   string  `json:"color"`
	Pale    string  `json:"pale"`
	Tooltip string  `json:"tooltip"`
}

// Gauge describes the average raw score against the band table.
type Gauge struct {
	AverageRaw     float64        `json:"averageRaw"`
	Percent        float64        `json:"percent"`
	LevelIndex     int            `json:"levelIndex"`
	LevelName      string         `json:"levelName"`
	Color          string         `json:"color"`
	Pale           string         `json:"pale"`
	Description    string         `json:"description,omitempty"`
	Advice         string         `json:"advice,omitempty"`
	WithinLevelPct int            `json:"withinLevelPct"`
	ToNextPct      int            `json:"toNextPct"`
	BetweenLabel   string         `json:"betweenLabel"`
	Segments       []GaugeSegment `json:"segments"`
	Progress       []float64      `json:"progress"`
}

// Trends holds first-to-last and previous-to-last deltas.
type Trends struct {
	TotalDeltaPct     int `json:"totalDeltaPct"`
	TotalDeltaLevels  int `json:"totalDeltaLevels"`
	RecentDeltaPct    int `json:"recentDeltaPct"`
	RecentDeltaLevels int `json:"recentDeltaLevels"`
}

// TopEmotion is the most frequent dominant emotion with tie disclosure.
type TopEmotion struct {
	Key      string   `json:"key"`
	Label    string   `json:"label"`
	Color    string   `json:"color"`
	Count    int      `json:"count"`
	Total    int      `json:"total"`
	Tie      bool     `json:"tie"`
	TiedWith []string `json:"tiedWith"`
	Tiebreak string   `json:"tiebreak"`
	Note     string   `json:"note,omitempty"`
}

// BarChart counts presentations per calendar bucket.
type BarChart struct {
	Period      string    `json:"period"`
	Granularity string    `json:"granularity"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Keys        []string  `json:"keys"`
	Labels      []string  `json:"labels"`
	Counts      []int     `json:"counts"`
	Total       int       `json:"total"`
}
