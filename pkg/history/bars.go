package history

import (
	"fmt"
	"math"
	"time"

	"github.com/noah-isme/oratoria-api/pkg/errors"
)

// Period is a bar chart range preset.
type Period string

const (
	Period7Days   Period = "7d"
	Period30Days  Period = "30d"
	Period6Months Period = "6m"
	Period1Year   Period = "1y"
	PeriodCustom  Period = "custom"
)

// DefaultPeriod is used when the caller does not pick one.
const DefaultPeriod = Period30Days

// Valid reports whether p is a known preset.
func (p Period) Valid() bool {
	switch p {
	case Period7Days, Period30Days, Period6Months, Period1Year, PeriodCustom:
		return true
	}
	return false
}

// Granularity is the size of one bar bucket.
type Granularity string

const (
	Day     Granularity = "day"
	Week    Granularity = "week"
	Month   Granularity = "month"
	Quarter Granularity = "quarter"
)

// Window is a closed time range and the bucket size used to chart it.
type Window struct {
	Period      Period      `json:"period"`
	Start       time.Time   `json:"start"`
	End         time.Time   `json:"end"`
	Granularity Granularity `json:"granularity"`
}

// Contains reports whether t falls inside the window, both ends included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// GranularityForSpan picks a bucket size for a custom range of days.
func GranularityForSpan(days int) Granularity {
	switch {
	case days <= 14:
		return Day
	case days <= 90:
		return Week
	case days <= 540:
		return Month
	default:
		return Quarter
	}
}

// ResolveWindow turns a preset into concrete bounds in loc. Custom ranges use
// customStart and customEnd as calendar days, both included.
func ResolveWindow(period Period, now, customStart, customEnd time.Time, loc *time.Location) (Window, error) {
	if loc == nil {
		loc = time.UTC
	}
	if period == "" {
		period = DefaultPeriod
	}
	today := now.In(loc)
	w := Window{Period: period, End: endOfDay(today)}

	switch period {
	case Period7Days:
		w.Start = startOfDay(today).AddDate(0, 0, -6)
		w.Granularity = Day
	case Period30Days:
		w.Start = startOfDay(today).AddDate(0, 0, -29)
		w.Granularity = Week
	case Period6Months:
		w.Start = firstOfMonth(today).AddDate(0, -5, 0)
		w.Granularity = Month
	case Period1Year:
		w.Start = firstOfMonth(today).AddDate(0, -11, 0)
		w.Granularity = Month
	case PeriodCustom:
		if customStart.IsZero() || customEnd.IsZero() {
			return Window{}, errors.Clone(errors.ErrInvalidPeriod, "custom period requires start and end dates")
		}
		w.Start = startOfDay(inDay(customStart, loc))
		w.End = endOfDay(inDay(customEnd, loc))
		if w.End.Before(w.Start) {
			return Window{}, errors.Clone(errors.ErrInvalidPeriod, "start date must not be after end date")
		}
		days := int(math.Ceil(w.End.Sub(w.Start).Hours() / 24))
		if days < 1 {
			days = 1
		}
		w.Granularity = GranularityForSpan(days)
	default:
		return Window{}, errors.Clone(errors.ErrInvalidPeriod, fmt.Sprintf("unknown period %q", period))
	}
	return w, nil
}

// inDay re-reads the calendar date of t in loc, so "2025-09-02" parsed as UTC
// stays the 2nd.
func inDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// Bucket is one bar of the activity chart.
type Bucket struct {
	Key   string    `json:"key"`
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	Count int       `json:"count"`
}

// BarSeries counts presentations per bucket across a window.
type BarSeries struct {
	Window  Window   `json:"window"`
	Buckets []Bucket `json:"buckets"`
	Total   int      `json:"total"`
}

// Labels returns the bucket labels in order.
func (s BarSeries) Labels() []string {
	out := make([]string, len(s.Buckets))
	for i, b := range s.Buckets {
		out[i] = b.Label
	}
	return out
}

// Counts returns the bucket counts in order.
func (s BarSeries) Counts() []int {
	out := make([]int, len(s.Buckets))
	for i, b := range s.Buckets {
		out[i] = b.Count
	}
	return out
}

// BuildBarSeries enumerates every bucket of w, including empty ones, and
// counts the records whose creation time falls inside w.
func BuildBarSeries(records []Record, w Window) BarSeries {
	series := BarSeries{Window: w, Buckets: enumerate(w)}
	index := make(map[string]int, len(series.Buckets))
	for i, b := range series.Buckets {
		index[b.Key] = i
	}
	loc := w.Start.Location()
	for _, r := range records {
		if !w.Contains(r.CreatedAt) {
			continue
		}
		key := bucketKey(r.CreatedAt.In(loc), w.Granularity)
		if i, ok := index[key]; ok {
			series.Buckets[i].Count++
			series.Total++
		}
	}
	return series
}

func enumerate(w Window) []Bucket {
	buckets := make([]Bucket, 0)
	if w.End.Before(w.Start) {
		return buckets
	}
	var cur time.Time
	var step func(time.Time) time.Time
	switch w.Granularity {
	case Day:
		cur = startOfDay(w.Start)
		step = func(t time.Time) time.Time { return t.AddDate(0, 0, 1) }
	case Week:
		cur = startOfWeek(w.Start)
		step = func(t time.Time) time.Time { return t.AddDate(0, 0, 7) }
	case Month:
		cur = firstOfMonth(w.Start)
		step = func(t time.Time) time.Time { return t.AddDate(0, 1, 0) }
	case Quarter:
		cur = firstOfQuarter(w.Start)
		step = func(t time.Time) time.Time { return t.AddDate(0, 3, 0) }
	default:
		return buckets
	}
	for !cur.After(w.End) {
		buckets = append(buckets, Bucket{
			Key:   bucketKey(cur, w.Granularity),
			Label: bucketLabel(cur, w.Granularity),
			Start: cur,
		})
		cur = step(cur)
	}
	return buckets
}

func bucketKey(t time.Time, g Granularity) string {
	switch g {
	case Day:
		return ymd(t)
	case Week:
		return "W" + ymd(startOfWeek(t))
	case Month:
		return fmt.Sprintf("%d-%d", t.Year(), int(t.Month()))
	default:
		return fmt.Sprintf("Q%d-%d", t.Year(), quarterOf(t))
	}
}

func bucketLabel(start time.Time, g Granularity) string {
	switch g {
	case Day:
		return ShortDate(start)
	case Week:
		return WeekRangeLabel(start)
	case Month:
		return MonthShort(start)
	default:
		return fmt.Sprintf("T%d", quarterOf(start))
	}
}
