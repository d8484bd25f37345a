package history

import (
	stdErrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/oratoria-api/pkg/errors"
)

var now = at("2025-09-10T12:00:00Z")

func TestResolveWindowPresets(t *testing.T) {
	cases := []struct {
		period Period
		start  string
		gran   Granularity
	}{
		{Period7Days, "2025-09-04T00:00:00Z", Day},
		{Period30Days, "2025-08-12T00:00:00Z", Week},
		{Period6Months, "2025-04-01T00:00:00Z", Month},
		{Period1Year, "2024-10-01T00:00:00Z", Month},
		{"", "2025-08-12T00:00:00Z", Week},
	}
	for _, tc := range cases {
		t.Run(string(tc.period), func(t *testing.T) {
			w, err := ResolveWindow(tc.period, now, time.Time{}, time.Time{}, time.UTC)
			require.NoError(t, err)
			assert.Equal(t, at(tc.start), w.Start)
			assert.Equal(t, tc.gran, w.Granularity)
			assert.Equal(t, time.Date(2025, 9, 10, 23, 59, 59, 999000000, time.UTC), w.End)
		})
	}
}

func TestResolveWindowCustom(t *testing.T) {
	day := func(s string) time.Time { return at(s + "T00:00:00Z") }
	cases := []struct {
		start, end string
		gran       Granularity
	}{
		{"2025-09-10", "2025-09-10", Day},
		{"2025-09-01", "2025-09-14", Day},
		{"2025-09-01", "2025-09-15", Week},
		{"2025-01-01", "2025-12-31", Month},
		{"2024-01-01", "2025-12-31", Quarter},
	}
	for _, tc := range cases {
		w, err := ResolveWindow(PeriodCustom, now, day(tc.start), day(tc.end), time.UTC)
		require.NoError(t, err)
		assert.Equal(t, tc.gran, w.Granularity, "%s..%s", tc.start, tc.end)
	}
}

func TestResolveWindowRejectsBadInput(t *testing.T) {
	_, err := ResolveWindow(PeriodCustom, now, time.Time{}, now, time.UTC)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, stdErrors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrInvalidPeriod.Code, appErr.Code)

	_, err = ResolveWindow(PeriodCustom, now, now, now.AddDate(0, 0, -3), time.UTC)
	assert.Error(t, err)

	_, err = ResolveWindow("2w", now, time.Time{}, time.Time{}, time.UTC)
	assert.Error(t, err)
}

func TestBuildBarSeriesWeeksStartOnMonday(t *testing.T) {
	w, err := ResolveWindow(Period30Days, now, time.Time{}, time.Time{}, time.UTC)
	require.NoError(t, err)

	series := BuildBarSeries([]Record{
		{CreatedAt: at("2025-09-03T15:00:00Z")},
		{CreatedAt: at("2025-09-01T08:00:00Z")},
		{CreatedAt: at("2025-08-11T10:00:00Z")},
	}, w)

	assert.Equal(t, []string{"11–17 ago", "18–24 ago", "25–31 ago", "01–07 set", "08–14 set"}, series.Labels())
	assert.Equal(t, []int{0, 0, 0, 2, 0}, series.Counts())
	assert.Equal(t, "W2025-09-01", series.Buckets[3].Key)
	assert.Equal(t, 2, series.Total)
}

func TestBuildBarSeriesDays(t *testing.T) {
	w, err := ResolveWindow(Period7Days, now, time.Time{}, time.Time{}, time.UTC)
	require.NoError(t, err)

	series := BuildBarSeries([]Record{
		{CreatedAt: at("2025-09-10T23:00:00Z")},
		{CreatedAt: at("2025-09-04T00:00:00Z")},
		{CreatedAt: at("2025-09-11T00:00:00Z")},
	}, w)

	require.Len(t, series.Buckets, 7)
	assert.Equal(t, "04 set", series.Buckets[0].Label)
	assert.Equal(t, "2025-09-04", series.Buckets[0].Key)
	assert.Equal(t, []int{1, 0, 0, 0, 0, 0, 1}, series.Counts())
}

func TestBuildBarSeriesMonths(t *testing.T) {
	w, err := ResolveWindow(Period6Months, now, time.Time{}, time.Time{}, time.UTC)
	require.NoError(t, err)

	series := BuildBarSeries([]Record{
		{CreatedAt: at("2025-04-01T00:00:00Z")},
		{CreatedAt: at("2025-09-09T00:00:00Z")},
		{CreatedAt: at("2025-03-31T23:59:59Z")},
	}, w)

	assert.Equal(t, []string{"abr", "may", "jun", "jul", "ago", "set"}, series.Labels())
	assert.Equal(t, "2025-4", series.Buckets[0].Key)
	assert.Equal(t, []int{1, 0, 0, 0, 0, 1}, series.Counts())
}

func TestBuildBarSeriesQuarters(t *testing.T) {
	w, err := ResolveWindow(PeriodCustom, now, at("2024-01-01T00:00:00Z"), at("2025-12-31T00:00:00Z"), time.UTC)
	require.NoError(t, err)

	series := BuildBarSeries([]Record{{CreatedAt: at("2025-08-15T00:00:00Z")}}, w)

	assert.Equal(t, []string{"T1", "T2", "T3", "T4", "T1", "T2", "T3", "T4"}, series.Labels())
	assert.Equal(t, "Q2025-3", series.Buckets[6].Key)
	assert.Equal(t, 1, series.Buckets[6].Count)
}

func TestWeekRangeLabelAcrossMonths(t *testing.T) {
	assert.Equal(t, "28 jul–03 ago", WeekRangeLabel(at("2025-07-28T00:00:00Z")))
	assert.Equal(t, "02–08 jun", WeekRangeLabel(at("2025-06-02T00:00:00Z")))
}

func TestPeriodValid(t *testing.T) {
	assert.True(t, Period1Year.Valid())
	assert.False(t, Period("2w").Valid())
}
