package history

import (
	"fmt"
	"math"
	"time"
)

var monthsShort = [12]string{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "set", "oct", "nov", "dic"}

// MonthShort returns the Spanish (Peru) abbreviated month name without a trailing dot.
func MonthShort(t time.Time) string {
	return monthsShort[t.Month()-1]
}

// ShortDate formats t as "02 set".
func ShortDate(t time.Time) string {
	return fmt.Sprintf("%02d %s", t.Day(), MonthShort(t))
}

// WeekRangeLabel formats the seven days starting at monday, e.g. "02–08 set"
// or "28 jul–03 ago" when the week crosses a month boundary.
func WeekRangeLabel(monday time.Time) string {
	sunday := monday.AddDate(0, 0, 6)
	if MonthShort(monday) == MonthShort(sunday) {
		return fmt.Sprintf("%02d–%02d %s", monday.Day(), sunday.Day(), MonthShort(sunday))
	}
	return fmt.Sprintf("%02d %s–%02d %s", monday.Day(), MonthShort(monday), sunday.Day(), MonthShort(sunday))
}

// TimeAgo renders the whole days elapsed between t and now.
func TimeAgo(t, now time.Time) string {
	days := int(math.Floor(now.Sub(t).Hours() / 24))
	switch {
	case days <= 0:
		return "Hoy"
	case days == 1:
		return "Hace 1 día"
	default:
		return fmt.Sprintf("Hace %d días", days)
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// startOfWeek returns the Monday at or before t.
func startOfWeek(t time.Time) time.Time {
	day := startOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func firstOfQuarter(t time.Time) time.Time {
	q := (int(t.Month()) - 1) / 3
	return time.Date(t.Year(), time.Month(q*3+1), 1, 0, 0, 0, 0, t.Location())
}

func quarterOf(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}

// DateLayout is the calendar date format used in keys, queries and exports.
const DateLayout = "2006-01-02"

func ymd(t time.Time) string {
	return t.Format(DateLayout)
}
