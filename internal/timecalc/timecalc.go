package timecalc

import (
	"fmt"
	"time"
)

// monthNames are the abbreviations printed on the documentation sheet.
var monthNames = map[int]string{
	1:  "Jan",
	2:  "Feb",
	3:  "Mar",
	4:  "Apr",
	5:  "Mai",
	6:  "Jun",
	7:  "Jul",
	8:  "Aug",
	9:  "Sep",
	10: "Oct",
	11: "Nov",
	12: "Dec",
}

// MonthName returns the sheet abbreviation for a month number, or "" if the
// number is out of range.
func MonthName(month int) string {
	return monthNames[month]
}

// FormatHoursMinutes formats a duration as HH:MM, dropping seconds. Negative
// durations are prefixed with a minus sign.
func FormatHoursMinutes(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	total := int64(d.Seconds())
	h := total / 3600
	m := (total % 3600) / 60
	return fmt.Sprintf("%s%02d:%02d", sign, h, m)
}

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// PreviousMonth returns the calendar month immediately before the given
// month/year, rolling the year back across January.
func PreviousMonth(month, year int) (int, int) {
	t := time.Date(year, time.Month(month), 10, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	return int(t.Month()), t.Year()
}
