// utils/dates.go
package utils

import "time"

const DayFormat = "2006-01-02"

// Today returns the server-local day string that scopes token
// numbering. Tickets either side of local midnight land in different
// day scopes; that is the documented boundary, not a bug.
func Today() string {
	return time.Now().Format(DayFormat)
}

func BeginningOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
