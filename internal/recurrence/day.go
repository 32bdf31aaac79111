package recurrence

import (
	"fmt"
	"time"
)

// Day is a canonical civil date in the venue's calendar.  It is a plain
// comparable value so day sets can be diffed with map semantics, unlike
// time.Time whose monotonic clock and location fields break equality.
type Day struct {
	Year  int
	Month time.Month
	Date  int
}

// DayOf reduces an instant to the civil date it falls on in loc.
func DayOf(t time.Time, loc *time.Location) Day {
	y, m, d := t.In(loc).Date()
	return Day{Year: y, Month: m, Date: d}
}

// At combines the day with a "HH:MM" time of day in loc and returns the
// absolute instant in UTC.
func (d Day) At(hhmm string, loc *time.Location) (time.Time, error) {
	var h, m int
	if _, err := fmt.Sscanf(hhmm, "%d:%d", &h, &m); err != nil {
		return time.Time{}, fmt.Errorf("bad time of day %q: %w", hhmm, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return time.Time{}, fmt.Errorf("bad time of day %q", hhmm)
	}
	return time.Date(d.Year, d.Month, d.Date, h, m, 0, 0, loc).UTC(), nil
}

// Midnight returns the start of the day in loc.
func (d Day) Midnight(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Date, 0, 0, 0, 0, loc)
}

// Before reports whether d is an earlier calendar date than o.
func (d Day) Before(o Day) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Date < o.Date
}

func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Date)
}

// Diff computes the symmetric difference between two day sets.  added
// holds the days present only in newDays, removed the days present only
// in oldDays.  Both results are sorted ascending.
func Diff(oldDays, newDays []Day) (added, removed []Day) {
	oldSet := make(map[Day]struct{}, len(oldDays))
	for _, d := range oldDays {
		oldSet[d] = struct{}{}
	}
	newSet := make(map[Day]struct{}, len(newDays))
	for _, d := range newDays {
		newSet[d] = struct{}{}
	}
	for _, d := range newDays {
		if _, ok := oldSet[d]; !ok {
			added = append(added, d)
		}
	}
	for _, d := range oldDays {
		if _, ok := newSet[d]; !ok {
			removed = append(removed, d)
		}
	}
	sortDays(added)
	sortDays(removed)
	return added, removed
}
