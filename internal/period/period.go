package period

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidMonth is returned for month keys not shaped like YYYY-MM.
var ErrInvalidMonth = errors.New("invalid month key")

const layout = "2006-01"

// Month identifies a calendar month. Its string form (YYYY-MM) is the key
// used by month configs and month-scoped queries.
type Month struct {
	Year int
	Mon  time.Month
}

// Parse reads a YYYY-MM key.
func Parse(s string) (Month, error) {
	if len(s) != len(layout) {
		return Month{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return Month{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return Month{Year: t.Year(), Mon: t.Month()}, nil
}

// Current returns the month containing now, in now's location.
func Current(now time.Time) Month {
	return Month{Year: now.Year(), Mon: now.Month()}
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Mon))
}

// Bounds returns the first day of the month (inclusive) and the first day of
// the following month (exclusive) as ISO dates.
func (m Month) Bounds() (start, end string) {
	first := time.Date(m.Year, m.Mon, 1, 0, 0, 0, 0, time.UTC)
	return first.Format(time.DateOnly), first.AddDate(0, 1, 0).Format(time.DateOnly)
}
