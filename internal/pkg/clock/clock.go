package clock

import "time"

// Clock is the single time source for the whole core. Every "now" and
// "today" resolves through it, pinned to the organization's time zone,
// so day boundaries are local midnight rather than UTC midnight and
// tests can supply deterministic instants.
type Clock interface {
	// Now returns the current instant in the organization's time zone.
	Now() time.Time
	// Today returns local midnight of the current day.
	Today() time.Time
	// Location returns the organization's fixed time zone.
	Location() *time.Location
}

type clock struct {
	loc *time.Location
}

// New creates a Clock pinned to the named IANA time zone.
func New(timezone string) (Clock, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, err
	}
	return &clock{loc: loc}, nil
}

func (c *clock) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c *clock) Today() time.Time {
	return Midnight(c.Now())
}

func (c *clock) Location() *time.Location {
	return c.loc
}

// Midnight truncates t to local midnight in t's own location.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// MonthRange returns the first day of the month and the first day of the
// next month in loc. Callers treat the range as [start, end).
func MonthRange(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}

// Fixed is a deterministic Clock for tests. Advance moves it forward.
type Fixed struct {
	Current time.Time
}

// NewFixed creates a fixed clock at the given instant.
func NewFixed(t time.Time) *Fixed {
	return &Fixed{Current: t}
}

func (f *Fixed) Now() time.Time {
	return f.Current
}

func (f *Fixed) Today() time.Time {
	return Midnight(f.Current)
}

func (f *Fixed) Location() *time.Location {
	return f.Current.Location()
}

// Advance moves the fixed clock forward by d.
func (f *Fixed) Advance(d time.Duration) {
	f.Current = f.Current.Add(d)
}

// Set moves the fixed clock to an absolute instant.
func (f *Fixed) Set(t time.Time) {
	f.Current = t
}
