// Package policy decides when anonymous posting is open.
//
// Posting is open on Saturday and Sunday in UTC. An override opens it on
// every day. All calculations use UTC so that the gate and the countdown shown
// to clients agree regardless of the server's local timezone.
package policy

import "time"

const Timezone = "UTC"

type Gate struct {
	allowWeekdays bool
	now           func() time.Time
}

func New(allowWeekdays bool) *Gate {
	return &Gate{allowWeekdays: allowWeekdays, now: time.Now}
}

// WithClock replaces the wall clock, for tests.
func (g *Gate) WithClock(now func() time.Time) *Gate {
	g.now = now
	return g
}

// Now returns the gate's current time in UTC.
func (g *Gate) Now() time.Time {
	return g.now().UTC()
}

func (g *Gate) IsPostingAllowed() bool {
	return IsPostingAllowed(g.Now(), g.allowWeekdays)
}

func (g *Gate) NextChange() time.Time {
	return NextChange(g.Now())
}

func IsPostingAllowed(now time.Time, allowWeekdays bool) bool {
	if allowWeekdays {
		return true
	}
	return isWeekend(now.UTC().Weekday())
}

// NextChange returns the next UTC midnight at which the weekend state flips.
// It ignores the override.
func NextChange(now time.Time) time.Time {
	now = now.UTC()

	var days int
	switch wd := now.Weekday(); wd {
	case time.Sunday:
		days = 1
	case time.Saturday:
		days = 2
	default:
		days = int(time.Saturday - wd)
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return midnight.AddDate(0, 0, days)
}

func isWeekend(d time.Weekday) bool {
	return d == time.Saturday || d == time.Sunday
}
