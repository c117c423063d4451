package reports

import "time"

// Window is the caller-selected lookback period for explicit comparisons.
type Window string

const (
	WindowOneMonth    Window = "1month"
	WindowThreeMonths Window = "3months"
	WindowSixMonths   Window = "6months"
	WindowOneYear     Window = "1year"
	WindowAll         Window = "all"
)

// DefaultWindow is used when the caller omits the comparison period.
const DefaultWindow = WindowSixMonths

// ParseWindow maps a request string onto a Window, falling back to the
// default for unknown values rather than rejecting them.
func ParseWindow(s string) Window {
	switch Window(s) {
	case WindowOneMonth, WindowThreeMonths, WindowSixMonths, WindowOneYear, WindowAll:
		return Window(s)
	}
	return DefaultWindow
}

// Cutoff returns the earliest creation time a historical row may have to fall
// inside the window. WindowAll returns the unix epoch so both SQL drivers can
// compare against it.
func (w Window) Cutoff(now time.Time) time.Time {
	switch w {
	case WindowOneMonth:
		return now.AddDate(0, 0, -30)
	case WindowThreeMonths:
		return now.AddDate(0, 0, -90)
	case WindowSixMonths:
		return now.AddDate(0, 0, -180)
	case WindowOneYear:
		return now.AddDate(0, 0, -365)
	case WindowAll:
		return time.Unix(0, 0).UTC()
	}
	return now.AddDate(0, 0, -180)
}
