package slot

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidWindow = errors.New("window start must be before end")

// Window is a half-open time interval [start, end).
type Window struct {
	start time.Time
	end   time.Time
}

func NewWindow(start, end time.Time) (Window, error) {
	if !start.Before(end) {
		return Window{}, ErrInvalidWindow
	}
	return Window{start: start, end: end}, nil
}

func (w Window) Start() time.Time {
	return w.start
}

func (w Window) End() time.Time {
	return w.end
}

func (w Window) Duration() time.Duration {
	return w.end.Sub(w.start)
}

// Overlaps reports whether the two half-open windows intersect. A window
// ending exactly when the other starts does not overlap.
func (w Window) Overlaps(other Window) bool {
	return w.start.Before(other.end) && w.end.After(other.start)
}

// ExtendedBy returns the window with its end pushed out by the dwell-time
// buffer, modelling table turnover after a seating.
func (w Window) ExtendedBy(buffer time.Duration) Window {
	if buffer <= 0 {
		return w
	}
	return Window{start: w.start, end: w.end.Add(buffer)}
}

func (w Window) String() string {
	return fmt.Sprintf("[%s,%s)", w.start.Format(time.RFC3339), w.end.Format(time.RFC3339))
}

// SameClockTime reports whether t shares w's start date and time-of-day.
// Date and clock components are compared independently so that a wall-clock
// match is not broken by location drift between the two values.
func (w Window) SameClockTime(t time.Time) bool {
	sy, sm, sd := w.start.Date()
	ty, tm, td := t.Date()
	if sy != ty || sm != tm || sd != td {
		return false
	}
	sh, smin, _ := w.start.Clock()
	th, tmin, _ := t.Clock()
	return sh == th && smin == tmin
}
