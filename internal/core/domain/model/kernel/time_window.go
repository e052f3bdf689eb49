package kernel

import (
	"fmt"
	"time"

	"tripplanner/internal/pkg/errs"
	"tripplanner/internal/pkg/guard"
)

// ErrTimeWindowIsNotConstructed is returned when a zero-value TimeWindow is used.
var ErrTimeWindowIsNotConstructed = errs.NewValueIsRequiredError(
	"time window must be created via NewTimeWindow")

// TimeWindow is the interval in which a retailer accepts a delivery.
// Start is inclusive and End is exclusive.
type TimeWindow struct {
	start time.Time
	end   time.Time
	guard guard.ConstructorGuard
}

// NewTimeWindow creates a window. Both instants are required and end must be after start.
func NewTimeWindow(start time.Time, end time.Time) (TimeWindow, error) {
	if start.IsZero() {
		return TimeWindow{}, errs.NewValueIsRequiredError("windowStart")
	}
	if end.IsZero() {
		return TimeWindow{}, errs.NewValueIsRequiredError("windowEnd")
	}
	if !end.After(start) {
		return TimeWindow{}, errs.NewValueIsInvalidErrorWithCause("window",
			fmt.Errorf("end %s is not after start %s", end.Format(time.RFC3339), start.Format(time.RFC3339)))
	}

	return TimeWindow{
		start: start,
		end:   end,
		guard: guard.NewConstructorGuard(),
	}, nil
}

// Validate reports whether the window was built by NewTimeWindow.
func (w TimeWindow) Validate() error {
	return w.guard.Validate(ErrTimeWindowIsNotConstructed)
}

// Start returns the first acceptable delivery instant.
func (w TimeWindow) Start() time.Time {
	return w.start
}

// End returns the instant the window closes.
func (w TimeWindow) End() time.Time {
	return w.end
}

// Duration returns End - Start.
func (w TimeWindow) Duration() time.Duration {
	return w.end.Sub(w.start)
}

// Contains reports whether t falls in [Start, End).
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.start) && t.Before(w.end)
}

// Shift returns a copy moved by d. Negative d moves the window earlier.
func (w TimeWindow) Shift(d time.Duration) TimeWindow {
	return TimeWindow{
		start: w.start.Add(d),
		end:   w.end.Add(d),
		guard: w.guard,
	}
}

// IsEqual compares start and end instants.
func (w TimeWindow) IsEqual(other TimeWindow) bool {
	return w.start.Equal(other.start) && w.end.Equal(other.end)
}

func (w TimeWindow) String() string {
	return fmt.Sprintf("[%s, %s)", w.start.Format(time.RFC3339), w.end.Format(time.RFC3339))
}
