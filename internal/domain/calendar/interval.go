package calendar

import (
	"time"

	"github.com/lodgical/service-reservation/internal/domain"
)

// Interval is a half-open time range [Start, End) against which all overlap
// testing is performed.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewInterval creates an Interval, requiring End > Start.
func NewInterval(start, end time.Time) (Interval, error) {
	if start.IsZero() {
		return Interval{}, domain.NewFieldValidationError("start", "start time is required")
	}
	if !end.After(start) {
		return Interval{}, domain.NewFieldValidationError("end", "end must be after start")
	}
	return Interval{Start: start.UTC(), End: end.UTC()}, nil
}

// NewStay builds the occupancy interval for an accommodation booking. A
// missing or same-day check-out is widened to a full day: a literal [s, s) is
// empty under the half-open intersection test and would let two bookings share
// a start instant.
func NewStay(checkIn time.Time, checkOut *time.Time) (Interval, error) {
	if checkIn.IsZero() {
		return Interval{}, domain.NewFieldValidationError("check_in", "check-in date is required")
	}
	end := checkIn.Add(24 * time.Hour)
	if checkOut != nil && checkOut.After(checkIn) {
		end = *checkOut
	} else if checkOut != nil && checkOut.Before(checkIn) {
		return Interval{}, domain.NewFieldValidationError("check_out", "check-out must not be before check-in")
	}
	return Interval{Start: checkIn.UTC(), End: end.UTC()}, nil
}

// Overlaps reports whether two half-open intervals intersect. The strict
// comparisons make back-to-back intervals legal: [10:00, 12:00) and
// [12:00, 13:00) do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Contains reports whether the instant t falls inside the interval.
func (i Interval) Contains(t time.Time) bool {
	return !t.Before(i.Start) && t.Before(i.End)
}

// IntersectsDay reports whether any part of the interval falls on the calendar
// day containing dayStart (midnight UTC).
func (i Interval) IntersectsDay(day time.Time) bool {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return i.Overlaps(Interval{Start: dayStart, End: dayStart.Add(24 * time.Hour)})
}

// Duration returns the elapsed time covered by the interval.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Nights returns the number of whole nights spanned, never less than one.
func (i Interval) Nights() int {
	nights := int(i.End.Sub(i.Start).Hours() / 24)
	if nights < 1 {
		nights = 1
	}
	return nights
}
