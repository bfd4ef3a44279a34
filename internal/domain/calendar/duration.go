package calendar

import (
	"fmt"
	"time"

	"github.com/lodgical/service-reservation/internal/domain"
)

// DurationUnit is the unit of a service booking's declared duration.
type DurationUnit string

const (
	UnitMinutes DurationUnit = "minutes"
	UnitHours   DurationUnit = "hours"
	UnitDays    DurationUnit = "days"
	UnitWeeks   DurationUnit = "weeks"
	UnitMonths  DurationUnit = "months"
)

// IsValid returns true if the unit is recognized.
func (u DurationUnit) IsValid() bool {
	switch u {
	case UnitMinutes, UnitHours, UnitDays, UnitWeeks, UnitMonths:
		return true
	}
	return false
}

// Duration is a service booking's declared length, e.g. {2, hours}.
type Duration struct {
	Value int          `json:"value"`
	Unit  DurationUnit `json:"unit"`
}

// Validate checks that the duration is positive and its unit recognized.
func (d Duration) Validate() error {
	if d.Value <= 0 {
		return domain.NewFieldValidationError("duration.value", "duration must be positive")
	}
	if !d.Unit.IsValid() {
		return domain.NewFieldValidationError("duration.unit", fmt.Sprintf("invalid duration unit: %s", d.Unit))
	}
	return nil
}

// AddTo returns start advanced by the duration using calendar-aware addition.
// Month addition clamps the day-of-month instead of overflowing into the next
// month (Jan 31 + 1 month = Feb 28/29, not Mar 2/3).
func (d Duration) AddTo(start time.Time) time.Time {
	switch d.Unit {
	case UnitMinutes:
		return start.Add(time.Duration(d.Value) * time.Minute)
	case UnitHours:
		return start.Add(time.Duration(d.Value) * time.Hour)
	case UnitDays:
		return start.AddDate(0, 0, d.Value)
	case UnitWeeks:
		return start.AddDate(0, 0, 7*d.Value)
	case UnitMonths:
		return addMonthsClamped(start, d.Value)
	}
	return start
}

// Interval returns the half-open interval [start, start+duration).
func (d Duration) Interval(start time.Time) (Interval, error) {
	return NewInterval(start, d.AddTo(start))
}

func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	m := int(month) + months
	year += (m - 1) / 12
	m = (m-1)%12 + 1
	if m < 1 {
		m += 12
		year--
	}
	if last := daysInMonth(year, time.Month(m)); day > last {
		day = last
	}
	hour, min, sec := t.Clock()
	return time.Date(year, time.Month(m), day, hour, min, sec, t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
