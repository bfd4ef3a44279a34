package calendar

import (
	"testing"
	"time"

	"github.com/lodgical/service-reservation/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDurationValidate(t *testing.T) {
	assert.NoError(t, Duration{Value: 2, Unit: UnitHours}.Validate())

	err := Duration{Value: 0, Unit: UnitHours}.Validate()
	assert.True(t, domain.IsKind(err, domain.KindValidationFailed))

	err = Duration{Value: -1, Unit: UnitDays}.Validate()
	assert.True(t, domain.IsKind(err, domain.KindValidationFailed))

	err = Duration{Value: 1, Unit: "fortnights"}.Validate()
	assert.True(t, domain.IsKind(err, domain.KindValidationFailed))
}

func TestDurationAddTo(t *testing.T) {
	start := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		d    Duration
		want time.Time
	}{
		{"minutes", Duration{Value: 90, Unit: UnitMinutes}, start.Add(90 * time.Minute)},
		{"hours", Duration{Value: 3, Unit: UnitHours}, start.Add(3 * time.Hour)},
		{"days", Duration{Value: 10, Unit: UnitDays}, time.Date(2026, 6, 11, 10, 0, 0, 0, time.UTC)},
		{"weeks", Duration{Value: 2, Unit: UnitWeeks}, time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)},
		{"months", Duration{Value: 1, Unit: UnitMonths}, time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.d.AddTo(start))
		})
	}
}

func TestDurationAddToMonthClamping(t *testing.T) {
	// Jan 31 + 1 month lands on the last day of February, not March 2/3.
	jan31 := time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC)
	got := Duration{Value: 1, Unit: UnitMonths}.AddTo(jan31)
	assert.Equal(t, time.Date(2026, 2, 28, 12, 0, 0, 0, time.UTC), got)

	// Leap year keeps the 29th.
	jan31leap := time.Date(2028, 1, 31, 12, 0, 0, 0, time.UTC)
	got = Duration{Value: 1, Unit: UnitMonths}.AddTo(jan31leap)
	assert.Equal(t, time.Date(2028, 2, 29, 12, 0, 0, 0, time.UTC), got)

	// Crossing a year boundary.
	nov30 := time.Date(2026, 11, 30, 9, 0, 0, 0, time.UTC)
	got = Duration{Value: 3, Unit: UnitMonths}.AddTo(nov30)
	assert.Equal(t, time.Date(2027, 2, 28, 9, 0, 0, 0, time.UTC), got)
}

func TestDurationInterval(t *testing.T) {
	start := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	iv, err := Duration{Value: 2, Unit: UnitHours}.Interval(start)
	require.NoError(t, err)
	assert.Equal(t, start, iv.Start)
	assert.Equal(t, start.Add(2*time.Hour), iv.End)
}
