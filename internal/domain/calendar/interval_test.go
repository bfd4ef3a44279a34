package calendar

import (
	"testing"
	"time"

	"github.com/lodgical/service-reservation/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(h int) time.Time {
	return time.Date(2026, 6, 1, h, 0, 0, 0, time.UTC)
}

func TestNewInterval(t *testing.T) {
	iv, err := NewInterval(ts(10), ts(12))
	require.NoError(t, err)
	assert.Equal(t, ts(10), iv.Start)
	assert.Equal(t, ts(12), iv.End)

	_, err = NewInterval(ts(12), ts(12))
	assert.True(t, domain.IsKind(err, domain.KindValidationFailed))

	_, err = NewInterval(ts(12), ts(10))
	assert.True(t, domain.IsKind(err, domain.KindValidationFailed))

	_, err = NewInterval(time.Time{}, ts(10))
	assert.True(t, domain.IsKind(err, domain.KindValidationFailed))
}

func TestOverlaps(t *testing.T) {
	base := Interval{Start: ts(10), End: ts(12)}

	tests := []struct {
		name  string
		other Interval
		want  bool
	}{
		{"identical", Interval{Start: ts(10), End: ts(12)}, true},
		{"contained", Interval{Start: ts(10), End: ts(11)}, true},
		{"partial overlap", Interval{Start: ts(11), End: ts(13)}, true},
		{"covers", Interval{Start: ts(9), End: ts(13)}, true},
		{"back to back after", Interval{Start: ts(12), End: ts(13)}, false},
		{"back to back before", Interval{Start: ts(9), End: ts(10)}, false},
		{"disjoint", Interval{Start: ts(14), End: ts(15)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Overlaps(tt.other))
			assert.Equal(t, tt.want, tt.other.Overlaps(base))
		})
	}
}

func TestNewStay(t *testing.T) {
	checkIn := time.Date(2026, 6, 1, 15, 0, 0, 0, time.UTC)
	checkOut := time.Date(2026, 6, 4, 11, 0, 0, 0, time.UTC)

	iv, err := NewStay(checkIn, &checkOut)
	require.NoError(t, err)
	assert.Equal(t, checkIn, iv.Start)
	assert.Equal(t, checkOut, iv.End)

	// No check-out widens to a full day so the stay still excludes others.
	iv, err = NewStay(checkIn, nil)
	require.NoError(t, err)
	assert.Equal(t, checkIn.Add(24*time.Hour), iv.End)

	// Same-instant check-out widens the same way instead of producing an
	// empty interval.
	same := checkIn
	iv, err = NewStay(checkIn, &same)
	require.NoError(t, err)
	assert.Equal(t, checkIn.Add(24*time.Hour), iv.End)

	before := checkIn.Add(-time.Hour)
	_, err = NewStay(checkIn, &before)
	assert.True(t, domain.IsKind(err, domain.KindValidationFailed))
}

func TestContains(t *testing.T) {
	iv := Interval{Start: ts(10), End: ts(12)}
	assert.True(t, iv.Contains(ts(10)))
	assert.True(t, iv.Contains(ts(11)))
	assert.False(t, iv.Contains(ts(12)))
	assert.False(t, iv.Contains(ts(9)))
}

func TestIntersectsDay(t *testing.T) {
	// A stay from June 1 15:00 to June 3 11:00 touches June 1, 2, and 3.
	iv := Interval{
		Start: time.Date(2026, 6, 1, 15, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 6, 3, 11, 0, 0, 0, time.UTC),
	}
	assert.True(t, iv.IntersectsDay(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, iv.IntersectsDay(time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC)))
	assert.True(t, iv.IntersectsDay(time.Date(2026, 6, 3, 0, 0, 0, 0, time.UTC)))
	assert.False(t, iv.IntersectsDay(time.Date(2026, 6, 4, 0, 0, 0, 0, time.UTC)))
	assert.False(t, iv.IntersectsDay(time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)))
}

func TestNights(t *testing.T) {
	twoNights := Interval{
		Start: time.Date(2026, 6, 1, 15, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 6, 3, 15, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, 2, twoNights.Nights())

	short := Interval{Start: ts(10), End: ts(12)}
	assert.Equal(t, 1, short.Nights())
}
