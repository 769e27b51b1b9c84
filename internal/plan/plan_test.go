package plan

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"preplycal/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWindowsDefaultHorizon(t *testing.T) {
	seq, err := Windows(time.Date(2024, 5, 1, 17, 45, 0, 0, time.UTC), 60, 31)
	require.NoError(t, err)

	got := slices.Collect(seq)
	want := []model.Window{
		{Start: day(2024, 5, 1), End: day(2024, 6, 1)},
		{Start: day(2024, 6, 2), End: day(2024, 6, 30)},
	}
	assert.Equal(t, want, got)
	assert.Equal(t, "2024-05-01", got[0].StartDate())
	assert.Equal(t, "2024-06-01", got[0].EndDate())
}

func TestWindowsCoverHorizonExactly(t *testing.T) {
	start := day(2024, 1, 30)
	for horizon := 0; horizon <= 120; horizon++ {
		for span := 0; span <= 40; span++ {
			seq, err := Windows(start, horizon, span)
			require.NoError(t, err)
			windows := slices.Collect(seq)

			wantCount := (horizon + span + 1) / (span + 1)
			require.Len(t, windows, wantCount, "horizon=%d span=%d", horizon, span)

			assert.True(t, windows[0].Start.Equal(start))
			assert.True(t, windows[len(windows)-1].End.Equal(start.AddDate(0, 0, horizon)))

			for i, w := range windows {
				assert.False(t, w.End.Before(w.Start))
				assert.LessOrEqual(t, w.End.Sub(w.Start), time.Duration(span)*24*time.Hour)
				if i > 0 {
					prev := windows[i-1]
					assert.True(t, w.Start.Equal(prev.End.AddDate(0, 0, 1)),
						"gap or overlap between %s and %s", prev, w)
				}
			}
		}
	}
}

func TestWindowsRestartable(t *testing.T) {
	seq, err := Windows(day(2024, 2, 1), 45, 10)
	require.NoError(t, err)

	first := slices.Collect(seq)
	second := slices.Collect(seq)
	assert.Equal(t, first, second)
}

func TestWindowsEarlyStop(t *testing.T) {
	seq, err := Windows(day(2024, 2, 1), 90, 5)
	require.NoError(t, err)

	n := 0
	for range seq {
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, 3, n)
}

func TestWindowsLocalZone(t *testing.T) {
	lima, err := time.LoadLocation("America/Lima")
	require.NoError(t, err)

	seq, err := Windows(time.Date(2024, 3, 10, 23, 30, 0, 0, lima), 1, 31)
	require.NoError(t, err)
	windows := slices.Collect(seq)
	require.Len(t, windows, 1)
	assert.Equal(t, "2024-03-10", windows[0].StartDate())
	assert.Equal(t, "2024-03-11", windows[0].EndDate())
}

func TestWindowsNegative(t *testing.T) {
	_, err := Windows(day(2024, 1, 1), -1, 31)
	assert.ErrorIs(t, err, ErrNegative)

	_, err = Windows(day(2024, 1, 1), 60, -1)
	assert.ErrorIs(t, err, ErrNegative)
}
