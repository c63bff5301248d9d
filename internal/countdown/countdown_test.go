package countdown

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeOneHourBeforeMidnight(t *testing.T) {
	target := time.Date(2025, 10, 18, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 10, 17, 23, 0, 0, 0, time.UTC)

	assert.Equal(t, Remaining{Days: 0, Hours: 1, Minutes: 0, Seconds: 0}, Compute(target, now))
}

func TestComputePastTargetIsZero(t *testing.T) {
	target := time.Date(2025, 10, 18, 15, 0, 0, 0, time.UTC)

	for _, now := range []time.Time{
		target,
		target.Add(time.Millisecond),
		target.Add(time.Hour),
		target.AddDate(3, 0, 0),
	} {
		r := Compute(target, now)
		assert.Equal(t, Remaining{}, r, "now=%s", now)
		assert.True(t, r.Reached())
	}
}

func TestComputeZeroTarget(t *testing.T) {
	assert.Equal(t, Remaining{}, Compute(time.Time{}, time.Now()))
}

func TestComputeDecomposition(t *testing.T) {
	now := time.Date(2024, 2, 28, 12, 30, 15, 0, time.UTC)

	tests := []struct {
		name  string
		delta time.Duration
		want  Remaining
	}{
		{"sub-second", 999 * time.Millisecond, Remaining{}},
		{"one second", time.Second, Remaining{Seconds: 1}},
		{"floor not round", 59*time.Second + 999*time.Millisecond, Remaining{Seconds: 59}},
		{"one minute", time.Minute, Remaining{Minutes: 1}},
		{"one day", 24 * time.Hour, Remaining{Days: 1}},
		{"mixed", 3*24*time.Hour + 4*time.Hour + 5*time.Minute + 6*time.Second + 700*time.Millisecond,
			Remaining{Days: 3, Hours: 4, Minutes: 5, Seconds: 6}},
		{"many days", 400 * 24 * time.Hour, Remaining{Days: 400}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compute(now.Add(tt.delta), now))
		})
	}
}

func TestComputeReconstructsDelta(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, ms := range []int64{1, 999, 1000, 61_001, 3_599_999, 86_400_000, 90_061_500, 1_234_567_890, 98_765_432_109} {
		r := Compute(now.Add(time.Duration(ms)*time.Millisecond), now)

		assert.Equal(t, ms/1000, r.Total(), "delta=%dms", ms)
		assert.GreaterOrEqual(t, r.Hours, int64(0))
		assert.Less(t, r.Hours, int64(24))
		assert.Less(t, r.Minutes, int64(60))
		assert.Less(t, r.Seconds, int64(60))
	}
}

func TestComputeIsPure(t *testing.T) {
	target := time.Date(2025, 10, 18, 15, 0, 0, 0, time.UTC)
	now := time.Date(2025, 6, 1, 9, 41, 7, 250_000_000, time.UTC)

	first := Compute(target, now)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Compute(target, now))
	}
}

func TestComputeIgnoresZone(t *testing.T) {
	hcm := time.FixedZone("ICT", 7*3600)
	target := time.Date(2025, 10, 18, 7, 0, 0, 0, hcm) // 00:00 UTC
	now := time.Date(2025, 10, 17, 23, 0, 0, 0, time.UTC)

	assert.Equal(t, Remaining{Hours: 1}, Compute(target, now))
}
