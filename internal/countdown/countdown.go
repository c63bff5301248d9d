package countdown

import "time"

const (
	msPerSecond = int64(1000)
	msPerMinute = 60 * msPerSecond
	msPerHour   = 60 * msPerMinute
	msPerDay    = 24 * msPerHour
)

// Remaining is the time left until a target, broken into whole units.
// Hours, Minutes and Seconds stay below 24, 60 and 60; Days is unbounded.
type Remaining struct {
	Days    int64 `json:"days"`
	Hours   int64 `json:"hours"`
	Minutes int64 `json:"minutes"`
	Seconds int64 `json:"seconds"`
}

// Compute returns the time left from now until target. A target at or
// before now (the zero time included) yields all zeros.
func Compute(target, now time.Time) Remaining {
	if !target.After(now) {
		return Remaining{}
	}
	delta := target.Sub(now).Milliseconds()

	r := Remaining{Days: delta / msPerDay}
	delta %= msPerDay
	r.Hours = delta / msPerHour
	delta %= msPerHour
	r.Minutes = delta / msPerMinute
	delta %= msPerMinute
	r.Seconds = delta / msPerSecond
	return r
}

// Total returns the whole number of seconds r represents.
func (r Remaining) Total() int64 {
	return r.Days*86400 + r.Hours*3600 + r.Minutes*60 + r.Seconds
}

// Reached reports whether the countdown has hit zero.
func (r Remaining) Reached() bool {
	return r == Remaining{}
}
