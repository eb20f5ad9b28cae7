package render

import "time"

// DefaultFrameDuration replaces zero frame durations.
const DefaultFrameDuration = 100 * time.Millisecond

// Animation tracks which frame of a looping animation is on screen.
type Animation struct {
	TotalFrames int
	Index       int
	Duration    []time.Duration // how long each frame is displayed
	LastChange  time.Time       // when Index last moved
}

func NewAnimation(durations []time.Duration, now time.Time) *Animation {
	return &Animation{
		TotalFrames: len(durations),
		Duration:    durations,
		LastChange:  now,
	}
}

func (a *Animation) frameDuration(i int) time.Duration {
	if i < len(a.Duration) && a.Duration[i] > 0 {
		return a.Duration[i]
	}
	return DefaultFrameDuration
}

func (a *Animation) loop() time.Duration {
	var total time.Duration
	for i := range a.TotalFrames {
		total += a.frameDuration(i)
	}
	return total
}

// Advance moves Index to the frame that should be showing at now and
// reports whether a different frame is showing. Whole loops that elapsed
// are skipped.
func (a *Animation) Advance(now time.Time) bool {
	if a.TotalFrames <= 1 {
		return false
	}
	start := a.Index
	if elapsed, loop := now.Sub(a.LastChange), a.loop(); elapsed >= loop {
		a.LastChange = a.LastChange.Add(elapsed / loop * loop)
	}
	for {
		d := a.frameDuration(a.Index)
		if now.Sub(a.LastChange) < d {
			break
		}
		a.LastChange = a.LastChange.Add(d)
		a.Index = (a.Index + 1) % a.TotalFrames
	}
	return a.Index != start
}
