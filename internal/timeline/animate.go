package timeline

import (
	"math"
	"time"
)

// EasingFunc maps normalized progress in [0,1] to eased progress in [0,1].
type EasingFunc func(float64) float64

// Linear applies no easing.
func Linear(p float64) float64 { return p }

// EaseInOutCubic accelerates in the first half and decelerates in the second.
func EaseInOutCubic(p float64) float64 {
	if p < 0.5 {
		return 4 * p * p * p
	}
	return 1 - math.Pow(-2*p+2, 3)/2
}

// EaseOutQuad decelerates toward the end of the transition.
func EaseOutQuad(p float64) float64 {
	return 1 - (1-p)*(1-p)
}

// Transition is a timed interpolation between two values, evaluated per
// frame against wall-clock time. There is no ticker and no suspension: each
// Value call computes the current position from elapsed time alone.
type Transition struct {
	startTime time.Time
	duration  time.Duration
	from      float64
	to        float64
	easing    EasingFunc
}

// NewTransition starts a transition at startTime. A nil easing defaults to
// Linear; a non-positive duration completes immediately.
func NewTransition(startTime time.Time, duration time.Duration, from, to float64, easing EasingFunc) *Transition {
	if easing == nil {
		easing = Linear
	}
	return &Transition{
		startTime: startTime,
		duration:  duration,
		from:      from,
		to:        to,
		easing:    easing,
	}
}

// Value returns the interpolated value at the given time and whether the
// transition has finished.
func (t *Transition) Value(now time.Time) (float64, bool) {
	if t.duration <= 0 {
		return t.to, true
	}
	elapsed := now.Sub(t.startTime)
	if elapsed <= 0 {
		return t.from, false
	}
	if elapsed >= t.duration {
		return t.to, true
	}
	p := t.easing(float64(elapsed) / float64(t.duration))
	return t.from + (t.to-t.from)*p, false
}
