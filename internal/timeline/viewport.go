package timeline

import (
	"fmt"
	"math"
	"time"

	"github.com/sayantanroy47/tasky-timeline/pkg/models"
)

// monthDayScale narrows per-day columns in month zoom so a year of data fits
// a reasonable width. The transform stays linear in time at every zoom so
// DateToPixel and PixelToDate remain exact inverses.
const monthDayScale = 0.25

// defaultJumpDuration is how long the JumpToDate scroll animation runs.
const defaultJumpDuration = 400 * time.Millisecond

// Viewport maps the unbounded time domain onto a scrollable pixel axis.
// DateToPixel and PixelToDate are pure functions of (start, zoom,
// pixelsPerUnit) and are exact inverses of one another modulo rounding to
// the nearest millisecond.
type Viewport struct {
	start time.Time
	end   time.Time
	zoom  models.ZoomLevel

	// pixelsPerUnit is the width of one native zoom unit column.
	pixelsPerUnit float64

	scrollX float64
	scrollY float64

	// now is injectable for tests.
	now func() time.Time

	jump *Transition

	invalidate []func()
}

// ViewportOption configures a Viewport at construction.
type ViewportOption func(*Viewport)

// WithClock overrides the wall clock, for deterministic tests.
func WithClock(now func() time.Time) ViewportOption {
	return func(v *Viewport) { v.now = now }
}

// NewViewport creates a viewport at the given zoom level with that zoom's
// default date window.
func NewViewport(zoom models.ZoomLevel, pixelsPerUnit float64, opts ...ViewportOption) *Viewport {
	v := &Viewport{
		zoom:          zoom,
		pixelsPerUnit: pixelsPerUnit,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	v.start, v.end = defaultWindow(zoom, v.now())
	return v
}

// UnitDuration returns the duration represented by one pixelsPerUnit-wide
// column at the given zoom. Month zoom uses a day unit with a narrowed
// column (monthDayScale); month grid columns are assembled from day units
// with calendar-computed widths.
func UnitDuration(zoom models.ZoomLevel) time.Duration {
	switch zoom {
	case models.ZoomHours:
		return time.Hour
	case models.ZoomWeeks:
		return 7 * 24 * time.Hour
	case models.ZoomMonths:
		return 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// defaultWindow returns the fixed default viewport span for a zoom level,
// aligned to day boundaries around now.
func defaultWindow(zoom models.ZoomLevel, now time.Time) (time.Time, time.Time) {
	day := now.Truncate(24 * time.Hour)
	switch zoom {
	case models.ZoomHours:
		return day.AddDate(0, 0, -3), day.AddDate(0, 0, 7)
	case models.ZoomDays:
		return day.AddDate(0, 0, -14), day.AddDate(0, 0, 30)
	case models.ZoomWeeks:
		return day.AddDate(0, 0, -60), day.AddDate(0, 0, 120)
	case models.ZoomMonths:
		return day.AddDate(0, 0, -180), day.AddDate(0, 0, 365)
	default:
		return day.AddDate(0, 0, -14), day.AddDate(0, 0, 30)
	}
}

// effectivePixelsPerUnit is the column width after the month-view scale.
func (v *Viewport) effectivePixelsPerUnit() float64 {
	if v.zoom == models.ZoomMonths {
		return v.pixelsPerUnit * monthDayScale
	}
	return v.pixelsPerUnit
}

// pixelsPerMilli is the linear scale factor of the transform.
func (v *Viewport) pixelsPerMilli() float64 {
	return v.effectivePixelsPerUnit() / float64(UnitDuration(v.zoom).Milliseconds())
}

// DateToPixel converts a date to an x coordinate on the timeline axis.
// x is absolute (scroll-independent); callers subtract the scroll offset.
// The division happens last so unit-aligned dates map to exact pixel
// multiples.
func (v *Viewport) DateToPixel(t time.Time) float64 {
	ms := float64(t.Sub(v.start).Milliseconds())
	return ms * v.effectivePixelsPerUnit() / float64(UnitDuration(v.zoom).Milliseconds())
}

// PixelToDate converts an x coordinate back to a date, rounded to the
// nearest millisecond.
func (v *Viewport) PixelToDate(x float64) time.Time {
	unitMs := float64(UnitDuration(v.zoom).Milliseconds())
	ms := math.Round(x * unitMs / v.effectivePixelsPerUnit())
	return v.start.Add(time.Duration(ms) * time.Millisecond)
}

// Start returns the viewport window start.
func (v *Viewport) Start() time.Time { return v.start }

// End returns the viewport window end.
func (v *Viewport) End() time.Time { return v.end }

// Zoom returns the current zoom level.
func (v *Viewport) Zoom() models.ZoomLevel { return v.zoom }

// PixelsPerUnit returns the configured width of one zoom-unit column.
func (v *Viewport) PixelsPerUnit() float64 { return v.pixelsPerUnit }

// TotalWidth returns the pixel width of the full viewport window.
func (v *Viewport) TotalWidth() float64 {
	return v.DateToPixel(v.end)
}

// ScrollX returns the current horizontal scroll offset, advancing any
// running jump animation against the clock first.
func (v *Viewport) ScrollX() float64 {
	if v.jump != nil {
		val, done := v.jump.Value(v.now())
		v.scrollX = val
		if done {
			v.jump = nil
		}
	}
	return v.scrollX
}

// ScrollY returns the current vertical scroll offset.
func (v *Viewport) ScrollY() float64 { return v.scrollY }

// SetScrollX sets the horizontal offset, clamped to [0, TotalWidth],
// cancelling any running jump animation.
func (v *Viewport) SetScrollX(x float64) {
	v.jump = nil
	v.scrollX = clamp(x, 0, v.TotalWidth())
}

// SetScrollY sets the vertical offset, clamped at zero.
func (v *Viewport) SetScrollY(y float64) {
	v.scrollY = math.Max(0, y)
}

// ScrollBy moves both axes by the given deltas.
func (v *Viewport) ScrollBy(dx, dy float64) {
	v.SetScrollX(v.ScrollX() + dx)
	v.SetScrollY(v.scrollY + dy)
}

// Animating reports whether a jump animation is still running.
func (v *Viewport) Animating() bool {
	if v.jump == nil {
		return false
	}
	_, done := v.jump.Value(v.now())
	return !done
}

// OnInvalidate registers a hook fired whenever the coordinate space changes
// (zoom or date range), so downstream caches can be cleared.
func (v *Viewport) OnInvalidate(fn func()) {
	v.invalidate = append(v.invalidate, fn)
}

func (v *Viewport) fireInvalidate() {
	for _, fn := range v.invalidate {
		fn()
	}
}

// SetZoom switches zoom level, resets the viewport to the level's default
// window, clears scroll state, and fires invalidation hooks.
func (v *Viewport) SetZoom(zoom models.ZoomLevel) error {
	if !models.ValidZoomLevels[zoom] {
		return fmt.Errorf("setting zoom: unknown level %q", zoom)
	}
	v.zoom = zoom
	v.start, v.end = defaultWindow(zoom, v.now())
	v.scrollX = 0
	v.jump = nil
	v.fireInvalidate()
	return nil
}

// SetPixelsPerUnit changes the column width and fires invalidation hooks.
func (v *Viewport) SetPixelsPerUnit(ppu float64) error {
	if ppu <= 0 {
		return fmt.Errorf("setting pixels per unit: must be positive, got %g", ppu)
	}
	v.pixelsPerUnit = ppu
	v.fireInvalidate()
	return nil
}

// SetDateRange sets the viewport window directly without changing zoom.
func (v *Viewport) SetDateRange(start, end time.Time) error {
	if !end.After(start) {
		return fmt.Errorf("setting date range: end %s is not after start %s", end, start)
	}
	v.start = start
	v.end = end
	v.scrollX = 0
	v.jump = nil
	v.fireInvalidate()
	return nil
}

// JumpToDate recenters the visible region on the given date via a timed
// scroll animation. viewWidth is the visible width in pixels. If the date
// lies outside the current window the window is first re-anchored around it
// (same span, no zoom change).
func (v *Viewport) JumpToDate(date time.Time, viewWidth float64) {
	if date.Before(v.start) || date.After(v.end) {
		span := v.end.Sub(v.start)
		v.start = date.Add(-span / 2)
		v.end = v.start.Add(span)
		v.fireInvalidate()
	}
	target := clamp(v.DateToPixel(date)-viewWidth/2, 0, v.TotalWidth())
	v.jump = NewTransition(v.now(), defaultJumpDuration, v.scrollX, target, EaseInOutCubic)
}

func clamp(x, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	return math.Min(math.Max(x, lo), hi)
}
