package timeline

import (
	"testing"
	"time"

	"github.com/sayantanroy47/tasky-timeline/pkg/models"
)

// fixedClock returns a clock function pinned to t.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

var testNow = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

func newTestViewport(zoom models.ZoomLevel, ppu float64) *Viewport {
	return NewViewport(zoom, ppu, WithClock(fixedClock(testNow)))
}

func TestViewport_DateToPixel(t *testing.T) {
	vp := newTestViewport(models.ZoomDays, 40)

	if got := vp.DateToPixel(vp.Start()); got != 0 {
		t.Errorf("DateToPixel(start) = %g, want 0", got)
	}
	oneDay := vp.Start().AddDate(0, 0, 1)
	if got := vp.DateToPixel(oneDay); got != 40 {
		t.Errorf("DateToPixel(start+1d) = %g, want 40", got)
	}
	halfDay := vp.Start().Add(12 * time.Hour)
	if got := vp.DateToPixel(halfDay); got != 20 {
		t.Errorf("DateToPixel(start+12h) = %g, want 20", got)
	}
}

func TestViewport_PixelToDate_Inverse(t *testing.T) {
	for _, zoom := range []models.ZoomLevel{models.ZoomHours, models.ZoomDays, models.ZoomWeeks, models.ZoomMonths} {
		vp := newTestViewport(zoom, 40)
		for _, offset := range []time.Duration{0, time.Hour, 36*time.Hour + 17*time.Minute, 90 * 24 * time.Hour} {
			date := vp.Start().Add(offset)
			if date.After(vp.End()) {
				continue
			}
			back := vp.PixelToDate(vp.DateToPixel(date))
			diff := back.Sub(date)
			if diff < 0 {
				diff = -diff
			}
			if diff > time.Millisecond {
				t.Errorf("zoom %s: round trip of %v drifted by %v", zoom, date, diff)
			}
		}
	}
}

func TestViewport_DefaultWindows(t *testing.T) {
	tests := []struct {
		zoom         models.ZoomLevel
		daysBack     int
		daysForward  int
	}{
		{models.ZoomHours, 3, 7},
		{models.ZoomDays, 14, 30},
		{models.ZoomWeeks, 60, 120},
		{models.ZoomMonths, 180, 365},
	}
	day := testNow.Truncate(24 * time.Hour)
	for _, tt := range tests {
		vp := newTestViewport(tt.zoom, 40)
		wantStart := day.AddDate(0, 0, -tt.daysBack)
		wantEnd := day.AddDate(0, 0, tt.daysForward)
		if !vp.Start().Equal(wantStart) {
			t.Errorf("zoom %s: start = %v, want %v", tt.zoom, vp.Start(), wantStart)
		}
		if !vp.End().Equal(wantEnd) {
			t.Errorf("zoom %s: end = %v, want %v", tt.zoom, vp.End(), wantEnd)
		}
	}
}

func TestViewport_SetZoom(t *testing.T) {
	vp := newTestViewport(models.ZoomDays, 40)
	fired := 0
	vp.OnInvalidate(func() { fired++ })

	if err := vp.SetZoom(models.ZoomWeeks); err != nil {
		t.Fatalf("SetZoom: %v", err)
	}
	if vp.Zoom() != models.ZoomWeeks {
		t.Errorf("zoom = %s, want weeks", vp.Zoom())
	}
	if fired != 1 {
		t.Errorf("invalidate hooks fired %d times, want 1", fired)
	}
	if vp.ScrollX() != 0 {
		t.Errorf("scrollX = %g after zoom change, want 0", vp.ScrollX())
	}

	if err := vp.SetZoom("fortnights"); err == nil {
		t.Error("SetZoom with unknown level should fail")
	}
}

func TestViewport_SetDateRange(t *testing.T) {
	vp := newTestViewport(models.ZoomDays, 40)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	if err := vp.SetDateRange(start, end); err != nil {
		t.Fatalf("SetDateRange: %v", err)
	}
	if vp.Zoom() != models.ZoomDays {
		t.Error("SetDateRange must not change zoom")
	}
	if got := vp.TotalWidth(); got != 30*40 {
		t.Errorf("TotalWidth = %g, want 1200", got)
	}

	if err := vp.SetDateRange(end, start); err == nil {
		t.Error("SetDateRange with end before start should fail")
	}
}

func TestViewport_ScrollClamping(t *testing.T) {
	vp := newTestViewport(models.ZoomDays, 40)

	vp.SetScrollX(-100)
	if vp.ScrollX() != 0 {
		t.Errorf("scrollX = %g, want clamp to 0", vp.ScrollX())
	}
	vp.SetScrollX(1e12)
	if vp.ScrollX() != vp.TotalWidth() {
		t.Errorf("scrollX = %g, want clamp to %g", vp.ScrollX(), vp.TotalWidth())
	}
	vp.SetScrollY(-5)
	if vp.ScrollY() != 0 {
		t.Errorf("scrollY = %g, want clamp to 0", vp.ScrollY())
	}
}

func TestViewport_JumpToDate(t *testing.T) {
	clock := testNow
	vp := NewViewport(models.ZoomDays, 40, WithClock(func() time.Time { return clock }))

	target := vp.Start().AddDate(0, 0, 20)
	vp.JumpToDate(target, 400)

	if !vp.Animating() {
		t.Fatal("expected a running animation after JumpToDate")
	}
	startOffset := vp.ScrollX()

	clock = clock.Add(defaultJumpDuration / 2)
	mid := vp.ScrollX()
	if mid <= startOffset {
		t.Errorf("offset did not advance mid-animation: %g -> %g", startOffset, mid)
	}

	clock = clock.Add(defaultJumpDuration)
	final := vp.ScrollX()
	want := vp.DateToPixel(target) - 200
	if final != want {
		t.Errorf("final offset = %g, want %g (date centered)", final, want)
	}
	if vp.Animating() {
		t.Error("animation should be finished")
	}
}

func TestViewport_JumpToDate_OutsideWindow(t *testing.T) {
	clock := testNow
	vp := NewViewport(models.ZoomDays, 40, WithClock(func() time.Time { return clock }))
	span := vp.End().Sub(vp.Start())

	far := vp.End().AddDate(1, 0, 0)
	vp.JumpToDate(far, 400)

	if far.Before(vp.Start()) || far.After(vp.End()) {
		t.Error("window should have been re-anchored around the target date")
	}
	if got := vp.End().Sub(vp.Start()); got != span {
		t.Errorf("window span changed: %v, want %v", got, span)
	}
}
