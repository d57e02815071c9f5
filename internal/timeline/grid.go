package timeline

import (
	"fmt"
	"time"

	"github.com/sayantanroy47/tasky-timeline/pkg/models"
)

// Period is one labelled column in a header tier. Widths are computed from
// the viewport transform so each tier tiles the total timeline width with
// no gaps and no overlap.
type Period struct {
	Start time.Time
	End   time.Time
	Label string
	Width float64
}

// Band is a shaded background region, in absolute pixel coordinates.
type Band struct {
	Start time.Time
	End   time.Time
	X     float64
	Width float64
}

// Grid holds both header tiers plus weekend shading bands for the current
// viewport window.
type Grid struct {
	Primary   []Period
	Secondary []Period
	Weekends  []Band
}

// GenerateGrid produces calendar-aware period lists for the viewport.
// The secondary tier uses the zoom's native unit; the primary tier is one
// grouping coarser (days over hours, weeks over days, months over weeks,
// years over months). Weekend bands are produced only for hour and day
// zoom, where individual days are discernible.
func GenerateGrid(vp *Viewport, showWeekends bool) Grid {
	g := Grid{}
	switch vp.Zoom() {
	case models.ZoomHours:
		g.Secondary = buildPeriods(vp, hourStart, nextHour, labelHour)
		g.Primary = buildPeriods(vp, dayStart, nextDay, labelDayFull)
	case models.ZoomDays:
		g.Secondary = buildPeriods(vp, dayStart, nextDay, labelDay)
		g.Primary = buildPeriods(vp, weekStart, nextWeek, labelWeekOf)
	case models.ZoomWeeks:
		g.Secondary = buildPeriods(vp, weekStart, nextWeek, labelWeekNumber)
		g.Primary = buildPeriods(vp, monthStart, nextMonth, labelMonth)
	case models.ZoomMonths:
		g.Secondary = buildPeriods(vp, monthStart, nextMonth, labelMonth)
		g.Primary = buildPeriods(vp, yearStart, nextYear, labelYear)
	}
	if showWeekends && (vp.Zoom() == models.ZoomHours || vp.Zoom() == models.ZoomDays) {
		g.Weekends = weekendBands(vp)
	}
	return g
}

// buildPeriods walks unit boundaries across the viewport window, clipping
// the first and last period to the window so widths sum exactly to the
// viewport's total width.
func buildPeriods(vp *Viewport, align func(time.Time) time.Time, next func(time.Time) time.Time, label func(time.Time) string) []Period {
	var periods []Period
	winStart, winEnd := vp.Start(), vp.End()

	for cur := align(winStart); cur.Before(winEnd); cur = next(cur) {
		end := next(cur)
		clipStart, clipEnd := cur, end
		if clipStart.Before(winStart) {
			clipStart = winStart
		}
		if clipEnd.After(winEnd) {
			clipEnd = winEnd
		}
		periods = append(periods, Period{
			Start: clipStart,
			End:   clipEnd,
			Label: label(cur),
			Width: vp.DateToPixel(clipEnd) - vp.DateToPixel(clipStart),
		})
	}
	return periods
}

// weekendBands returns one band per Saturday..Monday span inside the window.
func weekendBands(vp *Viewport) []Band {
	var bands []Band
	winStart, winEnd := vp.Start(), vp.End()

	for cur := dayStart(winStart); cur.Before(winEnd); cur = nextDay(cur) {
		if cur.Weekday() != time.Saturday {
			continue
		}
		end := cur.AddDate(0, 0, 2)
		clipStart, clipEnd := cur, end
		if clipStart.Before(winStart) {
			clipStart = winStart
		}
		if clipEnd.After(winEnd) {
			clipEnd = winEnd
		}
		x := vp.DateToPixel(clipStart)
		bands = append(bands, Band{
			Start: clipStart,
			End:   clipEnd,
			X:     x,
			Width: vp.DateToPixel(clipEnd) - x,
		})
	}
	return bands
}

// Calendar boundary helpers. Month and year widths are never assumed
// constant: period ends come from AddDate so leap years and 28/29/30/31-day
// months fall out of the calendar itself.

func hourStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, t.Hour(), 0, 0, 0, t.Location())
}

func nextHour(t time.Time) time.Time { return t.Add(time.Hour) }

func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func nextDay(t time.Time) time.Time { return t.AddDate(0, 0, 1) }

// weekStart truncates to the preceding Monday.
func weekStart(t time.Time) time.Time {
	d := dayStart(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

func nextWeek(t time.Time) time.Time { return t.AddDate(0, 0, 7) }

func monthStart(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

func nextMonth(t time.Time) time.Time { return t.AddDate(0, 0, daysInMonth(t)) }

func yearStart(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
}

func nextYear(t time.Time) time.Time { return t.AddDate(1, 0, 0) }

// daysInMonth returns the calendar length of the month containing t.
// Day zero of the following month is the last day of this one, which
// counts calendar days regardless of DST transitions.
func daysInMonth(t time.Time) int {
	y, m, _ := t.Date()
	return time.Date(y, m+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// weekOfYear numbers Monday-start weeks from the start of the year:
// week 1 contains January 1. Counted in calendar days, not elapsed
// hours, so a short DST day cannot shift the week boundary.
func weekOfYear(t time.Time) int {
	ws := weekStart(t)
	return (ws.YearDay()-1)/7 + 1
}

// Label formats, one per tier role.

func labelHour(t time.Time) string { return fmt.Sprintf("%d", t.Hour()) }

func labelDay(t time.Time) string {
	return fmt.Sprintf("%d %s", t.Day(), t.Weekday().String()[:3])
}

func labelDayFull(t time.Time) string { return t.Format("Mon, Jan 2") }

func labelWeekOf(t time.Time) string {
	return "Week of " + weekStart(t).Format("Jan 2")
}

func labelWeekNumber(t time.Time) string {
	return fmt.Sprintf("W%d", weekOfYear(t))
}

func labelMonth(t time.Time) string { return t.Month().String() }

func labelYear(t time.Time) string { return fmt.Sprintf("%d", t.Year()) }
