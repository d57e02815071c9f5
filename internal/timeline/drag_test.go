package timeline

import (
	"errors"
	"testing"
	"time"

	"github.com/sayantanroy47/tasky-timeline/pkg/models"
)

func dragFixture(t *testing.T) (*DragController, models.TimelineItem) {
	t.Helper()
	vp := newTestViewport(models.ZoomDays, 40)
	item := models.TimelineItem{
		ID:    "task-1",
		Kind:  models.KindTask,
		Title: "task-1",
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
	}
	return NewDragController(vp), item
}

func TestDrag_MovePreservesDuration(t *testing.T) {
	d, item := dragFixture(t)

	var gotStart, gotEnd time.Time
	calls := 0
	d.OnRescheduled(func(_ models.TimelineItem, s, e time.Time) {
		calls++
		gotStart, gotEnd = s, e
	})

	if err := d.Press(item, DragMove, 100); err != nil {
		t.Fatalf("Press: %v", err)
	}
	// Two column widths to the right at 40 px/day.
	d.Move(140)
	d.Move(180)
	if err := d.Drop(); err != nil {
		t.Fatalf("Drop: %v", err)
	}

	if calls != 1 {
		t.Fatalf("reschedule callback fired %d times, want exactly 1", calls)
	}
	wantStart := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	if !gotStart.Equal(wantStart) || !gotEnd.Equal(wantEnd) {
		t.Errorf("rescheduled to [%v, %v], want [%v, %v]", gotStart, gotEnd, wantStart, wantEnd)
	}
	if d.State() != DragIdle {
		t.Errorf("state after drop = %s, want idle", d.State())
	}
}

func TestDrag_StateMachine(t *testing.T) {
	d, item := dragFixture(t)

	if d.State() != DragIdle {
		t.Fatalf("initial state = %s, want idle", d.State())
	}
	if err := d.Press(item, DragMove, 50); err != nil {
		t.Fatalf("Press: %v", err)
	}
	if d.State() != DragPressed {
		t.Errorf("state after press = %s, want pressed", d.State())
	}
	d.Move(60)
	if d.State() != DragDragging {
		t.Errorf("state after first move = %s, want dragging", d.State())
	}
	if err := d.Press(item, DragMove, 50); !errors.Is(err, ErrDragInProgress) {
		t.Errorf("second press returned %v, want ErrDragInProgress", err)
	}
	d.Cancel()
	if d.State() != DragIdle {
		t.Errorf("state after cancel = %s, want idle", d.State())
	}
}

func TestDrag_CancelLeavesScheduleUntouched(t *testing.T) {
	d, item := dragFixture(t)

	calls := 0
	d.OnRescheduled(func(models.TimelineItem, time.Time, time.Time) { calls++ })
	var cues []Feedback
	d.SetFeedback(func(f Feedback) { cues = append(cues, f) })

	if err := d.Press(item, DragMove, 0); err != nil {
		t.Fatalf("Press: %v", err)
	}
	d.Move(400)
	d.Cancel()

	if calls != 0 {
		t.Errorf("cancel fired %d reschedule callbacks", calls)
	}
	if len(cues) != 2 || cues[0] != FeedbackLift || cues[1] != FeedbackRevert {
		t.Errorf("feedback cues = %v, want [lift revert]", cues)
	}
	if _, active := d.DraggedItem(); active {
		t.Error("item still reported as dragged after cancel")
	}
}

func TestDrag_ResizeEnd(t *testing.T) {
	d, item := dragFixture(t)

	var gotStart, gotEnd time.Time
	d.OnRescheduled(func(_ models.TimelineItem, s, e time.Time) { gotStart, gotEnd = s, e })

	if err := d.Press(item, DragResizeEnd, 0); err != nil {
		t.Fatalf("Press: %v", err)
	}
	d.Move(40) // one day
	if err := d.Drop(); err != nil {
		t.Fatalf("Drop: %v", err)
	}

	if !gotStart.Equal(item.Start) {
		t.Errorf("resize end moved start to %v", gotStart)
	}
	if want := item.End.AddDate(0, 0, 1); !gotEnd.Equal(want) {
		t.Errorf("end = %v, want %v", gotEnd, want)
	}
}

func TestDrag_ResizeStartInversionReverts(t *testing.T) {
	d, item := dragFixture(t)

	calls := 0
	d.OnRescheduled(func(models.TimelineItem, time.Time, time.Time) { calls++ })
	var cues []Feedback
	d.SetFeedback(func(f Feedback) { cues = append(cues, f) })

	if err := d.Press(item, DragResizeStart, 0); err != nil {
		t.Fatalf("Press: %v", err)
	}
	d.Move(3 * 40) // start would pass end
	err := d.Drop()

	if !errors.Is(err, ErrInvertedRange) {
		t.Errorf("Drop returned %v, want ErrInvertedRange", err)
	}
	if calls != 0 {
		t.Errorf("inverted resize fired %d callbacks", calls)
	}
	if cues[len(cues)-1] != FeedbackRevert {
		t.Errorf("last cue = %v, want revert", cues[len(cues)-1])
	}
	if d.State() != DragIdle {
		t.Errorf("state = %s, want idle", d.State())
	}
}

func TestDrag_ValidatorVeto(t *testing.T) {
	d, item := dragFixture(t)

	vetoed := errors.New("overlaps a frozen sprint")
	d.SetValidator(func(models.TimelineItem, time.Time, time.Time) error { return vetoed })
	calls := 0
	d.OnRescheduled(func(models.TimelineItem, time.Time, time.Time) { calls++ })

	if err := d.Press(item, DragMove, 0); err != nil {
		t.Fatalf("Press: %v", err)
	}
	d.Move(80)
	if err := d.Drop(); !errors.Is(err, vetoed) {
		t.Errorf("Drop returned %v, want validator error", err)
	}
	if calls != 0 {
		t.Errorf("vetoed drop fired %d callbacks", calls)
	}
}

func TestDrag_BeforeEpochReverts(t *testing.T) {
	vp := newTestViewport(models.ZoomDays, 40)
	d := NewDragController(vp)
	item := models.TimelineItem{
		ID:    "early",
		Kind:  models.KindTask,
		Start: time.Unix(0, 0).UTC(),
		End:   time.Unix(0, 0).UTC().AddDate(0, 0, 1),
	}

	if err := d.Press(item, DragMove, 0); err != nil {
		t.Fatalf("Press: %v", err)
	}
	d.Move(-40)
	if err := d.Drop(); !errors.Is(err, ErrRescheduleEarly) {
		t.Errorf("Drop returned %v, want ErrRescheduleEarly", err)
	}
}

func TestDrag_DisabledRejectsPress(t *testing.T) {
	d, item := dragFixture(t)
	d.SetEnabled(false)
	if err := d.Press(item, DragMove, 0); !errors.Is(err, ErrDragDisabled) {
		t.Errorf("Press returned %v, want ErrDragDisabled", err)
	}
	if d.State() != DragIdle {
		t.Errorf("state = %s, want idle", d.State())
	}
}

func TestDrag_DropWithoutGesture(t *testing.T) {
	d, _ := dragFixture(t)
	if err := d.Drop(); !errors.Is(err, ErrNoActiveDrag) {
		t.Errorf("Drop returned %v, want ErrNoActiveDrag", err)
	}
}

func TestDrag_PreviewOffset(t *testing.T) {
	d, item := dragFixture(t)
	if d.PreviewOffset() != 0 {
		t.Fatalf("idle preview offset = %g", d.PreviewOffset())
	}
	if err := d.Press(item, DragMove, 100); err != nil {
		t.Fatalf("Press: %v", err)
	}
	if d.PreviewOffset() != 0 {
		t.Errorf("pressed preview offset = %g, want 0 until first move", d.PreviewOffset())
	}
	d.Move(163)
	if d.PreviewOffset() != 63 {
		t.Errorf("preview offset = %g, want 63", d.PreviewOffset())
	}
	d.Cancel()
	if d.PreviewOffset() != 0 {
		t.Errorf("preview offset after cancel = %g, want 0", d.PreviewOffset())
	}
}

func TestDrag_MonthZoomUsesDayScale(t *testing.T) {
	vp := newTestViewport(models.ZoomMonths, 120)
	d := NewDragController(vp)
	item := models.TimelineItem{
		ID:    "task-1",
		Kind:  models.KindTask,
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
	}

	var gotStart time.Time
	d.OnRescheduled(func(_ models.TimelineItem, s, _ time.Time) { gotStart = s })

	if err := d.Press(item, DragMove, 0); err != nil {
		t.Fatalf("Press: %v", err)
	}
	// 120 px/unit scaled by the month day factor gives 30 px per day.
	d.Move(90)
	if err := d.Drop(); err != nil {
		t.Fatalf("Drop: %v", err)
	}
	if want := item.Start.AddDate(0, 0, 3); !gotStart.Equal(want) {
		t.Errorf("start = %v, want %v", gotStart, want)
	}
}
