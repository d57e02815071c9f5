package timeline

import (
	"errors"
	"math"
	"time"

	"github.com/sayantanroy47/tasky-timeline/pkg/models"
)

// Drag gesture errors.
var (
	ErrDragDisabled    = errors.New("dragging is disabled in settings")
	ErrDragInProgress  = errors.New("a drag gesture is already in progress")
	ErrNoActiveDrag    = errors.New("no drag gesture in progress")
	ErrRescheduleEarly = errors.New("reschedule lands before the epoch")
	ErrInvertedRange   = errors.New("resize would put start at or after end")
)

// DragState is the gesture state machine position.
type DragState int

const (
	DragIdle DragState = iota
	DragPressed
	DragDragging
)

func (s DragState) String() string {
	switch s {
	case DragIdle:
		return "idle"
	case DragPressed:
		return "pressed"
	case DragDragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// DragMode selects what the gesture adjusts: the whole bar, or one edge.
type DragMode int

const (
	DragMove DragMode = iota
	DragResizeStart
	DragResizeEnd
)

// Feedback is emitted at gesture boundaries so the host can play haptic or
// visual cues.
type Feedback int

const (
	FeedbackLift Feedback = iota
	FeedbackDrop
	FeedbackRevert
)

// ValidateFunc lets the host veto a candidate reschedule. A non-nil error
// reverts the gesture silently; the error is recorded as a diagnostic, not
// surfaced to the pointer handler.
type ValidateFunc func(item models.TimelineItem, newStart, newEnd time.Time) error

// DragController translates pointer movement into a candidate reschedule.
//
// States: Idle → Pressed → Dragging → {Dropped | Cancelled} → Idle. The
// underlying item is never mutated mid-gesture; movement only accumulates a
// preview offset. Exactly one reschedule callback fires per accepted drop,
// never one per pointer-move event.
type DragController struct {
	vp *Viewport

	state DragState
	mode  DragMode

	item          models.TimelineItem
	originalStart time.Time
	originalEnd   time.Time
	pointerOrigin float64
	pixelDeltaX   float64

	enabled  bool
	validate ValidateFunc
	feedback func(Feedback)

	onRescheduled func(item models.TimelineItem, newStart, newEnd time.Time)
}

// NewDragController creates a controller bound to the viewport that supplies
// the pixel-to-time scale for drop arithmetic.
func NewDragController(vp *Viewport) *DragController {
	return &DragController{vp: vp, enabled: true}
}

// SetEnabled gates the whole gesture; Press fails while disabled.
func (d *DragController) SetEnabled(enabled bool) { d.enabled = enabled }

// SetValidator installs the host constraint hook.
func (d *DragController) SetValidator(fn ValidateFunc) { d.validate = fn }

// SetFeedback installs the lift/drop/revert cue hook.
func (d *DragController) SetFeedback(fn func(Feedback)) { d.feedback = fn }

// OnRescheduled installs the single mutation callback.
func (d *DragController) OnRescheduled(fn func(item models.TimelineItem, newStart, newEnd time.Time)) {
	d.onRescheduled = fn
}

// State returns the current gesture state.
func (d *DragController) State() DragState { return d.state }

// Mode returns the active gesture mode; meaningful only outside Idle.
func (d *DragController) Mode() DragMode { return d.mode }

// PreviewOffset returns the live pixel offset to draw the dragged bar at.
// Zero outside a gesture.
func (d *DragController) PreviewOffset() float64 {
	if d.state != DragDragging {
		return 0
	}
	return d.pixelDeltaX
}

// DraggedItem returns the item under gesture and whether one is active.
func (d *DragController) DraggedItem() (models.TimelineItem, bool) {
	if d.state == DragIdle {
		return models.TimelineItem{}, false
	}
	return d.item, true
}

// Press begins a gesture on the given item at pointer x. Captures the
// original schedule and emits lift feedback.
func (d *DragController) Press(item models.TimelineItem, mode DragMode, pointerX float64) error {
	if !d.enabled {
		return ErrDragDisabled
	}
	if d.state != DragIdle {
		return ErrDragInProgress
	}
	d.state = DragPressed
	d.mode = mode
	d.item = item
	d.originalStart = item.Start
	d.originalEnd = item.End
	d.pointerOrigin = pointerX
	d.pixelDeltaX = 0
	d.emit(FeedbackLift)
	return nil
}

// Move accumulates pointer movement. The first move promotes Pressed to
// Dragging; moves outside a gesture are ignored.
func (d *DragController) Move(pointerX float64) {
	switch d.state {
	case DragPressed:
		d.state = DragDragging
	case DragDragging:
	default:
		return
	}
	d.pixelDeltaX = pointerX - d.pointerOrigin
}

// Drop completes the gesture. The pixel delta is converted to a time delta
// rounded to the nearest millisecond; an invalid result reverts silently
// (no callback, revert feedback), a valid one emits exactly one reschedule
// callback. Either way the controller returns to Idle.
func (d *DragController) Drop() error {
	if d.state == DragIdle {
		return ErrNoActiveDrag
	}
	item := d.item
	mode := d.mode
	newStart, newEnd := d.candidate(d.timeDelta())
	d.reset()

	if err := d.checkCandidate(mode, item, newStart, newEnd); err != nil {
		// Silent revert: the bar snaps back to originalStart/End.
		d.emit(FeedbackRevert)
		return err
	}
	d.emit(FeedbackDrop)
	if d.onRescheduled != nil {
		d.onRescheduled(item, newStart, newEnd)
	}
	return nil
}

// Cancel aborts the gesture with zero side effects: no callback, the
// original schedule stands.
func (d *DragController) Cancel() {
	if d.state == DragIdle {
		return
	}
	d.reset()
	d.emit(FeedbackRevert)
}

// timeDelta converts the accumulated pixel delta into a duration using the
// viewport's current scale, rounded to the nearest millisecond.
func (d *DragController) timeDelta() time.Duration {
	unitMs := float64(UnitDuration(d.vp.Zoom()).Milliseconds())
	ppu := d.vp.PixelsPerUnit()
	if d.vp.Zoom() == models.ZoomMonths {
		ppu *= monthDayScale
	}
	ms := math.Round(d.pixelDeltaX / ppu * unitMs)
	return time.Duration(ms) * time.Millisecond
}

// candidate computes the post-gesture schedule. Move preserves duration;
// resize shifts only the grabbed edge.
func (d *DragController) candidate(delta time.Duration) (time.Time, time.Time) {
	switch d.mode {
	case DragResizeStart:
		return d.originalStart.Add(delta), d.originalEnd
	case DragResizeEnd:
		return d.originalStart, d.originalEnd.Add(delta)
	default:
		newStart := d.originalStart.Add(delta)
		return newStart, newStart.Add(d.originalEnd.Sub(d.originalStart))
	}
}

func (d *DragController) checkCandidate(mode DragMode, item models.TimelineItem, newStart, newEnd time.Time) error {
	if mode != DragMove && !newStart.Before(newEnd) {
		return ErrInvertedRange
	}
	if newStart.Before(time.Unix(0, 0)) {
		return ErrRescheduleEarly
	}
	if d.validate != nil {
		return d.validate(item, newStart, newEnd)
	}
	return nil
}

func (d *DragController) reset() {
	d.state = DragIdle
	d.pixelDeltaX = 0
	d.pointerOrigin = 0
}

func (d *DragController) emit(f Feedback) {
	if d.feedback != nil {
		d.feedback(f)
	}
}
