package timeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sayantanroy47/tasky-timeline/internal/observability"
	"github.com/sayantanroy47/tasky-timeline/pkg/models"
)

// DataSource supplies timeline snapshots. Load runs off the render path;
// Subscribe delivers push notifications when the underlying data changes so
// the host can trigger a re-render rather than a full state reset.
type DataSource interface {
	Load(ctx context.Context, projectIDs []string) (models.TimelineData, error)
	Subscribe(onChange func()) (cancel func(), err error)
}

// SettingsStore persists TimelineSettings across sessions.
type SettingsStore interface {
	Load() (models.TimelineSettings, error)
	Save(settings models.TimelineSettings) error
}

// ExportFormat selects the export target. Only FormatData is produced
// in-process; image and PDF delegate to an external export service.
type ExportFormat string

const (
	FormatImage ExportFormat = "image"
	FormatPDF   ExportFormat = "pdf"
	FormatData  ExportFormat = "data"
)

// ErrUnsupportedExport is returned for formats the engine cannot produce
// itself.
var ErrUnsupportedExport = errors.New("export format requires the external export service")

// Callbacks are the host-facing selection and mutation notifications.
// OnItemRescheduled fires exactly once per accepted drop, never per
// pointer-move event; it is the single point where the engine writes back
// toward the source of truth.
type Callbacks struct {
	OnItemSelected      func(item models.TimelineItem)
	OnMilestoneSelected func(milestone models.Milestone)
	OnItemRescheduled   func(item models.TimelineItem, newStart, newEnd time.Time)
	OnProgressChanged   func(item models.TimelineItem, progress float64)
}

// MilestonePin is the renderable form of a milestone: a marker at the exact
// pixel position of its date.
type MilestonePin struct {
	ID        string
	Title     string
	Date      time.Time
	X         float64
	Color     string
	Completed bool
}

// Frame is one render pass worth of geometry. Everything in it is computed
// synchronously from the current snapshot; no I/O happens here.
type Frame struct {
	Grid        Grid
	Bars        []BarGeometry
	Milestones  []MilestonePin
	Connectors  []Connector
	DragPreview *BarGeometry

	FirstRow  int
	LastRow   int
	TotalRows int

	TotalWidth  float64
	TotalHeight float64
	ScrollX     float64
	ScrollY     float64

	// LoadErr is the retryable error state shown in place of the body when
	// the last load failed and no snapshot exists yet. The header chrome is
	// unaffected.
	LoadErr error
}

// ExportPayload is the renderable geometry handed to the export service.
type ExportPayload struct {
	Format      ExportFormat            `yaml:"format"`
	GeneratedAt time.Time               `yaml:"generated_at"`
	Settings    models.TimelineSettings `yaml:"settings"`
	Frame       Frame                   `yaml:"-"`
	Bars        []BarGeometry           `yaml:"bars"`
	Milestones  []MilestonePin          `yaml:"milestones"`
	Connectors  []Connector             `yaml:"connectors"`
}

// snapshot is the engine's read-only view of the host data.
type snapshot struct {
	rows       []models.TimelineItem
	items      map[string]models.TimelineItem
	rowOf      map[string]int
	milestones []models.Milestone
	graph      *DependencyGraph
}

// Engine owns the timeline subsystem: viewport, grid, virtualized rows,
// drag gesture, and dependency routing, driven by one settings object and
// one data snapshot.
type Engine struct {
	source DataSource
	store  SettingsStore
	events observability.EventLog

	settings models.TimelineSettings
	vp       *Viewport
	list     *VirtualList
	drag     *DragController

	snap    *snapshot
	loadErr error

	cb          Callbacks
	invalidator *Coalescer
	now         func() time.Time
}

// EngineOption configures an Engine at construction.
type EngineOption func(*Engine)

// WithEngineClock overrides the wall clock for the engine and its viewport.
func WithEngineClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// WithCoalesceWindow overrides the invalidation debounce window. Zero makes
// invalidation synchronous.
func WithCoalesceWindow(window time.Duration) EngineOption {
	return func(e *Engine) {
		e.invalidator = NewCoalescer(window, e.clearCaches)
	}
}

// NewEngine loads settings from the store and assembles the component
// graph. The data snapshot starts empty; call Refresh to populate it.
func NewEngine(source DataSource, store SettingsStore, events observability.EventLog, opts ...EngineOption) (*Engine, error) {
	settings, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading timeline settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		source:   source,
		store:    store,
		events:   events,
		settings: settings,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.invalidator == nil {
		e.invalidator = NewCoalescer(DefaultCoalesceWindow, e.clearCaches)
	}

	e.vp = NewViewport(settings.ZoomLevel, settings.PixelsPerUnit, WithClock(e.now))
	e.list = NewVirtualList(settings.TaskRowHeight, minRowBuffer)
	e.drag = NewDragController(e.vp)
	e.drag.SetEnabled(settings.DragEnabled)
	e.drag.OnRescheduled(e.handleReschedule)

	e.vp.OnInvalidate(e.invalidator.Request)
	return e, nil
}

// SetCallbacks installs the host notification hooks.
func (e *Engine) SetCallbacks(cb Callbacks) { e.cb = cb }

// Viewport exposes the coordinate transform for renderers.
func (e *Engine) Viewport() *Viewport { return e.vp }

// Drag exposes the gesture controller for pointer handlers.
func (e *Engine) Drag() *DragController { return e.drag }

// Settings returns the current settings snapshot.
func (e *Engine) Settings() models.TimelineSettings { return e.settings }

// CacheStats reports the render cache counters.
func (e *Engine) CacheStats() CacheStats { return e.list.Stats() }

// clearCaches is the single coalesced invalidation target.
func (e *Engine) clearCaches() {
	e.list.ClearCache()
	e.logEvent("INFO", observability.EventCacheCleared, "render cache cleared", nil)
}

// Refresh loads a fresh snapshot. On failure the previous snapshot stays
// live (stale while revalidate) and the error is recorded as a retryable
// body state.
func (e *Engine) Refresh(ctx context.Context, projectIDs []string) error {
	data, err := e.source.Load(ctx, projectIDs)
	if err != nil {
		e.loadErr = err
		e.logEvent("ERROR", observability.EventDataLoadFailed, err.Error(), nil)
		return fmt.Errorf("loading timeline data: %w", err)
	}
	e.loadErr = nil
	e.ingest(data)
	e.invalidator.Request()
	return nil
}

// ingest validates and indexes a snapshot. Malformed items are excluded
// with a diagnostic, never aborting the batch; dependency edges that would
// close a cycle are dropped the same way.
func (e *Engine) ingest(data models.TimelineData) {
	snap := &snapshot{
		items: make(map[string]models.TimelineItem),
		rowOf: make(map[string]int),
	}

	valid := func(in []models.TimelineItem, kind models.ItemKind) []models.TimelineItem {
		out := make([]models.TimelineItem, 0, len(in))
		for _, item := range in {
			item.Kind = kind
			if !item.Valid() {
				e.logEvent("WARN", observability.EventItemMalformed, "item excluded from rendering",
					map[string]any{"item_id": item.ID, "kind": string(kind)})
				continue
			}
			out = append(out, item)
		}
		return out
	}

	projects := valid(data.Projects, models.KindProject)
	tasks := valid(data.Tasks, models.KindTask)

	snap.rows = FlattenItems(projects, tasks)
	for i, item := range snap.rows {
		snap.items[item.ID] = item
		snap.rowOf[item.ID] = i
	}
	snap.milestones = data.Milestones

	snap.graph = BuildDependencyGraph(data.Dependencies, snap.items)
	for _, rej := range snap.graph.Rejected {
		e.logEvent("WARN", observability.EventDependencyRejected, "dependency edge excluded",
			map[string]any{"from": rej.Dep.FromID, "to": rej.Dep.ToID, "reason": rej.Reason})
	}

	e.snap = snap
	e.logEvent("INFO", observability.EventDataLoaded, "timeline data loaded",
		map[string]any{"rows": len(snap.rows), "milestones": len(snap.milestones),
			"dependencies": len(snap.graph.Accepted)})
}

// Item returns the snapshot item with the given ID.
func (e *Engine) Item(id string) (models.TimelineItem, bool) {
	if e.snap == nil {
		return models.TimelineItem{}, false
	}
	item, ok := e.snap.items[id]
	return item, ok
}

// Rows returns the flattened row order.
func (e *Engine) Rows() []models.TimelineItem {
	if e.snap == nil {
		return nil
	}
	return e.snap.rows
}

// ItemAtRow returns the item rendered at the given row index.
func (e *Engine) ItemAtRow(row int) (models.TimelineItem, bool) {
	if e.snap == nil || row < 0 || row >= len(e.snap.rows) {
		return models.TimelineItem{}, false
	}
	return e.snap.rows[row], true
}

// SelectItem notifies the host of an item selection.
func (e *Engine) SelectItem(id string) {
	if item, ok := e.Item(id); ok && e.cb.OnItemSelected != nil {
		e.cb.OnItemSelected(item)
	}
}

// SelectMilestone notifies the host of a milestone selection.
func (e *Engine) SelectMilestone(id string) {
	if e.snap == nil || e.cb.OnMilestoneSelected == nil {
		return
	}
	for _, m := range e.snap.milestones {
		if m.ID == id {
			e.cb.OnMilestoneSelected(m)
			return
		}
	}
}

// SetProgress clamps progress to [0,1] and notifies the host. The snapshot
// itself is not mutated; the host owns the data and pushes an update back.
func (e *Engine) SetProgress(id string, progress float64) {
	item, ok := e.Item(id)
	if !ok {
		return
	}
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	if e.cb.OnProgressChanged != nil {
		e.cb.OnProgressChanged(item, progress)
	}
}

// handleReschedule is the drag controller's single accepted-drop callback.
func (e *Engine) handleReschedule(item models.TimelineItem, newStart, newEnd time.Time) {
	e.logEvent("INFO", observability.EventItemRescheduled, "item rescheduled",
		map[string]any{"item_id": item.ID,
			"new_start": newStart.Format(time.RFC3339), "new_end": newEnd.Format(time.RFC3339)})
	if e.cb.OnItemRescheduled != nil {
		e.cb.OnItemRescheduled(item, newStart, newEnd)
	}
}

// DropDrag completes the active gesture, downgrading a validation failure
// to a silent revert plus a diagnostic. Interaction errors (no active drag)
// still surface.
func (e *Engine) DropDrag() error {
	item, active := e.drag.DraggedItem()
	err := e.drag.Drop()
	if err == nil || errors.Is(err, ErrNoActiveDrag) {
		return err
	}
	if active {
		e.logEvent("WARN", observability.EventRescheduleRejected, "reschedule reverted",
			map[string]any{"item_id": item.ID, "reason": err.Error()})
	}
	return nil
}

// SetZoom switches zoom level through the settings path so the change is
// validated and persisted, then resets the viewport window.
func (e *Engine) SetZoom(level models.ZoomLevel) error {
	if !models.ValidZoomLevels[level] {
		return fmt.Errorf("setting zoom: unknown level %q", level)
	}
	if err := e.vp.SetZoom(level); err != nil {
		return err
	}
	e.settings.ZoomLevel = level
	e.logEvent("INFO", observability.EventZoomChanged, "zoom level changed",
		map[string]any{"level": string(level)})
	if err := e.store.Save(e.settings); err != nil {
		return fmt.Errorf("persisting settings after zoom change: %w", err)
	}
	return nil
}

// SetDateRange sets the viewport window directly without changing zoom.
func (e *Engine) SetDateRange(start, end time.Time) error {
	return e.vp.SetDateRange(start, end)
}

// JumpToDate recenters the viewport on the date via an animated scroll.
func (e *Engine) JumpToDate(date time.Time, viewWidth float64) {
	e.vp.JumpToDate(date, viewWidth)
}

// SettingsPatch is a partial settings update; nil fields are left alone.
type SettingsPatch struct {
	ZoomLevel         *models.ZoomLevel
	PixelsPerUnit     *float64
	TaskRowHeight     *float64
	ShowWeekends      *bool
	ShowDependencies  *bool
	ShowMilestones    *bool
	ShowProgress      *bool
	ShowCriticalPath  *bool
	WorkingHoursStart *int
	WorkingHoursEnd   *int
	ColorTheme        *string
	DragEnabled       *bool
	AutoSchedule      *bool
}

// UpdateSettings is the single mutation entry point for settings. The patch
// is applied, validated, persisted, and propagated to the components it
// affects; an invalid patch changes nothing.
func (e *Engine) UpdateSettings(patch SettingsPatch) error {
	next := e.settings
	if patch.ZoomLevel != nil {
		next.ZoomLevel = *patch.ZoomLevel
	}
	if patch.PixelsPerUnit != nil {
		next.PixelsPerUnit = *patch.PixelsPerUnit
	}
	if patch.TaskRowHeight != nil {
		next.TaskRowHeight = *patch.TaskRowHeight
	}
	if patch.ShowWeekends != nil {
		next.ShowWeekends = *patch.ShowWeekends
	}
	if patch.ShowDependencies != nil {
		next.ShowDependencies = *patch.ShowDependencies
	}
	if patch.ShowMilestones != nil {
		next.ShowMilestones = *patch.ShowMilestones
	}
	if patch.ShowProgress != nil {
		next.ShowProgress = *patch.ShowProgress
	}
	if patch.ShowCriticalPath != nil {
		next.ShowCriticalPath = *patch.ShowCriticalPath
	}
	if patch.WorkingHoursStart != nil {
		next.WorkingHoursStart = *patch.WorkingHoursStart
	}
	if patch.WorkingHoursEnd != nil {
		next.WorkingHoursEnd = *patch.WorkingHoursEnd
	}
	if patch.ColorTheme != nil {
		next.ColorTheme = *patch.ColorTheme
	}
	if patch.DragEnabled != nil {
		next.DragEnabled = *patch.DragEnabled
	}
	if patch.AutoSchedule != nil {
		next.AutoSchedule = *patch.AutoSchedule
	}
	if err := next.Validate(); err != nil {
		return err
	}

	prev := e.settings
	e.settings = next

	if next.ZoomLevel != prev.ZoomLevel {
		if err := e.vp.SetZoom(next.ZoomLevel); err != nil {
			return err
		}
	}
	if next.PixelsPerUnit != prev.PixelsPerUnit {
		if err := e.vp.SetPixelsPerUnit(next.PixelsPerUnit); err != nil {
			return err
		}
	}
	if next.TaskRowHeight != prev.TaskRowHeight {
		e.list.SetRowHeight(next.TaskRowHeight)
	}
	e.drag.SetEnabled(next.DragEnabled)

	e.logEvent("INFO", observability.EventSettingsUpdated, "settings updated", nil)
	if err := e.store.Save(next); err != nil {
		return fmt.Errorf("persisting settings: %w", err)
	}
	return nil
}

// buildBar computes one row's bar geometry in absolute pixel coordinates.
func (e *Engine) buildBar(item models.TimelineItem, row int) BarGeometry {
	rowHeight := e.list.RowHeight()
	barHeight := rowHeight * 0.75
	if item.RowHeightHint > 0 && item.RowHeightHint <= rowHeight {
		barHeight = item.RowHeightHint
	}
	x := e.vp.DateToPixel(item.Start)
	return BarGeometry{
		ItemID:   item.ID,
		Kind:     item.Kind,
		Title:    item.Title,
		Row:      row,
		X:        x,
		Width:    e.vp.DateToPixel(item.End) - x,
		Y:        float64(row)*rowHeight + (rowHeight-barHeight)/2,
		Height:   barHeight,
		Color:    item.Color,
		Status:   item.Status,
		Progress: item.Progress,
		Critical: e.settings.ShowCriticalPath && e.snap != nil && e.snap.graph.Critical(item.ID),
	}
}

// Frame produces one render pass worth of geometry for a view of the given
// pixel size. Only rows inside the scroll window are materialized; edges
// with both endpoints off-screen are skipped by the router.
func (e *Engine) Frame(viewWidth, viewHeight float64) Frame {
	e.invalidator.Drain()
	f := Frame{
		Grid:       GenerateGrid(e.vp, e.settings.ShowWeekends),
		TotalWidth: e.vp.TotalWidth(),
		ScrollX:    e.vp.ScrollX(),
		ScrollY:    e.vp.ScrollY(),
		LoadErr:    e.loadErr,
	}
	if e.snap == nil {
		return f
	}

	rows := e.snap.rows
	f.TotalRows = len(rows)
	f.TotalHeight = float64(len(rows)) * e.list.RowHeight()

	first, last := e.list.VisibleRange(f.ScrollY, viewHeight, len(rows))
	f.FirstRow, f.LastRow = first, last
	f.Bars = e.list.Materialize(rows, first, last, e.buildBar)

	if e.settings.ShowMilestones {
		for _, m := range e.snap.milestones {
			if m.Date.Before(e.vp.Start()) || m.Date.After(e.vp.End()) {
				continue
			}
			f.Milestones = append(f.Milestones, MilestonePin{
				ID:        m.ID,
				Title:     m.Title,
				Date:      m.Date,
				X:         e.vp.DateToPixel(m.Date),
				Color:     m.Color,
				Completed: m.Completed,
			})
		}
	}

	if e.settings.ShowDependencies {
		visible := func(id string) bool {
			row, ok := e.snap.rowOf[id]
			return ok && row >= first && row < last
		}
		barFor := func(id string) (BarGeometry, bool) {
			item, ok := e.snap.items[id]
			if !ok {
				return BarGeometry{}, false
			}
			return e.buildBar(item, e.snap.rowOf[id]), true
		}
		f.Connectors = e.snap.graph.RouteConnectors(visible, barFor, e.list.RowHeight())
	}

	if item, active := e.drag.DraggedItem(); active && e.drag.State() == DragDragging {
		// A push refresh can remove the dragged item mid-gesture; no row
		// means no preview.
		if row, ok := e.snap.rowOf[item.ID]; ok {
			preview := e.buildBar(item, row)
			preview.X += e.drag.PreviewOffset()
			f.DragPreview = &preview
		}
	}

	return f
}

// ExportSnapshot produces the geometry payload for the external export
// service. Only the data format is materialized in-process.
func (e *Engine) ExportSnapshot(format ExportFormat, viewWidth, viewHeight float64) (*ExportPayload, error) {
	switch format {
	case FormatData:
	case FormatImage, FormatPDF:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedExport, format)
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}

	frame := e.Frame(viewWidth, viewHeight)
	return &ExportPayload{
		Format:      format,
		GeneratedAt: e.now(),
		Settings:    e.settings,
		Frame:       frame,
		Bars:        frame.Bars,
		Milestones:  frame.Milestones,
		Connectors:  frame.Connectors,
	}, nil
}

// Close stops the invalidation coalescer.
func (e *Engine) Close() {
	e.invalidator.Stop()
}

func (e *Engine) logEvent(level, typ, msg string, data map[string]any) {
	if e.events == nil {
		return
	}
	_ = e.events.Write(observability.Event{
		Time:    e.now(),
		Level:   level,
		Type:    typ,
		Message: msg,
		Data:    data,
	})
}
