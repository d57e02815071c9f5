package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sayantanroy47/tasky-timeline/internal/observability"
	"github.com/sayantanroy47/tasky-timeline/internal/timeline"
	"github.com/sayantanroy47/tasky-timeline/pkg/models"
)

type fakeSource struct {
	data models.TimelineData
}

func (s *fakeSource) Load(context.Context, []string) (models.TimelineData, error) {
	return s.data, nil
}

func (s *fakeSource) Subscribe(func()) (func(), error) { return func() {}, nil }

type fakeStore struct {
	settings models.TimelineSettings
}

func (s *fakeStore) Load() (models.TimelineSettings, error) { return s.settings, nil }

func (s *fakeStore) Save(st models.TimelineSettings) error {
	s.settings = st
	return nil
}

func viewFixtureData() models.TimelineData {
	now := time.Now().UTC().Truncate(24 * time.Hour)
	item := func(id, projectID string, day, days int) models.TimelineItem {
		return models.TimelineItem{
			ID:        id,
			ProjectID: projectID,
			Title:     id,
			Start:     now.AddDate(0, 0, day),
			End:       now.AddDate(0, 0, day+days),
			Status:    models.StatusInProgress,
			Progress:  0.5,
		}
	}
	return models.TimelineData{
		Projects: []models.TimelineItem{item("website", "", 0, 10)},
		Tasks: []models.TimelineItem{
			item("design", "website", 0, 3),
			item("build", "website", 3, 5),
		},
		Milestones: []models.Milestone{
			{ID: "ship", Title: "ship", Date: now.AddDate(0, 0, 10)},
		},
		Dependencies: []models.Dependency{
			{FromID: "design", ToID: "build", Kind: models.FinishToStart},
		},
	}
}

func newViewFixture(t *testing.T) (ganttModel, *timeline.Engine) {
	t.Helper()
	eng, err := timeline.NewEngine(
		&fakeSource{data: viewFixtureData()},
		&fakeStore{settings: models.DefaultTimelineSettings()},
		observability.NewNopEventLog(),
		timeline.WithCoalesceWindow(0),
	)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	t.Cleanup(eng.Close)

	m := newGanttModel(eng, nil)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	m = next.(ganttModel)
	next, _ = m.Update(refreshMsg{})
	return next.(ganttModel), eng
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func press(t *testing.T, m ganttModel, keys ...string) ganttModel {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(keyMsg(k))
		m = next.(ganttModel)
	}
	return m
}

func TestGanttModel_RefreshLoadsRows(t *testing.T) {
	m, eng := newViewFixture(t)
	if got := len(eng.Rows()); got != 3 {
		t.Fatalf("rows = %d, want 3", got)
	}
	if !strings.Contains(m.status, "3 rows") {
		t.Errorf("status = %q, want loaded row count", m.status)
	}
}

func TestGanttModel_ViewRendersChart(t *testing.T) {
	m, _ := newViewFixture(t)
	out := m.View()

	if !strings.Contains(out, "Tasky Timeline") {
		t.Error("view missing title")
	}
	for _, title := range []string{"website", "design", "build"} {
		if !strings.Contains(out, title) {
			t.Errorf("view missing row %q", title)
		}
	}
}

func TestGanttModel_SelectionMoves(t *testing.T) {
	m, _ := newViewFixture(t)

	m = press(t, m, "j", "j")
	if m.selected != 2 {
		t.Errorf("selected = %d after two downs, want 2", m.selected)
	}
	m = press(t, m, "j")
	if m.selected != 2 {
		t.Errorf("selection ran past the last row: %d", m.selected)
	}
	m = press(t, m, "k", "k", "k")
	if m.selected != 0 {
		t.Errorf("selected = %d after scrolling back up, want 0", m.selected)
	}
}

func TestGanttModel_HorizontalScrollSyncsRegions(t *testing.T) {
	m, eng := newViewFixture(t)

	m = press(t, m, "l")
	want := 4 * pxPerCell
	if got := eng.Viewport().ScrollX(); got != want {
		t.Errorf("viewport scroll = %g, want %g", got, want)
	}
	if m.shared.headerX != want || m.shared.scrollbarX != want {
		t.Errorf("regions out of step: header %g scrollbar %g, want %g",
			m.shared.headerX, m.shared.scrollbarX, want)
	}
}

func TestGanttModel_DragLifecycle(t *testing.T) {
	m, eng := newViewFixture(t)

	m = press(t, m, "j") // select "design"
	m = press(t, m, " ")
	if eng.Drag().State() != timeline.DragPressed {
		t.Fatalf("drag state = %v after grab, want pressed", eng.Drag().State())
	}

	item, _ := eng.Item("design")
	origStart := item.Start
	m = press(t, m, "l", "l") // two days right
	if eng.Drag().State() != timeline.DragDragging {
		t.Fatalf("drag state = %v after move, want dragging", eng.Drag().State())
	}

	var gotStart time.Time
	eng.SetCallbacks(timeline.Callbacks{
		OnItemRescheduled: func(_ models.TimelineItem, s, _ time.Time) { gotStart = s },
	})
	m = press(t, m, "enter")
	if eng.Drag().State() != timeline.DragIdle {
		t.Errorf("drag state = %v after drop, want idle", eng.Drag().State())
	}
	if want := origStart.AddDate(0, 0, 2); !gotStart.Equal(want) {
		t.Errorf("rescheduled start = %v, want %v", gotStart, want)
	}
	if m.status != "dropped" {
		t.Errorf("status = %q, want dropped", m.status)
	}
}

func TestGanttModel_EscCancelsDrag(t *testing.T) {
	m, eng := newViewFixture(t)

	m = press(t, m, "j", " ", "l")
	calls := 0
	eng.SetCallbacks(timeline.Callbacks{
		OnItemRescheduled: func(models.TimelineItem, time.Time, time.Time) { calls++ },
	})
	m = press(t, m, "esc")

	if eng.Drag().State() != timeline.DragIdle {
		t.Errorf("drag state = %v after esc, want idle", eng.Drag().State())
	}
	if calls != 0 {
		t.Errorf("cancel fired %d reschedule callbacks", calls)
	}
	if m.status != "drag cancelled" {
		t.Errorf("status = %q", m.status)
	}
}

func TestGanttModel_ZoomCycle(t *testing.T) {
	m, eng := newViewFixture(t)

	m = press(t, m, "z")
	if got := eng.Settings().ZoomLevel; got != models.ZoomWeeks {
		t.Errorf("zoom after one cycle = %s, want weeks", got)
	}
	press(t, m, "z", "z", "z")
	if got := eng.Settings().ZoomLevel; got != models.ZoomDays {
		t.Errorf("zoom after full cycle = %s, want days again", got)
	}
}

func TestNextZoom(t *testing.T) {
	order := []models.ZoomLevel{models.ZoomHours, models.ZoomDays, models.ZoomWeeks, models.ZoomMonths}
	for i, z := range order {
		want := order[(i+1)%len(order)]
		if got := nextZoom(z); got != want {
			t.Errorf("nextZoom(%s) = %s, want %s", z, got, want)
		}
	}
}
