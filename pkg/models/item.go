package models

import "time"

// ItemKind discriminates the timeline item union.
type ItemKind string

const (
	KindProject ItemKind = "project"
	KindTask    ItemKind = "task"
)

// ItemStatus represents the current lifecycle state of a timeline item.
type ItemStatus string

const (
	StatusPending    ItemStatus = "pending"
	StatusInProgress ItemStatus = "in_progress"
	StatusCompleted  ItemStatus = "completed"
	StatusCancelled  ItemStatus = "cancelled"
)

// Priority represents the urgency level of a timeline item.
type Priority string

const (
	P0 Priority = "P0"
	P1 Priority = "P1"
	P2 Priority = "P2"
	P3 Priority = "P3"
)

// TimelineItem is a single renderable bar on the timeline: either a project
// or one of its tasks, discriminated by Kind. The engine holds read-only
// snapshots of these; Version changes whenever the host mutates the item and
// is part of the render cache key.
type TimelineItem struct {
	ID            string     `yaml:"id"`
	Kind          ItemKind   `yaml:"kind"`
	ProjectID     string     `yaml:"project_id,omitempty"`
	Title         string     `yaml:"title"`
	Start         time.Time  `yaml:"start"`
	End           time.Time  `yaml:"end"`
	Color         string     `yaml:"color,omitempty"`
	Status        ItemStatus `yaml:"status"`
	Priority      Priority   `yaml:"priority"`
	Progress      float64    `yaml:"progress"`
	RowHeightHint float64    `yaml:"row_height_hint,omitempty"`
	Version       int64      `yaml:"version"`
}

// Duration returns the time span covered by the item's bar.
func (i TimelineItem) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Valid reports whether the item carries enough data to be rendered.
// Items failing this check are excluded from ingestion with a diagnostic.
func (i TimelineItem) Valid() bool {
	if i.ID == "" || i.Start.IsZero() || i.End.IsZero() {
		return false
	}
	if i.End.Before(i.Start) {
		return false
	}
	if i.Kind != KindProject && i.Kind != KindTask {
		return false
	}
	return true
}
