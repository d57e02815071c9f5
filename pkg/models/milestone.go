package models

import "time"

// Milestone marks a single date on the timeline. RequiredItemIDs reference
// the items that must complete before the milestone; the references are not
// ownership and may point at items outside the loaded set.
type Milestone struct {
	ID              string    `yaml:"id"`
	Title           string    `yaml:"title"`
	Date            time.Time `yaml:"date"`
	Color           string    `yaml:"color,omitempty"`
	Completed       bool      `yaml:"completed"`
	RequiredItemIDs []string  `yaml:"required_item_ids,omitempty"`
}

// DependencyKind describes how two items' schedules relate.
type DependencyKind string

const (
	FinishToStart  DependencyKind = "finish_to_start"
	StartToStart   DependencyKind = "start_to_start"
	FinishToFinish DependencyKind = "finish_to_finish"
	StartToFinish  DependencyKind = "start_to_finish"
)

// Dependency is a directed scheduling edge between two timeline items.
// The full dependency set must be acyclic; edges that would close a cycle
// are rejected at ingestion.
type Dependency struct {
	FromID string         `yaml:"from"`
	ToID   string         `yaml:"to"`
	Kind   DependencyKind `yaml:"kind"`
}
