package models

// TimelineData is one host-supplied snapshot of everything the timeline
// renders. The engine treats it as read-only and keeps rendering the last
// good snapshot while a newer load is in flight.
type TimelineData struct {
	Projects     []TimelineItem `yaml:"projects"`
	Tasks        []TimelineItem `yaml:"tasks"`
	Milestones   []Milestone    `yaml:"milestones"`
	Dependencies []Dependency   `yaml:"dependencies"`
}
