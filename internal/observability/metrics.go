package observability

import (
	"fmt"
	"time"
)

// RenderMetrics aggregates engine health counters from the diagnostics log.
type RenderMetrics struct {
	DataLoads           int            `json:"data_loads"`
	LoadFailures        int            `json:"load_failures"`
	MalformedItems      int            `json:"malformed_items"`
	RejectedEdges       int            `json:"rejected_edges"`
	RejectedByReason    map[string]int `json:"rejected_by_reason"`
	CacheClears         int            `json:"cache_clears"`
	ZoomChanges         int            `json:"zoom_changes"`
	Reschedules         int            `json:"reschedules"`
	RejectedReschedules int            `json:"rejected_reschedules"`
	SettingsUpdates     int            `json:"settings_updates"`
	EventCount          int            `json:"event_count"`
	OldestEvent         *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent         *time.Time     `json:"newest_event,omitempty"`
}

// MetricsCalculator derives render metrics from the diagnostics log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*RenderMetrics, error)
}

type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a MetricsCalculator reading from eventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate reads all events since the given time and aggregates them.
func (mc *metricsCalculator) Calculate(since time.Time) (*RenderMetrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &RenderMetrics{
		RejectedByReason: make(map[string]int),
	}
	m.EventCount = len(events)

	for i, event := range events {
		if i == 0 {
			t := event.Time
			m.OldestEvent = &t
		}
		t := event.Time
		m.NewestEvent = &t

		switch event.Type {
		case EventDataLoaded:
			m.DataLoads++
		case EventDataLoadFailed:
			m.LoadFailures++
		case EventItemMalformed:
			m.MalformedItems++
		case EventDependencyRejected:
			m.RejectedEdges++
			if reason, ok := event.Data["reason"].(string); ok {
				m.RejectedByReason[reason]++
			}
		case EventCacheCleared:
			m.CacheClears++
		case EventZoomChanged:
			m.ZoomChanges++
		case EventItemRescheduled:
			m.Reschedules++
		case EventRescheduleRejected:
			m.RejectedReschedules++
		case EventSettingsUpdated:
			m.SettingsUpdates++
		}
	}

	return m, nil
}
