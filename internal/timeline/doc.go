// Package timeline implements the Gantt visualization engine: the date⇄pixel
// coordinate transform, calendar-aware grid generation, virtualized row
// rendering with a keyed cache, synchronized scroll regions, the
// drag-to-reschedule gesture state machine, and dependency connector routing.
//
// The engine is single-threaded and event-driven: all coordinate math, cache
// lookups, and grid generation are synchronous and allocation-light so a
// frame can be produced inside a UI frame budget. Data loading happens off
// the render path; the engine keeps rendering its last-known-good snapshot
// while a reload is in flight.
package timeline
