// Package observability provides diagnostic event logging and render
// metrics for the timeline engine. Diagnostics (malformed items, rejected
// dependency edges, load failures) are appended as structured JSON Lines;
// metrics are derived on demand from the log.
package observability
