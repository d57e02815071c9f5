package timeline

import (
	"math"
	"sort"

	"github.com/sayantanroy47/tasky-timeline/pkg/models"
)

// minRowBuffer is the smallest allowed overscan, in rows, on each side of
// the visible window.
const minRowBuffer = 2

// CacheKey identifies one cached render result. Version changes whenever
// the host mutates the item, so a stale entry can never be served for
// changed data.
type CacheKey struct {
	ID      string
	Kind    models.ItemKind
	Version int64
}

// BarGeometry is the rendered form of one timeline row: the item's bar in
// absolute pixel coordinates plus the display attributes a renderer needs.
type BarGeometry struct {
	ItemID   string
	Kind     models.ItemKind
	Title    string
	Row      int
	X        float64
	Width    float64
	Y        float64
	Height   float64
	Color    string
	Status   models.ItemStatus
	Progress float64
	Critical bool
}

// CacheStats reports cache effectiveness since the last reset.
type CacheStats struct {
	Hits   int
	Misses int
	Size   int
}

// VirtualList materializes only the rows intersecting the vertical scroll
// window, reusing geometry from a (id, kind, version)-keyed cache. Rows
// outside the window are skipped entirely: not built, not measured.
type VirtualList struct {
	rowHeight float64
	buffer    int

	cache  map[CacheKey]BarGeometry
	hits   int
	misses int
}

// NewVirtualList creates a list with the given row height. Buffers smaller
// than two rows are raised to two.
func NewVirtualList(rowHeight float64, buffer int) *VirtualList {
	if buffer < minRowBuffer {
		buffer = minRowBuffer
	}
	return &VirtualList{
		rowHeight: rowHeight,
		buffer:    buffer,
		cache:     make(map[CacheKey]BarGeometry),
	}
}

// RowHeight returns the configured row height.
func (l *VirtualList) RowHeight() float64 { return l.rowHeight }

// SetRowHeight changes the row height and clears the cache, since every
// cached Y coordinate is stale.
func (l *VirtualList) SetRowHeight(h float64) {
	if h > 0 && h != l.rowHeight {
		l.rowHeight = h
		l.ClearCache()
	}
}

// VisibleRange computes the half-open row window [first, last) for the
// given vertical scroll offset. The result always satisfies
// 0 <= first <= last <= total.
func (l *VirtualList) VisibleRange(scrollY, viewHeight float64, total int) (first, last int) {
	if total <= 0 || l.rowHeight <= 0 {
		return 0, 0
	}
	first = int(math.Floor(scrollY / l.rowHeight))
	if first < 0 {
		first = 0
	}
	last = first + int(math.Ceil(viewHeight/l.rowHeight)) + l.buffer
	if first > total {
		first = total
	}
	if last > total {
		last = total
	}
	if last < first {
		last = first
	}
	return first, last
}

// Materialize returns geometry for rows[first:last], serving unchanged
// items from the cache and rebuilding the rest via build. Rebuilt entries
// replace their cache slot; keys for items no longer requested simply stop
// being refreshed and are dropped on the next ClearCache.
func (l *VirtualList) Materialize(rows []models.TimelineItem, first, last int, build func(item models.TimelineItem, row int) BarGeometry) []BarGeometry {
	if first < 0 || last > len(rows) || first > last {
		return nil
	}
	out := make([]BarGeometry, 0, last-first)
	for row := first; row < last; row++ {
		item := rows[row]
		key := CacheKey{ID: item.ID, Kind: item.Kind, Version: item.Version}
		if geo, ok := l.cache[key]; ok && geo.Row == row {
			l.hits++
			out = append(out, geo)
			continue
		}
		l.misses++
		geo := build(item, row)
		l.cache[key] = geo
		out = append(out, geo)
	}
	return out
}

// ClearCache drops every cached entry. Must be called on zoom change or a
// full data refresh to bound memory and evict geometry computed under the
// old coordinate space.
func (l *VirtualList) ClearCache() {
	l.cache = make(map[CacheKey]BarGeometry)
}

// Stats returns hit/miss counters accumulated since the last ResetStats.
func (l *VirtualList) Stats() CacheStats {
	return CacheStats{Hits: l.hits, Misses: l.misses, Size: len(l.cache)}
}

// ResetStats zeroes the hit/miss counters without touching cached entries.
func (l *VirtualList) ResetStats() {
	l.hits = 0
	l.misses = 0
}

// FlattenItems produces the row order rendered by the timeline: projects
// sorted by start date, each followed by its tasks sorted by start date.
// Tasks referencing an unknown project are appended at the end so no valid
// item silently disappears.
func FlattenItems(projects, tasks []models.TimelineItem) []models.TimelineItem {
	sortedProjects := append([]models.TimelineItem(nil), projects...)
	sort.SliceStable(sortedProjects, func(i, j int) bool {
		return sortedProjects[i].Start.Before(sortedProjects[j].Start)
	})

	byProject := make(map[string][]models.TimelineItem)
	var orphans []models.TimelineItem
	known := make(map[string]bool, len(sortedProjects))
	for _, p := range sortedProjects {
		known[p.ID] = true
	}
	for _, t := range tasks {
		if known[t.ProjectID] {
			byProject[t.ProjectID] = append(byProject[t.ProjectID], t)
		} else {
			orphans = append(orphans, t)
		}
	}

	rows := make([]models.TimelineItem, 0, len(projects)+len(tasks))
	for _, p := range sortedProjects {
		rows = append(rows, p)
		group := byProject[p.ID]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Start.Before(group[j].Start)
		})
		rows = append(rows, group...)
	}
	sort.SliceStable(orphans, func(i, j int) bool {
		return orphans[i].Start.Before(orphans[j].Start)
	})
	return append(rows, orphans...)
}
