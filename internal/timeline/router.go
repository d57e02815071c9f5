package timeline

import (
	"fmt"
	"sort"
	"time"

	"github.com/sayantanroy47/tasky-timeline/pkg/models"
)

// RejectedEdge records a dependency excluded at ingestion, with the reason
// surfaced as a diagnostic. Rejected edges never reach the router.
type RejectedEdge struct {
	Dep    models.Dependency
	Reason string
}

// DependencyGraph is the validated, acyclic dependency set plus the
// critical-path annotation derived from it.
type DependencyGraph struct {
	Accepted []models.Dependency
	Rejected []RejectedEdge

	// critical holds the item IDs on the longest-duration chain.
	critical map[string]bool
	// criticalEdge marks accepted edges that lie on that chain.
	criticalEdge map[[2]string]bool
}

// BuildDependencyGraph validates edges one at a time against the set
// accepted so far. An edge is rejected when it references an unknown item,
// duplicates an earlier edge, is a self-loop, or would close a cycle. When
// a closing edge is found, the edges forming the cycle it would close are
// also pulled from the render list so no partial loop is ever drawn.
func BuildDependencyGraph(deps []models.Dependency, items map[string]models.TimelineItem) *DependencyGraph {
	g := &DependencyGraph{}
	adj := make(map[string][]string)
	seen := make(map[[2]string]bool)

	for _, dep := range deps {
		if _, ok := items[dep.FromID]; !ok {
			g.reject(dep, fmt.Sprintf("unknown source item %q", dep.FromID))
			continue
		}
		if _, ok := items[dep.ToID]; !ok {
			g.reject(dep, fmt.Sprintf("unknown target item %q", dep.ToID))
			continue
		}
		if dep.FromID == dep.ToID {
			g.reject(dep, "self dependency")
			continue
		}
		key := [2]string{dep.FromID, dep.ToID}
		if seen[key] {
			g.reject(dep, "duplicate edge")
			continue
		}
		if path := findPath(adj, dep.ToID, dep.FromID); path != nil {
			g.reject(dep, fmt.Sprintf("closes cycle through %v", path))
			g.dropCyclePath(adj, seen, path)
			continue
		}
		seen[key] = true
		adj[dep.FromID] = append(adj[dep.FromID], dep.ToID)
		g.Accepted = append(g.Accepted, dep)
	}

	g.computeCriticalPath(items)
	return g
}

func (g *DependencyGraph) reject(dep models.Dependency, reason string) {
	g.Rejected = append(g.Rejected, RejectedEdge{Dep: dep, Reason: reason})
}

// dropCyclePath removes the previously accepted edges along path from the
// render list, each with its own diagnostic.
func (g *DependencyGraph) dropCyclePath(adj map[string][]string, seen map[[2]string]bool, path []string) {
	onPath := make(map[[2]string]bool)
	for i := 0; i+1 < len(path); i++ {
		onPath[[2]string{path[i], path[i+1]}] = true
	}
	kept := g.Accepted[:0]
	for _, dep := range g.Accepted {
		key := [2]string{dep.FromID, dep.ToID}
		if onPath[key] {
			g.reject(dep, "participates in dependency cycle")
			delete(seen, key)
			adj[dep.FromID] = removeTarget(adj[dep.FromID], dep.ToID)
			continue
		}
		kept = append(kept, dep)
	}
	g.Accepted = kept
}

func removeTarget(targets []string, id string) []string {
	out := targets[:0]
	for _, t := range targets {
		if t != id {
			out = append(out, t)
		}
	}
	return out
}

// findPath runs a DFS with in-progress marking from src and returns the
// node path to dst, or nil when dst is unreachable.
func findPath(adj map[string][]string, src, dst string) []string {
	visited := make(map[string]bool)
	var dfs func(node string, path []string) []string
	dfs = func(node string, path []string) []string {
		if node == dst {
			return append(path, node)
		}
		if visited[node] {
			return nil
		}
		visited[node] = true
		for _, next := range adj[node] {
			if found := dfs(next, append(path, node)); found != nil {
				return found
			}
		}
		return nil
	}
	return dfs(src, nil)
}

// computeCriticalPath finds the accepted chain with the greatest summed
// item duration and marks its nodes and edges. Display-only: it never
// influences scheduling.
func (g *DependencyGraph) computeCriticalPath(items map[string]models.TimelineItem) {
	g.critical = make(map[string]bool)
	g.criticalEdge = make(map[[2]string]bool)
	if len(g.Accepted) == 0 {
		return
	}

	adj := make(map[string][]string)
	nodes := make(map[string]bool)
	for _, dep := range g.Accepted {
		adj[dep.FromID] = append(adj[dep.FromID], dep.ToID)
		nodes[dep.FromID] = true
		nodes[dep.ToID] = true
	}

	// Longest chain ending at each node, by memoized DFS over the DAG.
	best := make(map[string]time.Duration)
	bestNext := make(map[string]string)
	var longestFrom func(id string) time.Duration
	longestFrom = func(id string) time.Duration {
		if d, ok := best[id]; ok {
			return d
		}
		d := items[id].Duration()
		for _, next := range adj[id] {
			if cand := items[id].Duration() + longestFrom(next); cand > d {
				d = cand
				bestNext[id] = next
			}
		}
		best[id] = d
		return d
	}

	ids := make([]string, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var head string
	var headLen time.Duration
	for _, id := range ids {
		if d := longestFrom(id); d > headLen {
			head, headLen = id, d
		}
	}
	for id := head; id != ""; {
		g.critical[id] = true
		next := bestNext[id]
		if next != "" {
			g.criticalEdge[[2]string{id, next}] = true
		}
		id = next
	}
}

// Critical reports whether the item lies on the critical path.
func (g *DependencyGraph) Critical(id string) bool { return g.critical[id] }

// Point is a vertex of a connector polyline, in absolute pixel coordinates.
type Point struct {
	X float64
	Y float64
}

// Connector is the routed polyline between two dependent items.
type Connector struct {
	FromID   string
	ToID     string
	Kind     models.DependencyKind
	Points   []Point
	Critical bool
}

// RouteConnectors computes connector geometry lazily: an edge is routed
// only when at least one endpoint's row is inside the visible range, and
// geometry for the off-screen endpoint is produced on demand via barFor.
// Edges with both endpoints off-screen cost nothing: no computation, no
// allocation.
func (g *DependencyGraph) RouteConnectors(visible func(id string) bool, barFor func(id string) (BarGeometry, bool), rowHeight float64) []Connector {
	var out []Connector
	for _, dep := range g.Accepted {
		if !visible(dep.FromID) && !visible(dep.ToID) {
			continue
		}
		from, okF := barFor(dep.FromID)
		to, okT := barFor(dep.ToID)
		if !okF || !okT {
			continue
		}
		src, dst := anchors(dep.Kind, from, to)
		out = append(out, Connector{
			FromID:   dep.FromID,
			ToID:     dep.ToID,
			Kind:     dep.Kind,
			Points:   routePath(src, dst, rowHeight),
			Critical: g.criticalEdge[[2]string{dep.FromID, dep.ToID}],
		})
	}
	return out
}

// anchors picks the bar edges a dependency kind connects: trailing edge of
// the source and leading edge of the target for finish-to-start, and so on.
func anchors(kind models.DependencyKind, from, to BarGeometry) (Point, Point) {
	src := Point{X: from.X + from.Width, Y: from.Y + from.Height/2}
	dst := Point{X: to.X, Y: to.Y + to.Height/2}
	switch kind {
	case models.StartToStart:
		src.X = from.X
	case models.FinishToFinish:
		dst.X = to.X + to.Width
	case models.StartToFinish:
		src.X = from.X
		dst.X = to.X + to.Width
	}
	return src, dst
}

// routePath builds an orthogonal polyline from src to dst. The plain case
// is a single elbow: out of the source, vertical to the target row, into
// the target. When the target sits above the source (a visual crossing) or
// starts left of the source's edge, the path detours through a horizontal
// segment offset by one row height so it does not cut through intervening
// bars.
func routePath(src, dst Point, rowHeight float64) []Point {
	stub := rowHeight / 2
	upward := dst.Y < src.Y
	backward := dst.X-stub < src.X+stub

	if !upward && !backward {
		return []Point{
			src,
			{X: src.X + stub, Y: src.Y},
			{X: src.X + stub, Y: dst.Y},
			dst,
		}
	}

	detourY := src.Y + rowHeight
	if upward {
		detourY = src.Y - rowHeight
	}
	return []Point{
		src,
		{X: src.X + stub, Y: src.Y},
		{X: src.X + stub, Y: detourY},
		{X: dst.X - stub, Y: detourY},
		{X: dst.X - stub, Y: dst.Y},
		dst,
	}
}
