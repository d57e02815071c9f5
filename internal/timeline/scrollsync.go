package timeline

// ScrollRegion is one independently scrollable surface (header row, body,
// or the horizontal scrollbar proxy) registered with a ScrollSync.
type ScrollRegion struct {
	name  string
	sync  *ScrollSync
	apply func(offset float64)
}

// Name returns the region's registration name.
func (r *ScrollRegion) Name() string { return r.name }

// SetOffset moves this region horizontally and propagates the offset to
// every sibling region. If the call arrives while a propagation is already
// running (a sibling pushing to us), it applies locally and stops: the
// shared reentrancy flag prevents the notify cycle from feeding back.
func (r *ScrollRegion) SetOffset(x float64) {
	r.apply(x)
	if r.sync.syncing {
		return
	}
	r.sync.syncing = true
	for _, other := range r.sync.regions {
		if other != r {
			other.SetOffset(x)
		}
	}
	r.sync.syncing = false
}

// ScrollSync keeps registered regions in lock-step along the horizontal
// axis. Vertical scrolling is deliberately outside its scope: the header
// never moves vertically with the body.
type ScrollSync struct {
	regions []*ScrollRegion
	syncing bool
}

// NewScrollSync creates an empty synchronizer.
func NewScrollSync() *ScrollSync {
	return &ScrollSync{}
}

// Register adds a region whose apply callback stores the offset into the
// owning surface. Registration order does not matter.
func (s *ScrollSync) Register(name string, apply func(offset float64)) *ScrollRegion {
	r := &ScrollRegion{name: name, sync: s, apply: apply}
	s.regions = append(s.regions, r)
	return r
}
