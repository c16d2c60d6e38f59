package qtree

// Region is an axis-aligned rectangle given by its north-east (max) and
// south-west (min) corners. Both edges are inclusive wherever Region is
// used for containment or overlap tests (spec.md §4.4's boundary
// tie-break rule): an item exactly on a shared edge between two adjacent
// query regions is reported by both.
type Region struct {
	NE [2]float64 // max x, max y
	SW [2]float64 // min x, min y
}

// Validate reports whether r is well-formed: NE strictly greater than SW
// on both axes. The original C library asserted this and aborted on
// violation; here it is a value the caller can act on.
func (r Region) Validate() error {
	if !(r.NE[0] > r.SW[0]) || !(r.NE[1] > r.SW[1]) {
		return NewErrorf(ErrCodeInvalidRegion, "ne %v must be strictly greater than sw %v on both axes", r.NE, r.SW)
	}
	return nil
}

// Midpoint returns the midpoints of r's x and y extents.
func (r Region) Midpoint() (mx, my float64) {
	mx = r.SW[0] + (r.NE[0]-r.SW[0])/2
	my = r.SW[1] + (r.NE[1]-r.SW[1])/2
	return
}

// quadIndex enumerates the four children of an inner node, in the
// depth-first traversal order used throughout the builder and finalizer:
// NW, NE, SW, SE.
type quadIndex int

const (
	quadNW quadIndex = iota
	quadNE
	quadSW
	quadSE
	numQuadrants
)

// Quadrant computes the sub-rectangle of r for child q, using r's own
// midpoint. Sub-quadrants are always derived directly from a parent
// region rather than repeatedly halved, so no drift accumulates with
// depth (the reason spec.md §4.4 has the iterator cache all four
// sub-quadrants per frame instead of recomputing them on each descent).
func (r Region) Quadrant(q quadIndex) Region {
	mx, my := r.Midpoint()
	switch q {
	case quadNW:
		return Region{NE: [2]float64{mx, r.NE[1]}, SW: [2]float64{r.SW[0], my}}
	case quadNE:
		return Region{NE: [2]float64{r.NE[0], r.NE[1]}, SW: [2]float64{mx, my}}
	case quadSW:
		return Region{NE: [2]float64{mx, my}, SW: [2]float64{r.SW[0], r.SW[1]}}
	case quadSE:
		return Region{NE: [2]float64{r.NE[0], my}, SW: [2]float64{mx, r.SW[1]}}
	default:
		panic("qtree: invalid quadrant index")
	}
}

// quadrants returns all four sub-regions of r in NW, NE, SW, SE order.
func (r Region) quadrants() [4]Region {
	return [4]Region{r.Quadrant(quadNW), r.Quadrant(quadNE), r.Quadrant(quadSW), r.Quadrant(quadSE)}
}

// Quadrants is the exported form of quadrants, for use by the query
// package, which walks a finalized tree's sub-regions frame by frame
// without access to the unexported quadIndex type.
func (r Region) Quadrants() [4]Region {
	return r.quadrants()
}

// classify picks the child quadrant for coordinates (x, y) within r,
// breaking ties on the midpoint north/east per spec.md §4.1.
func (r Region) classify(x, y float64) quadIndex {
	mx, my := r.Midpoint()
	east := x >= mx
	north := y >= my
	switch {
	case north && !east:
		return quadNW
	case north && east:
		return quadNE
	case !north && !east:
		return quadSW
	default:
		return quadSE
	}
}

// Contains reports whether point p lies within r, inclusive of both edges.
func (r Region) Contains(p [2]float64) bool {
	return p[0] >= r.SW[0] && p[0] <= r.NE[0] && p[1] >= r.SW[1] && p[1] <= r.NE[1]
}

// Overlaps reports whether r and other share any point, inclusive of
// shared edges.
func (r Region) Overlaps(other Region) bool {
	return r.SW[0] <= other.NE[0] && r.SW[1] <= other.NE[1] &&
		r.NE[0] >= other.SW[0] && r.NE[1] >= other.SW[1]
}

// ContainedBy reports whether r lies entirely within other, inclusive of
// shared edges. This is the test behind the iterator's within_parent
// fast path: once a sub-quadrant is ContainedBy the query region, every
// item beneath it matches without further checking.
func (r Region) ContainedBy(other Region) bool {
	return r.SW[0] >= other.SW[0] && r.SW[1] >= other.SW[1] &&
		r.NE[0] <= other.NE[0] && r.NE[1] <= other.NE[1]
}
