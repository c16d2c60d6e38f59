package qtree

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/dustin/go-humanize"
)

// BuilderOptions configures a Builder. A nil *BuilderOptions is
// equivalent to the zero value; fillDefaults fills in anything left
// unset, mirroring database.Options's fillDefaults/Validate pair.
type BuilderOptions struct {
	// Logger receives one slog.Debug record per split event: a leaf
	// split carries the depth and the number of items re-inserted, a
	// coincident-point bucket growth carries the depth and the new
	// bucket size. Nil means discard (fillDefaults
	// installs a handler that writes to io.Discard, exactly as
	// database.Options.Logger does).
	Logger *slog.Logger
}

func (o *BuilderOptions) fillDefaults() {
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
}

// Builder is a mutable, unbounded point-region quadtree under
// construction. It is exclusively owned by its creator; sharing a
// Builder across goroutines without external synchronization is unsafe
// (spec.md §5 — this is a non-goal, not a bug).
type Builder struct {
	root       *builderNode
	region     Region
	bucketSize uint32
	size       uint64
	maxDepth   uint32
	ninners    uint64
	nleafs     uint64

	// quadtree.c's #ifndef NDEBUG withins/nwithins counters have no
	// field here: query.ArrayFast reports them per call through its
	// FastStats return value (see query/array.go) rather than as state
	// on the builder.

	logger *slog.Logger
}

// NewBuilder creates an empty builder bounded by region, whose leaves
// hold up to bucketSize items before splitting. bucketSize must be >= 1.
func NewBuilder(region Region, bucketSize uint32, opts *BuilderOptions) (*Builder, error) {
	if err := region.Validate(); err != nil {
		return nil, err
	}
	if bucketSize < 1 {
		return nil, NewErrorf(ErrCodeInvalidBucketSize, "bucket size must be >= 1, got %d", bucketSize)
	}
	if opts == nil {
		opts = &BuilderOptions{}
	}
	opts.fillDefaults()

	return &Builder{
		root:       newInnerNode(),
		region:     region,
		bucketSize: bucketSize,
		ninners:    1, // the root
		logger:     opts.Logger,
	}, nil
}

// Insert adds a copy of item to the builder. item.X, item.Y must lie
// within the builder's region (boundary inclusive).
func (b *Builder) Insert(item Item) error {
	if !b.region.Contains(item.coords()) {
		return NewErrorf(ErrCodeOutOfRegion, "item (%g, %g) outside region ne=%v sw=%v", item.X, item.Y, b.region.NE, b.region.SW)
	}

	b.size++
	b.insert(b.root, item, b.region, 1)
	return nil
}

// insert descends from node, recursing into (possibly newly created)
// children until it reaches a leaf with room, splitting as necessary.
// quadrant is the bounding region of node itself, so that midpoints are
// computed relative to node's own quadrant rather than re-derived from
// the tree's root region on every call (spec.md §4.1).
func (b *Builder) insert(node *builderNode, item Item, quadrant Region, depth uint32) {
	if depth > b.maxDepth {
		b.maxDepth = depth
	}

	for {
		if node.isInner {
			q := quadrant.classify(item.X, item.Y)
			child := node.children[q]
			if child == nil {
				child = newLeafNode(b.bucketSize)
				node.children[q] = child
				b.nleafs++
			}
			b.insert(child, item, quadrant.Quadrant(q), depth+1)
			return
		}

		// Leaf: make room if needed, then insert.
		if node.full() {
			b.split(node, quadrant, depth)
			if node.isInner {
				// Promoted to inner; restart the loop so the new
				// child takes the item.
				continue
			}
			// Otherwise the leaf's bucket was grown in place
			// (coincident points) and node is still a leaf.
		}

		node.items = append(node.items, item)
		return
	}
}

// split either grows node's bucket in place (all items coincident) or
// promotes it to an inner node and re-inserts its former items, per
// spec.md §4.1.
func (b *Builder) split(node *builderNode, quadrant Region, depth uint32) {
	if !node.distinctItemsExist() {
		newSize := cap(node.items) * 2
		grown := make([]Item, len(node.items), newSize)
		copy(grown, node.items)
		node.items = grown
		b.logger.Debug("qtree: coincident bucket grown", "depth", depth, "size", newSize)
		return
	}

	former := node.items
	node.isInner = true
	node.items = nil
	node.children = [numQuadrants]*builderNode{}
	b.ninners++
	b.nleafs--

	b.logger.Debug("qtree: leaf split", "depth", depth, "items", len(former))

	for _, it := range former {
		// Re-insert at the same depth the leaf occupied, into the same
		// quadrant it inhabited, so midpoints are computed correctly
		// (spec.md §4.1: "the same quadrant the leaf inhabited before
		// conversion").
		b.insert(node, it, quadrant, depth)
	}
}

// BuilderStats summarizes a builder's current shape.
type BuilderStats struct {
	Items    uint64
	Inners   uint64
	Leafs    uint64
	MaxDepth uint32
}

// Stats returns a snapshot of the builder's current shape.
func (b *Builder) Stats() BuilderStats {
	return BuilderStats{Items: b.size, Inners: b.ninners, Leafs: b.nleafs, MaxDepth: b.maxDepth}
}

func (s BuilderStats) String() string {
	return fmt.Sprintf("%s items across %s inners / %s leafs, depth %d",
		humanize.Comma(int64(s.Items)), humanize.Comma(int64(s.Inners)), humanize.Comma(int64(s.Leafs)), s.MaxDepth)
}
