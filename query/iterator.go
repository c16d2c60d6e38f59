// Package query implements region queries over a finalized qtree.
//
// The traversal is the stack-based descent from the original library's
// Qt_Iterator, carried over frame for frame rather than recursively: each
// stack frame remembers which of its node's four children it has already
// tried, and a Region's child frame inherits its parent's within_parent
// flag the moment the child region is found to lie entirely inside the
// query region. Once within_parent is set there is no need to re-test it
// on the way back down — it only ever turns true, never false — which is
// what lets ArrayFast skip the per-item containment check for everything
// under that frame.
package query

import (
	"github.com/tczkiot/qtree"
)

// frame is one level of the iterator's explicit stack, standing in for
// one level of the original's recursive _itr_next_recursive.
type frame struct {
	offset       uint64
	quadrants    [4]qtree.Region // this node's four sub-regions, NW NE SW SE
	quadrant     int             // index of the next child to examine, 0..4
	withinParent bool            // true once this node's own region is fully inside the query region
}

// Iterator yields every item of a finalized tree that lies within a
// query region, inclusive of shared boundaries. Obtain one with New, not
// by zero value.
type Iterator struct {
	tree   *qtree.FinalizedTree
	region qtree.Region

	stack []frame
	so    int // index of the top frame; -1 once traversal is exhausted

	curItem uint64 // next item index to examine within the current leaf
}

// New returns an iterator over every item of tree within region. The
// stack depth is sized to the tree's recorded maximum depth so no
// reallocation is needed mid-traversal.
func New(tree *qtree.FinalizedTree, region qtree.Region) (*Iterator, error) {
	if err := region.Validate(); err != nil {
		return nil, err
	}

	it := &Iterator{
		tree:   tree,
		region: region,
		stack:  make([]frame, tree.MaxDepth()+2),
		so:     0,
	}
	it.stack[0] = frame{
		offset:       tree.RootOffset(),
		quadrants:    tree.Region().Quadrants(),
		quadrant:     0,
		withinParent: false, // the root is never presumed contained; its own children are tested individually
	}
	it.descend()
	return it, nil
}

// descend repeatedly expands the current top frame until it lands on a
// leaf (success) or exhausts the stack (no more matches). It is the
// iterative equivalent of _itr_next_recursive: the inner for loop walks
// one frame's four quadrants; the outer for loop backtracks to the
// parent frame once a node's quadrants are all tried, and resumes
// walking the parent's remaining quadrants.
func (it *Iterator) descend() {
	for it.so >= 0 {
		top := &it.stack[it.so]

		if it.tree.IsLeaf(top.offset) {
			it.curItem = 0
			return
		}

		children := it.tree.InnerChildren(top.offset)
		pushed := false
		for top.quadrant < len(children) {
			childOffset := children[top.quadrant]
			if childOffset == qtree.NoChild {
				top.quadrant++
				continue
			}

			childRegion := top.quadrants[top.quadrant]
			if !it.region.Overlaps(childRegion) {
				top.quadrant++
				continue
			}

			withinParent := top.withinParent || childRegion.ContainedBy(it.region)
			it.so++
			it.stack[it.so] = frame{
				offset:       childOffset,
				quadrants:    childRegion.Quadrants(),
				quadrant:     0,
				withinParent: withinParent,
			}
			pushed = true
			break
		}
		if pushed {
			continue
		}

		// This node's quadrants are all tried: backtrack, and advance
		// the parent past the quadrant that led here.
		it.so--
		if it.so >= 0 {
			it.stack[it.so].quadrant++
		}
	}
}

// currentLeaf reports the offset and within_parent status of the leaf
// the traversal currently sits on, or ok == false once exhausted. Used
// by both Next (per-item) and the leaf-batch driver in array.go.
func (it *Iterator) currentLeaf() (offset uint64, within bool, ok bool) {
	if it.so < 0 {
		return 0, false, false
	}
	return it.stack[it.so].offset, it.stack[it.so].withinParent, true
}

// advanceLeaf moves past the current leaf to the next one, or exhausts
// the iterator if none remains.
func (it *Iterator) advanceLeaf() {
	it.so--
	if it.so >= 0 {
		it.stack[it.so].quadrant++
	}
	it.descend()
}

// Next returns the next matching item, in tree order, and true; or a
// zero Item and false once every match has been returned. Once Next
// returns false it continues to do so on every subsequent call.
func (it *Iterator) Next() (qtree.Item, bool) {
	for {
		offset, within, ok := it.currentLeaf()
		if !ok {
			return qtree.Item{}, false
		}

		n := it.tree.LeafLen(offset)
		for it.curItem < n {
			item := it.tree.LeafItemAt(offset, it.curItem)
			it.curItem++
			if within || it.region.Contains([2]float64{item.X, item.Y}) {
				return item, true
			}
		}

		it.advanceLeaf()
		it.curItem = 0
	}
}
