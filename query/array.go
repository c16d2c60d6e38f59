package query

import "github.com/tczkiot/qtree"

// initialArrayCap is the starting capacity for Array's result slice,
// carried over from qt_query_ary's alloced = 32.
const initialArrayCap = 32

// Array collects every item of tree within region into a slice, stopping
// early once maxN items have been gathered (maxN == 0 means unbounded).
// It is the straightforward per-item driver: it pulls one item at a time
// from Next, which skips the region-containment check for items under an
// already-fully-contained frame but still pays one call per item.
// ArrayFast instead copies such leaves in one bulk append.
func Array(tree *qtree.FinalizedTree, region qtree.Region, maxN uint64) ([]qtree.Item, error) {
	it, err := New(tree, region)
	if err != nil {
		return nil, err
	}

	items := make([]qtree.Item, 0, initialArrayCap)
	for {
		if maxN > 0 && uint64(len(items)) >= maxN {
			break
		}
		item, ok := it.Next()
		if !ok {
			break
		}
		items = append(items, item)
	}
	return items, nil
}

// FastStats reports how often ArrayFast's leaf-batch driver took the
// within_parent bulk-copy path versus the per-item filter path. This
// promotes the original library's #ifndef NDEBUG withins/nwithins
// counters to an ordinary return value: they were debug-only globals
// there, but there is no reason a caller here shouldn't see them on
// every call.
type FastStats struct {
	WithinHits uint64 // leaves copied wholesale, no per-item check
	SlowHits   uint64 // leaves filtered item by item
}

// ArrayFast collects every item of tree within region, like Array, but
// walks the tree leaf by leaf instead of item by item: a leaf whose
// entire bounding region is already contained in the query region is
// copied in one bulk append, skipping the per-item containment check
// that Array always pays. maxN == 0 means unbounded.
func ArrayFast(tree *qtree.FinalizedTree, region qtree.Region, maxN uint64) ([]qtree.Item, FastStats, error) {
	it, err := New(tree, region)
	if err != nil {
		return nil, FastStats{}, err
	}

	var stats FastStats
	items := make([]qtree.Item, 0, initialArrayCap)

	for {
		offset, within, ok := it.currentLeaf()
		if !ok {
			break
		}
		if maxN > 0 && uint64(len(items)) >= maxN {
			break
		}

		if within {
			stats.WithinHits++
			leaf := tree.LeafItems(offset)
			if maxN > 0 && uint64(len(items))+uint64(len(leaf)) > maxN {
				leaf = leaf[:maxN-uint64(len(items))]
			}
			items = append(items, leaf...)
		} else {
			stats.SlowHits++
			n := tree.LeafLen(offset)
			for i := uint64(0); i < n; i++ {
				item := tree.LeafItemAt(offset, i)
				if region.Contains([2]float64{item.X, item.Y}) {
					items = append(items, item)
					if maxN > 0 && uint64(len(items)) >= maxN {
						break
					}
				}
			}
		}

		it.advanceLeaf()
	}

	return items, stats, nil
}
