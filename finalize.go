package qtree

import "encoding/binary"

// finalizeState carries the two cursors the layout pass advances as it
// walks the builder tree: the next inner slot and the next leaf byte
// position, both inners-base-relative (spec.md §4.2).
type finalizeState struct {
	buf       []byte
	nextInner uint64
	nextLeaf  uint64
}

// visitInner writes the inner node at the cursor's current inner slot,
// then recurses into each present child immediately after computing its
// destination offset — not after computing all four — so that a
// child's own subtree has already claimed its space in the buffer by
// the time the next sibling's offset is computed. Getting this order
// wrong is the single easiest way to corrupt the layout: computing all
// four offsets up front, before any child is visited, would hand two
// inner siblings the same slot.
func (st *finalizeState) visitInner(node *builderNode) {
	offset := st.nextInner
	st.nextInner += innerSize
	base := innersBase + offset

	for i, child := range node.children {
		var childOffset uint64
		switch {
		case child == nil:
			childOffset = NoChild
		case child.isInner:
			childOffset = st.nextInner
		default:
			childOffset = st.nextLeaf
		}
		binary.LittleEndian.PutUint64(st.buf[base+uint64(i)*8:base+uint64(i)*8+8], childOffset)

		if child == nil {
			continue
		}
		if child.isInner {
			st.visitInner(child)
		} else {
			st.visitLeaf(child)
		}
	}
}

func (st *finalizeState) visitLeaf(node *builderNode) {
	offset := st.nextLeaf
	n := uint64(len(node.items))
	st.nextLeaf += leafPackedSize(n)

	base := innersBase + offset
	binary.LittleEndian.PutUint64(st.buf[base:base+leafHeaderSize], n)
	itemsStart := base + leafHeaderSize
	for _, it := range node.items {
		putItem(st.buf[itemsStart:itemsStart+ItemSize], it)
		itemsStart += ItemSize
	}
}

// Finalize consumes the builder, producing an immutable FinalizedTree
// laid out as a single contiguous buffer (spec.md §4.2). If path is
// non-empty, the same bytes are also written to disk (see file.go); on
// any I/O failure during that write, Finalize returns the error and the
// in-memory tree is discarded along with it — callers that want the
// in-memory tree regardless of disk failure should call Finalize(""),
// inspect the result, and Dump separately.
//
// The builder must not be used after Finalize returns; its nodes are
// dropped as this walks them; this is explicit to document the
// lifecycle invariant even though Go's GC, not a manual free(), does the
// actual reclaiming.
func (b *Builder) Finalize(path string) (*FinalizedTree, error) {
	total := uint64(headerSize) + b.ninners*innerSize + b.nleafs*leafHeaderSize + b.size*ItemSize
	buf := make([]byte, total)
	marshalHeader(buf, b.region, b.size, b.maxDepth, b.ninners, b.nleafs)

	st := &finalizeState{buf: buf, nextLeaf: b.ninners * innerSize}
	st.visitInner(b.root)
	b.root = nil // dropped: the finalized buffer now holds every item

	h, err := unmarshalHeader(buf[:headerSize])
	if err != nil {
		return nil, err
	}
	tree := &FinalizedTree{buf: buf, header: h}

	if path != "" {
		if err := tree.Dump(path); err != nil {
			return nil, err
		}
	}
	return tree, nil
}
