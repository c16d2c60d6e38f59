package qtree

import (
	"encoding/binary"
	"io"
	"math"
)

// Binary layout constants (spec.md §6). Structures are packed; nothing
// here ever depends on the platform's native struct layout, only on
// these explicit byte offsets.
const (
	magicNumber uint32 = 0x51545231 // "QTR1"
	formatVersion uint32 = 1

	// headerSize is padded to 8-byte alignment: 4*8 (region) + 8 (size)
	// + 4 (maxdepth) + 8 (ninners) + 8 (nleafs) + 4 (magic) + 4
	// (version) + 4 padding = 72.
	headerSize = 72

	// innerSize is four 8-byte offsets: spec.md §3's FinalizedInner.
	innerSize = 4 * 8

	// leafHeaderSize is the 8-byte item count prefix of a FinalizedLeaf.
	leafHeaderSize = 8
)

// NoChild is the sentinel stored in an inner node's quadrant slot when
// that child is absent. Offset 0 can never be a legitimate child offset
// because the root inner node always occupies offset 0 within the
// inners region, and the root has no parent (spec.md §3). spec.md §9
// suggests math.MaxUint64 as a sentinel that doesn't rely on this
// coincidence; that choice is evaluated and rejected in DESIGN.md in
// favor of staying byte-compatible with the §6 file format table.
const NoChild uint64 = 0

func marshalHeader(buf []byte, region Region, size uint64, maxDepth uint32, ninners, nleafs uint64) {
	binary.LittleEndian.PutUint64(buf[0:8], uint64FromFloat(region.NE[0]))
	binary.LittleEndian.PutUint64(buf[8:16], uint64FromFloat(region.NE[1]))
	binary.LittleEndian.PutUint64(buf[16:24], uint64FromFloat(region.SW[0]))
	binary.LittleEndian.PutUint64(buf[24:32], uint64FromFloat(region.SW[1]))
	binary.LittleEndian.PutUint64(buf[32:40], size)
	binary.LittleEndian.PutUint32(buf[40:44], maxDepth)
	binary.LittleEndian.PutUint64(buf[44:52], ninners)
	binary.LittleEndian.PutUint64(buf[52:60], nleafs)
	binary.LittleEndian.PutUint32(buf[60:64], magicNumber)
	binary.LittleEndian.PutUint32(buf[64:68], formatVersion)
	// buf[68:72] left zero as padding.
}

type header struct {
	region   Region
	size     uint64
	maxDepth uint32
	ninners  uint64
	nleafs   uint64
}

func unmarshalHeader(buf []byte) (header, error) {
	if len(buf) < headerSize {
		return header{}, NewErrorf(ErrCodeCorrupted, "buffer too small for header: %d bytes", len(buf))
	}
	magic := binary.LittleEndian.Uint32(buf[60:64])
	if magic != magicNumber {
		return header{}, NewErrorf(ErrCodeInvalidMagic, "got 0x%x, want 0x%x", magic, magicNumber)
	}
	version := binary.LittleEndian.Uint32(buf[64:68])
	if version != formatVersion {
		return header{}, NewErrorf(ErrCodeUnsupportedVersion, "got %d, want %d", version, formatVersion)
	}

	h := header{
		region: Region{
			NE: [2]float64{floatFromUint64(binary.LittleEndian.Uint64(buf[0:8])), floatFromUint64(binary.LittleEndian.Uint64(buf[8:16]))},
			SW: [2]float64{floatFromUint64(binary.LittleEndian.Uint64(buf[16:24])), floatFromUint64(binary.LittleEndian.Uint64(buf[24:32]))},
		},
		size:     binary.LittleEndian.Uint64(buf[32:40]),
		maxDepth: binary.LittleEndian.Uint32(buf[40:44]),
		ninners:  binary.LittleEndian.Uint64(buf[44:52]),
		nleafs:   binary.LittleEndian.Uint64(buf[52:60]),
	}
	if err := h.region.Validate(); err != nil {
		return header{}, NewErrorf(ErrCodeInvalidFormat, "header region invalid: %v", err)
	}
	return h, nil
}

// innersBase is always headerSize: offsets stored in the file are
// relative to this point (spec.md §4.3).
const innersBase = headerSize

// FinalizedTree is the immutable, contiguous layout produced by
// Builder.Finalize or Load. Its buffer is owned either by the finalizer
// (in-memory build) or by the mmap from Load; Close releases the mmap
// in the latter case and is a no-op in the former.
type FinalizedTree struct {
	buf    []byte
	header header
	mm     unmapper  // non-nil only when buf backs an mmap.MMap (set by Load)
	file   io.Closer // the open file backing mm, closed alongside it
}

// unmapper is satisfied by mmap.MMap; kept as a tiny local interface so
// layout.go and the rest of the root package don't need to import
// edsrzf/mmap-go (only file.go does).
type unmapper interface {
	Unmap() error
}

// Region returns the bounding region the tree was built with.
func (t *FinalizedTree) Region() Region { return t.header.region }

// Size returns the total number of items in the tree.
func (t *FinalizedTree) Size() uint64 { return t.header.size }

// MaxDepth returns the deepest level reached during construction.
func (t *FinalizedTree) MaxDepth() uint32 { return t.header.maxDepth }

// NInners returns the number of inner nodes.
func (t *FinalizedTree) NInners() uint64 { return t.header.ninners }

// NLeafs returns the number of leaf nodes.
func (t *FinalizedTree) NLeafs() uint64 { return t.header.nleafs }

// RootOffset is the inners-base-relative offset of the root node: always 0.
func (t *FinalizedTree) RootOffset() uint64 { return 0 }

// innersRegionSize is the byte length of the inners array.
func (t *FinalizedTree) innersRegionSize() uint64 {
	return t.header.ninners * innerSize
}

// IsLeaf reports whether the node at inners-base-relative offset is a
// leaf, per the dispatch rule in spec.md §4.3: anything at or past the
// end of the inners array is a leaf.
func (t *FinalizedTree) IsLeaf(offset uint64) bool {
	return offset >= t.innersRegionSize()
}

// InnerChildren returns the four (possibly NoChild) child offsets of the
// inner node at the given inners-base-relative offset, in NW, NE, SW, SE
// order.
func (t *FinalizedTree) InnerChildren(offset uint64) [4]uint64 {
	start := innersBase + offset
	buf := t.buf[start : start+innerSize]
	var out [4]uint64
	for i := range out {
		out[i] = binary.LittleEndian.Uint64(buf[i*8 : i*8+8])
	}
	return out
}

// LeafLen returns the item count of the leaf at the given
// inners-base-relative offset.
func (t *FinalizedTree) LeafLen(offset uint64) uint64 {
	start := innersBase + offset
	return binary.LittleEndian.Uint64(t.buf[start : start+leafHeaderSize])
}

// LeafItemAt decodes the i-th item (0-based) of the leaf at offset.
func (t *FinalizedTree) LeafItemAt(offset uint64, i uint64) Item {
	start := innersBase + offset + leafHeaderSize + i*ItemSize
	return getItem(t.buf[start : start+ItemSize])
}

// LeafItems decodes and returns every item in the leaf at offset, in
// insertion order. Used by the leaf-batch query path's within_parent
// fast case, which needs every item in the leaf with no per-item check.
func (t *FinalizedTree) LeafItems(offset uint64) []Item {
	n := t.LeafLen(offset)
	items := make([]Item, n)
	start := innersBase + offset + leafHeaderSize
	for i := range items {
		items[i] = getItem(t.buf[start : start+ItemSize])
		start += ItemSize
	}
	return items
}

// leafPackedSize is the number of bytes a leaf with n items occupies.
func leafPackedSize(n uint64) uint64 {
	return leafHeaderSize + n*ItemSize
}

func uint64FromFloat(f float64) uint64 {
	return math.Float64bits(f)
}

func floatFromUint64(u uint64) float64 {
	return math.Float64frombits(u)
}
