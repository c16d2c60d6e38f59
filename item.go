package qtree

import (
	"encoding/binary"
	"math"
)

// ItemSize is the packed on-disk and in-memory size of an Item: an 8-byte
// value followed by two 8-byte float64 coordinates. No padding.
const ItemSize = 24

// Item is a single (value, x, y) record. Coordinates must lie within the
// bounding Region of the Builder it is inserted into; Builder.Insert
// checks this and returns an error rather than the original's undefined
// behavior.
type Item struct {
	Value uint64
	X, Y  float64
}

func (it Item) coords() [2]float64 {
	return [2]float64{it.X, it.Y}
}

func putItem(buf []byte, it Item) {
	binary.LittleEndian.PutUint64(buf[0:8], it.Value)
	binary.LittleEndian.PutUint64(buf[8:16], math.Float64bits(it.X))
	binary.LittleEndian.PutUint64(buf[16:24], math.Float64bits(it.Y))
}

func getItem(buf []byte) Item {
	return Item{
		Value: binary.LittleEndian.Uint64(buf[0:8]),
		X:     math.Float64frombits(binary.LittleEndian.Uint64(buf[8:16])),
		Y:     math.Float64frombits(binary.LittleEndian.Uint64(buf[16:24])),
	}
}
