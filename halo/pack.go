package halo

import (
	"github.com/sarchlab/tealeaf/chunk"
	"github.com/sarchlab/tealeaf/topology"
)

// FaceLen returns the number of lines parallel to a face: chunk height
// for LEFT/RIGHT, chunk width for DOWN/UP.
func FaceLen(c *chunk.Chunk, face topology.Side) int {
	if face == topology.Left || face == topology.Right {
		return c.Y
	}
	return c.X
}

// Pack fills dst with every active field's boundary slab for face, in
// fixed field order, and returns each field's offset (in float64
// elements) into dst. The pack/unpack offset formulas are parameterised
// only by (face, depth, haloDepth, chunk.X, chunk.Y) so that Unpack
// inverts them exactly.
func Pack(c *chunk.Chunk, face topology.Side, fields chunk.Set, depth int, dst []float64) []int {
	faceLen := FaceLen(c, face)
	stride := depth * faceLen

	offsets := make([]int, 0, len(fields.Active()))
	offset := 0
	for _, f := range fields.Active() {
		packField(c.Field(f), c.X, c.Y, c.HaloDepth, face, depth, dst[offset:offset+stride])
		offsets = append(offsets, offset)
		offset += stride
	}
	return offsets
}

// Unpack inverts Pack, writing src's slabs into the halo of every
// active field.
func Unpack(c *chunk.Chunk, face topology.Side, fields chunk.Set, depth int, src []float64) {
	faceLen := FaceLen(c, face)
	stride := depth * faceLen

	offset := 0
	for _, f := range fields.Active() {
		unpackField(c.Field(f), c.X, c.Y, c.HaloDepth, face, depth, src[offset:offset+stride])
		offset += stride
	}
}

// packField packs one field's boundary slab. Entries are laid out as
// (pos*depth + d): the depth index d is the fast index and the position
// along the face is the slow one, so consecutive entries do not run
// along the face. faulttolerance's interpolation geometry reads the
// same layout.
func packField(arr []float64, x, y, haloDepth int, face topology.Side, depth int, dst []float64) {
	switch face {
	case topology.Left:
		for row := 0; row < y; row++ {
			for d := 0; d < depth; d++ {
				col := haloDepth + d
				dst[row*depth+d] = arr[row*x+col]
			}
		}
	case topology.Right:
		for row := 0; row < y; row++ {
			for d := 0; d < depth; d++ {
				col := x - haloDepth - depth + d
				dst[row*depth+d] = arr[row*x+col]
			}
		}
	case topology.Down:
		for col := 0; col < x; col++ {
			for d := 0; d < depth; d++ {
				row := haloDepth + d
				dst[col*depth+d] = arr[row*x+col]
			}
		}
	case topology.Up:
		for col := 0; col < x; col++ {
			for d := 0; d < depth; d++ {
				row := y - haloDepth - depth + d
				dst[col*depth+d] = arr[row*x+col]
			}
		}
	}
}

func unpackField(arr []float64, x, y, haloDepth int, face topology.Side, depth int, src []float64) {
	switch face {
	case topology.Left:
		for row := 0; row < y; row++ {
			for d := 0; d < depth; d++ {
				col := haloDepth - depth + d
				arr[row*x+col] = src[row*depth+d]
			}
		}
	case topology.Right:
		for row := 0; row < y; row++ {
			for d := 0; d < depth; d++ {
				col := x - haloDepth + d
				arr[row*x+col] = src[row*depth+d]
			}
		}
	case topology.Down:
		for col := 0; col < x; col++ {
			for d := 0; d < depth; d++ {
				row := haloDepth - depth + d
				arr[row*x+col] = src[col*depth+d]
			}
		}
	case topology.Up:
		for col := 0; col < x; col++ {
			for d := 0; d < depth; d++ {
				row := y - haloDepth + d
				arr[row*x+col] = src[col*depth+d]
			}
		}
	}
}
