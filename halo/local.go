// Package halo implements the local (reflective) and remote
// (transport-driven) halo updates that keep each chunk's ghost cells
// current between solver iterations.
package halo

import (
	"github.com/sarchlab/tealeaf/chunk"
	"github.com/sarchlab/tealeaf/topology"
)

// UpdateLocalFace reflects interior cells out into the halo for one
// face of one field, used whenever the Cartesian neighbour on that
// face is NULL (the chunk sits on the global domain boundary). Applying
// it twice is a no-op: reflecting already-reflected halo values
// reproduces the same halo values because the source columns/rows are
// always the fixed interior ones.
func UpdateLocalFace(buf []float64, x, y, haloDepth int, face topology.Side) {
	switch face {
	case topology.Left:
		for j := haloDepth; j < y-haloDepth; j++ {
			for k := 0; k < haloDepth; k++ {
				buf[j*x+(haloDepth-k-1)] = buf[j*x+(haloDepth+k)]
			}
		}
	case topology.Right:
		for j := haloDepth; j < y-haloDepth; j++ {
			for k := 0; k < haloDepth; k++ {
				buf[j*x+(x-haloDepth+k)] = buf[j*x+(x-haloDepth-k-1)]
			}
		}
	case topology.Down:
		for k := haloDepth; k < x-haloDepth; k++ {
			for d := 0; d < haloDepth; d++ {
				buf[(haloDepth-d-1)*x+k] = buf[(haloDepth+d)*x+k]
			}
		}
	case topology.Up:
		for k := haloDepth; k < x-haloDepth; k++ {
			for d := 0; d < haloDepth; d++ {
				buf[(y-haloDepth+d)*x+k] = buf[(y-haloDepth-d-1)*x+k]
			}
		}
	}
}

// ApplyLocal reflects every active field for one face of a chunk.
func ApplyLocal(c *chunk.Chunk, fields chunk.Set, face topology.Side) {
	for _, f := range fields.Active() {
		UpdateLocalFace(c.Field(f), c.X, c.Y, c.HaloDepth, face)
	}
}
