// Package chunk defines the per-process owned sub-mesh: its field
// arrays, its pinned send/recv staging buffers on four faces, and the
// row-major indexing every other package uses. Grounded on the
// teacher's core/core.go coreState,
// which lays out a PE's registers, memory, and per-direction staging
// buffers as plain slices; this generalises that from uint32 lanes to
// the PDE's float64 fields.
package chunk

import (
	"github.com/sarchlab/tealeaf/topology"
)

// Chunk is one process's rectangular sub-mesh, including its halo.
type Chunk struct {
	Coord     topology.Coord
	HaloDepth int

	// X, Y are the chunk's full extent including halo on both sides:
	// X = cells_x + 2*HaloDepth, Y = cells_y + 2*HaloDepth.
	X, Y int

	// Left, Right, Bottom, Top are this chunk's interior extent as
	// indices into the global grid (cells, not including halo).
	Left, Right, Bottom, Top int

	Density []float64
	Energy0 []float64
	Energy  []float64
	U       []float64
	U0      []float64
	R       []float64
	P       []float64
	Sd      []float64
	Kx      []float64
	Ky      []float64

	send map[topology.Side][]float64
	recv map[topology.Side][]float64
}

var _ topology.Tile = (*Chunk)(nil)

// Extent implements topology.Tile.
func (c *Chunk) Extent() (left, right, bottom, top int) {
	return c.Left, c.Right, c.Bottom, c.Top
}

// TileCoord implements topology.Tile under a name distinct from the
// Coord field it reports.
func (c *Chunk) TileCoord() topology.Coord { return c.Coord }

// New allocates a chunk covering `cellsX x cellsY` interior cells plus
// a HaloDepth-wide halo on every side, and its four pairs of staging
// buffers.
func New(coord topology.Coord, haloDepth, cellsX, cellsY, left, right, bottom, top int) *Chunk {
	x := cellsX + 2*haloDepth
	y := cellsY + 2*haloDepth
	n := x * y

	c := &Chunk{
		Coord:     coord,
		HaloDepth: haloDepth,
		X:         x,
		Y:         y,
		Left:      left,
		Right:     right,
		Bottom:    bottom,
		Top:       top,
		Density:   make([]float64, n),
		Energy0:   make([]float64, n),
		Energy:    make([]float64, n),
		U:         make([]float64, n),
		U0:        make([]float64, n),
		R:         make([]float64, n),
		P:         make([]float64, n),
		Sd:        make([]float64, n),
		Kx:        make([]float64, n),
		Ky:        make([]float64, n),
	}

	maxDim := x
	if y > maxDim {
		maxDim = y
	}
	bufSize := int(NumFields)*haloDepth*maxDim + 2*haloDepth

	c.send = map[topology.Side][]float64{
		topology.Left:  make([]float64, bufSize),
		topology.Right: make([]float64, bufSize),
		topology.Down:  make([]float64, bufSize),
		topology.Up:    make([]float64, bufSize),
	}
	c.recv = map[topology.Side][]float64{
		topology.Left:  make([]float64, bufSize),
		topology.Right: make([]float64, bufSize),
		topology.Down:  make([]float64, bufSize),
		topology.Up:    make([]float64, bufSize),
	}

	return c
}

// Index converts a (k, j) cell coordinate to its row-major offset in
// every field array. East/west/north/south memory neighbours are
// +1/-1/+X/-X respectively.
func (c *Chunk) Index(k, j int) int { return k + j*c.X }

// InteriorBounds returns the half-open interior region
// [HaloDepth, X-HaloDepth) x [HaloDepth, Y-HaloDepth), the only region
// solver writes may touch.
func (c *Chunk) InteriorBounds() (kMin, kMax, jMin, jMax int) {
	return c.HaloDepth, c.X - c.HaloDepth, c.HaloDepth, c.Y - c.HaloDepth
}

// Field returns the named field array.
func (c *Chunk) Field(f Field) []float64 {
	switch f {
	case Density:
		return c.Density
	case Energy0:
		return c.Energy0
	case Energy1:
		return c.Energy
	case U:
		return c.U
	case P:
		return c.P
	case Sd:
		return c.Sd
	default:
		panic("chunk: unknown field")
	}
}

// SendBuffer returns the staging buffer used to pack outgoing halo
// data for a face.
func (c *Chunk) SendBuffer(side topology.Side) []float64 { return c.send[side] }

// RecvBuffer returns the staging buffer used to unpack incoming halo
// data for a face.
func (c *Chunk) RecvBuffer(side topology.Side) []float64 { return c.recv[side] }
