package halo

import (
	"fmt"

	"github.com/sarchlab/tealeaf/chunk"
	"github.com/sarchlab/tealeaf/faulttolerance"
	"github.com/sarchlab/tealeaf/topology"
	"github.com/sarchlab/tealeaf/transport"
)

// FaultSettings configures the recovery strategy a remote exchange
// falls back to when a peer is detected dead.
type FaultSettings struct {
	Enabled         bool
	Strategy        faulttolerance.Strategy
	StaticValue     float64
	InterpFactor    float64 // ft_recv_interpolation_factor: reserved for future use, unused by the primary geometry
}

// Exchange performs one remote_halo invocation for a single chunk: for
// each of the four faces, either a Local Halos reflection (no
// Cartesian neighbour) or a pack + transport send/recv +
// fault-recovery + unpack round trip. The X axis (LEFT/RIGHT) is
// always sequenced before the Y axis (DOWN/UP), so that corner halo
// cells packed into the Y exchange already reflect the X exchange.
func Exchange(cl *transport.Cluster, c *chunk.Chunk, fields chunk.Set, depth int, ft FaultSettings) error {
	neighbours := cl.NeighbourRanks(c.Coord)

	for _, pair := range [][2]topology.Side{{topology.Left, topology.Right}, {topology.Down, topology.Up}} {
		for _, side := range pair {
			if err := exchangeFace(cl, c, fields, depth, ft, neighbours, side); err != nil {
				return err
			}
		}
	}
	return nil
}

func exchangeFace(
	cl *transport.Cluster,
	c *chunk.Chunk,
	fields chunk.Set,
	depth int,
	ft FaultSettings,
	neighbours topology.Neighbours,
	side topology.Side,
) error {
	neighbour := neighbours.Get(side)
	if !neighbour.Valid {
		ApplyLocal(c, fields, side)
		return nil
	}

	faceLen := FaceLen(c, side)
	n := len(fields.Active()) * depth * faceLen

	sendBuf := c.SendBuffer(side)[:n]
	recvBuf := c.RecvBuffer(side)[:n]
	fieldOffsets := Pack(c, side, fields, depth, sendBuf)
	cl.RecordBoundary(c.Coord, side, sendBuf)

	sendTag, recvTag := tagsFor(side)
	status, err := cl.SendRecv(c.Coord, neighbour.Coord, sendBuf, recvBuf, sendTag, recvTag, side)
	if err != nil {
		return fmt.Errorf("halo: %s face exchange with %v: %w", side.Name(), neighbour.Coord, err)
	}

	if status == transport.PeerFailed {
		if !ft.Enabled {
			return fmt.Errorf("halo: peer %v failed on %s face and fault tolerance is disabled",
				neighbour.Coord, side.Name())
		}

		liveCoord, deadNeighbours, hasLive := cl.FindLiveNeighbour(c.Coord, side)

		var farBoundary []float64
		if hasLive && ft.Strategy == faulttolerance.Interpolation {
			farBoundary, _ = cl.Sample(liveCoord, side.Opposite())
		}

		ctx := faulttolerance.Context{
			Face:           side,
			StaticValue:    ft.StaticValue,
			DeadNeighbours: deadNeighbours,
			HaloDepth:      depth,
			AxisExtent:     axisExtent(c, side),
			SendBuf:        sendBuf,
			RecvBuf:        recvBuf,
			FarBoundary:    farBoundary,
			FieldOffsets:   fieldOffsets,
			FieldStride:    depth * faceLen,
			FaceLen:        faceLen,
			Acknowledge:    func() { cl.Acknowledge(neighbour.Coord) },
		}
		if err := faulttolerance.Recover(ft.Strategy, ctx); err != nil {
			return fmt.Errorf("halo: recovering %s face from %v: %w", side.Name(), neighbour.Coord, err)
		}
	}

	Unpack(c, side, fields, depth, recvBuf)
	return nil
}

// tagsFor returns the matching (send_tag, recv_tag) pair for a face, so
// that a rank's RIGHT-side send (tag 0) is received by its neighbour's
// LEFT-side recv (tag 0), and vice versa.
func tagsFor(side topology.Side) (sendTag, recvTag int) {
	switch side {
	case topology.Right, topology.Up:
		return 0, 1
	default: // Left, Down
		return 1, 0
	}
}

// axisExtent returns this chunk's interior cell count along the axis a
// face crosses: X-extent for LEFT/RIGHT, Y-extent for DOWN/UP. This is
// the "width"/"height" the interpolation recovery strategy divides by.
func axisExtent(c *chunk.Chunk, side topology.Side) int {
	if side == topology.Left || side == topology.Right {
		return c.X - 2*c.HaloDepth
	}
	return c.Y - 2*c.HaloDepth
}

// HaloUpdate is the driver-facing entry point named halo_update: it
// always dispatches through Exchange, which itself chooses Local vs
// Remote per face.
func HaloUpdate(cl *transport.Cluster, c *chunk.Chunk, fields chunk.Set, depth int, ft FaultSettings) error {
	return Exchange(cl, c, fields, depth, ft)
}
