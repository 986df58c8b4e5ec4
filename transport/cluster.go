// Package transport provides the Cartesian communicator: point-to-point
// and collective primitives with peer-failure detection, replacing an
// MPI binding with an in-process goroutine mesh. It is grounded on the
// teacher's core/port.go Port contract and cgra/msg.go message-builder
// idiom, reduced to what a blocking rendezvous transport needs.
package transport

import (
	"fmt"
	"math"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/tealeaf/topology"
)

// Cluster is the owned Cartesian communicator handle threaded through
// the driver, replacing the source's file-scope global communicator
// with an explicit handle a caller can construct, pass, and tear down.
// It embeds akita's HookableBase so a profiling
// collaborator can subscribe to HookPosSendRecv/HookPosCollective
// without the transport package knowing who's listening, the same
// separation core/port.go uses for its port-level hooks.
type Cluster struct {
	sim.HookableBase

	xChunks, yChunks int
	ranks            [][]*Rank // indexed [x][y]
	byIndex          []*Rank
	links            map[[2]topology.Coord]*link

	sum *collective
	min *collective
	bar *collective

	aborted bool
}

// NewCluster creates the Cartesian communicator of shape
// (xChunks, yChunks) with non-periodic, non-reordered semantics, the
// cart_create operation.
func NewCluster(xChunks, yChunks int) (*Cluster, error) {
	if xChunks <= 0 || yChunks <= 0 {
		return nil, fmt.Errorf("transport: invalid process grid %dx%d", xChunks, yChunks)
	}

	c := &Cluster{
		xChunks: xChunks,
		yChunks: yChunks,
		ranks:   make([][]*Rank, xChunks),
		links:   make(map[[2]topology.Coord]*link),
		sum:     newCollective(),
		min:     newCollective(),
		bar:     newCollective(),
	}

	index := 0
	for y := 0; y < yChunks; y++ {
		for x := 0; x < xChunks; x++ {
			if c.ranks[x] == nil {
				c.ranks[x] = make([]*Rank, yChunks)
			}
			r := newRank(topology.Coord{X: x, Y: y}, index)
			c.ranks[x][y] = r
			c.byIndex = append(c.byIndex, r)
			index++
		}
	}

	for x := 0; x < xChunks; x++ {
		for y := 0; y < yChunks; y++ {
			self := c.ranks[x][y]
			if x+1 < xChunks {
				c.connect(self, c.ranks[x+1][y])
			}
			if y+1 < yChunks {
				c.connect(self, c.ranks[x][y+1])
			}
		}
	}

	return c, nil
}

func (c *Cluster) connect(a, b *Rank) {
	key := linkKey(a.coord, b.coord)
	c.links[key] = newLink(a, b)
}

func linkKey(a, b topology.Coord) [2]topology.Coord {
	if a.X < b.X || (a.X == b.X && a.Y < b.Y) {
		return [2]topology.Coord{a, b}
	}
	return [2]topology.Coord{b, a}
}

// Size returns the total number of ranks in the communicator.
func (c *Cluster) Size() int { return c.xChunks * c.yChunks }

// Rank returns the process whose linear index matches idx (row-major
// over (x, y)).
func (c *Cluster) Rank(idx int) *Rank { return c.byIndex[idx] }

// RankAt returns the process owning Cartesian coordinate coord.
func (c *Cluster) RankAt(coord topology.Coord) *Rank {
	return c.ranks[coord.X][coord.Y]
}

// CartCoords returns the Cartesian coordinate of a linear rank index,
// the cart_coords operation.
func (c *Cluster) CartCoords(idx int) topology.Coord {
	return c.byIndex[idx].coord
}

// NeighbourRanks computes the four axis-aligned Cartesian neighbours of
// coord in a single query, with Valid=false on any face that falls
// outside the process grid.
func (c *Cluster) NeighbourRanks(coord topology.Coord) topology.Neighbours {
	return topology.Neighbours{
		Left:  c.shiftRank(coord, topology.Left),
		Right: c.shiftRank(coord, topology.Right),
		Down:  c.shiftRank(coord, topology.Down),
		Up:    c.shiftRank(coord, topology.Up),
	}
}

func (c *Cluster) shiftRank(coord topology.Coord, side topology.Side) topology.Rank {
	target := coord.Shift(side)
	if target.X < 0 || target.X >= c.xChunks || target.Y < 0 || target.Y >= c.yChunks {
		return topology.Rank{Valid: false}
	}
	return topology.Rank{Coord: target, Valid: true}
}

// SendRecv exchanges sendBuf/recvBuf with the rank at peer, honouring
// a rank-ordered send-then-recv / recv-then-send discipline to avoid
// deadlock. It returns PeerFailed instead of blocking forever when the
// peer has died.
func (c *Cluster) SendRecv(self, peer topology.Coord, sendBuf, recvBuf []float64, sendTag, recvTag int, face topology.Side) (status Status, err error) {
	selfRank := c.RankAt(self)
	peerRank := c.RankAt(peer)

	defer func() {
		c.InvokeHook(sim.HookCtx{
			Domain: c,
			Pos:    HookPosSendRecv,
			Item:   SendRecvHookCtx{Self: selfRank.index, Peer: peerRank.index, Face: face.Name(), Status: status},
		})
	}()

	if !peerRank.IsAlive() {
		return PeerFailed, nil
	}

	l, ok := c.links[linkKey(self, peer)]
	if !ok {
		return OK, fmt.Errorf("transport: %v and %v are not Cartesian neighbours", self, peer)
	}

	outgoing := NewHaloMsgBuilder().
		WithSrcRank(selfRank.index).
		WithDstRank(peerRank.index).
		WithTag(sendTag).
		WithPayload(sendBuf).
		Build()

	var incoming *HaloMsg

	if selfRank.index < peerRank.index {
		if status = l.send(selfRank, outgoing); status == PeerFailed {
			return PeerFailed, nil
		}
		if incoming, status = l.recv(selfRank); status == PeerFailed {
			return PeerFailed, nil
		}
	} else {
		if incoming, status = l.recv(selfRank); status == PeerFailed {
			return PeerFailed, nil
		}
		if status = l.send(selfRank, outgoing); status == PeerFailed {
			return PeerFailed, nil
		}
	}

	if incoming.Tag != recvTag {
		return OK, fmt.Errorf("transport: tag mismatch: got %d want %d", incoming.Tag, recvTag)
	}
	n := len(incoming.Payload)
	if n > len(recvBuf) {
		n = len(recvBuf)
	}
	copy(recvBuf[:n], incoming.Payload[:n])

	return OK, nil
}

// RecordBoundary remembers the most recently packed send buffer for a
// face of a rank, for use by Sample when a neighbour bridges past a
// dead rank during fault recovery.
func (c *Cluster) RecordBoundary(coord topology.Coord, face topology.Side, buf []float64) {
	c.RankAt(coord).recordLastSend(face, buf)
}

// Sample returns the last packed send buffer a (possibly dead) rank
// recorded for a face, used by the fault manager's interpolation path
// to obtain a "far-side boundary" sample without a live round trip.
func (c *Cluster) Sample(coord topology.Coord, face topology.Side) ([]float64, bool) {
	return c.RankAt(coord).lastSendOn(face)
}

// FindLiveNeighbour walks the Cartesian grid from self along side until
// it finds a live rank or runs off the grid, returning that rank's
// coordinate and the number of dead ranks strictly between self and it
// (the `dead_neighbours`/n the interpolation recovery strategy needs).
func (c *Cluster) FindLiveNeighbour(self topology.Coord, side topology.Side) (coord topology.Coord, deadNeighbours int, ok bool) {
	cur := self
	dead := 0
	for {
		next := cur.Shift(side)
		if next.X < 0 || next.X >= c.xChunks || next.Y < 0 || next.Y >= c.yChunks {
			return topology.Coord{}, 0, false
		}
		if c.RankAt(next).IsAlive() {
			return next, dead, true
		}
		dead++
		cur = next
	}
}

// Acknowledge marks a presumed-dead rank as dead in the communicator
// (idempotent), implementing BRIDGE/INTERPOLATION's "acknowledge the
// failure to transport" step so later iterations see a shrunken
// communicator rather than re-discovering the same failure.
func (c *Cluster) Acknowledge(coord topology.Coord) {
	c.RankAt(coord).kill()
}

// Kill simulates a peer-process failure at coord, used by the
// with_ft_kill_x/with_ft_kill_y test-injection directives.
func (c *Cluster) Kill(coord topology.Coord) {
	c.RankAt(coord).kill()
}

// AliveCount returns the number of ranks that have not been killed.
func (c *Cluster) AliveCount() int {
	n := 0
	for _, r := range c.byIndex {
		if r.IsAlive() {
			n++
		}
	}
	return n
}

// Barrier blocks the calling rank until every alive rank has called
// Barrier, the barrier() operation.
func (c *Cluster) Barrier() {
	participants := c.AliveCount()
	c.bar.wait(participants)
	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosCollective,
		Item:   CollectiveHookCtx{Kind: CollectiveBarrier, Participants: participants},
	})
}

// SumOverRanks is the SUM scalar all-reduce.
func (c *Cluster) SumOverRanks(x float64) float64 {
	participants := c.AliveCount()
	result := c.sum.reduce(participants, x, 0, func(a, b float64) float64 { return a + b })
	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosCollective,
		Item:   CollectiveHookCtx{Kind: CollectiveSum, Participants: participants},
	})
	return result
}

// MinOverRanks is the MIN scalar all-reduce.
func (c *Cluster) MinOverRanks(x float64) float64 {
	participants := c.AliveCount()
	result := c.min.reduce(participants, x, math.Inf(1), math.Min)
	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosCollective,
		Item:   CollectiveHookCtx{Kind: CollectiveMin, Participants: participants},
	})
	return result
}

// Abort is the fatal, catastrophic-failure path for when a reduction
// or communicator operation has become unrecoverable.
func (c *Cluster) Abort(reason string) error {
	c.aborted = true
	for _, r := range c.byIndex {
		r.kill()
	}
	return fmt.Errorf("transport: aborted: %s", reason)
}

// Aborted reports whether Abort has been called.
func (c *Cluster) Aborted() bool { return c.aborted }

// Finalize releases the communicator. There is nothing to release in
// the in-process transport beyond marking every rank dead so any
// goroutine still blocked in a rendezvous unblocks.
func (c *Cluster) Finalize() {
	for _, r := range c.byIndex {
		r.kill()
	}
}
