package transport

import (
	"sync"
	"sync/atomic"

	"github.com/sarchlab/tealeaf/topology"
)

// Rank is the in-process analogue of an MPI process: one Cartesian
// coordinate, one linear index, and a death signal used both by fault
// injection (the with_ft_kill_* deck directives) and by links to
// unblock a peer mid-rendezvous.
type Rank struct {
	coord topology.Coord
	index int

	dead     chan struct{}
	deadOnce sync.Once
	alive    atomic.Bool

	lastSendMu sync.Mutex
	lastSend   map[topology.Side][]float64
}

func newRank(coord topology.Coord, index int) *Rank {
	r := &Rank{
		coord:    coord,
		index:    index,
		dead:     make(chan struct{}),
		lastSend: make(map[topology.Side][]float64),
	}
	r.alive.Store(true)
	return r
}

// Coord returns the rank's Cartesian coordinate.
func (r *Rank) Coord() topology.Coord { return r.coord }

// Index returns the rank's linear process index (row-major by coord).
func (r *Rank) Index() int { return r.index }

// IsAlive reports whether the rank has not been killed.
func (r *Rank) IsAlive() bool { return r.alive.Load() }

// kill marks the rank dead, closing its dead channel exactly once so
// any peer blocked in a rendezvous with it unblocks with PeerFailed.
func (r *Rank) kill() {
	r.deadOnce.Do(func() {
		r.alive.Store(false)
		close(r.dead)
	})
}

// recordLastSend remembers the most recently packed send buffer for a
// face, so a surviving neighbour's fault manager can sample this
// rank's boundary as the "far-side" value for interpolation even after
// this rank has been killed (a killed rank keeps what it recorded in
// its last exchange before the kill; the driver loop checks for the
// kill before the rank's timestep, so nothing is packed in that step).
func (r *Rank) recordLastSend(face topology.Side, buf []float64) {
	r.lastSendMu.Lock()
	defer r.lastSendMu.Unlock()
	cp := make([]float64, len(buf))
	copy(cp, buf)
	r.lastSend[face] = cp
}

func (r *Rank) lastSendOn(face topology.Side) ([]float64, bool) {
	r.lastSendMu.Lock()
	defer r.lastSendMu.Unlock()
	buf, ok := r.lastSend[face]
	return buf, ok
}
