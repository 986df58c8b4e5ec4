package transport

import "fmt"

// link is the point-to-point rendezvous channel pair wiring two
// Cartesian-neighbour ranks. Unbuffered channels make Send a true
// blocking rendezvous: this models MPI's blocking two-sided Send/Recv
// directly, rather than the asynchronous hardware-queue ports an
// on-chip interconnect would use. A select against the peer's dead
// channel turns a peer failure mid-rendezvous into a PeerFailed status
// instead of a permanent deadlock.
type link struct {
	lowToHigh chan *HaloMsg
	highToLow chan *HaloMsg
	low, high *Rank
}

func newLink(a, b *Rank) *link {
	low, high := a, b
	if high.index < low.index {
		low, high = high, low
	}
	return &link{
		lowToHigh: make(chan *HaloMsg),
		highToLow: make(chan *HaloMsg),
		low:       low,
		high:      high,
	}
}

// send delivers msg from 'from' to the other endpoint of the link,
// blocking until the peer receives it or is observed dead.
func (l *link) send(from *Rank, msg *HaloMsg) Status {
	var ch chan *HaloMsg
	var peer *Rank
	if from == l.low {
		ch, peer = l.lowToHigh, l.high
	} else {
		ch, peer = l.highToLow, l.low
	}

	select {
	case ch <- msg:
		return OK
	case <-peer.dead:
		return PeerFailed
	}
}

// recv blocks until a message addressed to 'to' arrives on the link, or
// the peer is observed dead.
func (l *link) recv(to *Rank) (*HaloMsg, Status) {
	var ch chan *HaloMsg
	var peer *Rank
	if to == l.low {
		ch, peer = l.highToLow, l.high
	} else {
		ch, peer = l.lowToHigh, l.low
	}

	select {
	case msg := <-ch:
		return msg, OK
	case <-peer.dead:
		return nil, PeerFailed
	}
}

func (l *link) String() string {
	return fmt.Sprintf("link(%v<->%v)", l.low.coord, l.high.coord)
}
