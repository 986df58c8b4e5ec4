package transport

import "github.com/sarchlab/akita/v4/sim"

// HookPosSendRecv marks completion of a send_recv call, OK or
// PeerFailed, for a profiling-timer collaborator to subscribe to.
// Grounded on core/port.go's HookPosPortMsgSend /
// HookPosPortMsgRecvd pair.
var HookPosSendRecv = &sim.HookPos{Name: "Transport SendRecv"}

// HookPosCollective marks completion of a barrier/sum/min collective.
var HookPosCollective = &sim.HookPos{Name: "Transport Collective"}

// SendRecvHookCtx is the Item passed to hooks registered at
// HookPosSendRecv.
type SendRecvHookCtx struct {
	Self, Peer int
	Face       string
	Status     Status
}

// CollectiveKind names which collective a CollectiveHookCtx reports on.
type CollectiveKind int

const (
	CollectiveBarrier CollectiveKind = iota
	CollectiveSum
	CollectiveMin
)

func (k CollectiveKind) String() string {
	switch k {
	case CollectiveBarrier:
		return "barrier"
	case CollectiveSum:
		return "sum"
	case CollectiveMin:
		return "min"
	default:
		return "unknown"
	}
}

// CollectiveHookCtx is the Item passed to hooks registered at
// HookPosCollective.
type CollectiveHookCtx struct {
	Kind         CollectiveKind
	Participants int
}

// HookFunc adapts a plain function to sim.Hook, the same
// single-method-interface-from-func idiom http.HandlerFunc uses, so a
// collaborator can subscribe without declaring a named type.
type HookFunc func(ctx sim.HookCtx)

// Func invokes f, satisfying sim.Hook.
func (f HookFunc) Func(ctx sim.HookCtx) { f(ctx) }
