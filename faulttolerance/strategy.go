// Package faulttolerance implements the four recv-buffer recovery
// strategies applied when a Cartesian neighbour fails mid-exchange,
// using the same small-tagged-struct dispatch idiom as
// core/util.go's BlockReason/PortState, generalised from PE
// block-reason codes to halo-recovery strategy codes.
package faulttolerance

import (
	"fmt"

	"github.com/sarchlab/tealeaf/topology"
)

// Strategy names one of the four recv-buffer recovery behaviours.
type Strategy int

const (
	Static Strategy = iota
	Mirror
	Bridge
	Interpolation
)

var strategyNames = [...]string{"STATIC", "MIRROR", "BRIDGE", "INTERPOLATION"}

func (s Strategy) String() string {
	if int(s) < len(strategyNames) {
		return strategyNames[s]
	}
	return fmt.Sprintf("Strategy(%d)", s)
}

// ParseStrategy parses a deck keyword into a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	for i, name := range strategyNames {
		if name == s {
			return Strategy(i), nil
		}
	}
	return 0, fmt.Errorf("faulttolerance: unknown ft_recv_strategy %q", s)
}

// Context bundles everything a recovery pass needs to reconstruct one
// face's recv buffer. SendBuf and RecvBuf are the full packed staging
// buffers (all active fields concatenated, as laid out by the remote
// halo driver); FarBoundary, when non-nil, holds the live far-side
// rank's boundary sample for the same fields and layout, only consumed
// by Interpolation.
type Context struct {
	Face            topology.Side
	StaticValue     float64
	DeadNeighbours  int // n: consecutive failed ranks between self and the next live rank
	HaloDepth       int
	AxisExtent      int // this chunk's cell count along the axis the face crosses
	SendBuf         []float64
	RecvBuf         []float64
	FarBoundary     []float64 // same shape as SendBuf; required only for Interpolation
	FieldOffsets    []int     // per-field offset (in float64 elements) into the buffers
	FieldStride     int       // length of one field's slab within the buffer
	FaceLen         int       // rows (L/R) or columns (D/U) in one field's slab
	Acknowledge     func()    // called on Bridge/Interpolation to shrink the communicator
}

// Recover fills ctx.RecvBuf in place according to ctx's strategy.
func Recover(strategy Strategy, ctx Context) error {
	switch strategy {
	case Static:
		recoverStatic(ctx)
	case Mirror:
		recoverMirror(ctx)
	case Bridge:
		if ctx.Acknowledge != nil {
			ctx.Acknowledge()
		}
		recoverMirror(ctx)
	case Interpolation:
		if ctx.Acknowledge != nil {
			ctx.Acknowledge()
		}
		recoverMirror(ctx)
		return recoverInterpolation(ctx)
	default:
		return fmt.Errorf("faulttolerance: unknown strategy %v", strategy)
	}
	return nil
}

func recoverStatic(ctx Context) {
	for i := range ctx.RecvBuf {
		ctx.RecvBuf[i] = ctx.StaticValue
	}
}

func recoverMirror(ctx Context) {
	n := len(ctx.SendBuf)
	if len(ctx.RecvBuf) < n {
		n = len(ctx.RecvBuf)
	}
	copy(ctx.RecvBuf[:n], ctx.SendBuf[:n])
}

// recoverInterpolation implements the §4.2 geometry: for each active
// field, per row (L/R) or column (D/U), linearly blend between this
// rank's own boundary value and the live far-side rank's boundary
// value across the n·AxisExtent+1 missing spatial steps.
func recoverInterpolation(ctx Context) error {
	if ctx.DeadNeighbours == 0 {
		// immediate neighbour is alive; nothing to bridge.
		return nil
	}
	if ctx.FarBoundary == nil {
		return fmt.Errorf("faulttolerance: interpolation requires a far-side boundary sample")
	}

	divisor := float64(ctx.AxisExtent*ctx.DeadNeighbours + 1)
	if divisor == 0 {
		return fmt.Errorf("faulttolerance: zero interpolation divisor")
	}

	factors := interpolationFactors(ctx.Face, ctx.HaloDepth)

	for _, off := range ctx.FieldOffsets {
		for row := 0; row < ctx.FaceLen; row++ {
			ownIdx := off + row*ctx.HaloDepth + ownColumnIndex(ctx.Face, ctx.HaloDepth)
			own := ctx.SendBuf[ownIdx]
			far := ctx.FarBoundary[off+row*ctx.HaloDepth+ownColumnIndex(ctx.Face.Opposite(), ctx.HaloDepth)]
			delta := (own - far) / divisor

			for d := 0; d < ctx.HaloDepth; d++ {
				idx := off + row*ctx.HaloDepth + d
				ctx.RecvBuf[idx] = own - factors[d]*delta
			}
		}
	}
	return nil
}

// ownColumnIndex picks the staging-buffer column index that is closest
// to this chunk's real interior for the given face (the "own boundary"
// column referenced by §4.2).
func ownColumnIndex(face topology.Side, depth int) int {
	switch face {
	case topology.Left, topology.Down:
		return 0
	default: // Right, Up
		return depth - 1
	}
}

// interpolationFactors returns, for each of the depth staging columns,
// the multiple of delta subtracted from the own-boundary value. LEFT
// and DOWN faces (packed nearest-interior-first) use descending
// factors depth..1; RIGHT and UP (packed farthest-first) use ascending
// factors 1..depth, matching §4.2's {2,1} / {1,2} example at depth 2.
func interpolationFactors(face topology.Side, depth int) []float64 {
	factors := make([]float64, depth)
	switch face {
	case topology.Left, topology.Down:
		for d := 0; d < depth; d++ {
			factors[d] = float64(depth - d)
		}
	default:
		for d := 0; d < depth; d++ {
			factors[d] = float64(d + 1)
		}
	}
	return factors
}
