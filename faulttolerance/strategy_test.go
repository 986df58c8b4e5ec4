package faulttolerance

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tealeaf/topology"
)

var _ = Describe("Strategy names", func() {
	It("round-trips through String/ParseStrategy", func() {
		for _, s := range []Strategy{Static, Mirror, Bridge, Interpolation} {
			parsed, err := ParseStrategy(s.String())
			Expect(err).NotTo(HaveOccurred())
			Expect(parsed).To(Equal(s))
		}
	})

	It("rejects unknown names", func() {
		_, err := ParseStrategy("NOPE")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Recover", func() {
	var ctx Context

	BeforeEach(func() {
		ctx = Context{
			Face:        topology.Left,
			StaticValue: 7,
			SendBuf:     []float64{1, 2, 3, 4},
			RecvBuf:     make([]float64, 4),
		}
	})

	It("STATIC fills the recv buffer with the configured value", func() {
		Expect(Recover(Static, ctx)).To(Succeed())
		Expect(ctx.RecvBuf).To(Equal([]float64{7, 7, 7, 7}))
	})

	It("MIRROR copies the send buffer into the recv buffer", func() {
		Expect(Recover(Mirror, ctx)).To(Succeed())
		Expect(ctx.RecvBuf).To(Equal(ctx.SendBuf))
	})

	It("BRIDGE acknowledges the failure and mirrors", func() {
		acked := false
		ctx.Acknowledge = func() { acked = true }
		Expect(Recover(Bridge, ctx)).To(Succeed())
		Expect(acked).To(BeTrue())
		Expect(ctx.RecvBuf).To(Equal(ctx.SendBuf))
	})

	It("rejects an unknown strategy", func() {
		Expect(Recover(Strategy(99), ctx)).To(HaveOccurred())
	})
})

var _ = Describe("Interpolation recovery", func() {
	It("linearly blends between the own and far boundary across the missing ranks", func() {
		ctx := Context{
			Face:           topology.Left,
			DeadNeighbours: 1,
			HaloDepth:      1,
			AxisExtent:     1,
			SendBuf:        []float64{5},
			RecvBuf:        make([]float64, 1),
			FarBoundary:    []float64{1},
			FieldOffsets:   []int{0},
			FieldStride:    1,
			FaceLen:        1,
		}

		acked := false
		ctx.Acknowledge = func() { acked = true }

		Expect(Recover(Interpolation, ctx)).To(Succeed())
		Expect(acked).To(BeTrue())
		// divisor = AxisExtent*DeadNeighbours+1 = 2, delta = (5-1)/2 = 2,
		// factor for depth 1 is 1, so recv = 5 - 1*2 = 3.
		Expect(ctx.RecvBuf[0]).To(Equal(3.0))
	})

	It("skips blending entirely when the immediate neighbour is alive", func() {
		ctx := Context{
			DeadNeighbours: 0,
			RecvBuf:        []float64{9},
		}
		Expect(Recover(Interpolation, ctx)).To(Succeed())
		// recoverMirror still runs first (copies an empty SendBuf, a no-op
		// here since SendBuf is nil), recoverInterpolation is a no-op.
		Expect(ctx.RecvBuf[0]).To(Equal(9.0))
	})

	It("errors when no far-boundary sample is available", func() {
		ctx := Context{
			DeadNeighbours: 1,
			SendBuf:        []float64{1},
			RecvBuf:        make([]float64, 1),
		}
		Expect(Recover(Interpolation, ctx)).To(HaveOccurred())
	})
})
