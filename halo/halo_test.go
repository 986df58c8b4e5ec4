package halo

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tealeaf/chunk"
	"github.com/sarchlab/tealeaf/topology"
)

var _ = Describe("UpdateLocalFace", func() {
	It("reflects interior cells into the halo and is idempotent", func() {
		x, y, halo := 8, 6, 2
		buf := make([]float64, x*y)
		for j := halo; j < y-halo; j++ {
			for k := 0; k < x; k++ {
				buf[j*x+k] = float64(k + j*10)
			}
		}

		once := make([]float64, len(buf))
		copy(once, buf)
		UpdateLocalFace(once, x, y, halo, topology.Left)

		twice := make([]float64, len(once))
		copy(twice, once)
		UpdateLocalFace(twice, x, y, halo, topology.Left)

		Expect(twice).To(Equal(once))
	})

	It("mirrors the nearest interior column outward on the Left face", func() {
		x, y, halo := 8, 6, 2
		buf := make([]float64, x*y)
		j := 3
		buf[j*x+halo] = 11   // nearest interior column
		buf[j*x+halo+1] = 22 // next interior column

		UpdateLocalFace(buf, x, y, halo, topology.Left)

		Expect(buf[j*x+(halo-1)]).To(Equal(11.0))
		Expect(buf[j*x+(halo-2)]).To(Equal(22.0))
	})
})

var _ = Describe("Pack/Unpack", func() {
	It("round-trips a Right-face pack into a neighbour's Left-face halo", func() {
		src := chunk.New(topology.Coord{X: 0, Y: 0}, 2, 4, 4, 0, 4, 0, 4)
		dst := chunk.New(topology.Coord{X: 1, Y: 0}, 2, 4, 4, 4, 8, 0, 4)

		for row := 0; row < src.Y; row++ {
			src.Density[row*src.X+4] = float64(row*10 + 1)
			src.Density[row*src.X+5] = float64(row*10 + 2)
		}

		fields := chunk.NewSet(chunk.Density)
		buf := make([]float64, FaceLen(src, topology.Right)*2)
		Pack(src, topology.Right, fields, 2, buf)
		Unpack(dst, topology.Left, fields, 2, buf)

		for row := 0; row < dst.Y; row++ {
			Expect(dst.Density[row*dst.X+0]).To(Equal(src.Density[row*src.X+4]))
			Expect(dst.Density[row*dst.X+1]).To(Equal(src.Density[row*src.X+5]))
		}
	})

	It("reports FaceLen by axis", func() {
		c := chunk.New(topology.Coord{}, 2, 4, 6, 0, 4, 0, 6)
		Expect(FaceLen(c, topology.Left)).To(Equal(c.Y))
		Expect(FaceLen(c, topology.Right)).To(Equal(c.Y))
		Expect(FaceLen(c, topology.Down)).To(Equal(c.X))
		Expect(FaceLen(c, topology.Up)).To(Equal(c.X))
	})
})

var _ = Describe("ApplyLocal", func() {
	It("reflects every active field for a boundary face", func() {
		c := chunk.New(topology.Coord{}, 2, 4, 4, 0, 4, 0, 4)
		for row := 0; row < c.Y; row++ {
			c.U[row*c.X+2] = float64(row + 1)
		}

		ApplyLocal(c, chunk.NewSet(chunk.U), topology.Left)

		// the reflection covers the interior rows; halo rows are left alone.
		for row := c.HaloDepth; row < c.Y-c.HaloDepth; row++ {
			Expect(c.U[row*c.X+1]).To(Equal(c.U[row*c.X+2]))
		}
	})
})
