package chunk

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tealeaf/topology"
)

var _ = Describe("Chunk", func() {
	var c *Chunk

	BeforeEach(func() {
		c = New(topology.Coord{X: 1, Y: 2}, 2, 4, 3, 8, 12, 6, 9)
	})

	It("sizes its field arrays to (cells+2*halo) in each dimension", func() {
		Expect(c.X).To(Equal(4 + 2*2))
		Expect(c.Y).To(Equal(3 + 2*2))
		Expect(c.Density).To(HaveLen(c.X * c.Y))
		Expect(c.U).To(HaveLen(c.X * c.Y))
	})

	It("satisfies topology.Tile", func() {
		var tile topology.Tile = c
		Expect(tile.TileCoord()).To(Equal(topology.Coord{X: 1, Y: 2}))
		left, right, bottom, top := tile.Extent()
		Expect([]int{left, right, bottom, top}).To(Equal([]int{8, 12, 6, 9}))
	})

	It("indexes cells row-major", func() {
		Expect(c.Index(0, 0)).To(Equal(0))
		Expect(c.Index(1, 0)).To(Equal(1))
		Expect(c.Index(0, 1)).To(Equal(c.X))
	})

	It("computes interior bounds as [halo, dim-halo)", func() {
		kMin, kMax, jMin, jMax := c.InteriorBounds()
		Expect(kMin).To(Equal(2))
		Expect(kMax).To(Equal(c.X - 2))
		Expect(jMin).To(Equal(2))
		Expect(jMax).To(Equal(c.Y - 2))
	})

	It("allocates independent send/recv staging buffers per face", func() {
		for _, side := range []topology.Side{topology.Left, topology.Right, topology.Down, topology.Up} {
			send := c.SendBuffer(side)
			recv := c.RecvBuffer(side)
			Expect(send).NotTo(BeEmpty())
			Expect(recv).NotTo(BeEmpty())
			send[0] = 42
			Expect(recv[0]).To(Equal(0.0))
		}
	})

	It("looks up each field by enum", func() {
		c.Density[0] = 1
		c.Energy0[0] = 2
		c.Energy[0] = 3
		c.U[0] = 4
		c.P[0] = 5
		c.Sd[0] = 6
		Expect(c.Field(Density)[0]).To(Equal(1.0))
		Expect(c.Field(Energy0)[0]).To(Equal(2.0))
		Expect(c.Field(Energy1)[0]).To(Equal(3.0))
		Expect(c.Field(U)[0]).To(Equal(4.0))
		Expect(c.Field(P)[0]).To(Equal(5.0))
		Expect(c.Field(Sd)[0]).To(Equal(6.0))
	})

	It("panics on an unknown field", func() {
		Expect(func() { c.Field(NumFields) }).To(Panic())
	})
})

var _ = Describe("Field set", func() {
	It("reports membership and preserves pack order", func() {
		s := NewSet(U, Density)
		Expect(s.Has(U)).To(BeTrue())
		Expect(s.Has(Density)).To(BeTrue())
		Expect(s.Has(Energy0)).To(BeFalse())
		Expect(s.Active()).To(Equal([]Field{Density, U}))
	})

	It("parses and stringifies field names", func() {
		f, err := ParseField("Energy1")
		Expect(err).NotTo(HaveOccurred())
		Expect(f).To(Equal(Energy1))
		Expect(f.String()).To(Equal("Energy1"))

		_, err = ParseField("bogus")
		Expect(err).To(HaveOccurred())
	})
})
