package solver

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tealeaf/chunk"
	"github.com/sarchlab/tealeaf/halo"
	"github.com/sarchlab/tealeaf/topology"
	"github.com/sarchlab/tealeaf/transport"
)

var _ = Describe("CoefficientMode", func() {
	It("round-trips through String/ParseCoefficientMode", func() {
		for _, m := range []CoefficientMode{Conductivity, RecipConductivity} {
			parsed, err := ParseCoefficientMode(m.String())
			Expect(err).NotTo(HaveOccurred())
			Expect(parsed).To(Equal(m))
		}
	})

	It("rejects an unknown name", func() {
		_, err := ParseCoefficientMode("bogus")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Init", func() {
	It("seeds u/u0 from density*energy and conduction coefficients from density", func() {
		c := chunk.New(topology.Coord{}, 2, 4, 4, 0, 4, 0, 4)
		kMin, kMax, jMin, jMax := c.InteriorBounds()
		// uniform density everywhere, including halo, so every coefficient
		// neighbour term (including the boundary-adjacent ones) is defined.
		for i := range c.Density {
			c.Density[i] = 2
		}
		for j := jMin; j < jMax; j++ {
			for k := kMin; k < kMax; k++ {
				c.Energy[c.Index(k, j)] = 3
			}
		}

		Init(c, Conductivity, 0.5, 0.5)

		i := c.Index(kMin, jMin)
		Expect(c.U[i]).To(Equal(6.0))
		Expect(c.U0[i]).To(Equal(6.0))
		// density uniform at 2 everywhere considered: kx = rx*(2+2)/(2*2*2) = rx/2.
		Expect(c.Kx[i]).To(BeNumerically("~", 0.25, 1e-9))
		Expect(c.Ky[i]).To(BeNumerically("~", 0.25, 1e-9))
	})
})

var _ = Describe("Iterate", func() {
	It("leaves a zero field at a fixed point and reports zero residual", func() {
		c := chunk.New(topology.Coord{}, 2, 4, 4, 0, 4, 0, 4)
		for i := range c.Density {
			c.Density[i] = 1
		}
		Init(c, Conductivity, 0.1, 0.1)

		err := Iterate(c)
		Expect(err).To(Equal(0.0))
	})
})

var _ = Describe("RunTimestep", func() {
	It("converges a single-rank chunk with no neighbours to report in one iteration", func() {
		cl, err := transport.NewCluster(1, 1)
		Expect(err).NotTo(HaveOccurred())
		defer cl.Finalize()

		c := chunk.New(topology.Coord{X: 0, Y: 0}, 2, 4, 4, 0, 4, 0, 4)
		for j := range c.Density {
			c.Density[j] = 1
		}

		result, runErr := RunTimestep(
			cl, c, Jacobi{}, 2, 10, 1e-10, 0.1, 0.1, Conductivity,
			halo.FaultSettings{Enabled: false})

		Expect(runErr).NotTo(HaveOccurred())
		Expect(result.FinalError).To(Equal(0.0))
		Expect(result.Iterations).To(Equal(1))
	})
})
