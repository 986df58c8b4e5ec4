// Package solver implements the Jacobi family of interior-stencil
// drivers: how they consume halo data and produce a global residual.
// The full Chebyshev/CG/PPCG kernels are out of scope; they would
// plug into the same Driver interface with different fields to
// exchange.
package solver

import "github.com/sarchlab/tealeaf/chunk"

// Init seeds u/u0 and the conduction coefficients kx/ky from density
// and the current energy field.
func Init(c *chunk.Chunk, mode CoefficientMode, rx, ry float64) {
	kMin, kMax, jMin, jMax := c.InteriorBounds()

	for j := jMin; j < jMax; j++ {
		for k := kMin; k < kMax; k++ {
			i := c.Index(k, j)
			c.U[i] = c.Energy[i] * c.Density[i]
			c.U0[i] = c.U[i]
		}
	}

	// Coefficients are defined over [haloDepth, y-1) x [haloDepth, x-1),
	// which reaches past the interior on the high side so that the last
	// interior row/column has a valid kx[i+1]/ky[i+x] neighbour term.
	for j := c.HaloDepth; j < c.Y-1; j++ {
		for k := c.HaloDepth; k < c.X-1; k++ {
			i := c.Index(k, j)
			var densityHere, densityWest, densitySouth float64
			if mode == Conductivity {
				densityHere = c.Density[i]
				densityWest = c.Density[i-1]
				densitySouth = c.Density[i-c.X]
			} else {
				densityHere = 1 / c.Density[i]
				densityWest = 1 / c.Density[i-1]
				densitySouth = 1 / c.Density[i-c.X]
			}
			c.Kx[i] = rx * (densityWest + densityHere) / (2 * densityWest * densityHere)
			c.Ky[i] = ry * (densitySouth + densityHere) / (2 * densitySouth * densityHere)
		}
	}
}

// Iterate runs one Jacobi sweep over the interior, returning this
// rank's local L1 residual. The caller is responsible for
// all-reducing the result into a global residual before testing
// convergence.
func Iterate(c *chunk.Chunk) float64 {
	copy(c.R, c.U)

	kMin, kMax, jMin, jMax := c.InteriorBounds()
	x := c.X
	var err float64

	for j := jMin; j < jMax; j++ {
		for k := kMin; k < kMax; k++ {
			i := c.Index(k, j)
			numerator := c.U0[i] +
				c.Kx[i+1]*c.R[i+1] + c.Kx[i]*c.R[i-1] +
				c.Ky[i+x]*c.R[i+x] + c.Ky[i]*c.R[i-x]
			denominator := 1 + c.Kx[i] + c.Kx[i+1] + c.Ky[i] + c.Ky[i+x]

			c.U[i] = numerator / denominator
			diff := c.U[i] - c.R[i]
			if diff < 0 {
				diff = -diff
			}
			err += diff
		}
	}

	return err
}
