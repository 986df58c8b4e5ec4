package solver

import (
	"fmt"
	"math"

	"github.com/sarchlab/tealeaf/chunk"
	"github.com/sarchlab/tealeaf/halo"
	"github.com/sarchlab/tealeaf/transport"
)

// Driver is a capability interface standing in for the source's
// function-pointer-over-kernel-backends design: the halo driver and
// the outer time-step loop are generic over which interior solver is
// plugged in. Jacobi is the only concrete implementation built here;
// Chebyshev/CG/PPCG would implement the same interface with different
// FieldsToExchange per phase.
type Driver interface {
	Init(c *chunk.Chunk, mode CoefficientMode, rx, ry float64)
	Iterate(c *chunk.Chunk) (localErr float64)
	FieldsToExchange() chunk.Set
}

// Jacobi is the only driver this package implements in full.
type Jacobi struct{}

func (Jacobi) Init(c *chunk.Chunk, mode CoefficientMode, rx, ry float64) { Init(c, mode, rx, ry) }
func (Jacobi) Iterate(c *chunk.Chunk) float64                           { return Iterate(c) }
func (Jacobi) FieldsToExchange() chunk.Set                              { return chunk.NewSet(chunk.U) }

// Result records one timestep's outcome for the summary collaborator.
type Result struct {
	Iterations int
	FinalError float64
}

// RunTimestep executes one outer time-step loop: init coefficients,
// exchange U, then iterate up to maxIters times,
// all-reducing the residual and halo-exchanging U between iterations,
// stopping when the global residual drops below eps.
func RunTimestep(
	cl *transport.Cluster,
	c *chunk.Chunk,
	driver Driver,
	haloDepth, maxIters int,
	eps float64,
	rx, ry float64,
	mode CoefficientMode,
	ft halo.FaultSettings,
) (Result, error) {
	driver.Init(c, mode, rx, ry)

	fields := driver.FieldsToExchange()
	if err := halo.HaloUpdate(cl, c, fields, haloDepth, ft); err != nil {
		return Result{}, fmt.Errorf("solver: initial halo exchange: %w", err)
	}

	var globalErr float64
	iterations := 0

	for iterations = 0; iterations < maxIters; iterations++ {
		localErr := driver.Iterate(c)
		globalErr = cl.SumOverRanks(localErr)

		if math.IsNaN(globalErr) || math.IsInf(globalErr, 0) {
			return Result{Iterations: iterations + 1, FinalError: globalErr},
				fmt.Errorf("solver: residual diverged to %v at iteration %d", globalErr, iterations+1)
		}

		if globalErr < eps {
			iterations++
			break
		}

		if err := halo.HaloUpdate(cl, c, fields, haloDepth, ft); err != nil {
			return Result{}, fmt.Errorf("solver: halo exchange at iteration %d: %w", iterations+1, err)
		}
	}

	return Result{Iterations: iterations, FinalError: globalErr}, nil
}
