// Package decompose factors the global grid into an optimal process
// grid and assigns each rank its chunk extent, structured the same
// way config.DeviceBuilder (config/config.go) takes mesh width/height
// as builder parameters; here the width/height split is computed
// rather than given.
package decompose

import "fmt"

// Factorization is the chosen process-grid shape.
type Factorization struct {
	XChunks, YChunks int
}

// Factor enumerates divisor pairs (xx, yy) of numRanks and selects the
// one minimising the per-chunk tile's perimeter-to-area ratio
// 2*((gx/xx)^2 + (gy/yy)^2) / ((gx/xx)*(gy/yy)), ties broken by the
// smallest xx.
func Factor(gx, gy, numRanks int) (Factorization, error) {
	if numRanks <= 0 {
		return Factorization{}, fmt.Errorf("decompose: num_ranks must be positive, got %d", numRanks)
	}

	best := Factorization{}
	bestMetric := 0.0
	found := false

	for xx := 1; xx <= numRanks; xx++ {
		if numRanks%xx != 0 {
			continue
		}
		yy := numRanks / xx
		if numRanks%yy != 0 {
			continue
		}

		sx := float64(gx) / float64(xx)
		sy := float64(gy) / float64(yy)
		if sx <= 0 || sy <= 0 {
			continue
		}
		metric := 2 * (sx*sx + sy*sy) / (sx * sy)

		if !found || metric < bestMetric {
			found = true
			bestMetric = metric
			best = Factorization{XChunks: xx, YChunks: yy}
		}
	}

	if !found {
		return Factorization{}, fmt.Errorf(
			"decompose: no valid factorisation of %d ranks for a %dx%d grid", numRanks, gx, gy)
	}

	return best, nil
}

// ChunkExtent is one rank's slice of the global grid: half-open
// [Left, Right) x [Bottom, Top) cell-index ranges into the global mesh.
type ChunkExtent struct {
	Left, Right, Bottom, Top int
}

// Cells returns the number of cells the extent covers.
func (e ChunkExtent) Cells() int { return (e.Right - e.Left) * (e.Top - e.Bottom) }

// Plan computes every rank's chunk extent from a chosen factorisation,
// distributing the remainder cells to the first columns/rows of the
// process grid, without requiring any communication — every rank can
// compute the full plan independently.
func Plan(gx, gy int, f Factorization) [][]ChunkExtent {
	colWidths := splitRemainder(gx, f.XChunks)
	rowHeights := splitRemainder(gy, f.YChunks)

	colOffsets := make([]int, f.XChunks+1)
	for i, w := range colWidths {
		colOffsets[i+1] = colOffsets[i] + w
	}
	rowOffsets := make([]int, f.YChunks+1)
	for i, h := range rowHeights {
		rowOffsets[i+1] = rowOffsets[i] + h
	}

	plan := make([][]ChunkExtent, f.XChunks)
	for x := 0; x < f.XChunks; x++ {
		plan[x] = make([]ChunkExtent, f.YChunks)
		for y := 0; y < f.YChunks; y++ {
			plan[x][y] = ChunkExtent{
				Left:   colOffsets[x],
				Right:  colOffsets[x+1],
				Bottom: rowOffsets[y],
				Top:    rowOffsets[y+1],
			}
		}
	}
	return plan
}

// splitRemainder divides total cells into chunks pieces, giving the
// first (total % chunks) pieces one extra cell, matching the "first
// mod_x columns... get one extra cell" remainder rule.
func splitRemainder(total, chunks int) []int {
	base := total / chunks
	remainder := total % chunks
	sizes := make([]int, chunks)
	for i := range sizes {
		sizes[i] = base
		if i < remainder {
			sizes[i]++
		}
	}
	return sizes
}
