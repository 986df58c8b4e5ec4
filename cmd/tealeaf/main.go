// Command tealeaf runs the domain-decomposed Jacobi heat-conduction
// solver, one goroutine per simulated rank. Wiring follows the same
// cmd-main convention as test/fir/main.go: a constructor-built
// cluster, slog logging, and atexit-gated shutdown instead of a
// bare os.Exit so any registered cleanup handler still runs on the
// error path.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/sarchlab/tealeaf/chunk"
	"github.com/sarchlab/tealeaf/deck"
	"github.com/sarchlab/tealeaf/decompose"
	"github.com/sarchlab/tealeaf/halo"
	"github.com/sarchlab/tealeaf/report"
	"github.com/sarchlab/tealeaf/solver"
	"github.com/sarchlab/tealeaf/topology"
	"github.com/sarchlab/tealeaf/transport"
	"github.com/sarchlab/tealeaf/visit"
	"github.com/tebeka/atexit"
)

func main() {
	deckPath := flag.String("deck", "tea.in", "path to the input deck")
	numRanks := flag.Int("ranks", 1, "number of simulated ranks (process grid size)")
	outDir := flag.String("out", ".", "directory for VTK/summary output")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := run(*deckPath, *numRanks, *outDir); err != nil {
		logger.Error("tealeaf run failed", "error", err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

func run(deckPath string, numRanks int, outDir string) error {
	f, err := os.Open(deckPath)
	if err != nil {
		return fmt.Errorf("opening deck %s: %w", deckPath, err)
	}
	defer f.Close()

	cfg, err := deck.Parse(f)
	if err != nil {
		return fmt.Errorf("parsing deck: %w", err)
	}

	factorization, err := decompose.Factor(cfg.GridXCells, cfg.GridYCells, numRanks)
	if err != nil {
		return fmt.Errorf("decomposing grid: %w", err)
	}
	slog.Info("decomposition chosen",
		"x_chunks", factorization.XChunks, "y_chunks", factorization.YChunks)

	cluster, err := transport.NewCluster(factorization.XChunks, factorization.YChunks)
	if err != nil {
		return fmt.Errorf("creating cartesian communicator: %w", err)
	}
	defer cluster.Finalize()

	plan := decompose.Plan(cfg.GridXCells, cfg.GridYCells, factorization)
	chunks := buildChunks(cfg, plan)
	seedStates(cfg, chunks)

	if cfg.WithFTKillSet {
		registerKillHook(cluster, chunks, cfg)
	}

	if err := primeHalos(cluster, chunks, cfg); err != nil {
		return fmt.Errorf("priming density/energy halos: %w", err)
	}

	dx := (cfg.GridXMax - cfg.GridXMin) / float64(cfg.GridXCells)
	dy := (cfg.GridYMax - cfg.GridYMin) / float64(cfg.GridYCells)
	rx := cfg.DtInit / (dx * dx)
	ry := cfg.DtInit / (dy * dy)

	ft := halo.FaultSettings{
		Enabled:      cfg.FaultTolerant,
		Strategy:     cfg.FTStrategy,
		StaticValue:  cfg.FTRecvStaticValue,
		InterpFactor: cfg.FTRecvInterpolationFactor,
	}

	summary := report.NewSummary(cfg.SummaryFrequency)
	summary.Subscribe(cluster)
	visitWriter := visit.NewWriter(outDir, cfg.VisitFrequency)

	var mu sync.Mutex
	var runErr error
	var wg sync.WaitGroup

	time0 := nowFunc()
	step := 0
	endStep := cfg.EndStep
	if endStep == 0 {
		endStep = 1
	}

	for s := 1; s <= endStep; s++ {
		step = s
		wg.Add(len(chunks))

		for _, c := range chunks {
			go func(c *chunk.Chunk) {
				defer wg.Done()

				if cfg.WithFTKillSet && cfg.WithFTKillIter == s &&
					c.Coord.X == cfg.WithFTKillX && c.Coord.Y == cfg.WithFTKillY {
					cluster.Kill(c.Coord)
					return
				}
				if !cluster.RankAt(c.Coord).IsAlive() {
					return
				}

				result, err := solver.RunTimestep(
					cluster, c, solver.Jacobi{}, cfg.HaloDepth, cfg.MaxIters, cfg.Eps, rx, ry, cfg.Coefficient, ft)
				if err != nil {
					mu.Lock()
					if runErr == nil {
						runErr = err
					}
					mu.Unlock()
					return
				}

				if c.Coord.X == 0 && c.Coord.Y == 0 {
					summary.Record(report.StepRecord{
						Step:       s,
						Time:       float64(s) * cfg.DtInit,
						Iterations: result.Iterations,
						Residual:   result.FinalError,
						WallClock:  elapsedSeconds(time0),
						DeadRanks:  factorization.XChunks*factorization.YChunks - cluster.AliveCount(),
					})
					if visitWriter.Enabled(s) {
						if _, err := visitWriter.WriteChunk(c, s); err != nil {
							slog.Warn("visit dump failed", "error", err)
						}
					}
				}
			}(c)
		}

		wg.Wait()
		if runErr != nil {
			break
		}
	}

	summary.WriteTo(os.Stdout)
	if err := visitWriter.WriteIndex(); err != nil {
		slog.Warn("writing visit index failed", "error", err)
	}

	if runErr != nil {
		return fmt.Errorf("step %d: %w", step, runErr)
	}
	return nil
}

func buildChunks(cfg deck.Config, plan [][]decompose.ChunkExtent) []*chunk.Chunk {
	var chunks []*chunk.Chunk
	for x := range plan {
		for y := range plan[x] {
			e := plan[x][y]
			c := chunk.New(
				topology.Coord{X: x, Y: y}, cfg.HaloDepth,
				e.Right-e.Left, e.Top-e.Bottom,
				e.Left, e.Right, e.Bottom, e.Top,
			)
			chunks = append(chunks, c)
		}
	}
	return chunks
}

func seedStates(cfg deck.Config, chunks []*chunk.Chunk) {
	dx := (cfg.GridXMax - cfg.GridXMin) / float64(cfg.GridXCells)
	dy := (cfg.GridYMax - cfg.GridYMin) / float64(cfg.GridYCells)
	for _, c := range chunks {
		for _, st := range cfg.States {
			deck.Apply(c, st, cfg.GridXMin, cfg.GridYMin, dx, dy)
		}
	}
}

// primeHalos seeds density/energy into every chunk's halo before the
// first jacobi_init, mirroring the source's initialise_application
// (driver/initialise.cpp: fields_to_exchange[DENSITY/ENERGY0/ENERGY1]
// then one halo_update_driver call) so that the coefficient loop's
// one-cell-wider-than-interior footprint never reads an unset halo.
func primeHalos(cluster *transport.Cluster, chunks []*chunk.Chunk, cfg deck.Config) error {
	fields := chunk.NewSet(chunk.Density, chunk.Energy0, chunk.Energy1)
	ft := halo.FaultSettings{
		Enabled:      cfg.FaultTolerant,
		Strategy:     cfg.FTStrategy,
		StaticValue:  cfg.FTRecvStaticValue,
		InterpFactor: cfg.FTRecvInterpolationFactor,
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var primeErr error

	wg.Add(len(chunks))
	for _, c := range chunks {
		go func(c *chunk.Chunk) {
			defer wg.Done()
			if err := halo.Exchange(cluster, c, fields, cfg.HaloDepth, ft); err != nil {
				mu.Lock()
				if primeErr == nil {
					primeErr = err
				}
				mu.Unlock()
			}
		}(c)
	}
	wg.Wait()
	return primeErr
}

func registerKillHook(cluster *transport.Cluster, chunks []*chunk.Chunk, cfg deck.Config) {
	for _, c := range chunks {
		if c.Coord.X == cfg.WithFTKillX && c.Coord.Y == cfg.WithFTKillY {
			slog.Info("fault injection armed", "coord", c.Coord, "at_iter", cfg.WithFTKillIter)
		}
	}
}

func nowFunc() time.Time { return time.Now() }

func elapsedSeconds(start time.Time) float64 { return time.Since(start).Seconds() }
