// Package deck parses the plain-text input deck: one directive per
// line, plus `state N {...}` initial-condition blocks. Grounded on the
// teacher's structured config-builder idiom (config/config.go's
// DeviceBuilder), adapted from a programmatic builder to a
// text-format parser since the deck's directive grammar is fixed.
package deck

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sarchlab/tealeaf/faulttolerance"
	"github.com/sarchlab/tealeaf/solver"
)

// Config is the process-wide, read-only-after-initialisation settings
// struct.
type Config struct {
	GridXCells, GridYCells             int
	GridXMin, GridXMax                 float64
	GridYMin, GridYMax                 float64
	DtInit                             float64
	EndTime                            float64
	EndStep                            int
	MaxIters                           int
	HaloDepth                          int
	Eps, EpsLim                        float64
	Solver                             string
	Coefficient                        solver.CoefficientMode
	Preconditioner                     string
	PPCGInnerSteps                     int
	Presteps                           int
	FaultTolerant                      bool
	FTStrategy                         faulttolerance.Strategy
	FTRecvStaticValue                  float64
	FTRecvInterpolationFactor          float64
	WithFTKillX, WithFTKillY           int
	WithFTKillIter                     int
	WithFTKillSet                      bool
	SummaryFrequency                   int
	VisitFrequency                     int
	States                             []State
}

// Default returns a Config with conventional defaults (halo_depth 2,
// Jacobi, conductivity) so every field parses to a sane value even on
// a terse deck.
func Default() Config {
	return Config{
		HaloDepth:   2,
		MaxIters:    1000,
		Eps:         1e-15,
		EpsLim:      1e-5,
		Solver:      "JACOBI",
		Coefficient: solver.Conductivity,
		FTStrategy:  faulttolerance.Static,
	}
}

// Parse reads a deck from r, applying each recognised directive on top
// of Default().
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	scanner := bufio.NewScanner(r)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		key := fields[0]
		args := fields[1:]

		if key == "state" {
			state, err := parseState(args)
			if err != nil {
				return cfg, fmt.Errorf("deck: line %d: %w", lineNo, err)
			}
			cfg.States = append(cfg.States, state)
			continue
		}

		if err := cfg.applyDirective(key, args); err != nil {
			return cfg, fmt.Errorf("deck: line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return cfg, fmt.Errorf("deck: reading input: %w", err)
	}

	return cfg, nil
}

func (cfg *Config) applyDirective(key string, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("directive %q requires a value", key)
	}
	arg := args[0]

	switch key {
	case "grid_x_cells":
		return setInt(&cfg.GridXCells, arg)
	case "grid_y_cells":
		return setInt(&cfg.GridYCells, arg)
	case "grid_x_min":
		return setFloat(&cfg.GridXMin, arg)
	case "grid_x_max":
		return setFloat(&cfg.GridXMax, arg)
	case "grid_y_min":
		return setFloat(&cfg.GridYMin, arg)
	case "grid_y_max":
		return setFloat(&cfg.GridYMax, arg)
	case "dt_init":
		return setFloat(&cfg.DtInit, arg)
	case "end_time":
		return setFloat(&cfg.EndTime, arg)
	case "end_step":
		return setInt(&cfg.EndStep, arg)
	case "max_iters":
		return setInt(&cfg.MaxIters, arg)
	case "halo_depth":
		return setInt(&cfg.HaloDepth, arg)
	case "eps":
		return setFloat(&cfg.Eps, arg)
	case "eps_lim":
		return setFloat(&cfg.EpsLim, arg)
	case "solver":
		cfg.Solver = arg
		return nil
	case "coefficient":
		mode, err := solver.ParseCoefficientMode(arg)
		if err != nil {
			return err
		}
		cfg.Coefficient = mode
		return nil
	case "preconditioner":
		cfg.Preconditioner = arg
		return nil
	case "ppcg_inner_steps":
		return setInt(&cfg.PPCGInnerSteps, arg)
	case "presteps":
		return setInt(&cfg.Presteps, arg)
	case "ft":
		return setBool(&cfg.FaultTolerant, arg)
	case "ft_recv_strategy":
		strategy, err := faulttolerance.ParseStrategy(arg)
		if err != nil {
			return err
		}
		cfg.FTStrategy = strategy
		return nil
	case "ft_recv_static_value":
		return setFloat(&cfg.FTRecvStaticValue, arg)
	case "ft_recv_interpolation_factor":
		return setFloat(&cfg.FTRecvInterpolationFactor, arg)
	case "with_ft_kill_x":
		cfg.WithFTKillSet = true
		return setInt(&cfg.WithFTKillX, arg)
	case "with_ft_kill_y":
		cfg.WithFTKillSet = true
		return setInt(&cfg.WithFTKillY, arg)
	case "with_ft_kill_iter":
		return setInt(&cfg.WithFTKillIter, arg)
	case "summary_frequency":
		return setInt(&cfg.SummaryFrequency, arg)
	case "visit_frequency":
		return setInt(&cfg.VisitFrequency, arg)
	default:
		return fmt.Errorf("unknown directive %q", key)
	}
}

func setInt(dst *int, s string) error {
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid integer %q: %w", s, err)
	}
	*dst = v
	return nil
}

func setFloat(dst *float64, s string) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid float %q: %w", s, err)
	}
	*dst = v
	return nil
}

func setBool(dst *bool, s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("invalid boolean %q: %w", s, err)
	}
	*dst = v
	return nil
}
