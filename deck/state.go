package deck

import (
	"fmt"
	"strconv"

	"github.com/sarchlab/tealeaf/chunk"
)

// Region is a geometric initial-condition shape.
type Region interface {
	Contains(x, y float64) bool
}

// Rect is an axis-aligned rectangle, inclusive of its bounds.
type Rect struct{ XMin, XMax, YMin, YMax float64 }

func (r Rect) Contains(x, y float64) bool {
	return x >= r.XMin && x <= r.XMax && y >= r.YMin && y <= r.YMax
}

// Circle is a disc of the given radius around (X, Y).
type Circle struct{ X, Y, Radius float64 }

func (c Circle) Contains(x, y float64) bool {
	dx, dy := x-c.X, y-c.Y
	return dx*dx+dy*dy <= c.Radius*c.Radius
}

// Point matches a single coordinate exactly (used for impulse sources).
type Point struct{ X, Y float64 }

func (p Point) Contains(x, y float64) bool { return x == p.X && y == p.Y }

// State is one numbered initial-condition region: where it applies and
// what density/energy it seeds, consumed once at start.
type State struct {
	Index   int
	Region  Region
	Density float64
	Energy  float64
}

func parseState(args []string) (State, error) {
	if len(args) < 1 {
		return State{}, fmt.Errorf("state directive requires an index")
	}

	index, err := strconv.Atoi(args[0])
	if err != nil {
		return State{}, fmt.Errorf("state index %q: %w", args[0], err)
	}

	fields := map[string]float64{}
	var geometry string

	rest := args[1:]
	for i := 0; i+1 < len(rest); i += 2 {
		key, val := rest[i], rest[i+1]
		if key == "geometry" {
			geometry = val
			continue
		}
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return State{}, fmt.Errorf("state %d field %q=%q: %w", index, key, val, err)
		}
		fields[key] = f
	}

	var region Region
	switch geometry {
	case "rect", "":
		region = Rect{XMin: fields["xmin"], XMax: fields["xmax"], YMin: fields["ymin"], YMax: fields["ymax"]}
	case "circle":
		region = Circle{X: fields["x"], Y: fields["y"], Radius: fields["radius"]}
	case "point":
		region = Point{X: fields["x"], Y: fields["y"]}
	default:
		return State{}, fmt.Errorf("state %d: unknown geometry %q", index, geometry)
	}

	return State{
		Index:   index,
		Region:  region,
		Density: fields["density"],
		Energy:  fields["energy"],
	}, nil
}

// Apply seeds density/energy0 for every cell of c whose physical centre
// falls inside s.Region. Cell (k, j)'s physical centre is computed from
// the chunk's global cell offset and the uniform grid spacing
// (dx, dy); only interior cells are written — solver writes never
// touch the halo, which is filled solely by halo update.
func Apply(c *chunk.Chunk, s State, originX, originY, dx, dy float64) {
	kMin, kMax, jMin, jMax := c.InteriorBounds()

	for j := jMin; j < jMax; j++ {
		globalRow := c.Bottom + (j - kMin)
		centerY := originY + (float64(globalRow)+0.5)*dy

		for k := kMin; k < kMax; k++ {
			globalCol := c.Left + (k - kMin)
			centerX := originX + (float64(globalCol)+0.5)*dx

			if !s.Region.Contains(centerX, centerY) {
				continue
			}

			i := c.Index(k, j)
			c.Density[i] = s.Density
			c.Energy0[i] = s.Energy
			c.Energy[i] = s.Energy
		}
	}
}
