package solver

import "fmt"

// CoefficientMode selects how jacobi_init derives kx/ky from density.
type CoefficientMode int

const (
	Conductivity CoefficientMode = iota
	RecipConductivity
)

func (m CoefficientMode) String() string {
	if m == Conductivity {
		return "CONDUCTIVITY"
	}
	return "RECIP_CONDUCTIVITY"
}

// ParseCoefficientMode parses the deck's `coefficient` directive.
func ParseCoefficientMode(s string) (CoefficientMode, error) {
	switch s {
	case "CONDUCTIVITY":
		return Conductivity, nil
	case "RECIP_CONDUCTIVITY":
		return RecipConductivity, nil
	default:
		return 0, fmt.Errorf("solver: unknown coefficient mode %q", s)
	}
}
