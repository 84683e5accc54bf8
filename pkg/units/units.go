// Package units maps unit names to point densities.
package units

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// PointsPerInch is the CSS reference density
const PointsPerInch = 96.0

var ErrUnknownUnit = errors.New("unknown unit")

var densities = map[string]float64{
	"in":     PointsPerInch,
	"inch":   PointsPerInch,
	"inches": PointsPerInch,
	"cm":     PointsPerInch / 2.54,
	"mm":     PointsPerInch / 25.4,
}

// Density returns the number of points per unit for the named unit
func Density(name string) (float64, error) {
	d, ok := densities[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, name)
	}
	return d, nil
}

// Names lists the supported unit names
func Names() []string {
	names := make([]string, 0, len(densities))
	for n := range densities {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
