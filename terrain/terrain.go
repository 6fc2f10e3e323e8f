/*
Copyright © 2026 the Verkenning authors.
This file is part of Verkenning.

Verkenning is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Verkenning is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Verkenning.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package terrain provides ground elevation for points in the display
// frame (web mercator meters).
package terrain

import (
	"context"
	"math"

	"github.com/ctessum/geom"
)

// An ElevationService returns the ground elevation at each of a batch of
// points. Locations without data are returned as NaN.
type ElevationService interface {
	QueryElevation(ctx context.Context, pts []geom.Point) ([]float64, error)
}

// Constant is a flat ground surface.
type Constant float64

// QueryElevation implements ElevationService.
func (c Constant) QueryElevation(ctx context.Context, pts []geom.Point) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o := make([]float64, len(pts))
	for i := range o {
		o[i] = float64(c)
	}
	return o, nil
}

// SurfaceFunc is a ground surface given by a function of position.
type SurfaceFunc func(x, y float64) float64

// QueryElevation implements ElevationService.
func (f SurfaceFunc) QueryElevation(ctx context.Context, pts []geom.Point) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o := make([]float64, len(pts))
	for i, p := range pts {
		o[i] = f(p.X, p.Y)
	}
	return o, nil
}

// NoData reports whether z is a missing elevation.
func NoData(z float64) bool { return math.IsNaN(z) }
