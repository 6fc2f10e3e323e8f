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

// Package volume calculates earthwork volumes between a design surface and
// the existing ground on a regular grid.
package volume

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/Deltares-research/Verkenning-2.0-sub001/alphashape"
	"github.com/Deltares-research/Verkenning-2.0-sub001/geodesy"
	"github.com/Deltares-research/Verkenning-2.0-sub001/mesh"
	"github.com/Deltares-research/Verkenning-2.0-sub001/terrain"
	"github.com/ctessum/geom"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// DefaultAlpha is the alpha, in meters, used to outline the area where
// the design lies above the ground.
const DefaultAlpha = 5.0

// ErrNoSamples is returned when no grid point falls on the design mesh.
var ErrNoSamples = errors.New("volume: no grid points on the design surface")

// Result holds earthwork volumes in cubic meters.
type Result struct {
	// FillVolume is the volume where the design is above the ground.
	FillVolume float64 `json:"fillVolume"`

	// ExcavationVolume is the volume where the design is at or below the
	// ground, as a positive number.
	ExcavationVolume float64 `json:"excavationVolume"`

	// TotalVolumeDifference is the signed sum of all cell volumes.
	TotalVolumeDifference float64 `json:"totalVolumeDifference"`

	// Samples is the number of grid points used.
	Samples int `json:"samples"`

	// Footprint is the area where the design lies above the ground, one
	// polygon per part, in the display frame. It is empty if it could not
	// be determined.
	Footprint []geom.Polygon `json:"-"`

	// FootprintArea is the area of Footprint in square meters.
	FootprintArea float64 `json:"footprintArea"`
}

// Truncate2 truncates v to two decimals for display.
func Truncate2(v float64) float64 {
	return math.Trunc(v*100) / 100
}

// Display returns a copy of r with the volumes truncated to two decimals.
func (r Result) Display() Result {
	r.FillVolume = Truncate2(r.FillVolume)
	r.ExcavationVolume = Truncate2(r.ExcavationVolume)
	r.TotalVolumeDifference = Truncate2(r.TotalVolumeDifference)
	r.FootprintArea = Truncate2(r.FootprintArea)
	return r
}

// Engine computes volumes of a design mesh against a ground surface.
type Engine struct {
	Projector *geodesy.Projector
	Ground    terrain.ElevationService

	// GridSize is the grid spacing in meters.
	GridSize float64

	// Alpha is the alpha shape parameter for the footprint. Zero means
	// DefaultAlpha.
	Alpha float64

	Log logrus.FieldLogger
}

type sample struct {
	metric, display geom.Point
	z               float64
}

// Compute samples the design mesh m, which is in the display frame, on a
// grid in the metric frame, queries the ground elevation of all samples in
// a single batch and integrates the differences.
func (e *Engine) Compute(ctx context.Context, m *mesh.Mesh) (*Result, error) {
	if e.GridSize <= 0 {
		return nil, fmt.Errorf("volume: grid size must be positive, got %g", e.GridSize)
	}
	if m == nil || m.Len() == 0 {
		return nil, fmt.Errorf("volume: empty design mesh")
	}
	log := e.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	if err := e.Projector.Load(); err != nil {
		return nil, err
	}

	samples, err := e.sample(m)
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}

	pts := make([]geom.Point, len(samples))
	for i, s := range samples {
		pts[i] = s.display
	}
	ground, err := e.Ground.QueryElevation(ctx, pts)
	if err != nil {
		return nil, fmt.Errorf("volume: querying ground elevation: %w", err)
	}
	if len(ground) != len(samples) {
		return nil, fmt.Errorf("volume: ground service returned %d elevations for %d points", len(ground), len(samples))
	}

	cell := e.GridSize * e.GridSize
	r := new(Result)
	diffs := make([]float64, 0, len(samples))
	var above []geom.Point
	for i, s := range samples {
		gz := ground[i]
		if terrain.NoData(gz) {
			continue
		}
		diff := (s.z - gz) * cell
		if diff > 0 {
			r.FillVolume += diff
		} else {
			r.ExcavationVolume += math.Abs(diff)
		}
		diffs = append(diffs, diff)
		if s.z > gz {
			above = append(above, s.metric)
		}
	}
	if len(diffs) == 0 {
		return nil, ErrNoSamples
	}
	if skipped := len(samples) - len(diffs); skipped > 0 {
		log.WithField("skipped", skipped).Warn("volume: grid points without ground elevation")
	}
	r.Samples = len(diffs)
	r.TotalVolumeDifference = floats.Sum(diffs)

	if err := e.footprint(r, above); err != nil {
		log.WithError(err).Warn("volume: could not determine the above-ground footprint")
	}
	return r, nil
}

// sample returns the grid points that fall on the mesh. Points that cannot
// be projected are skipped.
func (e *Engine) sample(m *mesh.Mesh) ([]sample, error) {
	ext, err := e.Projector.ProjectBounds(m.Bounds(), geodesy.Display, geodesy.Metric)
	if err != nil {
		return nil, fmt.Errorf("volume: projecting mesh extent: %w", err)
	}
	s := mesh.NewSampler(m, mesh.NoData)
	nx := int(math.Floor((ext.Max.X-ext.Min.X)/e.GridSize)) + 1
	ny := int(math.Floor((ext.Max.Y-ext.Min.Y)/e.GridSize)) + 1
	var o []sample
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			mp := geom.Point{X: ext.Min.X + float64(i)*e.GridSize, Y: ext.Min.Y + float64(j)*e.GridSize}
			dp, err := e.Projector.ProjectPoint(mp, geodesy.Metric, geodesy.Display)
			if err != nil {
				continue
			}
			z, ok := s.ElevationAt(dp.X, dp.Y)
			if !ok {
				continue
			}
			o = append(o, sample{metric: mp, display: dp, z: z})
		}
	}
	return o, nil
}

// footprint outlines the metric points where the design is above the
// ground and stores the parts in the display frame.
func (e *Engine) footprint(r *Result, above []geom.Point) error {
	alpha := e.Alpha
	if alpha == 0 {
		alpha = DefaultAlpha
	}
	shape, err := alphashape.Shape(above, alpha)
	if err != nil {
		return err
	}
	var (
		parts []geom.Polygon
		area  float64
	)
	for _, part := range alphashape.Split(shape) {
		area += part.Area()
		dp := make(geom.Polygon, len(part))
		for i, ring := range part {
			pr, err := e.Projector.Project(ring, geodesy.Metric, geodesy.Display)
			if err != nil {
				return err
			}
			dp[i] = pr
		}
		parts = append(parts, dp)
	}
	r.Footprint, r.FootprintArea = parts, area
	return nil
}
