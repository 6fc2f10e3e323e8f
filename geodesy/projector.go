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

// Package geodesy converts coordinates between the display frame used for
// drawing, a locally accurate metric frame used for offsetting and gridding,
// and geographic WGS84 coordinates, and measures planar and geodesic lengths.
package geodesy

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/proj"
	"github.com/golang/geo/s2"
	"gonum.org/v1/gonum/floats"
)

const (
	// WebMercator is the default display spatial reference.
	WebMercator = "+proj=merc +a=6378137 +b=6378137 +lat_ts=0.0 +lon_0=0.0 +x_0=0.0 +y_0=0 +k=1.0 +units=m +nadgrids=@null +no_defs"

	// UTM31N is the default metric spatial reference. It covers the
	// Netherlands.
	UTM31N = "+proj=utm +zone=31 +ellps=WGS84 +datum=WGS84 +units=m +no_defs"

	// LongLat is the WGS84 geographic spatial reference.
	LongLat = "+proj=longlat +ellps=WGS84 +datum=WGS84 +no_defs"

	// EarthRadius is the mean earth radius in meters.
	EarthRadius = 6371008.8
)

// Frame identifies a coordinate reference frame known to a Projector.
type Frame int

// The frames a Projector can convert between.
const (
	Display Frame = iota
	Metric
	WGS84
)

func (f Frame) String() string {
	switch f {
	case Display:
		return "display"
	case Metric:
		return "metric"
	case WGS84:
		return "wgs84"
	default:
		return fmt.Sprintf("frame(%d)", int(f))
	}
}

// ErrNotLoaded is returned when a Projector is used before Load has been
// called.
var ErrNotLoaded = errors.New("geodesy: projector not loaded")

// Projector transforms geometry between the display, metric and WGS84 frames.
// Load must be called once before the Projector is used; it is safe to call
// Load more than once and from several goroutines.
type Projector struct {
	// DisplayProj and MetricProj are the spatial references of the display
	// and metric frames, in Proj4 or WKT format.
	DisplayProj, MetricProj string

	once   sync.Once
	err    error
	loaded bool
	trans  map[[2]Frame]proj.Transformer
}

// NewProjector returns a Projector for the given display and metric spatial
// references. Empty strings select WebMercator and UTM31N.
func NewProjector(displayProj, metricProj string) *Projector {
	if displayProj == "" {
		displayProj = WebMercator
	}
	if metricProj == "" {
		metricProj = UTM31N
	}
	return &Projector{DisplayProj: displayProj, MetricProj: metricProj}
}

// Load parses the spatial references and prepares the transforms between
// every pair of frames. Only the first call does any work.
func (p *Projector) Load() error {
	p.once.Do(func() {
		srs := make(map[Frame]*proj.SR, 3)
		for f, def := range map[Frame]string{Display: p.DisplayProj, Metric: p.MetricProj, WGS84: LongLat} {
			sr, err := proj.Parse(def)
			if err != nil {
				p.err = fmt.Errorf("geodesy: parsing %s spatial reference: %v", f, err)
				return
			}
			srs[f] = sr
		}
		p.trans = make(map[[2]Frame]proj.Transformer)
		for from, fromSR := range srs {
			for to, toSR := range srs {
				if from == to {
					continue
				}
				t, err := fromSR.NewTransform(toSR)
				if err != nil {
					p.err = fmt.Errorf("geodesy: creating %s to %s transform: %v", from, to, err)
					return
				}
				p.trans[[2]Frame{from, to}] = t
			}
		}
		p.loaded = true
	})
	return p.err
}

func (p *Projector) transformer(from, to Frame) (proj.Transformer, error) {
	if !p.loaded {
		if p.err != nil {
			return nil, p.err
		}
		return nil, ErrNotLoaded
	}
	t, ok := p.trans[[2]Frame{from, to}]
	if !ok {
		return nil, fmt.Errorf("geodesy: no transform from %s to %s", from, to)
	}
	return t, nil
}

// ProjectPoint transforms a single point between frames.
func (p *Projector) ProjectPoint(pt geom.Point, from, to Frame) (geom.Point, error) {
	if from == to {
		if !p.loaded {
			return pt, ErrNotLoaded
		}
		return pt, nil
	}
	t, err := p.transformer(from, to)
	if err != nil {
		return pt, err
	}
	x, y, err := t(pt.X, pt.Y)
	if err != nil {
		return pt, fmt.Errorf("geodesy: projecting (%g, %g) from %s to %s: %v", pt.X, pt.Y, from, to, err)
	}
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return pt, fmt.Errorf("geodesy: projecting (%g, %g) from %s to %s gave an invalid result", pt.X, pt.Y, from, to)
	}
	return geom.Point{X: x, Y: y}, nil
}

// Project transforms a sequence of points between frames. The result is
// a new slice; the input is not modified.
func (p *Projector) Project(pts []geom.Point, from, to Frame) ([]geom.Point, error) {
	o := make([]geom.Point, len(pts))
	for i, pt := range pts {
		var err error
		o[i], err = p.ProjectPoint(pt, from, to)
		if err != nil {
			return nil, err
		}
	}
	return o, nil
}

// ProjectBounds transforms the corners of b and returns the bounds of the
// transformed corners.
func (p *Projector) ProjectBounds(b *geom.Bounds, from, to Frame) (*geom.Bounds, error) {
	corners := []geom.Point{
		b.Min,
		{X: b.Max.X, Y: b.Min.Y},
		b.Max,
		{X: b.Min.X, Y: b.Max.Y},
	}
	pc, err := p.Project(corners, from, to)
	if err != nil {
		return nil, err
	}
	o := geom.NewBounds()
	for _, c := range pc {
		o.Extend(geom.NewBoundsPoint(c))
	}
	return o, nil
}

// PlanarLength returns the Euclidean length of a line in the display frame.
func (p *Projector) PlanarLength(line []geom.Point) (float64, error) {
	if !p.loaded {
		return 0, ErrNotLoaded
	}
	return planarLength(line), nil
}

func planarLength(line []geom.Point) float64 {
	if len(line) < 2 {
		return 0
	}
	d := make([]float64, len(line)-1)
	for i := 1; i < len(line); i++ {
		d[i-1] = math.Hypot(line[i].X-line[i-1].X, line[i].Y-line[i-1].Y)
	}
	return floats.Sum(d)
}

// GeodesicLength returns the great-circle length in meters of a line given
// in the display frame.
func (p *Projector) GeodesicLength(line []geom.Point) (float64, error) {
	ll, err := p.Project(line, Display, WGS84)
	if err != nil {
		return 0, err
	}
	return greatCircleLength(ll), nil
}

// greatCircleLength returns the length in meters of a line of
// longitude/latitude points.
func greatCircleLength(ll []geom.Point) float64 {
	var angle float64
	for i := 1; i < len(ll); i++ {
		a := s2.LatLngFromDegrees(ll[i-1].Y, ll[i-1].X)
		b := s2.LatLngFromDegrees(ll[i].Y, ll[i].X)
		angle += a.Distance(b).Radians()
	}
	return angle * EarthRadius
}

// ScaleRatio returns planar/geodesic length for a line in the display frame.
// This is the local distortion of the display frame. Degenerate lines
// have a ratio of 1.
func (p *Projector) ScaleRatio(line []geom.Point) (float64, error) {
	planar, err := p.PlanarLength(line)
	if err != nil {
		return 0, err
	}
	geodesic, err := p.GeodesicLength(line)
	if err != nil {
		return 0, err
	}
	if planar == 0 || geodesic == 0 {
		return 1, nil
	}
	return planar / geodesic, nil
}
