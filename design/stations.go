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

package design

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"
)

// Station is a position along a line.
type Station struct {
	// Offset is the distance from the start of the line in meters.
	Offset float64

	// OffsetInSegment is the distance from the start of the segment.
	OffsetInSegment float64

	// Segment is the index of the segment the station is on.
	Segment int
}

// EvenRoundUp rounds l up to the next even whole number.
func EvenRoundUp(l float64) float64 {
	return 2 * math.Ceil(l/2)
}

// StationsAlongLine returns stations every interval meters along each
// segment of line, which is in the display frame. Segment lengths are
// geodesic and rounded up to an even number of meters. Each segment starts
// a new series at the length covered so far; a remainder shorter than
// interval at the end of a segment gets no station.
func (d *Designer) StationsAlongLine(line []geom.Point, interval float64) ([]Station, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("design: station interval must be positive, got %g", interval)
	}
	if len(line) < 2 {
		return nil, ErrEmptyReferenceLine
	}
	if err := d.Projector.Load(); err != nil {
		return nil, err
	}
	var (
		o   []Station
		cum float64
	)
	for i := 0; i < len(line)-1; i++ {
		l, err := d.Projector.GeodesicLength(line[i : i+2])
		if err != nil {
			return nil, fmt.Errorf("design: measuring segment %d: %w", i, err)
		}
		l = EvenRoundUp(l)
		n := int(math.Floor(l/interval + 1e-9))
		for k := 0; k < n; k++ {
			s := float64(k) * interval
			o = append(o, Station{Offset: cum + s, OffsetInSegment: s, Segment: i})
		}
		cum += l
	}
	return o, nil
}

// PointAtStation returns the point at geodesic distance offsetInSegment
// from start towards end, with m as its measure. The planar step is
// corrected by the segment's planar/geodesic length ratio; a segment
// without length gives start.
func (d *Designer) PointAtStation(start, end geom.Point, offsetInSegment, m float64) (Coord, error) {
	ratio, err := d.Projector.ScaleRatio([]geom.Point{start, end})
	if err != nil {
		return Coord{}, err
	}
	dx, dy := end.X-start.X, end.Y-start.Y
	l := math.Hypot(dx, dy)
	if l == 0 {
		return XYM(start.X, start.Y, m), nil
	}
	s := offsetInSegment * ratio
	return XYM(start.X+dx/l*s, start.Y+dy/l*s, m), nil
}

// PointsAtStations places every station on line.
func (d *Designer) PointsAtStations(line []geom.Point, stations []Station) (Line, error) {
	o := make(Line, len(stations))
	for i, s := range stations {
		if s.Segment < 0 || s.Segment >= len(line)-1 {
			return nil, fmt.Errorf("design: station %d refers to segment %d of a %d-vertex line", i, s.Segment, len(line))
		}
		c, err := d.PointAtStation(line[s.Segment], line[s.Segment+1], s.OffsetInSegment, s.Offset)
		if err != nil {
			return nil, err
		}
		o[i] = c
	}
	return o, nil
}
