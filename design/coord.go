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

	"github.com/Deltares-research/Verkenning-2.0-sub001/mesh"
	"github.com/ctessum/geom"
)

// Coord is a coordinate with optional elevation (Z) and measure (M)
// values. Use the constructors to set the presence flags.
type Coord struct {
	geom.Point
	Z, M       float64
	HasZ, HasM bool
}

// XY returns a 2D coordinate.
func XY(x, y float64) Coord { return Coord{Point: geom.Point{X: x, Y: y}} }

// XYZ returns a coordinate with elevation.
func XYZ(x, y, z float64) Coord {
	return Coord{Point: geom.Point{X: x, Y: y}, Z: z, HasZ: true}
}

// XYM returns a coordinate with a measure.
func XYM(x, y, m float64) Coord {
	return Coord{Point: geom.Point{X: x, Y: y}, M: m, HasM: true}
}

// XYZM returns a coordinate with elevation and a measure.
func XYZM(x, y, z, m float64) Coord {
	return Coord{Point: geom.Point{X: x, Y: y}, Z: z, M: m, HasZ: true, HasM: true}
}

// Vertex converts c to a mesh vertex. A missing Z becomes 0.
func (c Coord) Vertex() mesh.Vertex {
	return mesh.Vertex{X: c.X, Y: c.Y, Z: c.Z}
}

func (c Coord) String() string {
	switch {
	case c.HasZ && c.HasM:
		return fmt.Sprintf("(%g %g %g m=%g)", c.X, c.Y, c.Z, c.M)
	case c.HasZ:
		return fmt.Sprintf("(%g %g %g)", c.X, c.Y, c.Z)
	case c.HasM:
		return fmt.Sprintf("(%g %g m=%g)", c.X, c.Y, c.M)
	default:
		return fmt.Sprintf("(%g %g)", c.X, c.Y)
	}
}

// Line is a polyline of coordinates.
type Line []Coord

// LineFromPoints returns a 2D line through pts.
func LineFromPoints(pts []geom.Point) Line {
	l := make(Line, len(pts))
	for i, p := range pts {
		l[i] = Coord{Point: p}
	}
	return l
}

// Points returns the horizontal positions of the line's vertices.
func (l Line) Points() geom.LineString {
	o := make(geom.LineString, len(l))
	for i, c := range l {
		o[i] = c.Point
	}
	return o
}

// WithZ returns a copy of the line with every elevation set to z.
func (l Line) WithZ(z float64) Line {
	o := make(Line, len(l))
	for i, c := range l {
		c.Z, c.HasZ = z, true
		o[i] = c
	}
	return o
}

// Reversed returns a copy of the line in the opposite direction.
func (l Line) Reversed() Line {
	o := make(Line, len(l))
	for i, c := range l {
		o[len(l)-1-i] = c
	}
	return o
}

// ReferenceLine is the centerline of a dike in the display frame.
type ReferenceLine Line

// Validate checks that the reference line can be used for a design.
func (r ReferenceLine) Validate() error {
	if len(r) < 2 {
		return ErrEmptyReferenceLine
	}
	for i := 1; i < len(r); i++ {
		if r[i].Point != r[0].Point {
			return nil
		}
	}
	return fmt.Errorf("%w: all vertices coincide", ErrEmptyReferenceLine)
}
