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

package geodesy

import (
	"math"

	"github.com/ctessum/geom"
	"github.com/golang/geo/s2"
)

// SphericalArea returns the area in square meters of a polygon given in
// WGS84 longitude and latitude. The first ring is the outer boundary and
// the others are holes; ring orientation does not matter.
func SphericalArea(p geom.Polygon) float64 {
	var a float64
	for i, ring := range p {
		n := len(ring)
		if n > 1 && ring[0] == ring[n-1] {
			n--
		}
		if n < 3 {
			continue
		}
		pts := make([]s2.Point, n)
		for j := 0; j < n; j++ {
			pts[j] = s2.PointFromLatLng(s2.LatLngFromDegrees(ring[j].Y, ring[j].X))
		}
		ra := s2.LoopFromPoints(pts).Area()
		if ra > 2*math.Pi {
			// Clockwise ring: s2 measured the outside.
			ra = 4*math.Pi - ra
		}
		if i == 0 {
			a += ra
		} else {
			a -= ra
		}
	}
	return a * EarthRadius * EarthRadius
}
