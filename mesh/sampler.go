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

package mesh

import (
	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
)

// NoData is the default value returned by a Sampler for locations outside
// of the mesh.
const NoData = -9999.0

// indexed is a triangle stored in the spatial index.
type indexed struct {
	geom.Polygon
	t Triangle
}

// Sampler returns elevations of a mesh surface at arbitrary horizontal
// locations.
type Sampler struct {
	index  *rtree.Rtree
	noData float64
}

// NewSampler indexes the triangles of m. Locations outside of the mesh are
// reported with noData.
func NewSampler(m *Mesh, noData float64) *Sampler {
	s := &Sampler{
		index:  rtree.NewTree(25, 50),
		noData: noData,
	}
	for _, t := range m.Triangles {
		s.index.Insert(&indexed{
			Polygon: geom.Polygon{{t.A.Point(), t.B.Point(), t.C.Point(), t.A.Point()}},
			t:       t,
		})
	}
	return s
}

// NoData returns the value used for locations outside of the mesh.
func (s *Sampler) NoData() float64 { return s.noData }

// ElevationAt returns the elevation of the mesh at (x, y) and whether the
// location lies on the mesh. Where triangles overlap the first match in the
// index is used.
func (s *Sampler) ElevationAt(x, y float64) (float64, bool) {
	p := geom.Point{X: x, Y: y}
	for _, g := range s.index.SearchIntersect(p.Bounds()) {
		if z, ok := g.(*indexed).t.Interpolate(x, y); ok {
			return z, true
		}
	}
	return s.noData, false
}

// QueryElevation returns the mesh elevation at each point, or the no-data
// value where the point lies outside of the mesh.
func (s *Sampler) QueryElevation(pts []geom.Point) []float64 {
	o := make([]float64, len(pts))
	for i, p := range pts {
		o[i], _ = s.ElevationAt(p.X, p.Y)
	}
	return o
}
