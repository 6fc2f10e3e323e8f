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
	"github.com/sirupsen/logrus"
)

// Quad is a closed four-cornered ring between two offset lines.
type Quad [5]Coord

// Vertices returns the corners of the quad as mesh vertices.
func (q Quad) Vertices() [5]mesh.Vertex {
	var o [5]mesh.Vertex
	for i, c := range q {
		o[i] = c.Vertex()
	}
	return o
}

// Strip is the surface between two adjacent offset lines.
type Strip struct {
	From, To Distance

	// Footprint3D is the closed outline of the strip with elevations.
	Footprint3D Line

	// Footprint2D is the flat outline of the strip.
	Footprint2D geom.Polygon

	Quads []Quad
}

// BuildStrip connects offset line a to offset line b. Vertex i of a is
// joined to vertex i of b; the longer line is truncated to the length of
// the shorter one.
func BuildStrip(a, b OffsetGeometry) (Strip, error) {
	if len(a.Line) < 2 || len(b.Line) < 2 {
		return Strip{}, fmt.Errorf("design: strip %g to %g needs two lines of at least two vertices", a.Distance, b.Distance)
	}
	s := Strip{From: a.Distance, To: b.Distance}

	ring := make(Line, 0, len(a.Line)+len(b.Line)+1)
	ring = append(ring, a.Line...)
	ring = append(ring, b.Line.Reversed()...)
	ring = append(ring, a.Line[0])
	s.Footprint3D = ring
	s.Footprint2D = geom.Polygon{geom.Path(ring.Points())}

	n := len(a.Line)
	if len(b.Line) < n {
		n = len(b.Line)
	}
	s.Quads = make([]Quad, n-1)
	for i := 0; i < n-1; i++ {
		s.Quads[i] = Quad{a.Line[i], a.Line[i+1], b.Line[i+1], b.Line[i], a.Line[i]}
	}
	return s, nil
}

// BuildStrips builds the strips between every pair of adjacent offset
// lines, in order of distance.
func BuildStrips(set OffsetSet) ([]Strip, error) {
	pairs := set.Pairs()
	if len(pairs) == 0 {
		return nil, fmt.Errorf("design: at least two offset lines are needed for a strip, have %d", len(set))
	}
	o := make([]Strip, len(pairs))
	for i, p := range pairs {
		s, err := BuildStrip(p[0], p[1])
		if err != nil {
			return nil, err
		}
		o[i] = s
	}
	return o, nil
}

// Mesh triangulates every quad of the strip and merges the result. Quads
// without horizontal extent are skipped.
func (s Strip) Mesh(log logrus.FieldLogger) *mesh.Mesh {
	parts := make([]*mesh.Mesh, 0, len(s.Quads))
	for i, q := range s.Quads {
		m, err := mesh.FromQuad(q.Vertices())
		if err != nil {
			log.WithFields(logrus.Fields{"van": s.From, "tot": s.To, "quad": i}).Debug(err)
			continue
		}
		parts = append(parts, m)
	}
	return mesh.Merge(parts...)
}

// MergeStrips builds the design mesh from all strips.
func MergeStrips(strips []Strip, log logrus.FieldLogger) (*mesh.Mesh, error) {
	parts := make([]*mesh.Mesh, len(strips))
	for i, s := range strips {
		parts[i] = s.Mesh(log)
	}
	m := mesh.Merge(parts...)
	if m.Len() == 0 {
		return nil, fmt.Errorf("design: the design mesh has no triangles")
	}
	return m, nil
}
