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

// Package mesh holds triangulated 3D surfaces and samples elevations from
// them.
package mesh

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"
)

// Vertex is a point in 3D space.
type Vertex struct {
	X, Y, Z float64
}

// Point returns the horizontal position of v.
func (v Vertex) Point() geom.Point { return geom.Point{X: v.X, Y: v.Y} }

// Triangle is a single mesh element.
type Triangle struct {
	A, B, C Vertex
}

// Bounds returns the horizontal bounds of the triangle.
func (t Triangle) Bounds() *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: math.Min(t.A.X, math.Min(t.B.X, t.C.X)), Y: math.Min(t.A.Y, math.Min(t.B.Y, t.C.Y))},
		Max: geom.Point{X: math.Max(t.A.X, math.Max(t.B.X, t.C.X)), Y: math.Max(t.A.Y, math.Max(t.B.Y, t.C.Y))},
	}
}

// Area2D returns the horizontal area of the triangle.
func (t Triangle) Area2D() float64 {
	return math.Abs((t.B.X-t.A.X)*(t.C.Y-t.A.Y)-(t.C.X-t.A.X)*(t.B.Y-t.A.Y)) / 2
}

// Normal returns the unit normal of the triangle, or the zero vector for a
// degenerate triangle.
func (t Triangle) Normal() Vertex {
	ux, uy, uz := t.B.X-t.A.X, t.B.Y-t.A.Y, t.B.Z-t.A.Z
	vx, vy, vz := t.C.X-t.A.X, t.C.Y-t.A.Y, t.C.Z-t.A.Z
	n := Vertex{X: uy*vz - uz*vy, Y: uz*vx - ux*vz, Z: ux*vy - uy*vx}
	l := math.Sqrt(n.X*n.X + n.Y*n.Y + n.Z*n.Z)
	if l == 0 {
		return Vertex{}
	}
	return Vertex{X: n.X / l, Y: n.Y / l, Z: n.Z / l}
}

// degenerate reports whether the triangle has no horizontal extent.
func (t Triangle) degenerate() bool {
	return t.Area2D() < 1e-12
}

// Interpolate returns the elevation of the triangle's plane at (x, y) and
// whether (x, y) lies inside the triangle, edges included. It uses
// barycentric coordinates.
func (t Triangle) Interpolate(x, y float64) (float64, bool) {
	const eps = 1e-9
	det := (t.B.Y-t.C.Y)*(t.A.X-t.C.X) + (t.C.X-t.B.X)*(t.A.Y-t.C.Y)
	if det == 0 {
		return 0, false
	}
	l1 := ((t.B.Y-t.C.Y)*(x-t.C.X) + (t.C.X-t.B.X)*(y-t.C.Y)) / det
	l2 := ((t.C.Y-t.A.Y)*(x-t.C.X) + (t.A.X-t.C.X)*(y-t.C.Y)) / det
	l3 := 1 - l1 - l2
	if l1 < -eps || l2 < -eps || l3 < -eps {
		return 0, false
	}
	return l1*t.A.Z + l2*t.B.Z + l3*t.C.Z, true
}

// Mesh is a triangulated surface.
type Mesh struct {
	Triangles []Triangle
}

// Len returns the number of triangles in the mesh.
func (m *Mesh) Len() int { return len(m.Triangles) }

// Bounds returns the horizontal bounds of the mesh.
func (m *Mesh) Bounds() *geom.Bounds {
	b := geom.NewBounds()
	for _, t := range m.Triangles {
		b.Extend(t.Bounds())
	}
	return b
}

// Area2D returns the sum of the horizontal areas of the triangles.
func (m *Mesh) Area2D() float64 {
	var a float64
	for _, t := range m.Triangles {
		a += t.Area2D()
	}
	return a
}

// FromQuad triangulates a closed quadrilateral ring into a two-triangle
// mesh. Triangles without horizontal extent are left out.
func FromQuad(ring [5]Vertex) (*Mesh, error) {
	if ring[0] != ring[4] {
		return nil, fmt.Errorf("mesh: quad ring is not closed")
	}
	m := new(Mesh)
	for _, t := range []Triangle{
		{A: ring[0], B: ring[1], C: ring[2]},
		{A: ring[0], B: ring[2], C: ring[3]},
	} {
		if !t.degenerate() {
			m.Triangles = append(m.Triangles, t)
		}
	}
	if len(m.Triangles) == 0 {
		return nil, fmt.Errorf("mesh: quad has no horizontal extent")
	}
	return m, nil
}

// Merge combines meshes into a single mesh. Nil meshes are skipped.
func Merge(meshes ...*Mesh) *Mesh {
	n := 0
	for _, m := range meshes {
		if m != nil {
			n += len(m.Triangles)
		}
	}
	o := &Mesh{Triangles: make([]Triangle, 0, n)}
	for _, m := range meshes {
		if m != nil {
			o.Triangles = append(o.Triangles, m.Triangles...)
		}
	}
	return o
}
