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
	"math"
	"testing"

	"github.com/ctessum/geom"
)

func square(x0, y0, size, z float64) [5]Vertex {
	return [5]Vertex{
		{X: x0, Y: y0, Z: z},
		{X: x0 + size, Y: y0, Z: z},
		{X: x0 + size, Y: y0 + size, Z: z},
		{X: x0, Y: y0 + size, Z: z},
		{X: x0, Y: y0, Z: z},
	}
}

func TestFromQuad(t *testing.T) {
	m, err := FromQuad(square(0, 0, 2, 1))
	if err != nil {
		t.Fatal(err)
	}
	if m.Len() != 2 {
		t.Errorf("triangles: have %d, want 2", m.Len())
	}
	if a := m.Area2D(); a != 4 {
		t.Errorf("area: have %g, want 4", a)
	}

	t.Run("open", func(t *testing.T) {
		q := square(0, 0, 2, 1)
		q[4] = Vertex{X: 5}
		if _, err := FromQuad(q); err == nil {
			t.Error("expected an error")
		}
	})
	t.Run("degenerate", func(t *testing.T) {
		var q [5]Vertex
		if _, err := FromQuad(q); err == nil {
			t.Error("expected an error")
		}
	})
}

func TestMerge(t *testing.T) {
	a, _ := FromQuad(square(0, 0, 1, 1))
	b, _ := FromQuad(square(1, 0, 1, 2))
	m := Merge(a, nil, b)
	if m.Len() != 4 {
		t.Errorf("have %d triangles, want 4", m.Len())
	}
	want := &geom.Bounds{Min: geom.Point{X: 0, Y: 0}, Max: geom.Point{X: 2, Y: 1}}
	if have := m.Bounds(); *have != *want {
		t.Errorf("bounds: have %v, want %v", have, want)
	}
}

func TestInterpolate(t *testing.T) {
	tri := Triangle{
		A: Vertex{X: 0, Y: 0, Z: 0},
		B: Vertex{X: 10, Y: 0, Z: 10},
		C: Vertex{X: 0, Y: 10, Z: 0},
	}
	tests := []struct {
		x, y   float64
		z      float64
		inside bool
	}{
		{x: 0, y: 0, z: 0, inside: true},
		{x: 5, y: 0, z: 5, inside: true},
		{x: 2, y: 2, z: 2, inside: true},
		{x: 5, y: 5, z: 5, inside: true},
		{x: 6, y: 6, inside: false},
		{x: -1, y: 0, inside: false},
	}
	for _, test := range tests {
		z, ok := tri.Interpolate(test.x, test.y)
		if ok != test.inside {
			t.Errorf("(%g, %g): inside have %v, want %v", test.x, test.y, ok, test.inside)
			continue
		}
		if ok && math.Abs(z-test.z) > 1e-9 {
			t.Errorf("(%g, %g): have %g, want %g", test.x, test.y, z, test.z)
		}
	}
}

func TestNormal(t *testing.T) {
	tri := Triangle{A: Vertex{}, B: Vertex{X: 1}, C: Vertex{Y: 1}}
	if n := tri.Normal(); n != (Vertex{Z: 1}) {
		t.Errorf("have %v, want upward normal", n)
	}
}

func TestSampler(t *testing.T) {
	a, _ := FromQuad(square(0, 0, 10, 3))
	b, _ := FromQuad([5]Vertex{
		{X: 10, Y: 0, Z: 3},
		{X: 20, Y: 0, Z: 13},
		{X: 20, Y: 10, Z: 13},
		{X: 10, Y: 10, Z: 3},
		{X: 10, Y: 0, Z: 3},
	})
	s := NewSampler(Merge(a, b), NoData)

	z, ok := s.ElevationAt(5, 5)
	if !ok || z != 3 {
		t.Errorf("flat part: have %g (%v), want 3", z, ok)
	}
	z, ok = s.ElevationAt(15, 2)
	if !ok || math.Abs(z-8) > 1e-9 {
		t.Errorf("sloped part: have %g (%v), want 8", z, ok)
	}
	if z, ok := s.ElevationAt(25, 5); ok || z != NoData {
		t.Errorf("outside: have %g (%v), want %g", z, ok, NoData)
	}

	zs := s.QueryElevation([]geom.Point{{X: 1, Y: 1}, {X: -1, Y: -1}})
	if zs[0] != 3 || zs[1] != s.NoData() {
		t.Errorf("batch: have %v", zs)
	}
}
