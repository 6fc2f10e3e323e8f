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

package alphashape

import (
	"math"
	"sort"

	"github.com/ctessum/geom"
)

// Triangle is a Delaunay triangle referring to points by index. Vertices are
// in counter-clockwise order.
type Triangle [3]int

type circle struct {
	x, y, r2 float64
}

type tri struct {
	v [3]int
	c circle
}

// circumcircle is computed relative to a to keep precision with large
// projected coordinates.
func circumcircle(a, b, c geom.Point) circle {
	bx, by := b.X-a.X, b.Y-a.Y
	cx, cy := c.X-a.X, c.Y-a.Y
	d := 2 * (bx*cy - by*cx)
	if math.Abs(d) < 1e-12 {
		return circle{r2: math.Inf(1)}
	}
	b2 := bx*bx + by*by
	c2 := cx*cx + cy*cy
	ux := (cy*b2 - by*c2) / d
	uy := (bx*c2 - cx*b2) / d
	return circle{x: a.X + ux, y: a.Y + uy, r2: ux*ux + uy*uy}
}

// contains reports whether p is strictly inside the circle. Points on the
// circle, within rounding, are outside so that co-circular lattice points
// give a consistent triangulation.
func (c circle) contains(p geom.Point) bool {
	if math.IsInf(c.r2, 1) {
		return true
	}
	d2 := (p.X-c.x)*(p.X-c.x) + (p.Y-c.y)*(p.Y-c.y)
	return d2 < c.r2*(1-1e-7)
}

// leftOf reports whether the whole circle lies left of the vertical line
// at x.
func (c circle) leftOf(x float64) bool {
	if math.IsInf(c.r2, 1) || x <= c.x {
		return false
	}
	return (x-c.x)*(x-c.x) > c.r2
}

func cross(o, a, b geom.Point) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

func newTri(pts []geom.Point, i, j, k int) tri {
	if cross(pts[i], pts[j], pts[k]) < 0 {
		j, k = k, j
	}
	return tri{v: [3]int{i, j, k}, c: circumcircle(pts[i], pts[j], pts[k])}
}

type edge struct{ a, b int }

func (e edge) key() edge {
	if e.a > e.b {
		return edge{e.b, e.a}
	}
	return e
}

// Triangulate returns the Delaunay triangulation of pts using the
// Bowyer-Watson algorithm with a sweep in x. Run time grows with the
// number of points times the number of triangles near the sweep line, so
// long and narrow point sets such as dike footprints stay close to linear. Duplicate points should be removed by the caller.
// Fewer than three points, or only collinear points, give no triangles.
func Triangulate(pts []geom.Point) []Triangle {
	n := len(pts)
	if n < 3 {
		return nil
	}

	b := geom.NewBounds()
	for _, p := range pts {
		b.Extend(geom.NewBoundsPoint(p))
	}
	dx, dy := b.Max.X-b.Min.X, b.Max.Y-b.Min.Y
	delta := math.Max(dx, dy)
	if delta == 0 {
		return nil
	}
	midX, midY := (b.Min.X+b.Max.X)/2, (b.Min.Y+b.Max.Y)/2

	// The super triangle's vertices go after the input points.
	all := make([]geom.Point, n, n+3)
	copy(all, pts)
	all = append(all,
		geom.Point{X: midX - 20*delta, Y: midY - delta},
		geom.Point{X: midX, Y: midY + 20*delta},
		geom.Point{X: midX + 20*delta, Y: midY - delta},
	)

	// Inserting points in sorted order keeps the cavities small.
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		pi, pj := pts[order[i]], pts[order[j]]
		if pi.X != pj.X {
			return pi.X < pj.X
		}
		return pi.Y < pj.Y
	})

	// Points arrive in order of x, so a triangle whose circumcircle lies
	// left of the current point can no longer change and is set aside.
	// This keeps the scan to the triangles near the sweep line.
	var done []tri
	tris := []tri{newTri(all, n, n+1, n+2)}
	for _, pi := range order {
		p := all[pi]
		boundary := make(map[edge]int)
		kept := tris[:0]
		var bad []tri
		for _, t := range tris {
			switch {
			case t.c.contains(p):
				bad = append(bad, t)
			case t.c.leftOf(p.X):
				done = append(done, t)
			default:
				kept = append(kept, t)
			}
		}
		for _, t := range bad {
			for k := 0; k < 3; k++ {
				boundary[edge{t.v[k], t.v[(k+1)%3]}.key()]++
			}
		}
		tris = kept
		for _, t := range bad {
			for k := 0; k < 3; k++ {
				e := edge{t.v[k], t.v[(k+1)%3]}
				if boundary[e.key()] != 1 {
					continue
				}
				if math.Abs(cross(all[e.a], all[e.b], p)) < 1e-12 {
					continue
				}
				tris = append(tris, newTri(all, e.a, e.b, pi))
			}
		}
	}

	tris = append(done, tris...)
	var o []Triangle
	for _, t := range tris {
		if t.v[0] >= n || t.v[1] >= n || t.v[2] >= n {
			continue
		}
		o = append(o, Triangle(t.v))
	}
	return o
}
