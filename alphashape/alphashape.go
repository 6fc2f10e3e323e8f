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

// Package alphashape reconstructs the outline of a planar point set.
// An alpha shape is the union of the Delaunay triangles whose circumradius
// does not exceed alpha.
package alphashape

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/ctessum/geom"
)

var (
	// ErrDegenerate is returned when the points do not span an area.
	ErrDegenerate = errors.New("alphashape: fewer than three non-collinear points")

	// ErrEmpty is returned when no Delaunay triangle is small enough for
	// the requested alpha.
	ErrEmpty = errors.New("alphashape: no triangles within alpha")
)

// Shape returns the alpha shape of pts as a single polygon that may hold
// several outer rings and holes. Outer rings are counter-clockwise, holes
// clockwise, and every ring is closed. Use Split to separate the parts.
func Shape(pts []geom.Point, alpha float64) (geom.Polygon, error) {
	if alpha <= 0 {
		return nil, fmt.Errorf("alphashape: alpha must be positive, got %g", alpha)
	}
	pts = unique(pts)
	tris := Triangulate(pts)
	if len(tris) == 0 {
		return nil, ErrDegenerate
	}

	a2 := alpha * alpha
	var keep []Triangle
	for _, t := range tris {
		if c := circumcircle(pts[t[0]], pts[t[1]], pts[t[2]]); c.r2 <= a2 {
			keep = append(keep, t)
		}
	}
	if len(keep) == 0 {
		return nil, ErrEmpty
	}
	return boundary(pts, keep), nil
}

func unique(pts []geom.Point) []geom.Point {
	seen := make(map[geom.Point]struct{}, len(pts))
	o := make([]geom.Point, 0, len(pts))
	for _, p := range pts {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		o = append(o, p)
	}
	return o
}

// boundary traces the rings formed by the edges that belong to exactly one
// triangle. Each edge is directed as in its counter-clockwise triangle so
// the shape's interior is on its left.
func boundary(pts []geom.Point, tris []Triangle) geom.Polygon {
	count := make(map[edge]int)
	for _, t := range tris {
		for k := 0; k < 3; k++ {
			count[edge{t[k], t[(k+1)%3]}.key()]++
		}
	}
	out := make(map[int][]int)
	nEdges := 0
	for _, t := range tris {
		for k := 0; k < 3; k++ {
			e := edge{t[k], t[(k+1)%3]}
			if count[e.key()] == 1 {
				out[e.a] = append(out[e.a], e.b)
				nEdges++
			}
		}
	}
	starts := make([]int, 0, len(out))
	for v := range out {
		starts = append(starts, v)
	}
	sort.Ints(starts)

	var poly geom.Polygon
	for _, start := range starts {
		for len(out[start]) > 0 {
			ring := geom.Path{pts[start]}
			prev, cur := start, takeNext(pts, out, -1, start)
			for steps := 0; cur >= 0 && cur != start && steps <= nEdges; steps++ {
				ring = append(ring, pts[cur])
				prev, cur = cur, takeNext(pts, out, prev, cur)
			}
			ring = append(ring, pts[start])
			if cur == start && len(ring) >= 4 {
				poly = append(poly, ring)
			}
		}
	}
	return poly
}

// takeNext removes and returns the outgoing edge of v to follow after
// arriving from prev. Where several boundary edges leave a vertex, the one
// with the smallest clockwise turn from the reversed incoming edge is
// chosen, which keeps rings that touch at a vertex apart.
func takeNext(pts []geom.Point, out map[int][]int, prev, v int) int {
	cands := out[v]
	if len(cands) == 0 {
		return -1
	}
	best := 0
	if prev >= 0 && len(cands) > 1 {
		back := math.Atan2(pts[prev].Y-pts[v].Y, pts[prev].X-pts[v].X)
		bestTurn := math.Inf(1)
		for i, c := range cands {
			a := math.Atan2(pts[c].Y-pts[v].Y, pts[c].X-pts[v].X)
			turn := math.Mod(back-a+4*math.Pi, 2*math.Pi)
			if turn == 0 {
				turn = 2 * math.Pi
			}
			if turn < bestTurn {
				best, bestTurn = i, turn
			}
		}
	}
	next := cands[best]
	out[v] = append(cands[:best], cands[best+1:]...)
	return next
}

// signedArea is positive for counter-clockwise rings.
func signedArea(r geom.Path) float64 {
	var a float64
	for i := 0; i < len(r)-1; i++ {
		a += r[i].X*r[i+1].Y - r[i+1].X*r[i].Y
	}
	return a / 2
}

// Split separates a polygon into single-part polygons: one per outer ring,
// each with the holes that lie inside it. Ring orientation decides which
// rings are outer rings. Holes outside of every outer ring are dropped.
func Split(p geom.Polygon) []geom.Polygon {
	var outers, holes []geom.Path
	for _, r := range p {
		switch a := signedArea(r); {
		case a > 0:
			outers = append(outers, r)
		case a < 0:
			holes = append(holes, r)
		}
	}
	parts := make([]geom.Polygon, len(outers))
	for i, r := range outers {
		parts[i] = geom.Polygon{r}
	}
	for _, h := range holes {
		for i, r := range outers {
			if inRing(interiorPoint(h), r) {
				parts[i] = append(parts[i], h)
				break
			}
		}
	}
	return parts
}

// interiorPoint returns a point just to the right of the first edge of a
// clockwise hole, which lies inside the hole and away from touching rings.
func interiorPoint(h geom.Path) geom.Point {
	a, b := h[0], h[1]
	dx, dy := b.X-a.X, b.Y-a.Y
	l := math.Hypot(dx, dy)
	if l == 0 {
		return a
	}
	const eps = 1e-6
	return geom.Point{X: (a.X+b.X)/2 + dy/l*eps, Y: (a.Y+b.Y)/2 - dx/l*eps}
}

// inRing is the even-odd ray casting test.
func inRing(p geom.Point, r geom.Path) bool {
	in := false
	for i, j := 0, len(r)-1; i < len(r); j, i = i, i+1 {
		if (r[i].Y > p.Y) != (r[j].Y > p.Y) &&
			p.X < (r[j].X-r[i].X)*(p.Y-r[i].Y)/(r[j].Y-r[i].Y)+r[i].X {
			in = !in
		}
	}
	return in
}
