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
	"context"
	"fmt"
	"math"

	"github.com/Deltares-research/Verkenning-2.0-sub001/geodesy"
	"github.com/ctessum/geom"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// arcStep is the largest angle between two vertices of a round join.
const arcStep = 10 * math.Pi / 180

// OffsetDistance converts a profile distance to a planar offset distance,
// where positive offsets lie to the right of the drawing direction. With
// the river on the right ("rechts") positive profile distances are offset
// to the left, and with the river on the left to the right.
func OffsetDistance(afstand float64, side Rivierzijde) float64 {
	if afstand == 0 {
		return 0
	}
	if side == Rechts {
		return -afstand
	}
	return afstand
}

// OffsetCurve returns the parallel curve of line at planar distance d, with
// positive d to the right of the direction of travel. Corners on the outside
// of a turn are joined with circular arcs of radius |d|; corners on the
// inside are joined where the neighbouring offset segments intersect.
// Parts of the joined curve that come closer than |d| to line, and loops
// where it crosses itself, are cut out. A zero distance returns a copy of
// the line.
func OffsetCurve(line []geom.Point, d float64) ([]geom.Point, error) {
	pts := dedupe(line)
	if len(pts) < 2 {
		return nil, fmt.Errorf("design: cannot offset a line with %d distinct vertices", len(pts))
	}
	if d == 0 {
		return pts, nil
	}

	n := len(pts) - 1
	dirs := make([]geom.Point, n)
	for i := 0; i < n; i++ {
		dx, dy := pts[i+1].X-pts[i].X, pts[i+1].Y-pts[i].Y
		l := math.Hypot(dx, dy)
		dirs[i] = geom.Point{X: dx / l, Y: dy / l}
	}
	// shift returns the offset of the segment with direction u.
	shift := func(u geom.Point) geom.Point { return geom.Point{X: u.Y * d, Y: -u.X * d} }
	add := func(p, v geom.Point) geom.Point { return geom.Point{X: p.X + v.X, Y: p.Y + v.Y} }

	o := []geom.Point{add(pts[0], shift(dirs[0]))}
	for i := 1; i < n; i++ {
		u0, u1 := dirs[i-1], dirs[i]
		v0, v1 := shift(u0), shift(u1)
		turn := u0.X*u1.Y - u0.Y*u1.X
		dot := u0.X*u1.X + u0.Y*u1.Y
		end := add(pts[i], v0)
		start := add(pts[i], v1)
		switch {
		case math.Abs(turn) < 1e-12 && dot > 0:
			o = append(o, end)
		case d*turn > 0 || math.Abs(turn) < 1e-12:
			// Outside of the turn, or a reversal.
			sweep := math.Atan2(v0.X*v1.Y-v0.Y*v1.X, v0.X*v1.X+v0.Y*v1.Y)
			if math.Abs(turn) < 1e-12 {
				sweep = math.Copysign(math.Pi, d)
			}
			o = append(o, end)
			o = append(o, arc(pts[i], v0, sweep)...)
			o = append(o, start)
		default:
			p, ok := intersect(end, u0, start, u1)
			if !ok {
				p = end
			}
			o = append(o, p)
		}
	}
	o = append(o, add(pts[n], shift(dirs[n-1])))
	return clipLoops(dropNear(o, pts, math.Abs(d))), nil
}

// dropNear removes the inner vertices of the raw offset o that lie closer
// than d to line. These are left by joins at segments shorter than d,
// where the raw offset doubles back towards the line.
func dropNear(o, line []geom.Point, d float64) []geom.Point {
	eps := 1e-6 * math.Max(1, d)
	min2 := (d - eps) * (d - eps)
	kept := []geom.Point{o[0]}
	for _, p := range o[1 : len(o)-1] {
		nr, err := NearestOnLine(line, p)
		if err != nil || nr.Dist2 < min2 {
			continue
		}
		kept = append(kept, p)
	}
	return append(kept, o[len(o)-1])
}

// clipLoops cuts the loops out of a self-intersecting line. Each segment
// is joined to the last later segment it crosses, at the crossing.
func clipLoops(o []geom.Point) []geom.Point {
	for i := 0; i+1 < len(o); i++ {
		for j := len(o) - 2; j > i+1; j-- {
			x, ok := segmentCrossing(o[i], o[i+1], o[j], o[j+1])
			if !ok {
				continue
			}
			o = append(o[:i+1], append([]geom.Point{x}, o[j+1:]...)...)
			break
		}
	}
	return dedupe(o)
}

// segmentCrossing returns the point where segments ab and cd cross.
func segmentCrossing(a, b, c, e geom.Point) (geom.Point, bool) {
	if math.Max(a.X, b.X) < math.Min(c.X, e.X) || math.Max(c.X, e.X) < math.Min(a.X, b.X) ||
		math.Max(a.Y, b.Y) < math.Min(c.Y, e.Y) || math.Max(c.Y, e.Y) < math.Min(a.Y, b.Y) {
		return geom.Point{}, false
	}
	rx, ry := b.X-a.X, b.Y-a.Y
	sx, sy := e.X-c.X, e.Y-c.Y
	den := rx*sy - ry*sx
	if math.Abs(den) < 1e-12 {
		return geom.Point{}, false
	}
	t := ((c.X-a.X)*sy - (c.Y-a.Y)*sx) / den
	u := ((c.X-a.X)*ry - (c.Y-a.Y)*rx) / den
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return geom.Point{}, false
	}
	return geom.Point{X: a.X + t*rx, Y: a.Y + t*ry}, true
}

// arc returns the intermediate points of a circular arc around c that
// starts at c+v and sweeps through the given angle.
func arc(c, v geom.Point, sweep float64) []geom.Point {
	steps := int(math.Ceil(math.Abs(sweep) / arcStep))
	if steps < 2 {
		return nil
	}
	o := make([]geom.Point, 0, steps-1)
	for k := 1; k < steps; k++ {
		a := sweep * float64(k) / float64(steps)
		sin, cos := math.Sincos(a)
		o = append(o, geom.Point{
			X: c.X + v.X*cos - v.Y*sin,
			Y: c.Y + v.X*sin + v.Y*cos,
		})
	}
	return o
}

// intersect returns the intersection of the line through p with direction
// u and the line through q with direction w.
func intersect(p, u, q, w geom.Point) (geom.Point, bool) {
	den := u.X*w.Y - u.Y*w.X
	if math.Abs(den) < 1e-12 {
		return geom.Point{}, false
	}
	t := ((q.X-p.X)*w.Y - (q.Y-p.Y)*w.X) / den
	return geom.Point{X: p.X + t*u.X, Y: p.Y + t*u.Y}, true
}

// dedupe returns a copy of line without consecutive duplicate vertices.
func dedupe(line []geom.Point) []geom.Point {
	o := make([]geom.Point, 0, len(line))
	for i, p := range line {
		if i > 0 && p == o[len(o)-1] {
			continue
		}
		o = append(o, p)
	}
	return o
}

// offsetRow generates the offset line of one profile row.
func (d *Designer) offsetRow(metric []geom.Point, row ProfileRow, side Rivierzijde) (Line, error) {
	od := OffsetDistance(*row.Afstand, side)
	off, err := OffsetCurve(metric, od)
	if err != nil {
		return nil, err
	}
	disp, err := d.Projector.Project(off, geodesy.Metric, geodesy.Display)
	if err != nil {
		return nil, err
	}
	return LineFromPoints(disp).WithZ(row.Hoogte), nil
}

// Offsets generates an offset line for every profile row with a distance.
// Rows are processed concurrently. A row that fails is logged and left out;
// only when no row succeeds is an error returned. The result is sorted by
// distance.
func (d *Designer) Offsets(ctx context.Context, ref ReferenceLine, profile Profile, side Rivierzijde) (OffsetSet, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	if err := d.Projector.Load(); err != nil {
		return nil, err
	}
	metric, err := d.Projector.Project(Line(ref).Points(), geodesy.Display, geodesy.Metric)
	if err != nil {
		return nil, fmt.Errorf("design: projecting reference line to the metric frame: %w", err)
	}

	log := d.log()
	results := make([]*OffsetGeometry, len(profile))
	g, ctx := errgroup.WithContext(ctx)
	for i, row := range profile {
		i, row := i, row
		fields := logrus.Fields{"locatie": row.Name()}
		if row.Afstand == nil {
			log.WithFields(fields).Warn("skipping profile row without afstand")
			continue
		}
		fields["afstand"] = *row.Afstand
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			line, err := d.offsetRow(metric, row, side)
			if err != nil {
				log.WithFields(fields).WithError(err).Warn("skipping profile row")
				return nil
			}
			results[i] = &OffsetGeometry{Distance: Distance(*row.Afstand), Line: line}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var o OffsetSet
	for _, r := range results {
		if r != nil {
			o = append(o, *r)
		}
	}
	if len(o) == 0 {
		return nil, ErrNoOffsets
	}
	o.Sort()
	return o, nil
}
