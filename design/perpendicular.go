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

// Nearest is the closest point of a line to another point.
type Nearest struct {
	Point   geom.Point
	Segment int
	// T is the position of Point on the segment, from 0 at its start to
	// 1 at its end.
	T float64
	// Dist2 is the squared distance to Point.
	Dist2 float64
}

// NearestOnLine returns the point on line closest to p. On ties the first
// segment wins.
func NearestOnLine(line []geom.Point, p geom.Point) (Nearest, error) {
	if len(line) < 2 {
		return Nearest{}, ErrEmptyReferenceLine
	}
	best := Nearest{Dist2: math.Inf(1), Segment: -1}
	for i := 0; i < len(line)-1; i++ {
		a, b := line[i], line[i+1]
		dx, dy := b.X-a.X, b.Y-a.Y
		l2 := dx*dx + dy*dy
		t := 0.0
		if l2 > 0 {
			t = ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / l2
			t = math.Max(0, math.Min(1, t))
		}
		q := geom.Point{X: a.X + t*dx, Y: a.Y + t*dy}
		d2 := (p.X-q.X)*(p.X-q.X) + (p.Y-q.Y)*(p.Y-q.Y)
		if d2 < best.Dist2 {
			best = Nearest{Point: q, Segment: i, T: t, Dist2: d2}
		}
	}
	return best, nil
}

// Anchor selects where a perpendicular line is placed relative to the
// nearest point.
type Anchor int

const (
	// Centered puts the nearest point halfway along the perpendicular.
	Centered Anchor = iota
	// StartAt starts the perpendicular at the nearest point.
	StartAt
)

// PerpendicularLine returns a line of the given geodesic length, in
// meters, perpendicular to line at the point of line nearest to p. The
// perpendicular runs from the left to the right of line's direction.
func (d *Designer) PerpendicularLine(line []geom.Point, p geom.Point, length float64, anchor Anchor) ([]geom.Point, error) {
	if length <= 0 {
		return nil, fmt.Errorf("design: perpendicular length must be positive, got %g", length)
	}
	line = dedupe(line)
	near, err := NearestOnLine(line, p)
	if err != nil {
		return nil, err
	}
	a, b := line[near.Segment], line[near.Segment+1]
	l := math.Hypot(b.X-a.X, b.Y-a.Y)
	ux, uy := (b.X-a.X)/l, (b.Y-a.Y)/l
	nx, ny := uy, -ux

	q := near.Point
	ratio, err := d.Projector.ScaleRatio([]geom.Point{q, {X: q.X + nx, Y: q.Y + ny}})
	if err != nil {
		return nil, err
	}
	pl := length * ratio

	switch anchor {
	case Centered:
		return []geom.Point{
			{X: q.X - nx*pl/2, Y: q.Y - ny*pl/2},
			{X: q.X + nx*pl/2, Y: q.Y + ny*pl/2},
		}, nil
	case StartAt:
		return []geom.Point{q, {X: q.X + nx*pl, Y: q.Y + ny*pl}}, nil
	default:
		return nil, fmt.Errorf("design: unknown anchor %d", anchor)
	}
}
