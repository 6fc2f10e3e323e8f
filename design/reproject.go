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
	"github.com/Deltares-research/Verkenning-2.0-sub001/geodesy"
	"github.com/ctessum/geom"
)

// ProjectLine returns l transformed from the display frame to frame to.
// Elevations and measures are kept.
func (d *Designer) ProjectLine(l Line, to geodesy.Frame) (Line, error) {
	pts, err := d.Projector.Project(l.Points(), geodesy.Display, to)
	if err != nil {
		return nil, err
	}
	o := make(Line, len(l))
	for i, c := range l {
		c.Point = pts[i]
		o[i] = c
	}
	return o, nil
}

// ProjectPolygons returns the display frame polygons ps in frame to.
func (d *Designer) ProjectPolygons(ps []geom.Polygon, to geodesy.Frame) ([]geom.Polygon, error) {
	o := make([]geom.Polygon, len(ps))
	for i, p := range ps {
		o[i] = make(geom.Polygon, len(p))
		for j, ring := range p {
			r, err := d.Projector.Project(ring, geodesy.Display, to)
			if err != nil {
				return nil, err
			}
			o[i][j] = r
		}
	}
	return o, nil
}

// ProjectGeometry returns a copy of the offsets and strips of g in frame
// to. The mesh is not copied.
func (d *Designer) ProjectGeometry(g *Geometry, to geodesy.Frame) (*Geometry, error) {
	o := &Geometry{
		Offsets: make(OffsetSet, len(g.Offsets)),
		Strips:  make([]Strip, len(g.Strips)),
	}
	for i, og := range g.Offsets {
		l, err := d.ProjectLine(og.Line, to)
		if err != nil {
			return nil, err
		}
		o.Offsets[i] = OffsetGeometry{Distance: og.Distance, Line: l}
	}
	for i, s := range g.Strips {
		fp, err := d.ProjectLine(s.Footprint3D, to)
		if err != nil {
			return nil, err
		}
		ps := Strip{
			From:        s.From,
			To:          s.To,
			Footprint3D: fp,
			Footprint2D: geom.Polygon{geom.Path(fp.Points())},
			Quads:       make([]Quad, len(s.Quads)),
		}
		for j, q := range s.Quads {
			l, err := d.ProjectLine(q[:], to)
			if err != nil {
				return nil, err
			}
			copy(ps.Quads[j][:], l)
		}
		o.Strips[i] = ps
	}
	return o, nil
}
