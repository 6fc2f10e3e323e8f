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

// Package export writes dike designs to KML and shapefiles. All geometry
// passed to this package must be in WGS84 longitude and latitude.
package export

import (
	"fmt"
	"io"

	"github.com/Deltares-research/Verkenning-2.0-sub001/design"
	"github.com/ctessum/geom"
	"github.com/twpayne/go-kml"
)

// Layers holds the parts of a design to export.
type Layers struct {
	Name string

	Offsets design.OffsetSet
	Strips  []design.Strip

	// Footprint is the area where the design lies above the ground.
	Footprint []geom.Polygon
}

func coordinates(l design.Line) []kml.Coordinate {
	o := make([]kml.Coordinate, len(l))
	for i, c := range l {
		o[i] = kml.Coordinate{Lon: c.X, Lat: c.Y, Alt: c.Z}
	}
	return o
}

func flat(p geom.Path) []kml.Coordinate {
	o := make([]kml.Coordinate, len(p))
	for i, c := range p {
		o[i] = kml.Coordinate{Lon: c.X, Lat: c.Y}
	}
	return o
}

// WriteKML writes the design as a KML document with a folder per layer.
// Strips are written as 3D polygons at absolute altitude and offset lines
// as 3D line strings.
func WriteKML(w io.Writer, l *Layers) error {
	strips := kml.Folder(kml.Name("Dijkvakken"))
	for _, s := range l.Strips {
		strips.Add(kml.Placemark(
			kml.Name(fmt.Sprintf("%g tot %g", s.From, s.To)),
			kml.Polygon(
				kml.AltitudeMode(kml.AltitudeModeAbsolute),
				kml.OuterBoundaryIs(kml.LinearRing(kml.Coordinates(coordinates(s.Footprint3D)...))),
			),
		))
	}

	offsets := kml.Folder(kml.Name("Hulplijnen"))
	for _, og := range l.Offsets {
		offsets.Add(kml.Placemark(
			kml.Name(fmt.Sprintf("%g", og.Distance)),
			kml.LineString(
				kml.AltitudeMode(kml.AltitudeModeAbsolute),
				kml.Coordinates(coordinates(og.Line)...),
			),
		))
	}

	footprint := kml.Folder(kml.Name("Ruimtebeslag"))
	for i, p := range l.Footprint {
		if len(p) == 0 {
			continue
		}
		poly := kml.Polygon(
			kml.AltitudeMode(kml.AltitudeModeClampToGround),
			kml.OuterBoundaryIs(kml.LinearRing(kml.Coordinates(flat(p[0])...))),
		)
		for _, hole := range p[1:] {
			poly.Add(kml.InnerBoundaryIs(kml.LinearRing(kml.Coordinates(flat(hole)...))))
		}
		footprint.Add(kml.Placemark(kml.Name(fmt.Sprintf("deel %d", i+1)), poly))
	}

	k := kml.KML(kml.Document(kml.Name(l.Name), strips, offsets, footprint))
	if err := k.WriteIndent(w, "", "  "); err != nil {
		return fmt.Errorf("export: writing KML: %w", err)
	}
	return nil
}
