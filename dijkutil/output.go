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

package dijkutil

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/Deltares-research/Verkenning-2.0-sub001/cost"
	"github.com/Deltares-research/Verkenning-2.0-sub001/design"
	"github.com/Deltares-research/Verkenning-2.0-sub001/export"
	"github.com/Deltares-research/Verkenning-2.0-sub001/geodesy"
	"github.com/Deltares-research/Verkenning-2.0-sub001/volume"
	"github.com/ctessum/geom"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func printVolumes(cmd *cobra.Command, v *volume.Result) {
	r := v.Display()
	cmd.Printf("ophoging: %.2f m3\n", r.FillVolume)
	cmd.Printf("ontgraving: %.2f m3\n", r.ExcavationVolume)
	cmd.Printf("totaal: %.2f m3\n", r.TotalVolumeDifference)
	cmd.Printf("ruimtebeslag: %.2f m2\n", r.FootprintArea)
}

// Layers returns the design of s in WGS84 for export.
func Layers(d *design.Designer, s *design.Session) (*export.Layers, error) {
	g, err := d.ProjectGeometry(s.Geometry(), geodesy.WGS84)
	if err != nil {
		return nil, fmt.Errorf("dijkontwerp: projecting design: %v", err)
	}
	l := &export.Layers{
		Name:    s.ID.String(),
		Offsets: g.Offsets,
		Strips:  g.Strips,
	}
	if s.Volumes != nil {
		l.Footprint, err = d.ProjectPolygons(s.Volumes.Footprint, geodesy.WGS84)
		if err != nil {
			return nil, fmt.Errorf("dijkontwerp: projecting footprint: %v", err)
		}
	}
	return l, nil
}

// WriteOutputs writes the design of s to a KML file and shapefiles. Empty
// file names are skipped.
func WriteOutputs(d *design.Designer, s *design.Session, kmlFile, shpFile string) error {
	if kmlFile == "" && shpFile == "" {
		return nil
	}
	l, err := Layers(d, s)
	if err != nil {
		return err
	}
	if kmlFile != "" {
		f, err := os.Create(kmlFile)
		if err != nil {
			return fmt.Errorf("dijkontwerp: creating KML file: %v", err)
		}
		if err := export.WriteKML(f, l); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		logrus.WithField("file", kmlFile).Info("dijkontwerp: wrote KML")
	}
	if shpFile != "" {
		files, err := export.WriteShp(shpFile, l)
		if err != nil {
			return err
		}
		logrus.WithField("files", files).Info("dijkontwerp: wrote shapefiles")
	}
	return nil
}

// CrossSection samples the ground along a line of the given length
// perpendicular to ref, centered on the point of ref nearest to lon, lat.
func CrossSection(ctx context.Context, d *design.Designer, ref design.ReferenceLine, lon, lat, length, interval float64) ([]design.ProfilePoint, error) {
	p, err := d.Projector.ProjectPoint(geom.Point{X: lon, Y: lat}, geodesy.WGS84, geodesy.Display)
	if err != nil {
		return nil, fmt.Errorf("dijkontwerp: projecting cross-section location: %v", err)
	}
	perp, err := d.PerpendicularLine(design.Line(ref).Points(), p, length, design.Centered)
	if err != nil {
		return nil, err
	}
	return d.CrossSection(ctx, design.LineFromPoints(perp), interval)
}

// writeCrossSection writes the distance and elevation of each point as
// CSV.
func writeCrossSection(w io.Writer, pts []design.ProfilePoint) error {
	cw := csv.NewWriter(w)
	cw.Write([]string{"afstand", "hoogte"})
	for _, p := range pts {
		z := ""
		if p.Ground {
			z = strconv.FormatFloat(p.Z, 'f', 2, 64)
		}
		cw.Write([]string{strconv.FormatFloat(p.M, 'f', 2, 64), z})
	}
	cw.Flush()
	return cw.Error()
}

// Cost builds the geometry of s and requests its cost. The strip outlines
// are sent as the 3D design polygons.
func Cost(ctx context.Context, d *design.Designer, c *cost.Client, s *design.Session, req cost.Request) (cost.Breakdown, error) {
	g, err := d.BuildGeometry(ctx, s.ReferenceLine, s.Profile, s.Rivierzijde)
	if err != nil {
		return nil, err
	}
	ll, err := d.ProjectGeometry(g, geodesy.WGS84)
	if err != nil {
		return nil, fmt.Errorf("dijkontwerp: projecting design: %v", err)
	}
	req.Polygons = CostPolygons(ll.Strips)
	return c.Calculate(ctx, req)
}

// CostPolygons converts strip outlines in WGS84 to cost request rings.
func CostPolygons(strips []design.Strip) []cost.Ring {
	o := make([]cost.Ring, len(strips))
	for i, s := range strips {
		r := make(cost.Ring, len(s.Footprint3D))
		for j, c := range s.Footprint3D {
			r[j] = [3]float64{c.X, c.Y, c.Z}
		}
		o[i] = r
	}
	return o
}
