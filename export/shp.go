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

package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Deltares-research/Verkenning-2.0-sub001/geodesy"
	"github.com/ctessum/geom/encoding/shp"
	goshp "github.com/jonas-p/go-shp"
)

// wgs84 is the projection definition written next to every shapefile.
const wgs84 = `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137,298.257223563]],PRIMEM["Greenwich",0],UNIT["Degree",0.017453292519943295]]`

// WriteShp writes the strip outlines to fileBase+"_dijkvakken.shp" with
// their start and end distances in the "van" and "tot" fields, and the
// above-ground footprint to fileBase+"_ruimtebeslag.shp". It returns the
// names of the files written.
func WriteShp(fileBase string, l *Layers) ([]string, error) {
	fileBase = strings.TrimSuffix(fileBase, filepath.Ext(fileBase))

	stripsFile := fileBase + "_dijkvakken.shp"
	e, err := shp.NewEncoderFromFields(stripsFile, goshp.POLYGON,
		goshp.FloatField("van", 14, 3),
		goshp.FloatField("tot", 14, 3),
	)
	if err != nil {
		return nil, fmt.Errorf("export: creating strip shapefile: %w", err)
	}
	for _, s := range l.Strips {
		if err = e.EncodeFields(s.Footprint2D, float64(s.From), float64(s.To)); err != nil {
			e.Close()
			return nil, fmt.Errorf("export: writing strip shapefile: %w", err)
		}
	}
	e.Close()
	if err := writePrj(stripsFile); err != nil {
		return nil, err
	}
	files := []string{stripsFile}

	if len(l.Footprint) == 0 {
		return files, nil
	}
	footprintFile := fileBase + "_ruimtebeslag.shp"
	e, err = shp.NewEncoderFromFields(footprintFile, goshp.POLYGON,
		goshp.NumberField("deel", 10),
		goshp.FloatField("opp_m2", 14, 2),
	)
	if err != nil {
		return nil, fmt.Errorf("export: creating footprint shapefile: %w", err)
	}
	for i, p := range l.Footprint {
		if err = e.EncodeFields(p, i+1, geodesy.SphericalArea(p)); err != nil {
			e.Close()
			return nil, fmt.Errorf("export: writing footprint shapefile: %w", err)
		}
	}
	e.Close()
	if err := writePrj(footprintFile); err != nil {
		return nil, err
	}
	return append(files, footprintFile), nil
}

func writePrj(shpFile string) error {
	f, err := os.Create(strings.TrimSuffix(shpFile, ".shp") + ".prj")
	if err != nil {
		return fmt.Errorf("export: creating prj file: %w", err)
	}
	fmt.Fprint(f, wgs84)
	return f.Close()
}
