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
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/Deltares-research/Verkenning-2.0-sub001/design"
	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLayers(t *testing.T) *Layers {
	near := design.OffsetGeometry{Distance: -10, Line: design.Line{
		design.XYZ(5.85, 52.0, 2), design.XYZ(5.86, 52.0, 2),
	}}
	mid := design.OffsetGeometry{Distance: 0, Line: design.Line{
		design.XYZ(5.85, 52.0001, 6), design.XYZ(5.86, 52.0001, 6),
	}}
	far := design.OffsetGeometry{Distance: 10, Line: design.Line{
		design.XYZ(5.85, 52.0002, 2), design.XYZ(5.86, 52.0002, 2),
	}}
	set := design.OffsetSet{near, mid, far}
	strips, err := design.BuildStrips(set)
	require.NoError(t, err)
	return &Layers{
		Name:    "dijkvak 1",
		Offsets: set,
		Strips:  strips,
		Footprint: []geom.Polygon{{{
			{X: 5.85, Y: 52}, {X: 5.86, Y: 52}, {X: 5.86, Y: 52.0002}, {X: 5.85, Y: 52.0002}, {X: 5.85, Y: 52},
		}}},
	}
}

func TestWriteKML(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, WriteKML(&b, testLayers(t)))
	s := b.String()

	assert.Contains(t, s, "<kml")
	assert.Equal(t, 3, strings.Count(s, "<Folder>"))
	assert.Equal(t, 2+3+1, strings.Count(s, "<Placemark>"))
	assert.Contains(t, s, "<name>dijkvak 1</name>")
	assert.Contains(t, s, "<name>-10 tot 0</name>")
	assert.Contains(t, s, "<name>0 tot 10</name>")
	assert.Contains(t, s, "<altitudeMode>absolute</altitudeMode>")
	assert.Contains(t, s, "<altitudeMode>clampToGround</altitudeMode>")
	assert.Equal(t, 3, strings.Count(s, "<LineString>"))
}

func TestWriteShp(t *testing.T) {
	dir := t.TempDir()
	files, err := WriteShp(filepath.Join(dir, "ontwerp.shp"), testLayers(t))
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "ontwerp_dijkvakken.shp"),
		filepath.Join(dir, "ontwerp_ruimtebeslag.shp"),
	}, files)

	for _, f := range files {
		_, err := os.Stat(strings.TrimSuffix(f, ".shp") + ".prj")
		assert.NoError(t, err)
	}

	d, err := shp.NewDecoder(files[0])
	require.NoError(t, err)
	defer d.Close()
	want := [][2]float64{{-10, 0}, {0, 10}}
	var i int
	for {
		g, fields, more := d.DecodeRowFields("van", "tot")
		if !more {
			break
		}
		require.Less(t, i, len(want))
		_, ok := g.(geom.Polygonal)
		assert.True(t, ok, "strip %d is a %T", i, g)
		for j, name := range []string{"van", "tot"} {
			v, err := strconv.ParseFloat(strings.TrimSpace(fields[name]), 64)
			require.NoError(t, err)
			assert.Equal(t, want[i][j], v, "%s of strip %d", name, i)
		}
		i++
	}
	require.NoError(t, d.Error())
	assert.Equal(t, len(want), i)

	fd, err := shp.NewDecoder(files[1])
	require.NoError(t, err)
	defer fd.Close()
	_, fields, more := fd.DecodeRowFields("deel", "opp_m2")
	require.True(t, more)
	area, err := strconv.ParseFloat(strings.TrimSpace(fields["opp_m2"]), 64)
	require.NoError(t, err)
	// About 685 m by 22 m.
	assert.InDelta(t, 15250, area, 400)
}

func TestWriteShpWithoutFootprint(t *testing.T) {
	l := testLayers(t)
	l.Footprint = nil
	files, err := WriteShp(filepath.Join(t.TempDir(), "ontwerp"), l)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}
