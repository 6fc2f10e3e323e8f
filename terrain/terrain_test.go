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

package terrain

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"math"
	"path/filepath"
	"testing"

	"github.com/ctessum/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestRGBElevation(t *testing.T) {
	// The lowest and a known value of the terrain-RGB encoding.
	assert.Equal(t, -10000.0, RGBElevation(0, 0, 0))
	assert.InDelta(t, 0.0, RGBElevation(1, 134, 160), 1e-9)

	for _, z := range []float64{-6.5, 0, 3.2, 12.9, 322.4} {
		c := ElevationRGB(z)
		assert.InDelta(t, z, RGBElevation(c.R, c.G, c.B), 0.05, "elevation %g", z)
	}
}

func TestConstant(t *testing.T) {
	z, err := Constant(2.5).QueryElevation(context.Background(), []geom.Point{{}, {X: 1}})
	require.NoError(t, err)
	assert.Equal(t, []float64{2.5, 2.5}, z)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Constant(1).QueryElevation(ctx, []geom.Point{{}})
	assert.Error(t, err)
}

func TestSurfaceFunc(t *testing.T) {
	f := SurfaceFunc(func(x, y float64) float64 { return x + 2*y })
	z, err := f.QueryElevation(context.Background(), []geom.Point{{X: 1, Y: 1}, {X: 2, Y: 0}})
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 2}, z)
}

// tilePNG returns a 256x256 terrain-RGB tile. The left half is at zLeft and
// the right half at zRight.
func tilePNG(t *testing.T, zLeft, zRight float64) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 256, 256))
	l, r := ElevationRGB(zLeft), ElevationRGB(zRight)
	for y := 0; y < 256; y++ {
		for x := 0; x < 256; x++ {
			if x < 128 {
				img.SetRGBA(x, y, l)
			} else {
				img.SetRGBA(x, y, r)
			}
		}
	}
	var b bytes.Buffer
	require.NoError(t, png.Encode(&b, img))
	return b.Bytes()
}

func TestMBTiles(t *testing.T) {
	const zoom = 14
	path := filepath.Join(t.TempDir(), "terrain.mbtiles")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Tile{}))

	// A point near Nijmegen in web mercator meters.
	p := geom.Point{X: 652000, Y: 6800000}
	res := 2 * originShift / math.Exp2(zoom)
	tx := int64((p.X + originShift) / res)
	ty := int64((originShift - p.Y) / res)
	tmsRow := int64(math.Exp2(zoom)) - 1 - ty
	require.NoError(t, db.Create(&Tile{ZoomLevel: zoom, TileColumn: tx, TileRow: tmsRow, TileData: tilePNG(t, 4.2, 7.5)}).Error)
	// A lower zoom level that must be ignored.
	require.NoError(t, db.Create(&Tile{ZoomLevel: 10, TileColumn: 0, TileRow: 0, TileData: tilePNG(t, 100, 100)}).Error)

	m, err := NewMBTiles(db, 16, true)
	require.NoError(t, err)
	assert.Equal(t, int64(zoom), m.Zoom())

	left := geom.Point{X: float64(tx)*res - originShift + res/4, Y: originShift - float64(ty)*res - res/2}
	right := geom.Point{X: float64(tx)*res - originShift + 3*res/4, Y: left.Y}
	outside := geom.Point{X: left.X + 2*res, Y: left.Y}

	z, err := m.QueryElevation(context.Background(), []geom.Point{left, right, outside})
	require.NoError(t, err)
	require.Len(t, z, 3)
	assert.InDelta(t, 4.2, z[0], 0.05)
	assert.InDelta(t, 7.5, z[1], 0.05)
	assert.True(t, NoData(z[2]), "a point on a missing tile should have no data")

	// The second query is served from the cache.
	z, err = m.QueryElevation(context.Background(), []geom.Point{right})
	require.NoError(t, err)
	assert.InDelta(t, 7.5, z[0], 0.05)

	require.NoError(t, m.Close())
}

func TestMBTilesXYZRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xyz.mbtiles")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Tile{}))
	// At zoom 1 the tile at column 1, row 0 (XYZ) covers the north-east.
	require.NoError(t, db.Create(&Tile{ZoomLevel: 1, TileColumn: 1, TileRow: 0, TileData: tilePNG(t, 11, 11)}).Error)

	m, err := NewMBTiles(db, 4, false)
	require.NoError(t, err)
	z, err := m.QueryElevation(context.Background(), []geom.Point{{X: 1e6, Y: 1e6}, {X: 1e6, Y: -1e6}})
	require.NoError(t, err)
	assert.InDelta(t, 11, z[0], 0.05)
	assert.True(t, NoData(z[1]))
}

func TestMBTilesEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.mbtiles")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Tile{}))
	_, err = NewMBTiles(db, 4, true)
	assert.Error(t, err)
}
