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
	"context"
	"database/sql"
	"fmt"
	"image"
	"math"
	"strings"
	"sync"

	"github.com/ctessum/geom"
	"github.com/golang/groupcache/lru"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// originShift is half the circumference of the web mercator world in meters.
const originShift = math.Pi * 6378137

// maxTilesPerQuery keeps each tile query below SQLite's variable limit.
const maxTilesPerQuery = 300

// Tile is a row of the tiles table of an MBTiles file.
type Tile struct {
	ZoomLevel  int64  `gorm:"column:zoom_level"`
	TileColumn int64  `gorm:"column:tile_column"`
	TileRow    int64  `gorm:"column:tile_row"`
	TileData   []byte `gorm:"column:tile_data"`
}

// TableName implements gorm's tabler interface.
func (Tile) TableName() string { return "tiles" }

type tileKey struct {
	x, y int64
}

// MBTiles serves ground elevations from terrain-RGB tiles stored in an
// MBTiles (SQLite) file. Elevations are read at the file's highest zoom
// level. Decoded tiles are kept in a least-recently-used cache.
type MBTiles struct {
	// FlipY indicates that tile rows are stored in TMS order, which is
	// what the MBTiles format prescribes.
	FlipY bool

	Log logrus.FieldLogger

	db   *gorm.DB
	zoom int64

	mu    sync.Mutex
	cache *lru.Cache
}

// OpenMBTiles opens the MBTiles file at path, keeping up to cacheTiles
// decoded tiles in memory.
func OpenMBTiles(path string, cacheTiles int, flipY bool) (*MBTiles, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("terrain: opening %s: %v", path, err)
	}
	return NewMBTiles(db, cacheTiles, flipY)
}

// NewMBTiles serves elevations from an open MBTiles database.
func NewMBTiles(db *gorm.DB, cacheTiles int, flipY bool) (*MBTiles, error) {
	var zoom sql.NullInt64
	if err := db.Model(&Tile{}).Select("MAX(zoom_level)").Row().Scan(&zoom); err != nil {
		return nil, fmt.Errorf("terrain: reading zoom levels: %v", err)
	}
	if !zoom.Valid {
		return nil, fmt.Errorf("terrain: the tiles table is empty")
	}
	return &MBTiles{
		FlipY: flipY,
		Log:   logrus.StandardLogger(),
		db:    db,
		zoom:  zoom.Int64,
		cache: lru.New(cacheTiles),
	}, nil
}

// Zoom returns the zoom level elevations are read at.
func (m *MBTiles) Zoom() int64 { return m.zoom }

// Close closes the database.
func (m *MBTiles) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// locate returns the tile holding web mercator point p and the position of
// p within that tile, as fractions of the tile size.
func (m *MBTiles) locate(p geom.Point) (tileKey, float64, float64, bool) {
	res := 2 * originShift / math.Exp2(float64(m.zoom))
	fx := (p.X + originShift) / res
	fy := (originShift - p.Y) / res
	n := math.Exp2(float64(m.zoom))
	if fx < 0 || fy < 0 || fx >= n || fy >= n {
		return tileKey{}, 0, 0, false
	}
	k := tileKey{x: int64(fx), y: int64(fy)}
	return k, fx - math.Floor(fx), fy - math.Floor(fy), true
}

func (m *MBTiles) row(y int64) int64 {
	if m.FlipY {
		return int64(math.Exp2(float64(m.zoom))) - 1 - y
	}
	return y
}

// QueryElevation implements ElevationService. All tiles needed for the
// batch are fetched with as few queries as possible. Points on missing
// tiles get NaN.
func (m *MBTiles) QueryElevation(ctx context.Context, pts []geom.Point) ([]float64, error) {
	type loc struct {
		k      tileKey
		fx, fy float64
		ok     bool
	}
	locs := make([]loc, len(pts))
	need := make(map[tileKey]struct{})
	for i, p := range pts {
		k, fx, fy, ok := m.locate(p)
		locs[i] = loc{k: k, fx: fx, fy: fy, ok: ok}
		if ok {
			need[k] = struct{}{}
		}
	}

	imgs, err := m.tiles(ctx, need)
	if err != nil {
		return nil, err
	}

	o := make([]float64, len(pts))
	missing := 0
	for i, l := range locs {
		img, ok := imgs[l.k]
		if !l.ok || !ok || img == nil {
			o[i] = math.NaN()
			missing++
			continue
		}
		b := img.Bounds()
		x := b.Min.X + int(l.fx*float64(b.Dx()))
		y := b.Min.Y + int(l.fy*float64(b.Dy()))
		o[i] = pixelElevation(img, x, y)
	}
	if missing > 0 {
		m.Log.WithFields(logrus.Fields{"missing": missing, "points": len(pts)}).Warn("terrain: points without elevation data")
	}
	return o, nil
}

// tiles returns decoded tiles for the given keys, from the cache where
// possible. Tiles that are absent from the file map to nil.
func (m *MBTiles) tiles(ctx context.Context, keys map[tileKey]struct{}) (map[tileKey]image.Image, error) {
	o := make(map[tileKey]image.Image, len(keys))
	var fetch []tileKey
	m.mu.Lock()
	for k := range keys {
		if v, ok := m.cache.Get(k); ok {
			o[k], _ = v.(image.Image)
			continue
		}
		fetch = append(fetch, k)
	}
	m.mu.Unlock()

	for start := 0; start < len(fetch); start += maxTilesPerQuery {
		end := start + maxTilesPerQuery
		if end > len(fetch) {
			end = len(fetch)
		}
		var (
			conditions []string
			args       []interface{}
		)
		for _, k := range fetch[start:end] {
			conditions = append(conditions, "(tile_column = ? AND tile_row = ? AND zoom_level = ?)")
			args = append(args, k.x, m.row(k.y), m.zoom)
		}
		var rows []Tile
		if err := m.db.WithContext(ctx).Where(strings.Join(conditions, " OR "), args...).Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("terrain: reading tiles: %v", err)
		}
		found := make(map[tileKey]image.Image, len(rows))
		for _, r := range rows {
			k := tileKey{x: r.TileColumn, y: m.row(r.TileRow)}
			img, err := decodeTile(r.TileData)
			if err != nil {
				m.Log.WithFields(logrus.Fields{"zoom": r.ZoomLevel, "column": r.TileColumn, "row": r.TileRow}).WithError(err).Warn("terrain: skipping tile")
				continue
			}
			found[k] = img
		}
		m.mu.Lock()
		for _, k := range fetch[start:end] {
			img := found[k]
			o[k] = img
			m.cache.Add(k, img)
		}
		m.mu.Unlock()
	}
	return o, nil
}
