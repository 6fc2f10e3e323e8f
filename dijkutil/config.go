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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Deltares-research/Verkenning-2.0-sub001/cost"
	"github.com/Deltares-research/Verkenning-2.0-sub001/design"
	"github.com/Deltares-research/Verkenning-2.0-sub001/geodesy"
	"github.com/Deltares-research/Verkenning-2.0-sub001/terrain"
	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
)

// checkOutputFile expands any environment variables in f and makes sure
// that its directory exists. An empty f means no output is wanted.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", nil
	}
	f = os.ExpandEnv(f)
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("dijkontwerp: the output directory doesn't exist: %v", err)
	}
	return f, nil
}

// checkInputFile expands any environment variables in f and makes sure
// that it is specified.
func checkInputFile(name, f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf("you need to specify the %s configuration variable (for example: %s=\"dijk.geojson\")", name, name)
	}
	return os.ExpandEnv(f), nil
}

// getFloat64 returns a numeric configuration variable, reporting values
// that cannot be converted instead of treating them as zero.
func getFloat64(cfg *viper.Viper, name string) (float64, error) {
	v, err := cast.ToFloat64E(cfg.Get(name))
	if err != nil {
		return 0, fmt.Errorf("dijkontwerp: the %s configuration variable must be a number: %v", name, err)
	}
	return v, nil
}

// DesignerConfig creates a designer from a viper configuration. The
// projections are loaded and the ground elevation service is opened.
func DesignerConfig(cfg *viper.Viper) (*design.Designer, error) {
	gridSize, err := getFloat64(cfg, "GridSize")
	if err != nil {
		return nil, err
	}
	if gridSize <= 0 {
		return nil, fmt.Errorf("dijkontwerp: GridSize must be positive but is %g", gridSize)
	}
	alpha, err := getFloat64(cfg, "Alpha")
	if err != nil {
		return nil, err
	}
	if alpha <= 0 {
		return nil, fmt.Errorf("dijkontwerp: Alpha must be positive but is %g", alpha)
	}
	p := geodesy.NewProjector(cfg.GetString("DisplayProj"), cfg.GetString("MetricProj"))
	if err := p.Load(); err != nil {
		return nil, fmt.Errorf("dijkontwerp: the following error occured while parsing "+
			"the DisplayProj and MetricProj variables: %v", err)
	}
	ground, err := groundService(cfg)
	if err != nil {
		return nil, err
	}
	return &design.Designer{
		Projector: p,
		Ground:    ground,
		GridSize:  gridSize,
		Alpha:     alpha,
		Log:       logrus.StandardLogger(),
	}, nil
}

// groundService opens the terrain tiles named by TerrainMBTiles, or
// returns a flat surface at GroundElevation if there are none.
func groundService(cfg *viper.Viper) (terrain.ElevationService, error) {
	path := os.ExpandEnv(cfg.GetString("TerrainMBTiles"))
	if path == "" {
		z, err := getFloat64(cfg, "GroundElevation")
		if err != nil {
			return nil, err
		}
		return terrain.Constant(z), nil
	}
	cacheTiles := cfg.GetInt("TerrainCacheTiles")
	if cacheTiles < 0 {
		return nil, fmt.Errorf("dijkontwerp: TerrainCacheTiles must not be negative but is %d", cacheTiles)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("dijkontwerp: opening TerrainMBTiles: %v", err)
	}
	m, err := terrain.OpenMBTiles(path, cacheTiles, cfg.GetBool("TerrainFlipY"))
	if err != nil {
		return nil, fmt.Errorf("dijkontwerp: opening TerrainMBTiles: %v", err)
	}
	m.Log = logrus.WithField("terrain", filepath.Base(path))
	return m, nil
}

// closeGround closes the ground service of d if it needs closing.
func closeGround(d *design.Designer) {
	if c, ok := d.Ground.(io.Closer); ok {
		if err := c.Close(); err != nil {
			logrus.WithError(err).Warn("dijkontwerp: closing ground elevation service")
		}
	}
}

// CostConfig creates a cost client and request parameters from a viper
// configuration. The design polygons of the request are left empty.
func CostConfig(cfg *viper.Viper) (*cost.Client, cost.Request, error) {
	apiURL := os.ExpandEnv(cfg.GetString("Cost.APIURL"))
	if apiURL == "" {
		return nil, cost.Request{}, fmt.Errorf("you need to specify the Cost.APIURL configuration variable")
	}
	if !strings.HasSuffix(apiURL, "/") {
		apiURL += "/"
	}
	req := cost.Request{
		Complexity:   cfg.GetString("Cost.Complexity"),
		RoadSurface:  cfg.GetFloat64("Cost.RoadSurface"),
		NumberHouses: cfg.GetInt("Cost.NumberHouses"),
	}
	if req.Complexity == "" {
		return nil, req, fmt.Errorf("you need to specify the Cost.Complexity configuration variable")
	}
	if req.RoadSurface < 0 || req.NumberHouses < 0 {
		return nil, req, fmt.Errorf("dijkontwerp: Cost.RoadSurface and Cost.NumberHouses must not be negative")
	}
	c := cost.NewClient(apiURL)
	c.Log = logrus.StandardLogger()
	return c, req, nil
}
