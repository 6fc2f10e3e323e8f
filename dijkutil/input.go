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
	"encoding/json"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Deltares-research/Verkenning-2.0-sub001/design"
	"github.com/Deltares-research/Verkenning-2.0-sub001/geodesy"
	"github.com/ctessum/geom"
	"github.com/lnashier/viper"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ReadReferenceLine decodes a reference line from GeoJSON. The data can
// be a LineString geometry, a Feature or a FeatureCollection; in the last
// case the first feature is used. A MultiLineString is accepted if it
// holds a single line. The coordinates are returned as they are, in
// longitude and latitude.
func ReadReferenceLine(b []byte) ([]geom.Point, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(b, &head); err != nil {
		return nil, fmt.Errorf("dijkontwerp: decoding reference line: %v", err)
	}
	var g orb.Geometry
	switch head.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(b)
		if err != nil {
			return nil, fmt.Errorf("dijkontwerp: decoding reference line: %v", err)
		}
		if len(fc.Features) == 0 {
			return nil, fmt.Errorf("dijkontwerp: the reference line feature collection is empty")
		}
		g = fc.Features[0].Geometry
	case "Feature":
		f, err := geojson.UnmarshalFeature(b)
		if err != nil {
			return nil, fmt.Errorf("dijkontwerp: decoding reference line: %v", err)
		}
		g = f.Geometry
	default:
		gg, err := geojson.UnmarshalGeometry(b)
		if err != nil {
			return nil, fmt.Errorf("dijkontwerp: decoding reference line: %v", err)
		}
		g = gg.Geometry()
	}

	var ls orb.LineString
	switch t := g.(type) {
	case orb.LineString:
		ls = t
	case orb.MultiLineString:
		if len(t) != 1 {
			return nil, fmt.Errorf("dijkontwerp: the reference line must be a single line but has %d parts", len(t))
		}
		ls = t[0]
	default:
		return nil, fmt.Errorf("dijkontwerp: the reference line must be a LineString but is a %T", g)
	}
	o := make([]geom.Point, len(ls))
	for i, p := range ls {
		o[i] = geom.Point{X: p.Lon(), Y: p.Lat()}
	}
	return o, nil
}

// ToReferenceLine projects a reference line in longitude and latitude to
// the display frame of d and validates it.
func ToReferenceLine(d *design.Designer, lonLat []geom.Point) (design.ReferenceLine, error) {
	pts, err := d.Projector.Project(lonLat, geodesy.WGS84, geodesy.Display)
	if err != nil {
		return nil, fmt.Errorf("dijkontwerp: projecting reference line: %v", err)
	}
	ref := design.ReferenceLine(design.LineFromPoints(pts))
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	return ref, nil
}

// ReadProfile decodes a cross-section profile. Files with a .json
// extension hold an array of rows; others are TOML with a [[profiel]]
// table per row.
func ReadProfile(b []byte, ext string) (design.Profile, error) {
	if strings.EqualFold(ext, ".json") {
		var p design.Profile
		if err := json.Unmarshal(b, &p); err != nil {
			return nil, fmt.Errorf("dijkontwerp: decoding profile: %v", err)
		}
		return p, nil
	}
	var f struct {
		Profiel design.Profile `toml:"profiel"`
	}
	if _, err := toml.Decode(string(b), &f); err != nil {
		return nil, fmt.Errorf("dijkontwerp: decoding profile: %v", err)
	}
	return f.Profiel, nil
}

// readReferenceLine reads the ReferenceLine file named in cfg.
func readReferenceLine(cfg *viper.Viper, d *design.Designer) (design.ReferenceLine, error) {
	f, err := checkInputFile("ReferenceLine", cfg.GetString("ReferenceLine"))
	if err != nil {
		return nil, err
	}
	b, err := ioutil.ReadFile(f)
	if err != nil {
		return nil, fmt.Errorf("dijkontwerp: reading reference line: %v", err)
	}
	ll, err := ReadReferenceLine(b)
	if err != nil {
		return nil, err
	}
	return ToReferenceLine(d, ll)
}

// loadSession creates a design session from the ReferenceLine, Profile
// and Rivierzijde variables in cfg.
func loadSession(cfg *viper.Viper, d *design.Designer) (*design.Session, error) {
	ref, err := readReferenceLine(cfg, d)
	if err != nil {
		return nil, err
	}
	f, err := checkInputFile("Profile", cfg.GetString("Profile"))
	if err != nil {
		return nil, err
	}
	b, err := ioutil.ReadFile(f)
	if err != nil {
		return nil, fmt.Errorf("dijkontwerp: reading profile: %v", err)
	}
	profile, err := ReadProfile(b, filepath.Ext(f))
	if err != nil {
		return nil, err
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	side, err := design.ParseRivierzijde(cfg.GetString("Rivierzijde"))
	if err != nil {
		return nil, err
	}
	return design.NewSession(ref, profile, side), nil
}
