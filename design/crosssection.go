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
	"context"
	"fmt"

	"github.com/Deltares-research/Verkenning-2.0-sub001/terrain"
)

// ProfilePoint is a ground elevation sample along a line.
type ProfilePoint struct {
	Coord
	// Ground is false where the ground has no elevation data.
	Ground bool
}

// CrossSection samples the ground elevation every interval meters along
// line. The measure of each point is its distance along the line. All
// points are queried in a single batch.
func (d *Designer) CrossSection(ctx context.Context, line Line, interval float64) ([]ProfilePoint, error) {
	pts := line.Points()
	stations, err := d.StationsAlongLine(pts, interval)
	if err != nil {
		return nil, err
	}
	if len(stations) == 0 {
		return nil, fmt.Errorf("design: line is too short for interval %g", interval)
	}
	placed, err := d.PointsAtStations(pts, stations)
	if err != nil {
		return nil, err
	}
	z, err := d.Ground.QueryElevation(ctx, placed.Points())
	if err != nil {
		return nil, fmt.Errorf("design: querying ground elevation: %w", err)
	}
	if len(z) != len(placed) {
		return nil, fmt.Errorf("design: ground service returned %d elevations for %d points", len(z), len(placed))
	}
	o := make([]ProfilePoint, len(placed))
	for i, c := range placed {
		o[i] = ProfilePoint{Coord: c}
		if !terrain.NoData(z[i]) {
			o[i].Z, o[i].HasZ, o[i].Ground = z[i], true, true
		}
	}
	return o, nil
}
